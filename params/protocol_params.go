// Copyright 2026 The go-agentledger Authors
// This file is part of the go-agentledger library.
//
// The go-agentledger library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-agentledger library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-agentledger library. If not, see <http://www.gnu.org/licenses/>.

package params

// Field limits of the records stored on the ledger. All lengths are in bytes.
const (
	MaxNameLength        = 64
	MaxCapabilities      = 8
	MaxCapabilityLength  = 32
	MaxMetadataURILength = 200
	MaxTaskIDLength      = 64

	MinRating = 1
	MaxRating = 5

	// ReputationScale is the fixed-point factor of the reputation score.
	ReputationScale = 100
)

// Namespaces mixed into derived record addresses.
const (
	AgentNamespace  = "agent"
	EscrowNamespace = "escrow"
)

// AgentProfileSize is the worst-case RLP encoding of an agent profile:
// list header (3) + owner (1+20) + name (2+64) + capabilities (3 + 8*(1+32))
// + pricing (1+8) + status (1) + reputation score, tasks completed, total ratings
// and rating sum (4*(1+8)) + metadata uri (2+200) + bump (2).
const AgentProfileSize = 3 + 21 + 66 + (3 + MaxCapabilities*(1+MaxCapabilityLength)) + 9 + 1 + 4*9 + 202 + 2

// TaskEscrowSize is the worst-case RLP encoding of a task escrow:
// list header (2) + client (1+20) + agent (1+20) + amount (1+8) + status (1)
// + task id (2+64) + created at (1+8) + bump (2).
const TaskEscrowSize = 2 + 21 + 21 + 9 + 1 + 66 + 9 + 2
