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

package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// AgentStatus is the lifecycle state of an agent profile.
type AgentStatus uint8

const (
	AgentActive   AgentStatus = 0
	AgentInactive AgentStatus = 1
)

func (s AgentStatus) String() string {
	switch s {
	case AgentActive:
		return "active"
	case AgentInactive:
		return "inactive"
	default:
		return fmt.Sprintf("AgentStatus(%d)", uint8(s))
	}
}

// AgentProfile is the registry record of an agent, stored at AgentAddress(Owner).
type AgentProfile struct {
	Owner           common.Address // Account that controls the profile
	Name            string         // Display name
	Capabilities    []string       // Capability tags, e.g. "trading", "coding"
	Pricing         uint64         // Price per task in the smallest currency unit
	Status          AgentStatus    // Whether the agent is accepting tasks
	ReputationScore uint64         // Average rating * 100
	TasksCompleted  uint64         // Number of completed tasks
	TotalRatings    uint64         // Number of ratings received
	RatingSum       uint64         // Sum of all ratings
	MetadataURI     string         // Pointer to off-ledger metadata
	Bump            uint8          // Address derivation bump
}

// Active reports whether the agent currently accepts tasks.
func (p *AgentProfile) Active() bool {
	return p.Status == AgentActive
}

// Copy returns a deep copy of the profile.
func (p *AgentProfile) Copy() *AgentProfile {
	cpy := *p
	if p.Capabilities != nil {
		cpy.Capabilities = make([]string, len(p.Capabilities))
		copy(cpy.Capabilities, p.Capabilities)
	}
	return &cpy
}

// HasCapability reports whether the profile advertises the given tag.
func (p *AgentProfile) HasCapability(tag string) bool {
	for _, c := range p.Capabilities {
		if c == tag {
			return true
		}
	}
	return false
}
