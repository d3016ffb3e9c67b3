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
	"github.com/ethereum/go-ethereum/common"
)

// Event is a notification emitted by a successful transaction. Events are only
// published for external observers; the ledger never reads them back.
type Event interface {
	EventName() string
}

type AgentRegistered struct {
	Agent        common.Address `json:"agent"`
	Owner        common.Address `json:"owner"`
	Name         string         `json:"name"`
	Capabilities []string       `json:"capabilities"`
	Pricing      uint64         `json:"pricing"`
	MetadataURI  string         `json:"metadataUri"`
}

type AgentUpdated struct {
	Agent common.Address `json:"agent"`
	Owner common.Address `json:"owner"`
}

type AgentDeactivated struct {
	Agent common.Address `json:"agent"`
	Owner common.Address `json:"owner"`
}

type AgentActivated struct {
	Agent common.Address `json:"agent"`
	Owner common.Address `json:"owner"`
}

type TaskCreated struct {
	Escrow common.Address `json:"escrow"`
	Client common.Address `json:"client"`
	Agent  common.Address `json:"agent"`
	TaskID string         `json:"taskId"`
	Amount uint64         `json:"amount"`
}

type TaskAccepted struct {
	Escrow common.Address `json:"escrow"`
	Agent  common.Address `json:"agent"`
}

type TaskCompletedEvent struct {
	Escrow common.Address `json:"escrow"`
	Agent  common.Address `json:"agent"`
	Amount uint64         `json:"amount"`
}

type AgentRated struct {
	Agent         common.Address `json:"agent"`
	Rating        uint8          `json:"rating"`
	NewReputation uint64         `json:"newReputation"`
}

func (*AgentRegistered) EventName() string    { return "AgentRegistered" }
func (*AgentUpdated) EventName() string       { return "AgentUpdated" }
func (*AgentDeactivated) EventName() string   { return "AgentDeactivated" }
func (*AgentActivated) EventName() string     { return "AgentActivated" }
func (*TaskCreated) EventName() string        { return "TaskCreated" }
func (*TaskAccepted) EventName() string       { return "TaskAccepted" }
func (*TaskCompletedEvent) EventName() string { return "TaskCompleted" }
func (*AgentRated) EventName() string         { return "AgentRated" }

// Log wraps an event with the position of the transaction that emitted it.
type Log struct {
	Event Event

	// Derived fields, filled in by the state when the event is added.
	TxHash   common.Hash
	Sequence uint64 // ledger sequence number of the transaction
	Index    uint   // index of the log within the transaction
}

// Receipt describes the outcome of a committed transaction.
type Receipt struct {
	TxHash   common.Hash
	Type     TxType
	Sender   common.Address
	Sequence uint64
	Logs     []*Log
}
