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
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// TaskStatus is the state of a task escrow. Escrows only move forward through
// Funded, InProgress and Completed. Disputed is part of the record format but no
// transition produces or consumes it.
type TaskStatus uint8

const (
	TaskFunded     TaskStatus = 0
	TaskInProgress TaskStatus = 1
	TaskCompleted  TaskStatus = 2
	TaskDisputed   TaskStatus = 3
)

func (s TaskStatus) String() string {
	switch s {
	case TaskFunded:
		return "funded"
	case TaskInProgress:
		return "in-progress"
	case TaskCompleted:
		return "completed"
	case TaskDisputed:
		return "disputed"
	default:
		return fmt.Sprintf("TaskStatus(%d)", uint8(s))
	}
}

// TaskEscrow custodies the funds of one task, stored at
// EscrowAddress(Client, TaskID). The locked funds are the ledger balance of the
// escrow address itself.
type TaskEscrow struct {
	Client    common.Address // Account that posted and funded the task
	Agent     common.Address // Address of the agent profile bound to the task
	Amount    uint64         // Funds locked at creation
	Status    TaskStatus     // Current state of the task
	TaskID    string         // Client chosen task identifier
	CreatedAt int64          // Unix time of creation, informational only
	Bump      uint8          // Address derivation bump
}

// escrowRLP is the storage layout of a TaskEscrow. RLP has no signed integers, so
// the creation time is carried in two's complement.
type escrowRLP struct {
	Client    common.Address
	Agent     common.Address
	Amount    uint64
	Status    TaskStatus
	TaskID    string
	CreatedAt uint64
	Bump      uint8
}

// EncodeRLP implements rlp.Encoder.
func (e *TaskEscrow) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &escrowRLP{
		Client:    e.Client,
		Agent:     e.Agent,
		Amount:    e.Amount,
		Status:    e.Status,
		TaskID:    e.TaskID,
		CreatedAt: uint64(e.CreatedAt),
		Bump:      e.Bump,
	})
}

// DecodeRLP implements rlp.Decoder.
func (e *TaskEscrow) DecodeRLP(s *rlp.Stream) error {
	var dec escrowRLP
	if err := s.Decode(&dec); err != nil {
		return err
	}
	e.Client, e.Agent, e.Amount, e.Status = dec.Client, dec.Agent, dec.Amount, dec.Status
	e.TaskID, e.CreatedAt, e.Bump = dec.TaskID, int64(dec.CreatedAt), dec.Bump
	return nil
}

// Copy returns a copy of the escrow.
func (e *TaskEscrow) Copy() *TaskEscrow {
	cpy := *e
	return &cpy
}
