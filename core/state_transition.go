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

package core

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/agentledger/go-agentledger/core/state"
	"github.com/agentledger/go-agentledger/core/types"
)

// StateTransition applies the payload of one authenticated transaction to the
// state. It performs no signature or nonce checks of its own.
type StateTransition struct {
	state  *state.StateDB
	sender common.Address
	tx     *types.Transaction
	now    int64
}

// NewStateTransition initialises and returns a new state transition object.
func NewStateTransition(statedb *state.StateDB, sender common.Address, tx *types.Transaction, now int64) *StateTransition {
	return &StateTransition{
		state:  statedb,
		sender: sender,
		tx:     tx,
		now:    now,
	}
}

// TransitionDb dispatches on the transaction type. Changes are not reverted on
// error, that is left to the caller.
func (st *StateTransition) TransitionDb() error {
	switch payload := st.tx.Payload().(type) {
	case *types.RegisterAgentTx:
		return registerAgent(st.state, st.sender, payload)
	case *types.UpdateAgentTx:
		return updateAgent(st.state, st.sender, payload)
	case *types.AgentStatusTx:
		return setAgentStatus(st.state, st.sender, payload)
	case *types.CreateTaskTx:
		return createTask(st.state, st.sender, payload, st.now)
	case *types.TaskActionTx:
		if payload.Complete {
			return completeTask(st.state, st.sender, payload)
		}
		return acceptTask(st.state, st.sender, payload)
	case *types.RateAgentTx:
		return rateAgent(st.state, st.sender, payload)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownTxType, payload)
	}
}
