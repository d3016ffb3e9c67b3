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
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/agentledger/go-agentledger/core/state"
	"github.com/agentledger/go-agentledger/core/types"
)

// createTask locks tx.Amount of the client's funds in a new escrow bound to the
// agent profile tx.Agent.
func createTask(statedb *state.StateDB, client common.Address, tx *types.CreateTaskTx, now int64) error {
	if err := validateTaskID(tx.TaskID); err != nil {
		return err
	}
	if tx.Amount == 0 {
		return ErrInvalidAmount
	}
	if want := types.EscrowAddress(client, tx.TaskID); tx.Escrow != want {
		return fmt.Errorf("%w: escrow %s, want %s", ErrAddressMismatch, tx.Escrow, want)
	}
	profile := statedb.GetAgentProfile(tx.Agent)
	if profile == nil {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, tx.Agent)
	}
	if !profile.Active() {
		return fmt.Errorf("%w: %s is %s", ErrAgentNotActive, tx.Agent, profile.Status)
	}
	if statedb.GetTaskEscrow(tx.Escrow) != nil {
		return fmt.Errorf("%w: escrow %s", ErrAddressInUse, tx.Escrow)
	}
	amount := uint256.NewInt(tx.Amount)
	if !statedb.CanTransfer(client, amount) {
		return fmt.Errorf("%w: address %s have %v want %v", ErrInsufficientFunds, client, statedb.GetBalance(client), amount)
	}
	escrow := &types.TaskEscrow{
		Client:    client,
		Agent:     tx.Agent,
		Amount:    tx.Amount,
		Status:    types.TaskFunded,
		TaskID:    tx.TaskID,
		CreatedAt: now,
		Bump:      types.CanonicalBump,
	}
	if err := statedb.CreateTaskEscrow(tx.Escrow, escrow); err != nil {
		return err
	}
	statedb.Transfer(client, tx.Escrow, amount)
	statedb.AddLog(&types.TaskCreated{
		Escrow: tx.Escrow,
		Client: client,
		Agent:  tx.Agent,
		TaskID: tx.TaskID,
		Amount: tx.Amount,
	})
	log.Debug("Created task escrow", "escrow", tx.Escrow, "client", client, "agent", tx.Agent, "amount", tx.Amount)
	return nil
}

// boundEscrow loads the escrow of a task action and checks that signer owns the
// agent profile bound to it.
func boundEscrow(statedb *state.StateDB, signer common.Address, tx *types.TaskActionTx) (*types.AgentProfile, *types.TaskEscrow, error) {
	profile, err := ownedProfile(statedb, signer, tx.Agent)
	if err != nil {
		return nil, nil, err
	}
	escrow := statedb.GetTaskEscrow(tx.Escrow)
	if escrow == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrEscrowNotFound, tx.Escrow)
	}
	if escrow.Agent != tx.Agent {
		return nil, nil, fmt.Errorf("%w: escrow %s is bound to %s", ErrAgentMismatch, tx.Escrow, escrow.Agent)
	}
	return profile, escrow, nil
}

func invalidStatus(op string, status types.TaskStatus) error {
	return fmt.Errorf("%w: cannot %s a %s task", ErrInvalidTaskStatus, op, status)
}

// acceptTask moves an escrow from Funded to InProgress.
func acceptTask(statedb *state.StateDB, signer common.Address, tx *types.TaskActionTx) error {
	_, escrow, err := boundEscrow(statedb, signer, tx)
	if err != nil {
		return err
	}
	switch escrow.Status {
	case types.TaskFunded:
	case types.TaskInProgress, types.TaskCompleted, types.TaskDisputed:
		return invalidStatus("accept", escrow.Status)
	default:
		return invalidStatus("accept", escrow.Status)
	}
	escrow.Status = types.TaskInProgress
	if err := statedb.UpdateTaskEscrow(tx.Escrow, escrow); err != nil {
		return err
	}
	statedb.AddLog(&types.TaskAccepted{Escrow: tx.Escrow, Agent: tx.Agent})
	log.Debug("Accepted task", "escrow", tx.Escrow, "agent", tx.Agent)
	return nil
}

// completeTask moves an escrow from InProgress to Completed, releasing the
// custodied funds to the agent owner.
func completeTask(statedb *state.StateDB, signer common.Address, tx *types.TaskActionTx) error {
	profile, escrow, err := boundEscrow(statedb, signer, tx)
	if err != nil {
		return err
	}
	switch escrow.Status {
	case types.TaskInProgress:
	case types.TaskFunded, types.TaskCompleted, types.TaskDisputed:
		return invalidStatus("complete", escrow.Status)
	default:
		return invalidStatus("complete", escrow.Status)
	}
	completed, overflow := math.SafeAdd(profile.TasksCompleted, 1)
	if overflow {
		return ErrArithmeticOverflow
	}
	amount := uint256.NewInt(escrow.Amount)
	if !statedb.CanTransfer(tx.Escrow, amount) {
		return fmt.Errorf("%w: escrow %s holds %v want %v", ErrInsufficientFunds, tx.Escrow, statedb.GetBalance(tx.Escrow), amount)
	}
	escrow.Status = types.TaskCompleted
	if err := statedb.UpdateTaskEscrow(tx.Escrow, escrow); err != nil {
		return err
	}
	profile.TasksCompleted = completed
	if err := statedb.UpdateAgentProfile(tx.Agent, profile); err != nil {
		return err
	}
	statedb.Transfer(tx.Escrow, profile.Owner, amount)
	statedb.AddLog(&types.TaskCompletedEvent{Escrow: tx.Escrow, Agent: tx.Agent, Amount: escrow.Amount})
	log.Debug("Completed task", "escrow", tx.Escrow, "agent", tx.Agent, "paid", escrow.Amount)
	return nil
}

// rateAgent folds the client's rating of a completed task into the agent's
// reputation. Rating the same escrow more than once is accepted and counts every
// time.
func rateAgent(statedb *state.StateDB, client common.Address, tx *types.RateAgentTx) error {
	escrow := statedb.GetTaskEscrow(tx.Escrow)
	if escrow == nil {
		return fmt.Errorf("%w: %s", ErrEscrowNotFound, tx.Escrow)
	}
	if escrow.Client != client {
		return fmt.Errorf("%w: %s is not the client of %s", ErrUnauthorized, client, tx.Escrow)
	}
	if escrow.Agent != tx.Agent {
		return fmt.Errorf("%w: escrow %s is bound to %s", ErrAgentMismatch, tx.Escrow, escrow.Agent)
	}
	if err := validateRating(tx.Rating); err != nil {
		return err
	}
	switch escrow.Status {
	case types.TaskCompleted:
	case types.TaskFunded, types.TaskInProgress, types.TaskDisputed:
		return invalidStatus("rate", escrow.Status)
	default:
		return invalidStatus("rate", escrow.Status)
	}
	profile := statedb.GetAgentProfile(tx.Agent)
	if profile == nil {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, tx.Agent)
	}
	if err := ApplyRating(profile, tx.Rating); err != nil {
		return err
	}
	if err := statedb.UpdateAgentProfile(tx.Agent, profile); err != nil {
		return err
	}
	statedb.AddLog(&types.AgentRated{Agent: tx.Agent, Rating: tx.Rating, NewReputation: profile.ReputationScore})
	log.Debug("Rated agent", "agent", tx.Agent, "rating", tx.Rating, "reputation", profile.ReputationScore)
	return nil
}
