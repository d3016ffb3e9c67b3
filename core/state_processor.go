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
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"

	"github.com/agentledger/go-agentledger/core/state"
	"github.com/agentledger/go-agentledger/core/types"
)

var (
	txAppliedMeters = map[types.TxType]metrics.Meter{
		types.RegisterAgentTxType:   metrics.NewRegisteredMeter("ledger/tx/register", nil),
		types.UpdateAgentTxType:     metrics.NewRegisteredMeter("ledger/tx/update", nil),
		types.DeactivateAgentTxType: metrics.NewRegisteredMeter("ledger/tx/deactivate", nil),
		types.ActivateAgentTxType:   metrics.NewRegisteredMeter("ledger/tx/activate", nil),
		types.CreateTaskTxType:      metrics.NewRegisteredMeter("ledger/tx/createtask", nil),
		types.AcceptTaskTxType:      metrics.NewRegisteredMeter("ledger/tx/accepttask", nil),
		types.CompleteTaskTxType:    metrics.NewRegisteredMeter("ledger/tx/completetask", nil),
		types.RateAgentTxType:       metrics.NewRegisteredMeter("ledger/tx/rateagent", nil),
	}
	txFailedMeter = metrics.NewRegisteredMeter("ledger/tx/failed", nil)
)

// StateProcessor authenticates transactions and applies them to a state.
type StateProcessor struct {
	signer types.Signer
	clock  func() time.Time
}

// NewStateProcessor creates a processor verifying signatures with signer and
// stamping new escrows with the time reported by clock.
func NewStateProcessor(signer types.Signer, clock func() time.Time) *StateProcessor {
	if clock == nil {
		clock = time.Now
	}
	return &StateProcessor{signer: signer, clock: clock}
}

// Apply runs tx against statedb as the transaction with the given sequence
// number. Either every effect of the transaction is applied, including the
// sender's nonce increment and the emitted log, or none is.
func (p *StateProcessor) Apply(statedb *state.StateDB, tx *types.Transaction, sequence uint64) (*types.Receipt, error) {
	sender, err := types.Sender(p.signer, tx)
	if err != nil {
		txFailedMeter.Mark(1)
		return nil, err
	}
	if nonce := statedb.GetNonce(sender); tx.Nonce() < nonce {
		txFailedMeter.Mark(1)
		return nil, fmt.Errorf("%w: address %s, tx: %d state: %d", ErrNonceTooLow, sender, tx.Nonce(), nonce)
	} else if tx.Nonce() > nonce {
		txFailedMeter.Mark(1)
		return nil, fmt.Errorf("%w: address %s, tx: %d state: %d", ErrNonceTooHigh, sender, tx.Nonce(), nonce)
	}
	statedb.Prepare(tx.Hash(), sequence)

	snap := statedb.Snapshot()
	if err := NewStateTransition(statedb, sender, tx, p.clock().Unix()).TransitionDb(); err != nil {
		statedb.RevertToSnapshot(snap)
		txFailedMeter.Mark(1)
		log.Debug("Transaction rejected", "hash", tx.Hash(), "type", tx.Type(), "sender", sender, "err", err)
		return nil, err
	}
	statedb.SetNonce(sender, tx.Nonce()+1)

	if meter, ok := txAppliedMeters[tx.Type()]; ok {
		meter.Mark(1)
	}
	return &types.Receipt{
		TxHash:   tx.Hash(),
		Type:     tx.Type(),
		Sender:   sender,
		Sequence: sequence,
		Logs:     statedb.GetLogs(tx.Hash()),
	}, nil
}
