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
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/agentledger/go-agentledger/core/rawdb"
	"github.com/agentledger/go-agentledger/core/state"
	"github.com/agentledger/go-agentledger/core/types"
	"github.com/agentledger/go-agentledger/params"
)

// ErrLedgerClosed is returned for transactions submitted after Close.
var ErrLedgerClosed = errors.New("ledger closed")

// AgentFilter selects the profiles returned by FindAgents.
type AgentFilter struct {
	Capability string // Required capability tag, empty matches every profile
	ActiveOnly bool   // Skip profiles that don't accept tasks
	Limit      int    // Maximum number of results, non-positive for all
}

// Ledger is the transaction entry point. Transactions are applied one at a time
// in submission order, each against a fresh view of the committed state, and
// written to the database in a single batch when they succeed.
type Ledger struct {
	config    *params.Config
	db        state.Database
	processor *StateProcessor

	mu     sync.RWMutex // serialises transactions, read lock for queries
	head   uint64       // sequence number of the last committed transaction
	closed bool

	logsFeed event.Feed
	scope    event.SubscriptionScope
}

// NewLedger opens a ledger on the given database, committing the genesis
// allocation of config if the database is empty.
func NewLedger(diskdb ethdb.KeyValueStore, config *params.Config) (*Ledger, error) {
	return newLedger(diskdb, config, time.Now)
}

func newLedger(diskdb ethdb.KeyValueStore, config *params.Config, clock func() time.Time) (*Ledger, error) {
	if config == nil {
		config = &params.DefaultConfig
	}
	db := state.NewDatabase(diskdb, config.RecordCache)
	if err := SetupGenesis(db, &Genesis{Alloc: config.Genesis}); err != nil {
		return nil, err
	}
	l := &Ledger{
		config:    config,
		db:        db,
		processor: NewStateProcessor(types.NewSigner(config.ProgramID), clock),
		head:      rawdb.ReadHeadSequence(diskdb),
	}
	log.Info("Opened ledger", "program", config.ProgramID, "head", l.head)
	return l, nil
}

// Signer returns the signer transactions must be signed with.
func (l *Ledger) Signer() types.Signer {
	return l.processor.signer
}

// Config returns the configuration the ledger was opened with.
func (l *Ledger) Config() *params.Config {
	return l.config
}

// SubmitTransaction applies tx and commits its effects. On error nothing is
// written. The logs of a committed transaction are published to subscribers
// after the commit.
func (l *Ledger) SubmitTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrLedgerClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	statedb := state.New(l.db)
	receipt, err := l.processor.Apply(statedb, tx, l.head+1)
	if err != nil {
		return nil, err
	}
	if err := statedb.Commit(); err != nil {
		return nil, err
	}
	l.head = receipt.Sequence

	log.Debug("Committed transaction", "hash", receipt.TxHash, "type", receipt.Type, "sender", receipt.Sender, "seq", receipt.Sequence)
	if len(receipt.Logs) > 0 {
		l.logsFeed.Send(receipt.Logs)
	}
	return receipt, nil
}

// SubscribeLogsEvent registers a subscription for the logs of committed
// transactions.
func (l *Ledger) SubscribeLogsEvent(ch chan<- []*types.Log) event.Subscription {
	return l.scope.Track(l.logsFeed.Subscribe(ch))
}

// HeadSequence returns the sequence number of the last committed transaction.
func (l *Ledger) HeadSequence() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.head
}

// view returns a read-only state over the committed records.
func (l *Ledger) view() *state.StateDB {
	return state.New(l.db)
}

// Agent returns the profile stored at addr, nil if there is none.
func (l *Ledger) Agent(addr common.Address) *types.AgentProfile {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.view().GetAgentProfile(addr)
}

// AgentByOwner returns the profile owned by owner, nil if there is none.
func (l *Ledger) AgentByOwner(owner common.Address) *types.AgentProfile {
	return l.Agent(types.AgentAddress(owner))
}

// FindAgents lists the profiles matching filter, ranked by reputation.
func (l *Ledger) FindAgents(filter AgentFilter) []*RankedAgent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ranking := newAgentRanking(filter.Limit)
	rawdb.IterateAgentProfiles(l.db.DiskDB(), func(addr common.Address, profile *types.AgentProfile) bool {
		if filter.ActiveOnly && !profile.Active() {
			return true
		}
		if filter.Capability != "" && !profile.HasCapability(filter.Capability) {
			return true
		}
		ranking.Put(&RankedAgent{Address: addr, Profile: profile})
		return true
	})
	return ranking.Agents()
}

// Escrow returns the task escrow stored at addr, nil if there is none.
func (l *Ledger) Escrow(addr common.Address) *types.TaskEscrow {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.view().GetTaskEscrow(addr)
}

// EscrowByTask returns the escrow funded by client for taskID.
func (l *Ledger) EscrowByTask(client common.Address, taskID string) *types.TaskEscrow {
	return l.Escrow(types.EscrowAddress(client, taskID))
}

// Balance returns the balance of addr. For an escrow address this is the amount
// in custody.
func (l *Ledger) Balance(addr common.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.view().GetBalance(addr)
}

// Nonce returns the nonce the next transaction of addr must carry.
func (l *Ledger) Nonce(addr common.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.view().GetNonce(addr)
}

// Close terminates all log subscriptions and rejects further transactions. The
// database is owned by the caller and stays open.
func (l *Ledger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	l.scope.Close()
	log.Info("Ledger closed", "head", l.head)
}
