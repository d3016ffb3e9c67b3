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

// Package state provides a journalled caching layer atop the ledger records.
package state

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/agentledger/go-agentledger/core/rawdb"
	"github.com/agentledger/go-agentledger/core/types"
	"github.com/agentledger/go-agentledger/params"
)

var (
	// ErrRecordExists is returned when a record is created at an occupied address.
	ErrRecordExists = errors.New("record already exists")

	// ErrRecordTooLarge is returned when a record exceeds its allocated size.
	ErrRecordTooLarge = errors.New("record exceeds allocated size")
)

type revision struct {
	id           int
	journalIndex int
}

// StateDB holds the accounts and records touched by the transactions of one
// commit. Every modification is journalled, so the effects of a failed operation
// can be undone with RevertToSnapshot.
//
// A StateDB is not safe for concurrent use.
type StateDB struct {
	db Database

	// This map holds 'live' objects, which will get modified while processing a
	// state transition.
	stateObjects map[common.Address]*stateObject
	profiles     map[common.Address]*types.AgentProfile
	escrows      map[common.Address]*types.TaskEscrow

	// Addresses finalised but not yet written to disk.
	pending map[common.Address]struct{}

	thash    common.Hash
	sequence uint64
	logs     map[common.Hash][]*types.Log
	logSize  uint

	// Journal of state modifications. This is the backbone of
	// Snapshot and RevertToSnapshot.
	journal        *journal
	validRevisions []revision
	nextRevisionId int
}

// New creates a new state on top of the committed records of db.
func New(db Database) *StateDB {
	return &StateDB{
		db:           db,
		stateObjects: make(map[common.Address]*stateObject),
		profiles:     make(map[common.Address]*types.AgentProfile),
		escrows:      make(map[common.Address]*types.TaskEscrow),
		pending:      make(map[common.Address]struct{}),
		logs:         make(map[common.Hash][]*types.Log),
		sequence:     rawdb.ReadHeadSequence(db.DiskDB()),
		journal:      newJournal(),
	}
}

// Database returns the backing store of the state.
func (s *StateDB) Database() Database {
	return s.db
}

// Prepare sets the current transaction hash and sequence number which are used
// when the transaction emits logs.
func (s *StateDB) Prepare(thash common.Hash, sequence uint64) {
	s.thash = thash
	s.sequence = sequence
}

// Sequence returns the sequence number of the current transaction.
func (s *StateDB) Sequence() uint64 {
	return s.sequence
}

// AddLog records an event of the current transaction.
func (s *StateDB) AddLog(event types.Event) {
	s.journal.append(addLogChange{txhash: s.thash})

	s.logs[s.thash] = append(s.logs[s.thash], &types.Log{
		Event:    event,
		TxHash:   s.thash,
		Sequence: s.sequence,
		Index:    uint(len(s.logs[s.thash])),
	})
	s.logSize++
}

// GetLogs returns the logs emitted by the given transaction.
func (s *StateDB) GetLogs(hash common.Hash) []*types.Log {
	return s.logs[hash]
}

// Logs returns all logs in emission order.
func (s *StateDB) Logs() []*types.Log {
	logs := make([]*types.Log, 0, s.logSize)
	for _, lgs := range s.logs {
		logs = append(logs, lgs...)
	}
	sort.Slice(logs, func(i, j int) bool {
		if logs[i].Sequence != logs[j].Sequence {
			return logs[i].Sequence < logs[j].Sequence
		}
		return logs[i].Index < logs[j].Index
	})
	return logs
}

// Exist reports whether the given account exists in state.
func (s *StateDB) Exist(addr common.Address) bool {
	return s.getStateObject(addr) != nil
}

// GetBalance retrieves the balance of the given address, zero if the account
// doesn't exist.
func (s *StateDB) GetBalance(addr common.Address) *uint256.Int {
	if obj := s.getStateObject(addr); obj != nil {
		return obj.Balance()
	}
	return new(uint256.Int)
}

// GetNonce retrieves the nonce of the given address.
func (s *StateDB) GetNonce(addr common.Address) uint64 {
	if obj := s.getStateObject(addr); obj != nil {
		return obj.Nonce()
	}
	return 0
}

// AddBalance adds amount to the account associated with addr.
func (s *StateDB) AddBalance(addr common.Address, amount *uint256.Int) {
	s.GetOrNewStateObject(addr).AddBalance(amount)
}

// SubBalance subtracts amount from the account associated with addr.
func (s *StateDB) SubBalance(addr common.Address, amount *uint256.Int) {
	s.GetOrNewStateObject(addr).SubBalance(amount)
}

// SetBalance overwrites the balance of addr.
func (s *StateDB) SetBalance(addr common.Address, amount *uint256.Int) {
	s.GetOrNewStateObject(addr).SetBalance(new(uint256.Int).Set(amount))
}

// SetNonce overwrites the nonce of addr.
func (s *StateDB) SetNonce(addr common.Address, nonce uint64) {
	s.GetOrNewStateObject(addr).SetNonce(nonce)
}

// CanTransfer checks whether there are enough funds in the address' account to
// make a transfer.
func (s *StateDB) CanTransfer(addr common.Address, amount *uint256.Int) bool {
	return s.GetBalance(addr).Cmp(amount) >= 0
}

// Transfer moves amount from sender to recipient. It is the only way currency
// changes hands once the genesis allocation is written.
func (s *StateDB) Transfer(sender, recipient common.Address, amount *uint256.Int) {
	s.SubBalance(sender, amount)
	s.AddBalance(recipient, amount)
}

// getStateObject retrieves a state object given by the address, nil if the
// account doesn't exist.
func (s *StateDB) getStateObject(addr common.Address) *stateObject {
	if obj := s.stateObjects[addr]; obj != nil {
		return obj
	}
	account := s.db.Account(addr)
	if account == nil {
		return nil
	}
	obj := newObject(s, addr, account)
	s.stateObjects[addr] = obj
	return obj
}

// GetOrNewStateObject retrieves a state object or creates a new one if absent.
func (s *StateDB) GetOrNewStateObject(addr common.Address) *stateObject {
	obj := s.getStateObject(addr)
	if obj == nil {
		obj = newObject(s, addr, nil)
		s.journal.append(createAccountChange{account: &addr})
		s.stateObjects[addr] = obj
	}
	return obj
}

// GetAgentProfile returns a copy of the agent profile stored at addr, nil if
// there is none.
func (s *StateDB) GetAgentProfile(addr common.Address) *types.AgentProfile {
	if profile := s.getAgentProfile(addr); profile != nil {
		return profile.Copy()
	}
	return nil
}

func (s *StateDB) getAgentProfile(addr common.Address) *types.AgentProfile {
	if profile, ok := s.profiles[addr]; ok {
		return profile
	}
	profile := s.db.AgentProfile(addr)
	if profile != nil {
		s.profiles[addr] = profile
	}
	return profile
}

// CreateAgentProfile stores a new agent profile at addr. It fails if a profile
// already occupies the address.
func (s *StateDB) CreateAgentProfile(addr common.Address, profile *types.AgentProfile) error {
	if s.getAgentProfile(addr) != nil {
		return fmt.Errorf("%w: agent profile %s", ErrRecordExists, addr)
	}
	if err := checkSize(profile, params.AgentProfileSize); err != nil {
		return err
	}
	s.journal.append(profileChange{account: &addr})
	s.profiles[addr] = profile.Copy()
	return nil
}

// UpdateAgentProfile replaces the existing agent profile at addr.
func (s *StateDB) UpdateAgentProfile(addr common.Address, profile *types.AgentProfile) error {
	prev := s.getAgentProfile(addr)
	if prev == nil {
		return fmt.Errorf("no agent profile at %s", addr)
	}
	if err := checkSize(profile, params.AgentProfileSize); err != nil {
		return err
	}
	s.journal.append(profileChange{account: &addr, prev: prev})
	s.profiles[addr] = profile.Copy()
	return nil
}

// GetTaskEscrow returns a copy of the task escrow stored at addr, nil if there
// is none.
func (s *StateDB) GetTaskEscrow(addr common.Address) *types.TaskEscrow {
	if escrow := s.getTaskEscrow(addr); escrow != nil {
		return escrow.Copy()
	}
	return nil
}

func (s *StateDB) getTaskEscrow(addr common.Address) *types.TaskEscrow {
	if escrow, ok := s.escrows[addr]; ok {
		return escrow
	}
	escrow := s.db.TaskEscrow(addr)
	if escrow != nil {
		s.escrows[addr] = escrow
	}
	return escrow
}

// CreateTaskEscrow stores a new task escrow at addr. It fails if an escrow
// already occupies the address.
func (s *StateDB) CreateTaskEscrow(addr common.Address, escrow *types.TaskEscrow) error {
	if s.getTaskEscrow(addr) != nil {
		return fmt.Errorf("%w: task escrow %s", ErrRecordExists, addr)
	}
	if err := checkSize(escrow, params.TaskEscrowSize); err != nil {
		return err
	}
	s.journal.append(escrowChange{account: &addr})
	s.escrows[addr] = escrow.Copy()
	return nil
}

// UpdateTaskEscrow replaces the existing task escrow at addr.
func (s *StateDB) UpdateTaskEscrow(addr common.Address, escrow *types.TaskEscrow) error {
	prev := s.getTaskEscrow(addr)
	if prev == nil {
		return fmt.Errorf("no task escrow at %s", addr)
	}
	if err := checkSize(escrow, params.TaskEscrowSize); err != nil {
		return err
	}
	s.journal.append(escrowChange{account: &addr, prev: prev})
	s.escrows[addr] = escrow.Copy()
	return nil
}

// checkSize verifies that the encoding of a record fits its allocation.
func checkSize(record interface{}, limit int) error {
	enc, err := rlp.EncodeToBytes(record)
	if err != nil {
		return err
	}
	if len(enc) > limit {
		return fmt.Errorf("%w: have %d, max %d", ErrRecordTooLarge, len(enc), limit)
	}
	return nil
}

// Snapshot returns an identifier for the current revision of the state.
func (s *StateDB) Snapshot() int {
	id := s.nextRevisionId
	s.nextRevisionId++
	s.validRevisions = append(s.validRevisions, revision{id, s.journal.length()})
	return id
}

// RevertToSnapshot reverts all state changes made since the given revision.
func (s *StateDB) RevertToSnapshot(revid int) {
	// Find the snapshot in the stack of valid snapshots.
	idx := sort.Search(len(s.validRevisions), func(i int) bool {
		return s.validRevisions[i].id >= revid
	})
	if idx == len(s.validRevisions) || s.validRevisions[idx].id != revid {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	snapshot := s.validRevisions[idx].journalIndex

	// Replay the journal to undo changes and remove invalidated snapshots
	s.journal.revert(s, snapshot)
	s.validRevisions = s.validRevisions[:idx]
}

// Finalise marks the journalled changes as pending and clears the journal.
// Reverting across a Finalise is not possible.
func (s *StateDB) Finalise() {
	for addr := range s.journal.dirties {
		s.pending[addr] = struct{}{}
	}
	s.journal = newJournal()
	s.validRevisions = s.validRevisions[:0]
}

// Commit finalises the state and writes all pending accounts and records to the
// database in a single batch.
func (s *StateDB) Commit() error {
	return s.CommitWith(nil)
}

// CommitWith is Commit with extra writes: fn, if non-nil, adds its keys to the
// same batch, so they become visible atomically with the state.
func (s *StateDB) CommitWith(fn func(batch ethdb.KeyValueWriter)) error {
	s.Finalise()

	var (
		batch    = s.db.DiskDB().NewBatch()
		profiles = make(map[common.Address]*types.AgentProfile)
		escrows  = make(map[common.Address]*types.TaskEscrow)
	)
	for addr := range s.pending {
		if obj := s.stateObjects[addr]; obj != nil {
			rawdb.WriteAccount(batch, addr, obj.account())
		}
		if profile := s.profiles[addr]; profile != nil {
			rawdb.WriteAgentProfile(batch, addr, profile)
			profiles[addr] = profile
		}
		if escrow := s.escrows[addr]; escrow != nil {
			rawdb.WriteTaskEscrow(batch, addr, escrow)
			escrows[addr] = escrow
		}
	}
	rawdb.WriteHeadSequence(batch, s.sequence)
	if fn != nil {
		fn(batch)
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("state commit failed: %w", err)
	}
	s.db.Written(profiles, escrows)

	log.Trace("Committed state", "sequence", s.sequence, "dirty", len(s.pending))
	s.pending = make(map[common.Address]struct{})
	return nil
}
