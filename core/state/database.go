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

package state

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"

	"github.com/agentledger/go-agentledger/core/rawdb"
	"github.com/agentledger/go-agentledger/core/types"
)

// defaultRecordCache is the number of records kept by a Database created with a
// non-positive cache size.
const defaultRecordCache = 1024

// Database wraps access to the persisted ledger records.
type Database interface {
	// DiskDB returns the underlying key-value store.
	DiskDB() ethdb.KeyValueStore

	// Account retrieves a committed account, nil if it doesn't exist.
	Account(addr common.Address) *types.StateAccount

	// AgentProfile retrieves a copy of a committed agent profile.
	AgentProfile(addr common.Address) *types.AgentProfile

	// TaskEscrow retrieves a copy of a committed task escrow.
	TaskEscrow(addr common.Address) *types.TaskEscrow

	// Written refreshes the cached records after a commit.
	Written(profiles map[common.Address]*types.AgentProfile, escrows map[common.Address]*types.TaskEscrow)
}

// NewDatabase creates a backing store for state, caching up to cacheSize decoded
// records in memory.
func NewDatabase(db ethdb.KeyValueStore, cacheSize int) Database {
	if cacheSize <= 0 {
		cacheSize = defaultRecordCache
	}
	profiles, _ := lru.New(cacheSize)
	escrows, _ := lru.New(cacheSize)
	return &cachingDB{
		disk:     db,
		profiles: profiles,
		escrows:  escrows,
	}
}

type cachingDB struct {
	disk     ethdb.KeyValueStore
	profiles *lru.Cache
	escrows  *lru.Cache
}

func (db *cachingDB) DiskDB() ethdb.KeyValueStore {
	return db.disk
}

func (db *cachingDB) Account(addr common.Address) *types.StateAccount {
	return rawdb.ReadAccount(db.disk, addr)
}

func (db *cachingDB) AgentProfile(addr common.Address) *types.AgentProfile {
	if cached, ok := db.profiles.Get(addr); ok {
		return cached.(*types.AgentProfile).Copy()
	}
	profile := rawdb.ReadAgentProfile(db.disk, addr)
	if profile == nil {
		return nil
	}
	db.profiles.Add(addr, profile.Copy())
	return profile
}

func (db *cachingDB) TaskEscrow(addr common.Address) *types.TaskEscrow {
	if cached, ok := db.escrows.Get(addr); ok {
		return cached.(*types.TaskEscrow).Copy()
	}
	escrow := rawdb.ReadTaskEscrow(db.disk, addr)
	if escrow == nil {
		return nil
	}
	db.escrows.Add(addr, escrow.Copy())
	return escrow
}

func (db *cachingDB) Written(profiles map[common.Address]*types.AgentProfile, escrows map[common.Address]*types.TaskEscrow) {
	for addr, profile := range profiles {
		db.profiles.Add(addr, profile.Copy())
	}
	for addr, escrow := range escrows {
		db.escrows.Add(addr, escrow.Copy())
	}
}
