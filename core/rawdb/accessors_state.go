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

package rawdb

import (
	"bytes"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/agentledger/go-agentledger/core/types"
)

// ReadAccount retrieves the account stored at the given address, nil if the
// account was never written.
func ReadAccount(db ethdb.KeyValueReader, addr common.Address) *types.StateAccount {
	data, _ := db.Get(accountKey(addr))
	if len(data) == 0 {
		return nil
	}
	account := new(types.StateAccount)
	if err := rlp.DecodeBytes(data, account); err != nil {
		log.Warn("Invalid account RLP", "address", addr, "err", err)
		return nil
	}
	return account
}

// WriteAccount stores an account.
func WriteAccount(db ethdb.KeyValueWriter, addr common.Address, account *types.StateAccount) {
	data, err := rlp.EncodeToBytes(account)
	if err != nil {
		log.Crit("Failed to RLP encode account", "err", err)
	}
	if err := db.Put(accountKey(addr), data); err != nil {
		log.Crit("Failed to store account", "err", err)
	}
}

// ReadAgentProfileRLP retrieves the raw encoding of an agent profile.
func ReadAgentProfileRLP(db ethdb.KeyValueReader, addr common.Address) rlp.RawValue {
	data, _ := db.Get(agentKey(addr))
	return data
}

// HasAgentProfile checks if an agent profile is stored at the address.
func HasAgentProfile(db ethdb.KeyValueReader, addr common.Address) bool {
	ok, _ := db.Has(agentKey(addr))
	return ok
}

// ReadAgentProfile retrieves the agent profile stored at the address.
func ReadAgentProfile(db ethdb.KeyValueReader, addr common.Address) *types.AgentProfile {
	data := ReadAgentProfileRLP(db, addr)
	if len(data) == 0 {
		recordMissCounter.Inc(1)
		return nil
	}
	profile := new(types.AgentProfile)
	if err := rlp.DecodeBytes(data, profile); err != nil {
		log.Warn("Invalid agent profile RLP", "address", addr, "err", err)
		return nil
	}
	return profile
}

// WriteAgentProfile stores an agent profile.
func WriteAgentProfile(db ethdb.KeyValueWriter, addr common.Address, profile *types.AgentProfile) {
	data, err := rlp.EncodeToBytes(profile)
	if err != nil {
		log.Crit("Failed to RLP encode agent profile", "err", err)
	}
	if err := db.Put(agentKey(addr), data); err != nil {
		log.Crit("Failed to store agent profile", "err", err)
	}
	recordWriteCounter.Inc(1)
}

// IterateAgentProfiles calls fn for every stored agent profile in address order
// until fn returns false.
func IterateAgentProfiles(db ethdb.Iteratee, fn func(addr common.Address, profile *types.AgentProfile) bool) {
	it := db.NewIterator(agentPrefix, nil)
	defer it.Release()

	for it.Next() {
		key := it.Key()
		if len(key) != len(agentPrefix)+common.AddressLength || !bytes.HasPrefix(key, agentPrefix) {
			continue
		}
		profile := new(types.AgentProfile)
		if err := rlp.DecodeBytes(it.Value(), profile); err != nil {
			log.Warn("Invalid agent profile RLP", "key", key, "err", err)
			continue
		}
		if !fn(common.BytesToAddress(key[len(agentPrefix):]), profile) {
			return
		}
	}
}

// HasTaskEscrow checks if a task escrow is stored at the address.
func HasTaskEscrow(db ethdb.KeyValueReader, addr common.Address) bool {
	ok, _ := db.Has(escrowKey(addr))
	return ok
}

// ReadTaskEscrow retrieves the task escrow stored at the address.
func ReadTaskEscrow(db ethdb.KeyValueReader, addr common.Address) *types.TaskEscrow {
	data, _ := db.Get(escrowKey(addr))
	if len(data) == 0 {
		recordMissCounter.Inc(1)
		return nil
	}
	escrow := new(types.TaskEscrow)
	if err := rlp.DecodeBytes(data, escrow); err != nil {
		log.Warn("Invalid task escrow RLP", "address", addr, "err", err)
		return nil
	}
	return escrow
}

// WriteTaskEscrow stores a task escrow.
func WriteTaskEscrow(db ethdb.KeyValueWriter, addr common.Address, escrow *types.TaskEscrow) {
	data, err := rlp.EncodeToBytes(escrow)
	if err != nil {
		log.Crit("Failed to RLP encode task escrow", "err", err)
	}
	if err := db.Put(escrowKey(addr), data); err != nil {
		log.Crit("Failed to store task escrow", "err", err)
	}
	recordWriteCounter.Inc(1)
}

// ReadHeadSequence retrieves the sequence number of the latest committed
// transaction, zero for an empty ledger.
func ReadHeadSequence(db ethdb.KeyValueReader) uint64 {
	data, _ := db.Get(headSequenceKey)
	if len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}

// WriteHeadSequence stores the sequence number of the latest committed transaction.
func WriteHeadSequence(db ethdb.KeyValueWriter, seq uint64) {
	if err := db.Put(headSequenceKey, encodeSequence(seq)); err != nil {
		log.Crit("Failed to store head sequence", "err", err)
	}
}

// HasGenesis reports whether the genesis allocation was written.
func HasGenesis(db ethdb.KeyValueReader) bool {
	ok, _ := db.Has(genesisKey)
	return ok
}

// WriteGenesisMarker marks the genesis allocation as written.
func WriteGenesisMarker(db ethdb.KeyValueWriter) {
	if err := db.Put(genesisKey, []byte{1}); err != nil {
		log.Crit("Failed to store genesis marker", "err", err)
	}
}
