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
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentledger/go-agentledger/core/types"
)

func TestIterateAgentProfiles(t *testing.T) {
	db := NewMemoryDatabase()

	addr1 := common.HexToAddress("0x0000000000000000000000000000000000000001")
	addr2 := common.HexToAddress("0x0000000000000000000000000000000000000002")
	WriteAgentProfile(db, addr2, &types.AgentProfile{Name: "second", Capabilities: []string{}})
	WriteAgentProfile(db, addr1, &types.AgentProfile{Name: "first", Capabilities: []string{}})

	// Keys sharing the profile prefix that are not profiles.
	require.NoError(t, db.Put(append(append([]byte{}, agentPrefix...), []byte("short")...), []byte{0x01}))
	require.NoError(t, db.Put(append(agentKey(addr1), 0x00), []byte{0x01}))
	bad := common.HexToAddress("0x0000000000000000000000000000000000000003")
	require.NoError(t, db.Put(agentKey(bad), []byte{0xff}))

	// Records of other kinds.
	WriteAccount(db, addr1, &types.StateAccount{Balance: big.NewInt(0)})
	WriteTaskEscrow(db, addr1, &types.TaskEscrow{TaskID: "t1"})

	var (
		addrs []common.Address
		names []string
	)
	IterateAgentProfiles(db, func(addr common.Address, profile *types.AgentProfile) bool {
		addrs = append(addrs, addr)
		names = append(names, profile.Name)
		return true
	})
	assert.Equal(t, []common.Address{addr1, addr2}, addrs)
	assert.Equal(t, []string{"first", "second"}, names)

	var visited int
	IterateAgentProfiles(db, func(common.Address, *types.AgentProfile) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

func TestHeadSequence(t *testing.T) {
	db := NewMemoryDatabase()
	assert.Equal(t, uint64(0), ReadHeadSequence(db))
	WriteHeadSequence(db, 42)
	assert.Equal(t, uint64(42), ReadHeadSequence(db))
}

func TestGenesisMarker(t *testing.T) {
	db := NewMemoryDatabase()
	assert.False(t, HasGenesis(db))
	WriteGenesisMarker(db)
	assert.True(t, HasGenesis(db))
}

func TestMissingRecords(t *testing.T) {
	db := NewMemoryDatabase()
	addr := common.HexToAddress("0x0000000000000000000000000000000000000001")
	assert.Nil(t, ReadAccount(db, addr))
	assert.Nil(t, ReadAgentProfile(db, addr))
	assert.Nil(t, ReadTaskEscrow(db, addr))
	assert.False(t, HasAgentProfile(db, addr))
	assert.False(t, HasTaskEscrow(db, addr))
}
