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
	"errors"

	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/agentledger/go-agentledger/core/rawdb"
	"github.com/agentledger/go-agentledger/core/state"
	"github.com/agentledger/go-agentledger/params"
)

// ErrGenesisWritten is returned when a genesis allocation is committed to a
// database that already holds one.
var ErrGenesisWritten = errors.New("genesis allocation already written")

// Genesis specifies the initial balances of the ledger. Balances can't be created
// by any transaction, so a ledger without a genesis allocation can hold
// profiles but never fund an escrow.
type Genesis struct {
	Alloc []params.GenesisAccount `json:"alloc"`
}

// Commit writes the allocation to db. Repeated addresses are summed.
func (g *Genesis) Commit(db state.Database) error {
	if rawdb.HasGenesis(db.DiskDB()) {
		return ErrGenesisWritten
	}
	statedb := state.New(db)
	for _, account := range g.Alloc {
		statedb.AddBalance(account.Address, uint256.NewInt(account.Balance))
	}
	if err := statedb.CommitWith(rawdb.WriteGenesisMarker); err != nil {
		return err
	}
	log.Info("Wrote genesis allocation", "accounts", len(g.Alloc))
	return nil
}

// SetupGenesis commits the allocation unless the database was initialised
// before, in which case the stored state is kept untouched.
func SetupGenesis(db state.Database, genesis *Genesis) error {
	if genesis == nil {
		genesis = new(Genesis)
	}
	err := genesis.Commit(db)
	if errors.Is(err, ErrGenesisWritten) {
		log.Debug("Found existing genesis allocation")
		return nil
	}
	return err
}
