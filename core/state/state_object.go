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
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/agentledger/go-agentledger/core/types"
)

// stateObject represents a ledger account which is being modified.
//
// The usage pattern is as follows:
// First you need to obtain a state object.
// Account values can be accessed and modified through the object.
// Finally, call StateDB.Commit to write the modified account into the database.
type stateObject struct {
	address common.Address
	db      *StateDB

	balance *uint256.Int
	nonce   uint64
}

// newObject creates a state object from a committed account, or an empty one
// when account is nil.
func newObject(db *StateDB, address common.Address, account *types.StateAccount) *stateObject {
	obj := &stateObject{
		address: address,
		db:      db,
		balance: new(uint256.Int),
	}
	if account != nil {
		obj.nonce = account.Nonce
		if account.Balance != nil {
			obj.balance, _ = uint256.FromBig(account.Balance)
		}
	}
	return obj
}

// empty returns whether the account is considered empty.
func (s *stateObject) empty() bool {
	return s.nonce == 0 && s.balance.IsZero()
}

// account returns the storage representation of the object.
func (s *stateObject) account() *types.StateAccount {
	return &types.StateAccount{
		Nonce:   s.nonce,
		Balance: s.balance.ToBig(),
	}
}

// AddBalance adds amount to s's balance.
func (s *stateObject) AddBalance(amount *uint256.Int) {
	if amount.IsZero() {
		return
	}
	s.SetBalance(new(uint256.Int).Add(s.balance, amount))
}

// SubBalance removes amount from s's balance. The caller checks for sufficient
// funds.
func (s *stateObject) SubBalance(amount *uint256.Int) {
	if amount.IsZero() {
		return
	}
	s.SetBalance(new(uint256.Int).Sub(s.balance, amount))
}

func (s *stateObject) SetBalance(amount *uint256.Int) {
	s.db.journal.append(balanceChange{
		account: &s.address,
		prev:    new(uint256.Int).Set(s.balance),
	})
	s.setBalance(amount)
}

func (s *stateObject) setBalance(amount *uint256.Int) {
	s.balance = amount
}

func (s *stateObject) SetNonce(nonce uint64) {
	s.db.journal.append(nonceChange{
		account: &s.address,
		prev:    s.nonce,
	})
	s.setNonce(nonce)
}

func (s *stateObject) setNonce(nonce uint64) {
	s.nonce = nonce
}

func (s *stateObject) Address() common.Address {
	return s.address
}

func (s *stateObject) Balance() *uint256.Int {
	return new(uint256.Int).Set(s.balance)
}

func (s *stateObject) Nonce() uint64 {
	return s.nonce
}
