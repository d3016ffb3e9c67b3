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

package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/agentledger/go-agentledger/params"
)

// CanonicalBump is the derivation bump used for every record address. It is
// stored on the records so that a record's address can be re-derived from its
// own contents.
const CanonicalBump uint8 = 255

// DeriveAddress computes the storage address of a record from a namespace tag and
// a tuple of key parts. The RLP framing of the pre-image keeps the mapping
// injective: ("ab", "c") and ("a", "bc") never share a pre-image.
func DeriveAddress(namespace string, parts ...[]byte) common.Address {
	return DeriveAddressWithBump(CanonicalBump, namespace, parts...)
}

// DeriveAddressWithBump is DeriveAddress with an explicit bump byte.
func DeriveAddressWithBump(bump uint8, namespace string, parts ...[]byte) common.Address {
	items := make([][]byte, 0, len(parts)+2)
	items = append(items, []byte(namespace))
	items = append(items, parts...)
	items = append(items, []byte{bump})

	data, _ := rlp.EncodeToBytes(items)
	return common.BytesToAddress(crypto.Keccak256(data)[12:])
}

// AgentAddress returns the address of the agent profile owned by owner.
func AgentAddress(owner common.Address) common.Address {
	return DeriveAddress(params.AgentNamespace, owner.Bytes())
}

// EscrowAddress returns the address of the escrow funded by client for taskID.
func EscrowAddress(client common.Address, taskID string) common.Address {
	return DeriveAddress(params.EscrowNamespace, client.Bytes(), []byte(taskID))
}
