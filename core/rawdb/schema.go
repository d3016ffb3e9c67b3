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

// Package rawdb contains a collection of low level database accessors.
package rawdb

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/metrics"
)

// The fields below define the low level database schema prefixing.
var (
	// headSequenceKey tracks the sequence number of the latest committed transaction.
	headSequenceKey = []byte("LastSequence")

	// genesisKey marks a database whose genesis allocation has been written.
	genesisKey = []byte("GenesisWritten")

	accountPrefix = []byte("b") // accountPrefix + address -> types.StateAccount
	agentPrefix   = []byte("a") // agentPrefix + address -> types.AgentProfile
	escrowPrefix  = []byte("e") // escrowPrefix + address -> types.TaskEscrow

	recordWriteCounter = metrics.NewRegisteredCounter("db/records/write", nil)
	recordMissCounter  = metrics.NewRegisteredCounter("db/records/miss", nil)
)

// accountKey = accountPrefix + address
func accountKey(addr common.Address) []byte {
	return append(append([]byte{}, accountPrefix...), addr.Bytes()...)
}

// agentKey = agentPrefix + address
func agentKey(addr common.Address) []byte {
	return append(append([]byte{}, agentPrefix...), addr.Bytes()...)
}

// escrowKey = escrowPrefix + address
func escrowKey(addr common.Address) []byte {
	return append(append([]byte{}, escrowPrefix...), addr.Bytes()...)
}

// encodeSequence encodes a sequence number as big endian uint64
func encodeSequence(number uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, number)
	return enc
}
