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

// Package ledgerapi implements the JSON-RPC interface of the agent ledger.
package ledgerapi

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"

	"github.com/agentledger/go-agentledger/core"
	"github.com/agentledger/go-agentledger/core/types"
)

// Backend is the ledger functionality served over RPC. It is implemented by
// core.Ledger.
type Backend interface {
	Signer() types.Signer
	HeadSequence() uint64
	SubmitTransaction(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	SubscribeLogsEvent(ch chan<- []*types.Log) event.Subscription

	Agent(addr common.Address) *types.AgentProfile
	FindAgents(filter core.AgentFilter) []*core.RankedAgent
	Escrow(addr common.Address) *types.TaskEscrow
	Balance(addr common.Address) *uint256.Int
	Nonce(addr common.Address) uint64
}

// APIs returns the RPC services offered by the backend.
func APIs(b Backend) []rpc.API {
	return []rpc.API{
		{
			Namespace: "ledger",
			Version:   "1.0",
			Service:   NewPublicLedgerAPI(b),
		},
	}
}

// NewServer creates an RPC server with all ledger services registered.
func NewServer(b Backend) (*rpc.Server, error) {
	server := rpc.NewServer()
	for _, api := range APIs(b) {
		if err := server.RegisterName(api.Namespace, api.Service); err != nil {
			server.Stop()
			return nil, err
		}
	}
	return server, nil
}
