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

package ledgerapi

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/agentledger/go-agentledger/core"
	"github.com/agentledger/go-agentledger/core/types"
)

// PublicLedgerAPI provides the public RPC API of the agent ledger.
type PublicLedgerAPI struct {
	b Backend
}

// NewPublicLedgerAPI creates a new ledger API.
func NewPublicLedgerAPI(b Backend) *PublicLedgerAPI {
	return &PublicLedgerAPI{b: b}
}

// RPCAgent is the JSON-RPC representation of an agent profile.
type RPCAgent struct {
	Address         common.Address `json:"address"`
	Owner           common.Address `json:"owner"`
	Name            string         `json:"name"`
	Capabilities    []string       `json:"capabilities"`
	Pricing         hexutil.Uint64 `json:"pricing"`
	Status          string         `json:"status"`
	ReputationScore hexutil.Uint64 `json:"reputationScore"`
	TasksCompleted  hexutil.Uint64 `json:"tasksCompleted"`
	TotalRatings    hexutil.Uint64 `json:"totalRatings"`
	RatingSum       hexutil.Uint64 `json:"ratingSum"`
	MetadataURI     string         `json:"metadataUri"`
	Bump            hexutil.Uint   `json:"bump"`
}

func newRPCAgent(addr common.Address, p *types.AgentProfile) *RPCAgent {
	caps := p.Capabilities
	if caps == nil {
		caps = []string{}
	}
	return &RPCAgent{
		Address:         addr,
		Owner:           p.Owner,
		Name:            p.Name,
		Capabilities:    caps,
		Pricing:         hexutil.Uint64(p.Pricing),
		Status:          p.Status.String(),
		ReputationScore: hexutil.Uint64(p.ReputationScore),
		TasksCompleted:  hexutil.Uint64(p.TasksCompleted),
		TotalRatings:    hexutil.Uint64(p.TotalRatings),
		RatingSum:       hexutil.Uint64(p.RatingSum),
		MetadataURI:     p.MetadataURI,
		Bump:            hexutil.Uint(p.Bump),
	}
}

// RPCEscrow is the JSON-RPC representation of a task escrow. Custody is the
// balance currently held at the escrow address.
type RPCEscrow struct {
	Address   common.Address `json:"address"`
	Client    common.Address `json:"client"`
	Agent     common.Address `json:"agent"`
	Amount    hexutil.Uint64 `json:"amount"`
	Custody   *hexutil.Big   `json:"custody"`
	Status    string         `json:"status"`
	TaskID    string         `json:"taskId"`
	CreatedAt int64          `json:"createdAt"`
	Bump      hexutil.Uint   `json:"bump"`
}

// RPCLog is the JSON-RPC representation of an emitted event.
type RPCLog struct {
	Event    string         `json:"event"`
	Data     types.Event    `json:"data"`
	TxHash   common.Hash    `json:"transactionHash"`
	Sequence hexutil.Uint64 `json:"sequence"`
	Index    hexutil.Uint   `json:"logIndex"`
}

func newRPCLog(l *types.Log) *RPCLog {
	return &RPCLog{
		Event:    l.Event.EventName(),
		Data:     l.Event,
		TxHash:   l.TxHash,
		Sequence: hexutil.Uint64(l.Sequence),
		Index:    hexutil.Uint(l.Index),
	}
}

// RPCReceipt is the JSON-RPC representation of a committed transaction.
type RPCReceipt struct {
	TxHash   common.Hash    `json:"transactionHash"`
	Type     string         `json:"type"`
	Sender   common.Address `json:"from"`
	Sequence hexutil.Uint64 `json:"sequence"`
	Logs     []*RPCLog      `json:"logs"`
}

func newRPCReceipt(r *types.Receipt) *RPCReceipt {
	logs := make([]*RPCLog, len(r.Logs))
	for i, l := range r.Logs {
		logs[i] = newRPCLog(l)
	}
	return &RPCReceipt{
		TxHash:   r.TxHash,
		Type:     r.Type.String(),
		Sender:   r.Sender,
		Sequence: hexutil.Uint64(r.Sequence),
		Logs:     logs,
	}
}

// ProgramID returns the deployment identifier mixed into transaction signatures.
func (api *PublicLedgerAPI) ProgramID() common.Hash {
	return api.b.Signer().ProgramID()
}

// HeadSequence returns the sequence number of the last committed transaction.
func (api *PublicLedgerAPI) HeadSequence() hexutil.Uint64 {
	return hexutil.Uint64(api.b.HeadSequence())
}

// AgentAddress returns the profile address of owner.
func (api *PublicLedgerAPI) AgentAddress(owner common.Address) common.Address {
	return types.AgentAddress(owner)
}

// EscrowAddress returns the address of the escrow of client for taskID.
func (api *PublicLedgerAPI) EscrowAddress(client common.Address, taskID string) common.Address {
	return types.EscrowAddress(client, taskID)
}

// GetAgent returns the profile stored at addr.
func (api *PublicLedgerAPI) GetAgent(_ context.Context, addr common.Address) (*RPCAgent, error) {
	profile := api.b.Agent(addr)
	if profile == nil {
		return nil, nil
	}
	return newRPCAgent(addr, profile), nil
}

// GetAgentByOwner returns the profile owned by owner.
func (api *PublicLedgerAPI) GetAgentByOwner(ctx context.Context, owner common.Address) (*RPCAgent, error) {
	return api.GetAgent(ctx, types.AgentAddress(owner))
}

// FindAgents lists agents with the given capability, best reputation first. An
// empty capability matches every agent.
func (api *PublicLedgerAPI) FindAgents(_ context.Context, capability string, activeOnly bool, limit int) ([]*RPCAgent, error) {
	found := api.b.FindAgents(core.AgentFilter{
		Capability: capability,
		ActiveOnly: activeOnly,
		Limit:      limit,
	})
	results := make([]*RPCAgent, len(found))
	for i, agent := range found {
		results[i] = newRPCAgent(agent.Address, agent.Profile)
	}
	return results, nil
}

// GetEscrow returns the task escrow stored at addr.
func (api *PublicLedgerAPI) GetEscrow(_ context.Context, addr common.Address) (*RPCEscrow, error) {
	escrow := api.b.Escrow(addr)
	if escrow == nil {
		return nil, nil
	}
	return &RPCEscrow{
		Address:   addr,
		Client:    escrow.Client,
		Agent:     escrow.Agent,
		Amount:    hexutil.Uint64(escrow.Amount),
		Custody:   (*hexutil.Big)(api.b.Balance(addr).ToBig()),
		Status:    escrow.Status.String(),
		TaskID:    escrow.TaskID,
		CreatedAt: escrow.CreatedAt,
		Bump:      hexutil.Uint(escrow.Bump),
	}, nil
}

// GetEscrowByTask returns the escrow funded by client for taskID.
func (api *PublicLedgerAPI) GetEscrowByTask(ctx context.Context, client common.Address, taskID string) (*RPCEscrow, error) {
	return api.GetEscrow(ctx, types.EscrowAddress(client, taskID))
}

// GetBalance returns the balance of addr.
func (api *PublicLedgerAPI) GetBalance(_ context.Context, addr common.Address) (*hexutil.Big, error) {
	return (*hexutil.Big)(api.b.Balance(addr).ToBig()), nil
}

// GetTransactionCount returns the nonce the next transaction of addr must carry.
func (api *PublicLedgerAPI) GetTransactionCount(_ context.Context, addr common.Address) (hexutil.Uint64, error) {
	return hexutil.Uint64(api.b.Nonce(addr)), nil
}

// SignTransactionResult holds an unsigned transaction and the hash its sender
// has to sign.
type SignTransactionResult struct {
	Raw  hexutil.Bytes `json:"raw"`
	Hash common.Hash   `json:"hash"`
}

// FillTransaction fills the defaults of the given arguments and returns the
// resulting unsigned transaction.
func (api *PublicLedgerAPI) FillTransaction(ctx context.Context, args TransactionArgs) (*SignTransactionResult, error) {
	if err := args.setDefaults(ctx, api.b); err != nil {
		return nil, err
	}
	tx, err := args.toTransaction()
	if err != nil {
		return nil, err
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return &SignTransactionResult{Raw: raw, Hash: api.b.Signer().Hash(tx)}, nil
}

// SendRawTransaction submits a signed transaction and waits for it to commit.
func (api *PublicLedgerAPI) SendRawTransaction(ctx context.Context, input hexutil.Bytes) (*RPCReceipt, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(input); err != nil {
		return nil, err
	}
	receipt, err := api.b.SubmitTransaction(ctx, tx)
	if err != nil {
		log.Debug("Rejected submitted transaction", "hash", tx.Hash(), "kind", core.KindOf(err), "err", err)
		return nil, err
	}
	return newRPCReceipt(receipt), nil
}

// Logs creates a subscription that is notified of every event emitted by a
// committed transaction.
func (api *PublicLedgerAPI) Logs(ctx context.Context) (*rpc.Subscription, error) {
	notifier, supported := rpc.NotifierFromContext(ctx)
	if !supported {
		return &rpc.Subscription{}, rpc.ErrNotificationsUnsupported
	}
	rpcSub := notifier.CreateSubscription()

	logs := make(chan []*types.Log, 128)
	sub := api.b.SubscribeLogsEvent(logs)
	go func() {
		defer sub.Unsubscribe()
		for {
			select {
			case lgs := <-logs:
				for _, l := range lgs {
					notifier.Notify(rpcSub.ID, newRPCLog(l))
				}
			case <-sub.Err():
				return
			case <-rpcSub.Err():
				return
			case <-notifier.Closed():
				return
			}
		}
	}()
	return rpcSub, nil
}
