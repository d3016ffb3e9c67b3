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
	"errors"
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/agentledger/go-agentledger/core/types"
)

var txTypes = map[string]types.TxType{
	types.RegisterAgentTxType.String():   types.RegisterAgentTxType,
	types.UpdateAgentTxType.String():     types.UpdateAgentTxType,
	types.DeactivateAgentTxType.String(): types.DeactivateAgentTxType,
	types.ActivateAgentTxType.String():   types.ActivateAgentTxType,
	types.CreateTaskTxType.String():      types.CreateTaskTxType,
	types.AcceptTaskTxType.String():      types.AcceptTaskTxType,
	types.CompleteTaskTxType.String():    types.CompleteTaskTxType,
	types.RateAgentTxType.String():       types.RateAgentTxType,
}

// TransactionArgs represents the arguments to construct a new transaction.
// Which fields are used depends on Type.
type TransactionArgs struct {
	From  *common.Address `json:"from"`
	Type  string          `json:"type"`
	Nonce *hexutil.Uint64 `json:"nonce"`

	// Profile fields of register and update. For update, only the fields set
	// are replaced.
	Name         *string         `json:"name"`
	Capabilities *[]string       `json:"capabilities"`
	Pricing      *hexutil.Uint64 `json:"pricing"`
	MetadataURI  *string         `json:"metadataUri"`

	Agent  *common.Address `json:"agent"`
	Escrow *common.Address `json:"escrow"`
	TaskID *string         `json:"taskId"`
	Amount *hexutil.Uint64 `json:"amount"`
	Rating *hexutil.Uint   `json:"rating"`
}

// from retrieves the transaction sender address.
func (args *TransactionArgs) from() common.Address {
	if args.From == nil {
		return common.Address{}
	}
	return *args.From
}

func (args *TransactionArgs) txType() (types.TxType, error) {
	t, ok := txTypes[args.Type]
	if !ok {
		return 0, fmt.Errorf("%w: %q", types.ErrUnknownTxType, args.Type)
	}
	return t, nil
}

// setDefaults fills in default values for unspecified tx fields.
func (args *TransactionArgs) setDefaults(ctx context.Context, b Backend) error {
	if args.From == nil {
		return errors.New(`sender must be specified`)
	}
	t, err := args.txType()
	if err != nil {
		return err
	}
	if args.Nonce == nil {
		nonce := b.Nonce(args.from())
		args.Nonce = (*hexutil.Uint64)(&nonce)
	}
	switch t {
	case types.RegisterAgentTxType:
		return args.setDefaultsOfRegister()
	case types.UpdateAgentTxType, types.DeactivateAgentTxType, types.ActivateAgentTxType:
		args.setDefaultAgent()
		return nil
	case types.CreateTaskTxType:
		return args.setDefaultsOfCreateTask()
	case types.AcceptTaskTxType, types.CompleteTaskTxType:
		if args.Escrow == nil {
			return errors.New(`escrow must be specified`)
		}
		args.setDefaultAgent()
		return nil
	case types.RateAgentTxType:
		return args.setDefaultsOfRateAgent(b)
	}
	return nil
}

// setDefaultAgent defaults the declared profile to the one of the sender.
func (args *TransactionArgs) setDefaultAgent() {
	if args.Agent == nil {
		agent := types.AgentAddress(args.from())
		args.Agent = &agent
	}
}

func (args *TransactionArgs) setDefaultsOfRegister() error {
	if args.Pricing == nil {
		return errors.New(`pricing must be specified`)
	}
	if args.Name == nil {
		return errors.New(`name must be specified`)
	}
	return nil
}

func (args *TransactionArgs) setDefaultsOfCreateTask() error {
	if args.TaskID == nil {
		return errors.New(`task id must be specified`)
	}
	if args.Agent == nil {
		return errors.New(`agent must be specified`)
	}
	if args.Amount == nil {
		return errors.New(`amount must be specified`)
	}
	if args.Escrow == nil {
		escrow := types.EscrowAddress(args.from(), *args.TaskID)
		args.Escrow = &escrow
	}
	return nil
}

func (args *TransactionArgs) setDefaultsOfRateAgent(b Backend) error {
	if args.Escrow == nil {
		return errors.New(`escrow must be specified`)
	}
	if args.Rating == nil {
		return errors.New(`rating must be specified`)
	}
	if uint(*args.Rating) > math.MaxUint8 {
		return fmt.Errorf("rating %d out of range", *args.Rating)
	}
	if args.Agent == nil {
		escrow := b.Escrow(*args.Escrow)
		if escrow == nil {
			return fmt.Errorf("escrow %s not found", *args.Escrow)
		}
		args.Agent = &escrow.Agent
	}
	return nil
}

func (args *TransactionArgs) str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (args *TransactionArgs) u64(n *hexutil.Uint64) uint64 {
	if n == nil {
		return 0
	}
	return uint64(*n)
}

func (args *TransactionArgs) addr(a *common.Address) common.Address {
	if a == nil {
		return common.Address{}
	}
	return *a
}

// toPayload builds the operation body. setDefaults must have been called first.
func (args *TransactionArgs) toPayload() (types.TxPayload, error) {
	t, err := args.txType()
	if err != nil {
		return nil, err
	}
	switch t {
	case types.RegisterAgentTxType:
		var caps []string
		if args.Capabilities != nil {
			caps = *args.Capabilities
		}
		return &types.RegisterAgentTx{
			Name:         args.str(args.Name),
			Capabilities: caps,
			Pricing:      args.u64(args.Pricing),
			MetadataURI:  args.str(args.MetadataURI),
		}, nil
	case types.UpdateAgentTxType:
		patch := types.AgentPatch{
			Name:         args.Name,
			Capabilities: args.Capabilities,
			MetadataURI:  args.MetadataURI,
		}
		if args.Pricing != nil {
			pricing := uint64(*args.Pricing)
			patch.Pricing = &pricing
		}
		return &types.UpdateAgentTx{Agent: args.addr(args.Agent), Patch: patch}, nil
	case types.DeactivateAgentTxType, types.ActivateAgentTxType:
		return &types.AgentStatusTx{Agent: args.addr(args.Agent), Activate: t == types.ActivateAgentTxType}, nil
	case types.CreateTaskTxType:
		return &types.CreateTaskTx{
			Escrow: args.addr(args.Escrow),
			Agent:  args.addr(args.Agent),
			TaskID: args.str(args.TaskID),
			Amount: args.u64(args.Amount),
		}, nil
	case types.AcceptTaskTxType, types.CompleteTaskTxType:
		return &types.TaskActionTx{
			Escrow:   args.addr(args.Escrow),
			Agent:    args.addr(args.Agent),
			Complete: t == types.CompleteTaskTxType,
		}, nil
	case types.RateAgentTxType:
		var rating uint8
		if args.Rating != nil {
			rating = uint8(*args.Rating)
		}
		return &types.RateAgentTx{
			Escrow: args.addr(args.Escrow),
			Agent:  args.addr(args.Agent),
			Rating: rating,
		}, nil
	default:
		return nil, types.ErrUnknownTxType
	}
}

// toTransaction converts the arguments to an unsigned transaction.
func (args *TransactionArgs) toTransaction() (*types.Transaction, error) {
	payload, err := args.toPayload()
	if err != nil {
		return nil, err
	}
	return types.NewTx(args.u64(args.Nonce), payload), nil
}
