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
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

var (
	ErrUnknownTxType    = errors.New("unknown transaction type")
	ErrMalformedTx      = errors.New("malformed transaction")
	ErrMissingSignature = errors.New("transaction is not signed")
)

// TxType is the operation carried by a transaction.
type TxType uint8

const (
	RegisterAgentTxType   TxType = 0x01 // Register a new agent profile
	UpdateAgentTxType     TxType = 0x02 // Partially update an agent profile
	DeactivateAgentTxType TxType = 0x03 // Stop accepting tasks
	ActivateAgentTxType   TxType = 0x04 // Resume accepting tasks
	CreateTaskTxType      TxType = 0x11 // Fund a task escrow
	AcceptTaskTxType      TxType = 0x12 // Agent accepts a funded task
	CompleteTaskTxType    TxType = 0x13 // Agent completes a task, releasing funds
	RateAgentTxType       TxType = 0x21 // Client rates a completed task
)

func (t TxType) String() string {
	switch t {
	case RegisterAgentTxType:
		return "register"
	case UpdateAgentTxType:
		return "update"
	case DeactivateAgentTxType:
		return "deactivate"
	case ActivateAgentTxType:
		return "activate"
	case CreateTaskTxType:
		return "create_task"
	case AcceptTaskTxType:
		return "accept_task"
	case CompleteTaskTxType:
		return "complete_task"
	case RateAgentTxType:
		return "rate_agent"
	default:
		return fmt.Sprintf("TxType(%#x)", uint8(t))
	}
}

// TxPayload is the operation specific body of a transaction.
type TxPayload interface {
	TxType() TxType
}

// RegisterAgentTx registers the signer's agent profile.
type RegisterAgentTx struct {
	Name         string
	Capabilities []string
	Pricing      uint64
	MetadataURI  string
}

// UpdateAgentTx applies Patch to the signer's agent profile.
type UpdateAgentTx struct {
	Agent common.Address // Declared profile address
	Patch AgentPatch
}

// AgentStatusTx flips the status of the signer's agent profile. It is the payload
// of both DeactivateAgentTxType and ActivateAgentTxType.
type AgentStatusTx struct {
	Agent    common.Address // Declared profile address
	Activate bool
}

// CreateTaskTx funds a new escrow for the task TaskID with agent Agent.
type CreateTaskTx struct {
	Escrow common.Address // Declared escrow address
	Agent  common.Address // Profile address of the hired agent
	TaskID string
	Amount uint64
}

// TaskActionTx is the payload of AcceptTaskTxType and CompleteTaskTxType.
type TaskActionTx struct {
	Escrow   common.Address
	Agent    common.Address // Declared profile address of the signer
	Complete bool
}

// RateAgentTx rates the agent of a completed escrow.
type RateAgentTx struct {
	Escrow common.Address
	Agent  common.Address
	Rating uint8
}

func (*RegisterAgentTx) TxType() TxType { return RegisterAgentTxType }
func (*UpdateAgentTx) TxType() TxType   { return UpdateAgentTxType }
func (*CreateTaskTx) TxType() TxType    { return CreateTaskTxType }
func (*RateAgentTx) TxType() TxType     { return RateAgentTxType }

func (tx *AgentStatusTx) TxType() TxType {
	if tx.Activate {
		return ActivateAgentTxType
	}
	return DeactivateAgentTxType
}

func (tx *TaskActionTx) TxType() TxType {
	if tx.Complete {
		return CompleteTaskTxType
	}
	return AcceptTaskTxType
}

// newPayload returns an empty payload for the given type.
func newPayload(t TxType) (TxPayload, error) {
	switch t {
	case RegisterAgentTxType:
		return new(RegisterAgentTx), nil
	case UpdateAgentTxType:
		return new(UpdateAgentTx), nil
	case DeactivateAgentTxType:
		return &AgentStatusTx{Activate: false}, nil
	case ActivateAgentTxType:
		return &AgentStatusTx{Activate: true}, nil
	case CreateTaskTxType:
		return new(CreateTaskTx), nil
	case AcceptTaskTxType:
		return &TaskActionTx{Complete: false}, nil
	case CompleteTaskTxType:
		return &TaskActionTx{Complete: true}, nil
	case RateAgentTxType:
		return new(RateAgentTx), nil
	default:
		return nil, ErrUnknownTxType
	}
}

// payloadRLP strips the fields that are already implied by the transaction type.
func payloadRLP(p TxPayload) ([]byte, error) {
	switch p := p.(type) {
	case *AgentStatusTx:
		return rlp.EncodeToBytes([]interface{}{p.Agent})
	case *TaskActionTx:
		return rlp.EncodeToBytes([]interface{}{p.Escrow, p.Agent})
	default:
		return rlp.EncodeToBytes(p)
	}
}

func decodePayload(t TxType, data []byte) (TxPayload, error) {
	p, err := newPayload(t)
	if err != nil {
		return nil, err
	}
	switch p := p.(type) {
	case *AgentStatusTx:
		var dec struct{ Agent common.Address }
		if err := rlp.DecodeBytes(data, &dec); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTx, err)
		}
		p.Agent = dec.Agent
	case *TaskActionTx:
		var dec struct{ Escrow, Agent common.Address }
		if err := rlp.DecodeBytes(data, &dec); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTx, err)
		}
		p.Escrow, p.Agent = dec.Escrow, dec.Agent
	default:
		if err := rlp.DecodeBytes(data, p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTx, err)
		}
	}
	return p, nil
}

// Transaction is a signed ledger operation.
type Transaction struct {
	nonce   uint64
	payload TxPayload
	data    []byte // RLP encoding of payload
	sig     []byte // 65 byte [R || S || V] secp256k1 signature

	hash atomic.Value
}

// txEnvelope is the wire form of a transaction.
type txEnvelope struct {
	Type    TxType
	Nonce   uint64
	Payload []byte
	Sig     []byte
}

// NewTx creates an unsigned transaction.
func NewTx(nonce uint64, payload TxPayload) *Transaction {
	data, err := payloadRLP(payload)
	if err != nil {
		// All payload types consist of RLP encodable fields only.
		panic(fmt.Sprintf("can't encode %T: %v", payload, err))
	}
	return &Transaction{nonce: nonce, payload: payload, data: data}
}

// Type returns the operation of the transaction.
func (tx *Transaction) Type() TxType { return tx.payload.TxType() }

// Nonce returns the sender nonce the transaction is valid for.
func (tx *Transaction) Nonce() uint64 { return tx.nonce }

// Payload returns the decoded operation body.
func (tx *Transaction) Payload() TxPayload { return tx.payload }

// Signature returns a copy of the raw signature, nil when unsigned.
func (tx *Transaction) Signature() []byte { return common.CopyBytes(tx.sig) }

// WithSignature returns a copy of the transaction carrying sig.
func (tx *Transaction) WithSignature(sig []byte) *Transaction {
	return &Transaction{
		nonce:   tx.nonce,
		payload: tx.payload,
		data:    tx.data,
		sig:     common.CopyBytes(sig),
	}
}

// Hash returns the hash of the signed transaction.
func (tx *Transaction) Hash() common.Hash {
	if hash := tx.hash.Load(); hash != nil {
		return hash.(common.Hash)
	}
	enc, _ := tx.MarshalBinary()
	h := crypto.Keccak256Hash(enc)
	tx.hash.Store(h)
	return h
}

// EncodeRLP implements rlp.Encoder.
func (tx *Transaction) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &txEnvelope{
		Type:    tx.Type(),
		Nonce:   tx.nonce,
		Payload: tx.data,
		Sig:     tx.sig,
	})
}

// DecodeRLP implements rlp.Decoder.
func (tx *Transaction) DecodeRLP(s *rlp.Stream) error {
	var env txEnvelope
	if err := s.Decode(&env); err != nil {
		return err
	}
	payload, err := decodePayload(env.Type, env.Payload)
	if err != nil {
		return err
	}
	// Reject non-canonical payload encodings so that one operation has one hash.
	canon, err := payloadRLP(payload)
	if err != nil || !bytes.Equal(canon, env.Payload) {
		return ErrMalformedTx
	}
	tx.nonce, tx.payload, tx.data = env.Nonce, payload, env.Payload
	tx.sig = env.Sig
	if len(tx.sig) == 0 {
		tx.sig = nil
	}
	return nil
}

// MarshalBinary returns the canonical encoding of the transaction.
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	return rlp.EncodeToBytes(tx)
}

// UnmarshalBinary decodes the canonical encoding of a transaction.
func (tx *Transaction) UnmarshalBinary(b []byte) error {
	return rlp.DecodeBytes(b, tx)
}
