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
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// ErrInvalidSig is returned when a transaction signature can't be verified.
var ErrInvalidSig = errors.New("invalid transaction signature")

// Signer computes signing hashes of transactions and recovers their senders. The
// program identifier is mixed into every signing hash, so a signature is only
// valid for the deployment it was made for.
type Signer struct {
	programID common.Hash
}

// NewSigner returns a signer for the given deployment.
func NewSigner(programID common.Hash) Signer {
	return Signer{programID: programID}
}

// ProgramID returns the deployment identifier of the signer.
func (s Signer) ProgramID() common.Hash {
	return s.programID
}

// Hash returns the hash to be signed by the sender.
func (s Signer) Hash(tx *Transaction) common.Hash {
	enc, _ := rlp.EncodeToBytes([]interface{}{
		s.programID,
		tx.nonce,
		tx.Type(),
		tx.data,
	})
	return crypto.Keccak256Hash(enc)
}

// SignTx signs the transaction with the given private key.
func SignTx(tx *Transaction, s Signer, prv *ecdsa.PrivateKey) (*Transaction, error) {
	h := s.Hash(tx)
	sig, err := crypto.Sign(h[:], prv)
	if err != nil {
		return nil, err
	}
	return tx.WithSignature(sig), nil
}

// MustSignNewTx creates a transaction and signs it. It panics on failure.
func MustSignNewTx(prv *ecdsa.PrivateKey, s Signer, nonce uint64, payload TxPayload) *Transaction {
	tx, err := SignTx(NewTx(nonce, payload), s, prv)
	if err != nil {
		panic(err)
	}
	return tx
}

// Sender recovers the account that signed the transaction.
func Sender(s Signer, tx *Transaction) (common.Address, error) {
	if len(tx.sig) == 0 {
		return common.Address{}, ErrMissingSignature
	}
	if len(tx.sig) != crypto.SignatureLength {
		return common.Address{}, ErrInvalidSig
	}
	r := new(big.Int).SetBytes(tx.sig[:32])
	sv := new(big.Int).SetBytes(tx.sig[32:64])
	if !crypto.ValidateSignatureValues(tx.sig[64], r, sv, true) {
		return common.Address{}, ErrInvalidSig
	}
	h := s.Hash(tx)
	pub, err := crypto.SigToPub(h[:], tx.sig)
	if err != nil {
		return common.Address{}, ErrInvalidSig
	}
	return crypto.PubkeyToAddress(*pub), nil
}
