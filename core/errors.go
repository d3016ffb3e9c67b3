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

	"github.com/agentledger/go-agentledger/core/state"
	"github.com/agentledger/go-agentledger/core/types"
)

// List of field validation errors.
var (
	// ErrNameTooLong is returned if an agent name exceeds params.MaxNameLength.
	ErrNameTooLong = errors.New("agent name too long")

	// ErrTooManyCapabilities is returned if a profile lists more than
	// params.MaxCapabilities capability tags.
	ErrTooManyCapabilities = errors.New("too many capabilities")

	// ErrCapabilityTooLong is returned if a capability tag exceeds
	// params.MaxCapabilityLength.
	ErrCapabilityTooLong = errors.New("capability too long")

	ErrMetadataURITooLong = errors.New("metadata uri too long")
	ErrInvalidPricing     = errors.New("pricing must be greater than zero")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrTaskIDTooLong      = errors.New("task id too long")
)

// List of ledger state errors.
var (
	// ErrInvalidTaskStatus is returned if an escrow transition is attempted from
	// a status that doesn't allow it.
	ErrInvalidTaskStatus = errors.New("invalid task status for this operation")

	ErrAgentNotActive = errors.New("agent is not active")
	ErrAgentNotFound  = errors.New("agent profile not found")
	ErrEscrowNotFound = errors.New("task escrow not found")

	// ErrAddressInUse is returned if a record already exists at the derived
	// address of a new record.
	ErrAddressInUse = errors.New("address already in use")

	// ErrInsufficientFunds is returned if the client can't cover the escrow amount.
	ErrInsufficientFunds = errors.New("insufficient funds for escrow")

	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// ErrRecordTooLarge is returned if a record outgrows its allocated size.
	ErrRecordTooLarge = state.ErrRecordTooLarge
)

// List of authorization errors.
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAgentMismatch = errors.New("agent does not match escrow")

	// ErrAddressMismatch is returned if a declared record address differs from
	// the address derived from the signer and the transaction fields.
	ErrAddressMismatch = errors.New("declared address does not match derived address")

	ErrInvalidSignature = types.ErrInvalidSig
)

// List of protocol errors.
var (
	ErrNonceTooLow   = errors.New("nonce too low")
	ErrNonceTooHigh  = errors.New("nonce too high")
	ErrUnknownTxType = types.ErrUnknownTxType
)

// ErrorKind is the broad class of a transaction failure.
type ErrorKind uint8

const (
	UnknownError ErrorKind = iota
	ValidationError
	StateError
	AuthorizationError
	ProtocolError
)

func (k ErrorKind) String() string {
	switch k {
	case ValidationError:
		return "validation"
	case StateError:
		return "state"
	case AuthorizationError:
		return "authorization"
	case ProtocolError:
		return "protocol"
	default:
		return "unknown"
	}
}

var errorKinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrNameTooLong, ValidationError},
	{ErrTooManyCapabilities, ValidationError},
	{ErrCapabilityTooLong, ValidationError},
	{ErrMetadataURITooLong, ValidationError},
	{ErrInvalidPricing, ValidationError},
	{ErrInvalidAmount, ValidationError},
	{ErrInvalidRating, ValidationError},
	{ErrTaskIDTooLong, ValidationError},

	{ErrInvalidTaskStatus, StateError},
	{ErrAgentNotActive, StateError},
	{ErrAgentNotFound, StateError},
	{ErrEscrowNotFound, StateError},
	{ErrAddressInUse, StateError},
	{ErrInsufficientFunds, StateError},
	{ErrArithmeticOverflow, StateError},
	{ErrRecordTooLarge, StateError},

	{ErrUnauthorized, AuthorizationError},
	{ErrAgentMismatch, AuthorizationError},
	{ErrAddressMismatch, AuthorizationError},
	{ErrInvalidSignature, AuthorizationError},
	{types.ErrMissingSignature, AuthorizationError},

	{ErrNonceTooLow, ProtocolError},
	{ErrNonceTooHigh, ProtocolError},
	{ErrUnknownTxType, ProtocolError},
	{types.ErrMalformedTx, ProtocolError},
}

// KindOf classifies an error returned by the ledger.
func KindOf(err error) ErrorKind {
	if err == nil {
		return UnknownError
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return UnknownError
}
