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
	"fmt"

	"github.com/agentledger/go-agentledger/core/types"
	"github.com/agentledger/go-agentledger/params"
)

func validateName(name string) error {
	if len(name) > params.MaxNameLength {
		return fmt.Errorf("%w: have %d bytes, max %d", ErrNameTooLong, len(name), params.MaxNameLength)
	}
	return nil
}

func validateCapabilities(caps []string) error {
	if len(caps) > params.MaxCapabilities {
		return fmt.Errorf("%w: have %d, max %d", ErrTooManyCapabilities, len(caps), params.MaxCapabilities)
	}
	for i, c := range caps {
		if len(c) > params.MaxCapabilityLength {
			return fmt.Errorf("%w: capability %d has %d bytes, max %d", ErrCapabilityTooLong, i, len(c), params.MaxCapabilityLength)
		}
	}
	return nil
}

func validatePricing(pricing uint64) error {
	if pricing == 0 {
		return ErrInvalidPricing
	}
	return nil
}

func validateMetadataURI(uri string) error {
	if len(uri) > params.MaxMetadataURILength {
		return fmt.Errorf("%w: have %d bytes, max %d", ErrMetadataURITooLong, len(uri), params.MaxMetadataURILength)
	}
	return nil
}

func validateTaskID(id string) error {
	if len(id) > params.MaxTaskIDLength {
		return fmt.Errorf("%w: have %d bytes, max %d", ErrTaskIDTooLong, len(id), params.MaxTaskIDLength)
	}
	return nil
}

func validateRating(rating uint8) error {
	if rating < params.MinRating || rating > params.MaxRating {
		return fmt.Errorf("%w: have %d", ErrInvalidRating, rating)
	}
	return nil
}

// validateRegister checks the fields of a new profile in declaration order.
func validateRegister(tx *types.RegisterAgentTx) error {
	if err := validateName(tx.Name); err != nil {
		return err
	}
	if err := validateCapabilities(tx.Capabilities); err != nil {
		return err
	}
	if err := validatePricing(tx.Pricing); err != nil {
		return err
	}
	return validateMetadataURI(tx.MetadataURI)
}

// validatePatch checks the fields present in a patch. Absent fields are not
// validated since they keep their stored value.
func validatePatch(patch *types.AgentPatch) error {
	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return err
		}
	}
	if patch.Capabilities != nil {
		if err := validateCapabilities(*patch.Capabilities); err != nil {
			return err
		}
	}
	if patch.Pricing != nil {
		if err := validatePricing(*patch.Pricing); err != nil {
			return err
		}
	}
	if patch.MetadataURI != nil {
		if err := validateMetadataURI(*patch.MetadataURI); err != nil {
			return err
		}
	}
	return nil
}
