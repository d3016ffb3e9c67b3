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
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/agentledger/go-agentledger/core/types"
	"github.com/agentledger/go-agentledger/params"
)

// ReputationScore computes the fixed-point average rating, truncated towards
// zero. A profile without ratings scores zero.
func ReputationScore(ratingSum, totalRatings uint64) uint64 {
	if totalRatings == 0 {
		return 0
	}
	return ratingSum * params.ReputationScale / totalRatings
}

// ApplyRating folds a rating into the aggregate of the profile. Only the sum and
// the count are kept, so the cost is constant regardless of history. The profile
// is left untouched on error.
func ApplyRating(profile *types.AgentProfile, rating uint8) error {
	if err := validateRating(rating); err != nil {
		return err
	}
	total, overflow := math.SafeAdd(profile.TotalRatings, 1)
	if overflow {
		return ErrArithmeticOverflow
	}
	sum, overflow := math.SafeAdd(profile.RatingSum, uint64(rating))
	if overflow {
		return ErrArithmeticOverflow
	}
	scaled, overflow := math.SafeMul(sum, params.ReputationScale)
	if overflow {
		return ErrArithmeticOverflow
	}
	profile.TotalRatings = total
	profile.RatingSum = sum
	profile.ReputationScore = scaled / total
	return nil
}
