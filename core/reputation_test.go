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
	"math"
	"math/rand"
	"testing"

	"github.com/agentledger/go-agentledger/core/types"
)

func TestApplyRatingInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	profile := new(types.AgentProfile)

	if profile.ReputationScore != 0 {
		t.Fatalf("unrated profile has score %d", profile.ReputationScore)
	}
	for i := 0; i < 1000; i++ {
		rating := uint8(rng.Intn(5) + 1)
		if err := ApplyRating(profile, rating); err != nil {
			t.Fatalf("rating %d: %v", i, err)
		}
		if want := profile.RatingSum * 100 / profile.TotalRatings; profile.ReputationScore != want {
			t.Fatalf("rating %d: score mismatch: have %d, want %d", i, profile.ReputationScore, want)
		}
		if profile.TotalRatings != uint64(i+1) {
			t.Fatalf("rating %d: total mismatch: have %d", i, profile.TotalRatings)
		}
		if profile.ReputationScore < 100 || profile.ReputationScore > 500 {
			t.Fatalf("rating %d: score %d out of range", i, profile.ReputationScore)
		}
	}
}

func TestApplyRatingTruncates(t *testing.T) {
	profile := new(types.AgentProfile)
	for _, r := range []uint8{5, 4, 4} {
		if err := ApplyRating(profile, r); err != nil {
			t.Fatal(err)
		}
	}
	// 1300 / 3 = 433.33
	if profile.ReputationScore != 433 {
		t.Fatalf("score mismatch: have %d, want 433", profile.ReputationScore)
	}
	if have := ReputationScore(profile.RatingSum, profile.TotalRatings); have != 433 {
		t.Fatalf("ReputationScore mismatch: have %d, want 433", have)
	}
	if have := ReputationScore(0, 0); have != 0 {
		t.Fatalf("unrated score: have %d", have)
	}
}

func TestApplyRatingErrors(t *testing.T) {
	tests := []struct {
		profile types.AgentProfile
		rating  uint8
		err     error
	}{
		{types.AgentProfile{}, 0, ErrInvalidRating},
		{types.AgentProfile{}, 6, ErrInvalidRating},
		{types.AgentProfile{TotalRatings: math.MaxUint64}, 3, ErrArithmeticOverflow},
		{types.AgentProfile{TotalRatings: 1, RatingSum: math.MaxUint64 - 1}, 3, ErrArithmeticOverflow},
		{types.AgentProfile{TotalRatings: 1, RatingSum: math.MaxUint64 / 50}, 3, ErrArithmeticOverflow},
	}
	for i, test := range tests {
		profile := test.profile
		err := ApplyRating(&profile, test.rating)
		if !errors.Is(err, test.err) {
			t.Errorf("test %d: error mismatch: have %v, want %v", i, err, test.err)
		}
		if profile.TotalRatings != test.profile.TotalRatings || profile.RatingSum != test.profile.RatingSum {
			t.Errorf("test %d: profile modified on error", i)
		}
	}
}
