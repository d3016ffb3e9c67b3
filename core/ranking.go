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
	"bytes"
	"container/list"

	"github.com/ethereum/go-ethereum/common"

	"github.com/agentledger/go-agentledger/core/types"
)

// RankedAgent is an agent profile together with its address.
type RankedAgent struct {
	Address common.Address
	Profile *types.AgentProfile
}

// outranks reports whether a should be listed before b: higher reputation first,
// then more completed tasks, then the lower address.
func outranks(a, b *RankedAgent) bool {
	if a.Profile.ReputationScore != b.Profile.ReputationScore {
		return a.Profile.ReputationScore > b.Profile.ReputationScore
	}
	if a.Profile.TasksCompleted != b.Profile.TasksCompleted {
		return a.Profile.TasksCompleted > b.Profile.TasksCompleted
	}
	return bytes.Compare(a.Address[:], b.Address[:]) < 0
}

// agentRanking is a sorted linked list keeping at most limit agents. A
// non-positive limit keeps every agent.
type agentRanking struct {
	*list.List
	limit int
}

func newAgentRanking(limit int) *agentRanking {
	return &agentRanking{List: list.New(), limit: limit}
}

// Put inserts the agent at its rank, dropping the last entry when the ranking
// overflows.
func (r *agentRanking) Put(agent *RankedAgent) {
	if r.limit > 0 && r.Len() == r.limit && !outranks(agent, r.Back().Value.(*RankedAgent)) {
		return
	}
	inserted := false
	for e := r.Front(); e != nil; e = e.Next() {
		if outranks(agent, e.Value.(*RankedAgent)) {
			r.InsertBefore(agent, e)
			inserted = true
			break
		}
	}
	if !inserted {
		r.PushBack(agent)
	}
	if r.limit > 0 && r.Len() > r.limit {
		r.Remove(r.Back())
	}
}

// Agents returns the ranked agents, best first.
func (r *agentRanking) Agents() []*RankedAgent {
	agents := make([]*RankedAgent, 0, r.Len())
	for e := r.Front(); e != nil; e = e.Next() {
		agents = append(agents, e.Value.(*RankedAgent))
	}
	return agents
}
