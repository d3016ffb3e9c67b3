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
	"context"
	"crypto/ecdsa"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentledger/go-agentledger/core/rawdb"
	"github.com/agentledger/go-agentledger/core/state"
	"github.com/agentledger/go-agentledger/core/types"
	"github.com/agentledger/go-agentledger/params"
)

var testTime = time.Unix(1700000000, 0)

type testAccount struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

func newTestAccount(t *testing.T) *testAccount {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &testAccount{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}
}

func (a *testAccount) agent() common.Address {
	return types.AgentAddress(a.addr)
}

type testLedger struct {
	*Ledger
	t *testing.T
}

func newTestLedger(t *testing.T, alloc ...params.GenesisAccount) *testLedger {
	config := params.DefaultConfig
	config.DataDir = ""
	config.Genesis = alloc

	l, err := newLedger(rawdb.NewMemoryDatabase(), &config, func() time.Time { return testTime })
	require.NoError(t, err)
	t.Cleanup(l.Close)
	return &testLedger{Ledger: l, t: t}
}

func (l *testLedger) send(from *testAccount, payload types.TxPayload) (*types.Receipt, error) {
	tx := types.MustSignNewTx(from.key, l.Signer(), l.Nonce(from.addr), payload)
	return l.SubmitTransaction(context.Background(), tx)
}

func (l *testLedger) mustSend(from *testAccount, payload types.TxPayload) *types.Receipt {
	receipt, err := l.send(from, payload)
	require.NoError(l.t, err, "payload: %s", spew.Sdump(payload))
	require.Len(l.t, receipt.Logs, 1)
	return receipt
}

func (l *testLedger) register(owner *testAccount, caps ...string) {
	l.mustSend(owner, &types.RegisterAgentTx{
		Name:         "agent",
		Capabilities: caps,
		Pricing:      100,
		MetadataURI:  "https://example.com/agent.json",
	})
}

func createTaskTx(client, agent *testAccount, taskID string, amount uint64) *types.CreateTaskTx {
	return &types.CreateTaskTx{
		Escrow: types.EscrowAddress(client.addr, taskID),
		Agent:  agent.agent(),
		TaskID: taskID,
		Amount: amount,
	}
}

func acceptTx(client, agent *testAccount, taskID string) *types.TaskActionTx {
	return &types.TaskActionTx{Escrow: types.EscrowAddress(client.addr, taskID), Agent: agent.agent()}
}

func completeTx(client, agent *testAccount, taskID string) *types.TaskActionTx {
	return &types.TaskActionTx{Escrow: types.EscrowAddress(client.addr, taskID), Agent: agent.agent(), Complete: true}
}

func rateTx(client, agent *testAccount, taskID string, rating uint8) *types.RateAgentTx {
	return &types.RateAgentTx{Escrow: types.EscrowAddress(client.addr, taskID), Agent: agent.agent(), Rating: rating}
}

// Tests the full marketplace flow, including a second rating of the same escrow.
// Nothing prevents a client from rating a completed task repeatedly and every
// rating is counted.
func TestEndToEndScenario(t *testing.T) {
	client, agent := newTestAccount(t), newTestAccount(t)
	l := newTestLedger(t, params.GenesisAccount{Address: client.addr, Balance: 1000})

	l.register(agent, "coding")
	profile := l.AgentByOwner(agent.addr)
	require.NotNil(t, profile)
	assert.Equal(t, types.AgentActive, profile.Status)
	assert.Equal(t, uint64(100), profile.Pricing)

	escrowAddr := types.EscrowAddress(client.addr, "t1")
	receipt := l.mustSend(client, createTaskTx(client, agent, "t1", 500))
	assert.Equal(t, &types.TaskCreated{Escrow: escrowAddr, Client: client.addr, Agent: agent.agent(), TaskID: "t1", Amount: 500}, receipt.Logs[0].Event)

	escrow := l.Escrow(escrowAddr)
	require.NotNil(t, escrow)
	assert.Equal(t, types.TaskFunded, escrow.Status)
	assert.Equal(t, testTime.Unix(), escrow.CreatedAt)
	assert.Equal(t, uint64(500), l.Balance(client.addr).Uint64())
	assert.Equal(t, uint64(500), l.Balance(escrowAddr).Uint64())

	l.mustSend(agent, acceptTx(client, agent, "t1"))
	assert.Equal(t, types.TaskInProgress, l.Escrow(escrowAddr).Status)

	receipt = l.mustSend(agent, completeTx(client, agent, "t1"))
	assert.Equal(t, &types.TaskCompletedEvent{Escrow: escrowAddr, Agent: agent.agent(), Amount: 500}, receipt.Logs[0].Event)
	assert.Equal(t, types.TaskCompleted, l.Escrow(escrowAddr).Status)
	assert.True(t, l.Balance(escrowAddr).IsZero())
	assert.Equal(t, uint64(500), l.Balance(agent.addr).Uint64())
	assert.Equal(t, uint64(1), l.AgentByOwner(agent.addr).TasksCompleted)

	receipt = l.mustSend(client, rateTx(client, agent, "t1", 4))
	assert.Equal(t, &types.AgentRated{Agent: agent.agent(), Rating: 4, NewReputation: 400}, receipt.Logs[0].Event)
	profile = l.AgentByOwner(agent.addr)
	assert.Equal(t, uint64(1), profile.TotalRatings)
	assert.Equal(t, uint64(4), profile.RatingSum)
	assert.Equal(t, uint64(400), profile.ReputationScore)

	// Second rating of the same escrow is accepted as well.
	l.mustSend(client, rateTx(client, agent, "t1", 5))
	profile = l.AgentByOwner(agent.addr)
	assert.Equal(t, uint64(2), profile.TotalRatings)
	assert.Equal(t, uint64(9), profile.RatingSum)
	assert.Equal(t, uint64(450), profile.ReputationScore)

	assert.Equal(t, uint64(6), l.HeadSequence())
}

func TestRegisterValidation(t *testing.T) {
	l := newTestLedger(t)
	owner := newTestAccount(t)

	tooManyCaps := make([]string, params.MaxCapabilities+1)
	tests := []struct {
		tx  *types.RegisterAgentTx
		err error
	}{
		{&types.RegisterAgentTx{Name: strings.Repeat("n", params.MaxNameLength+1), Pricing: 1}, ErrNameTooLong},
		{&types.RegisterAgentTx{Name: "a", Capabilities: tooManyCaps, Pricing: 1}, ErrTooManyCapabilities},
		{&types.RegisterAgentTx{Name: "a", Capabilities: []string{strings.Repeat("c", params.MaxCapabilityLength+1)}, Pricing: 1}, ErrCapabilityTooLong},
		{&types.RegisterAgentTx{Name: "a", Pricing: 0}, ErrInvalidPricing},
		{&types.RegisterAgentTx{Name: "a", Pricing: 1, MetadataURI: strings.Repeat("u", params.MaxMetadataURILength+1)}, ErrMetadataURITooLong},
	}
	for i, test := range tests {
		_, err := l.send(owner, test.tx)
		if !errors.Is(err, test.err) {
			t.Errorf("test %d: error mismatch: have %v, want %v", i, err, test.err)
		}
		assert.Equal(t, ValidationError, KindOf(err))
	}
	assert.Nil(t, l.AgentByOwner(owner.addr))
	assert.Equal(t, uint64(0), l.Nonce(owner.addr))

	// Limits are inclusive.
	l.mustSend(owner, &types.RegisterAgentTx{
		Name:         strings.Repeat("n", params.MaxNameLength),
		Capabilities: []string{strings.Repeat("c", params.MaxCapabilityLength), "b", "c", "d", "e", "f", "g", "h"},
		Pricing:      1,
		MetadataURI:  strings.Repeat("u", params.MaxMetadataURILength),
	})
	_, err := l.send(owner, &types.RegisterAgentTx{Name: "again", Pricing: 1})
	assert.True(t, errors.Is(err, ErrAddressInUse))
	assert.Equal(t, strings.Repeat("n", params.MaxNameLength), l.AgentByOwner(owner.addr).Name)
}

func TestUpdateAgent(t *testing.T) {
	l := newTestLedger(t)
	owner, other := newTestAccount(t), newTestAccount(t)
	l.register(owner, "coding", "trading")

	name, pricing := "renamed", uint64(250)
	receipt := l.mustSend(owner, &types.UpdateAgentTx{
		Agent: owner.agent(),
		Patch: types.AgentPatch{Name: &name, Pricing: &pricing},
	})
	assert.Equal(t, &types.AgentUpdated{Agent: owner.agent(), Owner: owner.addr}, receipt.Logs[0].Event)

	profile := l.AgentByOwner(owner.addr)
	assert.Equal(t, "renamed", profile.Name)
	assert.Equal(t, uint64(250), profile.Pricing)
	assert.Equal(t, []string{"coding", "trading"}, profile.Capabilities)
	assert.Equal(t, "https://example.com/agent.json", profile.MetadataURI)

	// An empty capability list clears the capabilities.
	empty := []string{}
	l.mustSend(owner, &types.UpdateAgentTx{Agent: owner.agent(), Patch: types.AgentPatch{Capabilities: &empty}})
	assert.Empty(t, l.AgentByOwner(owner.addr).Capabilities)

	// Invalid present fields reject the whole patch.
	zero, long := uint64(0), strings.Repeat("x", params.MaxNameLength+1)
	_, err := l.send(owner, &types.UpdateAgentTx{Agent: owner.agent(), Patch: types.AgentPatch{Name: &name, Pricing: &zero}})
	assert.True(t, errors.Is(err, ErrInvalidPricing))
	_, err = l.send(owner, &types.UpdateAgentTx{Agent: owner.agent(), Patch: types.AgentPatch{Name: &long}})
	assert.True(t, errors.Is(err, ErrNameTooLong))
	assert.Equal(t, uint64(250), l.AgentByOwner(owner.addr).Pricing)

	// Only the owner may update.
	_, err = l.send(other, &types.UpdateAgentTx{Agent: owner.agent(), Patch: types.AgentPatch{Name: &name}})
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, AuthorizationError, KindOf(err))

	// Updating a profile that doesn't exist.
	_, err = l.send(other, &types.UpdateAgentTx{Agent: other.agent(), Patch: types.AgentPatch{Name: &name}})
	assert.True(t, errors.Is(err, ErrAgentNotFound))
}

func TestAgentStatusToggle(t *testing.T) {
	l := newTestLedger(t)
	owner, other := newTestAccount(t), newTestAccount(t)
	l.register(owner)

	for i := 0; i < 2; i++ {
		receipt := l.mustSend(owner, &types.AgentStatusTx{Agent: owner.agent()})
		assert.Equal(t, &types.AgentDeactivated{Agent: owner.agent(), Owner: owner.addr}, receipt.Logs[0].Event)
		assert.Equal(t, types.AgentInactive, l.AgentByOwner(owner.addr).Status)
	}
	for i := 0; i < 2; i++ {
		receipt := l.mustSend(owner, &types.AgentStatusTx{Agent: owner.agent(), Activate: true})
		assert.Equal(t, &types.AgentActivated{Agent: owner.agent(), Owner: owner.addr}, receipt.Logs[0].Event)
		assert.Equal(t, types.AgentActive, l.AgentByOwner(owner.addr).Status)
	}
	_, err := l.send(other, &types.AgentStatusTx{Agent: owner.agent()})
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.True(t, l.AgentByOwner(owner.addr).Active())
}

func TestCreateTaskInactiveAgent(t *testing.T) {
	client, agent := newTestAccount(t), newTestAccount(t)
	l := newTestLedger(t, params.GenesisAccount{Address: client.addr, Balance: 1000})
	l.register(agent)
	l.mustSend(agent, &types.AgentStatusTx{Agent: agent.agent()})

	for _, tx := range []*types.CreateTaskTx{
		createTaskTx(client, agent, "t1", 500),
		createTaskTx(client, agent, "t2", 1),
		createTaskTx(client, agent, strings.Repeat("t", params.MaxTaskIDLength), 1000),
	} {
		_, err := l.send(client, tx)
		assert.True(t, errors.Is(err, ErrAgentNotActive), "have %v", err)
		assert.Equal(t, StateError, KindOf(err))
	}
	// The profile is still there.
	profile := l.AgentByOwner(agent.addr)
	require.NotNil(t, profile)
	assert.Equal(t, types.AgentInactive, profile.Status)
	assert.Equal(t, uint64(1000), l.Balance(client.addr).Uint64())
}

func TestCreateTaskValidation(t *testing.T) {
	client, agent := newTestAccount(t), newTestAccount(t)
	l := newTestLedger(t, params.GenesisAccount{Address: client.addr, Balance: 1000})
	l.register(agent)

	_, err := l.send(client, createTaskTx(client, agent, strings.Repeat("t", params.MaxTaskIDLength+1), 1))
	assert.True(t, errors.Is(err, ErrTaskIDTooLong))

	_, err = l.send(client, createTaskTx(client, agent, "t1", 0))
	assert.True(t, errors.Is(err, ErrInvalidAmount))

	bad := createTaskTx(client, agent, "t1", 1)
	bad.Escrow = types.EscrowAddress(agent.addr, "t1")
	_, err = l.send(client, bad)
	assert.True(t, errors.Is(err, ErrAddressMismatch))

	unknown := newTestAccount(t)
	_, err = l.send(client, createTaskTx(client, unknown, "t1", 1))
	assert.True(t, errors.Is(err, ErrAgentNotFound))

	_, err = l.send(client, createTaskTx(client, agent, "t1", 1001))
	assert.True(t, errors.Is(err, ErrInsufficientFunds))

	assert.Nil(t, l.EscrowByTask(client.addr, "t1"))
	assert.Equal(t, uint64(0), l.Nonce(client.addr))
}

func TestCreateTaskDuplicateID(t *testing.T) {
	client, agent := newTestAccount(t), newTestAccount(t)
	l := newTestLedger(t, params.GenesisAccount{Address: client.addr, Balance: 1000})
	l.register(agent)

	taskID := uuid.New().String()
	l.mustSend(client, createTaskTx(client, agent, taskID, 300))

	_, err := l.send(client, createTaskTx(client, agent, taskID, 200))
	assert.True(t, errors.Is(err, ErrAddressInUse))

	escrow := l.EscrowByTask(client.addr, taskID)
	require.NotNil(t, escrow)
	assert.Equal(t, uint64(300), escrow.Amount)
	assert.Equal(t, uint64(700), l.Balance(client.addr).Uint64())

	// The same task id of another client is a different escrow.
	other := newTestAccount(t)
	l2 := newTestLedger(t,
		params.GenesisAccount{Address: client.addr, Balance: 100},
		params.GenesisAccount{Address: other.addr, Balance: 100},
	)
	l2.register(agent)
	l2.mustSend(client, createTaskTx(client, agent, taskID, 10))
	l2.mustSend(other, createTaskTx(other, agent, taskID, 10))
}

func TestAcceptTask(t *testing.T) {
	client, agent, other := newTestAccount(t), newTestAccount(t), newTestAccount(t)
	l := newTestLedger(t, params.GenesisAccount{Address: client.addr, Balance: 1000})
	l.register(agent)
	l.register(other)
	l.mustSend(client, createTaskTx(client, agent, "t1", 100))

	// Only the owner of the bound agent may accept.
	_, err := l.send(other, acceptTx(client, other, "t1"))
	assert.True(t, errors.Is(err, ErrAgentMismatch))
	_, err = l.send(other, acceptTx(client, agent, "t1"))
	assert.True(t, errors.Is(err, ErrUnauthorized))
	_, err = l.send(client, acceptTx(client, agent, "t1"))
	assert.True(t, errors.Is(err, ErrUnauthorized))
	_, err = l.send(agent, acceptTx(client, agent, "missing"))
	assert.True(t, errors.Is(err, ErrEscrowNotFound))

	// Completing a funded task is not allowed.
	_, err = l.send(agent, completeTx(client, agent, "t1"))
	assert.True(t, errors.Is(err, ErrInvalidTaskStatus))

	l.mustSend(agent, acceptTx(client, agent, "t1"))
	_, err = l.send(agent, acceptTx(client, agent, "t1"))
	assert.True(t, errors.Is(err, ErrInvalidTaskStatus))
	assert.Equal(t, types.TaskInProgress, l.EscrowByTask(client.addr, "t1").Status)
}

// Disputed escrows can't be produced by any transaction, so the record is
// rewritten directly. Every transition out of it must be rejected.
func TestDisputedTaskRejected(t *testing.T) {
	client, agent := newTestAccount(t), newTestAccount(t)
	l := newTestLedger(t, params.GenesisAccount{Address: client.addr, Balance: 1000})
	l.register(agent)
	l.mustSend(client, createTaskTx(client, agent, "t1", 100))

	escrowAddr := types.EscrowAddress(client.addr, "t1")
	statedb := state.New(l.db)
	escrow := statedb.GetTaskEscrow(escrowAddr)
	require.NotNil(t, escrow)
	escrow.Status = types.TaskDisputed
	require.NoError(t, statedb.UpdateTaskEscrow(escrowAddr, escrow))
	require.NoError(t, statedb.Commit())
	require.Equal(t, types.TaskDisputed, l.Escrow(escrowAddr).Status)

	_, err := l.send(agent, acceptTx(client, agent, "t1"))
	assert.True(t, errors.Is(err, ErrInvalidTaskStatus), "accept: %v", err)
	_, err = l.send(agent, completeTx(client, agent, "t1"))
	assert.True(t, errors.Is(err, ErrInvalidTaskStatus), "complete: %v", err)
	_, err = l.send(client, rateTx(client, agent, "t1", 5))
	assert.True(t, errors.Is(err, ErrInvalidTaskStatus), "rate: %v", err)

	assert.Equal(t, types.TaskDisputed, l.Escrow(escrowAddr).Status)
	assert.Equal(t, uint64(900), l.Balance(client.addr).Uint64())
	assert.Equal(t, uint64(100), l.Balance(escrowAddr).Uint64())
	assert.True(t, l.Balance(agent.addr).IsZero())
	assert.Equal(t, uint64(0), l.AgentByOwner(agent.addr).TasksCompleted)
	assert.Equal(t, uint64(0), l.AgentByOwner(agent.addr).TotalRatings)
}

func TestCompleteTask(t *testing.T) {
	client, agent := newTestAccount(t), newTestAccount(t)
	l := newTestLedger(t,
		params.GenesisAccount{Address: client.addr, Balance: 1000},
		params.GenesisAccount{Address: agent.addr, Balance: 50},
	)
	l.register(agent)
	l.mustSend(client, createTaskTx(client, agent, "t1", 400))
	l.mustSend(agent, acceptTx(client, agent, "t1"))

	// Rating before completion fails.
	_, err := l.send(client, rateTx(client, agent, "t1", 5))
	assert.True(t, errors.Is(err, ErrInvalidTaskStatus))

	l.mustSend(agent, completeTx(client, agent, "t1"))
	assert.Equal(t, uint64(450), l.Balance(agent.addr).Uint64())
	assert.True(t, l.Balance(types.EscrowAddress(client.addr, "t1")).IsZero())
	assert.Equal(t, uint64(1), l.AgentByOwner(agent.addr).TasksCompleted)

	// Funds move exactly once.
	_, err = l.send(agent, completeTx(client, agent, "t1"))
	assert.True(t, errors.Is(err, ErrInvalidTaskStatus))
	_, err = l.send(agent, acceptTx(client, agent, "t1"))
	assert.True(t, errors.Is(err, ErrInvalidTaskStatus))
	assert.Equal(t, uint64(450), l.Balance(agent.addr).Uint64())
	assert.Equal(t, uint64(1), l.AgentByOwner(agent.addr).TasksCompleted)
}

func TestCompleteTaskDeactivatedAgent(t *testing.T) {
	client, agent := newTestAccount(t), newTestAccount(t)
	l := newTestLedger(t, params.GenesisAccount{Address: client.addr, Balance: 1000})
	l.register(agent)
	l.mustSend(client, createTaskTx(client, agent, "t1", 400))
	l.mustSend(agent, acceptTx(client, agent, "t1"))
	l.mustSend(agent, &types.AgentStatusTx{Agent: agent.agent()})

	// Deactivation only blocks new tasks.
	l.mustSend(agent, completeTx(client, agent, "t1"))
	assert.Equal(t, uint64(400), l.Balance(agent.addr).Uint64())
}

func TestRateAgent(t *testing.T) {
	client, agent, other := newTestAccount(t), newTestAccount(t), newTestAccount(t)
	l := newTestLedger(t, params.GenesisAccount{Address: client.addr, Balance: 1000})
	l.register(agent)
	l.register(other)
	l.mustSend(client, createTaskTx(client, agent, "t1", 100))
	l.mustSend(agent, acceptTx(client, agent, "t1"))
	l.mustSend(agent, completeTx(client, agent, "t1"))

	for _, rating := range []uint8{0, 6, 255} {
		_, err := l.send(client, rateTx(client, agent, "t1", rating))
		assert.True(t, errors.Is(err, ErrInvalidRating), "rating %d: %v", rating, err)
	}
	_, err := l.send(other, rateTx(client, agent, "t1", 5))
	assert.True(t, errors.Is(err, ErrUnauthorized))
	_, err = l.send(client, rateTx(client, other, "t1", 5))
	assert.True(t, errors.Is(err, ErrAgentMismatch))
	_, err = l.send(client, rateTx(client, agent, "t2", 5))
	assert.True(t, errors.Is(err, ErrEscrowNotFound))

	profile := l.AgentByOwner(agent.addr)
	assert.Equal(t, uint64(0), profile.TotalRatings)
	assert.Equal(t, uint64(0), profile.ReputationScore)

	for i, rating := range []uint8{1, 2, 2} {
		l.mustSend(client, rateTx(client, agent, "t1", rating))
		profile = l.AgentByOwner(agent.addr)
		assert.Equal(t, uint64(i+1), profile.TotalRatings)
	}
	assert.Equal(t, uint64(5), profile.RatingSum)
	assert.Equal(t, uint64(166), profile.ReputationScore)
}

func TestFailedTransactionHasNoEffects(t *testing.T) {
	client, agent := newTestAccount(t), newTestAccount(t)
	l := newTestLedger(t, params.GenesisAccount{Address: client.addr, Balance: 1000})
	l.register(agent)

	logs := make(chan []*types.Log, 10)
	sub := l.SubscribeLogsEvent(logs)
	defer sub.Unsubscribe()

	head := l.HeadSequence()
	_, err := l.send(client, createTaskTx(client, agent, "t1", 5000))
	require.True(t, errors.Is(err, ErrInsufficientFunds))

	assert.Equal(t, head, l.HeadSequence())
	assert.Equal(t, uint64(1000), l.Balance(client.addr).Uint64())
	assert.Equal(t, uint64(0), l.Nonce(client.addr))
	assert.Nil(t, l.EscrowByTask(client.addr, "t1"))
	assert.True(t, l.Balance(types.EscrowAddress(client.addr, "t1")).IsZero())
	select {
	case ev := <-logs:
		t.Fatalf("unexpected logs: %s", spew.Sdump(ev))
	default:
	}
}

func TestNonceReplay(t *testing.T) {
	l := newTestLedger(t)
	owner := newTestAccount(t)

	tx := types.MustSignNewTx(owner.key, l.Signer(), 0, &types.RegisterAgentTx{Name: "a", Pricing: 1})
	_, err := l.SubmitTransaction(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), l.Nonce(owner.addr))

	_, err = l.SubmitTransaction(context.Background(), tx)
	assert.True(t, errors.Is(err, ErrNonceTooLow))
	assert.Equal(t, ProtocolError, KindOf(err))

	future := types.MustSignNewTx(owner.key, l.Signer(), 5, &types.AgentStatusTx{Agent: owner.agent()})
	_, err = l.SubmitTransaction(context.Background(), future)
	assert.True(t, errors.Is(err, ErrNonceTooHigh))
}

func TestUnsignedTransaction(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.SubmitTransaction(context.Background(), types.NewTx(0, &types.RegisterAgentTx{Name: "a", Pricing: 1}))
	assert.True(t, errors.Is(err, types.ErrMissingSignature))
	assert.Equal(t, AuthorizationError, KindOf(err))
	assert.Equal(t, uint64(0), l.HeadSequence())
}

func TestSubmitCancelled(t *testing.T) {
	l := newTestLedger(t)
	owner := newTestAccount(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tx := types.MustSignNewTx(owner.key, l.Signer(), 0, &types.RegisterAgentTx{Name: "a", Pricing: 1})
	_, err := l.SubmitTransaction(ctx, tx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, l.AgentByOwner(owner.addr))

	l.Close()
	_, err = l.SubmitTransaction(context.Background(), tx)
	assert.ErrorIs(t, err, ErrLedgerClosed)
}

func TestLogSubscription(t *testing.T) {
	client, agent := newTestAccount(t), newTestAccount(t)
	l := newTestLedger(t, params.GenesisAccount{Address: client.addr, Balance: 1000})

	logs := make(chan []*types.Log, 10)
	sub := l.SubscribeLogsEvent(logs)
	defer sub.Unsubscribe()

	l.register(agent)
	receipt := l.mustSend(client, createTaskTx(client, agent, "t1", 10))

	want := []string{"AgentRegistered", "TaskCreated"}
	for i, name := range want {
		select {
		case ev := <-logs:
			require.Len(t, ev, 1)
			assert.Equal(t, name, ev[0].Event.EventName())
			assert.Equal(t, uint64(i+1), ev[0].Sequence)
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for %s", name)
		}
	}
	assert.Equal(t, receipt.TxHash, receipt.Logs[0].TxHash)
	assert.Equal(t, uint(0), receipt.Logs[0].Index)
}

func TestFindAgents(t *testing.T) {
	client := newTestAccount(t)
	l := newTestLedger(t, params.GenesisAccount{Address: client.addr, Balance: 1000})

	agents := make([]*testAccount, 4)
	for i := range agents {
		agents[i] = newTestAccount(t)
	}
	l.register(agents[0], "coding")
	l.register(agents[1], "coding", "trading")
	l.register(agents[2], "trading")
	l.register(agents[3], "coding")
	l.mustSend(agents[3], &types.AgentStatusTx{Agent: agents[3].agent()})

	// Give agents[1] a better reputation than agents[0].
	for i, a := range agents[:2] {
		taskID := uuid.New().String()
		l.mustSend(client, createTaskTx(client, a, taskID, 10))
		l.mustSend(a, acceptTx(client, a, taskID))
		l.mustSend(a, completeTx(client, a, taskID))
		l.mustSend(client, rateTx(client, a, taskID, uint8(3+i)))
	}

	found := l.FindAgents(AgentFilter{Capability: "coding"})
	require.Len(t, found, 3)
	assert.Equal(t, agents[1].agent(), found[0].Address)
	assert.Equal(t, agents[0].agent(), found[1].Address)
	assert.Equal(t, agents[3].agent(), found[2].Address)

	found = l.FindAgents(AgentFilter{Capability: "coding", ActiveOnly: true, Limit: 1})
	require.Len(t, found, 1)
	assert.Equal(t, agents[1].agent(), found[0].Address)
	assert.Equal(t, uint64(400), found[0].Profile.ReputationScore)

	assert.Len(t, l.FindAgents(AgentFilter{}), 4)
	assert.Empty(t, l.FindAgents(AgentFilter{Capability: "painting"}))
}

func TestLedgerPersistence(t *testing.T) {
	client, agent := newTestAccount(t), newTestAccount(t)
	config := params.DefaultConfig
	config.Genesis = []params.GenesisAccount{{Address: client.addr, Balance: 1000}}

	dir := t.TempDir()
	db, err := rawdb.NewLevelDBDatabase(dir, 16, 16, "", false)
	require.NoError(t, err)

	ledger, err := newLedger(db, &config, func() time.Time { return testTime })
	require.NoError(t, err)
	l := &testLedger{Ledger: ledger, t: t}
	l.register(agent)
	l.mustSend(client, createTaskTx(client, agent, "t1", 300))
	l.Close()
	require.NoError(t, db.Close())

	// Reopening must not re-apply the genesis allocation.
	db, err = rawdb.NewLevelDBDatabase(dir, 16, 16, "", false)
	require.NoError(t, err)
	defer db.Close()

	reopened, err := NewLedger(db, &config)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, uint64(2), reopened.HeadSequence())
	assert.Equal(t, uint64(700), reopened.Balance(client.addr).Uint64())
	assert.Equal(t, uint64(1), reopened.Nonce(client.addr))
	assert.NotNil(t, reopened.AgentByOwner(agent.addr))
	escrow := reopened.EscrowByTask(client.addr, "t1")
	require.NotNil(t, escrow)
	assert.Equal(t, uint64(300), escrow.Amount)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, UnknownError, KindOf(nil))
	assert.Equal(t, UnknownError, KindOf(errors.New("other")))
	assert.Equal(t, StateError, KindOf(ErrRecordTooLarge))
	assert.Equal(t, ProtocolError, KindOf(types.ErrMalformedTx))
	assert.Equal(t, "authorization", KindOf(ErrAgentMismatch).String())
}
