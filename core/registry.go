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

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/agentledger/go-agentledger/core/state"
	"github.com/agentledger/go-agentledger/core/types"
)

// registerAgent creates the profile of owner at its derived address.
func registerAgent(statedb *state.StateDB, owner common.Address, tx *types.RegisterAgentTx) error {
	addr := types.AgentAddress(owner)
	if statedb.GetAgentProfile(addr) != nil {
		return fmt.Errorf("%w: agent %s", ErrAddressInUse, addr)
	}
	if err := validateRegister(tx); err != nil {
		return err
	}
	profile := &types.AgentProfile{
		Owner:        owner,
		Name:         tx.Name,
		Capabilities: tx.Capabilities,
		Pricing:      tx.Pricing,
		Status:       types.AgentActive,
		MetadataURI:  tx.MetadataURI,
		Bump:         types.CanonicalBump,
	}
	if err := statedb.CreateAgentProfile(addr, profile); err != nil {
		return err
	}
	statedb.AddLog(&types.AgentRegistered{
		Agent:        addr,
		Owner:        owner,
		Name:         profile.Name,
		Capabilities: profile.Capabilities,
		Pricing:      profile.Pricing,
		MetadataURI:  profile.MetadataURI,
	})
	log.Debug("Registered agent", "agent", addr, "owner", owner, "name", profile.Name)
	return nil
}

// ownedProfile loads the profile declared by a registry transaction and checks
// that signer controls it.
func ownedProfile(statedb *state.StateDB, signer, declared common.Address) (*types.AgentProfile, error) {
	if declared != types.AgentAddress(signer) {
		return nil, fmt.Errorf("%w: %s is not the profile of %s", ErrUnauthorized, declared, signer)
	}
	profile := statedb.GetAgentProfile(declared)
	if profile == nil {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, declared)
	}
	if profile.Owner != signer {
		return nil, fmt.Errorf("%w: %s is not owned by %s", ErrUnauthorized, declared, signer)
	}
	return profile, nil
}

// updateAgent replaces the fields present in the patch.
func updateAgent(statedb *state.StateDB, owner common.Address, tx *types.UpdateAgentTx) error {
	profile, err := ownedProfile(statedb, owner, tx.Agent)
	if err != nil {
		return err
	}
	if err := validatePatch(&tx.Patch); err != nil {
		return err
	}
	tx.Patch.Apply(profile)
	if err := statedb.UpdateAgentProfile(tx.Agent, profile); err != nil {
		return err
	}
	statedb.AddLog(&types.AgentUpdated{Agent: tx.Agent, Owner: owner})
	log.Debug("Updated agent", "agent", tx.Agent, "owner", owner)
	return nil
}

// setAgentStatus flips the status of the signer's profile. The flip is
// unconditional, so repeating it succeeds and emits the event again.
func setAgentStatus(statedb *state.StateDB, owner common.Address, tx *types.AgentStatusTx) error {
	profile, err := ownedProfile(statedb, owner, tx.Agent)
	if err != nil {
		return err
	}
	if tx.Activate {
		profile.Status = types.AgentActive
	} else {
		profile.Status = types.AgentInactive
	}
	if err := statedb.UpdateAgentProfile(tx.Agent, profile); err != nil {
		return err
	}
	if tx.Activate {
		statedb.AddLog(&types.AgentActivated{Agent: tx.Agent, Owner: owner})
	} else {
		statedb.AddLog(&types.AgentDeactivated{Agent: tx.Agent, Owner: owner})
	}
	log.Debug("Changed agent status", "agent", tx.Agent, "status", profile.Status)
	return nil
}
