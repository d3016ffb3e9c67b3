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

package params

import (
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultProgramID identifies the reference deployment. Signatures made for one
// program identifier are never valid under another.
var DefaultProgramID = crypto.Keccak256Hash([]byte("agentledger/agent-registry"))

// GenesisAccount is a pre-funded account written by the genesis block.
type GenesisAccount struct {
	Address common.Address `json:"address"`
	Balance uint64         `json:"balance"`
}

// Config contains the settings of a ledger node.
type Config struct {
	// ProgramID domain-separates transaction signatures of this deployment.
	ProgramID common.Hash

	// DataDir is the directory of the persistent database. An empty DataDir runs the
	// ledger on an ephemeral in-memory database.
	DataDir string `toml:",omitempty"`

	DatabaseCache   int
	DatabaseHandles int

	// RecordCache is the number of decoded records kept in memory.
	RecordCache int

	HTTPHost string   `toml:",omitempty"`
	HTTPPort int      `toml:",omitempty"`
	HTTPCors []string `toml:",omitempty"`

	Genesis []GenesisAccount `toml:",omitempty"`
}

// DefaultConfig contains default settings for a ledger node.
var DefaultConfig = Config{
	ProgramID:       DefaultProgramID,
	DataDir:         DefaultDataDir(),
	DatabaseCache:   64,
	DatabaseHandles: 256,
	RecordCache:     4096,
	HTTPHost:        "localhost",
	HTTPPort:        8645,
}

// DefaultDataDir is the default data directory to use for the databases.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".agentledger")
}
