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

package main

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"gopkg.in/urfave/cli.v1"

	"github.com/agentledger/go-agentledger/params"
)

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the ledger database, empty for an in-memory ledger",
		Value: params.DefaultDataDir(),
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
	programIDFlag = cli.StringFlag{
		Name:  "programid",
		Usage: "Program identifier signatures are bound to (0x prefixed hash or name)",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Usage: "Megabytes of memory allocated to the database",
		Value: params.DefaultConfig.DatabaseCache,
	}
	recordCacheFlag = cli.IntFlag{
		Name:  "cache.records",
		Usage: "Number of decoded records kept in memory",
		Value: params.DefaultConfig.RecordCache,
	}
	httpHostFlag = cli.StringFlag{
		Name:  "http.addr",
		Usage: "HTTP-RPC server listening interface",
		Value: params.DefaultConfig.HTTPHost,
	}
	httpPortFlag = cli.IntFlag{
		Name:  "http.port",
		Usage: "HTTP-RPC server listening port",
		Value: params.DefaultConfig.HTTPPort,
	}
	httpCORSDomainFlag = cli.StringFlag{
		Name:  "http.corsdomain",
		Usage: "Comma separated list of domains from which to accept cross origin requests (browser enforced)",
	}

	metricsEnabledFlag = cli.BoolFlag{
		Name:  "metrics",
		Usage: "Enable metrics collection and reporting",
	}
	metricsEnabledExpensiveFlag = cli.BoolFlag{
		Name:  "metrics.expensive",
		Usage: "Enable expensive metrics collection and reporting",
	}
	metricsHTTPFlag = cli.StringFlag{
		Name:  "metrics.addr",
		Usage: "Enable stand-alone metrics HTTP server listening interface",
		Value: "127.0.0.1",
	}
	metricsPortFlag = cli.IntFlag{
		Name:  "metrics.port",
		Usage: "Metrics HTTP server listening port",
		Value: 6060,
	}

	capabilityFlag = cli.StringFlag{
		Name:  "capability",
		Usage: "Only list agents advertising this capability",
	}
	activeOnlyFlag = cli.BoolFlag{
		Name:  "active",
		Usage: "Only list agents accepting tasks",
	}
	limitFlag = cli.IntFlag{
		Name:  "limit",
		Usage: "Maximum number of agents listed, 0 for all",
		Value: 20,
	}
)

var ledgerFlags = []cli.Flag{
	configFileFlag,
	dataDirFlag,
	verbosityFlag,
	programIDFlag,
	cacheFlag,
	recordCacheFlag,
}

var rpcFlags = []cli.Flag{
	httpHostFlag,
	httpPortFlag,
	httpCORSDomainFlag,
}

var metricsFlags = []cli.Flag{
	metricsEnabledFlag,
	metricsEnabledExpensiveFlag,
	metricsHTTPFlag,
	metricsPortFlag,
}

func programIDFromName(name string) common.Hash {
	return crypto.Keccak256Hash([]byte(name))
}

// splitAndTrim splits input separated by a comma and trims excessive white
// space from the substrings.
func splitAndTrim(input string) (ret []string) {
	l := strings.Split(input, ",")
	for _, r := range l {
		if r = strings.TrimSpace(r); r != "" {
			ret = append(ret, r)
		}
	}
	return ret
}
