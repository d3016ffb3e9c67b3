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
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/agentledger/go-agentledger/params"
)

var (
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "[dumpfile]",
		Category:    "MISCELLANEOUS COMMANDS",
		Description: `The dumpconfig command shows configuration values.`,
	}
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type agentledgerConfig struct {
	Ledger  params.Config
	Metrics metrics.Config
}

func loadConfig(file string, cfg *agentledgerConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the configuration: defaults, then the config file, then
// the command line flags.
func makeConfig(ctx *cli.Context) agentledgerConfig {
	cfg := agentledgerConfig{
		Ledger:  params.DefaultConfig,
		Metrics: metrics.DefaultConfig,
	}
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			fatalf("%v", err)
		}
	}
	applyLedgerConfig(ctx, &cfg.Ledger)
	applyMetricConfig(ctx, &cfg)
	return cfg
}

func applyLedgerConfig(ctx *cli.Context, cfg *params.Config) {
	if ctx.GlobalIsSet(dataDirFlag.Name) {
		cfg.DataDir = ctx.GlobalString(dataDirFlag.Name)
	}
	if ctx.GlobalIsSet(programIDFlag.Name) {
		id, err := parseProgramID(ctx.GlobalString(programIDFlag.Name))
		if err != nil {
			fatalf("Invalid program id: %v", err)
		}
		cfg.ProgramID = id
	}
	if ctx.GlobalIsSet(cacheFlag.Name) {
		cfg.DatabaseCache = ctx.GlobalInt(cacheFlag.Name)
	}
	if ctx.GlobalIsSet(recordCacheFlag.Name) {
		cfg.RecordCache = ctx.GlobalInt(recordCacheFlag.Name)
	}
	if ctx.GlobalIsSet(httpHostFlag.Name) {
		cfg.HTTPHost = ctx.GlobalString(httpHostFlag.Name)
	}
	if ctx.GlobalIsSet(httpPortFlag.Name) {
		cfg.HTTPPort = ctx.GlobalInt(httpPortFlag.Name)
	}
	if ctx.GlobalIsSet(httpCORSDomainFlag.Name) {
		cfg.HTTPCors = splitAndTrim(ctx.GlobalString(httpCORSDomainFlag.Name))
	}
}

func applyMetricConfig(ctx *cli.Context, cfg *agentledgerConfig) {
	if ctx.GlobalIsSet(metricsEnabledFlag.Name) {
		cfg.Metrics.Enabled = ctx.GlobalBool(metricsEnabledFlag.Name)
	}
	if ctx.GlobalIsSet(metricsEnabledExpensiveFlag.Name) {
		cfg.Metrics.EnabledExpensive = ctx.GlobalBool(metricsEnabledExpensiveFlag.Name)
	}
	if ctx.GlobalIsSet(metricsHTTPFlag.Name) {
		cfg.Metrics.HTTP = ctx.GlobalString(metricsHTTPFlag.Name)
	}
	if ctx.GlobalIsSet(metricsPortFlag.Name) {
		cfg.Metrics.Port = ctx.GlobalInt(metricsPortFlag.Name)
	}
}

// parseProgramID accepts either a 32 byte hex hash or a free-form name which is
// hashed into one.
func parseProgramID(s string) (common.Hash, error) {
	if len(s) == 2*common.HashLength+2 && s[:2] == "0x" {
		b := common.FromHex(s)
		if len(b) != common.HashLength {
			return common.Hash{}, fmt.Errorf("invalid hex %q", s)
		}
		return common.BytesToHash(b), nil
	}
	if s == "" {
		return common.Hash{}, errors.New("empty program id")
	}
	return programIDFromName(s), nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	comment := ""

	if len(cfg.Ledger.Genesis) > 0 {
		comment += "# Note: the genesis allocation only applies to an empty database.\n\n"
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	dump.WriteString(comment)
	dump.Write(out)

	log.Debug("Dumped configuration", "datadir", cfg.Ledger.DataDir)
	return nil
}
