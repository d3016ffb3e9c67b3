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

// agentledger is the command line client and node of the agent ledger.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/ethereum/go-ethereum/metrics/exp"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"

	"github.com/agentledger/go-agentledger/core"
	"github.com/agentledger/go-agentledger/core/rawdb"
	"github.com/agentledger/go-agentledger/core/state"
	"github.com/agentledger/go-agentledger/core/types"
	"github.com/agentledger/go-agentledger/internal/ledgerapi"
	"github.com/agentledger/go-agentledger/params"
)

var app = cli.NewApp()

var (
	initCommand = cli.Command{
		Action:    initGenesis,
		Name:      "init",
		Usage:     "Write the genesis allocation to an empty database",
		ArgsUsage: "<genesisPath>",
		Category:  "LEDGER COMMANDS",
		Description: `
The init command funds the accounts listed in a genesis JSON file:

    {"alloc": [{"address": "0x...", "balance": 1000}]}

It fails if the database was initialised before.`,
	}
	serveCommand = cli.Command{
		Action:   serve,
		Name:     "serve",
		Usage:    "Run the ledger and serve its JSON-RPC API",
		Category: "LEDGER COMMANDS",
	}
	agentsCommand = cli.Command{
		Action:   listAgents,
		Name:     "agents",
		Usage:    "List registered agents ranked by reputation",
		Flags:    []cli.Flag{capabilityFlag, activeOnlyFlag, limitFlag},
		Category: "QUERY COMMANDS",
	}
	escrowCommand = cli.Command{
		Action:    showEscrow,
		Name:      "escrow",
		Usage:     "Show the escrow of a task",
		ArgsUsage: "<client> <taskID>",
		Category:  "QUERY COMMANDS",
	}
	balanceCommand = cli.Command{
		Action:    showBalance,
		Name:      "balance",
		Usage:     "Show the balance and nonce of an account",
		ArgsUsage: "<address>",
		Category:  "QUERY COMMANDS",
	}
)

func init() {
	app.Name = filepath.Base(os.Args[0])
	app.Usage = "agent registry, task escrow and reputation ledger"
	app.Action = serve
	app.HideVersion = true
	app.Commands = []cli.Command{
		initCommand,
		serveCommand,
		agentsCommand,
		escrowCommand,
		balanceCommand,
		accountCommand,
		sendCommand,
		dumpConfigCommand,
	}
	app.Flags = append(app.Flags, ledgerFlags...)
	app.Flags = append(app.Flags, rpcFlags...)
	app.Flags = append(app.Flags, metricsFlags...)

	app.Before = func(ctx *cli.Context) error {
		usecolor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		output := io.Writer(os.Stderr)
		if usecolor {
			output = colorable.NewColorableStderr()
		}
		glogger := log.NewGlogHandler(log.StreamHandler(output, log.TerminalFormat(usecolor)))
		glogger.Verbosity(log.Lvl(ctx.GlobalInt(verbosityFlag.Name)))
		log.Root().SetHandler(glogger)
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}

// openDatabase opens the database of the data directory, or an in-memory one
// if no directory is configured.
func openDatabase(cfg *params.Config) ethdb.KeyValueStore {
	if cfg.DataDir == "" {
		log.Warn("No data directory, running an ephemeral ledger")
		return rawdb.NewMemoryDatabase()
	}
	db, err := rawdb.NewLevelDBDatabase(filepath.Join(cfg.DataDir, "ledgerdata"), cfg.DatabaseCache, cfg.DatabaseHandles, "agentledger/db/", false)
	if err != nil {
		fatalf("Could not open database: %v", err)
	}
	return db
}

func openLedger(cfg *params.Config) (*core.Ledger, ethdb.KeyValueStore) {
	db := openDatabase(cfg)
	ledger, err := core.NewLedger(db, cfg)
	if err != nil {
		db.Close()
		fatalf("Could not open ledger: %v", err)
	}
	return ledger, db
}

// initGenesis is the init command.
func initGenesis(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		fatalf("Must supply path to genesis JSON file")
	}
	file, err := os.Open(ctx.Args().First())
	if err != nil {
		fatalf("Failed to read genesis file: %v", err)
	}
	defer file.Close()

	genesis := new(core.Genesis)
	if err := json.NewDecoder(file).Decode(genesis); err != nil {
		fatalf("Invalid genesis file: %v", err)
	}
	cfg := makeConfig(ctx)
	db := openDatabase(&cfg.Ledger)
	defer db.Close()

	if err := genesis.Commit(state.NewDatabase(db, cfg.Ledger.RecordCache)); err != nil {
		if errors.Is(err, core.ErrGenesisWritten) {
			fatalf("Database already initialised: %v", err)
		}
		fatalf("Failed to write genesis allocation: %v", err)
	}
	log.Info("Successfully wrote genesis state", "datadir", cfg.Ledger.DataDir)
	return nil
}

// serve is the default command: it runs the ledger behind the RPC server until
// interrupted.
func serve(ctx *cli.Context) error {
	if args := ctx.Args(); len(args) > 0 && ctx.Command.Name == "" {
		return fmt.Errorf("invalid command: %q", args[0])
	}
	cfg := makeConfig(ctx)
	if cfg.Metrics.Enabled {
		if !metrics.Enabled {
			log.Warn("Metrics enabled by configuration only, pass --metrics to collect them")
		}
		address := net.JoinHostPort(cfg.Metrics.HTTP, strconv.Itoa(cfg.Metrics.Port))
		log.Info("Enabling stand-alone metrics HTTP endpoint", "address", address)
		exp.Setup(address)
	}
	ledger, db := openLedger(&cfg.Ledger)
	defer db.Close()
	defer ledger.Close()

	srv, err := ledgerapi.NewServer(ledger)
	if err != nil {
		return err
	}
	defer srv.Stop()

	endpoint := net.JoinHostPort(cfg.Ledger.HTTPHost, strconv.Itoa(cfg.Ledger.HTTPPort))
	listener, err := net.Listen("tcp", endpoint)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Handler:           newHTTPHandler(srv, cfg.Ledger.HTTPCors),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := serveHTTP(httpSrv, listener); err != nil {
			log.Error("HTTP server failed", "endpoint", listener.Addr(), "err", err)
		}
	}()
	log.Info("HTTP server started", "endpoint", listener.Addr(), "cors", cfg.Ledger.HTTPCors)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)
	<-sigc
	log.Info("Got interrupt, shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// serveHTTP runs srv on listener until it fails or is shut down. A shutdown is
// not reported as an error.
func serveHTTP(srv *http.Server, listener net.Listener) error {
	if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// listAgents is the agents command.
func listAgents(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	ledger, db := openLedger(&cfg.Ledger)
	defer db.Close()
	defer ledger.Close()

	agents := ledger.FindAgents(core.AgentFilter{
		Capability: ctx.String(capabilityFlag.Name),
		ActiveOnly: ctx.Bool(activeOnlyFlag.Name),
		Limit:      ctx.Int(limitFlag.Name),
	})
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Address", "Name", "Status", "Reputation", "Tasks", "Ratings", "Pricing", "Capabilities"})
	for _, agent := range agents {
		p := agent.Profile
		table.Append([]string{
			agent.Address.Hex(),
			p.Name,
			p.Status.String(),
			formatReputation(p.ReputationScore),
			strconv.FormatUint(p.TasksCompleted, 10),
			strconv.FormatUint(p.TotalRatings, 10),
			strconv.FormatUint(p.Pricing, 10),
			fmt.Sprint(p.Capabilities),
		})
	}
	table.Render()
	return nil
}

// showEscrow is the escrow command.
func showEscrow(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		fatalf("Usage: %s", ctx.Command.ArgsUsage)
	}
	client, err := parseAddress(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	cfg := makeConfig(ctx)
	ledger, db := openLedger(&cfg.Ledger)
	defer db.Close()
	defer ledger.Close()

	taskID := ctx.Args().Get(1)
	addr := types.EscrowAddress(client, taskID)
	escrow := ledger.Escrow(addr)
	if escrow == nil {
		return fmt.Errorf("no escrow for task %q of %s", taskID, client.Hex())
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Field", "Value"})
	table.AppendBulk([][]string{
		{"Address", addr.Hex()},
		{"Client", escrow.Client.Hex()},
		{"Agent", escrow.Agent.Hex()},
		{"Amount", strconv.FormatUint(escrow.Amount, 10)},
		{"Custody", ledger.Balance(addr).ToBig().String()},
		{"Status", escrow.Status.String()},
		{"Created", time.Unix(escrow.CreatedAt, 0).UTC().Format(time.RFC3339)},
	})
	table.Render()
	return nil
}

// showBalance is the balance command.
func showBalance(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		fatalf("Usage: %s", ctx.Command.ArgsUsage)
	}
	addr, err := parseAddress(ctx.Args().First())
	if err != nil {
		return err
	}
	cfg := makeConfig(ctx)
	ledger, db := openLedger(&cfg.Ledger)
	defer db.Close()
	defer ledger.Close()

	fmt.Printf("Balance: %s\nNonce:   %d\n", ledger.Balance(addr).ToBig(), ledger.Nonce(addr))
	return nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// formatReputation renders a fixed-point reputation score as a decimal.
func formatReputation(score uint64) string {
	return fmt.Sprintf("%d.%02d", score/params.ReputationScale, score%params.ReputationScale)
}
