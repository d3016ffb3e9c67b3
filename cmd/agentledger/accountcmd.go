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
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"gopkg.in/urfave/cli.v1"

	"github.com/agentledger/go-agentledger/core/types"
	"github.com/agentledger/go-agentledger/internal/ledgerapi"
)

var (
	keyFileFlag = cli.StringFlag{
		Name:  "key",
		Usage: "File holding the hex encoded private key of the sender",
	}
	rpcEndpointFlag = cli.StringFlag{
		Name:  "rpc",
		Usage: "JSON-RPC endpoint of a running ledger",
		Value: "http://localhost:8645",
	}
	timeoutFlag = cli.DurationFlag{
		Name:  "timeout",
		Usage: "Maximum time to wait for the transaction to commit",
		Value: 30 * time.Second,
	}

	accountCommand = cli.Command{
		Name:     "account",
		Usage:    "Manage signing keys",
		Category: "ACCOUNT COMMANDS",
		Subcommands: []cli.Command{
			{
				Name:      "new",
				Usage:     "Create a new key file",
				Action:    accountCreate,
				ArgsUsage: "<keyfile>",
				Description: `
Generates a new secp256k1 key and stores it unencrypted, hex encoded, in the
given file. The file must not exist.`,
			},
			{
				Name:      "show",
				Usage:     "Print the addresses controlled by a key file",
				Action:    accountShow,
				ArgsUsage: "<keyfile>",
			},
		},
	}
	sendCommand = cli.Command{
		Action:    sendTransaction,
		Name:      "send",
		Usage:     "Sign and submit a transaction to a running ledger",
		ArgsUsage: "<json arguments>",
		Flags:     []cli.Flag{keyFileFlag, rpcEndpointFlag, timeoutFlag},
		Category:  "ACCOUNT COMMANDS",
		Description: `
The send command asks the ledger to fill in the transaction described by the
JSON arguments, checks the returned signing hash against the program identifier
of the ledger, signs it and submits it. For example:

    agentledger send --key agent.key '{"type": "register", "name": "alpha", "pricing": "0x64"}'
    agentledger send --key client.key '{"type": "create_task", "agent": "0x...", "taskId": "t-1", "amount": "0xc8"}'`,
	}
)

func accountCreate(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		fatalf("Must supply path of the new key file")
	}
	file := ctx.Args().First()
	if _, err := os.Stat(file); err == nil {
		fatalf("Key file %s already exists", file)
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	if err := crypto.SaveECDSA(file, key); err != nil {
		return err
	}
	printAccount(crypto.PubkeyToAddress(key.PublicKey))
	return nil
}

func accountShow(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		fatalf("Must supply path of the key file")
	}
	key, err := crypto.LoadECDSA(ctx.Args().First())
	if err != nil {
		return err
	}
	printAccount(crypto.PubkeyToAddress(key.PublicKey))
	return nil
}

func printAccount(addr common.Address) {
	fmt.Printf("Address:       %s\n", addr.Hex())
	fmt.Printf("Agent profile: %s\n", types.AgentAddress(addr).Hex())
}

// sendTransaction is the send command.
func sendTransaction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		fatalf("Must supply the transaction arguments as a JSON object")
	}
	if !ctx.IsSet(keyFileFlag.Name) {
		fatalf("Missing --%s", keyFileFlag.Name)
	}
	key, err := crypto.LoadECDSA(ctx.String(keyFileFlag.Name))
	if err != nil {
		fatalf("Failed to load key: %v", err)
	}
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(ctx.Args().First()), &args); err != nil {
		fatalf("Invalid transaction arguments: %v", err)
	}
	client, err := rpc.Dial(ctx.String(rpcEndpointFlag.Name))
	if err != nil {
		return err
	}
	defer client.Close()

	callCtx, cancel := context.WithTimeout(context.Background(), ctx.Duration(timeoutFlag.Name))
	defer cancel()

	receipt, err := submit(callCtx, client, key, args)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// submit fills the transaction described by args on the remote ledger, signs it
// with key and submits it, returning the receipt as encoded by the server.
func submit(ctx context.Context, client *rpc.Client, key *ecdsa.PrivateKey, args map[string]interface{}) (json.RawMessage, error) {
	args["from"] = crypto.PubkeyToAddress(key.PublicKey)

	var programID common.Hash
	if err := client.CallContext(ctx, &programID, "ledger_programID"); err != nil {
		return nil, err
	}
	signer := types.NewSigner(programID)

	var filled ledgerapi.SignTransactionResult
	if err := client.CallContext(ctx, &filled, "ledger_fillTransaction", args); err != nil {
		return nil, err
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(filled.Raw); err != nil {
		return nil, err
	}
	if hash := signer.Hash(tx); hash != filled.Hash {
		return nil, fmt.Errorf("%w: have %x, want %x", errSigningHashMismatch, filled.Hash, hash)
	}
	signed, err := types.SignTx(tx, signer, key)
	if err != nil {
		return nil, err
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, err
	}
	log.Debug("Submitting transaction", "hash", signed.Hash(), "type", signed.Type(), "nonce", signed.Nonce())

	var receipt json.RawMessage
	if err := client.CallContext(ctx, &receipt, "ledger_sendRawTransaction", hexutil.Bytes(raw)); err != nil {
		return nil, err
	}
	return receipt, nil
}

var errSigningHashMismatch = errors.New("signing hash mismatch")
