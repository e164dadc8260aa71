// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btclog"
	"github.com/btcsuite/btcvault/authz"
	"github.com/btcsuite/btcvault/coininfo"
	"github.com/btcsuite/btcvault/internal/prompt"
	"github.com/btcsuite/btcvault/internal/zero"
	"github.com/btcsuite/btcvault/keychain"
	"github.com/btcsuite/btcvault/paths"
	"github.com/jessevdk/go-flags"
)

var newlineBytes = []byte{'\n'}

// fatalf reports an unusable invocation or a failed run and exits with
// the usage error code.
func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Stderr.Write(newlineBytes)
	os.Exit(2)
}

func errContext(err error, context string) error {
	return fmt.Errorf("%s: %v", context, err)
}

// Flags.
var opts = struct {
	Coin       string `long:"coin" description:"Coin name to authorize against (default Bitcoin)"`
	Path       string `long:"path" description:"BIP-32 derivation path to check, e.g. m/44'/0'/0'/0/0"`
	ScriptType string `long:"scripttype" description:"Script type spending the derived key" choice:"p2pkh" choice:"multisig" choice:"p2sh-p2wpkh" choice:"p2wpkh"`
	Multisig   bool   `long:"multisig" description:"Operation carries a multisig descriptor"`
	Schemas    bool   `long:"schemas" description:"Print the coin's allowed path schemas and exit"`
	ListCoins  bool   `long:"listcoins" description:"Print the supported coins and exit"`
	Derive     bool   `long:"derive" description:"Derive the key for an authorized path from a recovery seed"`
	DebugLevel string `long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical, off}"`
}{
	Coin:       "",
	ScriptType: "p2pkh",
	DebugLevel: "info",
}

// Parse and validate flags.
func init() {
	_, err := flags.Parse(&opts)
	if err != nil {
		os.Exit(2)
	}

	if _, ok := btclog.LevelFromString(opts.DebugLevel); !ok {
		fatalf("Invalid debug level `%s`", opts.DebugLevel)
	}
	if !opts.ListCoins && !opts.Schemas && opts.Path == "" {
		fatalf("A derivation path is required")
	}
}

// useConsoleLogging routes the authorization and keychain subsystem
// loggers to a console backend at the requested level.
func useConsoleLogging(debugLevel string) {
	level, _ := btclog.LevelFromString(debugLevel)
	if level == btclog.LevelOff {
		return
	}

	backend := btclog.NewBackend(os.Stdout)

	authLog := backend.Logger("AUTH")
	authLog.SetLevel(level)
	authz.UseLogger(authLog)

	kchnLog := backend.Logger("KCHN")
	kchnLog.SetLevel(level)
	keychain.UseLogger(kchnLog)
}

// scriptTypeFromFlag maps the --scripttype flag to the input script
// type of the checked operation.
func scriptTypeFromFlag(s string) (authz.InputScriptType, error) {
	switch s {
	case "p2pkh":
		return authz.SpendAddress, nil
	case "multisig":
		return authz.SpendMultisig, nil
	case "p2sh-p2wpkh":
		return authz.SpendP2SHWitness, nil
	case "p2wpkh":
		return authz.SpendWitness, nil
	}
	return 0, fmt.Errorf("unknown script type `%s`", s)
}

func listCoins() {
	fmt.Printf("%-16s %8s %7s %5s\n", "Coin", "SLIP-44", "Segwit", "Fork")
	for _, coin := range coininfo.Coins() {
		fork := "-"
		if coin.ForkID.IsSome() {
			fork = fmt.Sprintf("%d", coin.ForkID.UnwrapOr(0))
		}
		fmt.Printf("%-16s %8d %7v %5s\n", coin.CoinName, coin.Slip44,
			coin.Segwit, fork)
	}
}

func printSchemas(coin *coininfo.CoinInfo) {
	fmt.Printf("Allowed path schemas for %s (SLIP-44 %d):\n",
		coin.CoinName, coin.Slip44)
	for _, schema := range authz.SchemasForCoin(coin) {
		fmt.Printf("  %s (coin type %d)\n", schema, schema.CoinType())
	}
}

func main() {
	useConsoleLogging(opts.DebugLevel)

	if opts.ListCoins {
		listCoins()
		return
	}

	coin, err := authz.CoinByName(opts.Coin)
	if err != nil {
		fatalf("%v", err)
	}

	if opts.Schemas {
		printSchemas(coin)
		return
	}

	path, err := paths.ParsePath(opts.Path)
	if err != nil {
		fatalf("Invalid derivation path `%s`: %v", opts.Path, err)
	}
	scriptType, err := scriptTypeFromFlag(opts.ScriptType)
	if err != nil {
		fatalf("%v", err)
	}

	op := &authz.Operation{
		CoinName:   opts.Coin,
		AddressN:   path,
		ScriptType: scriptType,
		Multisig:   opts.Multisig,
	}
	if !authz.IsPathAuthorized(coin, op) {
		fmt.Printf("denied: %v is not an allowed %s path for %s\n",
			path, opts.ScriptType, coin.CoinName)
		os.Exit(1)
	}
	fmt.Printf("authorized: %v is an allowed %s path for %s\n", path,
		opts.ScriptType, coin.CoinName)

	if opts.Derive {
		err := derive(coin, path)
		if err != nil {
			fatalf("%v", err)
		}
	}
}

// derive collects a recovery seed, seals it in a seed store and runs
// the full acquisition path to derive and display the checked key.
func derive(coin *coininfo.CoinInfo, path paths.Path) error {
	reader := bufio.NewReader(os.Stdin)
	seed, privPass, err := prompt.Setup(reader)
	if err != nil {
		return errContext(err, "failed to read recovery seed")
	}

	store, err := keychain.NewSeedStore(seed, privPass, nil,
		func(ctx context.Context) ([]byte, error) {
			return prompt.PassPrompt(reader,
				"Enter the private passphrase", false)
		})
	zero.Bytes(seed)
	if err != nil {
		zero.Bytes(privPass)
		return errContext(err, "failed to seal seed")
	}
	defer store.Close()

	err = store.Unlock(privPass)
	zero.Bytes(privPass)
	if err != nil {
		return errContext(err, "failed to unlock seed store")
	}

	kc, _, err := authz.KeychainForCoin(
		context.Background(), store, coin.CoinName,
	)
	if err != nil {
		return errContext(err, "failed to acquire keychain")
	}
	defer kc.Zero()

	key, err := kc.Derive(path)
	if err != nil {
		return errContext(err, "failed to derive key")
	}
	defer key.Zero()

	fingerprint, err := kc.RootFingerprint()
	if err != nil {
		return err
	}
	pubKey, err := key.Neuter()
	if err != nil {
		return errContext(err, "failed to neuter derived key")
	}

	fmt.Printf("Root fingerprint: %08x\n", fingerprint)
	fmt.Printf("Extended public key: %v\n", pubKey)

	addr, err := renderAddress(coin, key)
	if err != nil {
		return errContext(err, "failed to render address")
	}
	if addr != "" {
		fmt.Printf("Address: %s\n", addr)
	}

	return nil
}

// renderAddress encodes the derived key as an address of the checked
// script type.  Coins without btcd chain parameters and multisig
// operations, which have no single-key address, render nothing.
func renderAddress(coin *coininfo.CoinInfo, key *hdkeychain.ExtendedKey) (string, error) {
	if coin.ChainParams == nil {
		return "", nil
	}

	pubKey, err := key.ECPubKey()
	if err != nil {
		return "", err
	}
	pubKeyHash := btcutil.Hash160(pubKey.SerializeCompressed())

	switch opts.ScriptType {
	case "p2pkh":
		addr, err := btcutil.NewAddressPubKeyHash(
			pubKeyHash, coin.ChainParams,
		)
		if err != nil {
			return "", err
		}
		return addr.EncodeAddress(), nil

	case "p2wpkh":
		addr, err := btcutil.NewAddressWitnessPubKeyHash(
			pubKeyHash, coin.ChainParams,
		)
		if err != nil {
			return "", err
		}
		return addr.EncodeAddress(), nil

	case "p2sh-p2wpkh":
		witAddr, err := btcutil.NewAddressWitnessPubKeyHash(
			pubKeyHash, coin.ChainParams,
		)
		if err != nil {
			return "", err
		}
		witnessProgram, err := txscript.PayToAddrScript(witAddr)
		if err != nil {
			return "", err
		}
		addr, err := btcutil.NewAddressScriptHash(
			witnessProgram, coin.ChainParams,
		)
		if err != nil {
			return "", err
		}
		return addr.EncodeAddress(), nil
	}

	return "", nil
}
