// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package coininfo defines the static coin metadata consulted when
// authorizing derivation paths and acquiring keychains.  Each entry
// names a coin and carries its SLIP-0044 coin type, curve, segwit
// capability and, for replay protected forks, its fork id.
package coininfo

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// CurveSecp256k1 is the curve name shared by almost every supported
// coin.  Keychain acquisition refuses coins on other curves.
const CurveSecp256k1 = "secp256k1"

// ErrUnknownCoin describes a lookup of a coin name that is not present
// in the registry.
var ErrUnknownCoin = errors.New("unknown coin")

// CoinInfo describes a supported coin.  Values handed out by the
// registry are shared and must be treated as read only.
type CoinInfo struct {
	// CoinName is the canonical registry key, e.g. "Bitcoin".
	CoinName string

	// CoinShortcut is the ticker symbol, e.g. "BTC".
	CoinShortcut string

	// Slip44 is the coin type registered for the coin in SLIP-0044.
	Slip44 uint32

	// CurveName names the curve keys for the coin live on.
	CurveName string

	// Segwit indicates whether the coin supports segregated
	// witness.  Witness derivation schemes are only offered for
	// segwit coins.
	Segwit bool

	// ForkID carries the fork id of coins that implement strong
	// replay protection by signing with a modified hash type.  Such
	// forks share transaction history with their parent chain, so
	// schema construction additionally admits paths using the
	// parent's coin type.
	ForkID fn.Option[uint32]

	// ChainParams holds the btcd chain parameters for the Bitcoin
	// networks, and is nil for every other coin.
	ChainParams *chaincfg.Params
}

// coins holds every registered coin in registration order.
var coins = []*CoinInfo{{
	CoinName:     "Bitcoin",
	CoinShortcut: "BTC",
	Slip44:       0,
	CurveName:    CurveSecp256k1,
	Segwit:       true,
	ForkID:       fn.None[uint32](),
	ChainParams:  &chaincfg.MainNetParams,
}, {
	CoinName:     "Testnet",
	CoinShortcut: "TEST",
	Slip44:       1,
	CurveName:    CurveSecp256k1,
	Segwit:       true,
	ForkID:       fn.None[uint32](),
	ChainParams:  &chaincfg.TestNet3Params,
}, {
	CoinName:     "Regtest",
	CoinShortcut: "REGTEST",
	Slip44:       1,
	CurveName:    CurveSecp256k1,
	Segwit:       true,
	ForkID:       fn.None[uint32](),
	ChainParams:  &chaincfg.RegressionNetParams,
}, {
	CoinName:     "Bcash",
	CoinShortcut: "BCH",
	Slip44:       145,
	CurveName:    CurveSecp256k1,
	Segwit:       false,
	ForkID:       fn.Some[uint32](0),
}, {
	CoinName:     "Bcash Testnet",
	CoinShortcut: "TBCH",
	Slip44:       1,
	CurveName:    CurveSecp256k1,
	Segwit:       false,
	ForkID:       fn.Some[uint32](0),
}, {
	CoinName:     "Bgold",
	CoinShortcut: "BTG",
	Slip44:       156,
	CurveName:    CurveSecp256k1,
	Segwit:       true,
	ForkID:       fn.Some[uint32](79),
}, {
	CoinName:     "Litecoin",
	CoinShortcut: "LTC",
	Slip44:       2,
	CurveName:    CurveSecp256k1,
	Segwit:       true,
	ForkID:       fn.None[uint32](),
}, {
	CoinName:     "Dogecoin",
	CoinShortcut: "DOGE",
	Slip44:       3,
	CurveName:    CurveSecp256k1,
	Segwit:       false,
	ForkID:       fn.None[uint32](),
}, {
	CoinName:     "Dash",
	CoinShortcut: "DASH",
	Slip44:       5,
	CurveName:    CurveSecp256k1,
	Segwit:       false,
	ForkID:       fn.None[uint32](),
}, {
	CoinName:     "Zcash",
	CoinShortcut: "ZEC",
	Slip44:       133,
	CurveName:    CurveSecp256k1,
	Segwit:       false,
	ForkID:       fn.None[uint32](),
}, {
	CoinName:     "Namecoin",
	CoinShortcut: "NMC",
	Slip44:       7,
	CurveName:    CurveSecp256k1,
	Segwit:       false,
	ForkID:       fn.None[uint32](),
}, {
	CoinName:     "Vertcoin",
	CoinShortcut: "VTC",
	Slip44:       28,
	CurveName:    CurveSecp256k1,
	Segwit:       true,
	ForkID:       fn.None[uint32](),
}, {
	CoinName:     "DigiByte",
	CoinShortcut: "DGB",
	Slip44:       20,
	CurveName:    CurveSecp256k1,
	Segwit:       true,
	ForkID:       fn.None[uint32](),
}, {
	CoinName:     "Groestlcoin",
	CoinShortcut: "GRS",
	Slip44:       17,
	CurveName:    "secp256k1-groestl",
	Segwit:       true,
	ForkID:       fn.None[uint32](),
}}

// byName indexes the registry by canonical coin name.
var byName = make(map[string]*CoinInfo, len(coins))

func init() {
	for _, coin := range coins {
		if _, ok := byName[coin.CoinName]; ok {
			panic("duplicate coin name " + coin.CoinName)
		}
		byName[coin.CoinName] = coin
	}
}

// ByName returns the metadata registered for the passed coin name.
// The lookup is case sensitive.
func ByName(name string) (*CoinInfo, error) {
	coin, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCoin, name)
	}
	return coin, nil
}

// Coins returns every registered coin in registration order.  The
// returned slice is a copy, but the entries are the shared registry
// values.
func Coins() []*CoinInfo {
	c := make([]*CoinInfo, len(coins))
	copy(c, coins)
	return c
}
