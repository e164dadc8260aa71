// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package authz decides whether operations may use keys at requested
// derivation paths.  It builds the per-coin set of admissible path
// schemas, validates paths against the script type they are to be
// spent with, and dispatches handlers with a keychain scoped to
// exactly the admissible set.
package authz

import (
	"github.com/btcsuite/btcvault/coininfo"
	"github.com/btcsuite/btcvault/paths"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Derivation path templates admitted for coins.  The coin_type
// placeholder binds to the coin the template is evaluated for.
const (
	// PatternBIP44 is the BIP-0044 pay-to-pubkey-hash account
	// hierarchy.
	PatternBIP44 = "m/44'/coin_type'/account'/change/address_index"

	// PatternBIP45 is the BIP-0045 multisig hierarchy with an
	// unhardened cosigner index.
	PatternBIP45 = "m/45'/[0-100]/change/address_index"

	// PatternPurpose48 is the purpose 48' multi-script multisig
	// hierarchy.  The hardened set component selects the script
	// type.
	PatternPurpose48 = "m/48'/coin_type'/account'/[0,1,2]'/change/address_index"

	// PatternBIP49 is the BIP-0049 nested segwit hierarchy.
	PatternBIP49 = "m/49'/coin_type'/account'/change/address_index"

	// PatternBIP84 is the BIP-0084 native segwit hierarchy.
	PatternBIP84 = "m/84'/coin_type'/account'/change/address_index"
)

// Compatibility templates admitted for the Bitcoin family only, kept
// for wallets that predate the standard hierarchies.
const (
	// PatternGreenAddressA is the GreenAddress pool address
	// hierarchy.
	PatternGreenAddressA = "m/[1,4]/address_index"

	// PatternGreenAddressB is the GreenAddress subaccount
	// hierarchy.
	PatternGreenAddressB = "m/3'/[1-100]'/[1,4]/address_index"

	// PatternGreenAddressSignA is the GreenAddress login signing
	// path.
	PatternGreenAddressSignA = "m/1195487518"

	// PatternGreenAddressSignB is the GreenAddress message signing
	// hierarchy.
	PatternGreenAddressSignB = "m/1195487518/6/address_index"

	// PatternCasa is the Casa unhardened purpose 49 hierarchy.
	PatternCasa = "m/49/coin_type/account/change/address_index"
)

// bitcoinNames are the coins that legacy wallets created incompatible
// hierarchies for.  The compatibility templates are admitted only for
// these.
var bitcoinNames = fn.NewSet("Bitcoin", "Regtest", "Testnet")

// SchemasForCoin builds the full set of path schemas the passed coin
// admits: the standard hierarchies, the compatibility hierarchies for
// the Bitcoin family, and the segwit hierarchies for segwit coins,
// each bound to the coin's registered coin type.  For coins with
// strong replay protection the set additionally admits every template
// bound to the Bitcoin coin type, so that coins received on Bitcoin
// paths before the fork remain spendable.  Construction is
// deterministic and performed anew on every call.
func SchemasForCoin(coin *coininfo.CoinInfo) []*paths.Schema {
	templates := []string{
		PatternBIP44,
		PatternBIP45,
		PatternPurpose48,
	}

	if bitcoinNames.Contains(coin.CoinName) {
		templates = append(templates,
			PatternGreenAddressA,
			PatternGreenAddressB,
			PatternGreenAddressSignA,
			PatternGreenAddressSignB,
			PatternCasa,
		)
	}

	if coin.Segwit {
		templates = append(templates, PatternBIP49, PatternBIP84)
	}

	schemas := make([]*paths.Schema, 0, 2*len(templates))
	for _, template := range templates {
		schemas = append(schemas, paths.MustSchema(
			template, coin.Slip44,
		))
	}

	// Coins that sign with a fork id cannot replay transactions
	// onto the parent chain, so paths bound to the Bitcoin coin
	// type are admitted as well.  Wallets are known to have stored
	// such coins on Bitcoin paths around the respective forks.
	if coin.ForkID.IsSome() {
		for _, template := range templates {
			schemas = append(schemas, paths.MustSchema(
				template, 0,
			))
		}
	}

	return schemas
}
