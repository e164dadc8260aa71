// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authz

import (
	"github.com/btcsuite/btcvault/coininfo"
	"github.com/btcsuite/btcvault/paths"
	"github.com/davecgh/go-spew/spew"
)

// IsPathAuthorized reports whether the operation's path is admissible
// for its script type on the passed coin.  The considered templates
// depend on the script type, the multisig flag, the coin's segwit
// capability and its membership in the Bitcoin family:
//
//   - SpendAddress without multisig admits BIP-0044.
//   - SpendAddress or SpendMultisig with multisig admits BIP-0045 and
//     purpose 48'.
//   - SpendP2SHWitness on segwit coins admits BIP-0049, purpose 48'
//     for multisig, and the Casa hierarchy for the Bitcoin family.
//   - SpendWitness on segwit coins admits BIP-0084 and purpose 48'
//     for multisig.
//   - The GreenAddress hierarchies are admitted for the Bitcoin
//     family under every matched script type.
//
// Witness script types on non-segwit coins admit nothing.  Every
// template is bound to the coin's own coin type; unlike schema set
// construction, no allowance is made for fork coins on Bitcoin paths,
// so a fork coin's keychain can derive such paths while this check
// still refuses them.
func IsPathAuthorized(coin *coininfo.CoinInfo, op *Operation) bool {
	var templates []string

	switch {
	case op.ScriptType == SpendAddress && !op.Multisig:
		templates = append(templates, PatternBIP44)
		if bitcoinNames.Contains(coin.CoinName) {
			templates = append(templates,
				PatternGreenAddressA,
				PatternGreenAddressB,
			)
		}

	case (op.ScriptType == SpendAddress ||
		op.ScriptType == SpendMultisig) && op.Multisig:

		templates = append(templates,
			PatternBIP45,
			PatternPurpose48,
		)
		if bitcoinNames.Contains(coin.CoinName) {
			templates = append(templates,
				PatternGreenAddressA,
				PatternGreenAddressB,
			)
		}

	case coin.Segwit && op.ScriptType == SpendP2SHWitness:
		templates = append(templates, PatternBIP49)
		if op.Multisig {
			templates = append(templates, PatternPurpose48)
		}
		if bitcoinNames.Contains(coin.CoinName) {
			templates = append(templates,
				PatternGreenAddressA,
				PatternGreenAddressB,
				PatternCasa,
			)
		}

	case coin.Segwit && op.ScriptType == SpendWitness:
		templates = append(templates, PatternBIP84)
		if op.Multisig {
			templates = append(templates, PatternPurpose48)
		}
		if bitcoinNames.Contains(coin.CoinName) {
			templates = append(templates,
				PatternGreenAddressA,
				PatternGreenAddressB,
			)
		}
	}

	for _, template := range templates {
		if paths.MustSchema(template, coin.Slip44).Match(op.AddressN) {
			return true
		}
	}

	log.Debugf("Path %v refused for %v (%v, multisig=%v)", op.AddressN,
		coin.CoinName, op.ScriptType, op.Multisig)
	log.Tracef("Refused operation: %v", newLogClosure(func() string {
		return spew.Sdump(op)
	}))
	return false
}
