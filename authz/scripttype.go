// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authz

import "github.com/btcsuite/btcvault/paths"

// InputScriptType describes how an operation intends to spend or
// receive at the requested path.
type InputScriptType uint8

const (
	// SpendAddress is plain pay-to-pubkey-hash.  It is the zero
	// value, so operations that do not name a script type are
	// treated as SpendAddress.
	SpendAddress InputScriptType = iota

	// SpendMultisig is pay-to-script-hash multisig.
	SpendMultisig

	// SpendP2SHWitness is pay-to-witness-pubkey-hash nested in
	// pay-to-script-hash.
	SpendP2SHWitness

	// SpendWitness is native pay-to-witness-pubkey-hash.
	SpendWitness
)

// String returns a human readable script type name for logging and
// display.
func (t InputScriptType) String() string {
	switch t {
	case SpendAddress:
		return "SpendAddress"
	case SpendMultisig:
		return "SpendMultisig"
	case SpendP2SHWitness:
		return "SpendP2SHWitness"
	case SpendWitness:
		return "SpendWitness"
	default:
		return "Unknown"
	}
}

// Operation describes a requested signing or address operation for
// authorization purposes.  It carries exactly the fields consulted by
// the authorization engine, regardless of which host message the
// request originated from.
type Operation struct {
	// CoinName names the target coin.  An empty name selects the
	// default coin, Bitcoin.
	CoinName string

	// AddressN is the requested derivation path.
	AddressN paths.Path

	// ScriptType is the requested script type.  The zero value is
	// SpendAddress.
	ScriptType InputScriptType

	// Multisig is set when the request carries a multisig
	// descriptor.
	Multisig bool
}
