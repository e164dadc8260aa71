package authz_test

import (
	"testing"

	"github.com/btcsuite/btcvault/authz"
	"github.com/btcsuite/btcvault/paths"
	"github.com/stretchr/testify/require"
)

// TestIsPathAuthorized tests the script type decision table across
// coins, script types and the multisig flag.
func TestIsPathAuthorized(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		coin       string
		path       string
		scriptType authz.InputScriptType
		multisig   bool
		want       bool
	}{{
		name: "bip44 spendaddress",
		coin: "Bitcoin",
		path: "m/44'/0'/0'/0/0",
		want: true,
	}, {
		name:       "bip44 explicit spendaddress",
		coin:       "Bitcoin",
		path:       "m/44'/0'/0'/0/0",
		scriptType: authz.SpendAddress,
		want:       true,
	}, {
		name:     "bip44 with multisig flag",
		coin:     "Bitcoin",
		path:     "m/44'/0'/0'/0/0",
		multisig: true,
		want:     false,
	}, {
		name: "bip44 account above limit",
		coin: "Bitcoin",
		path: "m/44'/0'/101'/0/0",
		want: false,
	}, {
		name: "bip49 path with spendaddress",
		coin: "Bitcoin",
		path: "m/49'/0'/0'/0/0",
		want: false,
	}, {
		name:       "bip49 spendp2shwitness",
		coin:       "Bitcoin",
		path:       "m/49'/0'/0'/0/0",
		scriptType: authz.SpendP2SHWitness,
		want:       true,
	}, {
		name:       "bip84 spendwitness",
		coin:       "Bitcoin",
		path:       "m/84'/0'/0'/0/0",
		scriptType: authz.SpendWitness,
		want:       true,
	}, {
		name:       "bip49 path with spendwitness",
		coin:       "Bitcoin",
		path:       "m/49'/0'/0'/0/0",
		scriptType: authz.SpendWitness,
		want:       false,
	}, {
		name:       "bip84 path with spendp2shwitness",
		coin:       "Bitcoin",
		path:       "m/84'/0'/0'/0/0",
		scriptType: authz.SpendP2SHWitness,
		want:       false,
	}, {
		name:     "bip45 multisig spendaddress",
		coin:     "Bitcoin",
		path:     "m/45'/57/0/7",
		multisig: true,
		want:     true,
	}, {
		name:       "bip45 multisig spendmultisig",
		coin:       "Bitcoin",
		path:       "m/45'/57/0/7",
		scriptType: authz.SpendMultisig,
		multisig:   true,
		want:       true,
	}, {
		name:       "spendmultisig without descriptor",
		coin:       "Bitcoin",
		path:       "m/45'/57/0/7",
		scriptType: authz.SpendMultisig,
		want:       false,
	}, {
		name:       "purpose48 multisig spendmultisig",
		coin:       "Bitcoin",
		path:       "m/48'/0'/0'/0'/0/0",
		scriptType: authz.SpendMultisig,
		multisig:   true,
		want:       true,
	}, {
		name:       "purpose48 multisig spendp2shwitness",
		coin:       "Bitcoin",
		path:       "m/48'/0'/0'/1'/0/0",
		scriptType: authz.SpendP2SHWitness,
		multisig:   true,
		want:       true,
	}, {
		name:       "purpose48 multisig spendwitness",
		coin:       "Bitcoin",
		path:       "m/48'/0'/0'/2'/0/0",
		scriptType: authz.SpendWitness,
		multisig:   true,
		want:       true,
	}, {
		name:       "purpose48 witness without multisig",
		coin:       "Bitcoin",
		path:       "m/48'/0'/0'/2'/0/0",
		scriptType: authz.SpendWitness,
		want:       false,
	}, {
		name: "greenaddress pool spendaddress",
		coin: "Bitcoin",
		path: "m/1/5",
		want: true,
	}, {
		name: "greenaddress pool on testnet",
		coin: "Testnet",
		path: "m/1/5",
		want: true,
	}, {
		name: "greenaddress pool on litecoin",
		coin: "Litecoin",
		path: "m/1/5",
		want: false,
	}, {
		name: "greenaddress subaccount spendaddress",
		coin: "Bitcoin",
		path: "m/3'/50'/4/10",
		want: true,
	}, {
		name:       "greenaddress pool spendwitness",
		coin:       "Bitcoin",
		path:       "m/1/5",
		scriptType: authz.SpendWitness,
		want:       true,
	}, {
		name:       "casa spendp2shwitness",
		coin:       "Bitcoin",
		path:       "m/49/0/0/0/0",
		scriptType: authz.SpendP2SHWitness,
		want:       true,
	}, {
		name: "casa path with spendaddress",
		coin: "Bitcoin",
		path: "m/49/0/0/0/0",
		want: false,
	}, {
		name:       "casa path with spendwitness",
		coin:       "Bitcoin",
		path:       "m/49/0/0/0/0",
		scriptType: authz.SpendWitness,
		want:       false,
	}, {
		name:       "casa on litecoin",
		coin:       "Litecoin",
		path:       "m/49/2/0/0/0",
		scriptType: authz.SpendP2SHWitness,
		want:       false,
	}, {
		name: "litecoin bip44",
		coin: "Litecoin",
		path: "m/44'/2'/0'/0/0",
		want: true,
	}, {
		name:       "litecoin bip84 spendwitness",
		coin:       "Litecoin",
		path:       "m/84'/2'/0'/0/0",
		scriptType: authz.SpendWitness,
		want:       true,
	}, {
		name:       "witness on non-segwit coin",
		coin:       "Bcash",
		path:       "m/84'/145'/0'/0/0",
		scriptType: authz.SpendWitness,
		want:       false,
	}, {
		name:       "nested witness on non-segwit coin",
		coin:       "Bcash",
		path:       "m/49'/145'/0'/0/0",
		scriptType: authz.SpendP2SHWitness,
		want:       false,
	}, {
		name: "bcash own coin type",
		coin: "Bcash",
		path: "m/44'/145'/0'/0/0",
		want: true,
	}, {
		name: "zcash bip44",
		coin: "Zcash",
		path: "m/44'/133'/0'/0/0",
		want: true,
	}}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(tt *testing.T) {
			coin := mustCoin(tt, tc.coin)
			op := &authz.Operation{
				CoinName:   tc.coin,
				AddressN:   mustPath(tt, tc.path),
				ScriptType: tc.scriptType,
				Multisig:   tc.multisig,
			}
			require.Equal(
				tt, tc.want,
				authz.IsPathAuthorized(coin, op),
			)
		})
	}
}

// TestForkCoinValidatorAsymmetry pins the deliberate difference
// between schema set construction and input validation for fork
// coins: a Bcash keychain can derive a Bitcoin path, because pre-fork
// coins may live there, but the validator refuses to authorize new
// operations on it.
func TestForkCoinValidatorAsymmetry(t *testing.T) {
	t.Parallel()

	bcash := mustCoin(t, "Bcash")
	bitcoinPath := mustPath(t, "m/44'/0'/0'/0/0")

	require.True(t, paths.MatchAny(
		authz.SchemasForCoin(bcash), bitcoinPath,
	))

	require.False(t, authz.IsPathAuthorized(bcash, &authz.Operation{
		CoinName: "Bcash",
		AddressN: bitcoinPath,
	}))
}

// TestInputScriptTypeString tests the display names.
func TestInputScriptTypeString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "SpendAddress", authz.SpendAddress.String())
	require.Equal(t, "SpendMultisig", authz.SpendMultisig.String())
	require.Equal(
		t, "SpendP2SHWitness", authz.SpendP2SHWitness.String(),
	)
	require.Equal(t, "SpendWitness", authz.SpendWitness.String())
	require.Equal(t, "Unknown", authz.InputScriptType(99).String())
}
