package paths_test

import (
	"testing"

	"github.com/btcsuite/btcvault/paths"
	"github.com/stretchr/testify/require"
)

// mustPath parses the path or fails the test.
func mustPath(t *testing.T, s string) paths.Path {
	t.Helper()

	path, err := paths.ParsePath(s)
	require.NoError(t, err)
	return path
}

// TestParseSchemaErrors tests rejection of malformed templates.
func TestParseSchemaErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		template string
	}{{
		name:     "empty template",
		template: "",
	}, {
		name:     "missing m prefix",
		template: "44'/coin_type'/account'/change/address_index",
	}, {
		name:     "no components",
		template: "m",
	}, {
		name:     "empty component",
		template: "m/44'//change",
	}, {
		name:     "unterminated bracket",
		template: "m/[1,4/address_index",
	}, {
		name:     "descending range",
		template: "m/[100-1]/address_index",
	}, {
		name:     "non numeric range bound",
		template: "m/[a-b]",
	}, {
		name:     "empty set entry",
		template: "m/[1,]/address_index",
	}, {
		name:     "unknown placeholder",
		template: "m/44'/cointype'/account'/change/address_index",
	}, {
		name:     "value above 31 bits",
		template: "m/2147483648",
	}, {
		name:     "range bound above 31 bits",
		template: "m/[0-2147483648]",
	}}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(tt *testing.T) {
			_, err := paths.ParseSchema(tc.template, 0)
			require.ErrorIs(tt, err, paths.ErrInvalidTemplate)
		})
	}
}

// TestSchemaMatch tests the matcher against the template grammar:
// literals, placeholders with their value bounds, ranges, sets, and
// the hardened flag in every position.
func TestSchemaMatch(t *testing.T) {
	t.Parallel()

	const (
		bip44   = "m/44'/coin_type'/account'/change/address_index"
		bip45   = "m/45'/[0-100]/change/address_index"
		bip48   = "m/48'/coin_type'/account'/[0,1,2]'/change/address_index"
		gaPool  = "m/[1,4]/address_index"
		gaSignA = "m/1195487518"
		gaSignB = "m/1195487518/6/address_index"
		casa    = "m/49/coin_type/account/change/address_index"
		coinBTC = 0
		coinLTC = 2
	)

	testCases := []struct {
		name     string
		template string
		coinType uint32
		path     string
		want     bool
	}{{
		name:     "bip44 external chain",
		template: bip44,
		coinType: coinBTC,
		path:     "m/44'/0'/0'/0/0",
		want:     true,
	}, {
		name:     "bip44 change chain",
		template: bip44,
		coinType: coinBTC,
		path:     "m/44'/0'/5'/1/1234",
		want:     true,
	}, {
		name:     "bip44 foreign coin type",
		template: bip44,
		coinType: coinBTC,
		path:     "m/44'/2'/0'/0/0",
		want:     false,
	}, {
		name:     "bip44 litecoin binding",
		template: bip44,
		coinType: coinLTC,
		path:     "m/44'/2'/0'/0/0",
		want:     true,
	}, {
		name:     "bip44 unhardened purpose",
		template: bip44,
		coinType: coinBTC,
		path:     "m/44/0'/0'/0/0",
		want:     false,
	}, {
		name:     "bip44 hardened change",
		template: bip44,
		coinType: coinBTC,
		path:     "m/44'/0'/0'/0'/0",
		want:     false,
	}, {
		name:     "bip44 account at limit",
		template: bip44,
		coinType: coinBTC,
		path:     "m/44'/0'/100'/0/0",
		want:     true,
	}, {
		name:     "bip44 account above limit",
		template: bip44,
		coinType: coinBTC,
		path:     "m/44'/0'/101'/0/0",
		want:     false,
	}, {
		name:     "bip44 change above limit",
		template: bip44,
		coinType: coinBTC,
		path:     "m/44'/0'/0'/2/0",
		want:     false,
	}, {
		name:     "bip44 address index at limit",
		template: bip44,
		coinType: coinBTC,
		path:     "m/44'/0'/0'/0/1000000",
		want:     true,
	}, {
		name:     "bip44 address index above limit",
		template: bip44,
		coinType: coinBTC,
		path:     "m/44'/0'/0'/0/1000001",
		want:     false,
	}, {
		name:     "bip44 path too short",
		template: bip44,
		coinType: coinBTC,
		path:     "m/44'/0'/0'/0",
		want:     false,
	}, {
		name:     "bip44 path too long",
		template: bip44,
		coinType: coinBTC,
		path:     "m/44'/0'/0'/0/0/0",
		want:     false,
	}, {
		name:     "bip45 range low edge",
		template: bip45,
		coinType: coinBTC,
		path:     "m/45'/0/0/0",
		want:     true,
	}, {
		name:     "bip45 range high edge",
		template: bip45,
		coinType: coinBTC,
		path:     "m/45'/100/1/42",
		want:     true,
	}, {
		name:     "bip45 range exceeded",
		template: bip45,
		coinType: coinBTC,
		path:     "m/45'/101/0/0",
		want:     false,
	}, {
		name:     "bip45 hardened cosigner index",
		template: bip45,
		coinType: coinBTC,
		path:     "m/45'/1'/0/0",
		want:     false,
	}, {
		name:     "bip48 script type in set",
		template: bip48,
		coinType: coinBTC,
		path:     "m/48'/0'/0'/2'/0/0",
		want:     true,
	}, {
		name:     "bip48 script type outside set",
		template: bip48,
		coinType: coinBTC,
		path:     "m/48'/0'/0'/3'/0/0",
		want:     false,
	}, {
		name:     "bip48 unhardened script type",
		template: bip48,
		coinType: coinBTC,
		path:     "m/48'/0'/0'/1/0/0",
		want:     false,
	}, {
		name:     "greenaddress pool branch 1",
		template: gaPool,
		coinType: coinBTC,
		path:     "m/1/0",
		want:     true,
	}, {
		name:     "greenaddress pool branch 4",
		template: gaPool,
		coinType: coinBTC,
		path:     "m/4/250",
		want:     true,
	}, {
		name:     "greenaddress pool branch outside set",
		template: gaPool,
		coinType: coinBTC,
		path:     "m/2/0",
		want:     false,
	}, {
		name:     "greenaddress pool hardened branch",
		template: gaPool,
		coinType: coinBTC,
		path:     "m/1'/0",
		want:     false,
	}, {
		name:     "single component template",
		template: gaSignA,
		coinType: coinBTC,
		path:     "m/1195487518",
		want:     true,
	}, {
		name:     "single component with extra depth",
		template: gaSignA,
		coinType: coinBTC,
		path:     "m/1195487518/6",
		want:     false,
	}, {
		name:     "sign template full depth",
		template: gaSignB,
		coinType: coinBTC,
		path:     "m/1195487518/6/7",
		want:     true,
	}, {
		name:     "sign template wrong literal",
		template: gaSignB,
		coinType: coinBTC,
		path:     "m/1195487518/5/7",
		want:     false,
	}, {
		name:     "fully unhardened template",
		template: casa,
		coinType: coinBTC,
		path:     "m/49/0/0/0/0",
		want:     true,
	}, {
		name:     "fully unhardened rejects hardened",
		template: casa,
		coinType: coinBTC,
		path:     "m/49'/0'/0'/0/0",
		want:     false,
	}}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(tt *testing.T) {
			schema, err := paths.ParseSchema(
				tc.template, tc.coinType,
			)
			require.NoError(tt, err)

			path := mustPath(tt, tc.path)
			require.Equal(tt, tc.want, schema.Match(path))
		})
	}
}

// TestSchemaMatchEmptyPath tests that no schema accepts an empty path.
func TestSchemaMatchEmptyPath(t *testing.T) {
	t.Parallel()

	schema := paths.MustSchema("m/[1,4]/address_index", 0)
	require.False(t, schema.Match(nil))
	require.False(t, schema.Match(paths.Path{}))
}

// TestMatchAny tests the any-of matcher over a schema list.
func TestMatchAny(t *testing.T) {
	t.Parallel()

	schemas := []*paths.Schema{
		paths.MustSchema(
			"m/44'/coin_type'/account'/change/address_index", 0,
		),
		paths.MustSchema(
			"m/84'/coin_type'/account'/change/address_index", 0,
		),
	}

	require.True(t, paths.MatchAny(
		schemas, mustPath(t, "m/84'/0'/0'/0/0"),
	))
	require.False(t, paths.MatchAny(
		schemas, mustPath(t, "m/49'/0'/0'/0/0"),
	))
	require.False(t, paths.MatchAny(nil, mustPath(t, "m/44'/0'/0'/0/0")))
}

// TestSchemaAccessors tests the bound coin type and template text
// accessors.
func TestSchemaAccessors(t *testing.T) {
	t.Parallel()

	const template = "m/44'/coin_type'/account'/change/address_index"

	schema, err := paths.ParseSchema(template, 145)
	require.NoError(t, err)
	require.Equal(t, uint32(145), schema.CoinType())
	require.Equal(t, template, schema.String())
}

// TestMustSchemaPanics tests the panic contract of MustSchema.
func TestMustSchemaPanics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		paths.MustSchema("not a template", 0)
	})
	require.NotPanics(t, func() {
		paths.MustSchema("m/45'/[0-100]/change/address_index", 0)
	})
}
