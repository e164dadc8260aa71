// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcvault/coininfo"
	"github.com/btcsuite/btcvault/keychain"
)

// DefaultCoinName is the coin selected when an operation does not name
// one.
const DefaultCoinName = "Bitcoin"

// ErrUnsupportedCoin describes an operation targeting a coin that is
// not in the registry.
var ErrUnsupportedCoin = errors.New("unsupported coin type")

// CoinByName resolves the passed coin name against the registry.  An
// empty name selects DefaultCoinName.  Unknown names fail with
// ErrUnsupportedCoin.
func CoinByName(name string) (*coininfo.CoinInfo, error) {
	if name == "" {
		name = DefaultCoinName
	}

	coin, err := coininfo.ByName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCoin, name)
	}
	return coin, nil
}

// slip21Namespaces returns the SLIP-0021 namespaces granted to every
// acquired keychain.  Proof of ownership signing uses keys under the
// SLIP-0019 namespace.
func slip21Namespaces() []keychain.Slip21Path {
	return []keychain.Slip21Path{{[]byte("SLIP-0019")}}
}

// KeychainForCoin resolves the passed coin name, builds its schema set
// and acquires a keychain scoped to it.  The caller owns the returned
// keychain and must release it with Zero.  Acquisition failures are
// returned to the caller unchanged.
func KeychainForCoin(ctx context.Context, acq keychain.Acquirer,
	coinName string) (*keychain.Keychain, *coininfo.CoinInfo, error) {

	coin, err := CoinByName(coinName)
	if err != nil {
		return nil, nil, err
	}

	schemas := SchemasForCoin(coin)
	kc, err := acq.Acquire(ctx, coin.CurveName, schemas,
		slip21Namespaces())
	if err != nil {
		return nil, nil, err
	}

	log.Debugf("Keychain for %v scoped to %d schemas", coin.CoinName,
		len(schemas))
	return kc, coin, nil
}

// Authorization is a token carrying a pre-approved keychain for a
// single coin.  Tokens are issued by flows that obtained explicit user
// consent ahead of time, e.g. a coinjoin coordinator, and let their
// operations run without acquiring a keychain of their own.  The token
// issuer owns the keychain lifecycle and is responsible for matching
// the token against the operations it is used with.
type Authorization struct {
	kc       *keychain.Keychain
	coinName string
}

// NewAuthorization creates a token binding the passed keychain to the
// passed coin name.
func NewAuthorization(kc *keychain.Keychain, coinName string) *Authorization {
	return &Authorization{
		kc:       kc,
		coinName: coinName,
	}
}

// Keychain returns the token's keychain.
func (a *Authorization) Keychain() *keychain.Keychain {
	return a.kc
}

// CoinName returns the coin the token was issued for.
func (a *Authorization) CoinName() string {
	return a.coinName
}

// Handler is an operation handler invoked with an authorized keychain.
// When the operation ran under an authorization token, auth carries
// it; otherwise auth is nil and the keychain was freshly acquired.
type Handler[R any] func(ctx context.Context, op *Operation,
	kc *keychain.Keychain, coin *coininfo.CoinInfo,
	auth *Authorization) (R, error)

// WithKeychain wraps the passed handler with keychain setup and
// teardown.  Without a token the wrapper resolves the operation's
// coin, acquires a keychain scoped to the coin's schema set and
// releases it once the handler returns, on every exit path.  With a
// token the wrapper skips acquisition entirely and hands the handler
// the token's keychain, leaving its lifecycle to the token issuer.
// Coin resolution and acquisition failures are returned unchanged
// without invoking the handler.
func WithKeychain[R any](acq keychain.Acquirer, handler Handler[R]) func(
	ctx context.Context, op *Operation, auth *Authorization) (R, error) {

	return func(ctx context.Context, op *Operation,
		auth *Authorization) (R, error) {

		var zero R

		if auth != nil {
			coin, err := CoinByName(op.CoinName)
			if err != nil {
				return zero, err
			}

			log.Debugf("Dispatching with authorized keychain "+
				"for %v", coin.CoinName)
			return handler(ctx, op, auth.Keychain(), coin, auth)
		}

		kc, coin, err := KeychainForCoin(ctx, acq, op.CoinName)
		if err != nil {
			return zero, err
		}
		defer kc.Zero()

		return handler(ctx, op, kc, coin, nil)
	}
}
