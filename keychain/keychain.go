// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keychain implements the scoped keychain handed to authorized
// operations.  A keychain is created from a seed and a fixed set of
// path schemas, derives BIP-0032 nodes for paths matching its schemas
// and SLIP-0021 nodes under its registered namespaces, and refuses
// everything else.  Releasing the keychain wipes the seed and every
// cached node.
package keychain

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcvault/internal/zero"
	"github.com/btcsuite/btcvault/paths"
	"github.com/lightninglabs/neutrino/cache"
	"github.com/lightninglabs/neutrino/cache/lru"
	"github.com/lightningnetwork/lnd/fn/v2"
)

const (
	// curveSecp256k1 is the only curve the BIP-0032 derivation
	// backend supports.
	curveSecp256k1 = "secp256k1"

	// derivePrefixLen is the number of leading path components whose
	// derived node is kept in the node cache.  BIP-0044 style paths
	// share their first three components across an account, so
	// caching at this depth turns sibling address derivations into
	// two child steps.
	derivePrefixLen = 3

	// nodeCacheSize bounds the number of cached account prefix
	// nodes.
	nodeCacheSize = 10
)

var (
	// ErrForbiddenKeyPath describes a derivation request outside the
	// keychain's path schemas or SLIP-0021 namespaces.
	ErrForbiddenKeyPath = errors.New("forbidden key path")

	// ErrKeychainReleased describes use of a keychain after it has
	// been released.
	ErrKeychainReleased = errors.New("keychain released")

	// ErrUnsupportedCurve describes a keychain request for a curve
	// the derivation backend does not implement.
	ErrUnsupportedCurve = errors.New("unsupported curve")
)

// Acquirer hands out keychains scoped to a curve, a path schema set and
// a set of SLIP-0021 namespaces.  Acquisition is the only operation in
// the authorization flow that may suspend, e.g. to collect a
// passphrase, which is why it carries a context.
type Acquirer interface {
	// Acquire returns a keychain restricted to the passed schemas
	// and namespaces.  The caller owns the returned keychain and
	// must release it with Zero when done.
	Acquire(ctx context.Context, curveName string,
		schemas []*paths.Schema,
		namespaces []Slip21Path) (*Keychain, error)
}

// cachedNode wraps a derived extended key for the node cache.
type cachedNode struct {
	key *hdkeychain.ExtendedKey
}

// Size returns the "size" of a cache entry.  Entries count as one each
// so the cache simply bounds the number of retained nodes.
func (c *cachedNode) Size() (uint64, error) {
	return 1, nil
}

// Keychain derives keys from a seed for exactly the paths admitted by
// its schema set.  It is the enforcement point of path authorization:
// every derivation re-checks the requested path, so holding a keychain
// grants access to its scope and nothing else.
//
// A keychain is intended for single-flight use by one operation at a
// time and must be released with Zero on every exit path.
type Keychain struct {
	curveName  string
	seed       []byte
	root       *hdkeychain.ExtendedKey
	schemas    []*paths.Schema
	namespaces []Slip21Path

	// nodeCache retains account prefix nodes across derivations.
	// Cached nodes are owned by the keychain and wiped on release.
	nodeCache *lru.Cache[string, *cachedNode]

	fingerprint fn.Option[uint32]
	released    bool
}

// New creates a keychain from the passed seed, restricted to the passed
// path schemas and SLIP-0021 namespaces.  The seed is copied, so the
// caller remains responsible for its own copy.  Only secp256k1 is
// supported; requests for other curves fail with ErrUnsupportedCurve.
func New(seed []byte, curveName string, schemas []*paths.Schema,
	namespaces []Slip21Path) (*Keychain, error) {

	if curveName != curveSecp256k1 {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCurve,
			curveName)
	}

	seedCopy := make([]byte, len(seed))
	copy(seedCopy, seed)

	// The chain parameters only select the version bytes used when
	// serializing extended keys.  Derivation itself is network
	// independent.
	root, err := hdkeychain.NewMaster(seedCopy, &chaincfg.MainNetParams)
	if err != nil {
		zero.Bytes(seedCopy)
		return nil, err
	}

	return &Keychain{
		curveName:  curveName,
		seed:       seedCopy,
		root:       root,
		schemas:    schemas,
		namespaces: namespaces,
		nodeCache: lru.NewCache[string, *cachedNode](
			nodeCacheSize,
		),
		fingerprint: fn.None[uint32](),
	}, nil
}

// CurveName returns the curve the keychain derives keys on.
func (k *Keychain) CurveName() string {
	return k.curveName
}

// Schemas returns the path schemas the keychain is restricted to.  The
// returned slice must be treated as read only.
func (k *Keychain) Schemas() []*paths.Schema {
	return k.schemas
}

// Accepts reports whether the passed path is within the keychain's
// schema set.  It does not derive anything and may be called on a
// released keychain.
func (k *Keychain) Accepts(path paths.Path) bool {
	return paths.MatchAny(k.schemas, path)
}

// Derive derives the node at the passed path.  Paths outside the
// keychain's schema set fail with ErrForbiddenKeyPath.  The returned
// key is owned by the caller and should be zeroed after use.
func (k *Keychain) Derive(path paths.Path) (*hdkeychain.ExtendedKey, error) {
	if k.released {
		return nil, ErrKeychainReleased
	}
	if !paths.MatchAny(k.schemas, path) {
		return nil, fmt.Errorf("%w: %v", ErrForbiddenKeyPath, path)
	}

	// Short paths are cheap to derive from the root directly, and
	// skipping the cache for them guarantees cached nodes never
	// escape to callers.
	if len(path) <= derivePrefixLen {
		return deriveSteps(k.root, path)
	}

	prefix := path[:derivePrefixLen]
	cacheKey := prefix.String()

	node, err := k.nodeCache.Get(cacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrElementNotFound) {
			return nil, err
		}

		prefixKey, err := deriveSteps(k.root, prefix)
		if err != nil {
			return nil, err
		}
		node = &cachedNode{key: prefixKey}
		_, _ = k.nodeCache.Put(cacheKey, node)

		log.Tracef("Cached derivation prefix %v", cacheKey)
	}

	return deriveSteps(node.key, path[derivePrefixLen:])
}

// DeriveSlip21 derives the SLIP-0021 symmetric key node at the passed
// path.  The path must extend one of the keychain's registered
// namespaces, otherwise the derivation fails with ErrForbiddenKeyPath.
// The returned node is owned by the caller and should be zeroed after
// use.
func (k *Keychain) DeriveSlip21(path Slip21Path) (*Slip21Node, error) {
	if k.released {
		return nil, ErrKeychainReleased
	}

	allowed := false
	for _, ns := range k.namespaces {
		if path.HasPrefix(ns) {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: not in a registered namespace",
			ErrForbiddenKeyPath)
	}

	node := newSlip21Master(k.seed)
	for _, label := range path {
		child := node.DeriveChild(label)
		node.Zero()
		node = child
	}
	return node, nil
}

// RootFingerprint returns the fingerprint of the BIP-0032 master node,
// the big endian interpretation of the first four bytes of the
// HASH160 of the master public key.  Hosts embed it when assembling
// PSBT derivation entries.
func (k *Keychain) RootFingerprint() (uint32, error) {
	if k.released {
		return 0, ErrKeychainReleased
	}
	if k.fingerprint.IsSome() {
		return k.fingerprint.UnwrapOr(0), nil
	}

	pubKey, err := k.root.ECPubKey()
	if err != nil {
		return 0, err
	}

	fp := binary.BigEndian.Uint32(
		btcutil.Hash160(pubKey.SerializeCompressed())[:4],
	)
	k.fingerprint = fn.Some(fp)
	return fp, nil
}

// Zero releases the keychain, wiping the seed, the master node and
// every cached derivation node.  Any later derivation fails with
// ErrKeychainReleased.  Zero is idempotent.
func (k *Keychain) Zero() {
	if k.released {
		return
	}
	k.released = true

	zero.Bytes(k.seed)
	k.root.Zero()

	k.nodeCache.Range(func(_ string, node *cachedNode) bool {
		node.key.Zero()
		return true
	})

	log.Tracef("Released keychain with %d schemas", len(k.schemas))
}

// deriveSteps walks the passed path below parent, returning the final
// node.  Intermediate nodes are zeroed as the walk advances; the parent
// itself is left intact.
func deriveSteps(parent *hdkeychain.ExtendedKey,
	path paths.Path) (*hdkeychain.ExtendedKey, error) {

	current := parent
	for _, child := range path {
		next, err := current.Derive(child)
		if current != parent {
			current.Zero()
		}
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}
