// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keychain

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcvault/internal/zero"
	"github.com/btcsuite/btcvault/paths"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/sync/singleflight"
)

const (
	// sealKeySize is the size of the secretbox key derived from the
	// passphrase.
	sealKeySize = 32

	// sealNonceSize is the secretbox nonce size.  The nonce is
	// prepended to the sealed blob.
	sealNonceSize = 24
)

var (
	// ErrInvalidPassphrase describes a failed unseal due to a wrong
	// passphrase.
	ErrInvalidPassphrase = errors.New("invalid passphrase")

	// ErrLocked describes an acquisition attempt against a locked
	// store that has no passphrase source to unlock it with.
	ErrLocked = errors.New("seed store is locked")

	// ErrMalformedSeal describes a sealed blob that failed to open
	// despite a correct passphrase key, indicating corruption.
	ErrMalformedSeal = errors.New("malformed sealed seed")
)

// ScryptOptions holds the scrypt parameters used when deriving the
// sealing key from a passphrase.
type ScryptOptions struct {
	N, R, P int
}

// DefaultScryptOptions is the default set of scrypt options.
var DefaultScryptOptions = ScryptOptions{
	N: 262144, // 2^18
	R: 8,
	P: 1,
}

// FastScryptOptions are insecure scrypt options useful only to make
// tests fast.
var FastScryptOptions = ScryptOptions{
	N: 16,
	R: 8,
	P: 1,
}

// PassphraseFunc supplies the passphrase during keychain acquisition.
// It is the one point of the authorization flow that may suspend, e.g.
// to interact with the user, and must honor the passed context.  The
// returned passphrase is wiped by the caller after use.
type PassphraseFunc func(ctx context.Context) ([]byte, error)

// SeedStore holds the device seed sealed under a passphrase-derived key
// and implements Acquirer by unsealing it on demand.  A successful
// unseal caches the seed in memory until Lock is called, mirroring a
// device session.
type SeedStore struct {
	mtx sync.Mutex

	// unsealFlight collapses concurrent unseal attempts into a
	// single passphrase prompt.
	unsealFlight singleflight.Group

	opts   ScryptOptions
	salt   [sealKeySize]byte
	digest [sha256.Size]byte
	sealed []byte

	passphraseFunc PassphraseFunc

	// seed holds the unsealed seed while the store is unlocked and
	// is nil otherwise.
	seed []byte
}

// Compile time check to ensure SeedStore satisfies the Acquirer
// interface.
var _ Acquirer = (*SeedStore)(nil)

// NewSeedStore seals the passed seed under the passed passphrase and
// returns a locked store.  The caller keeps ownership of both byte
// slices and should wipe them.  The passphrase func may be nil, in
// which case acquisition only succeeds while the store is unlocked.
func NewSeedStore(seed, passphrase []byte, opts *ScryptOptions,
	passphraseFunc PassphraseFunc) (*SeedStore, error) {

	if opts == nil {
		opts = &DefaultScryptOptions
	}

	s := &SeedStore{
		opts:           *opts,
		passphraseFunc: passphraseFunc,
	}
	if _, err := rand.Read(s.salt[:]); err != nil {
		return nil, err
	}

	var sealKey [sealKeySize]byte
	if err := s.deriveSealKey(passphrase, &sealKey); err != nil {
		return nil, err
	}
	defer zero.Bytea32(&sealKey)
	s.digest = sha256.Sum256(sealKey[:])

	var nonce [sealNonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}
	s.sealed = secretbox.Seal(nonce[:], seed, &nonce, &sealKey)

	return s, nil
}

// deriveSealKey derives the secretbox key for the passed passphrase
// into sealKey using the store's scrypt parameters and salt.
func (s *SeedStore) deriveSealKey(passphrase []byte,
	sealKey *[sealKeySize]byte) error {

	derived, err := scrypt.Key(
		passphrase, s.salt[:], s.opts.N, s.opts.R, s.opts.P,
		sealKeySize,
	)
	if err != nil {
		return err
	}
	copy(sealKey[:], derived)
	zero.Bytes(derived)
	return nil
}

// unseal opens the sealed seed with the passed passphrase and caches
// it.  The caller must hold the store mutex.
func (s *SeedStore) unseal(passphrase []byte) error {
	var sealKey [sealKeySize]byte
	if err := s.deriveSealKey(passphrase, &sealKey); err != nil {
		return err
	}
	defer zero.Bytea32(&sealKey)

	digest := sha256.Sum256(sealKey[:])
	if subtle.ConstantTimeCompare(digest[:], s.digest[:]) != 1 {
		return ErrInvalidPassphrase
	}

	var nonce [sealNonceSize]byte
	copy(nonce[:], s.sealed[:sealNonceSize])
	seed, ok := secretbox.Open(
		nil, s.sealed[sealNonceSize:], &nonce, &sealKey,
	)
	if !ok {
		return ErrMalformedSeal
	}

	s.seed = seed
	return nil
}

// Unlock unseals the seed with the passed passphrase and caches it
// until Lock is called.  A wrong passphrase fails with
// ErrInvalidPassphrase.
func (s *SeedStore) Unlock(passphrase []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.seed != nil {
		return nil
	}
	return s.unseal(passphrase)
}

// IsLocked reports whether the seed is currently sealed.
func (s *SeedStore) IsLocked() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.seed == nil
}

// Lock wipes the cached seed, returning the store to its sealed state.
func (s *SeedStore) Lock() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.seed != nil {
		zero.Bytes(s.seed)
		s.seed = nil
	}
}

// Close locks the store.  It exists so callers can defer releasing the
// store alongside other resources.
func (s *SeedStore) Close() error {
	s.Lock()
	return nil
}

// Acquire implements the Acquirer interface.  It returns a keychain
// scoped to the passed schemas and namespaces, unsealing the seed
// first if necessary.  Unsealing collects the passphrase through the
// store's passphrase func, which is where the call may suspend.
// Concurrent acquisitions against a locked store share a single
// prompt, so a failure of the in-flight prompt fails the waiting
// acquisitions as well; passphrase and context errors are returned to
// the caller unchanged.
func (s *SeedStore) Acquire(ctx context.Context, curveName string,
	schemas []*paths.Schema,
	namespaces []Slip21Path) (*Keychain, error) {

	// Refuse unsupported curves before any passphrase interaction.
	if curveName != curveSecp256k1 {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCurve,
			curveName)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.IsLocked() {
		if s.passphraseFunc == nil {
			return nil, ErrLocked
		}
		_, err, _ := s.unsealFlight.Do("unseal", func() (interface{}, error) {
			return nil, s.promptAndUnseal(ctx)
		})
		if err != nil {
			return nil, err
		}
	}

	s.mtx.Lock()
	if s.seed == nil {
		// The store was locked again before the keychain could
		// be built.
		s.mtx.Unlock()
		return nil, ErrLocked
	}
	kc, err := New(s.seed, curveName, schemas, namespaces)
	s.mtx.Unlock()
	if err != nil {
		return nil, err
	}

	log.Debugf("Acquired keychain scoped to %d path schemas and %d "+
		"SLIP-0021 namespaces", len(schemas), len(namespaces))
	return kc, nil
}

// promptAndUnseal collects the passphrase and unseals the seed with
// it.  Another unseal winning the race is not an error.
func (s *SeedStore) promptAndUnseal(ctx context.Context) error {
	if !s.IsLocked() {
		return nil
	}

	// Collect the passphrase without holding the store locked; the
	// prompt may block indefinitely.
	passphrase, err := s.passphraseFunc(ctx)
	if err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.seed == nil {
		err = s.unseal(passphrase)
	}
	zero.Bytes(passphrase)
	return err
}
