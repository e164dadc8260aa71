// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package paths provides BIP-32 derivation paths and the path schema
// matcher used to restrict which paths a keychain may derive.
package paths

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// HardenedKeyStart is the index at which a derivation path component is
// considered hardened.  Components at or above this value require the
// parent private key to derive.
const HardenedKeyStart uint32 = hdkeychain.HardenedKeyStart

// maxComponentValue is the largest value a path component may carry
// before the hardened flag is applied.
const maxComponentValue = HardenedKeyStart - 1

var (
	// ErrEmptyPath describes a derivation path string with no
	// components.
	ErrEmptyPath = errors.New("derivation path is empty")

	// ErrInvalidComponent describes a derivation path component that
	// is not a decimal integer within the 31-bit range, optionally
	// followed by a hardened marker.
	ErrInvalidComponent = errors.New("invalid derivation path component")
)

// Path is a BIP-32 derivation path.  Hardened components carry the
// high bit, so m/44'/0'/0'/0/0 is represented as
// [44+HardenedKeyStart, HardenedKeyStart, HardenedKeyStart, 0, 0].
type Path []uint32

// Harden returns the hardened form of the passed component value.
func Harden(i uint32) uint32 {
	return i | HardenedKeyStart
}

// isHardened reports whether the component carries the hardened flag.
func isHardened(c uint32) bool {
	return c >= HardenedKeyStart
}

// ParsePath parses the human readable form of a derivation path such
// as m/44'/0'/0'/0/0.  The leading "m/" is optional and an "h" or "H"
// suffix is accepted in place of the apostrophe for hardened
// components.
func ParsePath(s string) (Path, error) {
	s = strings.TrimPrefix(s, "m/")
	if s == "" || s == "m" {
		return nil, ErrEmptyPath
	}

	parts := strings.Split(s, "/")
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		hardened := false
		switch {
		case strings.HasSuffix(part, "'"),
			strings.HasSuffix(part, "h"),
			strings.HasSuffix(part, "H"):

			hardened = true
			part = part[:len(part)-1]
		}
		if part == "" {
			return nil, fmt.Errorf("%w: empty component",
				ErrInvalidComponent)
		}

		value, err := strconv.ParseUint(part, 10, 32)
		if err != nil || value > uint64(maxComponentValue) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidComponent,
				part)
		}

		c := uint32(value)
		if hardened {
			c = Harden(c)
		}
		path = append(path, c)
	}

	return path, nil
}

// String returns the canonical human readable form of the path, using
// apostrophes for hardened components.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString("m")
	for _, c := range p {
		sb.WriteString("/")
		if isHardened(c) {
			sb.WriteString(strconv.FormatUint(
				uint64(c-HardenedKeyStart), 10,
			))
			sb.WriteString("'")
		} else {
			sb.WriteString(strconv.FormatUint(uint64(c), 10))
		}
	}
	return sb.String()
}

// Equal reports whether two paths have the same components.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i, c := range p {
		if other[i] != c {
			return false
		}
	}
	return true
}

// Clone returns a copy of the path that shares no backing storage with
// the original.
func (p Path) Clone() Path {
	c := make(Path, len(p))
	copy(c, p)
	return c
}
