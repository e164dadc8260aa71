// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keychain

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"

	"github.com/btcsuite/btcvault/internal/zero"
)

// slip21MasterHMACKey is the HMAC key fixed by SLIP-0021 for deriving
// the master node from a seed.
var slip21MasterHMACKey = []byte("Symmetric key seed")

// Slip21Path identifies a node in the SLIP-0021 symmetric key hierarchy
// as a sequence of byte string labels.
type Slip21Path [][]byte

// HasPrefix reports whether the path starts with every label of the
// passed prefix, in order.
func (p Slip21Path) HasPrefix(prefix Slip21Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i, label := range prefix {
		if !bytes.Equal(p[i], label) {
			return false
		}
	}
	return true
}

// Slip21Node is a single node of the SLIP-0021 symmetric key hierarchy.
// The first half of the node data is the chaining key used to derive
// child nodes and the second half is the node's symmetric key.
type Slip21Node struct {
	data [64]byte
}

// newSlip21Master derives the hierarchy's master node from a BIP-0039
// seed.
func newSlip21Master(seed []byte) *Slip21Node {
	mac := hmac.New(sha512.New, slip21MasterHMACKey)
	mac.Write(seed)

	node := &Slip21Node{}
	copy(node.data[:], mac.Sum(nil))
	return node
}

// DeriveChild returns the child node for the passed label.  The
// receiver is left intact.
func (n *Slip21Node) DeriveChild(label []byte) *Slip21Node {
	mac := hmac.New(sha512.New, n.data[:32])
	mac.Write([]byte{0x00})
	mac.Write(label)

	child := &Slip21Node{}
	copy(child.data[:], mac.Sum(nil))
	return child
}

// Key returns the node's symmetric key.  The returned slice aliases the
// node data and becomes invalid once Zero is called.
func (n *Slip21Node) Key() []byte {
	return n.data[32:]
}

// Zero wipes the node data.
func (n *Slip21Node) Zero() {
	zero.Bytea64(&n.data)
}
