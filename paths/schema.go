// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package paths

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Component value bounds enforced for the named placeholders.  These
// mirror the limits hardware signing devices place on account
// discovery so that a schema never admits a path the device would
// refuse to display.
const (
	// MaxAccount is the largest account number accepted by the
	// "account" placeholder.
	MaxAccount uint32 = 100

	// MaxChange is the largest branch number accepted by the
	// "change" placeholder.
	MaxChange uint32 = 1

	// MaxAddressIndex is the largest index accepted by the
	// "address_index" placeholder.
	MaxAddressIndex uint32 = 1000000
)

var (
	// ErrInvalidTemplate describes a schema template that does not
	// conform to the template grammar.
	ErrInvalidTemplate = errors.New("invalid path template")
)

// component is a single compiled template component.  A component
// accepts either an inclusive range of values or an explicit set, and
// requires the hardened flag to match exactly.
type component struct {
	hardened bool

	// lo and hi form the accepted inclusive range when set is nil.
	lo, hi uint32

	// set holds the explicitly accepted values, if any.
	set []uint32
}

// matches reports whether the raw path element satisfies the
// component.  The hardened flag must be equal and the 31-bit value
// must be accepted by the component's range or set.
func (c *component) matches(elem uint32) bool {
	if isHardened(elem) != c.hardened {
		return false
	}

	v := elem &^ HardenedKeyStart
	if c.set != nil {
		for _, accepted := range c.set {
			if v == accepted {
				return true
			}
		}
		return false
	}
	return v >= c.lo && v <= c.hi
}

// Schema is a compiled derivation path template bound to a reference
// coin type.  A schema accepts exactly the paths whose length equals
// the template's component count and whose every element satisfies the
// corresponding component.  Schemas are immutable after parsing and
// safe for concurrent use.
type Schema struct {
	template   string
	coinType   uint32
	components []component
}

// ParseSchema compiles a path template such as
//
//	m/49'/coin_type'/account'/change/address_index
//
// against the passed reference coin type.  Templates consist of "m"
// followed by slash separated components, where each component is a
// literal integer, one of the placeholders coin_type, account, change
// or address_index, an inclusive range [a-b], or an explicit set
// [a,b,c].  A trailing apostrophe marks the component hardened.  The
// coin_type placeholder accepts only the bound reference coin type.
func ParseSchema(template string, coinType uint32) (*Schema, error) {
	parts := strings.Split(template, "/")
	if parts[0] != "m" {
		return nil, fmt.Errorf("%w: %q: missing m prefix",
			ErrInvalidTemplate, template)
	}
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: %q: no components",
			ErrInvalidTemplate, template)
	}

	components := make([]component, 0, len(parts)-1)
	for _, part := range parts[1:] {
		c, err := parseComponent(part, coinType)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v",
				ErrInvalidTemplate, template, err)
		}
		components = append(components, c)
	}

	return &Schema{
		template:   template,
		coinType:   coinType,
		components: components,
	}, nil
}

// MustSchema is like ParseSchema but panics on error.  It simplifies
// the declaration of well known templates, in the manner of
// regexp.MustCompile.
func MustSchema(template string, coinType uint32) *Schema {
	s, err := ParseSchema(template, coinType)
	if err != nil {
		panic(err)
	}
	return s
}

// parseComponent compiles a single template component.
func parseComponent(part string, coinType uint32) (component, error) {
	var c component

	if strings.HasSuffix(part, "'") {
		c.hardened = true
		part = part[:len(part)-1]
	}
	if part == "" {
		return c, errors.New("empty component")
	}

	// Bracket expressions hold an inclusive range or an explicit
	// value set.
	if strings.HasPrefix(part, "[") {
		if !strings.HasSuffix(part, "]") {
			return c, fmt.Errorf("unterminated bracket in %q",
				part)
		}
		inner := part[1 : len(part)-1]

		if strings.Contains(inner, "-") {
			bounds := strings.SplitN(inner, "-", 2)
			lo, err := parseValue(bounds[0])
			if err != nil {
				return c, err
			}
			hi, err := parseValue(bounds[1])
			if err != nil {
				return c, err
			}
			if hi < lo {
				return c, fmt.Errorf("descending range in %q",
					part)
			}
			c.lo, c.hi = lo, hi
			return c, nil
		}

		values := strings.Split(inner, ",")
		c.set = make([]uint32, 0, len(values))
		for _, raw := range values {
			v, err := parseValue(raw)
			if err != nil {
				return c, err
			}
			c.set = append(c.set, v)
		}
		return c, nil
	}

	switch part {
	case "coin_type":
		c.lo, c.hi = coinType, coinType
	case "account":
		c.hi = MaxAccount
	case "change":
		c.hi = MaxChange
	case "address_index":
		c.hi = MaxAddressIndex
	default:
		v, err := parseValue(part)
		if err != nil {
			return c, err
		}
		c.lo, c.hi = v, v
	}
	return c, nil
}

// parseValue parses a decimal component value within the 31-bit range.
func parseValue(s string) (uint32, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil || v > uint64(maxComponentValue) {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return uint32(v), nil
}

// Match reports whether the passed path is accepted by the schema.
func (s *Schema) Match(path Path) bool {
	if len(path) != len(s.components) {
		return false
	}
	for i, c := range s.components {
		if !c.matches(path[i]) {
			return false
		}
	}
	return true
}

// CoinType returns the reference coin type the schema was bound to at
// parse time.
func (s *Schema) CoinType() uint32 {
	return s.coinType
}

// String returns the original template text.
func (s *Schema) String() string {
	return s.template
}

// MatchAny reports whether at least one of the passed schemas accepts
// the path.
func MatchAny(schemas []*Schema, path Path) bool {
	for _, s := range schemas {
		if s.Match(path) {
			return true
		}
	}
	return false
}
