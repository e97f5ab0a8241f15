// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package encoding

import "fmt"

const (
	// MaxTiny is the largest size representable by a one byte length prefix.
	MaxTiny = 1<<8 - 1

	// MaxSmall is the largest size representable by a two byte length prefix.
	MaxSmall = 1<<16 - 1

	// MaxMedium is the largest size representable by a three byte length
	// prefix.
	MaxMedium = 1<<24 - 1

	// MaxLarge is the largest size representable by a four byte length prefix.
	MaxLarge = 1<<32 - 1
)

// Bound is the confinement of a collection: the minimum and maximum number of
// items it may hold. The maximum determines the width of the length prefix.
type Bound struct {
	Min uint64
	Max uint64
}

var (
	Tiny   = Bound{0, MaxTiny}
	Small  = Bound{0, MaxSmall}
	Medium = Bound{0, MaxMedium}
	Large  = Bound{0, MaxLarge}
)

// NonEmpty returns a copy of the bound that requires at least one item.
func (b Bound) NonEmpty() Bound {
	if b.Min < 1 {
		b.Min = 1
	}
	return b
}

// WithMax returns a copy of the bound with the given maximum.
func (b Bound) WithMax(max uint64) Bound {
	b.Max = max
	return b
}

// Width returns the number of bytes used to encode a length within the bound:
// the smallest fixed width that can represent Max.
func (b Bound) Width() int {
	switch {
	case b.Max <= MaxTiny:
		return 1
	case b.Max <= MaxSmall:
		return 2
	case b.Max <= MaxMedium:
		return 3
	default:
		return 4
	}
}

// Contains returns true if n is within the bound.
func (b Bound) Contains(n uint64) bool {
	return n >= b.Min && n <= b.Max
}

func (b Bound) String() string {
	return fmt.Sprintf("[%d, %d]", b.Min, b.Max)
}
