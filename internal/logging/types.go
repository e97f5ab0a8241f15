// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Hex is a byte slice that logs as a hex string.
type Hex []byte

func (h Hex) String() string { return hex.EncodeToString(h) }

func (h Hex) LogValue() slog.Value { return slog.StringValue(h.String()) }

func (h Hex) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// Byter is a value with a byte form.
type Byter interface {
	Bytes() []byte
}

//go:inline
func AsHex(v interface{}) Hex {
	switch v := v.(type) {
	case []byte:
		u := make(Hex, len(v))
		copy(u, v)
		return u
	case [32]byte:
		return Hex(v[:])
	case *[32]byte:
		return Hex(v[:])
	case string:
		return Hex(v)
	case Byter:
		return Hex(v.Bytes())
	case fmt.Stringer:
		return Hex(v.String())
	default:
		return Hex(fmt.Sprint(v))
	}
}
