// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/mr-tron/base58"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
)

// readInput reads a file, or stdin if the name is "-".
func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.IOError.WithFormat("read stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.IOError.WithFormat("read %s: %w", name, err)
	}
	return b, nil
}

// formatBytes encodes bytes as hex or, with --base58, as base58.
func formatBytes(b []byte) string {
	if flagMain.Base58 {
		return base58.Encode(b)
	}
	return hex.EncodeToString(b)
}

// parseBytes decodes hex, or base58 with --base58.
func parseBytes(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if flagMain.Base58 {
		b, err := base58.Decode(s)
		if err != nil {
			return nil, errors.BadRequest.WithFormat("parse base58: %w", err)
		}
		return b, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.BadRequest.WithFormat("parse hex: %w", err)
	}
	return b, nil
}

func parse32(s string) ([32]byte, error) {
	var v [32]byte
	b, err := parseBytes(s)
	if err != nil {
		return v, err
	}
	if len(b) != len(v) {
		return v, errors.BadRequest.WithFormat("want 32 bytes, got %d", len(b))
	}
	copy(v[:], b)
	return v, nil
}
