// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package mpc

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"

	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/encoding"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/hash"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/merkle"
)

const (
	// MaxDepth is the greatest depth of a tree.
	MaxDepth = 16

	// MaxMessages is the greatest number of messages a tree can hold.
	MaxMessages = 1 << MaxDepth

	// TreeTag tags the branches of the tree. Leaves use "<TreeTag>:leaf".
	TreeTag = "urn:lnpbp:lnpbp0004:tree:v01#23A"
)

const (
	leafInhabited = 0x00
	leafEntropy   = 0x01
)

var hasher = merkle.NewHasher(hash.NewTag(TreeTag))

var messagesBound = encoding.Bound{Max: MaxMessages}

// ProtocolID identifies an independent commitment namespace.
type ProtocolID [32]byte

// Message is the commitment of one protocol.
type Message [32]byte

// Commitment is the root of a tree.
type Commitment [32]byte

// MultiSource is the input to [Commit]: one message per protocol and the
// minimum depth of the tree.
type MultiSource struct {
	MinDepth uint8
	Messages map[ProtocolID]Message
}

// protocolPos returns the position of a protocol in a tree of the given width.
// The id is a little-endian integer and width is a power of two no larger
// than 2^32, so the low four bytes determine the remainder.
func protocolPos(id ProtocolID, width uint32) uint32 {
	return binary.LittleEndian.Uint32(id[:4]) % width
}

func inhabitedLeaf(protocol ProtocolID, msg Message) merkle.Node {
	return hasher.Leaf([]byte{leafInhabited}, protocol[:], msg[:])
}

func entropyLeaf(entropy uint64, pos uint32) merkle.Node {
	var b [11]byte
	b[0] = leafEntropy
	binary.LittleEndian.PutUint64(b[1:], entropy)
	binary.LittleEndian.PutUint16(b[9:], uint16(pos))
	return hasher.Leaf(b[:])
}

func (v ProtocolID) String() string { return hex.EncodeToString(v[:]) }
func (v Message) String() string    { return hex.EncodeToString(v[:]) }
func (v Commitment) String() string { return hex.EncodeToString(v[:]) }

func (v ProtocolID) Compare(u ProtocolID) int { return bytes.Compare(v[:], u[:]) }
func (v Message) Compare(u Message) int       { return bytes.Compare(v[:], u[:]) }
func (v Commitment) Compare(u Commitment) int { return bytes.Compare(v[:], u[:]) }

func (v ProtocolID) MarshalConfined(w *encoding.Writer) { w.WriteRaw(v[:]) }
func (v Message) MarshalConfined(w *encoding.Writer)    { w.WriteRaw(v[:]) }
func (v Commitment) MarshalConfined(w *encoding.Writer) { w.WriteRaw(v[:]) }

func (v *ProtocolID) UnmarshalConfined(r *encoding.Reader) { r.ReadInto(v[:]) }
func (v *Message) UnmarshalConfined(r *encoding.Reader)    { r.ReadInto(v[:]) }
func (v *Commitment) UnmarshalConfined(r *encoding.Reader) { r.ReadInto(v[:]) }

func (v ProtocolID) MarshalText() ([]byte, error) { return []byte(v.String()), nil }
func (v Message) MarshalText() ([]byte, error)    { return []byte(v.String()), nil }
func (v Commitment) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *ProtocolID) UnmarshalText(b []byte) error { return parse32(v[:], b) }
func (v *Message) UnmarshalText(b []byte) error    { return parse32(v[:], b) }
func (v *Commitment) UnmarshalText(b []byte) error { return parse32(v[:], b) }

// ParseProtocolID parses a hex-encoded protocol id.
func ParseProtocolID(s string) (ProtocolID, error) {
	var v ProtocolID
	err := v.UnmarshalText([]byte(s))
	return v, err
}

// ParseMessage parses a hex-encoded message.
func ParseMessage(s string) (Message, error) {
	var v Message
	err := v.UnmarshalText([]byte(s))
	return v, err
}

// ParseCommitment parses a hex-encoded commitment.
func ParseCommitment(s string) (Commitment, error) {
	var v Commitment
	err := v.UnmarshalText([]byte(s))
	return v, err
}

func parse32(v, s []byte) error {
	b := make([]byte, hex.DecodedLen(len(s)))
	n, err := hex.Decode(b, s)
	if err != nil {
		return errors.BadRequest.WithFormat("parse hex: %w", err)
	}
	if n != len(v) {
		return errors.BadRequest.WithFormat("want %d bytes, got %d", len(v), n)
	}
	copy(v, b)
	return nil
}
