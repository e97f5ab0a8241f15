// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package mpc

import (
	"slices"

	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/encoding"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/merkle"
)

var pathBound = encoding.Bound{Max: MaxDepth}

// MerkleProof is the path from one protocol's leaf to the root. It reveals
// the sibling hashes along the path and nothing else. The side of each
// sibling follows from the bits of the position.
type MerkleProof struct {
	pos  uint32
	path []merkle.Node
}

func proveAt(leaves []merkle.Node, pos uint32) (*MerkleProof, error) {
	r, err := hasher.Prove(leaves, int(pos))
	if err != nil {
		return nil, errors.InternalError.Wrap(err)
	}
	p := &MerkleProof{pos: pos, path: make([]merkle.Node, len(r.Entries))}
	for i, e := range r.Entries {
		p.path[i] = e.Hash
	}
	return p, nil
}

// Pos returns the position of the leaf.
func (p *MerkleProof) Pos() uint32 { return p.pos }

// Depth returns the depth of the tree the proof was taken from.
func (p *MerkleProof) Depth() uint8 { return uint8(len(p.path)) }

// Width returns the width of the tree the proof was taken from.
func (p *MerkleProof) Width() uint32 { return 1 << len(p.path) }

// Path returns the sibling hashes from the leaf up.
func (p *MerkleProof) Path() []merkle.Node { return slices.Clone(p.path) }

// Receipt returns the proof as a receipt that starts at the leaf of the
// message.
func (p *MerkleProof) Receipt(protocol ProtocolID, msg Message) *merkle.Receipt {
	r := new(merkle.Receipt)
	r.Start = inhabitedLeaf(protocol, msg)
	r.StartIndex = uint64(p.pos)
	r.Entries = make([]*merkle.ReceiptEntry, len(p.path))
	for i, h := range p.path {
		// A left child has a right sibling
		right := (p.pos>>i)&1 == 0
		r.Entries[i] = &merkle.ReceiptEntry{Hash: h, Right: right}
	}
	r.Anchor = r.Evaluate(hasher)
	return r
}

// Convolve computes the root of the tree that has msg at the protocol's
// position. It fails with [errors.InvalidProof] if the protocol does not
// belong at the position of the proof.
func (p *MerkleProof) Convolve(protocol ProtocolID, msg Message) (Commitment, error) {
	if pos := protocolPos(protocol, p.Width()); pos != p.pos {
		return Commitment{}, errors.InvalidProof.WithFormat("protocol %v is at position %d, not %d", protocol, pos, p.pos)
	}
	return Commitment(p.Receipt(protocol, msg).Anchor), nil
}

// Verify returns true if the proof shows that c commits to msg for the
// protocol. An error means the proof does not apply to the protocol.
func (p *MerkleProof) Verify(protocol ProtocolID, msg Message, c Commitment) (bool, error) {
	root, err := p.Convolve(protocol, msg)
	if err != nil {
		return false, err
	}
	return root == c, nil
}

func (p *MerkleProof) MarshalConfined(w *encoding.Writer) {
	w.WriteU16(uint16(p.pos))
	encoding.WriteList(w, pathBound, p.path)
}

func (p *MerkleProof) UnmarshalConfined(r *encoding.Reader) {
	pos := r.ReadU16()
	path := encoding.ReadList[merkle.Node](r, pathBound)
	if r.Err() != nil {
		return
	}
	if uint32(pos) >= 1<<len(path) {
		r.Fail(errors.DataIntegrity.WithFormat("position %d is outside a tree of depth %d", pos, len(path)))
		return
	}
	p.pos = uint32(pos)
	p.path = path
}
