// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package mpc

import (
	"slices"

	"gitlab.com/accumulatenetwork/commitverify/pkg/commit"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/encoding"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/merkle"
)

const (
	slotRevealed  = 0x00
	slotConcealed = 0x01
)

var slotsBound = encoding.Bound{Min: 1, Max: MaxMessages}

// BlockSlot is one slot of a block. A revealed slot holds a protocol and its
// message. A concealed slot holds only the leaf hash, which may be an entropy
// leaf or the leaf of a protocol that is not disclosed.
type BlockSlot struct {
	Revealed bool
	Protocol ProtocolID
	Message  Message
	Hash     merkle.Node
}

// Leaf returns the leaf hash of the slot.
func (s *BlockSlot) Leaf() merkle.Node {
	if s.Revealed {
		return inhabitedLeaf(s.Protocol, s.Message)
	}
	return s.Hash
}

func (s BlockSlot) MarshalConfined(w *encoding.Writer) {
	if s.Revealed {
		w.WriteU8(slotRevealed)
		w.WriteValue(s.Protocol)
		w.WriteValue(s.Message)
		return
	}
	w.WriteU8(slotConcealed)
	w.WriteValue(s.Hash)
}

func (s *BlockSlot) UnmarshalConfined(r *encoding.Reader) {
	*s = BlockSlot{}
	tag := r.ReadU8()
	if r.Err() != nil {
		return
	}
	switch tag {
	case slotRevealed:
		s.Revealed = true
		r.ReadValue(&s.Protocol)
		r.ReadValue(&s.Message)
	case slotConcealed:
		r.ReadValue(&s.Hash)
	default:
		r.Fail(errors.BadTag.WithFormat("invalid block slot tag %#02x", tag))
	}
}

// MerkleBlock is a cross section of a tree where each slot is either revealed
// or concealed. It has the same root as the tree it was taken from.
type MerkleBlock struct {
	depth uint8
	slots []BlockSlot
}

// Depth returns the depth of the tree.
func (b *MerkleBlock) Depth() uint8 { return b.depth }

// Width returns the number of slots.
func (b *MerkleBlock) Width() uint32 { return 1 << b.depth }

// Slots returns a copy of the slots.
func (b *MerkleBlock) Slots() []BlockSlot { return slices.Clone(b.slots) }

func (b *MerkleBlock) leaves() []merkle.Node {
	leaves := make([]merkle.Node, len(b.slots))
	for i := range b.slots {
		leaves[i] = b.slots[i].Leaf()
	}
	return leaves
}

// Root returns the root of the block.
func (b *MerkleBlock) Root() Commitment {
	return Commitment(hasher.Root(b.leaves()))
}

// Conceal returns the root.
func (b *MerkleBlock) Conceal() Commitment { return b.Root() }

func (b *MerkleBlock) CommitStrategy() commit.Strategy {
	return commit.ConcealStrict[Commitment](b)
}

func (b *MerkleBlock) find(id ProtocolID) (*BlockSlot, uint32, bool) {
	pos := protocolPos(id, b.Width())
	s := &b.slots[pos]
	if !s.Revealed || s.Protocol != id {
		return nil, pos, false
	}
	return s, pos, true
}

// Message returns the message of a revealed protocol.
func (b *MerkleBlock) Message(id ProtocolID) (Message, bool) {
	s, _, ok := b.find(id)
	if !ok {
		return Message{}, false
	}
	return s.Message, true
}

// Protocols returns the revealed protocols in ascending order.
func (b *MerkleBlock) Protocols() []ProtocolID {
	var ids []ProtocolID
	for _, s := range b.slots {
		if s.Revealed {
			ids = append(ids, s.Protocol)
		}
	}
	slices.SortFunc(ids, ProtocolID.Compare)
	return ids
}

// Proof returns the path from a revealed protocol to the root. It fails with
// [errors.NotFound] if the protocol is not revealed.
func (b *MerkleBlock) Proof(id ProtocolID) (*MerkleProof, error) {
	_, pos, ok := b.find(id)
	if !ok {
		return nil, errors.NotFound.WithFormat("protocol %v is not revealed in the block", id)
	}
	return proveAt(b.leaves(), pos)
}

// ConcealExcept returns a copy of the block where every protocol except the
// given ones is concealed.
func (b *MerkleBlock) ConcealExcept(keep ...ProtocolID) *MerkleBlock {
	c := &MerkleBlock{depth: b.depth, slots: slices.Clone(b.slots)}
	for i := range c.slots {
		s := &c.slots[i]
		if s.Revealed && !slices.Contains(keep, s.Protocol) {
			*s = BlockSlot{Hash: s.Leaf()}
		}
	}
	return c
}

// Merge reveals in b every slot that is revealed in other. Both blocks must
// be cross sections of the same tree; otherwise Merge fails with
// [errors.DataIntegrity] and b is not modified.
func (b *MerkleBlock) Merge(other *MerkleBlock) error {
	if b.depth != other.depth {
		return errors.DataIntegrity.WithFormat("cannot merge blocks of depth %d and %d", b.depth, other.depth)
	}
	for i := range b.slots {
		if b.slots[i].Leaf() != other.slots[i].Leaf() {
			return errors.DataIntegrity.WithFormat("blocks differ at slot %d", i)
		}
	}
	for i := range b.slots {
		if other.slots[i].Revealed {
			b.slots[i] = other.slots[i]
		}
	}
	return nil
}

func (b *MerkleBlock) MarshalConfined(w *encoding.Writer) {
	w.WriteU8(b.depth)
	encoding.WriteList(w, slotsBound, b.slots)
}

// UnmarshalConfined decodes a block. The number of slots must match the depth
// and every revealed protocol must sit at its own position; otherwise decoding
// fails with [errors.DataIntegrity].
func (b *MerkleBlock) UnmarshalConfined(r *encoding.Reader) {
	depth := r.ReadU8()
	if r.Err() != nil {
		return
	}
	if depth > MaxDepth {
		r.Fail(errors.ValueOutOfRange.WithFormat("depth %d exceeds the limit of %d", depth, MaxDepth))
		return
	}
	slots := encoding.ReadList[BlockSlot](r, slotsBound)
	if r.Err() != nil {
		return
	}
	width := uint32(1) << depth
	if uint32(len(slots)) != width {
		r.Fail(errors.DataIntegrity.WithFormat("block of depth %d has %d slots", depth, len(slots)))
		return
	}
	for i, s := range slots {
		if s.Revealed && protocolPos(s.Protocol, width) != uint32(i) {
			r.Fail(errors.DataIntegrity.WithFormat("protocol %v does not belong at slot %d", s.Protocol, i))
			return
		}
	}
	b.depth = depth
	b.slots = slots
}
