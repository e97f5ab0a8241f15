// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package mpc implements LNPBP-4 multi-protocol commitments: a Merkle tree
// that commits to one message per protocol under a single root.
//
// Each protocol occupies the slot given by its id modulo the width of the
// tree. The tree deepens until no two protocols share a slot. Slots without a
// protocol hold a leaf derived from random entropy, so the root reveals
// nothing about how many protocols the tree holds.
package mpc

import (
	"log/slog"
	"slices"

	"gitlab.com/accumulatenetwork/commitverify/pkg/commit"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/encoding"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/merkle"
	"golang.org/x/exp/maps"
)

// MerkleTree is a fully revealed multi-protocol commitment tree. It cannot be
// modified after it is constructed.
type MerkleTree struct {
	depth    uint8
	entropy  uint64
	messages map[ProtocolID]Message
	slots    map[uint32]ProtocolID
}

// Commit places the messages of src into a new tree. Construction either
// succeeds completely or fails with [errors.Empty], [errors.TooManyMessages],
// [errors.CantFitInMaxSlots] or [errors.BadRequest].
func Commit(src *MultiSource, opts ...Option) (*MerkleTree, error) {
	o := options{
		entropy:  cryptoEntropy{},
		maxDepth: MaxDepth,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	switch {
	case o.maxDepth > MaxDepth:
		return nil, errors.BadRequest.WithFormat("maximum depth %d exceeds the limit of %d", o.maxDepth, MaxDepth)
	case src.MinDepth > o.maxDepth:
		return nil, errors.BadRequest.WithFormat("minimum depth %d exceeds the maximum depth %d", src.MinDepth, o.maxDepth)
	case src.MinDepth == 0 && len(src.Messages) == 0:
		return nil, errors.Empty.With("no messages to commit to and the minimum depth is zero")
	case len(src.Messages) > MaxMessages:
		return nil, errors.TooManyMessages.WithFormat("%d messages exceeds the limit of %d", len(src.Messages), MaxMessages)
	}

	depth, slots, ok := place(src.Messages, src.MinDepth, o.maxDepth)
	if !ok {
		return nil, errors.CantFitInMaxSlots.WithFormat("%d messages cannot be placed in a tree of depth %d or less", len(src.Messages), o.maxDepth)
	}
	if depth > src.MinDepth {
		o.logger.Debug("Deepened tree to avoid collisions", "module", "mpc", "min-depth", src.MinDepth, "depth", depth, "messages", len(src.Messages))
	}

	t := new(MerkleTree)
	t.depth = depth
	t.entropy = o.entropy.Uint64()
	t.messages = maps.Clone(src.Messages)
	if t.messages == nil {
		t.messages = map[ProtocolID]Message{}
	}
	t.slots = slots
	return t, nil
}

// place finds the least depth at or above min where no two protocols share a
// position. Each depth is tried with a fresh placement.
func place(messages map[ProtocolID]Message, min, max uint8) (uint8, map[uint32]ProtocolID, bool) {
	for depth := min; depth <= max; depth++ {
		width := uint32(1) << depth
		if uint32(len(messages)) > width {
			continue
		}
		slots, ok := placeAt(messages, width)
		if ok {
			return depth, slots, true
		}
	}
	return 0, nil, false
}

func placeAt(messages map[ProtocolID]Message, width uint32) (map[uint32]ProtocolID, bool) {
	slots := make(map[uint32]ProtocolID, len(messages))
	for id := range messages {
		pos := protocolPos(id, width)
		if _, ok := slots[pos]; ok {
			return nil, false
		}
		slots[pos] = id
	}
	return slots, true
}

// Depth returns the depth of the tree.
func (t *MerkleTree) Depth() uint8 { return t.depth }

// Width returns the number of slots in the tree.
func (t *MerkleTree) Width() uint32 { return 1 << t.depth }

// Entropy returns the entropy used for unused slots.
func (t *MerkleTree) Entropy() uint64 { return t.entropy }

// Len returns the number of messages in the tree.
func (t *MerkleTree) Len() int { return len(t.messages) }

// ProtocolPos returns the position a protocol has in this tree, whether or not
// the tree holds a message for it.
func (t *MerkleTree) ProtocolPos(id ProtocolID) uint32 {
	return protocolPos(id, t.Width())
}

// Message returns the message of a protocol.
func (t *MerkleTree) Message(id ProtocolID) (Message, bool) {
	msg, ok := t.messages[id]
	return msg, ok
}

// Protocols returns the protocols of the tree in ascending order.
func (t *MerkleTree) Protocols() []ProtocolID {
	ids := maps.Keys(t.messages)
	slices.SortFunc(ids, ProtocolID.Compare)
	return ids
}

// Leaves returns the leaf hashes of every slot.
func (t *MerkleTree) Leaves() []merkle.Node {
	leaves := make([]merkle.Node, t.Width())
	for pos := range leaves {
		id, ok := t.slots[uint32(pos)]
		if ok {
			leaves[pos] = inhabitedLeaf(id, t.messages[id])
		} else {
			leaves[pos] = entropyLeaf(t.entropy, uint32(pos))
		}
	}
	return leaves
}

// Root returns the root of the tree.
func (t *MerkleTree) Root() Commitment {
	return Commitment(hasher.Root(t.Leaves()))
}

// Conceal returns the root. The tree is the revealed form of the commitment.
func (t *MerkleTree) Conceal() Commitment { return t.Root() }

func (t *MerkleTree) CommitStrategy() commit.Strategy {
	return commit.ConcealStrict[Commitment](t)
}

// Proof returns the path from the leaf of a protocol to the root. It fails
// with [errors.NotFound] if the tree has no message for the protocol.
func (t *MerkleTree) Proof(id ProtocolID) (*MerkleProof, error) {
	if _, ok := t.messages[id]; !ok {
		return nil, errors.NotFound.WithFormat("protocol %v is not in the tree", id)
	}
	return proveAt(t.Leaves(), t.ProtocolPos(id))
}

// Block returns a cross section of the tree that reveals the given protocols
// and conceals every other slot. With no arguments every protocol is
// revealed.
func (t *MerkleTree) Block(reveal ...ProtocolID) (*MerkleBlock, error) {
	show := make(map[ProtocolID]bool, len(reveal))
	for _, id := range reveal {
		if _, ok := t.messages[id]; !ok {
			return nil, errors.NotFound.WithFormat("protocol %v is not in the tree", id)
		}
		show[id] = true
	}

	b := &MerkleBlock{depth: t.depth, slots: make([]BlockSlot, t.Width())}
	for pos := range b.slots {
		id, ok := t.slots[uint32(pos)]
		switch {
		case !ok:
			b.slots[pos] = BlockSlot{Hash: entropyLeaf(t.entropy, uint32(pos))}
		case len(reveal) == 0 || show[id]:
			b.slots[pos] = BlockSlot{Revealed: true, Protocol: id, Message: t.messages[id]}
		default:
			b.slots[pos] = BlockSlot{Hash: inhabitedLeaf(id, t.messages[id])}
		}
	}
	return b, nil
}

func (t *MerkleTree) MarshalConfined(w *encoding.Writer) {
	w.WriteU8(t.depth)
	w.WriteU64(t.entropy)
	encoding.WriteMap(w, messagesBound, t.messages)
}

// UnmarshalConfined decodes a tree and places its messages. A tree whose
// messages collide at its depth fails with [errors.DataIntegrity].
func (t *MerkleTree) UnmarshalConfined(r *encoding.Reader) {
	depth := r.ReadU8()
	entropy := r.ReadU64()
	messages := encoding.ReadMap[ProtocolID, Message](r, messagesBound)
	if r.Err() != nil {
		return
	}
	if depth > MaxDepth {
		r.Fail(errors.ValueOutOfRange.WithFormat("depth %d exceeds the limit of %d", depth, MaxDepth))
		return
	}
	if depth == 0 && len(messages) == 0 {
		r.Fail(errors.DataIntegrity.With("tree has no messages and no depth"))
		return
	}
	slots, ok := placeAt(messages, 1<<depth)
	if !ok {
		r.Fail(errors.DataIntegrity.WithFormat("messages collide in a tree of depth %d", depth))
		return
	}
	t.depth = depth
	t.entropy = entropy
	t.messages = messages
	t.slots = slots
}
