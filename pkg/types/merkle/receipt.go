// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package merkle

import (
	"fmt"
	"strings"

	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/encoding"
)

// Receipt proves that Start is included in the tree whose root is Anchor.
type Receipt struct {
	Start      Node
	StartIndex uint64
	Anchor     Node
	Entries    []*ReceiptEntry
}

// ReceiptEntry is one step of a receipt. If Right is set, Hash is the right
// hand sibling.
type ReceiptEntry struct {
	Hash  Node
	Right bool
}

// A receipt can never be longer than the depth of a tree of MaxLarge leaves.
var entriesBound = encoding.Bound{Max: 64}

func (n *ReceiptEntry) apply(h Hasher, node Node) Node {
	if n.Right {
		// If this hash comes from the right, apply it that way
		return h.Branch(node, n.Hash)
	}
	// If this hash comes from the left, apply it that way
	return h.Branch(n.Hash, node)
}

func (n *ReceiptEntry) Copy() *ReceiptEntry {
	m := *n
	return &m
}

func (n ReceiptEntry) MarshalConfined(w *encoding.Writer) {
	w.WriteRaw(n.Hash[:])
	w.WriteBool(n.Right)
}

func (n *ReceiptEntry) UnmarshalConfined(r *encoding.Reader) {
	r.ReadInto(n.Hash[:])
	n.Right = r.ReadBool()
}

// Evaluate applies the entries to Start and returns the resulting root.
func (r *Receipt) Evaluate(h Hasher) Node {
	node := r.Start
	for _, e := range r.Entries {
		node = e.apply(h, node)
	}
	return node
}

// Validate takes a receipt and validates that the start hash progresses to
// the anchor.
func (r *Receipt) Validate(h Hasher) bool {
	return r.Evaluate(h) == r.Anchor
}

// Contains returns true if the 2nd receipt is equal to or contained within the
// first.
func (r *Receipt) Contains(h Hasher, other *Receipt) bool {
	hashSelf, hashOther := r.Start, other.Start
	var posSelf int
	for hashSelf != hashOther {
		if posSelf >= len(r.Entries) {
			return false
		}
		hashSelf = r.Entries[posSelf].apply(h, hashSelf)
		posSelf++
	}

	for _, entry := range other.Entries {
		if posSelf >= len(r.Entries) {
			return false
		}

		hashSelf = r.Entries[posSelf].apply(h, hashSelf)
		hashOther = entry.apply(h, hashOther)
		posSelf++
		if hashSelf != hashOther {
			return false
		}
	}

	return true
}

func (r *Receipt) Copy() *Receipt {
	s := *r
	s.Entries = make([]*ReceiptEntry, len(r.Entries))
	for i, e := range r.Entries {
		s.Entries[i] = e.Copy()
	}
	return &s
}

// Combine attaches a second receipt to this one. If this receipt's anchor is
// a leaf of another tree, the result proves the start of this receipt all the
// way to the anchor of the other. Both receipts are expected to be valid.
func (r *Receipt) Combine(rm *Receipt) (*Receipt, error) {
	if r.Anchor != rm.Start {
		return nil, errors.BadRequest.WithFormat("receipts cannot be combined: anchor %v doesn't match start %v", r.Anchor, rm.Start)
	}
	nr := r.Copy()
	nr.Anchor = rm.Anchor
	for _, n := range rm.Entries {
		nr.Entries = append(nr.Entries, n.Copy())
	}
	return nr, nil
}

// CombineReceipts combines multiple receipts.
func CombineReceipts(receipts ...*Receipt) (*Receipt, error) {
	if len(receipts) == 0 {
		return nil, errors.BadRequest.With("no receipts")
	}
	r := receipts[0]
	var err error
	for _, s := range receipts[1:] {
		r, err = r.Combine(s)
		if err != nil {
			return nil, errors.UnknownError.WithFormat("combine receipts: %w", err)
		}
	}

	return r, nil
}

func (r Receipt) MarshalConfined(w *encoding.Writer) {
	w.WriteRaw(r.Start[:])
	w.WriteU64(r.StartIndex)
	w.WriteRaw(r.Anchor[:])
	w.WriteLen(entriesBound, len(r.Entries))
	for _, e := range r.Entries {
		e.MarshalConfined(w)
	}
}

func (r *Receipt) UnmarshalConfined(rd *encoding.Reader) {
	rd.ReadInto(r.Start[:])
	r.StartIndex = rd.ReadU64()
	rd.ReadInto(r.Anchor[:])
	entries := encoding.ReadList[ReceiptEntry](rd, entriesBound)
	r.Entries = make([]*ReceiptEntry, len(entries))
	for i := range entries {
		r.Entries[i] = &entries[i]
	}
}

func (r *Receipt) String() string {
	var s strings.Builder
	fmt.Fprintf(&s, "start  %v (index %d)\n", r.Start, r.StartIndex)
	for i, e := range r.Entries {
		side := "left "
		if e.Right {
			side = "right"
		}
		fmt.Fprintf(&s, "%3d %s %v\n", i, side, e.Hash)
	}
	fmt.Fprintf(&s, "anchor %v\n", r.Anchor)
	return s.String()
}
