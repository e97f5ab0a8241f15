// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package merkle builds tagged binary Merkle trees over ordered leaves.
//
// Branches are the tagged hash of the concatenation of their children. Leaves
// are hashed with a separate "<tag>:leaf" tag so a leaf can never be confused
// with a branch. When a level has an odd number of nodes, the last node is
// passed through to the next level unchanged. Root computation and receipt
// validation both follow this rule.
package merkle

import (
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/hash"
)

// Node is a Merkle tree node.
type Node = hash.Digest

// Hasher computes the nodes of a tree for one merklization purpose.
type Hasher struct {
	branch hash.Tag
	leaf   hash.Tag
}

// NewHasher returns a hasher that uses tag for branches and "<tag>:leaf" for
// leaves.
func NewHasher(tag hash.Tag) Hasher {
	return Hasher{branch: tag, leaf: tag.Sub("leaf")}
}

// Tag returns the branch tag.
func (h Hasher) Tag() hash.Tag { return h.branch }

// Leaf hashes leaf data.
func (h Hasher) Leaf(data ...[]byte) Node {
	return h.leaf.Sum(data...)
}

// Branch combines two child nodes.
func (h Hasher) Branch(left, right Node) Node {
	return h.branch.Sum(left[:], right[:])
}

// Empty returns the root of a tree with no leaves.
func (h Hasher) Empty() Node {
	return h.branch.Sum()
}

// Merklize hashes each leaf and returns the root of the tree.
func (h Hasher) Merklize(leaves [][]byte) Node {
	nodes := make([]Node, len(leaves))
	for i, l := range leaves {
		nodes[i] = h.Leaf(l)
	}
	return h.Root(nodes)
}

// Root returns the root of a tree whose bottom level is nodes. nodes is not
// modified.
func (h Hasher) Root(nodes []Node) Node {
	switch len(nodes) {
	case 0:
		return h.Empty()
	case 1:
		return nodes[0]
	}

	level := make([]Node, len(nodes))
	copy(level, nodes)
	for len(level) > 1 {
		level = h.next(level)
	}
	return level[0]
}

// next computes the level above, reusing the storage of level.
func (h Hasher) next(level []Node) []Node {
	n := 0
	for i := 0; i < len(level); i += 2 {
		if i+1 == len(level) {
			// Pass through
			level[n] = level[i]
		} else {
			level[n] = h.Branch(level[i], level[i+1])
		}
		n++
	}
	return level[:n]
}

// Prove returns a receipt proving that nodes[index] is included in the root
// of nodes.
func (h Hasher) Prove(nodes []Node, index int) (*Receipt, error) {
	if index < 0 || index >= len(nodes) {
		return nil, errors.NotFound.WithFormat("index %d is outside the tree of %d nodes", index, len(nodes))
	}

	r := new(Receipt)
	r.Start = nodes[index]
	r.StartIndex = uint64(index)

	level := make([]Node, len(nodes))
	copy(level, nodes)
	i := index
	for len(level) > 1 {
		switch {
		case i&1 == 1:
			r.Entries = append(r.Entries, &ReceiptEntry{Hash: level[i-1], Right: false})
		case i+1 < len(level):
			r.Entries = append(r.Entries, &ReceiptEntry{Hash: level[i+1], Right: true})
		}
		level = h.next(level)
		i /= 2
	}
	r.Anchor = level[0]
	return r, nil
}
