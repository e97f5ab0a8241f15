// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package witness archives multi-protocol commitment trees and blocks so that
// proofs can be extracted after the tree has left memory.
package witness

import (
	"log/slog"
	"slices"

	"gitlab.com/accumulatenetwork/commitverify/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	"gitlab.com/accumulatenetwork/commitverify/pkg/mpc"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/encoding"
)

const (
	bucketTree  = "tree"
	bucketBlock = "block"
)

// Archive stores trees and blocks keyed by their commitment.
type Archive struct {
	db     keyvalue.Beginner
	logger *slog.Logger
}

// New returns an archive backed by db. A nil logger uses slog.Default().
func New(db keyvalue.Beginner, logger *slog.Logger) *Archive {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archive{db: db, logger: logger.With("module", "witness")}
}

// PutTree stores a fully revealed tree and returns its commitment.
func (a *Archive) PutTree(tree *mpc.MerkleTree) (mpc.Commitment, error) {
	root := tree.Root()
	b, err := encoding.Marshal(tree)
	if err != nil {
		return root, errors.EncodingError.WithFormat("encode tree: %w", err)
	}

	batch := a.db.Begin(true)
	defer batch.Discard()
	err = batch.Put(keyvalue.NewKey(bucketTree, root), b)
	if err != nil {
		return root, errors.UnknownError.WithFormat("store tree: %w", err)
	}
	err = batch.Commit()
	if err != nil {
		return root, errors.UnknownError.WithFormat("store tree: %w", err)
	}

	a.logger.Debug("Stored tree", "commitment", root, "depth", tree.Depth(), "messages", tree.Len())
	return root, nil
}

// PutBlock stores a block. If a block with the same commitment is already
// stored, the two are merged so that every protocol revealed in either is
// revealed in the result.
func (a *Archive) PutBlock(block *mpc.MerkleBlock) (mpc.Commitment, error) {
	root := block.Root()

	batch := a.db.Begin(true)
	defer batch.Discard()

	key := keyvalue.NewKey(bucketBlock, root)
	existing, err := loadBlock(batch, root)
	switch {
	case err == nil:
		merged := existing.ConcealExcept(existing.Protocols()...)
		err = merged.Merge(block)
		if err != nil {
			return root, errors.InternalError.WithFormat("merge block: %w", err)
		}
		block = merged
	case !errors.Is(err, errors.NotFound):
		return root, err
	}

	b, err := encoding.Marshal(block)
	if err != nil {
		return root, errors.EncodingError.WithFormat("encode block: %w", err)
	}
	err = batch.Put(key, b)
	if err != nil {
		return root, errors.UnknownError.WithFormat("store block: %w", err)
	}
	err = batch.Commit()
	if err != nil {
		return root, errors.UnknownError.WithFormat("store block: %w", err)
	}

	a.logger.Debug("Stored block", "commitment", root, "revealed", len(block.Protocols()))
	return root, nil
}

// Tree loads a tree. It fails with [errors.NotFound] if no tree is stored
// for the commitment.
func (a *Archive) Tree(c mpc.Commitment) (*mpc.MerkleTree, error) {
	batch := a.db.Begin(false)
	defer batch.Discard()
	return loadTree(batch, c)
}

// Block loads a block. If only a tree is stored, the block reveals every
// protocol of the tree.
func (a *Archive) Block(c mpc.Commitment) (*mpc.MerkleBlock, error) {
	batch := a.db.Begin(false)
	defer batch.Discard()

	block, err := loadBlock(batch, c)
	if !errors.Is(err, errors.NotFound) {
		return block, err
	}

	tree, err := loadTree(batch, c)
	if err != nil {
		return nil, err
	}
	return tree.Block()
}

// Proof extracts the proof of a protocol from a stored tree or block.
func (a *Archive) Proof(c mpc.Commitment, protocol mpc.ProtocolID) (*mpc.MerkleProof, mpc.Message, error) {
	block, err := a.Block(c)
	if err != nil {
		return nil, mpc.Message{}, err
	}
	proof, err := block.Proof(protocol)
	if err != nil {
		return nil, mpc.Message{}, err
	}
	msg, _ := block.Message(protocol)
	return proof, msg, nil
}

// Delete removes the tree and block stored for a commitment.
func (a *Archive) Delete(c mpc.Commitment) error {
	batch := a.db.Begin(true)
	defer batch.Discard()
	for _, bucket := range []string{bucketTree, bucketBlock} {
		err := batch.Delete(keyvalue.NewKey(bucket, c))
		if err != nil {
			return errors.UnknownError.Wrap(err)
		}
	}
	return batch.Commit()
}

// Commitments returns every stored commitment in ascending order.
func (a *Archive) Commitments() ([]mpc.Commitment, error) {
	batch := a.db.Begin(false)
	defer batch.Discard()

	var list []mpc.Commitment
	err := batch.ForEach(func(key keyvalue.Key, _ []byte) error {
		if key.Bucket == bucketTree || key.Bucket == bucketBlock {
			list = append(list, key.ID)
		}
		return nil
	})
	if err != nil {
		return nil, errors.UnknownError.Wrap(err)
	}
	slices.SortFunc(list, mpc.Commitment.Compare)
	return slices.Compact(list), nil
}

func loadTree(s keyvalue.Store, c mpc.Commitment) (*mpc.MerkleTree, error) {
	tree := new(mpc.MerkleTree)
	err := load(s, keyvalue.NewKey(bucketTree, c), tree)
	if err != nil {
		return nil, err
	}
	if tree.Root() != c {
		return nil, errors.DataIntegrity.WithFormat("stored tree %v has root %v", c, tree.Root())
	}
	return tree, nil
}

func loadBlock(s keyvalue.Store, c mpc.Commitment) (*mpc.MerkleBlock, error) {
	block := new(mpc.MerkleBlock)
	err := load(s, keyvalue.NewKey(bucketBlock, c), block)
	if err != nil {
		return nil, err
	}
	if block.Root() != c {
		return nil, errors.DataIntegrity.WithFormat("stored block %v has root %v", c, block.Root())
	}
	return block, nil
}

func load(s keyvalue.Store, key keyvalue.Key, v encoding.Unmarshaler) error {
	b, err := s.Get(key)
	if err != nil {
		return err
	}
	err = encoding.Unmarshal(b, v)
	if err != nil {
		return errors.DataIntegrity.WithFormat("decode %v: %w", key, err)
	}
	return nil
}
