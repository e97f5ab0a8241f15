// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package commit

import (
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/hash"
)

// Consensus commits to committable values by tagged hashing their commit
// encoding.
type Consensus[T Committable] struct {
	Tag hash.Tag
}

func (s Consensus[T]) TryCommit(v T) (hash.Digest, error) {
	return ConsensusCommit(s.Tag, v)
}

// ConsensusCommit commit encodes v into a hasher keyed with tag and returns
// the digest.
func ConsensusCommit(tag hash.Tag, v Committable) (hash.Digest, error) {
	d, err := ComputeID(tag, v)
	if err != nil {
		return hash.Digest{}, errors.EncodingError.WithFormat("commit encode: %w", err)
	}
	return d, nil
}

// ConsensusVerify returns true if c is the consensus commitment to v.
func ConsensusVerify(tag hash.Tag, c hash.Digest, v Committable) (bool, error) {
	return TryVerify[Committable, hash.Digest](Consensus[Committable]{tag}, c, v)
}

func errSizeLimit(n, max int) error {
	return errors.SizeLimit.WithFormat("message of %d bytes exceeds the limit of %d", n, max)
}
