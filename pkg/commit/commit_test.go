// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package commit_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	. "gitlab.com/accumulatenetwork/commitverify/pkg/commit"
	"gitlab.com/accumulatenetwork/commitverify/pkg/commit/committest"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/encoding"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/hash"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/merkle"
)

var testTag = hash.NewTag("urn:commitverify:test")

type color uint8

func (c color) CommitStrategy() Strategy { return IntoU8(c) }

type name struct{ inner Holder[encoding.String] }

func (n name) CommitStrategy() Strategy { return IntoInner(n.inner) }

type secret struct{ Value encoding.Bytes }

func (s secret) Conceal() hash.Digest { return testTag.Sub("secret").Sum(s.Value) }

func (s secret) CommitStrategy() Strategy { return ConcealStrict[hash.Digest](s) }

type hashed struct{ Value encoding.Bytes }

func (h hashed) CommitStrategy() Strategy { return Hash(testTag, h.Value) }

type document struct{ Body string }

func (d document) CommitmentID() hash.Digest { return hash.Tagged("urn:commitverify:test:document", []byte(d.Body)) }

func (d document) CommitStrategy() Strategy { return ID(d) }

type list []color

func (l list) CommitStrategy() Strategy { return MerklizeSlice(testTag, l) }

func TestStrategyKinds(t *testing.T) {
	cases := []struct {
		Value Committable
		Kind  Kind
	}{
		{AsStrict(encoding.U8(1)), KindStrict},
		{secret{}, KindConcealStrict},
		{color(1), KindIntoU8},
		{name{}, KindIntoInner},
		{hashed{}, KindHash},
		{document{}, KindID},
		{list{}, KindMerklize},
	}
	for _, c := range cases {
		t.Run(c.Kind.String(), func(t *testing.T) {
			require.Equal(t, c.Kind, c.Value.CommitStrategy().Kind())
		})
	}
}

func TestStrict(t *testing.T) {
	b, err := Serialize(AsStrict(encoding.U16(0x0102)))
	require.NoError(t, err)
	require.Equal(t, []byte{0x02, 0x01}, b)
}

func TestIntoU8(t *testing.T) {
	b, err := Serialize(color(7))
	require.NoError(t, err)
	require.Equal(t, []byte{7}, b)
}

func TestIntoInner(t *testing.T) {
	b, err := Serialize(name{AsStrict(encoding.String("bob"))})
	require.NoError(t, err)
	expect, err := encoding.Marshal(encoding.String("bob"))
	require.NoError(t, err)
	require.Equal(t, expect, b)
}

func TestConcealStrict(t *testing.T) {
	s := secret{encoding.Bytes("private")}
	b, err := Serialize(s)
	require.NoError(t, err)
	c := s.Conceal()
	require.Equal(t, c[:], b)
	require.NotContains(t, string(b), "private")
}

func TestHash(t *testing.T) {
	b, err := Serialize(hashed{encoding.Bytes("abc")})
	require.NoError(t, err)
	expect := testTag.Sum([]byte{3, 0, 'a', 'b', 'c'})
	require.Equal(t, expect[:], b)
}

func TestID(t *testing.T) {
	d := document{"hello"}
	b, err := Serialize(d)
	require.NoError(t, err)
	id := d.CommitmentID()
	require.Equal(t, id[:], b)

	// ComputeID hashes the commit encoding with the tag
	tag := hash.NewTag("urn:commitverify:test:color")
	id, err = ComputeID(tag, color(5))
	require.NoError(t, err)
	require.Equal(t, tag.Sum([]byte{5}), id)
}

func TestMerklize(t *testing.T) {
	l := list{1, 2, 3}
	b, err := Serialize(l)
	require.NoError(t, err)

	root := merkle.NewHasher(testTag).Merklize([][]byte{{1}, {2}, {3}})
	require.Equal(t, root[:], b)

	// Order matters
	c, err := Serialize(list{3, 2, 1})
	require.NoError(t, err)
	require.NotEqual(t, b, c)

	// An empty list commits to the empty root
	c, err = Serialize(list{})
	require.NoError(t, err)
	empty := merkle.NewHasher(testTag).Empty()
	require.Equal(t, empty[:], c)
}

func TestEncodeFailure(t *testing.T) {
	big := AsStrict(encoding.Bytes(make([]byte, encoding.MaxSmall+1)))
	_, err := Serialize(big)
	require.ErrorIs(t, err, errors.SizeLimit)

	_, err = Serialize(hashed{encoding.Bytes(make([]byte, encoding.MaxSmall+1))})
	require.ErrorIs(t, err, errors.SizeLimit)

	ok, err := ConsensusVerify(testTag, hash.Digest{}, big)
	require.Error(t, err)
	require.False(t, ok)
}

func TestConsensus(t *testing.T) {
	v := list{4, 5}
	c, err := ConsensusCommit(testTag, v)
	require.NoError(t, err)

	b, err := Serialize(v)
	require.NoError(t, err)
	require.Equal(t, testTag.Sum(b), c)

	ok, err := ConsensusVerify(testTag, c, v)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ConsensusVerify(testTag, c, list{4, 6})
	require.NoError(t, err)
	require.False(t, ok)
}

// maxTestMessage bounds the failable schemes under test. It is larger than
// every message of the standard corpus.
const maxTestMessage = 128

func longestMessage(msgs [][]byte) int {
	var n int
	for _, m := range msgs {
		n = max(n, len(m))
	}
	return n
}

func TestSchemes(t *testing.T) {
	msgs := committest.Messages()
	require.Less(t, longestMessage(msgs), maxTestMessage)
	committest.Run[hash.Digest](t, Tagged{testTag}, msgs)
	committest.Run[hash.Digest](t, Untagged{hash.SHA256}, msgs)
	committest.Run[hash.Digest](t, Untagged{hash.Blake3}, msgs)
	committest.Run[hash.Digest](t, Untagged{hash.SHA3}, msgs)
	committest.RunTry[hash.Digest](t, Bounded{testTag, maxTestMessage}, msgs)

	// The bound is inclusive
	_, err := Bounded{testTag, maxTestMessage}.TryCommit(make([]byte, maxTestMessage))
	require.NoError(t, err)
	_, err = Bounded{testTag, maxTestMessage}.TryCommit(make([]byte, maxTestMessage+1))
	require.ErrorIs(t, err, errors.SizeLimit)

	consensus := Consensus[Holder[encoding.Bytes]]{testTag}
	committest.RunTry[hash.Digest](t, TrySchemeFunc[[]byte, hash.Digest](func(b []byte) (hash.Digest, error) {
		return consensus.TryCommit(AsStrict(encoding.Bytes(b)))
	}), msgs)
}

func TestTryVerifyError(t *testing.T) {
	s := Bounded{testTag, 4}
	ok, err := TryVerify[[]byte, hash.Digest](s, hash.Digest{}, []byte("too long"))
	require.ErrorIs(t, err, errors.SizeLimit)
	require.False(t, ok)
}

// container is a key that a message is committed into by tweaking it.
type container struct {
	Key []byte
}

func (c *container) Clone() *container {
	return &container{Key: bytes.Clone(c.Key)}
}

type tweak struct{}

func (tweak) EmbedCommit(c *container, msg []byte) (hash.Digest, error) {
	if len(msg) > maxTestMessage {
		return hash.Digest{}, errors.SizeLimit.With("message too long")
	}
	d := testTag.Sub("tweak").Sum(c.Key, msg)
	c.Key = d[:]
	return hash.SHA256.Sum(c.Key), nil
}

func TestEmbed(t *testing.T) {
	require.Less(t, longestMessage(committest.Messages()), maxTestMessage)
	orig := &container{Key: []byte("key")}
	committest.RunEmbed[hash.Digest](t, tweak{}, orig, committest.Messages())
	require.Equal(t, []byte("key"), orig.Key)

	c, err := tweak{}.EmbedCommit(orig.Clone(), []byte("msg"))
	require.NoError(t, err)

	ok, err := EmbedVerify[[]byte, hash.Digest](tweak{}, c, orig, []byte("msg"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("key"), orig.Key)

	// A failed re-embedding is a mismatch, not an error
	ok, err = EmbedVerify[[]byte, hash.Digest](tweak{}, c, orig, make([]byte, maxTestMessage+1))
	require.NoError(t, err)
	require.False(t, ok)
}
