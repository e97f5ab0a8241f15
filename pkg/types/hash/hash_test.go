// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package hash_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/encoding"
	. "gitlab.com/accumulatenetwork/commitverify/pkg/types/hash"
	"gopkg.in/yaml.v3"
)

type taggedCase struct {
	Engine  Engine `yaml:"engine"`
	Tag     string `yaml:"tag"`
	Message string `yaml:"message"`
	Digest  Digest `yaml:"digest"`
}

func TestTaggedVectors(t *testing.T) {
	b, err := os.ReadFile("testdata/tagged.yaml")
	require.NoError(t, err)

	var cases []*taggedCase
	require.NoError(t, yaml.Unmarshal(b, &cases))
	require.NotEmpty(t, cases)

	for _, c := range cases {
		t.Run(fmt.Sprintf("%v/%s/%q", c.Engine, c.Tag, c.Message), func(t *testing.T) {
			tag := c.Engine.NewTag(c.Tag)
			require.Equal(t, c.Digest, tag.Sum([]byte(c.Message)))
		})
	}
}

func TestBlake3(t *testing.T) {
	d, err := ParseDigest("af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262")
	require.NoError(t, err)
	require.Equal(t, d, Blake3.Sum())
}

func TestEnginesDiffer(t *testing.T) {
	msg := []byte("message")
	a := SHA256.NewTag("urn:test").Sum(msg)
	b := Blake3.NewTag("urn:test").Sum(msg)
	c := SHA3.NewTag("urn:test").Sum(msg)
	require.NotEqual(t, a, b)
	require.NotEqual(t, a, c)
	require.NotEqual(t, b, c)
}

func TestTagsSeparateDomains(t *testing.T) {
	msg := []byte("message")
	require.NotEqual(t, Tagged("urn:a", msg), Tagged("urn:b", msg))
	require.NotEqual(t, SHA256.Sum(msg), Tagged("", msg))

	tag := NewTag("urn:a")
	require.Equal(t, "urn:a:leaf", tag.Sub("leaf").Name())
	require.NotEqual(t, tag.Sum(msg), tag.Sub("leaf").Sum(msg))
}

func TestSumConcatenates(t *testing.T) {
	tag := NewTag("urn:test")
	require.Equal(t, tag.Sum([]byte("abcdef")), tag.Sum([]byte("abc"), []byte("def")))

	h := tag.New()
	_, _ = h.Write([]byte("abc"))
	_, _ = h.Write([]byte("def"))
	var d Digest
	copy(d[:], h.Sum(nil))
	require.Equal(t, tag.Sum([]byte("abcdef")), d)
}

func TestParseDigest(t *testing.T) {
	d := SHA256.Sum([]byte("abc"))
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", d.String())

	e, err := ParseDigest(d.String())
	require.NoError(t, err)
	require.Equal(t, d, e)

	e, err = ParseDigestBase58(d.Base58())
	require.NoError(t, err)
	require.Equal(t, d, e)

	_, err = ParseDigest("abcd")
	require.ErrorIs(t, err, errors.BadRequest)
	_, err = ParseDigest("zz")
	require.ErrorIs(t, err, errors.BadRequest)
}

func TestDigestEncoding(t *testing.T) {
	d := SHA256.Sum([]byte("abc"))
	b, err := encoding.Marshal(d)
	require.NoError(t, err)
	require.Equal(t, d[:], b)

	var e Digest
	require.NoError(t, encoding.Unmarshal(b, &e))
	require.Equal(t, d, e)
	require.False(t, e.IsZero())
	require.True(t, Digest{}.IsZero())
	require.Equal(t, 0, d.Compare(e))
}

func TestParseEngine(t *testing.T) {
	for s, e := range map[string]Engine{"sha256": SHA256, "SHA256": SHA256, "": SHA256, "blake3": Blake3, "sha3": SHA3, "sha3-256": SHA3} {
		v, err := ParseEngine(s)
		require.NoError(t, err, s)
		require.Equal(t, e, v, s)
	}
	_, err := ParseEngine("md5")
	require.ErrorIs(t, err, errors.BadRequest)
}
