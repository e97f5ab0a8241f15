// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package keyvalue_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	. "gitlab.com/accumulatenetwork/commitverify/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
)

func TestKeyBinary(t *testing.T) {
	k := NewKey("tree", [32]byte{1, 2, 3})
	b, err := k.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, 1+4+32)
	require.Equal(t, byte(4), b[0])

	var u Key
	require.NoError(t, u.UnmarshalBinary(b))
	require.Equal(t, k, u)

	require.ErrorIs(t, u.UnmarshalBinary(b[:10]), errors.EncodingError)
	require.ErrorIs(t, u.UnmarshalBinary(nil), errors.EncodingError)

	_, err = NewKey(strings.Repeat("x", 256), [32]byte{}).MarshalBinary()
	require.ErrorIs(t, err, errors.BadRequest)
}

func TestNotFound(t *testing.T) {
	err := NotFound(NewKey("block", [32]byte{}))
	require.ErrorIs(t, err, errors.NotFound)
	require.Contains(t, err.Error(), "block/")
}
