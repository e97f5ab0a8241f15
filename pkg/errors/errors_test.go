// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	. "gitlab.com/accumulatenetwork/commitverify/pkg/errors"
)

func TestCodePropagation(t *testing.T) {
	// Wrapping with UnknownError keeps the cause's code
	err := UnknownError.Wrap(NotFound.With("missing"))
	require.Equal(t, NotFound, Code(err))
	require.ErrorIs(t, err, NotFound)
	require.Equal(t, "missing", err.Error())

	// A known code on the outside wins but the cause is still visible
	err = InvalidProof.WithFormat("check: %w", DataIntegrity.With("bad root"))
	require.Equal(t, InvalidProof, Code(err))
	require.ErrorIs(t, err, InvalidProof)
	require.ErrorIs(t, err, DataIntegrity)
	require.Equal(t, "check: bad root", err.Error())

	// Foreign errors become unknown
	err = UnknownError.Wrap(fmt.Errorf("foreign"))
	require.Equal(t, UnknownError, Code(err))
	require.Equal(t, Status(0), Code(fmt.Errorf("foreign")))

	require.NoError(t, BadRequest.Wrap(nil))
}

func TestStatusClasses(t *testing.T) {
	require.True(t, NotFound.IsKnownError())
	require.True(t, BrokenOrder.IsDecodeError())
	require.True(t, DataIntegrity.IsDecodeError())
	require.False(t, Empty.IsDecodeError())
	require.False(t, UnknownError.IsKnownError())

	require.Equal(t, "not found", NotFound.String())
	require.Equal(t, "status 999", Status(999).String())
}

func TestPrint(t *testing.T) {
	err := SizeLimit.WithFormat("vector of %d items", 300)
	require.Equal(t, "vector of 300 items", fmt.Sprintf("%+v", err))
	require.Equal(t, "vector of 300 items", fmt.Sprint(err))

	// Tracking is global, so this runs last
	EnableLocationTracking()
	err = DataIntegrity.WithFormat("check: %w", NotFound.With("missing"))
	s := fmt.Sprintf("%+v", err)
	require.Contains(t, s, "check: \n")
	require.Contains(t, s, "missing\n")
	require.Contains(t, s, "errors_test.TestPrint")
	require.Equal(t, "check: missing", fmt.Sprint(err))
}
