// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	"gitlab.com/accumulatenetwork/commitverify/pkg/mpc"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/hash"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Flags keep their values between executions
	flagMain = struct {
		Config   string
		LogLevel string
		NoColor  bool
		Base58   bool
	}{}
	flagCommit = struct {
		Tag    string
		Engine string
		Max    int
	}{}
	flagMpc = struct {
		Out     string
		File    string
		Entropy string
	}{}
	flagVersion = struct {
		VersionOnly  bool
		KnownVersion bool
	}{}

	out := new(bytes.Buffer)
	cmdMain.SetOut(out)
	cmdMain.SetErr(out)
	cmdMain.SetArgs(append([]string{"--no-color"}, args...))
	err := cmdMain.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(file, []byte(content), 0600))
	return file
}

func TestCommitAndVerify(t *testing.T) {
	file := writeFile(t, "msg.txt", "hello")

	out, err := run(t, "commit", "--tag", "urn:test", file)
	require.NoError(t, err)
	c := hash.NewTag("urn:test").Sum([]byte("hello"))
	require.Equal(t, c.String()+"\n", out)

	out, err = run(t, "verify", "--tag", "urn:test", c.String(), file)
	require.NoError(t, err)
	require.Contains(t, out, "Commitment matches")

	out, err = run(t, "verify", "--tag", "urn:other", c.String(), file)
	require.ErrorIs(t, err, errors.InvalidProof)
	require.Contains(t, out, "does not match")

	out, err = run(t, "commit", "--base58", "--engine", "blake3", file)
	require.NoError(t, err)
	require.Equal(t, hash.Blake3.Sum([]byte("hello")).Base58()+"\n", out)

	_, err = run(t, "commit", "--tag", "urn:test", "--max", "4", file)
	require.ErrorIs(t, err, errors.SizeLimit)
}

func writeMessageSet(t *testing.T, n int) (string, *mpc.MultiSource) {
	src := &mpc.MultiSource{MinDepth: 2, Messages: map[mpc.ProtocolID]mpc.Message{}}
	var b strings.Builder
	b.WriteString("min-depth: 2\nmessages:\n")
	for i := 0; i < n; i++ {
		id := mpc.ProtocolID(sha256.Sum256([]byte(fmt.Sprint("protocol ", i))))
		msg := mpc.Message(sha256.Sum256([]byte(fmt.Sprint(i))))
		src.Messages[id] = msg
		fmt.Fprintf(&b, "  %q: %q\n", id, msg)
	}
	return writeFile(t, "messages.yaml", b.String()), src
}

func TestMpcFile(t *testing.T) {
	file, src := writeMessageSet(t, 6)
	treeFile := filepath.Join(t.TempDir(), "tree.bin")

	out, err := run(t, "mpc", "build", "--entropy", "7", "--out", treeFile, file)
	require.NoError(t, err)
	tree, err := mpc.Commit(src, mpc.WithEntropy(mpc.FixedEntropy(7)))
	require.NoError(t, err)
	root := tree.Root()
	require.Equal(t, root.String()+"\n", out)

	ids := tree.Protocols()
	out, err = run(t, "mpc", "proof", "--file", treeFile, root.String(), ids[0].String())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	msg := strings.Fields(lines[0])[1]
	proof := strings.Fields(lines[1])[1]
	m, _ := tree.Message(ids[0])
	require.Equal(t, m.String(), msg)

	out, err = run(t, "mpc", "verify", root.String(), ids[0].String(), msg, proof)
	require.NoError(t, err)
	require.Contains(t, out, "Commitment matches")

	_, err = run(t, "mpc", "verify", root.String(), ids[0].String(), ids[1].String(), proof)
	require.ErrorIs(t, err, errors.InvalidProof)

	// Extract a block and inspect it
	blockFile := filepath.Join(t.TempDir(), "block.bin")
	_, err = run(t, "mpc", "block", "--file", treeFile, "--out", blockFile, root.String(), ids[1].String())
	require.NoError(t, err)

	out, err = run(t, "mpc", "inspect", "--file", blockFile)
	require.NoError(t, err)
	require.Contains(t, out, root.String())
	require.Equal(t, 1, strings.Count(out, " revealed "))
	require.Equal(t, int(tree.Width())-1, strings.Count(out, " concealed "))

	_, err = run(t, "mpc", "proof", "--file", blockFile, root.String(), ids[0].String())
	require.ErrorIs(t, err, errors.NotFound)

	// A file with a different root is rejected
	_, err = run(t, "mpc", "inspect", "--file", blockFile, mpc.Commitment{}.String())
	require.ErrorIs(t, err, errors.BadRequest)
}

func TestMpcArchive(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "commitverify.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("[storage]\ntype = \"bolt\"\npath = \"witness.db\"\n"), 0600))

	file, _ := writeMessageSet(t, 3)
	out, err := run(t, "--config", cfgFile, "mpc", "build", file)
	require.NoError(t, err)
	root := strings.TrimSpace(out)

	c, err := mpc.ParseCommitment(root)
	require.NoError(t, err)
	out, err = run(t, "--config", cfgFile, "mpc", "inspect", c.String())
	require.NoError(t, err)
	require.Equal(t, 3, strings.Count(out, " revealed "))

	_, err = run(t, "--config", cfgFile, "mpc", "inspect", mpc.Commitment{1}.String())
	require.ErrorIs(t, err, errors.NotFound)
}

func TestMpcBuildErrors(t *testing.T) {
	file := writeFile(t, "empty.yaml", "min-depth: 0\nmessages: {}\n")
	_, err := run(t, "mpc", "build", file)
	require.ErrorIs(t, err, errors.Empty)

	file = writeFile(t, "bad.yaml", "messages:\n  zz: zz\n")
	_, err = run(t, "mpc", "build", file)
	require.ErrorIs(t, err, errors.BadRequest)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version", "--version-only")
	require.NoError(t, err)
	require.Equal(t, "version unknown\n", out)

	_, err = run(t, "version", "--known-version")
	require.Error(t, err)
}
