// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/commitverify/pkg/commit"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/hash"
)

var cmdCommit = &cobra.Command{
	Use:   "commit [file]",
	Short: "Commit to the contents of a file, or stdin if the file is -",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommit,
}

var cmdVerify = &cobra.Command{
	Use:   "verify [commitment] [file]",
	Short: "Verify that a commitment commits to the contents of a file",
	Args:  cobra.ExactArgs(2),
	RunE:  runVerify,
}

var flagCommit struct {
	Tag    string
	Engine string
	Max    int
}

var errMismatch = errors.InvalidProof.With("commitment does not match")

func init() {
	cmdMain.AddCommand(cmdCommit, cmdVerify)

	for _, cmd := range []*cobra.Command{cmdCommit, cmdVerify} {
		cmd.Flags().StringVarP(&flagCommit.Tag, "tag", "t", "", "Tag of the tagged hash; untagged if empty")
		cmd.Flags().StringVarP(&flagCommit.Engine, "engine", "e", "", "Hash engine (sha256, blake3, sha3); defaults to the configured engine")
		cmd.Flags().IntVar(&flagCommit.Max, "max", 0, "Reject messages longer than this many bytes")
	}
}

func scheme() (commit.TryScheme[[]byte, hash.Digest], error) {
	name := flagCommit.Engine
	if name == "" {
		name = cfg.Hash.Engine
	}
	engine, err := hash.ParseEngine(name)
	if err != nil {
		return nil, err
	}

	switch {
	case flagCommit.Max > 0:
		if flagCommit.Tag == "" {
			return nil, errors.BadRequest.With("--max requires --tag")
		}
		return commit.Bounded{Tag: engine.NewTag(flagCommit.Tag), Max: flagCommit.Max}, nil
	case flagCommit.Tag != "":
		s := commit.Tagged{Tag: engine.NewTag(flagCommit.Tag)}
		return commit.TrySchemeFunc[[]byte, hash.Digest](func(b []byte) (hash.Digest, error) { return s.Commit(b), nil }), nil
	default:
		s := commit.Untagged{Engine: engine}
		return commit.TrySchemeFunc[[]byte, hash.Digest](func(b []byte) (hash.Digest, error) { return s.Commit(b), nil }), nil
	}
}

func runCommit(cmd *cobra.Command, args []string) error {
	msg, err := readInput(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	s, err := scheme()
	if err != nil {
		return err
	}
	c, err := s.TryCommit(msg)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatBytes(c[:]))
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	c, err := parse32(args[0])
	if err != nil {
		return err
	}
	msg, err := readInput(args[1], cmd.InOrStdin())
	if err != nil {
		return err
	}
	s, err := scheme()
	if err != nil {
		return err
	}
	ok, err := commit.TryVerify(s, hash.Digest(c), msg)
	if err != nil {
		return err
	}
	return verdict(cmd, ok)
}

func verdict(cmd *cobra.Command, ok bool) error {
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), color.RedString("✘"), "Commitment does not match")
		return errMismatch
	}
	fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✔"), "Commitment matches")
	return nil
}
