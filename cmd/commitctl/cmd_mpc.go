// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/commitverify/config"
	"gitlab.com/accumulatenetwork/commitverify/pkg/database/witness"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
	"gitlab.com/accumulatenetwork/commitverify/pkg/mpc"
	"gitlab.com/accumulatenetwork/commitverify/pkg/types/encoding"
	"gopkg.in/yaml.v3"
)

var cmdMpc = &cobra.Command{
	Use:   "mpc",
	Short: "Build and inspect multi-protocol commitments",
}

var cmdMpcBuild = &cobra.Command{
	Use:   "build [messages.yaml]",
	Short: "Build a commitment tree from a message set",
	Long: "Build a commitment tree from a YAML message set of the form\n\n" +
		"  min-depth: 3\n" +
		"  messages:\n" +
		"    <protocol id>: <message>\n",
	Args: cobra.ExactArgs(1),
	RunE: runMpcBuild,
}

var cmdMpcProof = &cobra.Command{
	Use:   "proof [commitment] [protocol]",
	Short: "Extract the proof of a protocol",
	Args:  cobra.ExactArgs(2),
	RunE:  runMpcProof,
}

var cmdMpcVerify = &cobra.Command{
	Use:   "verify [commitment] [protocol] [message] [proof]",
	Short: "Verify a proof of a protocol's message",
	Args:  cobra.ExactArgs(4),
	RunE:  runMpcVerify,
}

var cmdMpcBlock = &cobra.Command{
	Use:   "block [commitment] [protocol...]",
	Short: "Extract a block that reveals only the given protocols",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMpcBlock,
}

var cmdMpcInspect = &cobra.Command{
	Use:   "inspect [commitment]",
	Short: "Print the slots of a tree or block",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMpcInspect,
}

var flagMpc struct {
	Out     string
	File    string
	Entropy string
}

func init() {
	cmdMain.AddCommand(cmdMpc)
	cmdMpc.AddCommand(cmdMpcBuild, cmdMpcProof, cmdMpcVerify, cmdMpcBlock, cmdMpcInspect)

	cmdMpcBuild.Flags().StringVarP(&flagMpc.Out, "out", "o", "", "Write the encoded tree to a file")
	cmdMpcBuild.Flags().StringVar(&flagMpc.Entropy, "entropy", "", "Fixed entropy, for reproducible trees")
	cmdMpcBlock.Flags().StringVarP(&flagMpc.Out, "out", "o", "", "Write the encoded block to a file")
	for _, cmd := range []*cobra.Command{cmdMpcProof, cmdMpcBlock, cmdMpcInspect} {
		cmd.Flags().StringVarP(&flagMpc.File, "file", "f", "", "Read the tree or block from a file instead of the archive")
	}
}

type messageSet struct {
	MinDepth *uint8                         `yaml:"min-depth"`
	Messages map[mpc.ProtocolID]mpc.Message `yaml:"messages"`
}

func openArchive() (*witness.Archive, func(), error) {
	db, closer, err := cfg.Storage.Open()
	if err != nil {
		return nil, nil, err
	}
	return witness.New(db, logger), func() { _ = closer.Close() }, nil
}

func runMpcBuild(cmd *cobra.Command, args []string) error {
	b, err := readInput(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	var set messageSet
	err = yaml.Unmarshal(b, &set)
	if err != nil {
		return errors.BadRequest.WithFormat("parse message set: %w", err)
	}

	src := &mpc.MultiSource{MinDepth: cfg.MPC.MinDepth, Messages: set.Messages}
	if set.MinDepth != nil {
		src.MinDepth = *set.MinDepth
	}
	opts := cfg.MPCOptions(logger)
	if flagMpc.Entropy != "" {
		v, err := strconv.ParseUint(flagMpc.Entropy, 0, 64)
		if err != nil {
			return errors.BadRequest.WithFormat("parse entropy: %w", err)
		}
		opts = append(opts, mpc.WithEntropy(mpc.FixedEntropy(v)))
	}

	tree, err := mpc.Commit(src, opts...)
	if err != nil {
		return err
	}

	if flagMpc.Out != "" {
		err = writeValue(flagMpc.Out, tree)
		if err != nil {
			return err
		}
	}

	if cfg.Storage.Type != config.MemoryStorage {
		archive, done, err := openArchive()
		if err != nil {
			return err
		}
		defer done()
		_, err = archive.PutTree(tree)
		if err != nil {
			return err
		}
	}

	root := tree.Root()
	fmt.Fprintln(cmd.OutOrStdout(), formatBytes(root[:]))
	return nil
}

func writeValue(file string, v encoding.Marshaler) error {
	b, err := encoding.Marshal(v)
	if err != nil {
		return err
	}
	err = os.WriteFile(file, b, 0600)
	if err != nil {
		return errors.IOError.WithFormat("write %s: %w", file, err)
	}
	return nil
}

// loadBlock loads a block from --file or the archive. A file may hold an
// encoded tree or an encoded block.
func loadBlock(commitment string) (*mpc.MerkleBlock, error) {
	if flagMpc.File == "" {
		if commitment == "" {
			return nil, errors.BadRequest.With("a commitment or --file is required")
		}
		c, err := parse32(commitment)
		if err != nil {
			return nil, err
		}
		archive, done, err := openArchive()
		if err != nil {
			return nil, err
		}
		defer done()
		return archive.Block(c)
	}

	b, err := os.ReadFile(flagMpc.File)
	if err != nil {
		return nil, errors.IOError.WithFormat("read %s: %w", flagMpc.File, err)
	}

	var block *mpc.MerkleBlock
	tree := new(mpc.MerkleTree)
	if encoding.Unmarshal(b, tree) == nil {
		block, err = tree.Block()
	} else {
		block = new(mpc.MerkleBlock)
		err = encoding.Unmarshal(b, block)
	}
	if err != nil {
		return nil, errors.BadRequest.WithFormat("%s is neither a tree nor a block: %w", flagMpc.File, err)
	}

	if commitment != "" {
		c, err := parse32(commitment)
		if err != nil {
			return nil, err
		}
		if block.Root() != c {
			return nil, errors.BadRequest.WithFormat("%s has root %v, not %x", flagMpc.File, block.Root(), c)
		}
	}
	return block, nil
}

func runMpcProof(cmd *cobra.Command, args []string) error {
	block, err := loadBlock(args[0])
	if err != nil {
		return err
	}
	protocol, err := parse32(args[1])
	if err != nil {
		return err
	}
	proof, err := block.Proof(protocol)
	if err != nil {
		return err
	}
	msg, _ := block.Message(protocol)
	b, err := encoding.Marshal(proof)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "message:", formatBytes(msg[:]))
	fmt.Fprintln(cmd.OutOrStdout(), "proof:  ", formatBytes(b))
	return nil
}

func runMpcVerify(cmd *cobra.Command, args []string) error {
	c, err := parse32(args[0])
	if err != nil {
		return err
	}
	protocol, err := parse32(args[1])
	if err != nil {
		return err
	}
	msg, err := parse32(args[2])
	if err != nil {
		return err
	}
	b, err := parseBytes(args[3])
	if err != nil {
		return err
	}
	proof := new(mpc.MerkleProof)
	err = encoding.Unmarshal(b, proof)
	if err != nil {
		return errors.BadRequest.WithFormat("decode proof: %w", err)
	}

	ok, err := proof.Verify(protocol, msg, c)
	if err != nil {
		return err
	}
	return verdict(cmd, ok)
}

func runMpcBlock(cmd *cobra.Command, args []string) error {
	block, err := loadBlock(args[0])
	if err != nil {
		return err
	}
	var keep []mpc.ProtocolID
	for _, arg := range args[1:] {
		id, err := parse32(arg)
		if err != nil {
			return err
		}
		if _, ok := block.Message(id); !ok {
			return errors.NotFound.WithFormat("protocol %x is not revealed", id)
		}
		keep = append(keep, id)
	}
	block = block.ConcealExcept(keep...)

	if flagMpc.Out != "" {
		return writeValue(flagMpc.Out, block)
	}
	b, err := encoding.Marshal(block)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatBytes(b))
	return nil
}

func runMpcInspect(cmd *cobra.Command, args []string) error {
	var commitment string
	if len(args) > 0 {
		commitment = args[0]
	}
	block, err := loadBlock(commitment)
	if err != nil {
		return err
	}
	size, err := encoding.Marshal(block)
	if err != nil {
		return err
	}

	root := block.Root()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Commitment: %s\n", formatBytes(root[:]))
	fmt.Fprintf(out, "Depth:      %d (%s slots)\n", block.Depth(), humanize.Comma(int64(block.Width())))
	fmt.Fprintf(out, "Revealed:   %d\n", len(block.Protocols()))
	fmt.Fprintf(out, "Size:       %s\n", humanize.Bytes(uint64(len(size))))

	tw := tablewriter.NewWriter(out)
	tw.SetHeader([]string{"Slot", "State", "Protocol", "Message or leaf"})
	tw.SetAutoWrapText(false)
	for i, s := range block.Slots() {
		if s.Revealed {
			tw.Append([]string{strconv.Itoa(i), "revealed", formatBytes(s.Protocol[:]), formatBytes(s.Message[:])})
		} else {
			tw.Append([]string{strconv.Itoa(i), "concealed", "", formatBytes(s.Hash[:])})
		}
	}
	tw.Render()
	return nil
}
