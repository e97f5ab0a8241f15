// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/commitverify"
)

var cmdVersion = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE:  showVersion,
}

var flagVersion struct {
	VersionOnly  bool
	KnownVersion bool
}

func init() {
	cmdMain.AddCommand(cmdVersion)

	cmdVersion.Flags().BoolVar(&flagVersion.VersionOnly, "version-only", false, "Only print out the version number")
	cmdVersion.Flags().BoolVar(&flagVersion.KnownVersion, "known-version", false, "Fail if the version number is unknown")
}

func showVersion(cmd *cobra.Command, _ []string) error {
	if flagVersion.VersionOnly {
		fmt.Fprintln(cmd.OutOrStdout(), commitverify.Version)
	} else if commitverify.Commit != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", cmdMain.Short, commitverify.Version, commitverify.Commit)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cmdMain.Short, commitverify.Version)
	}

	if flagVersion.KnownVersion && !commitverify.IsVersionKnown() {
		return fmt.Errorf("version is unknown")
	}
	return nil
}
