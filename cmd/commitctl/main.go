// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/commitverify/config"
)

var cmdMain = &cobra.Command{
	Use:               "commitctl",
	Short:             "Build and verify client-side commitments",
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

var flagMain struct {
	Config   string
	LogLevel string
	NoColor  bool
	Base58   bool
}

// Loaded by loadConfig before any command runs
var (
	cfg    *config.Config
	logger *slog.Logger
)

func init() {
	cmdMain.PersistentFlags().StringVarP(&flagMain.Config, "config", "c", "", "Configuration file")
	cmdMain.PersistentFlags().StringVar(&flagMain.LogLevel, "log-level", "", "Log levels, for example error;mpc=debug")
	cmdMain.PersistentFlags().BoolVar(&flagMain.NoColor, "no-color", false, "Disable colored output")
	cmdMain.PersistentFlags().BoolVar(&flagMain.Base58, "base58", false, "Print hashes as base58 instead of hex")
}

func main() {
	err := cmdMain.Execute()
	if err != nil {
		fatalf("%v", err)
	}
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(flagMain.Config)
	if err != nil {
		return err
	}

	if flagMain.LogLevel != "" {
		cfg.Logging.Level = flagMain.LogLevel
	}
	if flagMain.NoColor {
		cfg.Logging.Color = false
		color.NoColor = true
	}

	logger, err = cfg.Logging.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
