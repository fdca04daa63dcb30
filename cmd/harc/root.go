// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/woozymasta/harc"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
)

// longHelp documents commands and switches.
const longHelp = `harc stores files in an archive, trying each queued codec and keeping
the smallest result.

Commands:
  a[sdqemr01234]  add files          e[aqty]  extract files
  f[sdqemr01234]  freshen files      x[aqty]  extract files with pathnames
  u[sdqemr01234]  update files       l[f]     list files
  d[qe]           delete files       t[qe]    test files
  c[q]            compact archive

Switches:
  0..4  try method (0 CPY, 1 LZS, 2 HSC, 3 LZ4, 4 ZST)
  t     touch files            r  recurse subdirectories
  f     full listing           y  assume yes on all questions
  m     move files             a  restore file attributes
  e     exclude pathnames      s  include special files
  q     quiet operation        d  make directory entries`

// rootOptions are the persistent flags of the root command.
type rootOptions struct {
	configFile string
	logLevel   string
}

// newRootCmd builds the root command.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "harc <cmd><switches> <archive> [patterns...]",
		Short:         "Multi-codec file archiver",
		Long:          longHelp,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  harc a12r backup.ha src/*.go
  harc x backup.ha
  harc lf backup.ha`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchive(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "config", "", "config file (yaml, toml or json)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	return cmd
}

// runArchive loads configuration and runs one archive command.
func runArchive(cmd *cobra.Command, opts *rootOptions, args []string) error {
	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return usageError(err)
	}

	levelName := cfg.LogLevel
	if opts.logLevel != "" {
		levelName = opts.logLevel
	}

	level, err := log.ParseLevel(levelName)
	if err != nil {
		return usageError(fmt.Errorf("log level: %w", err))
	}

	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Prefix: "harc",
		Level:  level,
	})

	inv, err := harc.ParseInvocation(args[0])
	if err != nil {
		return exitErrorFor(err)
	}

	defaults, err := parseMethods(cfg.Methods)
	if err != nil {
		return usageError(err)
	}

	if cfg.AssumeYes {
		inv.Switches.AssumeYes = true
	}

	if cfg.Quiet {
		inv.Switches.Quiet = true
	}

	engine := harc.NewEngine(inv, harc.Options{
		Out:            cmd.OutOrStdout(),
		In:             cmd.InOrStdin(),
		Logger:         logger,
		DefaultMethods: defaults,
		Progress:       cfg.Progress,
	})

	logger.Debug("running", "command", string(inv.Command), "archive", args[1], "methods", engine.Queue())
	if err := engine.Run(cmd.Context(), args[1], args[2:]); err != nil {
		if !errors.Is(err, harc.ErrItemsFailed) {
			logger.Error("command failed", "err", err)
		}

		return exitErrorFor(err)
	}

	return nil
}

// versionString returns a formatted version string for display.
func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}

	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return int(exitErr.Code)
		}

		return int(harc.CodeUsage)
	}

	return 0
}
