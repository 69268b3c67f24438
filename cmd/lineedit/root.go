package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/lineedit/cmd/lineedit/commands"
	"github.com/walteh/lineedit/cmd/lineedit/opts"
	"github.com/walteh/lineedit/pkg/config"
	"github.com/walteh/lineedit/pkg/log"
	"gitlab.com/tozd/go/errors"
)

const defaultFile = "data.txt"

// newRootCmd builds the command tree. Console output goes to out, logs to
// logOut and confirmations are read from in.
func newRootCmd(in io.Reader, out, logOut io.Writer) *cobra.Command {
	ro := &opts.RootOpts{In: in, Out: out}

	cmd := &cobra.Command{
		Use:   "lineedit",
		Short: "Delete or replace records in footer-counted data files",
		Long: `lineedit edits fixed-layout data files made of a header line, data records
and a footer carrying the record count. Deletions keep the footer count in
sync, every change is previewed and confirmed, the first change of a session
is backed up for rollback, and removed or replaced lines are kept in an audit
file next to the target.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, ro, logOut)
		},
	}

	addRootFlags(cmd, ro)

	cmd.AddCommand(
		commands.NewDeleteCmd(ro),
		commands.NewReplaceCmd(ro),
		commands.NewFindCmd(ro),
		commands.NewRollbackCmd(ro),
		commands.NewCleanCmd(ro),
		commands.NewAuditCmd(ro),
	)

	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(logOut)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, ro *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&ro.File, "file", "f", defaultFile, "data file to edit")
	cmd.PersistentFlags().StringVarP(&ro.ConfigFile, "config", "c", config.DefaultPath, "config file path")
	cmd.PersistentFlags().BoolVarP(&ro.Yes, "yes", "y", false, "confirm every prompt")
	cmd.PersistentFlags().BoolVarP(&ro.DryRun, "dry-run", "n", false, "show what would change without writing")
	cmd.PersistentFlags().BoolVar(&ro.NoColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().IntVar(&ro.Limit, "limit", 0, "maximum matches to preview (default from config)")
	cmd.PersistentFlags().BoolVarP(&ro.Debug, "debug", "d", false, "enable debug logging")
}

// setup configures logging, color and configuration from the parsed flags
func setup(cmd *cobra.Command, ro *opts.RootOpts, logOut io.Writer) error {
	level := zerolog.WarnLevel
	if ro.Debug {
		level = zerolog.DebugLevel
	}
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: logOut, NoColor: ro.NoColor}).
		Level(level).
		With().Timestamp().Logger()
	ctx := zlog.WithContext(cmd.Context())

	if ro.NoColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	cfg, err := config.LoadOrDefault(ctx, ro.ConfigFile, cmd.Flags().Changed("config"))
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	if ro.Limit < 0 {
		return errors.Errorf("--limit must not be negative, got %d", ro.Limit)
	}

	ro.Config = cfg
	ro.Console = log.New(ro.Out, zlog)
	ctx = log.NewContext(ctx, ro.Console)

	cmd.SetContext(ctx)
	return nil
}
