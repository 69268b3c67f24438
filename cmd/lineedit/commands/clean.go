package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/lineedit/cmd/lineedit/opts"
	"gitlab.com/tozd/go/errors"
)

// NewCleanCmd creates a new clean command
func NewCleanCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the session backup",
		Long: `Clean removes the backup so the next change starts a new session and takes
a fresh backup. Audit files are left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := opts.Build(ctx)
			if err != nil {
				return err
			}

			if _, err := c.Orchestrator.Clean(ctx, opts.File); err != nil {
				return errors.Errorf("cleaning backup: %w", err)
			}
			return nil
		},
	}

	return cmd
}
