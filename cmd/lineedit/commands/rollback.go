package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/lineedit/cmd/lineedit/opts"
	"gitlab.com/tozd/go/errors"
)

// NewRollbackCmd creates a new rollback command
func NewRollbackCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Restore the file from its session backup",
		Long: `Rollback overwrites the file with the backup taken before the first change
of the session. The backup is kept, so rollback can be repeated; use clean to
start a new session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := opts.Build(ctx)
			if err != nil {
				return err
			}

			if _, err := c.Orchestrator.Rollback(ctx, opts.File); err != nil {
				return errors.Errorf("rolling back: %w", err)
			}
			return nil
		},
	}

	return cmd
}
