package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/lineedit/cmd/lineedit/opts"
	"github.com/walteh/lineedit/pkg/orchestrate"
	"gitlab.com/tozd/go/errors"
)

// NewDeleteCmd creates a new delete command
func NewDeleteCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		line int
		q    queryFlags
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete one line or every matching line",
		Long: `Delete removes data records and lowers the footer count to match.
It will:
1. Validate the footer
2. Preview the line (with its neighbours) or every match
3. Ask for confirmation unless --yes or --dry-run is set
4. Back up the file on the first change of a session and write an audit file
5. Rewrite the file atomically

The header and footer are never deleted. --line rejects them outright,
--search skips them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := opts.Build(ctx)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("line") {
				if _, err := c.Orchestrator.DeleteLine(ctx, opts.File, line, opts.DryRun); err != nil {
					return errors.Errorf("deleting line %d: %w", line, err)
				}
				return nil
			}

			query, err := q.build()
			if err != nil {
				return err
			}
			if _, err := c.Orchestrator.Search(ctx, opts.File, orchestrate.SearchRequest{
				Query:  query,
				DryRun: opts.DryRun,
			}); err != nil {
				return errors.Errorf("deleting matches: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&line, "line", "l", 0, "line number to delete (1-indexed)")
	q.add(cmd)
	cmd.MarkFlagsMutuallyExclusive("line", "search")
	cmd.MarkFlagsMutuallyExclusive("line", "columns")
	cmd.MarkFlagsMutuallyExclusive("line", "regex")
	cmd.MarkFlagsOneRequired("line", "search")

	return cmd
}
