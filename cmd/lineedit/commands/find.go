package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/lineedit/cmd/lineedit/opts"
	"gitlab.com/tozd/go/errors"
)

// NewFindCmd creates a new find command
func NewFindCmd(opts *opts.RootOpts) *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Preview matching lines without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			query, err := q.build()
			if err != nil {
				return err
			}

			c, err := opts.Build(ctx)
			if err != nil {
				return err
			}

			if _, err := c.Orchestrator.Find(ctx, opts.File, query); err != nil {
				return errors.Errorf("finding matches: %w", err)
			}
			return nil
		},
	}

	q.add(cmd)
	_ = cmd.MarkFlagRequired("search")

	return cmd
}
