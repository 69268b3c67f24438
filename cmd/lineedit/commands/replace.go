package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/lineedit/cmd/lineedit/opts"
	"github.com/walteh/lineedit/pkg/orchestrate"
	"github.com/walteh/lineedit/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// NewReplaceCmd creates a new replace command
func NewReplaceCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		q         queryFlags
		target    string
		replaceBy string
	)

	cmd := &cobra.Command{
		Use:   "replace",
		Short: "Overwrite a column range on every matching line",
		Long: `Replace finds lines with --search and overwrites columns --range with --with.
The line count and the footer stay the same. If any matched line is shorter
than the range nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			query, err := q.build()
			if err != nil {
				return err
			}
			r, err := text.ParseRange(target)
			if err != nil {
				return err
			}

			c, err := opts.Build(ctx)
			if err != nil {
				return err
			}

			if _, err := c.Orchestrator.Search(ctx, opts.File, orchestrate.SearchRequest{
				Query:   query,
				Replace: &orchestrate.Replacement{Target: r, With: replaceBy},
				DryRun:  opts.DryRun,
			}); err != nil {
				return errors.Errorf("replacing matches: %w", err)
			}
			return nil
		},
	}

	q.add(cmd)
	cmd.Flags().StringVar(&target, "range", "", "columns A-B to overwrite (1-indexed, inclusive)")
	cmd.Flags().StringVarP(&replaceBy, "with", "w", "", "replacement text")
	_ = cmd.MarkFlagRequired("search")
	_ = cmd.MarkFlagRequired("range")
	_ = cmd.MarkFlagRequired("with")

	return cmd
}
