package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/lineedit/pkg/match"
	"github.com/walteh/lineedit/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// queryFlags are the flags that select lines by content
type queryFlags struct {
	search  string
	regex   bool
	columns string
}

func (q *queryFlags) add(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&q.search, "search", "s", "", "term to search for")
	cmd.Flags().BoolVarP(&q.regex, "regex", "r", false, "treat --search as a regular expression")
	cmd.Flags().StringVar(&q.columns, "columns", "", "only search columns A-B (1-indexed, inclusive)")
}

func (q *queryFlags) build() (match.Query, error) {
	m, err := match.New(q.search, q.regex)
	if err != nil {
		return match.Query{}, errors.Errorf("building matcher: %w", err)
	}

	query := match.Query{Matcher: m}
	if q.columns != "" {
		r, err := text.ParseRange(q.columns)
		if err != nil {
			return match.Query{}, err
		}
		query.Columns = &r
	}
	return query, nil
}
