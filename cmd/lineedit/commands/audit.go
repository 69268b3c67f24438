package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/walteh/lineedit/cmd/lineedit/opts"
	"github.com/walteh/lineedit/pkg/audit"
	"gitlab.com/tozd/go/errors"
)

// NewAuditCmd creates a new audit command
func NewAuditCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit PATH",
		Short: "Print an audit file",
		Long:  `Audit prints the lines recorded in an audit file, decompressing .zst files.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := audit.Read(args[0])
			if err != nil {
				return errors.Errorf("reading audit file: %w", err)
			}

			opts.Console.Print(formatEntries(entries))
			return nil
		},
	}

	return cmd
}

func formatEntries(entries []audit.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s %s line %d: %s", e.At.UTC().Format("2006-01-02T15:04:05Z"), e.Op, e.Line, e.Content)
		if e.Op == audit.OpReplace {
			fmt.Fprintf(&b, " → %s", e.Replacement)
		}
		b.WriteString("\n")
	}
	return b.String()
}
