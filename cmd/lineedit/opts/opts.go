package opts

import (
	"context"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/walteh/lineedit/pkg/audit"
	"github.com/walteh/lineedit/pkg/backup"
	"github.com/walteh/lineedit/pkg/config"
	"github.com/walteh/lineedit/pkg/footer"
	"github.com/walteh/lineedit/pkg/log"
	"github.com/walteh/lineedit/pkg/match"
	"github.com/walteh/lineedit/pkg/mutation"
	"github.com/walteh/lineedit/pkg/orchestrate"
	"github.com/walteh/lineedit/pkg/prompt"
	"github.com/walteh/lineedit/pkg/record"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	File       string
	ConfigFile string
	Yes        bool
	DryRun     bool
	NoColor    bool
	Debug      bool
	Limit      int

	Config  config.Config
	Console *log.Logger
	In      io.Reader
	Out     io.Writer

	// Confirmer overrides the confirmer chosen from Yes and In.
	Confirmer prompt.Confirmer
}

// Components are the collaborators built for one target file.
type Components struct {
	Codec        *footer.Codec
	Store        *record.Store
	Backups      *backup.Manager
	Audit        *audit.Writer
	Engine       *mutation.Engine
	Orchestrator *orchestrate.Orchestrator
}

// Build wires the components for File using the footer dialect it matches.
func (o *RootOpts) Build(ctx context.Context) (*Components, error) {
	codec, err := footer.NewCodec(o.Config.FooterFor(o.File))
	if err != nil {
		return nil, errors.Errorf("creating footer codec: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("file", o.File).
		Stringer("footer", codec.Dialect()).
		Msg("footer dialect selected")

	c := &Components{
		Codec:   codec,
		Store:   record.NewStore(),
		Backups: backup.NewManager(o.Config.Backup.Suffix, codec),
		Audit:   audit.NewWriter(o.Config.Audit),
	}

	c.Engine, err = mutation.New(mutation.Options{
		Codec:   c.Codec,
		Store:   c.Store,
		Backups: c.Backups,
		Audit:   c.Audit,
	})
	if err != nil {
		return nil, errors.Errorf("creating engine: %w", err)
	}

	if !c.Audit.Enabled() {
		zerolog.Ctx(ctx).Debug().Msg("audit files disabled")
	}

	limit := o.Config.PreviewLimit
	if o.Limit > 0 {
		limit = o.Limit
	}

	marker := match.Colorized()
	if color.NoColor {
		marker = match.Brackets
	}

	c.Orchestrator, err = orchestrate.New(orchestrate.Options{
		Engine:       c.Engine,
		Store:        c.Store,
		Codec:        c.Codec,
		Backups:      c.Backups,
		Confirmer:    o.confirmer(),
		Console:      o.Console,
		PreviewLimit: limit,
		Marker:       marker,
	})
	if err != nil {
		return nil, errors.Errorf("creating orchestrator: %w", err)
	}

	return c, nil
}

func (o *RootOpts) confirmer() prompt.Confirmer {
	switch {
	case o.Confirmer != nil:
		return o.Confirmer
	case o.Yes:
		return prompt.Auto{}
	case isTerminal(o.In):
		return prompt.Interactive{}
	default:
		return prompt.NewLines(o.In, o.Out)
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
