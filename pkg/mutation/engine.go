// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mutation

import (
	"context"
	"slices"
	"strings"

	"github.com/walteh/lineedit/pkg/audit"
	"github.com/walteh/lineedit/pkg/backup"
	"github.com/walteh/lineedit/pkg/errdefs"
	"github.com/walteh/lineedit/pkg/footer"
	"github.com/walteh/lineedit/pkg/record"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options contains the collaborators an Engine needs
type Options struct {
	Codec   *footer.Codec
	Store   *record.Store
	Backups *backup.Manager
	Audit   *audit.Writer
}

// RunOptions tunes a single mutation.
type RunOptions struct {
	// DryRun validates and reports without writing anything.
	DryRun bool
}

// ⚙️ Engine performs deletes and replacements on record files.
type Engine struct {
	codec   *footer.Codec
	store   *record.Store
	backups *backup.Manager
	audit   *audit.Writer
}

// 🏭 New creates a new engine with the given options
func New(opts Options) (*Engine, error) {
	if opts.Codec == nil {
		return nil, errors.Errorf("codec is required")
	}
	if opts.Store == nil {
		return nil, errors.Errorf("store is required")
	}
	if opts.Backups == nil {
		return nil, errors.Errorf("backup manager is required")
	}
	if opts.Audit == nil {
		return nil, errors.Errorf("audit writer is required")
	}
	return &Engine{
		codec:   opts.Codec,
		store:   opts.Store,
		backups: opts.Backups,
		audit:   opts.Audit,
	}, nil
}

// load reads path and validates its structure and footer.
func (e *Engine) load(ctx context.Context, path string) (*record.File, footer.Info, error) {
	f, err := e.store.Load(ctx, path)
	if err != nil {
		return nil, footer.Info{}, err
	}
	if f.Total() < 2 {
		return nil, footer.Info{}, errors.Errorf("%w: %s has %d line(s), need a header and a footer", errdefs.ErrFormat, path, f.Total())
	}
	info, err := e.codec.Parse(f.Footer())
	if err != nil {
		return nil, footer.Info{}, errors.Errorf("validating %s: %w", path, err)
	}
	if err := e.codec.CheckBody(ctx, info, f.BodyLen()); err != nil {
		return nil, footer.Info{}, errors.Errorf("validating %s: %w", path, err)
	}
	return f, info, nil
}

// 🔢 normalize sorts and deduplicates line numbers.
func normalize(lines []int) []int {
	out := slices.Clone(lines)
	slices.Sort(out)
	return slices.Compact(out)
}

// checkRange fails on the first number outside [1, total].
func checkRange(f *record.File, lines []int) error {
	for _, n := range lines {
		if !f.InRange(n) {
			return errors.Errorf("%w: line %d not in [1, %d]", errdefs.ErrRange, n, f.Total())
		}
	}
	return nil
}

// 🔒 partition splits sorted line numbers into protected and eligible.
func partition(f *record.File, lines []int) (eligible, protected []int) {
	for _, n := range lines {
		if f.IsProtected(n) {
			protected = append(protected, n)
		} else {
			eligible = append(eligible, n)
		}
	}
	return eligible, protected
}

// lineEnding returns the "\r" a CRLF file keeps at the end of each line.
func lineEnding(line string) string {
	if strings.HasSuffix(line, "\r") {
		return "\r"
	}
	return ""
}
