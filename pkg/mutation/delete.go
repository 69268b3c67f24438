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
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/lineedit/pkg/audit"
	"github.com/walteh/lineedit/pkg/errdefs"
	"github.com/walteh/lineedit/pkg/record"
	"gitlab.com/tozd/go/errors"
)

// 🗑️ DeleteResult describes a delete, real or dry.
type DeleteResult struct {
	Path          string
	Eligible      []int                 // lines removed (or that would be)
	Skipped       []int                 // protected lines excluded from the request
	Deleted       []record.NumberedLine // original content of Eligible
	OldFooter     string
	NewFooter     string
	LinesBefore   int
	LinesAfter    int
	BackupPath    string
	BackupCreated bool
	AuditPath     string
	DryRun        bool
	Phase         Phase
}

// Changed reports whether the file was (or would be) modified.
func (r *DeleteResult) Changed() bool {
	return len(r.Eligible) > 0
}

// Delete removes the given lines from path and rewrites the footer.
//
// Line numbers are deduplicated and sorted. Any number outside the file is
// an ErrRange for the whole request. Header and footer positions are
// dropped and reported in Skipped; if nothing else remains the call is a
// successful no-op.
func (e *Engine) Delete(ctx context.Context, path string, lines []int, opts RunOptions) (*DeleteResult, error) {
	tr := NewTracker(ctx, "delete", path)

	f, info, err := e.load(ctx, path)
	if err != nil {
		tr.Abort(err)
		return nil, err
	}

	targets := normalize(lines)
	if err := checkRange(f, targets); err != nil {
		tr.Abort(err)
		return nil, err
	}
	eligible, skipped := partition(f, targets)

	res := &DeleteResult{
		Path:        path,
		Eligible:    eligible,
		Skipped:     skipped,
		OldFooter:   strings.TrimSpace(f.Footer()),
		NewFooter:   strings.TrimSpace(f.Footer()),
		LinesBefore: f.Total(),
		LinesAfter:  f.Total(),
		DryRun:      opts.DryRun,
	}

	if len(eligible) == 0 {
		zerolog.Ctx(ctx).Info().Ints("skipped", skipped).Msg("no eligible lines to delete")
		res.Phase = tr.Enter(PhaseDone)
		return res, nil
	}

	newFooter, err := e.codec.Recompute(info, len(eligible))
	if err != nil {
		tr.Abort(err)
		return nil, errors.Errorf("recomputing footer: %w", err)
	}
	res.NewFooter = newFooter
	res.LinesAfter = f.Total() - len(eligible)
	for _, n := range eligible {
		res.Deleted = append(res.Deleted, record.NumberedLine{Number: n, Text: f.Line(n)})
	}

	if opts.DryRun {
		res.Phase = tr.Abort(nil)
		return res, nil
	}

	if err := e.store.CheckWritable(path); err != nil {
		tr.Abort(err)
		return nil, err
	}

	tr.Enter(PhaseBackingUp)
	entries := make([]audit.Entry, 0, len(res.Deleted))
	for _, l := range res.Deleted {
		entries = append(entries, audit.Entry{Line: l.Number, Content: l.Text})
	}
	res.AuditPath, err = e.audit.Write(ctx, path, audit.OpDelete, entries)
	if err != nil {
		tr.Abort(err)
		return nil, err
	}

	res.BackupPath, res.BackupCreated, err = e.backups.Ensure(ctx, path)
	if err != nil {
		e.audit.Discard(ctx, res.AuditPath)
		tr.Abort(err)
		return nil, err
	}

	tr.Enter(PhaseRewriting)
	drop := make(map[int]struct{}, len(eligible))
	for _, n := range eligible {
		drop[n] = struct{}{}
	}
	kept := make([]string, 0, res.LinesAfter)
	for i, line := range f.Lines[:f.Total()-1] {
		if _, ok := drop[i+1]; !ok {
			kept = append(kept, line)
		}
	}
	kept = append(kept, newFooter+lineEnding(f.Footer()))

	if err := e.commit(ctx, tr, f, kept); err != nil {
		e.audit.Discard(ctx, res.AuditPath)
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("path", path).
		Ints("deleted", eligible).
		Str("footer", newFooter).
		Msg("lines deleted")

	res.Phase = tr.Enter(PhaseDone)
	return res, nil
}

// commit writes lines to a temp file beside f and renames it over f.
func (e *Engine) commit(ctx context.Context, tr *Tracker, f *record.File, lines []string) error {
	tmp, err := record.CreateTemp(f.Path, f.Mode)
	if err != nil {
		tr.Abort(err)
		return err
	}
	defer tmp.Release()

	if err := writeAll(ctx, tmp.Writer(), lines, f.TrailingNewline); err != nil {
		tr.Abort(err)
		return err
	}

	tr.Enter(PhaseCommitting)
	if err := tmp.Commit(ctx); err != nil {
		tr.Abort(err)
		return err
	}
	return nil
}

func writeAll(ctx context.Context, w io.Writer, lines []string, trailing bool) error {
	if err := record.WriteLines(ctx, w, lines, trailing); err != nil {
		return errors.Errorf("rewriting: %w", err)
	}
	return nil
}

// 🛡️ ProtectedError builds the error for a single-line delete aimed at the
// header or footer.
func ProtectedError(path string, line, total int) error {
	which := "header"
	if line == total {
		which = "footer"
	}
	return errors.Errorf("%w: line %d is the %s of %s", errdefs.ErrProtectedLine, line, which, path)
}
