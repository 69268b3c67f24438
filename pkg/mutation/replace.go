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

	"github.com/rs/zerolog"
	"github.com/walteh/lineedit/pkg/audit"
	"github.com/walteh/lineedit/pkg/match"
	"github.com/walteh/lineedit/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🔁 ReplaceRequest selects lines by Query and overwrites the Target
// columns of each with With.
type ReplaceRequest struct {
	Query  match.Query
	Target text.Range
	With   string
}

// Change is one rewritten line.
type Change struct {
	Line   int
	Before string
	After  string
}

// ReplaceResult describes a replacement, real or dry.
type ReplaceResult struct {
	Path          string
	Matched       []int // every line the query hit
	Skipped       []int // protected lines among Matched
	Changes       []Change
	Footer        string // unchanged by a replacement
	BackupPath    string
	BackupCreated bool
	AuditPath     string
	DryRun        bool
	Phase         Phase
}

// Changed reports whether the file was (or would be) modified.
func (r *ReplaceResult) Changed() bool {
	return len(r.Changes) > 0
}

// Replace rewrites the Target columns of every matched body line. All
// changes are computed before anything is written, so a line too short for
// the target range fails the whole request with ErrRange. A replacement
// holding a line break is an ErrFormat, since it would change the line count.
func (e *Engine) Replace(ctx context.Context, path string, req ReplaceRequest, opts RunOptions) (*ReplaceResult, error) {
	tr := NewTracker(ctx, "replace", path)

	if err := req.Target.Validate(); err != nil {
		tr.Abort(err)
		return nil, err
	}
	if err := text.ValidateReplacement(req.With); err != nil {
		tr.Abort(err)
		return nil, err
	}

	f, _, err := e.load(ctx, path)
	if err != nil {
		tr.Abort(err)
		return nil, err
	}

	matched := match.FindMatches(f.Lines, req.Query)
	eligible, skipped := partition(f, matched)

	res := &ReplaceResult{
		Path:    path,
		Matched: matched,
		Skipped: skipped,
		Footer:  f.Footer(),
		DryRun:  opts.DryRun,
	}

	if len(eligible) == 0 {
		zerolog.Ctx(ctx).Info().Str("query", req.Query.String()).Ints("skipped", skipped).Msg("no eligible lines to replace")
		res.Phase = tr.Enter(PhaseDone)
		return res, nil
	}

	for _, n := range eligible {
		before := f.Line(n)
		after, err := req.Target.Splice(before, req.With)
		if err != nil {
			err = errors.Errorf("line %d: %w", n, err)
			tr.Abort(err)
			return nil, err
		}
		res.Changes = append(res.Changes, Change{Line: n, Before: before, After: after})
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
	res.BackupPath, res.BackupCreated, err = e.backups.Ensure(ctx, path)
	if err != nil {
		tr.Abort(err)
		return nil, err
	}

	entries := make([]audit.Entry, 0, len(res.Changes))
	for _, c := range res.Changes {
		entries = append(entries, audit.Entry{Line: c.Line, Content: c.Before, Replacement: c.After})
	}
	res.AuditPath, err = e.audit.Write(ctx, path, audit.OpReplace, entries)
	if err != nil {
		tr.Abort(err)
		return nil, err
	}

	tr.Enter(PhaseRewriting)
	lines := slices.Clone(f.Lines)
	for _, c := range res.Changes {
		lines[c.Line-1] = c.After
	}

	if err := e.commit(ctx, tr, f, lines); err != nil {
		e.audit.Discard(ctx, res.AuditPath)
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("path", path).
		Int("changed", len(res.Changes)).
		Str("range", req.Target.String()).
		Msg("lines replaced")

	res.Phase = tr.Enter(PhaseDone)
	return res, nil
}
