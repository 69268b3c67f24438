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

// Package orchestrate drives the interactive flows: validate, preview,
// confirm, then hand off to the mutation engine or the backup manager.
package orchestrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/lineedit/pkg/backup"
	"github.com/walteh/lineedit/pkg/errdefs"
	"github.com/walteh/lineedit/pkg/footer"
	"github.com/walteh/lineedit/pkg/log"
	"github.com/walteh/lineedit/pkg/match"
	"github.com/walteh/lineedit/pkg/mutation"
	"github.com/walteh/lineedit/pkg/prompt"
	"github.com/walteh/lineedit/pkg/record"
	"github.com/walteh/lineedit/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options contains the collaborators an Orchestrator needs
type Options struct {
	Engine       *mutation.Engine
	Store        *record.Store
	Codec        *footer.Codec
	Backups      *backup.Manager
	Confirmer    prompt.Confirmer
	Console      *log.Logger
	PreviewLimit int          // <= 0 shows every match
	Marker       match.Marker // nil means match.Brackets
}

// 🎯 Orchestrator runs one user request end to end.
type Orchestrator struct {
	engine  *mutation.Engine
	store   *record.Store
	codec   *footer.Codec
	backups *backup.Manager
	confirm prompt.Confirmer
	console *log.Logger
	limit   int
	mark    match.Marker
}

// 🏭 New creates a new orchestrator with the given options
func New(opts Options) (*Orchestrator, error) {
	switch {
	case opts.Engine == nil:
		return nil, errors.Errorf("engine is required")
	case opts.Store == nil:
		return nil, errors.Errorf("store is required")
	case opts.Codec == nil:
		return nil, errors.Errorf("codec is required")
	case opts.Backups == nil:
		return nil, errors.Errorf("backup manager is required")
	case opts.Confirmer == nil:
		return nil, errors.Errorf("confirmer is required")
	case opts.Console == nil:
		return nil, errors.Errorf("console logger is required")
	}

	mark := opts.Marker
	if mark == nil {
		mark = match.Brackets
	}

	return &Orchestrator{
		engine:  opts.Engine,
		store:   opts.Store,
		codec:   opts.Codec,
		backups: opts.Backups,
		confirm: opts.Confirmer,
		console: opts.Console,
		limit:   opts.PreviewLimit,
		mark:    mark,
	}, nil
}

// 🔁 Replacement turns a search into a replace. Without one a search deletes.
type Replacement struct {
	Target text.Range
	With   string
}

// 🔍 SearchRequest selects lines and says what to do with them.
type SearchRequest struct {
	Query   match.Query
	Replace *Replacement
	DryRun  bool
}

// Outcome is what a request ended up doing.
type Outcome struct {
	Phase     mutation.Phase
	Matches   int // every hit, header and footer included
	Protected int // hits on the header or footer, never changed
	Preview   match.Preview
	Confirmed bool
	Delete    *mutation.DeleteResult
	Replace   *mutation.ReplaceResult
}

// Search finds lines matching req.Query, previews them, asks for
// confirmation and deletes or replaces them. Zero matches and a declined
// confirmation both end without error and without touching the file. Only
// header or footer hits means there is nothing to confirm.
func (o *Orchestrator) Search(ctx context.Context, path string, req SearchRequest) (*Outcome, error) {
	op := "delete"
	if req.Replace != nil {
		op = "replace"
		if err := req.Replace.Target.Validate(); err != nil {
			return nil, err
		}
		if err := text.ValidateReplacement(req.Replace.With); err != nil {
			return nil, err
		}
	}
	tr := mutation.NewTracker(ctx, "search-"+op, path)

	if _, err := o.codec.Validate(ctx, path); err != nil {
		tr.Abort(err)
		return nil, err
	}

	f, err := o.store.Load(ctx, path)
	if err != nil {
		tr.Abort(err)
		return nil, err
	}

	tr.Enter(mutation.PhasePreviewing)
	out := &Outcome{Preview: match.RenderPreview(f.Lines, req.Query, o.limit, o.mark)}
	out.Matches = out.Preview.Total

	if out.Matches == 0 {
		o.console.Infof("no matches for %s", req.Query)
		out.Phase = tr.Enter(mutation.PhaseDone)
		return out, nil
	}

	o.console.Infof("%d matching line(s) for %s", out.Matches, req.Query)
	o.console.Print(out.Preview.String())

	lines := match.FindMatches(f.Lines, req.Query)
	for _, n := range lines {
		if f.IsProtected(n) {
			out.Protected++
		}
	}
	eligible := len(lines) - out.Protected

	if !req.DryRun && eligible > 0 {
		tr.Enter(mutation.PhaseConfirming)
		question := fmt.Sprintf("Delete %d matching line(s) from %s?", eligible, path)
		if req.Replace != nil {
			question = fmt.Sprintf("Replace columns %s with %q on %d matching line(s) in %s?", req.Replace.Target, req.Replace.With, eligible, path)
		}
		if out.Protected > 0 {
			question = strings.TrimSuffix(question, "?") + fmt.Sprintf(" (%d protected line(s) skipped)?", out.Protected)
		}
		ok, err := o.ask(ctx, tr, question)
		if err != nil {
			return nil, err
		}
		if !ok {
			out.Phase = tr.Phase()
			return out, nil
		}
		out.Confirmed = true
	}

	run := mutation.RunOptions{DryRun: req.DryRun}

	if req.Replace == nil {
		res, err := o.engine.Delete(ctx, path, lines, run)
		if err != nil {
			return nil, err
		}
		out.Delete, out.Phase = res, res.Phase
		o.reportDelete(ctx, res)
		return out, nil
	}

	res, err := o.engine.Replace(ctx, path, mutation.ReplaceRequest{
		Query:  req.Query,
		Target: req.Replace.Target,
		With:   req.Replace.With,
	}, run)
	if err != nil {
		return nil, err
	}
	out.Replace, out.Phase = res, res.Phase
	o.reportReplace(ctx, res)
	return out, nil
}

// DeleteLine deletes a single line after showing it with its neighbours.
// Unlike a search, aiming at the header or footer is an error.
func (o *Orchestrator) DeleteLine(ctx context.Context, path string, n int, dryRun bool) (*Outcome, error) {
	tr := mutation.NewTracker(ctx, "delete-line", path)

	if _, err := o.codec.Validate(ctx, path); err != nil {
		tr.Abort(err)
		return nil, err
	}

	total, err := o.store.TotalLines(ctx, path)
	if err != nil {
		tr.Abort(err)
		return nil, err
	}
	if n < 1 || n > total {
		err := errors.Errorf("%w: line %d not in [1, %d]", errdefs.ErrRange, n, total)
		tr.Abort(err)
		return nil, err
	}
	protected, err := o.store.IsProtected(ctx, path, n)
	if err != nil {
		tr.Abort(err)
		return nil, err
	}
	if protected {
		err := mutation.ProtectedError(path, n, total)
		tr.Abort(err)
		return nil, err
	}

	tr.Enter(mutation.PhasePreviewing)
	window, err := o.store.PreviewWindow(ctx, path, n)
	if err != nil {
		tr.Abort(err)
		return nil, err
	}
	o.console.Print(renderWindow(window, n, o.mark))

	out := &Outcome{Matches: 1}

	if !dryRun {
		tr.Enter(mutation.PhaseConfirming)
		ok, err := o.ask(ctx, tr, fmt.Sprintf("Delete line %d from %s?", n, path))
		if err != nil {
			return nil, err
		}
		if !ok {
			out.Phase = tr.Phase()
			return out, nil
		}
		out.Confirmed = true
	}

	res, err := o.engine.Delete(ctx, path, []int{n}, mutation.RunOptions{DryRun: dryRun})
	if err != nil {
		return nil, err
	}
	out.Delete, out.Phase = res, res.Phase
	o.reportDelete(ctx, res)
	return out, nil
}

// Find previews matches without changing anything.
func (o *Orchestrator) Find(ctx context.Context, path string, q match.Query) (match.Preview, error) {
	if _, err := o.codec.Validate(ctx, path); err != nil {
		return match.Preview{}, err
	}

	f, err := o.store.Load(ctx, path)
	if err != nil {
		return match.Preview{}, err
	}

	p := match.RenderPreview(f.Lines, q, o.limit, o.mark)
	if p.Total == 0 {
		o.console.Infof("no matches for %s", q)
		return p, nil
	}

	o.console.Infof("%d matching line(s) for %s", p.Total, q)
	o.console.Print(p.String())
	return p, nil
}

// ⏪ Rollback restores path from its backup once confirmed. It reports
// whether the restore happened.
func (o *Orchestrator) Rollback(ctx context.Context, path string) (bool, error) {
	exists, err := o.backups.Exists(path)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, errors.Errorf("%w: no backup at %s", errdefs.ErrNotFound, o.backups.Path(path))
	}

	tr := mutation.NewTracker(ctx, "rollback", path)
	tr.Enter(mutation.PhaseConfirming)
	ok, err := o.ask(ctx, tr, fmt.Sprintf("Restore %s from %s?", path, o.backups.Path(path)))
	if err != nil || !ok {
		return false, err
	}

	if err := o.backups.Rollback(ctx, path); err != nil {
		tr.Abort(err)
		return false, err
	}
	tr.Enter(mutation.PhaseDone)

	o.console.Successf("restored %s from %s", path, o.backups.Path(path))
	return true, nil
}

// 🧹 Clean removes the backup of path, so the next mutation starts a new
// session. It reports whether there was a backup to remove.
func (o *Orchestrator) Clean(ctx context.Context, path string) (bool, error) {
	exists, err := o.backups.Exists(path)
	if err != nil {
		return false, err
	}
	if !exists {
		o.console.Infof("no backup for %s", path)
		return false, nil
	}

	ok, err := o.confirm.Confirm(ctx, fmt.Sprintf("Remove backup %s?", o.backups.Path(path)))
	if err != nil || !ok {
		if err == nil {
			o.console.Warning("aborted, backup kept")
		}
		return false, err
	}

	removed, err := o.backups.Clear(ctx, path)
	if err != nil {
		return false, err
	}
	if removed {
		o.console.Successf("removed %s", o.backups.Path(path))
	}
	return removed, nil
}

// ask runs the confirmer; a declined question aborts the tracker.
func (o *Orchestrator) ask(ctx context.Context, tr *mutation.Tracker, question string) (bool, error) {
	ok, err := o.confirm.Confirm(ctx, question)
	if err != nil {
		tr.Abort(err)
		return false, err
	}
	if !ok {
		tr.Abort(nil)
		o.console.Warning("aborted, no changes made")
		zerolog.Ctx(ctx).Info().Str("question", question).Msg("declined")
		return false, nil
	}
	return true, nil
}

func (o *Orchestrator) reportDelete(ctx context.Context, res *mutation.DeleteResult) {
	o.console.StartSession(ctx, log.Session{Op: "delete", Path: res.Path, DryRun: res.DryRun})
	defer o.console.EndSession(ctx)

	for _, l := range res.Deleted {
		o.console.LogLineChange(ctx, log.LineChange{Number: l.Number, Kind: log.LineDeleted, Text: l.Text})
	}
	for _, n := range res.Skipped {
		o.console.LogLineChange(ctx, log.LineChange{Number: n, Kind: log.LineSkipped})
	}

	switch {
	case !res.Changed():
		o.console.Warning("only protected lines matched, nothing to delete")
	case res.DryRun:
		o.console.Infof("dry run: would delete %d line(s), footer %s → %s", len(res.Eligible), res.OldFooter, res.NewFooter)
	default:
		o.console.Successf("deleted %d line(s), footer %s → %s", len(res.Eligible), res.OldFooter, res.NewFooter)
		o.reportSideFiles(res.BackupPath, res.BackupCreated, res.AuditPath)
	}
}

func (o *Orchestrator) reportReplace(ctx context.Context, res *mutation.ReplaceResult) {
	o.console.StartSession(ctx, log.Session{Op: "replace", Path: res.Path, DryRun: res.DryRun})
	defer o.console.EndSession(ctx)

	for _, c := range res.Changes {
		o.console.LogLineChange(ctx, log.LineChange{Number: c.Line, Kind: log.LineReplaced, Text: c.Before, After: c.After})
	}
	for _, n := range res.Skipped {
		o.console.LogLineChange(ctx, log.LineChange{Number: n, Kind: log.LineSkipped})
	}

	switch {
	case !res.Changed():
		o.console.Warning("only protected lines matched, nothing to replace")
	case res.DryRun:
		o.console.Infof("dry run: would replace %d line(s)", len(res.Changes))
	default:
		o.console.Successf("replaced %d line(s), footer %s unchanged", len(res.Changes), strings.TrimSpace(res.Footer))
		o.reportSideFiles(res.BackupPath, res.BackupCreated, res.AuditPath)
	}
}

func (o *Orchestrator) reportSideFiles(backupPath string, created bool, auditPath string) {
	if created {
		o.console.Infof("backup written to %s", backupPath)
	} else {
		o.console.Infof("backup %s kept from an earlier change", backupPath)
	}
	if auditPath != "" {
		o.console.Infof("audit written to %s", auditPath)
	}
}

// renderWindow prints a line with its neighbours, marking the target.
func renderWindow(window []record.NumberedLine, target int, mark match.Marker) string {
	var b strings.Builder
	width := 1
	if len(window) > 0 {
		width = len(fmt.Sprint(window[len(window)-1].Number))
	}
	for _, l := range window {
		textOut := l.Text
		pointer := " "
		if l.Number == target {
			textOut = mark(l.Text)
			pointer = ">"
		}
		fmt.Fprintf(&b, "%s %*d: %s\n", pointer, width, l.Number, textOut)
	}
	return b.String()
}
