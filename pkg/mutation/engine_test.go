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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/lineedit/pkg/audit"
	"github.com/walteh/lineedit/pkg/backup"
	"github.com/walteh/lineedit/pkg/config"
	"github.com/walteh/lineedit/pkg/errdefs"
	"github.com/walteh/lineedit/pkg/footer"
	"github.com/walteh/lineedit/pkg/match"
	"github.com/walteh/lineedit/pkg/record"
	"github.com/walteh/lineedit/pkg/testutils"
	"github.com/walteh/lineedit/pkg/text"
	"gitlab.com/tozd/go/errors"
)

type harness struct {
	ctx    context.Context
	engine *Engine
	dir    string
	path   string
}

func setup(t *testing.T, body string) *harness {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0640), "writing fixture")

	ctx := testutils.Context(t)

	cfg := config.Default()
	codec, err := footer.NewCodec(cfg.Footer)
	require.NoError(t, err, "creating codec")

	eng, err := New(Options{
		Codec:   codec,
		Store:   record.NewStore(),
		Backups: backup.NewManager(cfg.Backup.Suffix, codec),
		Audit:   audit.NewWriter(config.Audit{Enabled: true}),
	})
	require.NoError(t, err, "creating engine")

	return &harness{ctx: ctx, engine: eng, dir: dir, path: path}
}

func (h *harness) read(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile(h.path)
	require.NoError(t, err, "reading target")
	return string(b)
}

// names lists the directory, which must never contain a leftover temp file.
func (h *harness) names(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(h.dir)
	require.NoError(t, err, "listing dir")
	var out []string
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
		out = append(out, e.Name())
	}
	return out
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err, "empty options should fail")
}

func TestDeleteBodyLine(t *testing.T) {
	h := setup(t, testutils.Twelve())

	res, err := h.engine.Delete(h.ctx, h.path, []int{5}, RunOptions{})
	require.NoError(t, err, "delete should succeed")

	assert.Equal(t, PhaseDone, res.Phase)
	assert.Equal(t, []int{5}, res.Eligible)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, "FOOTERTEST00000010", res.OldFooter)
	assert.Equal(t, "FOOTERTEST00000009", res.NewFooter)
	assert.Equal(t, 12, res.LinesBefore)
	assert.Equal(t, 11, res.LinesAfter)
	assert.True(t, res.BackupCreated)

	want := append([]string{}, testutils.TwelveLines[:4]...)
	want = append(want, testutils.TwelveLines[5:11]...)
	want = append(want, "FOOTERTEST00000009")
	assert.Equal(t, testutils.Join(want), h.read(t), "rewritten file")

	bak, err := os.ReadFile(res.BackupPath)
	require.NoError(t, err, "reading backup")
	assert.Equal(t, testutils.Twelve(), string(bak), "backup holds the original")

	entries, err := audit.Read(res.AuditPath)
	require.NoError(t, err, "reading audit")
	require.Len(t, entries, 1)
	assert.Equal(t, audit.OpDelete, entries[0].Op)
	assert.Equal(t, 5, entries[0].Line)
	assert.Equal(t, "R04 UMBRELLA 0400", entries[0].Content)

	assert.Len(t, h.names(t), 3, "target, backup and audit file")
}

func TestDeleteMatchedLines(t *testing.T) {
	h := setup(t, testutils.Twelve())

	q := match.Query{Matcher: match.Literal{Term: "GLOBEX"}}
	lines := match.FindMatches(testutils.TwelveLines, q)
	require.Equal(t, []int{3, 7}, lines)

	res, err := h.engine.Delete(h.ctx, h.path, lines, RunOptions{})
	require.NoError(t, err, "delete should succeed")
	assert.Equal(t, "FOOTERTEST00000008", res.NewFooter)
	assert.Len(t, res.Deleted, 2)

	got := strings.Split(strings.TrimSuffix(h.read(t), "\n"), "\n")
	assert.Len(t, got, 10)
	assert.Equal(t, testutils.TwelveLines[0], got[0], "header untouched")
	assert.Equal(t, "FOOTERTEST00000008", got[len(got)-1])
	assert.NotContains(t, h.read(t), "GLOBEX")
}

func TestDeleteDeduplicatesAndSorts(t *testing.T) {
	h := setup(t, testutils.Twelve())

	res, err := h.engine.Delete(h.ctx, h.path, []int{9, 4, 9, 4}, RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 9}, res.Eligible)
	assert.Equal(t, "FOOTERTEST00000008", res.NewFooter)
}

func TestDeleteProtectedOnly(t *testing.T) {
	tests := []struct {
		name  string
		lines []int
	}{
		{name: "header", lines: []int{1}},
		{name: "footer", lines: []int{12}},
		{name: "both", lines: []int{12, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setup(t, testutils.Twelve())

			res, err := h.engine.Delete(h.ctx, h.path, tt.lines, RunOptions{})
			require.NoError(t, err, "protected-only delete is a no-op")
			assert.False(t, res.Changed())
			assert.Equal(t, PhaseDone, res.Phase)
			assert.NotEmpty(t, res.Skipped)
			assert.Equal(t, testutils.Twelve(), h.read(t), "file unchanged")
			assert.Equal(t, []string{"data.txt"}, h.names(t), "no backup or audit")
		})
	}
}

func TestDeleteSkipsProtectedAmongEligible(t *testing.T) {
	h := setup(t, testutils.Twelve())

	res, err := h.engine.Delete(h.ctx, h.path, []int{1, 2, 12}, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, res.Eligible)
	assert.Equal(t, []int{1, 12}, res.Skipped)
	assert.Equal(t, "FOOTERTEST00000009", res.NewFooter)
	assert.True(t, strings.HasPrefix(h.read(t), testutils.TwelveLines[0]+"\n"+testutils.TwelveLines[2]+"\n"))
}

func TestDeleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		lines   []int
		want    error
	}{
		{name: "zero", content: testutils.Twelve(), lines: []int{0}, want: errdefs.ErrRange},
		{name: "past_end", content: testutils.Twelve(), lines: []int{5, 13}, want: errdefs.ErrRange},
		{name: "bad_footer", content: "H\nrow\nTRAILER01\n", lines: []int{2}, want: errdefs.ErrFormat},
		{name: "single_line", content: "FOOTERTEST00000000\n", lines: []int{1}, want: errdefs.ErrFormat},
		{name: "negative", content: "H\na\nb\nc\nFOOTERTEST00000001\n", lines: []int{2, 3}, want: errdefs.ErrNegativeCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setup(t, tt.content)

			_, err := h.engine.Delete(h.ctx, h.path, tt.lines, RunOptions{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "want %v, got %v", tt.want, err)
			assert.Equal(t, tt.content, h.read(t), "file unchanged")
			assert.Equal(t, []string{"data.txt"}, h.names(t))
		})
	}
}

func TestDeleteMissingFile(t *testing.T) {
	h := setup(t, testutils.Twelve())

	_, err := h.engine.Delete(h.ctx, filepath.Join(h.dir, "nope.txt"), []int{2}, RunOptions{})
	assert.True(t, errors.Is(err, errdefs.ErrNotFound), "got %v", err)
}

func TestDeleteDryRun(t *testing.T) {
	h := setup(t, testutils.Twelve())

	res, err := h.engine.Delete(h.ctx, h.path, []int{3, 7}, RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Equal(t, PhaseAborted, res.Phase)
	assert.Equal(t, "FOOTERTEST00000008", res.NewFooter)
	assert.Equal(t, 10, res.LinesAfter)
	assert.Empty(t, res.BackupPath)
	assert.Empty(t, res.AuditPath)
	assert.Equal(t, testutils.Twelve(), h.read(t), "dry run leaves bytes alone")
	assert.Equal(t, []string{"data.txt"}, h.names(t))
}

func TestDeletePreservesFormatting(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no_trailing_newline",
			in:   "H\na\nb\nFOOTERTEST00000002",
			want: "H\nb\nFOOTERTEST00000001",
		},
		{
			name: "crlf",
			in:   "H\r\na\r\nb\r\nFOOTERTEST00000002\r\n",
			want: "H\r\nb\r\nFOOTERTEST00000001\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setup(t, tt.in)

			_, err := h.engine.Delete(h.ctx, h.path, []int{2}, RunOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.read(t))
		})
	}
}

func TestDeleteKeepsPermissions(t *testing.T) {
	h := setup(t, testutils.Twelve())
	require.NoError(t, os.Chmod(h.path, 0600))

	_, err := h.engine.Delete(h.ctx, h.path, []int{2}, RunOptions{})
	require.NoError(t, err)

	info, err := os.Stat(h.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestBackupFirstWriteWins(t *testing.T) {
	h := setup(t, testutils.Twelve())

	first, err := h.engine.Delete(h.ctx, h.path, []int{5}, RunOptions{})
	require.NoError(t, err)
	assert.True(t, first.BackupCreated)

	second, err := h.engine.Delete(h.ctx, h.path, []int{2}, RunOptions{})
	require.NoError(t, err)
	assert.False(t, second.BackupCreated, "backup is reused")
	assert.Equal(t, first.BackupPath, second.BackupPath)
	assert.Equal(t, "FOOTERTEST00000008", second.NewFooter)

	bak, err := os.ReadFile(second.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, testutils.Twelve(), string(bak), "backup still holds the first state")
}

func TestDeleteCancelled(t *testing.T) {
	h := setup(t, testutils.Twelve())

	ctx, cancel := context.WithCancel(h.ctx)
	cancel()

	_, err := h.engine.Delete(ctx, h.path, []int{5}, RunOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Equal(t, testutils.Twelve(), h.read(t))
	assert.Equal(t, []string{"data.txt"}, h.names(t), "no temp, audit or backup left behind")
}

func globexQuery() match.Query {
	return match.Query{Matcher: match.Literal{Term: "GLOBEX"}}
}

func TestReplace(t *testing.T) {
	h := setup(t, testutils.Twelve())

	res, err := h.engine.Replace(h.ctx, h.path, ReplaceRequest{
		Query:  globexQuery(),
		Target: text.Range{Start: 5, End: 10},
		With:   "ACMECO",
	}, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, PhaseDone, res.Phase)
	assert.Equal(t, []int{3, 7}, res.Matched)
	require.Len(t, res.Changes, 2)
	assert.Equal(t, Change{Line: 3, Before: "R02 GLOBEX 0200", After: "R02 ACMECO 0200"}, res.Changes[0])
	assert.Equal(t, "FOOTERTEST00000010", res.Footer)

	want := append([]string{}, testutils.TwelveLines...)
	want[2] = "R02 ACMECO 0200"
	want[6] = "R06 ACMECO 0600"
	assert.Equal(t, testutils.Join(want), h.read(t), "only the target span changed")

	bak, err := os.ReadFile(res.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, testutils.Twelve(), string(bak))

	entries, err := audit.Read(res.AuditPath)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, audit.OpReplace, entries[1].Op)
	assert.Equal(t, "R06 GLOBEX 0600", entries[1].Content)
	assert.Equal(t, "R06 ACMECO 0600", entries[1].Replacement)
}

func TestReplaceWithColumnsQuery(t *testing.T) {
	h := setup(t, testutils.Twelve())

	cols := text.Range{Start: 12, End: 15}
	res, err := h.engine.Replace(h.ctx, h.path, ReplaceRequest{
		Query:  match.Query{Matcher: match.Literal{Term: "0600"}, Columns: &cols},
		Target: cols,
		With:   "9999",
	}, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{7}, res.Matched)
	assert.Contains(t, h.read(t), "R06 GLOBEX 9999\n")
}

func TestReplaceSkipsProtected(t *testing.T) {
	h := setup(t, testutils.Twelve())

	res, err := h.engine.Replace(h.ctx, h.path, ReplaceRequest{
		Query:  match.Query{Matcher: match.Literal{Term: "HEADER"}},
		Target: text.Range{Start: 1, End: 6},
		With:   "XXXXXX",
	}, RunOptions{})
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.Equal(t, []int{1}, res.Skipped)
	assert.Equal(t, testutils.Twelve(), h.read(t))
}

func TestReplaceRangeErrorWritesNothing(t *testing.T) {
	h := setup(t, testutils.Twelve())

	_, err := h.engine.Replace(h.ctx, h.path, ReplaceRequest{
		Query:  match.Query{Matcher: match.Literal{Term: "R0"}},
		Target: text.Range{Start: 10, End: 17},
		With:   "xxxxxxxx",
	}, RunOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrRange), "got %v", err)
	assert.Equal(t, testutils.Twelve(), h.read(t))
	assert.Equal(t, []string{"data.txt"}, h.names(t))
}

func TestReplaceLineBreakWritesNothing(t *testing.T) {
	tests := []struct {
		name   string
		with   string
		dryRun bool
	}{
		{name: "newline", with: "AC\nME"},
		{name: "carriage_return", with: "AC\rME"},
		{name: "crlf", with: "AC\r\nME"},
		{name: "dry_run", with: "AC\nME", dryRun: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setup(t, testutils.Twelve())

			_, err := h.engine.Replace(h.ctx, h.path, ReplaceRequest{
				Query:  globexQuery(),
				Target: text.Range{Start: 5, End: 10},
				With:   tt.with,
			}, RunOptions{DryRun: tt.dryRun})
			require.Error(t, err)
			assert.True(t, errors.Is(err, errdefs.ErrFormat), "got %v", err)

			got := h.read(t)
			assert.Equal(t, testutils.Twelve(), got, "file unchanged")
			assert.Equal(t, 12, strings.Count(got, "\n"), "line count unchanged")
			assert.Equal(t, []string{"data.txt"}, h.names(t), "no backup, audit or temp file")
		})
	}
}

func TestReplaceKeepsCRLF(t *testing.T) {
	const crlf = "H\r\nR01 ACME 0100\r\nFOOTERTEST00000001\r\n"

	t.Run("range_inside_content", func(t *testing.T) {
		h := setup(t, crlf)

		res, err := h.engine.Replace(h.ctx, h.path, ReplaceRequest{
			Query:  match.Query{Matcher: match.Literal{Term: "ACME"}},
			Target: text.Range{Start: 10, End: 13},
			With:   "9999",
		}, RunOptions{})
		require.NoError(t, err)
		require.Len(t, res.Changes, 1)
		assert.Equal(t, "H\r\nR01 ACME 9999\r\nFOOTERTEST00000001\r\n", h.read(t))
	})

	t.Run("carriage_return_is_not_a_column", func(t *testing.T) {
		h := setup(t, crlf)

		_, err := h.engine.Replace(h.ctx, h.path, ReplaceRequest{
			Query:  match.Query{Matcher: match.Literal{Term: "ACME"}},
			Target: text.Range{Start: 10, End: 14},
			With:   "99999",
		}, RunOptions{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errdefs.ErrRange), "got %v", err)
		assert.Equal(t, crlf, h.read(t))
	})
}

func TestReplaceDryRun(t *testing.T) {
	h := setup(t, testutils.Twelve())

	res, err := h.engine.Replace(h.ctx, h.path, ReplaceRequest{
		Query:  globexQuery(),
		Target: text.Range{Start: 5, End: 10},
		With:   "ACMECO",
	}, RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, PhaseAborted, res.Phase)
	assert.Len(t, res.Changes, 2)
	assert.Equal(t, testutils.Twelve(), h.read(t))
	assert.Equal(t, []string{"data.txt"}, h.names(t))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "backing-up", PhaseBackingUp.String())
	assert.True(t, PhaseDone.Terminal())
	assert.True(t, PhaseAborted.Terminal())
	assert.False(t, PhaseRewriting.Terminal())
}
