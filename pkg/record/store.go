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

// Package record reads record files and answers structural questions about
// them: how many lines, which are protected, what surrounds a given line.
package record

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/lineedit/pkg/errdefs"
	"gitlab.com/tozd/go/errors"
)

const maxLineSize = 64 << 20

// 📄 File is an in-memory snapshot of a record file.
type File struct {
	Path            string
	Lines           []string    // physical lines without their "\n"
	TrailingNewline bool        // whether the last line was newline-terminated
	Mode            fs.FileMode // permissions at load time
}

// NumberedLine is a line together with its 1-indexed position.
type NumberedLine struct {
	Number int
	Text   string
}

// Total is the number of physical lines.
func (f *File) Total() int {
	return len(f.Lines)
}

// Line returns the text of 1-indexed line n.
func (f *File) Line(n int) string {
	return f.Lines[n-1]
}

// Footer is the last line.
func (f *File) Footer() string {
	return f.Lines[len(f.Lines)-1]
}

// BodyLen is the number of data lines between header and footer.
func (f *File) BodyLen() int {
	return max(len(f.Lines)-2, 0)
}

// 🔒 IsProtected reports whether n is the header or footer position.
func (f *File) IsProtected(n int) bool {
	return n == 1 || n == f.Total()
}

// InRange reports whether n is a valid line number.
func (f *File) InRange(n int) bool {
	return n >= 1 && n <= f.Total()
}

// 👀 Window returns lines n-1..n+1 clipped to the file.
func (f *File) Window(n int) []NumberedLine {
	var out []NumberedLine
	for i := n - 1; i <= n+1; i++ {
		if f.InRange(i) {
			out = append(out, NumberedLine{Number: i, Text: f.Line(i)})
		}
	}
	return out
}

// 💾 Store loads record files from disk.
type Store struct{}

// 🏭 NewStore creates a new store
func NewStore() *Store {
	return &Store{}
}

// Load reads path into memory. Lines keep any "\r"; only "\n" splits.
func (s *Store) Load(ctx context.Context, path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errdefs.FromFS("stat", path, err)
	}
	if info.IsDir() {
		return nil, errors.Errorf("%w: %s is a directory", errdefs.ErrIO, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errdefs.FromFS("reading", path, err)
	}

	f := &File{Path: path, Mode: info.Mode().Perm()}
	if len(content) > 0 {
		text := string(content)
		f.TrailingNewline = strings.HasSuffix(text, "\n")
		f.Lines = strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	}

	zerolog.Ctx(ctx).Debug().
		Str("path", path).
		Int("lines", f.Total()).
		Int("bytes", len(content)).
		Msg("loaded record file")

	return f, nil
}

// 📏 TotalLines counts physical lines in a single pass without loading the
// file.
func (s *Store) TotalLines(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errdefs.FromFS("opening", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	total := 0
	for scanner.Scan() {
		total++
	}
	if err := scanner.Err(); err != nil {
		return 0, errdefs.FromFS("reading", path, err)
	}
	return total, nil
}

// IsProtected reports whether line n of path is its header or footer.
func (s *Store) IsProtected(ctx context.Context, path string, n int) (bool, error) {
	total, err := s.TotalLines(ctx, path)
	if err != nil {
		return false, err
	}
	return n == 1 || n == total, nil
}

// PreviewWindow loads path and returns the context around line n.
func (s *Store) PreviewWindow(ctx context.Context, path string, n int) ([]NumberedLine, error) {
	f, err := s.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if !f.InRange(n) {
		return nil, errors.Errorf("%w: line %d not in [1, %d]", errdefs.ErrRange, n, f.Total())
	}
	return f.Window(n), nil
}

// ✍️ CheckWritable opens path for writing without truncating it.
func (s *Store) CheckWritable(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return errdefs.FromFS("opening for write", path, err)
	}
	return f.Close()
}
