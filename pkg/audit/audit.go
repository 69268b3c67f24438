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

// Package audit writes side-files recording exactly which original lines a
// mutation removed or rewrote. The files are for people; nothing restores
// from them.
package audit

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/walteh/lineedit/pkg/config"
	"github.com/walteh/lineedit/pkg/errdefs"
	"github.com/walteh/lineedit/pkg/record"
	"gitlab.com/tozd/go/errors"
)

const (
	timestampLayout = "20060102T150405.000000000Z"
	zstdExt         = ".zst"
)

// Op names the mutation an audit file records.
type Op string

const (
	OpDelete  Op = "delete"
	OpReplace Op = "replace"
)

// 📝 Entry is one affected original line.
type Entry struct {
	Op          Op        `json:"op"`
	Line        int       `json:"line"`
	Content     string    `json:"content"`
	Replacement string    `json:"replacement,omitempty"`
	At          time.Time `json:"at"`
}

// 🗒️ Writer creates audit side-files.
type Writer struct {
	cfg config.Audit
	now func() time.Time
}

// 🏭 NewWriter creates a writer from the audit configuration
func NewWriter(cfg config.Audit) *Writer {
	return &Writer{cfg: cfg, now: time.Now}
}

// Enabled reports whether audit files are written at all.
func (w *Writer) Enabled() bool {
	return w.cfg.Enabled
}

// PathFor returns the audit path for an operation on file at time at.
func (w *Writer) PathFor(file string, op Op, at time.Time) string {
	dir := w.cfg.Dir
	if dir == "" {
		dir = filepath.Dir(file)
	}
	name := filepath.Base(file) + "." + string(op) + "." + at.UTC().Format(timestampLayout) + ".jsonl"
	if w.cfg.Compress {
		name += zstdExt
	}
	return filepath.Join(dir, name)
}

// ✍️ Write records entries for file and returns the audit path. With
// auditing disabled it writes nothing and returns "".
func (w *Writer) Write(ctx context.Context, file string, op Op, entries []Entry) (string, error) {
	if !w.cfg.Enabled || len(entries) == 0 {
		return "", nil
	}

	at := w.now()
	path := w.PathFor(file, op, at)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errdefs.FromFS("creating audit directory", filepath.Dir(path), err)
	}

	err := record.WriteAtomic(ctx, path, 0644, func(out io.Writer) error {
		return w.encode(out, op, at, entries)
	})
	if err != nil {
		return "", errors.Errorf("writing audit file: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("audit", path).
		Str("op", string(op)).
		Int("entries", len(entries)).
		Msg("audit file written")
	return path, nil
}

func (w *Writer) encode(out io.Writer, op Op, at time.Time, entries []Entry) error {
	var sink io.Writer = out
	var enc *zstd.Encoder
	if w.cfg.Compress {
		var err error
		enc, err = zstd.NewWriter(out)
		if err != nil {
			return errors.Errorf("%w: creating zstd encoder: %w", errdefs.ErrIO, err)
		}
		sink = enc
	}

	je := json.NewEncoder(sink)
	for _, e := range entries {
		e.Op = op
		if e.At.IsZero() {
			e.At = at
		}
		if err := je.Encode(e); err != nil {
			return errors.Errorf("%w: encoding audit entry for line %d: %w", errdefs.ErrIO, e.Line, err)
		}
	}

	if enc != nil {
		if err := enc.Close(); err != nil {
			return errors.Errorf("%w: closing zstd encoder: %w", errdefs.ErrIO, err)
		}
	}
	return nil
}

// 🧹 Discard removes an audit file written for a mutation that did not
// commit.
func (w *Writer) Discard(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		zerolog.Ctx(ctx).Warn().Err(err).Str("audit", path).Msg("removing audit file")
	}
}

// 📖 Read decodes an audit file, decompressing .zst files.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errdefs.FromFS("opening audit file", path, err)
	}
	defer f.Close()

	var in io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, zstdExt) {
		dec, err := zstd.NewReader(in)
		if err != nil {
			return nil, errors.Errorf("%w: creating zstd decoder: %w", errdefs.ErrIO, err)
		}
		defer dec.Close()
		in = dec
	}

	var entries []Entry
	jd := json.NewDecoder(in)
	for {
		var e Entry
		err := jd.Decode(&e)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Errorf("%w: decoding %s: %w", errdefs.ErrFormat, path, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
