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

package record

import (
	"bufio"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/lineedit/pkg/errdefs"
	"gitlab.com/tozd/go/errors"
)

// 🧱 TempFile is a rewrite buffer created next to its target so the final
// rename stays on one filesystem. It is either committed (renamed over the
// target) or released (removed); Release after Commit is a no-op, so
//
//	tmp, err := record.CreateTemp(path, mode)
//	defer tmp.Release()
//
// covers every exit path.
type TempFile struct {
	target string
	mode   fs.FileMode
	f      *os.File
	w      *bufio.Writer
	done   bool
}

// CreateTemp opens a fresh temp file in target's directory.
func CreateTemp(target string, mode fs.FileMode) (*TempFile, error) {
	dir, base := filepath.Split(target)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return nil, errdefs.FromFS("creating temp file for", target, err)
	}
	return &TempFile{
		target: target,
		mode:   mode,
		f:      f,
		w:      bufio.NewWriterSize(f, 256*1024),
	}, nil
}

// Name is the temp file's path.
func (t *TempFile) Name() string {
	return t.f.Name()
}

// Writer buffers writes into the temp file.
func (t *TempFile) Writer() io.Writer {
	return t.w
}

// 🚀 Commit flushes, syncs and renames the temp file over its target.
func (t *TempFile) Commit(ctx context.Context) error {
	if t.done {
		return errors.Errorf("%w: temp file %s already finished", errdefs.ErrIO, t.Name())
	}
	if err := ctx.Err(); err != nil {
		return errors.Errorf("%w: committing %s: %w", errdefs.ErrIO, t.target, err)
	}
	if err := t.w.Flush(); err != nil {
		return errdefs.FromFS("flushing", t.Name(), err)
	}
	if err := t.f.Chmod(t.mode); err != nil {
		return errdefs.FromFS("chmod", t.Name(), err)
	}
	if err := t.f.Sync(); err != nil {
		return errdefs.FromFS("syncing", t.Name(), err)
	}
	if err := t.f.Close(); err != nil {
		return errdefs.FromFS("closing", t.Name(), err)
	}
	if err := os.Rename(t.Name(), t.target); err != nil {
		return errdefs.FromFS("renaming over", t.target, err)
	}
	t.done = true

	zerolog.Ctx(ctx).Debug().Str("target", t.target).Msg("temp file committed")
	return nil
}

// 🧹 Release removes the temp file unless it was committed.
func (t *TempFile) Release() {
	if t == nil || t.done {
		return
	}
	t.done = true
	_ = t.f.Close()
	_ = os.Remove(t.f.Name())
}

// WriteAtomic fills a temp file via fill and renames it over target. On any
// error the target is left untouched and the temp file is removed.
func WriteAtomic(ctx context.Context, target string, mode fs.FileMode, fill func(w io.Writer) error) error {
	tmp, err := CreateTemp(target, mode)
	if err != nil {
		return err
	}
	defer tmp.Release()

	if err := fill(tmp.Writer()); err != nil {
		return err
	}
	return tmp.Commit(ctx)
}

// WriteLines writes lines joined by "\n", with a final "\n" when trailing is
// set. It checks ctx every few thousand lines so an interrupt stops a long
// rewrite early.
func WriteLines(ctx context.Context, w io.Writer, lines []string, trailing bool) error {
	for i, line := range lines {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return errors.Errorf("%w: rewrite interrupted: %w", errdefs.ErrIO, err)
			}
		}
		if _, err := io.WriteString(w, line); err != nil {
			return errors.Errorf("%w: writing line %d: %w", errdefs.ErrIO, i+1, err)
		}
		if i < len(lines)-1 || trailing {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return errors.Errorf("%w: writing line %d: %w", errdefs.ErrIO, i+1, err)
			}
		}
	}
	return nil
}
