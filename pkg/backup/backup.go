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

// Package backup keeps one pristine snapshot per record file and restores
// it on demand.
//
// The snapshot is first-write-wins: it is taken before the first mutation
// and then reused, untouched, by every later mutation until Clear removes
// it. Rollback restores it but leaves it in place, so repeating a rollback
// always lands on the same bytes.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/lineedit/pkg/errdefs"
	"github.com/walteh/lineedit/pkg/footer"
	"github.com/walteh/lineedit/pkg/record"
	"github.com/zeebo/xxh3"
	"gitlab.com/tozd/go/errors"
)

// 💾 Manager creates, restores and clears backups.
type Manager struct {
	suffix string
	codec  *footer.Codec
}

// 🏭 NewManager creates a manager whose backups live at path+suffix. The
// codec validates a backup before it is restored.
func NewManager(suffix string, codec *footer.Codec) *Manager {
	return &Manager{suffix: suffix, codec: codec}
}

// Path returns the backup path for file.
func (m *Manager) Path(file string) string {
	return file + m.suffix
}

// Exists reports whether file has a backup.
func (m *Manager) Exists(file string) (bool, error) {
	_, err := os.Stat(m.Path(file))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errdefs.FromFS("checking backup", m.Path(file), err)
}

// 📸 Ensure returns the backup for file, creating it from the current
// content only if none exists yet.
func (m *Manager) Ensure(ctx context.Context, file string) (string, bool, error) {
	logger := zerolog.Ctx(ctx)
	path := m.Path(file)

	exists, err := m.Exists(file)
	if err != nil {
		return "", false, err
	}
	if exists {
		logger.Info().Str("backup", path).Msg("reusing existing backup")
		return path, false, nil
	}

	digest, err := copyFile(ctx, file, path)
	if err != nil {
		return "", false, errors.Errorf("creating backup: %w", err)
	}

	logger.Info().
		Str("backup", path).
		Str("xxh3", digestString(digest)).
		Msg("backup created")
	return path, true, nil
}

// ⏪ Rollback overwrites file with its backup, byte for byte and with the
// backup's permissions. The backup must carry a valid footer.
func (m *Manager) Rollback(ctx context.Context, file string) error {
	logger := zerolog.Ctx(ctx)
	path := m.Path(file)

	exists, err := m.Exists(file)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Errorf("%w: no backup at %s", errdefs.ErrNotFound, path)
	}

	if _, err := m.codec.Validate(ctx, path); err != nil {
		return errors.Errorf("refusing to restore malformed backup: %w", err)
	}

	want, err := copyFile(ctx, path, file)
	if err != nil {
		return errors.Errorf("restoring backup: %w", err)
	}

	restored, err := os.ReadFile(file)
	if err != nil {
		return errdefs.FromFS("re-reading", file, err)
	}
	if got := xxh3.Hash(restored); got != want {
		return errors.Errorf("%w: restored %s digest %s, backup digest %s", errdefs.ErrIO, file, digestString(got), digestString(want))
	}

	logger.Info().
		Str("backup", path).
		Str("xxh3", digestString(want)).
		Msg("backup restored")
	return nil
}

// 🧹 Clear deletes the backup so the next mutation starts a new session.
func (m *Manager) Clear(ctx context.Context, file string) (bool, error) {
	path := m.Path(file)
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errdefs.FromFS("removing backup", path, err)
	}
	zerolog.Ctx(ctx).Info().Str("backup", path).Msg("backup cleared")
	return true, nil
}

// copyFile atomically replaces dst with src's bytes and permissions and
// returns the xxh3 digest of what was written.
func copyFile(ctx context.Context, src, dst string) (uint64, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, errdefs.FromFS("stat", src, err)
	}
	content, err := os.ReadFile(src)
	if err != nil {
		return 0, errdefs.FromFS("reading", src, err)
	}

	err = record.WriteAtomic(ctx, dst, info.Mode().Perm(), func(w io.Writer) error {
		if _, err := w.Write(content); err != nil {
			return errors.Errorf("%w: writing %s: %w", errdefs.ErrIO, dst, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return xxh3.Hash(content), nil
}

func digestString(d uint64) string {
	return fmt.Sprintf("%016x", d)
}
