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

package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/lineedit/pkg/config"
	"github.com/walteh/lineedit/pkg/errdefs"
	"github.com/walteh/lineedit/pkg/footer"
)

const pristine = "HEADER\nrow1\nrow2\nFOOTERTEST00000002\n"

func setup(t *testing.T) (context.Context, *Manager, string) {
	t.Helper()
	codec, err := footer.NewCodec(config.Footer{Prefix: "FOOTERTEST", Width: 8})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "records.txt")
	require.NoError(t, os.WriteFile(path, []byte(pristine), 0640))

	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background()), NewManager(".bak", codec), path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestEnsureFirstWriteWins(t *testing.T) {
	ctx, mgr, path := setup(t)

	backupPath, created, err := mgr.Ensure(ctx, path)
	require.NoError(t, err)
	assert.True(t, created, "first call should create the backup")
	assert.Equal(t, path+".bak", backupPath)
	assert.Equal(t, pristine, readFile(t, backupPath))

	info, err := os.Stat(backupPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm(), "backup should keep permissions")

	// mutate the live file, then ensure again
	require.NoError(t, os.WriteFile(path, []byte("HEADER\nFOOTERTEST00000000\n"), 0640))

	_, created, err = mgr.Ensure(ctx, path)
	require.NoError(t, err)
	assert.False(t, created, "second call should reuse the backup")
	assert.Equal(t, pristine, readFile(t, backupPath), "backup must still hold the pristine state")
}

func TestRollback(t *testing.T) {
	ctx, mgr, path := setup(t)

	_, _, err := mgr.Ensure(ctx, path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("HEADER\nFOOTERTEST00000000\n"), 0600))

	require.NoError(t, mgr.Rollback(ctx, path))
	assert.Equal(t, pristine, readFile(t, path), "rollback should restore pristine bytes")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm(), "rollback should restore backup permissions")

	exists, err := mgr.Exists(path)
	require.NoError(t, err)
	assert.True(t, exists, "rollback keeps the backup")

	// idempotent
	require.NoError(t, mgr.Rollback(ctx, path))
	assert.Equal(t, pristine, readFile(t, path))
}

func TestRollbackWithoutBackup(t *testing.T) {
	ctx, mgr, path := setup(t)

	err := mgr.Rollback(ctx, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errdefs.ErrNotFound)
	assert.Equal(t, pristine, readFile(t, path), "file must be untouched")
}

func TestRollbackMalformedBackup(t *testing.T) {
	ctx, mgr, path := setup(t)

	require.NoError(t, os.WriteFile(mgr.Path(path), []byte("HEADER\nrow1\nGARBAGE\n"), 0640))

	err := mgr.Rollback(ctx, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errdefs.ErrFormat)
	assert.Equal(t, pristine, readFile(t, path), "file must be untouched")
}

func TestClear(t *testing.T) {
	ctx, mgr, path := setup(t)

	removed, err := mgr.Clear(ctx, path)
	require.NoError(t, err)
	assert.False(t, removed, "nothing to clear yet")

	_, _, err = mgr.Ensure(ctx, path)
	require.NoError(t, err)

	removed, err = mgr.Clear(ctx, path)
	require.NoError(t, err)
	assert.True(t, removed)

	exists, err := mgr.Exists(path)
	require.NoError(t, err)
	assert.False(t, exists)
}
