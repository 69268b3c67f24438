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

package errdefs

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/tozd/go/errors"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "wrapped_format",
			err:  errors.Errorf("%w: footer %q", ErrFormat, "BAD"),
			want: ErrFormat,
		},
		{
			name: "double_wrapped_range",
			err:  errors.Errorf("deleting: %w", errors.Errorf("%w: line 99", ErrRange)),
			want: ErrRange,
		},
		{
			name: "plain_error",
			err:  errors.New("something else"),
			want: nil,
		},
		{
			name: "nil",
			err:  nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestFromFS(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "not_exist", err: fs.ErrNotExist, want: ErrNotFound},
		{name: "permission", err: fs.ErrPermission, want: ErrPermission},
		{name: "other", err: errors.New("disk on fire"), want: ErrIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromFS("reading", "/tmp/x", tt.err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err, "cause should be preserved")
			assert.Contains(t, err.Error(), "reading /tmp/x")
		})
	}

	assert.NoError(t, FromFS("reading", "/tmp/x", nil))
}
