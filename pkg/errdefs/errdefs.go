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

// Package errdefs defines the error kinds reported by lineedit.
//
// Every failure returned by the engine wraps exactly one of these kinds, so
// callers can branch with errors.Is without parsing messages.
package errdefs

import (
	"io/fs"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrFormat means the footer does not match the configured pattern, or the
	// file is too short to carry both a header and a footer.
	ErrFormat = errors.Base("invalid footer format")

	// ErrRange means a line number or column lies outside what the file holds.
	ErrRange = errors.Base("out of range")

	// ErrNegativeCount means the recomputed footer count dropped below zero.
	ErrNegativeCount = errors.Base("negative footer count")

	// ErrProtectedLine means a single-line delete targeted the header or footer.
	ErrProtectedLine = errors.Base("protected line")

	// ErrNotFound means the target file or its backup does not exist.
	ErrNotFound = errors.Base("not found")

	// ErrPermission means the file cannot be read or written.
	ErrPermission = errors.Base("permission denied")

	// ErrIO covers any other read, write or rename failure.
	ErrIO = errors.Base("i/o failure")

	// ErrInvalidPattern means a search or footer pattern did not compile.
	ErrInvalidPattern = errors.Base("invalid pattern")
)

// 🏷️ Kind returns the error kind wrapped by err, or nil if err carries none.
func Kind(err error) error {
	for _, kind := range []error{
		ErrFormat,
		ErrRange,
		ErrNegativeCount,
		ErrProtectedLine,
		ErrNotFound,
		ErrPermission,
		ErrIO,
		ErrInvalidPattern,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// 📂 FromFS classifies a filesystem error into NotFound, Permission or IO.
func FromFS(op, path string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return errors.Errorf("%w: %s %s: %w", ErrNotFound, op, path, err)
	case errors.Is(err, fs.ErrPermission):
		return errors.Errorf("%w: %s %s: %w", ErrPermission, op, path, err)
	default:
		return errors.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
	}
}
