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

// Package testutils holds record-file fixtures shared by package tests.
package testutils

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// TwelveLines is a header, ten data records and a footer counting them.
// GLOBEX appears on lines 3 and 7.
var TwelveLines = []string{
	"HEADER 2025-01-01",
	"R01 ACME 0100",
	"R02 GLOBEX 0200",
	"R03 INITECH 0300",
	"R04 UMBRELLA 0400",
	"R05 HOOLI 0500",
	"R06 GLOBEX 0600",
	"R07 STARK 0700",
	"R08 WAYNE 0800",
	"R09 WONKA 0900",
	"R10 TYRELL 1000",
	"FOOTERTEST00000010",
}

// Join renders lines as newline-terminated file content.
func Join(lines []string) string {
	return strings.Join(lines, "\n") + "\n"
}

// Twelve is TwelveLines as file content.
func Twelve() string {
	return Join(TwelveLines)
}

// 📁 WriteFile writes content to name in a fresh temp dir and returns its path
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "writing fixture")
	return path
}

// ReadFile returns the content of path.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err, "reading %s", path)
	return string(b)
}

// LastLine is the final line of newline-terminated content.
func LastLine(content string) string {
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	return lines[len(lines)-1]
}

// 🪵 Context returns a context carrying a debug logger that writes to t.
func Context(t *testing.T) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}
