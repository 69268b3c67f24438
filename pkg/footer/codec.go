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

// Package footer parses, validates and recomputes the record-count footer
// that closes every file lineedit edits.
package footer

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/lineedit/pkg/config"
	"github.com/walteh/lineedit/pkg/errdefs"
	"gitlab.com/tozd/go/errors"
)

// maxLineSize bounds a single physical line while scanning for the footer.
const maxLineSize = 64 << 20

// 🧾 Info is a parsed footer.
type Info struct {
	Raw    string // the footer line as found, whitespace included
	Digits string // the zero-padded numeral after the prefix
	Count  int64  // Digits parsed as base 10
}

// 🔢 Codec validates and formats footers for one dialect.
type Codec struct {
	dialect config.Footer
	pattern *regexp.Regexp
}

// 🏭 NewCodec compiles the dialect's validation pattern. Without an explicit
// pattern it is ^PREFIX\d{WIDTH}$.
func NewCodec(dialect config.Footer) (*Codec, error) {
	if dialect.Width <= 0 {
		return nil, errors.Errorf("%w: footer width must be positive, got %d", errdefs.ErrFormat, dialect.Width)
	}

	expr := dialect.Pattern
	if expr == "" {
		expr = fmt.Sprintf(`^%s\d{%d}$`, regexp.QuoteMeta(dialect.Prefix), dialect.Width)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("%w: footer pattern %q: %w", errdefs.ErrInvalidPattern, expr, err)
	}

	return &Codec{dialect: dialect, pattern: re}, nil
}

// Dialect returns the footer configuration this codec was built from.
func (c *Codec) Dialect() config.Footer {
	return c.dialect
}

// 🔍 Parse validates a footer line and extracts its count. The digits are
// always read as decimal, so "00000010" is ten.
func (c *Codec) Parse(line string) (Info, error) {
	trimmed := strings.TrimSpace(line)
	if !c.pattern.MatchString(trimmed) {
		return Info{}, errors.Errorf("%w: footer %q does not match %s", errdefs.ErrFormat, trimmed, c.pattern)
	}

	digits, ok := strings.CutPrefix(trimmed, c.dialect.Prefix)
	if !ok || digits == "" {
		return Info{}, errors.Errorf("%w: footer %q does not start with prefix %q", errdefs.ErrFormat, trimmed, c.dialect.Prefix)
	}

	count, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || count < 0 {
		return Info{}, errors.Errorf("%w: footer %q has a non-numeric count %q", errdefs.ErrFormat, trimmed, digits)
	}

	return Info{Raw: line, Digits: digits, Count: count}, nil
}

// 📂 Validate reads the last physical line of path and parses it.
func (c *Codec) Validate(ctx context.Context, path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, errdefs.FromFS("opening", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var last string
	lines := 0
	for scanner.Scan() {
		last = scanner.Text()
		lines++
	}
	if err := scanner.Err(); err != nil {
		return Info{}, errdefs.FromFS("reading", path, err)
	}
	if lines < 2 {
		return Info{}, errors.Errorf("%w: %s has %d line(s), need a header and a footer", errdefs.ErrFormat, path, lines)
	}

	info, err := c.Parse(last)
	if err != nil {
		return Info{}, errors.Errorf("validating %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("path", path).
		Str("footer", strings.TrimSpace(last)).
		Int64("count", info.Count).
		Msg("footer valid")

	return info, nil
}

// ✍️ Format renders count in this dialect.
func (c *Codec) Format(count int64) (string, error) {
	if count < 0 {
		return "", errors.Errorf("%w: cannot format count %d", errdefs.ErrNegativeCount, count)
	}
	out := fmt.Sprintf("%s%0*d", c.dialect.Prefix, c.dialect.Width, count)
	if !c.pattern.MatchString(out) {
		return "", errors.Errorf("%w: count %d does not fit footer %s", errdefs.ErrFormat, count, c.dialect)
	}
	return out, nil
}

// 🔄 Recompute subtracts deleted records from the footer and formats the
// result. A negative result means the footer and body disagree; it is never
// clamped.
func (c *Codec) Recompute(info Info, deleted int) (string, error) {
	next := info.Count - int64(deleted)
	if next < 0 {
		return "", errors.Errorf("%w: footer count %d minus %d deleted lines is %d", errdefs.ErrNegativeCount, info.Count, deleted, next)
	}
	return c.Format(next)
}

// ⚖️ CheckBody compares the footer count against the actual number of body
// lines. With VerifyCount set a mismatch is a format error; otherwise it is
// only logged.
func (c *Codec) CheckBody(ctx context.Context, info Info, bodyLines int) error {
	if info.Count == int64(bodyLines) {
		return nil
	}
	if c.dialect.VerifyCount {
		return errors.Errorf("%w: footer count %d but body has %d lines", errdefs.ErrFormat, info.Count, bodyLines)
	}
	zerolog.Ctx(ctx).Warn().
		Int64("footer_count", info.Count).
		Int("body_lines", bodyLines).
		Msg("footer count does not match body")
	return nil
}
