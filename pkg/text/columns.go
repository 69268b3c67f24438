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

package text

import (
	"strconv"
	"strings"

	"github.com/walteh/lineedit/pkg/errdefs"
	"gitlab.com/tozd/go/errors"
)

// 📏 Range is an inclusive, 1-indexed span of character positions on a line.
// Positions count runes, not bytes.
type Range struct {
	Start int
	End   int
}

// ParseRange parses "A-B" (or a single "A") into a Range.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, errors.Errorf("%w: empty column range", errdefs.ErrRange)
	}

	startText, endText, found := strings.Cut(s, "-")
	if !found {
		endText = startText
	}

	start, err := strconv.ParseInt(strings.TrimSpace(startText), 10, 64)
	if err != nil {
		return Range{}, errors.Errorf("%w: column range %q: bad start: %w", errdefs.ErrRange, s, err)
	}
	end, err := strconv.ParseInt(strings.TrimSpace(endText), 10, 64)
	if err != nil {
		return Range{}, errors.Errorf("%w: column range %q: bad end: %w", errdefs.ErrRange, s, err)
	}

	r := Range{Start: int(start), End: int(end)}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Validate checks 1 <= Start <= End.
func (r Range) Validate() error {
	if r.Start < 1 {
		return errors.Errorf("%w: column range %s: start must be at least 1", errdefs.ErrRange, r)
	}
	if r.End < r.Start {
		return errors.Errorf("%w: column range %s: end before start", errdefs.ErrRange, r)
	}
	return nil
}

func (r Range) String() string {
	return strconv.Itoa(r.Start) + "-" + strconv.Itoa(r.End)
}

// ✂️ Split cuts line into the text before the range, the text inside it and the
// text after it. A line shorter than the range yields whatever part of the
// range it actually has, possibly an empty segment.
func (r Range) Split(line string) (before, segment, after string) {
	runes := []rune(line)
	n := len(runes)

	lo := min(r.Start-1, n)
	hi := min(r.End, n)

	return string(runes[:lo]), string(runes[lo:hi]), string(runes[hi:])
}

// Segment returns only the in-range text of line.
func (r Range) Segment(line string) string {
	_, seg, _ := r.Split(line)
	return seg
}

// 🔄 Splice replaces the in-range text of line with replacement. Unlike
// Segment, it refuses lines that end before r.End. A trailing "\r" is not a
// column and survives the splice.
func (r Range) Splice(line, replacement string) (string, error) {
	if err := ValidateReplacement(replacement); err != nil {
		return "", err
	}

	body, cr := strings.CutSuffix(line, "\r")
	length := len([]rune(body))
	if r.End > length {
		return "", errors.Errorf("%w: replace range %s exceeds line length %d", errdefs.ErrRange, r, length)
	}
	before, _, after := r.Split(body)
	out := before + replacement + after
	if cr {
		out += "\r"
	}
	return out, nil
}

// ValidateReplacement rejects text that would split a line in two.
func ValidateReplacement(replacement string) error {
	if strings.ContainsAny(replacement, "\r\n") {
		return errors.Errorf("%w: replacement %q contains a line break", errdefs.ErrFormat, replacement)
	}
	return nil
}
