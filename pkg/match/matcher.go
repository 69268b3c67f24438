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

// Package match decides which lines of a record file a search term selects.
//
// A search is either Literal (raw substring, no metacharacters) or Pattern
// (regular expression, first match). Both satisfy Matcher, so callers never
// branch on the mode after construction.
package match

import (
	"regexp"
	"strings"

	"github.com/walteh/lineedit/pkg/errdefs"
	"github.com/walteh/lineedit/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🔍 Matcher evaluates a search against one segment of a line.
type Matcher interface {
	// Match reports whether segment satisfies the search.
	Match(segment string) bool
	// Highlight wraps the matched span(s) of segment with mark.
	Highlight(segment string, mark Marker) string
	// String describes the search for logs and prompts.
	String() string
}

// 🔤 Literal matches a term verbatim. Every occurrence is highlighted.
type Literal struct {
	Term string
}

func (l Literal) Match(segment string) bool {
	return strings.Contains(segment, l.Term)
}

func (l Literal) Highlight(segment string, mark Marker) string {
	return strings.ReplaceAll(segment, l.Term, mark(l.Term))
}

func (l Literal) String() string {
	return "literal " + `"` + l.Term + `"`
}

// 🧩 Pattern matches a regular expression. Only the first match on a line is
// highlighted.
type Pattern struct {
	re *regexp.Regexp
}

// NewPattern compiles expr.
func NewPattern(expr string) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("%w: %q: %w", errdefs.ErrInvalidPattern, expr, err)
	}
	return &Pattern{re: re}, nil
}

func (p *Pattern) Match(segment string) bool {
	return p.re.MatchString(segment)
}

func (p *Pattern) Highlight(segment string, mark Marker) string {
	loc := p.re.FindStringIndex(segment)
	if loc == nil {
		return segment
	}
	return segment[:loc[0]] + mark(segment[loc[0]:loc[1]]) + segment[loc[1]:]
}

func (p *Pattern) String() string {
	return "pattern /" + p.re.String() + "/"
}

// 🏭 New builds a Literal, or a Pattern when regex is set.
func New(term string, regex bool) (Matcher, error) {
	if term == "" {
		return nil, errors.Errorf("%w: empty search term", errdefs.ErrInvalidPattern)
	}
	if regex {
		return NewPattern(term)
	}
	return Literal{Term: term}, nil
}

// 📐 Query is a matcher optionally restricted to a column window.
type Query struct {
	Matcher Matcher
	Columns *text.Range // nil means the whole line
}

// segment returns the part of line the matcher sees.
func (q Query) segment(line string) string {
	if q.Columns == nil {
		return line
	}
	return q.Columns.Segment(line)
}

// Matches reports whether line is selected.
func (q Query) Matches(line string) bool {
	return q.Matcher.Match(q.segment(line))
}

// Render returns line with the matched span highlighted. Text outside the
// column window is never decorated.
func (q Query) Render(line string, mark Marker) string {
	if q.Columns == nil {
		return q.Matcher.Highlight(line, mark)
	}
	before, seg, after := q.Columns.Split(line)
	return before + q.Matcher.Highlight(seg, mark) + after
}

func (q Query) String() string {
	if q.Columns == nil {
		return q.Matcher.String()
	}
	return q.Matcher.String() + " in columns " + q.Columns.String()
}

// 📋 FindMatches returns the 1-indexed numbers of every selected line, in
// file order. Header and footer are included; excluding them is the
// caller's decision.
func FindMatches(lines []string, q Query) []int {
	var out []int
	for i, line := range lines {
		if q.Matches(line) {
			out = append(out, i+1)
		}
	}
	return out
}
