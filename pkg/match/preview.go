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

package match

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// 🖍️ Marker decorates a matched span.
type Marker func(span string) string

// Brackets wraps spans in [[ ]] for plain-text output.
func Brackets(span string) string {
	return "[[" + span + "]]"
}

// Colorized highlights spans in bold red. With color.NoColor set the span
// comes back undecorated, so use Brackets for plain output.
func Colorized() Marker {
	c := color.New(color.FgRed, color.Bold)
	return func(span string) string {
		return c.Sprint(span)
	}
}

// PreviewLine is one rendered match.
type PreviewLine struct {
	Number int
	Text   string
}

// 👀 Preview is the rendered result of a search.
type Preview struct {
	Lines     []PreviewLine
	Shown     int
	Total     int
	Truncated bool
}

// RenderPreview renders up to limit matching lines (limit <= 0 means all)
// while still counting every match.
func RenderPreview(lines []string, q Query, limit int, mark Marker) Preview {
	var p Preview
	for i, line := range lines {
		if !q.Matches(line) {
			continue
		}
		p.Total++
		if limit > 0 && p.Shown >= limit {
			p.Truncated = true
			continue
		}
		p.Lines = append(p.Lines, PreviewLine{Number: i + 1, Text: q.Render(line, mark)})
		p.Shown++
	}
	return p
}

// String formats the preview, one numbered line each, with an overflow
// indicator when truncated.
func (p Preview) String() string {
	var b strings.Builder
	width := len(fmt.Sprint(lastNumber(p.Lines)))
	for _, l := range p.Lines {
		fmt.Fprintf(&b, "%*d: %s\n", width, l.Number, l.Text)
	}
	if p.Truncated {
		fmt.Fprintf(&b, "... and %d more matches\n", p.Total-p.Shown)
	}
	return b.String()
}

func lastNumber(lines []PreviewLine) int {
	if len(lines) == 0 {
		return 0
	}
	return lines[len(lines)-1].Number
}
