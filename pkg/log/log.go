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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	lineIndent  = 4  // spaces to indent line entries
	numberWidth = 6  // width of the line number column
	actionWidth = 10 // width of the action column
)

// ChangeKind is what happened to one line.
type ChangeKind int

const (
	LineDeleted ChangeKind = iota
	LineReplaced
	LineSkipped
	LineMatched
)

func (k ChangeKind) String() string {
	switch k {
	case LineDeleted:
		return "deleted"
	case LineReplaced:
		return "replaced"
	case LineSkipped:
		return "protected"
	case LineMatched:
		return "matched"
	default:
		return "unknown"
	}
}

// 🎯 LineChange represents one line for the console report
type LineChange struct {
	Number int        // 1-indexed line number
	Kind   ChangeKind // what happened to it
	Text   string     // original content
	After  string     // replacement content, for LineReplaced
}

// 📦 Session describes the mutation a block of line changes belongs to
type Session struct {
	Op     string // delete / replace / rollback
	Path   string // target file
	DryRun bool
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	current *Session
	changes []LineChange
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context, or a logger that discards
// console output when there is none
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return New(io.Discard, *zerolog.Ctx(ctx))
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatLineChange formats a line change for display
func (l *Logger) formatLineChange(c LineChange) string {
	var symbol rune
	var symbolColor color.Attribute
	switch c.Kind {
	case LineDeleted:
		symbol = '✗'
		symbolColor = color.FgRed
	case LineReplaced:
		symbol = '⟳'
		symbolColor = color.FgBlue
	case LineSkipped:
		symbol = '-'
		symbolColor = color.FgYellow
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	out := fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", lineIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%*d", numberWidth, c.Number),
		color.New(color.Faint).Sprint(fmt.Sprintf("%-*s", actionWidth, c.Kind)),
		c.Text)

	if c.Kind == LineReplaced {
		out += " " + color.New(color.Faint).Sprint("→") + " " + color.New(color.FgGreen).Sprint(c.After)
	}
	return out
}

// 📝 LogLineChange logs a line change
func (l *Logger) LogLineChange(ctx context.Context, c LineChange) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.changes = append(l.changes, c)

	fmt.Fprintln(l.console, l.formatLineChange(c))

	ev := l.zlog.Debug().
		Int("line", c.Number).
		Stringer("kind", c.Kind).
		Str("text", c.Text)
	if c.Kind == LineReplaced {
		ev = ev.Str("after", c.After)
	}
	ev.Msg("line change")
}

// 📝 StartSession starts a new block of line changes
func (l *Logger) StartSession(ctx context.Context, s Session) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &s
	l.changes = nil

	mode := ""
	if s.DryRun {
		mode = " " + color.New(color.FgYellow).Sprint("(dry run)")
	}
	fmt.Fprintf(l.console, "%s %s %s %s%s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(s.Op),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgCyan).Sprint(s.Path),
		mode)

	l.zlog.Debug().
		Str("op", s.Op).
		Str("path", s.Path).
		Bool("dry_run", s.DryRun).
		Msg("starting session")
}

// 📝 EndSession ends the current session
func (l *Logger) EndSession(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return
	}

	l.zlog.Debug().
		Str("op", l.current.Op).
		Str("path", l.current.Path).
		Int("lines", len(l.changes)).
		Msg("session complete")

	l.current = nil
	l.changes = nil
}

// 📝 Changes returns the line changes logged in the current session
func (l *Logger) Changes() []LineChange {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LineChange(nil), l.changes...)
}

// 📝 Print writes raw text to the console
func (l *Logger) Print(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.console, s)
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("lineedit")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Debug().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
