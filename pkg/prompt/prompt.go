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

// Package prompt asks the user to confirm a mutation before it runs.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/lineedit/pkg/errdefs"
	"gitlab.com/tozd/go/errors"
)

// ❓ Confirmer answers yes/no questions
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// 🖥️ Interactive confirms with a pterm prompt on the terminal. The default
// answer is no.
type Interactive struct{}

func (Interactive) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(false).
		Show(question)
	if err != nil {
		return false, errors.Errorf("%w: reading confirmation: %w", errdefs.ErrIO, err)
	}
	zerolog.Ctx(ctx).Debug().Str("question", question).Bool("answer", ok).Msg("confirmation")
	return ok, nil
}

// ✅ Auto answers yes without asking, for --yes.
type Auto struct{}

func (Auto) Confirm(ctx context.Context, question string) (bool, error) {
	zerolog.Ctx(ctx).Debug().Str("question", question).Msg("auto-confirmed")
	return true, nil
}

// 📜 Lines reads a y/n answer from a line-oriented stream such as piped
// stdin. Anything other than y or yes is a no, including end of input.
type Lines struct {
	in  *bufio.Reader
	out io.Writer
}

// 🏭 NewLines creates a confirmer over in, printing questions to out
func NewLines(in io.Reader, out io.Writer) *Lines {
	return &Lines{in: bufio.NewReader(in), out: out}
}

func (l *Lines) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(l.out, "%s [y/N]: ", question)

	answer, err := l.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, errors.Errorf("%w: reading confirmation: %w", errdefs.ErrIO, err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
