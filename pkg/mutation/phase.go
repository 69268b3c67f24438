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

package mutation

import (
	"context"

	"github.com/rs/zerolog"
)

// 📊 Phase is where a mutation stopped.
type Phase int

const (
	PhaseValidating Phase = iota
	PhasePreviewing
	PhaseConfirming
	PhaseBackingUp
	PhaseRewriting
	PhaseCommitting
	PhaseDone
	PhaseAborted
)

// String returns a string representation of Phase
func (p Phase) String() string {
	switch p {
	case PhaseValidating:
		return "validating"
	case PhasePreviewing:
		return "previewing"
	case PhaseConfirming:
		return "confirming"
	case PhaseBackingUp:
		return "backing-up"
	case PhaseRewriting:
		return "rewriting"
	case PhaseCommitting:
		return "committing"
	case PhaseDone:
		return "done"
	case PhaseAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseAborted
}

// 🚦 Tracker logs phase transitions for one mutation.
type Tracker struct {
	logger zerolog.Logger
	phase  Phase
}

// NewTracker starts a tracker in PhaseValidating.
func NewTracker(ctx context.Context, op, path string) *Tracker {
	t := &Tracker{
		logger: zerolog.Ctx(ctx).With().Str("op", op).Str("path", path).Logger(),
		phase:  PhaseValidating,
	}
	t.logger.Debug().Stringer("phase", t.phase).Msg("mutation started")
	return t
}

// Enter moves to p.
func (t *Tracker) Enter(p Phase) Phase {
	t.logger.Debug().Stringer("from", t.phase).Stringer("to", p).Msg("phase")
	t.phase = p
	return p
}

// Abort moves to PhaseAborted, recording why.
func (t *Tracker) Abort(err error) Phase {
	ev := t.logger.Debug().Stringer("from", t.phase)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("mutation aborted")
	t.phase = PhaseAborted
	return t.phase
}

// Phase is the current phase.
func (t *Tracker) Phase() Phase {
	return t.phase
}
