// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import "fmt"

// Tracker follows the state of every resource slot across commands and
// frames, the way the pipeline keeps one current state per buffer.
type Tracker struct {
	states States
}

// NewTracker returns a tracker starting from initial.
func NewTracker(initial States) *Tracker {
	return &Tracker{states: initial}
}

// State returns the current state of r.
func (t *Tracker) State(r Resource) State { return t.states[r] }

// Set overrides the state of r without recording a transition. It is used
// when a different buffer is bound to the slot.
func (t *Tracker) Set(r Resource, s State) { t.states[r] = s }

// Snapshot returns a copy of all states.
func (t *Tracker) Snapshot() States { return t.states }

// Apply validates c against the current states and advances them.
func (t *Tracker) Apply(c Command) error {
	switch c.Op {
	case OpBarrier:
		for _, tr := range c.Transitions {
			if cur := t.states[tr.Resource]; cur != tr.Before {
				return fmt.Errorf("%w: barrier expects %s in %s, found %s",
					ErrHazard, tr.Resource, tr.Before, cur)
			}
			t.states[tr.Resource] = tr.After
		}
		return nil

	case OpCopy:
		if err := t.expect(c.Src, StateCopySource); err != nil {
			return err
		}
		return t.expect(c.Dst, StateCopyDest)

	case OpDispatch:
		if c.Stage >= StageCount || c.Stage == StageClear {
			return fmt.Errorf("%w: %s cannot be dispatched directly", ErrHazard, c.Stage)
		}
		return t.expectAll(c.Stage.Accesses())

	case OpDispatchIndirect:
		if err := t.expect(c.Args, StateIndirectArgument); err != nil {
			return err
		}
		return t.expectAll(c.Stage.Accesses())

	case OpClear:
		return t.expect(c.Target, StateUnorderedAccess)

	default:
		return fmt.Errorf("%w: unknown op %s", ErrHazard, c.Op)
	}
}

func (t *Tracker) expect(r Resource, want State) error {
	if cur := t.states[r]; cur != want {
		return fmt.Errorf("%w: %s must be %s, found %s", ErrHazard, r, want, cur)
	}
	return nil
}

func (t *Tracker) expectAll(accesses []Access) error {
	for _, a := range accesses {
		if err := t.expect(a.Resource, a.State); err != nil {
			return err
		}
	}
	return nil
}
