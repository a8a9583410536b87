// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import (
	"errors"
	"fmt"
)

// ErrHazard is returned when a command touches a resource that is not in
// the state the command requires, i.e. a barrier is missing or wrong.
var ErrHazard = errors.New("frame: resource hazard")

// Op is the kind of a recorded command.
type Op uint8

const (
	OpBarrier Op = iota
	OpCopy
	OpDispatch
	OpDispatchIndirect
	OpClear
)

// String returns the op name.
func (o Op) String() string {
	switch o {
	case OpBarrier:
		return "barrier"
	case OpCopy:
		return "copy"
	case OpDispatch:
		return "dispatch"
	case OpDispatchIndirect:
		return "dispatch_indirect"
	case OpClear:
		return "clear"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Transition moves one resource between states. Before == After ==
// StateUnorderedAccess orders two writers of the same resource.
type Transition struct {
	Resource Resource
	Before   State
	After    State
}

// CopyRegion is one byte range of a buffer-to-buffer copy.
type CopyRegion struct {
	SrcOffset uint64
	DstOffset uint64
	Size      uint64
}

// Command is one recorded operation. Only the fields of its Op are set.
type Command struct {
	Op Op

	// OpBarrier
	Transitions []Transition

	// OpCopy
	Src, Dst Resource
	Regions  []CopyRegion

	// OpDispatch, OpDispatchIndirect
	Stage  Stage
	Groups uint32

	// OpDispatchIndirect
	Args       Resource
	ArgsOffset uint64

	// OpClear
	Target Resource
	Value  uint32
}

// String returns a compact description of the command for logs and test
// failure messages.
func (c Command) String() string {
	switch c.Op {
	case OpBarrier:
		s := "barrier"
		for _, t := range c.Transitions {
			s += fmt.Sprintf(" %s:%s->%s", t.Resource, t.Before, t.After)
		}
		return s
	case OpCopy:
		var n uint64
		for _, r := range c.Regions {
			n += r.Size
		}
		return fmt.Sprintf("copy %s->%s %dB", c.Src, c.Dst, n)
	case OpDispatch:
		return fmt.Sprintf("dispatch %s x%d", c.Stage, c.Groups)
	case OpDispatchIndirect:
		return fmt.Sprintf("dispatch_indirect %s args=%s+%d", c.Stage, c.Args, c.ArgsOffset)
	case OpClear:
		return fmt.Sprintf("clear %s=%#08x", c.Target, c.Value)
	default:
		return c.Op.String()
	}
}

// List records the commands of one draw. Transitions take their Before state
// from the tracker, so callers only name the state they need next.
//
// Every recorded command is applied to the tracker; the first hazard is kept
// and reported by Err.
type List struct {
	tracker *Tracker
	cmds    []Command
	err     error
}

// NewList returns an empty list recording against t.
func NewList(t *Tracker) *List {
	return &List{tracker: t, cmds: make([]Command, 0, 16)}
}

func (l *List) record(c Command) {
	if err := l.tracker.Apply(c); err != nil && l.err == nil {
		l.err = fmt.Errorf("command %d (%s): %w", len(l.cmds), c, err)
	}
	l.cmds = append(l.cmds, c)
}

// Barrier records the transitions needed to bring every access into its
// state. Resources already in the requested state are skipped; when all of
// them are, nothing is recorded.
func (l *List) Barrier(accesses ...Access) {
	var ts []Transition
	for _, a := range accesses {
		cur := l.tracker.State(a.Resource)
		if cur == a.State {
			continue
		}
		ts = append(ts, Transition{Resource: a.Resource, Before: cur, After: a.State})
	}
	if len(ts) == 0 {
		return
	}
	l.record(Command{Op: OpBarrier, Transitions: ts})
}

// UAVBarrier orders successive unordered-access writers of the resources.
func (l *List) UAVBarrier(resources ...Resource) {
	ts := make([]Transition, 0, len(resources))
	for _, r := range resources {
		ts = append(ts, Transition{Resource: r, Before: StateUnorderedAccess, After: StateUnorderedAccess})
	}
	l.record(Command{Op: OpBarrier, Transitions: ts})
}

// Copy records a buffer-to-buffer copy.
func (l *List) Copy(src, dst Resource, regions ...CopyRegion) {
	l.record(Command{Op: OpCopy, Src: src, Dst: dst, Regions: regions})
}

// Dispatch records a direct dispatch of groups workgroups.
func (l *List) Dispatch(stage Stage, groups uint32) {
	l.record(Command{Op: OpDispatch, Stage: stage, Groups: groups})
}

// DispatchIndirect records a dispatch whose group counts are read from args
// at offset when the command executes.
func (l *List) DispatchIndirect(stage Stage, args Resource, offset uint64) {
	l.record(Command{Op: OpDispatchIndirect, Stage: stage, Args: args, ArgsOffset: offset})
}

// Clear records a fill of target with value.
func (l *List) Clear(target Resource, value uint32) {
	l.record(Command{Op: OpClear, Stage: StageClear, Target: target, Value: value})
}

// Commands returns the recorded commands.
func (l *List) Commands() []Command { return l.cmds }

// Err returns the first hazard found while recording.
func (l *List) Err() error { return l.err }
