// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import (
	"slices"
	"testing"
)

func ops(cmds []Command) []Op {
	out := make([]Op, len(cmds))
	for i, c := range cmds {
		out[i] = c.Op
	}
	return out
}

func TestRecordDrawOrder(t *testing.T) {
	l := RecordDraw(NewTracker(States{}), Draw{
		VertexGroups: 2,
		BinGroups:    1,
		Fills:        []Fill{{Target: ResourceColor, Value: 0xFF000000}},
		Readback:     true,
	})
	if err := l.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	want := []Op{
		OpBarrier, OpDispatch, OpCopy,
		OpBarrier, OpDispatch,
		OpBarrier, OpClear, OpBarrier,
		OpDispatchIndirect, OpBarrier, OpDispatchIndirect,
		OpBarrier, OpCopy,
	}
	cmds := l.Commands()
	if got := ops(cmds); !slices.Equal(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	if cmds[1].Stage != StageVertex || cmds[1].Groups != 2 {
		t.Errorf("vertex dispatch = %s, want vertex x2", cmds[1])
	}
	if cmds[4].Stage != StageBin || cmds[4].Groups != 1 {
		t.Errorf("bin dispatch = %s, want bin x1", cmds[4])
	}
	if cmds[8].Stage != StagePixelDepth || cmds[10].Stage != StagePixelShade {
		t.Errorf("pixel passes = %s, %s", cmds[8], cmds[10])
	}
	if cmds[8].Args != ResourceTileCounter || cmds[10].Args != ResourceTileCounter {
		t.Error("pixel passes must take their arguments from the tile counter")
	}
}

func TestRecordDrawCounterResetKeepsDimensions(t *testing.T) {
	l := RecordDraw(NewTracker(States{}), Draw{VertexGroups: 1, BinGroups: 1})
	var reset *Command
	for i, c := range l.Commands() {
		if c.Op == OpCopy && c.Dst == ResourceTileCounter {
			reset = &l.Commands()[i]
			break
		}
	}
	if reset == nil {
		t.Fatal("no counter reset recorded")
	}
	for _, r := range reset.Regions {
		if r.DstOffset < 12 && r.DstOffset+r.Size > 4 {
			t.Errorf("reset region %+v overwrites the dispatch dimensions", r)
		}
	}
	if len(reset.Regions) != 2 {
		t.Errorf("reset has %d regions, want 2", len(reset.Regions))
	}
}

func TestRecordDrawIndexed(t *testing.T) {
	l := RecordDraw(NewTracker(States{}), Draw{Indexed: true, VertexGroups: 1, BinGroups: 1})
	if err := l.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	cmds := l.Commands()
	if cmds[1].Stage != StageVertexIndexed {
		t.Errorf("vertex stage = %s, want vertex_indexed", cmds[1].Stage)
	}
	found := false
	for _, tr := range cmds[0].Transitions {
		if tr.Resource == ResourceIndices && tr.After == StateShaderRead {
			found = true
		}
	}
	if !found {
		t.Error("indexed draw did not transition indices to shader read")
	}
}

func TestRecordDrawWithoutFillsHasNoClear(t *testing.T) {
	l := RecordDraw(NewTracker(States{}), Draw{VertexGroups: 1, BinGroups: 1})
	for _, c := range l.Commands() {
		if c.Op == OpClear {
			t.Fatalf("unexpected %s", c)
		}
	}
}

func TestRecordDrawConsecutive(t *testing.T) {
	tr := NewTracker(States{})
	first := RecordDraw(tr, Draw{VertexGroups: 1, BinGroups: 1, Readback: true})
	if err := first.Err(); err != nil {
		t.Fatalf("first draw: %v", err)
	}
	second := RecordDraw(tr, Draw{VertexGroups: 1, BinGroups: 1, Readback: true})
	if err := second.Err(); err != nil {
		t.Fatalf("second draw: %v", err)
	}

	// Reset and vertices keep their states; counter, positions and
	// attributes move back for the vertex stage.
	got := second.Commands()[0].Transitions
	want := []Transition{
		{ResourceTileCounter, StateCopySource, StateCopyDest},
		{ResourcePositions, StateShaderRead, StateUnorderedAccess},
		{ResourceAttributes, StateShaderRead, StateUnorderedAccess},
	}
	if !slices.Equal(got, want) {
		t.Errorf("second draw first barrier = %v, want %v", got, want)
	}
}
