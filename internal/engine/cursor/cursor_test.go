package cursor

import (
	"testing"
)

// Position Tests

func TestPositionCompare(t *testing.T) {
	tests := []struct {
		a, b Position
		want int
	}{
		{Pos(0, 0), Pos(0, 0), 0},
		{Pos(0, 1), Pos(0, 2), -1},
		{Pos(1, 0), Pos(0, 9), 1},
		{Pos(2, 5), Pos(3, 0), -1},
	}
	for _, tt := range tests {
		if got := tt.a.Compare(tt.b); got != tt.want {
			t.Errorf("%s.Compare(%s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPositionTranslateClamps(t *testing.T) {
	p := Pos(1, 2).Translate(-5, -5)
	if p != Pos(0, 0) {
		t.Errorf("expected (0:0), got %s", p)
	}
	if Pos(0, 0).Left() != Pos(0, 0) {
		t.Error("Left at column 0 should stay put")
	}
}

func TestMinMax(t *testing.T) {
	a, b := Pos(1, 4), Pos(0, 8)
	if Min(a, b) != b || Max(a, b) != a {
		t.Errorf("unexpected Min/Max for %s %s", a, b)
	}
}

// Range Tests

func TestRangeOrdered(t *testing.T) {
	r := NewRange(Pos(2, 0), Pos(1, 3))
	if r.IsForward() {
		t.Error("range should be backward")
	}
	s, e := r.Ordered()
	if s != Pos(1, 3) || e != Pos(2, 0) {
		t.Errorf("unexpected ordered bounds %s %s", s, e)
	}
	if !r.Contains(Pos(1, 7)) {
		t.Error("range should contain (1:7)")
	}
	if r.Contains(Pos(2, 1)) {
		t.Error("range should not contain (2:1)")
	}
}

func TestRangeCollapse(t *testing.T) {
	r := NewRange(Pos(0, 1), Pos(0, 5)).Collapse()
	if !r.IsEmpty() || r.Stop != Pos(0, 5) {
		t.Errorf("unexpected collapse result %s", r)
	}
}

// Set Tests

func TestSetNeverEmpty(t *testing.T) {
	cs := NewSetFromSlice(nil)
	if cs.Len() != 1 {
		t.Fatalf("expected 1 cursor, got %d", cs.Len())
	}
	cs.Replace(nil)
	if cs.Len() != 1 {
		t.Errorf("Replace(nil) should keep primary, got %d cursors", cs.Len())
	}
}

func TestSetRemoveIndicesKeepsPrimary(t *testing.T) {
	cs := NewSetFromSlice([]Range{
		At(Pos(0, 0)),
		At(Pos(1, 0)),
		At(Pos(2, 0)),
		At(Pos(3, 0)),
	})

	cs.RemoveIndices([]int{0, 1, 3, 3})

	if cs.Len() != 2 {
		t.Fatalf("expected 2 cursors, got %d", cs.Len())
	}
	if cs.Primary() != At(Pos(0, 0)) {
		t.Errorf("primary changed to %s", cs.Primary())
	}
	if cs.Get(1) != At(Pos(2, 0)) {
		t.Errorf("expected surviving cursor at line 2, got %s", cs.Get(1))
	}
}

func TestSetRemoveIndicesUnsorted(t *testing.T) {
	cs := NewSetFromSlice([]Range{
		At(Pos(0, 0)),
		At(Pos(1, 0)),
		At(Pos(2, 0)),
		At(Pos(3, 0)),
	})

	cs.RemoveIndices([]int{1, 3, 2})

	if cs.Len() != 1 || cs.Primary() != At(Pos(0, 0)) {
		t.Errorf("expected only the primary to remain, got %v", cs.All())
	}
}

func TestSetOrderPreserved(t *testing.T) {
	cs := NewSet(At(Pos(5, 0)))
	cs.Append(At(Pos(1, 0)))
	cs.Append(At(Pos(3, 0)))

	stops := cs.Stops()
	want := []Position{Pos(5, 0), Pos(1, 0), Pos(3, 0)}
	for i := range want {
		if stops[i] != want[i] {
			t.Errorf("stop %d: expected %s, got %s", i, want[i], stops[i])
		}
	}
}

func TestSetCloneIndependent(t *testing.T) {
	cs := NewSet(At(Pos(0, 0)))
	clone := cs.Clone()
	clone.Set(0, At(Pos(9, 9)))
	if cs.Primary() != At(Pos(0, 0)) {
		t.Error("clone should not alias the original")
	}
	if cs.Equal(clone) {
		t.Error("sets should differ")
	}
}

// Transform Tests

func TestTransformPosition(t *testing.T) {
	tests := []struct {
		name string
		p    Position
		e    Edit
		want Position
	}{
		{"before edit", Pos(0, 1), Edit{Pos(0, 3), Pos(0, 3), "xy"}, Pos(0, 1)},
		{"at insert point", Pos(0, 3), Edit{Pos(0, 3), Pos(0, 3), "xy"}, Pos(0, 5)},
		{"after on same line", Pos(0, 6), Edit{Pos(0, 3), Pos(0, 5), ""}, Pos(0, 4)},
		{"inside deletion", Pos(0, 4), Edit{Pos(0, 3), Pos(0, 5), ""}, Pos(0, 3)},
		{"later line after newline insert", Pos(2, 1), Edit{Pos(0, 0), Pos(0, 0), "a\nb\n"}, Pos(4, 1)},
		{"same line after newline insert", Pos(0, 4), Edit{Pos(0, 2), Pos(0, 2), "a\nbc"}, Pos(1, 4)},
		{"line join", Pos(1, 2), Edit{Pos(0, 5), Pos(1, 0), ""}, Pos(0, 7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TransformPosition(tt.p, tt.e); got != tt.want {
				t.Errorf("TransformPosition(%s) = %s, want %s", tt.p, got, tt.want)
			}
		})
	}
}
