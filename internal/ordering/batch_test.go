package ordering

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/thenoetrevino/tablero/internal/models"
)

// newTestSnapshot builds X=[A(0), B(1)], Y=[C(0)] and an empty Z
func newTestSnapshot() *Snapshot[string, string] {
	s := NewSnapshot[string, string]()
	s.Add("X", "A", 0)
	s.Add("X", "B", 1)
	s.Add("Y", "C", 0)
	s.AddContainer("Z")
	return s
}

func TestPlanBatch_CrossContainerWithCompaction(t *testing.T) {
	t.Parallel()

	s := newTestSnapshot()
	moves := []Move[string, string]{
		{Item: "A", Container: "Y", Index: 0},
		{Item: "C", Container: "Y", Index: 1},
		{Item: "B", Container: "X", Index: 0},
	}

	changed, err := PlanBatch(s, moves)
	if err != nil {
		t.Fatalf("PlanBatch failed: %v", err)
	}

	want := []Placement[string, string]{
		{Item: "B", Container: "X", Position: 0},
		{Item: "A", Container: "Y", Position: 0},
		{Item: "C", Container: "Y", Position: 1},
	}
	if diff := cmp.Diff(want, changed); diff != "" {
		t.Errorf("changed placements mismatch (-want +got):\n%s", diff)
	}

	s.Apply(changed)
	if diff := cmp.Diff([]string{"B"}, s.Order("X")); diff != "" {
		t.Errorf("X mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "C"}, s.Order("Y")); diff != "" {
		t.Errorf("Y mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanBatch_RejectsGapsWithoutCompaction(t *testing.T) {
	t.Parallel()

	s := newTestSnapshot()
	// A leaves X without B being renumbered, and collides with C in Y
	_, err := PlanBatch(s, []Move[string, string]{{Item: "A", Container: "Y", Index: 0}})
	if !errors.Is(err, models.ErrInvalidOrderSet) {
		t.Fatalf("Expected ErrInvalidOrderSet, got %v", err)
	}

	// nothing was applied to the snapshot
	if diff := cmp.Diff([]string{"A", "B"}, s.Order("X")); diff != "" {
		t.Errorf("X changed (-want +got):\n%s", diff)
	}
}

func TestPlanBatch_InvalidItemAbortsWholeBatch(t *testing.T) {
	t.Parallel()

	s := newTestSnapshot()
	moves := []Move[string, string]{
		{Item: "A", Container: "Y", Index: 0},
		{Item: "C", Container: "Y", Index: 1},
		{Item: "B", Container: "X", Index: 0},
		{Item: "nope", Container: "X", Index: 1},
	}

	changed, err := PlanBatch(s, moves)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if changed != nil {
		t.Errorf("Expected no placements, got %v", changed)
	}
}

func TestPlanBatch_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		moves []Move[string, string]
		want  error
	}{
		{
			name:  "foreign container",
			moves: []Move[string, string]{{Item: "C", Container: "other-board", Index: 0}},
			want:  models.ErrScopeViolation,
		},
		{
			name: "duplicate item",
			moves: []Move[string, string]{
				{Item: "C", Container: "Y", Index: 0},
				{Item: "C", Container: "Z", Index: 0},
			},
			want: models.ErrInvalidOrderSet,
		},
		{
			name:  "negative index",
			moves: []Move[string, string]{{Item: "C", Container: "Y", Index: -1}},
			want:  models.ErrInvalidOrderSet,
		},
		{
			name:  "gap in destination",
			moves: []Move[string, string]{{Item: "C", Container: "Z", Index: 1}},
			want:  models.ErrInvalidOrderSet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlanBatch(newTestSnapshot(), tt.moves)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPlanBatch_MoveToEmptyContainer(t *testing.T) {
	t.Parallel()

	s := newTestSnapshot()
	changed, err := PlanBatch(s, []Move[string, string]{{Item: "C", Container: "Z", Index: 0}})
	if err != nil {
		t.Fatalf("PlanBatch failed: %v", err)
	}
	if diff := cmp.Diff([]Placement[string, string]{{Item: "C", Container: "Z", Position: 0}}, changed); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanBatch_EmptyAndNoop(t *testing.T) {
	t.Parallel()

	s := newTestSnapshot()
	changed, err := PlanBatch(s, nil)
	if err != nil || changed != nil {
		t.Fatalf("Expected nil, nil for empty batch, got %v, %v", changed, err)
	}

	changed, err = PlanBatch(s, []Move[string, string]{{Item: "A", Container: "X", Index: 0}})
	if err != nil {
		t.Fatalf("PlanBatch failed: %v", err)
	}
	if len(changed) != 0 {
		t.Errorf("Expected no changes for a move to the current place, got %v", changed)
	}
}

func TestSnapshot_Containers(t *testing.T) {
	t.Parallel()

	if diff := cmp.Diff([]string{"X", "Y", "Z"}, newTestSnapshot().Containers()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
