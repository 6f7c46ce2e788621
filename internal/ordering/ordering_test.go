package ordering

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/thenoetrevino/tablero/internal/models"
)

func TestCheckDense(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		positions []int
		wantErr   bool
	}{
		{"empty", nil, false},
		{"single", []int{0}, false},
		{"unordered", []int{2, 0, 1}, false},
		{"gap", []int{0, 2}, true},
		{"duplicate", []int{0, 0}, true},
		{"negative", []int{-1, 0}, true},
		{"starts at one", []int{1, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDense(tt.positions)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckDense(%v) error = %v, wantErr %v", tt.positions, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, models.ErrInvalidOrderSet) {
				t.Errorf("Expected ErrInvalidOrderSet, got %v", err)
			}
		})
	}
}

func TestCheckOrderSet(t *testing.T) {
	t.Parallel()

	current := []string{"A", "B", "C"}
	tests := []struct {
		name      string
		submitted []string
		wantErr   bool
	}{
		{"same order", []string{"A", "B", "C"}, false},
		{"permutation", []string{"C", "A", "B"}, false},
		{"omission", []string{"A", "B"}, true},
		{"addition", []string{"A", "B", "C", "D"}, true},
		{"foreign id", []string{"A", "B", "X"}, true},
		{"duplicate", []string{"A", "A", "B"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckOrderSet(current, tt.submitted)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckOrderSet error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, models.ErrInvalidOrderSet) {
				t.Errorf("Expected ErrInvalidOrderSet, got %v", err)
			}
		})
	}
}

func TestAppendIndex(t *testing.T) {
	t.Parallel()

	// [A(0), B(1)] + D -> D(2)
	order := []string{"A", "B"}
	idx := AppendIndex(len(order))
	if idx != 2 {
		t.Fatalf("Expected index 2, got %d", idx)
	}
	order, err := Insert(order, "D", idx)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if diff := cmp.Diff([]string{"A", "B", "D"}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestRemove_PreservesOrder(t *testing.T) {
	t.Parallel()

	// [A(0), B(1), C(2)] delete B -> [A(0), C(1)]
	before := []string{"A", "B", "C"}
	after, err := Remove(before, "B")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	want := []Placement[string, string]{
		{Item: "A", Container: "X", Position: 0},
		{Item: "C", Container: "X", Position: 1},
	}
	if diff := cmp.Diff(want, Renumber("X", after)); diff != "" {
		t.Errorf("placements mismatch (-want +got):\n%s", diff)
	}

	changes := Changes("X", before, after)
	if diff := cmp.Diff([]Placement[string, string]{{Item: "C", Container: "X", Position: 1}}, changes); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestRemove_Missing(t *testing.T) {
	t.Parallel()

	_, err := Remove([]string{"A"}, "Z")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMoveWithin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		id    string
		index int
		want  []string
	}{
		{"to front", "C", 0, []string{"C", "A", "B"}},
		{"to back", "A", 2, []string{"B", "C", "A"}},
		{"past end", "A", 10, []string{"B", "C", "A"}},
		{"same place", "B", 1, []string{"A", "B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MoveWithin([]string{"A", "B", "C"}, tt.id, tt.index)
			if err != nil {
				t.Fatalf("MoveWithin failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := MoveWithin([]string{"A"}, "A", -1); !errors.Is(err, models.ErrInvalidOrderSet) {
		t.Errorf("Expected ErrInvalidOrderSet for negative index, got %v", err)
	}
}

func TestReorder_ScenarioAndIdempotence(t *testing.T) {
	t.Parallel()

	// [A(0), B(1), C(2)] reorder [C, A, B] -> C(0), A(1), B(2)
	current := []string{"A", "B", "C"}
	submitted := []string{"C", "A", "B"}
	if err := CheckOrderSet(current, submitted); err != nil {
		t.Fatalf("CheckOrderSet failed: %v", err)
	}
	want := []Placement[string, string]{
		{Item: "C", Container: "X", Position: 0},
		{Item: "A", Container: "X", Position: 1},
		{Item: "B", Container: "X", Position: 2},
	}
	if diff := cmp.Diff(want, Changes("X", current, submitted)); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}

	// submitting the resulting order again changes nothing
	if changes := Changes("X", submitted, submitted); len(changes) != 0 {
		t.Errorf("Expected no changes on repeated reorder, got %v", changes)
	}
	// no-op reorder of the current order changes nothing
	if changes := Changes("X", current, current); len(changes) != 0 {
		t.Errorf("Expected no changes on no-op reorder, got %v", changes)
	}
}

// TestDensity_RandomOperations drives random append/remove/reorder sequences
// and checks that positions stay dense after each one.
func TestDensity_RandomOperations(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	var order []int
	positions := map[int]int{}
	next := 0

	apply := func(before, after []int) {
		for _, p := range Changes("c", before, after) {
			positions[p.Item] = p.Position
		}
	}

	for step := 0; step < 500; step++ {
		before := order
		switch op := rng.Intn(3); {
		case op == 0 || len(order) == 0:
			id := next
			next++
			var err error
			order, err = Insert(order, id, AppendIndex(len(order)))
			if err != nil {
				t.Fatalf("step %d: Insert failed: %v", step, err)
			}
		case op == 1:
			id := order[rng.Intn(len(order))]
			var err error
			order, err = Remove(order, id)
			if err != nil {
				t.Fatalf("step %d: Remove failed: %v", step, err)
			}
			delete(positions, id)
		default:
			shuffled := append([]int(nil), order...)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
			if err := CheckOrderSet(order, shuffled); err != nil {
				t.Fatalf("step %d: CheckOrderSet failed: %v", step, err)
			}
			order = shuffled
		}
		apply(before, order)

		got := make([]int, 0, len(positions))
		for _, p := range positions {
			got = append(got, p)
		}
		if err := CheckDense(got); err != nil {
			t.Fatalf("step %d: positions not dense: %v", step, err)
		}
		for i, id := range order {
			if positions[id] != i {
				t.Fatalf("step %d: item %d at %d, expected %d", step, id, positions[id], i)
			}
		}
	}
}
