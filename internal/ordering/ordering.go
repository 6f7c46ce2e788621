// Package ordering maintains dense zero-based positions over the items of a
// container: columns within a board and cards within a column.
//
// Every function here is pure. Callers load the current order inside a
// datastore transaction, plan the change with this package and write back
// only the placements it returns.
package ordering

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/thenoetrevino/tablero/internal/models"
)

// Placement is the resting place of one item
type Placement[C, I cmp.Ordered] struct {
	Item      I
	Container C
	Position  int
}

// AppendIndex returns the position of an item appended to a container that
// already holds count items.
func AppendIndex(count int) int {
	return count
}

// CheckDense verifies that positions are exactly {0..len-1}
func CheckDense(positions []int) error {
	seen := make([]bool, len(positions))
	for _, p := range positions {
		if p < 0 || p >= len(positions) {
			return fmt.Errorf("%w: position %d out of range 0..%d", models.ErrInvalidOrderSet, p, len(positions)-1)
		}
		if seen[p] {
			return fmt.Errorf("%w: position %d used twice", models.ErrInvalidOrderSet, p)
		}
		seen[p] = true
	}
	return nil
}

// CheckOrderSet verifies that submitted is a permutation of current
func CheckOrderSet[I cmp.Ordered](current, submitted []I) error {
	members := make(map[I]bool, len(current))
	for _, id := range current {
		members[id] = false
	}

	for _, id := range submitted {
		used, ok := members[id]
		if !ok {
			return fmt.Errorf("%w: item %v is not in this container", models.ErrInvalidOrderSet, id)
		}
		if used {
			return fmt.Errorf("%w: item %v listed twice", models.ErrInvalidOrderSet, id)
		}
		members[id] = true
	}

	if len(submitted) != len(current) {
		return fmt.Errorf("%w: got %d items, container holds %d", models.ErrInvalidOrderSet, len(submitted), len(current))
	}
	return nil
}

// Renumber assigns position = index for every id
func Renumber[C, I cmp.Ordered](container C, ids []I) []Placement[C, I] {
	out := make([]Placement[C, I], len(ids))
	for i, id := range ids {
		out[i] = Placement[C, I]{Item: id, Container: container, Position: i}
	}
	return out
}

// Changes returns the placements of after whose position differs from their
// position in before. Items absent from before are always returned.
func Changes[C, I cmp.Ordered](container C, before, after []I) []Placement[C, I] {
	old := make(map[I]int, len(before))
	for i, id := range before {
		old[id] = i
	}

	var out []Placement[C, I]
	for i, id := range after {
		if p, ok := old[id]; ok && p == i {
			continue
		}
		out = append(out, Placement[C, I]{Item: id, Container: container, Position: i})
	}
	return out
}

// Remove returns ids without id, preserving relative order
func Remove[I cmp.Ordered](ids []I, id I) ([]I, error) {
	idx := slices.Index(ids, id)
	if idx < 0 {
		return nil, fmt.Errorf("item %v: %w", id, models.ErrNotFound)
	}
	out := make([]I, 0, len(ids)-1)
	out = append(out, ids[:idx]...)
	return append(out, ids[idx+1:]...), nil
}

// Insert returns ids with id placed at index. An index past the end appends.
func Insert[I cmp.Ordered](ids []I, id I, index int) ([]I, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: negative index %d", models.ErrInvalidOrderSet, index)
	}
	index = min(index, len(ids))
	out := make([]I, 0, len(ids)+1)
	out = append(out, ids[:index]...)
	out = append(out, id)
	return append(out, ids[index:]...), nil
}

// MoveWithin returns ids with id moved to index, shifting the items between
// its old and new place by one. An index past the end moves to the end.
func MoveWithin[I cmp.Ordered](ids []I, id I, index int) ([]I, error) {
	rest, err := Remove(ids, id)
	if err != nil {
		return nil, err
	}
	return Insert(rest, id, index)
}
