package ordering

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/thenoetrevino/tablero/internal/models"
)

// Move is one entry of a batch: item goes to container at index
type Move[C, I cmp.Ordered] struct {
	Item      I
	Container C
	Index     int
}

// Snapshot is the in-transaction view of every container in one scope (a
// board) and the items they hold.
type Snapshot[C, I cmp.Ordered] struct {
	containers map[C]struct{}
	items      map[I]Placement[C, I]
}

// NewSnapshot returns an empty snapshot
func NewSnapshot[C, I cmp.Ordered]() *Snapshot[C, I] {
	return &Snapshot[C, I]{
		containers: make(map[C]struct{}),
		items:      make(map[I]Placement[C, I]),
	}
}

// AddContainer records a container as part of the scope, even when empty
func (s *Snapshot[C, I]) AddContainer(c C) {
	s.containers[c] = struct{}{}
}

// Add records item at position inside container
func (s *Snapshot[C, I]) Add(container C, item I, position int) {
	s.AddContainer(container)
	s.items[item] = Placement[C, I]{Item: item, Container: container, Position: position}
}

// HasContainer reports whether c is in scope
func (s *Snapshot[C, I]) HasContainer(c C) bool {
	_, ok := s.containers[c]
	return ok
}

// Lookup returns the current placement of item
func (s *Snapshot[C, I]) Lookup(item I) (Placement[C, I], bool) {
	p, ok := s.items[item]
	return p, ok
}

// Order returns the items of container sorted by position
func (s *Snapshot[C, I]) Order(container C) []I {
	var ps []Placement[C, I]
	for _, p := range s.items {
		if p.Container == container {
			ps = append(ps, p)
		}
	}
	slices.SortFunc(ps, func(a, b Placement[C, I]) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.Item, b.Item))
	})

	out := make([]I, len(ps))
	for i, p := range ps {
		out[i] = p.Item
	}
	return out
}

// PlanBatch applies moves to the snapshot and returns the placements that
// changed. It never renumbers: after the moves every source and destination
// container must already be dense, so the caller has to submit the complete
// new order of every container it touches. Nothing is returned on error.
//
//   - unknown item: ErrNotFound
//   - destination container outside the snapshot: ErrScopeViolation
//   - item listed twice, negative index or a container left with gaps or
//     collisions: ErrInvalidOrderSet
func PlanBatch[C, I cmp.Ordered](s *Snapshot[C, I], moves []Move[C, I]) ([]Placement[C, I], error) {
	if len(moves) == 0 {
		return nil, nil
	}

	next := make(map[I]Placement[C, I], len(s.items))
	for id, p := range s.items {
		next[id] = p
	}

	touched := make(map[C]struct{})
	seen := make(map[I]struct{}, len(moves))
	for _, m := range moves {
		cur, ok := s.items[m.Item]
		if !ok {
			return nil, fmt.Errorf("item %v: %w", m.Item, models.ErrNotFound)
		}
		if !s.HasContainer(m.Container) {
			return nil, fmt.Errorf("%w: container %v", models.ErrScopeViolation, m.Container)
		}
		if _, dup := seen[m.Item]; dup {
			return nil, fmt.Errorf("%w: item %v moved twice", models.ErrInvalidOrderSet, m.Item)
		}
		if m.Index < 0 {
			return nil, fmt.Errorf("%w: negative index %d", models.ErrInvalidOrderSet, m.Index)
		}
		seen[m.Item] = struct{}{}

		touched[cur.Container] = struct{}{}
		touched[m.Container] = struct{}{}
		next[m.Item] = Placement[C, I]{Item: m.Item, Container: m.Container, Position: m.Index}
	}

	positions := make(map[C][]int, len(touched))
	for _, p := range next {
		if _, ok := touched[p.Container]; ok {
			positions[p.Container] = append(positions[p.Container], p.Position)
		}
	}
	for c := range touched {
		if err := CheckDense(positions[c]); err != nil {
			return nil, fmt.Errorf("container %v: %w", c, err)
		}
	}

	var changed []Placement[C, I]
	for id, p := range next {
		if s.items[id] != p {
			changed = append(changed, p)
		}
	}
	slices.SortFunc(changed, func(a, b Placement[C, I]) int {
		return cmp.Or(cmp.Compare(a.Container, b.Container), cmp.Compare(a.Position, b.Position))
	})
	return changed, nil
}

// Apply records placements in the snapshot
func (s *Snapshot[C, I]) Apply(placements []Placement[C, I]) {
	for _, p := range placements {
		s.Add(p.Container, p.Item, p.Position)
	}
}

// Containers returns every container in scope, sorted
func (s *Snapshot[C, I]) Containers() []C {
	out := make([]C, 0, len(s.containers))
	for c := range s.containers {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}
