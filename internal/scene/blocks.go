package scene

import (
	"sort"
	"sync"
)

type Cell [3]int

// Blocks is a sparse voxel store of solid unit cubes. Cell (x, y, z)
// occupies [x, x+1) on each axis.
type Blocks struct {
	mu    sync.RWMutex
	solid map[Cell]struct{}
}

func NewBlocks() *Blocks {
	return &Blocks{solid: make(map[Cell]struct{})}
}

func (b *Blocks) IsSolid(x, y, z int) bool {
	if b == nil {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.solid[Cell{x, y, z}]
	return ok
}

func (b *Blocks) Set(x, y, z int, solid bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if solid {
		b.solid[Cell{x, y, z}] = struct{}{}
		return
	}
	delete(b.solid, Cell{x, y, z})
}

// Fill marks every cell in the inclusive box between min and max solid and
// returns how many cells were added.
func (b *Blocks) Fill(min, max Cell) int {
	for axis := 0; axis < 3; axis++ {
		if min[axis] > max[axis] {
			min[axis], max[axis] = max[axis], min[axis]
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	added := 0
	for x := min[0]; x <= max[0]; x++ {
		for y := min[1]; y <= max[1]; y++ {
			for z := min[2]; z <= max[2]; z++ {
				c := Cell{x, y, z}
				if _, ok := b.solid[c]; ok {
					continue
				}
				b.solid[c] = struct{}{}
				added++
			}
		}
	}
	return added
}

func (b *Blocks) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.solid)
}

// Cells returns every solid cell ordered by y, then x, then z.
func (b *Blocks) Cells() []Cell {
	b.mu.RLock()
	cells := make([]Cell, 0, len(b.solid))
	for c := range b.solid {
		cells = append(cells, c)
	}
	b.mu.RUnlock()

	sort.Slice(cells, func(i, j int) bool {
		a, c := cells[i], cells[j]
		if a[1] != c[1] {
			return a[1] < c[1]
		}
		if a[0] != c[0] {
			return a[0] < c[0]
		}
		return a[2] < c[2]
	})
	return cells
}

// TopAt returns the y of the highest solid cell in column (x, z).
func (b *Blocks) TopAt(x, z int) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	top, found := 0, false
	for c := range b.solid {
		if c[0] != x || c[2] != z {
			continue
		}
		if !found || c[1] > top {
			top, found = c[1], true
		}
	}
	return top, found
}
