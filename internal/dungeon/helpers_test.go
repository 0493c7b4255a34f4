package dungeon

import (
	"errors"
	"fmt"
	"math/rand"
)

func newTestBuilder(width, height int, seed int64) *builder {
	p := DefaultParams()
	return &builder{
		params: &p,
		rng:    rand.New(rand.NewSource(seed)),
		grid:   NewGrid(width, height),
	}
}

func walledGrid(width, height int) *Grid {
	g := NewGrid(width, height)
	for _, e := range borderWalls(width, height) {
		g.Stamp(e)
	}
	return g
}

// bfsPathfinder is a breadth-first search over Layout.Passable.
type bfsPathfinder struct{}

func (bfsPathfinder) FindPath(l *Layout, from, to Pos) []Pos {
	if !l.Passable(from) || !l.Passable(to) {
		return nil
	}
	prev := map[Pos]Pos{from: from}
	queue := []Pos{from}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if p == to {
			path := []Pos{to}
			for p != from {
				p = prev[p]
				path = append([]Pos{p}, path...)
			}
			return path
		}
		for _, d := range compassOrder {
			q := p.Move(d, 1)
			if _, seen := prev[q]; seen || !l.Passable(q) {
				continue
			}
			prev[q] = p
			queue = append(queue, q)
		}
	}
	return nil
}

// randomFinder samples cells until it finds a clear one.
type randomFinder struct{}

func (randomFinder) RandomClear(rng *rand.Rand, l *Layout) (Pos, error) {
	for try := 0; try < l.Width*l.Height*4; try++ {
		p := Pos{rng.Intn(l.Width), rng.Intn(l.Height)}
		if l.Clear(p) {
			return p, nil
		}
	}
	return Pos{}, fmt.Errorf("%w: no clear cell", ErrSanityExceeded)
}

type fixedEntities struct{}

func (fixedEntities) Furniture(*rand.Rand) string { return "Crate" }
func (fixedEntities) Monster(*rand.Rand) string   { return "Dalek" }
func (fixedEntities) Item(*rand.Rand) string      { return "Tangler" }

func testOptions() Options {
	return Options{
		Pathfinder: bfsPathfinder{},
		Finder:     randomFinder{},
		Entities:   fixedEntities{},
	}
}

func isRejected(err error) bool {
	return errors.Is(err, errRejected)
}
