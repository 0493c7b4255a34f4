// Package pathing supplies the walking collaborators the dungeon generator
// needs: a route finder over passable cells and a sampler for clear cells.
package pathing

import (
	"fmt"
	"strings"

	"codeberg.org/anaseto/gruid"
	"codeberg.org/anaseto/gruid/paths"

	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
)

// Algorithm selects how routes are searched.
type Algorithm int

const (
	AStar Algorithm = iota
	JumpPoint
)

func (a Algorithm) String() string {
	switch a {
	case AStar:
		return "astar"
	case JumpPoint:
		return "jps"
	default:
		return "unknown"
	}
}

// ParseAlgorithm accepts the names returned by Algorithm.String.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(s) {
	case "", "astar", "a*":
		return AStar, nil
	case "jps", "jump", "jumppoint":
		return JumpPoint, nil
	default:
		return AStar, fmt.Errorf("unknown path algorithm %q", s)
	}
}

// Pathfinder finds cardinal routes between passable cells of a layout. The
// underlying path range is reused while the layout size stays the same, so a
// Pathfinder must not be shared between goroutines.
type Pathfinder struct {
	algo Algorithm
	pr   *paths.PathRange
	size dungeon.Pos
}

// NewPathfinder returns a Pathfinder using the given algorithm.
func NewPathfinder(algo Algorithm) *Pathfinder {
	return &Pathfinder{algo: algo}
}

func (pf *Pathfinder) rangeFor(l *dungeon.Layout) *paths.PathRange {
	size := dungeon.Pos{X: l.Width, Y: l.Height}
	if pf.pr == nil || pf.size != size {
		pf.pr = paths.NewPathRange(gruid.NewRange(0, 0, l.Width, l.Height))
		pf.size = size
	}
	return pf.pr
}

// FindPath returns the cells from one end to the other, both included, or
// nil when they are not connected.
func (pf *Pathfinder) FindPath(l *dungeon.Layout, from, to dungeon.Pos) []dungeon.Pos {
	if !l.Passable(from) || !l.Passable(to) {
		return nil
	}
	pr := pf.rangeFor(l)

	var route []gruid.Point
	switch pf.algo {
	case JumpPoint:
		passable := func(p gruid.Point) bool { return l.Passable(toPos(p)) }
		route = pr.JPSPath(nil, toPoint(from), toPoint(to), passable, false)
	default:
		route = pr.AstarPath(&walker{l: l}, toPoint(from), toPoint(to))
	}
	if len(route) == 0 {
		return nil
	}

	out := make([]dungeon.Pos, len(route))
	for i, p := range route {
		out[i] = toPos(p)
	}
	return out
}

// walker implements paths.Astar over a layout.
type walker struct {
	l   *dungeon.Layout
	nbs paths.Neighbors
}

func (w *walker) Neighbors(p gruid.Point) []gruid.Point {
	return w.nbs.Cardinal(p, func(q gruid.Point) bool {
		return w.l.Passable(toPos(q))
	})
}

func (w *walker) Cost(p, q gruid.Point) int {
	return 1
}

func (w *walker) Estimation(p, q gruid.Point) int {
	return paths.DistanceManhattan(p, q)
}

func toPoint(p dungeon.Pos) gruid.Point {
	return gruid.Point{X: p.X, Y: p.Y}
}

func toPos(p gruid.Point) dungeon.Pos {
	return dungeon.Pos{X: p.X, Y: p.Y}
}
