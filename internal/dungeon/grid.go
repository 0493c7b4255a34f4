package dungeon

import (
	"fmt"
	"math"
)

// Pos is a cell coordinate; x grows east, y grows south.
type Pos struct {
	X, Y int
}

func (p Pos) Add(q Pos) Pos { return Pos{p.X + q.X, p.Y + q.Y} }
func (p Pos) Sub(q Pos) Pos { return Pos{p.X - q.X, p.Y - q.Y} }

// Move returns p moved n cells in direction d. Negative n moves backwards.
func (p Pos) Move(d Direction, n int) Pos {
	return p.Add(d.Step(n))
}

// DistanceTo returns the euclidean distance between p and q.
func (p Pos) DistanceTo(q Pos) float64 {
	return math.Hypot(float64(q.X-p.X), float64(q.Y-p.Y))
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Tag classifies a grid cell during generation. A cell carries exactly one tag.
type Tag uint8

const (
	TagEmpty Tag = iota
	TagCorridor
	TagRoom
	TagWall
	TagDoor
	TagTeleport
)

// String returns the lowercase name of the tag
func (t Tag) String() string {
	switch t {
	case TagEmpty:
		return "empty"
	case TagCorridor:
		return "corridor"
	case TagRoom:
		return "room"
	case TagWall:
		return "wall"
	case TagDoor:
		return "door"
	case TagTeleport:
		return "teleport"
	default:
		return "unknown"
	}
}

// Element is one rectangular write to the grid. Origin, Dir and Length are
// only meaningful for corridor legs.
type Element struct {
	Tag    Tag
	Pos    Pos
	Size   Pos
	Origin Pos
	Dir    Direction
	Length int
}

// End returns the exclusive bottom-right corner of the element.
func (e Element) End() Pos {
	return e.Pos.Add(e.Size)
}

// Grid is the tag array for one generation attempt.
type Grid struct {
	width  int
	height int
	cells  []Tag
}

// NewGrid creates an all-empty grid.
func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]Tag, width*height),
	}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// InBounds reports whether p lies on the grid.
func (g *Grid) InBounds(p Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

func (g *Grid) index(p Pos) int {
	if !g.InBounds(p) {
		panic(fmt.Sprintf("dungeon: cell %v outside %dx%d grid", p, g.width, g.height))
	}
	return p.Y*g.width + p.X
}

// At returns the tag at p. p must be in bounds.
func (g *Grid) At(p Pos) Tag {
	return g.cells[g.index(p)]
}

// Set overwrites the tag at p. p must be in bounds.
func (g *Grid) Set(p Pos, t Tag) {
	g.cells[g.index(p)] = t
}

// Stamp writes e.Tag over every cell in [e.Pos, e.Pos+e.Size). Elements with
// no area are ignored. A rectangle reaching outside the grid means a caller
// skipped Clip, and panics.
func (g *Grid) Stamp(e Element) {
	if e.Size.X <= 0 || e.Size.Y <= 0 {
		return
	}
	end := e.End()
	if e.Pos.X < 0 || e.Pos.Y < 0 || end.X > g.width || end.Y > g.height {
		panic(fmt.Sprintf("dungeon: cannot stamp %s at %v size %v on %dx%d grid",
			e.Tag, e.Pos, e.Size, g.width, g.height))
	}
	for y := e.Pos.Y; y < end.Y; y++ {
		row := g.cells[y*g.width : (y+1)*g.width]
		for x := e.Pos.X; x < end.X; x++ {
			row[x] = e.Tag
		}
	}
}

// Clip trims e to the grid. It reports false when nothing of e is left.
func (g *Grid) Clip(e Element) (Element, bool) {
	if e.Size.X <= 0 || e.Size.Y <= 0 {
		return e, false
	}
	end := e.End()
	start := Pos{max(e.Pos.X, 0), max(e.Pos.Y, 0)}
	end = Pos{min(end.X, g.width), min(end.Y, g.height)}
	if start.X >= end.X || start.Y >= end.Y {
		return e, false
	}
	e.Pos = start
	e.Size = end.Sub(start)
	return e, true
}

// Count returns how many cells carry t.
func (g *Grid) Count(t Tag) int {
	n := 0
	for _, c := range g.cells {
		if c == t {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{width: g.width, height: g.height, cells: make([]Tag, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// Equal reports whether both grids have the same size and tags.
func (g *Grid) Equal(o *Grid) bool {
	if o == nil || g.width != o.width || g.height != o.height {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Row returns a copy of row y.
func (g *Grid) Row(y int) []Tag {
	row := make([]Tag, g.width)
	copy(row, g.cells[y*g.width:(y+1)*g.width])
	return row
}

// borderWalls are the four map edges, in the order they are stamped.
func borderWalls(width, height int) []Element {
	return []Element{
		{Tag: TagWall, Pos: Pos{0, 0}, Size: Pos{width - 1, 1}},
		{Tag: TagWall, Pos: Pos{0, 0}, Size: Pos{1, height - 1}},
		{Tag: TagWall, Pos: Pos{width - 1, 0}, Size: Pos{1, height}},
		{Tag: TagWall, Pos: Pos{0, height - 1}, Size: Pos{width, 1}},
	}
}
