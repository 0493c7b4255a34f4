package dungeon

import (
	"github.com/zyedidia/generic/mapset"
)

// Layer separates what sits on a cell above its tile.
type Layer int

const (
	LayerFurniture Layer = iota
	LayerItem
	LayerMonster
	LayerStairs
)

// String returns the lowercase name of the layer
func (l Layer) String() string {
	switch l {
	case LayerFurniture:
		return "furniture"
	case LayerItem:
		return "item"
	case LayerMonster:
		return "monster"
	case LayerStairs:
		return "stairs"
	default:
		return "unknown"
	}
}

// ParseLayer is the inverse of Layer.String.
func ParseLayer(s string) (Layer, bool) {
	for l := LayerFurniture; l <= LayerStairs; l++ {
		if l.String() == s {
			return l, true
		}
	}
	return 0, false
}

// Names of the fixed placements.
const (
	NameEvidence   = "Evidence"
	NameStairsUp   = "StairsUp"
	NameStairsDown = "StairsDown"
)

// Placement is one entity put on the map by a collaborator.
type Placement struct {
	Layer Layer
	Name  string
	Pos   Pos
}

// Layout is an accepted, fully materialized map.
type Layout struct {
	Seed       int64
	Width      int
	Height     int
	Attempts   int
	MainLength int
	Grid       *Grid
	Rooms      []Room
	Placements []Placement
	StairsUp   Pos
	StairsDown Pos

	tiles    []TileKind
	occupied mapset.Set[Pos]
	blocking mapset.Set[Pos]
}

// NewLayout wraps a final grid and its tiles. tiles is row-major and must
// hold width*height entries.
func NewLayout(seed int64, grid *Grid, tiles []TileKind) *Layout {
	return &Layout{
		Seed:     seed,
		Width:    grid.width,
		Height:   grid.height,
		Grid:     grid,
		tiles:    tiles,
		occupied: mapset.New[Pos](),
		blocking: mapset.New[Pos](),
	}
}

// TileAt returns the materialized tile at p, void when p is off the map.
func (l *Layout) TileAt(p Pos) TileKind {
	if !l.Grid.InBounds(p) {
		return TileVoid
	}
	return l.tiles[p.Y*l.Width+p.X]
}

func (l *Layout) setTile(p Pos, k TileKind) {
	l.tiles[p.Y*l.Width+p.X] = k
}

// CountTiles returns how many cells materialized as k.
func (l *Layout) CountTiles(k TileKind) int {
	n := 0
	for _, t := range l.tiles {
		if t == k {
			n++
		}
	}
	return n
}

// Occupied reports whether something has been placed on p.
func (l *Layout) Occupied(p Pos) bool {
	return l.occupied.Has(p)
}

// Clear reports whether p is plain floor with nothing on it.
func (l *Layout) Clear(p Pos) bool {
	return l.TileAt(p) == TileFloor && !l.occupied.Has(p)
}

// Passable reports whether a walker can stand on p. Teleport pads do not
// count: stepping on one moves the walker elsewhere. Furniture blocks.
func (l *Layout) Passable(p Pos) bool {
	switch l.TileAt(p) {
	case TileFloor, TileDoor:
		return !l.blocking.Has(p)
	default:
		return false
	}
}

// Place records an entity on p. Furniture also blocks movement.
func (l *Layout) Place(layer Layer, name string, p Pos) {
	l.Placements = append(l.Placements, Placement{Layer: layer, Name: name, Pos: p})
	l.occupied.Put(p)
	if layer == LayerFurniture {
		l.blocking.Put(p)
	}
	if layer == LayerStairs {
		switch name {
		case NameStairsUp:
			l.StairsUp = p
		case NameStairsDown:
			l.StairsDown = p
		}
	}
}

// PlacementsIn returns the placements on one layer in placement order.
func (l *Layout) PlacementsIn(layer Layer) []Placement {
	var out []Placement
	for _, pl := range l.Placements {
		if pl.Layer == layer {
			out = append(out, pl)
		}
	}
	return out
}
