package dungeon

import "fmt"

// TileKind is what a cell becomes once the tag grid is materialized.
type TileKind uint8

const (
	TileVoid TileKind = iota
	TileFloor
	TileWall
	TileDoor // a door standing on floor
	TileTeleport
)

// String returns the lowercase name of the tile kind
func (k TileKind) String() string {
	switch k {
	case TileVoid:
		return "void"
	case TileFloor:
		return "floor"
	case TileWall:
		return "wall"
	case TileDoor:
		return "door"
	case TileTeleport:
		return "teleport"
	default:
		return "unknown"
	}
}

// side is how a door neighbour counts when classifying doorways.
type side int

const (
	sideOther side = iota
	sideOpen
	sideClosed
)

func sideOf(g *Grid, p Pos) side {
	if !g.InBounds(p) {
		return sideClosed
	}
	switch g.At(p) {
	case TagCorridor, TagRoom:
		return sideOpen
	case TagWall, TagDoor, TagEmpty:
		return sideClosed
	default:
		return sideOther
	}
}

// pairOf combines the two cells facing each other across p.
func pairOf(g *Grid, a, b Pos) side {
	sa, sb := sideOf(g, a), sideOf(g, b)
	if sa == sb {
		return sa
	}
	return sideOther
}

// isDoorway reports whether a door at p joins two open cells on one axis
// while the other axis is closed off.
func isDoorway(g *Grid, p Pos) bool {
	ns := pairOf(g, p.Move(North, 1), p.Move(South, 1))
	ew := pairOf(g, p.Move(West, 1), p.Move(East, 1))
	return (ns == sideOpen && ew == sideClosed) || (ns == sideClosed && ew == sideOpen)
}

// touchesStructure reports whether any of the eight neighbours of p is tagged.
func touchesStructure(g *Grid, p Pos) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			q := Pos{p.X + dx, p.Y + dy}
			if q == p || !g.InBounds(q) {
				continue
			}
			if g.At(q) != TagEmpty {
				return true
			}
		}
	}
	return false
}

// materialize turns the tag grid into tiles in one pass. The returned grid
// is a copy with failed doors and inferred walls retagged as WALL; misses
// counts interior cells that stayed void.
func materialize(g *Grid) (*Grid, []TileKind, int) {
	final := g.Clone()
	tiles := make([]TileKind, g.width*g.height)
	misses := 0

	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			p := Pos{x, y}
			i := y*g.width + x

			switch t := g.At(p); t {
			case TagCorridor, TagRoom:
				tiles[i] = TileFloor
			case TagWall:
				tiles[i] = TileWall
			case TagDoor:
				if isDoorway(g, p) {
					tiles[i] = TileDoor
				} else {
					tiles[i] = TileWall
					final.Set(p, TagWall)
				}
			case TagTeleport:
				tiles[i] = TileTeleport
			case TagEmpty:
				if touchesStructure(g, p) {
					tiles[i] = TileWall
					final.Set(p, TagWall)
				} else {
					tiles[i] = TileVoid
					misses++
				}
			default:
				panic(fmt.Sprintf("dungeon: unknown tag %d at %v", t, p))
			}
		}
	}
	return final, tiles, misses
}
