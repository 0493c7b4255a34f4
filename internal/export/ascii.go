// Package export renders layouts as ASCII and reads and writes them as YAML.
package export

import (
	"io"
	"strings"

	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
)

func tileGlyph(k dungeon.TileKind) byte {
	switch k {
	case dungeon.TileWall:
		return '#'
	case dungeon.TileFloor:
		return '.'
	case dungeon.TileDoor:
		return '+'
	case dungeon.TileTeleport:
		return '^'
	default:
		return ' '
	}
}

// placementGlyph returns the symbol drawn for an entity and its drawing
// priority; higher priorities hide lower ones on a shared cell.
func placementGlyph(pl dungeon.Placement) (byte, int) {
	switch pl.Layer {
	case dungeon.LayerStairs:
		if pl.Name == dungeon.NameStairsUp {
			return '<', 4
		}
		return '>', 4
	case dungeon.LayerMonster:
		return 'M', 3
	case dungeon.LayerItem:
		if pl.Name == dungeon.NameEvidence {
			return 'E', 2
		}
		return 'i', 2
	default:
		return '&', 1
	}
}

// Rows returns the map as one string per row.
func Rows(l *dungeon.Layout) []string {
	cells := make([][]byte, l.Height)
	for y := range cells {
		row := make([]byte, l.Width)
		for x := range row {
			row[x] = tileGlyph(l.TileAt(dungeon.Pos{X: x, Y: y}))
		}
		cells[y] = row
	}

	prio := make(map[dungeon.Pos]int)
	for _, pl := range l.Placements {
		if !l.Grid.InBounds(pl.Pos) {
			continue
		}
		glyph, p := placementGlyph(pl)
		if p >= prio[pl.Pos] {
			cells[pl.Pos.Y][pl.Pos.X] = glyph
			prio[pl.Pos] = p
		}
	}

	rows := make([]string, l.Height)
	for y, row := range cells {
		rows[y] = string(row)
	}
	return rows
}

// RenderASCII returns the whole map, one line per row.
func RenderASCII(l *dungeon.Layout) string {
	var b strings.Builder
	for _, row := range Rows(l) {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteASCII writes RenderASCII(l) to w.
func WriteASCII(w io.Writer, l *dungeon.Layout) error {
	_, err := io.WriteString(w, RenderASCII(l))
	return err
}

// Legend explains the glyphs used by RenderASCII.
func Legend() string {
	return `
Legend:
  #  Wall
  .  Floor (room or corridor)
  +  Door
  ^  Teleport pad
  <  Stairs up
  >  Stairs down
  M  Monster
  i  Item
  E  Evidence
  &  Furniture
`
}
