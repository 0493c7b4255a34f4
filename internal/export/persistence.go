package export

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
	"gopkg.in/yaml.v3"
)

var ErrMalformed = errors.New("malformed layout document")

// Document is the serialized form of a layout.
type Document struct {
	Seed       int64           `yaml:"seed"`
	Width      int             `yaml:"width"`
	Height     int             `yaml:"height"`
	Attempts   int             `yaml:"attempts"`
	MainLength int             `yaml:"main_length"`
	SavedAt    time.Time       `yaml:"saved_at"`
	Rows       []string        `yaml:"rows"` // one tag glyph per cell
	Rooms      []dungeon.Room  `yaml:"rooms"`
	Placements []PlacementData `yaml:"placements"`
}

// PlacementData is a serialized placement
type PlacementData struct {
	Layer string `yaml:"layer"`
	Name  string `yaml:"name"`
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
}

// Tag glyphs keep room and corridor floor apart so a loaded grid matches
// the generated one exactly.
var tagGlyphs = map[dungeon.Tag]byte{
	dungeon.TagEmpty:    ' ',
	dungeon.TagCorridor: ':',
	dungeon.TagRoom:     '.',
	dungeon.TagWall:     '#',
	dungeon.TagDoor:     '+',
	dungeon.TagTeleport: '^',
}

var glyphTags = func() map[byte]dungeon.Tag {
	m := make(map[byte]dungeon.Tag, len(tagGlyphs))
	for t, g := range tagGlyphs {
		m[g] = t
	}
	return m
}()

// tileFor maps a final tag to its tile. Failed doors and inferred walls
// were already retagged when the grid was materialized, so this is exact.
func tileFor(t dungeon.Tag) dungeon.TileKind {
	switch t {
	case dungeon.TagCorridor, dungeon.TagRoom:
		return dungeon.TileFloor
	case dungeon.TagWall:
		return dungeon.TileWall
	case dungeon.TagDoor:
		return dungeon.TileDoor
	case dungeon.TagTeleport:
		return dungeon.TileTeleport
	default:
		return dungeon.TileVoid
	}
}

// FromLayout converts a layout to its document form.
func FromLayout(l *dungeon.Layout) *Document {
	doc := &Document{
		Seed:       l.Seed,
		Width:      l.Width,
		Height:     l.Height,
		Attempts:   l.Attempts,
		MainLength: l.MainLength,
		SavedAt:    time.Now().UTC(),
		Rows:       make([]string, l.Height),
		Rooms:      l.Rooms,
		Placements: make([]PlacementData, 0, len(l.Placements)),
	}

	row := make([]byte, l.Width)
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			row[x] = tagGlyphs[l.Grid.At(dungeon.Pos{X: x, Y: y})]
		}
		doc.Rows[y] = string(row)
	}

	for _, pl := range l.Placements {
		doc.Placements = append(doc.Placements, PlacementData{
			Layer: pl.Layer.String(),
			Name:  pl.Name,
			X:     pl.Pos.X,
			Y:     pl.Pos.Y,
		})
	}
	return doc
}

// Layout rebuilds the layout the document describes.
func (d *Document) Layout() (*dungeon.Layout, error) {
	if d.Width < 1 || d.Height < 1 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrMalformed, d.Width, d.Height)
	}
	if len(d.Rows) != d.Height {
		return nil, fmt.Errorf("%w: %d rows for height %d", ErrMalformed, len(d.Rows), d.Height)
	}

	grid := dungeon.NewGrid(d.Width, d.Height)
	tiles := make([]dungeon.TileKind, d.Width*d.Height)
	for y, row := range d.Rows {
		if len(row) != d.Width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrMalformed, y, len(row), d.Width)
		}
		for x := 0; x < d.Width; x++ {
			tag, ok := glyphTags[row[x]]
			if !ok {
				return nil, fmt.Errorf("%w: unknown glyph %q at (%d,%d)", ErrMalformed, row[x], x, y)
			}
			grid.Set(dungeon.Pos{X: x, Y: y}, tag)
			tiles[y*d.Width+x] = tileFor(tag)
		}
	}

	l := dungeon.NewLayout(d.Seed, grid, tiles)
	l.Attempts = d.Attempts
	l.MainLength = d.MainLength
	l.Rooms = d.Rooms

	for _, pd := range d.Placements {
		layer, ok := dungeon.ParseLayer(pd.Layer)
		if !ok {
			return nil, fmt.Errorf("%w: unknown layer %q", ErrMalformed, pd.Layer)
		}
		p := dungeon.Pos{X: pd.X, Y: pd.Y}
		if !grid.InBounds(p) {
			return nil, fmt.Errorf("%w: %s placed off the map at %v", ErrMalformed, pd.Name, p)
		}
		l.Place(layer, pd.Name, p)
	}
	return l, nil
}

// Encode marshals a layout to YAML.
func Encode(l *dungeon.Layout) ([]byte, error) {
	data, err := yaml.Marshal(FromLayout(l))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal layout: %w", err)
	}
	return data, nil
}

// Decode parses a YAML document and rebuilds its layout.
func Decode(data []byte) (*dungeon.Layout, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse layout YAML: %w", err)
	}
	return doc.Layout()
}

// SaveFile writes a layout to a YAML file
func SaveFile(l *dungeon.Layout, filename string) error {
	data, err := Encode(l)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write layout file: %w", err)
	}
	return nil
}

// LoadFile reads a layout from a YAML file
func LoadFile(filename string) (*dungeon.Layout, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	return Decode(data)
}
