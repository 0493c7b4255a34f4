package export

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
	"github.com/lawnchairsociety/dungeongen/internal/entity"
	"github.com/lawnchairsociety/dungeongen/internal/pathing"
)

// smallLayout is a 6x4 map: a corridor meeting a room through a door, with
// a teleport pad in the room.
func smallLayout() *dungeon.Layout {
	rows := []string{
		"######",
		"#::+.#",
		"#  #^#",
		"######",
	}
	doc := &Document{Seed: 9, Width: 6, Height: 4, Rows: rows}
	l, err := doc.Layout()
	if err != nil {
		panic(err)
	}
	return l
}

func TestRenderASCII(t *testing.T) {
	l := smallLayout()
	want := "######\n" +
		"#..+.#\n" +
		"#  #^#\n" +
		"######\n"
	if got := RenderASCII(l); got != want {
		t.Errorf("RenderASCII =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderPlacements(t *testing.T) {
	l := smallLayout()
	l.Place(dungeon.LayerStairs, dungeon.NameStairsUp, dungeon.Pos{X: 1, Y: 1})
	l.Place(dungeon.LayerItem, dungeon.NameEvidence, dungeon.Pos{X: 2, Y: 1})
	l.Place(dungeon.LayerFurniture, "Crate", dungeon.Pos{X: 4, Y: 1})
	l.Place(dungeon.LayerMonster, "Dalek", dungeon.Pos{X: 4, Y: 1})

	if got := Rows(l)[1]; got != "#<E+M#" {
		t.Errorf("row 1 = %q, want %q", got, "#<E+M#")
	}
}

func TestRenderGlyphPriority(t *testing.T) {
	tests := []struct {
		name   string
		first  dungeon.Placement
		second dungeon.Placement
		want   byte
	}{
		{"monster over furniture",
			dungeon.Placement{Layer: dungeon.LayerMonster, Name: "Dalek"},
			dungeon.Placement{Layer: dungeon.LayerFurniture, Name: "Table"}, 'M'},
		{"stairs over item",
			dungeon.Placement{Layer: dungeon.LayerItem, Name: "Cloaker"},
			dungeon.Placement{Layer: dungeon.LayerStairs, Name: dungeon.NameStairsDown}, '>'},
		{"item over furniture",
			dungeon.Placement{Layer: dungeon.LayerFurniture, Name: "Locker"},
			dungeon.Placement{Layer: dungeon.LayerItem, Name: "Tangler"}, 'i'},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := smallLayout()
			p := dungeon.Pos{X: 1, Y: 1}
			l.Place(tc.first.Layer, tc.first.Name, p)
			l.Place(tc.second.Layer, tc.second.Name, p)
			if got := Rows(l)[1][1]; got != tc.want {
				t.Errorf("glyph = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	l := smallLayout()
	l.Rooms = []dungeon.Room{{Seed: dungeon.Pos{X: 4, Y: 1}, Pos: dungeon.Pos{X: 4, Y: 1}, Size: dungeon.Pos{X: 1, Y: 1}, Doors: 1}}
	l.Place(dungeon.LayerStairs, dungeon.NameStairsDown, dungeon.Pos{X: 4, Y: 1})
	l.Place(dungeon.LayerStairs, dungeon.NameStairsUp, dungeon.Pos{X: 1, Y: 1})

	data, err := Encode(l)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !got.Grid.Equal(l.Grid) {
		t.Error("decoded grid differs")
	}
	if got.TileAt(dungeon.Pos{X: 3, Y: 1}) != dungeon.TileDoor {
		t.Errorf("door tile = %s", got.TileAt(dungeon.Pos{X: 3, Y: 1}))
	}
	if got.StairsUp != l.StairsUp || got.StairsDown != l.StairsDown {
		t.Errorf("stairs = %v/%v, want %v/%v", got.StairsUp, got.StairsDown, l.StairsUp, l.StairsDown)
	}
	if len(got.Rooms) != 1 || got.Rooms[0] != l.Rooms[0] {
		t.Errorf("rooms = %+v", got.Rooms)
	}
	if got.Seed != 9 {
		t.Errorf("Seed = %d, want 9", got.Seed)
	}
}

func TestDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{"no size", Document{}},
		{"row count", Document{Width: 2, Height: 2, Rows: []string{"##"}}},
		{"row width", Document{Width: 2, Height: 1, Rows: []string{"###"}}},
		{"bad glyph", Document{Width: 2, Height: 1, Rows: []string{"#x"}}},
		{"bad layer", Document{Width: 1, Height: 1, Rows: []string{"."},
			Placements: []PlacementData{{Layer: "roof", Name: "Bat"}}}},
		{"off map", Document{Width: 1, Height: 1, Rows: []string{"."},
			Placements: []PlacementData{{Layer: "item", Name: "Tangler", X: 3}}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.doc.Layout(); !errors.Is(err, ErrMalformed) {
				t.Errorf("Layout() = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestDecodeInvalidYAML(t *testing.T) {
	if _, err := Decode([]byte("rows: [unclosed")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestFileRoundTripGenerated(t *testing.T) {
	opts := dungeon.Options{
		Pathfinder: pathing.NewPathfinder(pathing.AStar),
		Finder:     pathing.NewClearSampler(0),
		Entities:   entity.DefaultFactory(),
	}
	g, err := dungeon.NewGenerator(1999, 80, 46, dungeon.DefaultParams(), opts)
	if err != nil {
		t.Fatal(err)
	}
	l, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	path := filepath.Join(t.TempDir(), "layout.yaml")
	if err := SaveFile(l, path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if !got.Grid.Equal(l.Grid) {
		t.Error("loaded grid differs from generated grid")
	}
	if RenderASCII(got) != RenderASCII(l) {
		t.Error("loaded layout renders differently")
	}
	if len(got.Placements) != len(l.Placements) {
		t.Errorf("placements = %d, want %d", len(got.Placements), len(l.Placements))
	}
	if !strings.Contains(RenderASCII(got), "<") || !strings.Contains(RenderASCII(got), ">") {
		t.Error("rendered map is missing stairs")
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
