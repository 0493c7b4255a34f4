// Package dungeon builds roguelike map layouts from a seed: a winding
// corridor network, rooms grown against it, and the walls and doors that
// follow from both.
package dungeon

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/dungeongen/internal/logger"
)

// Pathfinder finds a walkable route between two cells of a layout. An empty
// result means there is none.
type Pathfinder interface {
	FindPath(l *Layout, from, to Pos) []Pos
}

// ClearFinder picks a random clear cell of a layout.
type ClearFinder interface {
	RandomClear(rng *rand.Rand, l *Layout) (Pos, error)
}

// EntityFactory chooses what to place; the generator chooses where.
type EntityFactory interface {
	Furniture(rng *rand.Rand) string
	Monster(rng *rand.Rand) string
	Item(rng *rand.Rand) string
}

// Options carries the collaborators. Entities may be nil, in which case no
// furniture, monsters or items are placed.
type Options struct {
	Pathfinder Pathfinder
	Finder     ClearFinder
	Entities   EntityFactory
}

// Generator produces layouts for one seed and size. It owns its random
// source and is not safe for concurrent use.
type Generator struct {
	seed   int64
	width  int
	height int
	params Params
	opts   Options
	rng    *rand.Rand
}

// NewGenerator validates its inputs and seeds a generator.
func NewGenerator(seed int64, width, height int, params Params, opts Options) (*Generator, error) {
	if width < 3 || height < 3 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if opts.Pathfinder == nil || opts.Finder == nil {
		return nil, fmt.Errorf("%w: pathfinder and clear-cell finder are required", ErrNoCollaborator)
	}
	return &Generator{
		seed:   seed,
		width:  width,
		height: height,
		params: params,
		opts:   opts,
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

// Reseed restarts the random stream so the next Generate repeats the first.
func (g *Generator) Reseed() {
	g.rng = rand.New(rand.NewSource(g.seed))
}

// Generate runs attempts until one is accepted. Rejected attempts keep
// advancing the random stream. Sanity failures abort at once.
func (g *Generator) Generate() (*Layout, error) {
	for attempt := 1; attempt <= g.params.MaxAttempts; attempt++ {
		layout, err := g.attempt()
		if err == nil {
			layout.Attempts = attempt
			logger.Info("Layout generated",
				"seed", g.seed,
				"size", fmt.Sprintf("%dx%d", g.width, g.height),
				"attempts", attempt,
				"rooms", len(layout.Rooms))
			return layout, nil
		}
		if !errors.Is(err, errRejected) {
			logger.Error("Layout generation failed", "seed", g.seed, "attempt", attempt, "error", err)
			return nil, err
		}
		logger.Debug("Layout attempt rejected", "seed", g.seed, "attempt", attempt, "reason", err)
	}
	return nil, fmt.Errorf("%w: %d attempts for seed %d at %dx%d",
		ErrTooManyAttempts, g.params.MaxAttempts, g.seed, g.width, g.height)
}

// builder holds the state of one attempt.
type builder struct {
	params *Params
	rng    *rand.Rand
	grid   *Grid
}

func (g *Generator) attempt() (*Layout, error) {
	b := &builder{params: &g.params, rng: g.rng, grid: NewGrid(g.width, g.height)}

	edges := borderWalls(g.width, g.height)
	for _, e := range edges {
		b.grid.Stamp(e)
	}

	main, err := b.mainCorridor()
	if err != nil {
		return nil, err
	}
	branches, err := b.wriggles(main)
	if err != nil {
		return nil, err
	}

	corridors := make([]Element, 0, len(main)+len(branches))
	for _, s := range main {
		if e, ok := b.grid.Clip(s.Element); ok {
			corridors = append(corridors, e)
		}
	}
	for _, e := range branches {
		if e, ok := b.grid.Clip(e); ok {
			corridors = append(corridors, e)
		}
	}
	if err := checkCorridorCoverage(corridors, g.width, g.height, g.params.RejectCoveragePC); err != nil {
		return nil, err
	}
	for _, e := range corridors {
		b.grid.Stamp(e)
	}

	rooms, err := b.placeRooms()
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		b.grid.Stamp(e)
	}

	final, tiles, misses := materialize(b.grid)
	if err := checkSolidCoverage(misses, g.width, g.height, g.params.RejectCoverageSQ); err != nil {
		return nil, err
	}

	layout := NewLayout(g.seed, final, tiles)
	layout.Rooms = rooms
	if len(main) > 0 {
		layout.MainLength = main[len(main)-1].Cumulative
	}
	if err := g.populate(layout); err != nil {
		return nil, err
	}
	return layout, nil
}
