package pathing

import (
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
)

// ClearSampler draws random cells until it finds a clear one.
type ClearSampler struct {
	limit int
}

// NewClearSampler returns a sampler that gives up after limit draws. A
// non-positive limit means four draws per cell of the map.
func NewClearSampler(limit int) *ClearSampler {
	return &ClearSampler{limit: limit}
}

// RandomClear returns a clear cell of l, drawing x before y from rng.
func (s *ClearSampler) RandomClear(rng *rand.Rand, l *dungeon.Layout) (dungeon.Pos, error) {
	limit := s.limit
	if limit <= 0 {
		limit = l.Width * l.Height * 4
	}
	for try := 0; try < limit; try++ {
		p := dungeon.Pos{X: rng.Intn(l.Width), Y: rng.Intn(l.Height)}
		if l.Clear(p) {
			return p, nil
		}
	}
	return dungeon.Pos{}, fmt.Errorf("%w: no clear cell in %d draws on a %dx%d map",
		dungeon.ErrSanityExceeded, limit, l.Width, l.Height)
}
