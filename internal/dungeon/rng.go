package dungeon

import "math/rand"

// randInt returns a uniform integer in [lo, hi]. The bounds may arrive in
// either order; routing arithmetic relies on that near the map edges.
func randInt(rng *rand.Rand, lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// randFloat returns a uniform float in [lo, hi).
func randFloat(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func randomDirection(rng *rand.Rand) Direction {
	return compassOrder[rng.Intn(len(compassOrder))]
}

// turn picks one of the two directions perpendicular to d.
func turn(rng *rand.Rand, d Direction) Direction {
	return d.Adjacent()[rng.Intn(2)]
}
