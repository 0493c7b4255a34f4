package dungeon

// Direction is a compass point used for routing and room growth.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// compassOrder is the order directions are drawn in when one is picked at random.
var compassOrder = [4]Direction{North, South, East, West}

// String returns the single-letter compass name.
func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	default:
		return "?"
	}
}

// Opposite returns the direction facing the other way.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// Clockwise returns the direction a quarter turn to the right.
func (d Direction) Clockwise() Direction {
	return (d + 1) % 4
}

// Anticlockwise returns the direction a quarter turn to the left.
func (d Direction) Anticlockwise() Direction {
	return (d + 3) % 4
}

// Adjacent returns the two perpendicular directions: W,E for N/S and N,S for E/W.
func (d Direction) Adjacent() [2]Direction {
	if d.Vertical() {
		return [2]Direction{West, East}
	}
	return [2]Direction{North, South}
}

// Vertical reports whether d runs along the y axis.
func (d Direction) Vertical() bool {
	return d == North || d == South
}

// Step returns the offset of moving n cells in direction d.
func (d Direction) Step(n int) Pos {
	switch d {
	case North:
		return Pos{0, -n}
	case South:
		return Pos{0, n}
	case East:
		return Pos{n, 0}
	default:
		return Pos{-n, 0}
	}
}
