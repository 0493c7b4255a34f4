package dungeon

import "fmt"

// Params holds the tuning constants of the generator. The defaults were
// tuned by hand and are kept as-is rather than derived from the map size.
type Params struct {
	// Corridors
	MaxBends     int     `yaml:"max_bends"`
	MainWidth    int     `yaml:"main_width"`
	MinorWidth   int     `yaml:"minor_width"`
	MinLength    int     `yaml:"min_length"`
	LengthVarMin float64 `yaml:"length_var_min"`
	LengthVarMax float64 `yaml:"length_var_max"`
	MinorLength  int     `yaml:"minor_length"`
	MinorBends   int     `yaml:"minor_bends"`
	MinorFreq    int     `yaml:"minor_freq"`
	MinorStep    int     `yaml:"minor_step"`

	// Rooms
	MinRooms     int `yaml:"min_rooms"`
	MaxRooms     int `yaml:"max_rooms"`
	RoomMinWidth int `yaml:"room_min_width"`
	RoomMaxArea  int `yaml:"room_max_area"`

	// Rejection sampling
	RejectCoveragePC float64 `yaml:"reject_coverage_pc"`
	RejectCoverageSQ float64 `yaml:"reject_coverage_sq"`
	SanityLimit      int     `yaml:"sanity_limit"`
	MaxAttempts      int     `yaml:"max_attempts"`

	TeleportChance float64 `yaml:"teleport_chance"`

	// Population
	Furniture int `yaml:"furniture"`
	Monsters  int `yaml:"monsters"`
	Items     int `yaml:"items"`
	Evidence  int `yaml:"evidence"`
}

// DefaultParams returns the stock generator constants.
func DefaultParams() Params {
	return Params{
		MaxBends:     4,
		MainWidth:    2,
		MinorWidth:   1,
		MinLength:    5,
		LengthVarMin: 0.8,
		LengthVarMax: 1.3,
		MinorLength:  60,
		MinorBends:   1,
		MinorFreq:    6,
		MinorStep:    4,

		MinRooms:     4,
		MaxRooms:     12,
		RoomMinWidth: 4,
		RoomMaxArea:  80 * 14,

		RejectCoveragePC: 0.6,
		RejectCoverageSQ: 0.8,
		SanityLimit:      100,
		MaxAttempts:      1000,

		TeleportChance: 0.4,

		Furniture: 5,
		Monsters:  15,
		Items:     8,
		Evidence:  1,
	}
}

// Validate checks that the constants describe a usable generator.
func (p Params) Validate() error {
	switch {
	case p.MaxBends < 2:
		return fmt.Errorf("%w: max_bends %d is below 2", ErrInvalidParams, p.MaxBends)
	case p.MainWidth < 1 || p.MinorWidth < 1:
		return fmt.Errorf("%w: corridor widths must be positive", ErrInvalidParams)
	case p.MinLength < 1:
		return fmt.Errorf("%w: min_length must be positive", ErrInvalidParams)
	case p.LengthVarMin <= 0 || p.LengthVarMax < p.LengthVarMin:
		return fmt.Errorf("%w: length variance [%g,%g] is not a range", ErrInvalidParams, p.LengthVarMin, p.LengthVarMax)
	case p.MinorLength < 2 || p.MinorBends < 0 || p.MinorFreq < 0 || p.MinorStep < 0:
		return fmt.Errorf("%w: wriggle corridor settings out of range", ErrInvalidParams)
	case p.MinRooms < 0 || p.MaxRooms < p.MinRooms:
		return fmt.Errorf("%w: room count [%d,%d] is not a range", ErrInvalidParams, p.MinRooms, p.MaxRooms)
	case p.RoomMinWidth < 1 || p.RoomMaxArea < p.RoomMinWidth*p.RoomMinWidth:
		return fmt.Errorf("%w: room size limits out of range", ErrInvalidParams)
	case p.RejectCoveragePC < 0 || p.RejectCoveragePC > 1 || p.RejectCoverageSQ < 0 || p.RejectCoverageSQ > 1:
		return fmt.Errorf("%w: coverage thresholds must be within [0,1]", ErrInvalidParams)
	case p.SanityLimit < 1 || p.MaxAttempts < 1:
		return fmt.Errorf("%w: sanity_limit and max_attempts must be positive", ErrInvalidParams)
	case p.TeleportChance < 0 || p.TeleportChance > 1:
		return fmt.Errorf("%w: teleport_chance must be within [0,1]", ErrInvalidParams)
	case p.Furniture < 0 || p.Monsters < 0 || p.Items < 0 || p.Evidence < 0:
		return fmt.Errorf("%w: population counts must not be negative", ErrInvalidParams)
	}
	return nil
}
