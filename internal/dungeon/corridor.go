package dungeon

// Segment is one straight leg of the main corridor. Cumulative is the main
// corridor length up to and including this leg.
type Segment struct {
	Element
	Cumulative int
}

// available returns how many cells lie between pos and the map edge in direction d.
func (b *builder) available(pos Pos, d Direction) int {
	switch d {
	case North:
		return pos.Y
	case South:
		return b.grid.height - pos.Y
	case East:
		return b.grid.width - pos.X
	default:
		return pos.X
	}
}

// edgeTile picks a random empty cell between bmin and bmax cells in from the
// given edge. accept, when set, adds a further condition.
func (b *builder) edgeTile(edge Direction, bmin, bmax int, accept func(Pos) bool) (Pos, error) {
	w, h := b.grid.width, b.grid.height
	for try := 0; try < b.params.SanityLimit; try++ {
		var p Pos
		switch edge {
		case North:
			p = Pos{randInt(b.rng, bmin, w-bmin-1), randInt(b.rng, bmin, bmax)}
		case South:
			p = Pos{randInt(b.rng, bmin, w-bmin-1), h - randInt(b.rng, bmin, bmax) - 1}
		case West:
			p = Pos{randInt(b.rng, bmin, bmax), randInt(b.rng, bmin, h-bmin-1)}
		default:
			p = Pos{w - randInt(b.rng, bmin, bmax) - 1, randInt(b.rng, bmin, h-bmin-1)}
		}
		if !b.grid.InBounds(p) || b.grid.At(p) != TagEmpty {
			continue
		}
		if accept != nil && !accept(p) {
			continue
		}
		return p, nil
	}
	return Pos{}, insane("no usable tile %d-%d cells from the %s edge of a %dx%d map", bmin, bmax, edge, w, h)
}

// segment builds one corridor leg of the given width starting at origin.
// Legs heading N or W are shifted by their width so that the walker's own
// cell stays inside the leg.
func (b *builder) segment(origin Pos, d Direction, length, width int) Segment {
	switch d {
	case North:
		if origin.Y+width >= b.grid.height {
			length -= width
		} else {
			origin.Y += width
		}
	case West:
		if origin.X+width >= b.grid.width {
			length -= width
		} else {
			origin.X += width
		}
	}

	pos, size := origin, Pos{width, length}
	switch d {
	case North:
		pos.Y -= length
	case East:
		size = Pos{length, width}
	case West:
		pos.X -= length
		size = Pos{length, width}
	}

	return Segment{Element: Element{
		Tag:    TagCorridor,
		Pos:    pos,
		Size:   size,
		Origin: origin,
		Dir:    d,
		Length: length,
	}}
}

// dirToward returns the dominant direction from one cell to another and the
// distance along it. Ties go to the x axis.
func dirToward(from, to Pos) (Direction, int) {
	v := to.Sub(from)
	d, length := East, abs(v.X)
	if v.X < 0 {
		d = West
	}
	if abs(v.Y) > abs(v.X) {
		d, length = South, abs(v.Y)
		if v.Y < 0 {
			d = North
		}
	}
	return d, length
}

// mainCorridor routes the wide corridor that crosses the map.
func (b *builder) mainCorridor() ([]Segment, error) {
	d := randomDirection(b.rng)
	start, err := b.edgeTile(d.Opposite(), 2, 4, nil)
	if err != nil {
		return nil, err
	}

	width := b.params.MainWidth
	bends := randInt(b.rng, 2, b.params.MaxBends)
	far := float64(b.params.MinLength * 5)
	border := b.params.MinLength + width + 1
	target, err := b.edgeTile(d, border, border+5, func(p Pos) bool {
		return start.DistanceTo(p) >= far
	})
	if err != nil {
		return nil, err
	}

	return b.route(start, d, target, width, bends), nil
}

// route walks from start toward target in at most bends legs.
func (b *builder) route(start Pos, d Direction, target Pos, width, bends int) []Segment {
	var segs []Segment
	slack := b.params.MinLength + width
	curr := start
	total := 0

	for ; bends > 0 && curr.DistanceTo(target) > float64(width+1); bends-- {
		var seg Segment
		switch {
		case bends == 1:
			dir, length := dirToward(curr, target)
			seg = b.segment(curr, dir, length, width)

		case bends == 2:
			v := target.Sub(curr)
			length := abs(v.X)
			if d.Vertical() {
				length = abs(v.Y)
			}
			if length > b.available(curr, d) {
				d = d.Opposite()
			}
			if length > b.available(curr, d) {
				length = b.available(curr, d) - slack
			}
			seg = b.segment(curr, d, length, width)

		default:
			if b.available(curr, d)-slack <= 0 {
				d = d.Opposite()
			}
			length := randInt(b.rng, slack+1, b.available(curr, d)-slack)
			seg = b.segment(curr, d, length, width)
			d = turn(b.rng, d)
		}

		total += max(seg.Length, 0)
		seg.Cumulative = total
		segs = append(segs, seg)
		curr = curr.Move(seg.Dir, seg.Length)
	}
	return segs
}

// locate finds the main corridor leg holding the given offset along the
// corridor and the offset within it. Offsets past the end clamp to the end.
func locate(segs []Segment, offset int) (Segment, int) {
	for _, s := range segs {
		if offset <= s.Cumulative {
			return s, offset - (s.Cumulative - max(s.Length, 0))
		}
	}
	last := segs[len(segs)-1]
	return last, last.Length
}

// wriggles branches narrow corridors off the main corridor until its length
// budget is used up.
func (b *builder) wriggles(main []Segment) ([]Element, error) {
	if len(main) == 0 {
		return nil, nil
	}
	budget := main[len(main)-1].Cumulative

	var out []Element
	used, offset := 0, 0
	for iter := 0; used < budget; iter++ {
		if iter >= b.params.SanityLimit {
			return nil, insane("wriggle corridors consumed %d of %d after %d branches", used, budget, iter)
		}
		delta := randInt(b.rng, 0, b.params.MinorFreq) * b.params.MinorStep
		offset = min(offset+delta, budget)

		seg, local := locate(main, offset)
		at := seg.Origin.Move(seg.Dir, local)
		d := turn(b.rng, seg.Dir)
		length := randInt(b.rng, b.params.MinorLength/2, b.params.MinorLength)
		out = append(out, b.wriggle(at, d, length, b.params.MinorWidth, b.params.MinorBends)...)

		used += delta
	}
	return out, nil
}

// wriggle draws one branch corridor of roughly the given length, ending in a
// teleport pad now and then.
func (b *builder) wriggle(pos Pos, d Direction, length, width, bendiness int) []Element {
	var out []Element
	var last Segment
	drawn := false

	bends := randInt(b.rng, 0, bendiness)
	used := 0
	for iter := 0; used < length && iter < b.params.SanityLimit; iter++ {
		wanted := int(randFloat(b.rng, b.params.LengthVarMin, b.params.LengthVarMax) * float64(length) / float64(1+bends))
		if wanted+used > length {
			wanted = length - used
		}
		if wanted < b.params.MinLength {
			wanted = b.params.MinLength
		}

		if b.available(pos, d) > wanted+1 {
			last = b.segment(pos, d, wanted, width)
			drawn = true
			out = append(out, last.Element)
			used += wanted
			pos = pos.Move(d, wanted)
		}

		d = turn(b.rng, d)
		if b.available(pos, d) < b.params.MinLength+width+1 {
			d = d.Opposite()
		}
	}

	if randFloat(b.rng, 0, 1) < b.params.TeleportChance && drawn {
		out = append(out, Element{
			Tag:  TagTeleport,
			Pos:  last.Origin.Move(last.Dir, last.Length),
			Size: Pos{1, 1},
		})
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
