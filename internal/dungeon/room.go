package dungeon

// Room is a committed rectangular room.
type Room struct {
	Seed     Pos  `yaml:"seed"`
	Pos      Pos  `yaml:"pos"`
	Size     Pos  `yaml:"size"`
	Doors    int  `yaml:"doors"`
	Teleport bool `yaml:"teleport"`
}

// Contains reports whether p lies inside the room's floor.
func (r Room) Contains(p Pos) bool {
	return p.X >= r.Pos.X && p.Y >= r.Pos.Y &&
		p.X < r.Pos.X+r.Size.X && p.Y < r.Pos.Y+r.Size.Y
}

// roomBounds holds the collision coordinate found in each direction:
// a row for N/S, a column for E/W.
type roomBounds struct {
	coord [4]int
	set   [4]bool
}

func (rb *roomBounds) done() bool {
	return rb.set[North] && rb.set[East] && rb.set[South] && rb.set[West]
}

func (rb *roomBounds) record(d Direction, hit Pos) {
	if d.Vertical() {
		rb.coord[d] = hit.Y
	} else {
		rb.coord[d] = hit.X
	}
	rb.set[d] = true
}

// firstHit scans the straight line between two cells in ascending x, then
// ascending y, and returns the first cell that is tagged or off the map.
// On north and west legs that is the hit nearest the far end.
func (b *builder) firstHit(from, to Pos) (Pos, bool) {
	x0, x1 := min(from.X, to.X), max(from.X, to.X)
	y0, y1 := min(from.Y, to.Y), max(from.Y, to.Y)
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			p := Pos{x, y}
			if !b.grid.InBounds(p) || b.grid.At(p) != TagEmpty {
				return p, true
			}
		}
	}
	return Pos{}, false
}

// carveRoom grows a room from seed in a clockwise spiral that starts north.
// It returns the elements to stamp (doors, the room, an optional pad) and
// false when the room is rejected.
func (b *builder) carveRoom(seed Pos) (Room, []Element, bool, error) {
	if b.grid.At(seed) != TagEmpty {
		return Room{}, nil, false, nil
	}

	var (
		bounds roomBounds
		doors  []Element
		size   Pos
	)
	d := North
	pos := seed
	limit := b.params.SanityLimit * 10

	for steps := 0; !bounds.done(); steps++ {
		if steps >= limit {
			return Room{}, nil, false, insane("room growing from %v did not close after %d steps", seed, limit)
		}

		var length int
		switch {
		case d.Vertical() && !bounds.set[d]:
			size.Y++
			length = size.Y
		case d.Vertical():
			length = abs(bounds.coord[d]-pos.Y) - 1
		case !bounds.set[d]:
			size.X++
			length = size.X
		default:
			length = abs(bounds.coord[d]-pos.X) - 1
		}
		target := pos.Move(d, length)

		if hit, ok := b.firstHit(pos, target); ok {
			record := true
			switch {
			case hit == target:
				// Collision at the end of the leg keeps the direction.
				target = target.Move(d, -1)
				if bounds.set[d] {
					record = false
					break
				}
				doors = append(doors, doorAt(target.Move(d.Clockwise(), 1)))

			case bounds.set[d.Anticlockwise()]:
				target = target.Move(d, -1)
				if bounds.set[d] {
					record = false
					break
				}
				target = target.Move(d, -1)

			default:
				// Mid-leg collision: the obstacle lies on the anticlockwise side.
				d = d.Anticlockwise()
				target = pos.Move(d, -1)
				if d.Vertical() {
					size.Y--
				} else {
					size.X--
				}
				doors = append(doors, doorAt(hit.Move(d, -1)))
			}
			if record {
				bounds.record(d, hit)
			}
		}

		d = d.Clockwise()
		pos = target
	}

	tl := Pos{bounds.coord[West] + 2, bounds.coord[North] + 2}
	br := Pos{bounds.coord[East] - 1, bounds.coord[South] - 1}
	room := Room{Seed: seed, Pos: tl, Size: br.Sub(tl), Doors: len(doors)}

	if !room.Contains(seed) {
		return Room{}, nil, false, nil
	}
	if room.Size.X < b.params.RoomMinWidth || room.Size.Y < b.params.RoomMinWidth {
		return Room{}, nil, false, nil
	}
	if room.Size.X*room.Size.Y > b.params.RoomMaxArea {
		return Room{}, nil, false, nil
	}
	if tl.X < 1 || tl.Y < 1 || br.X > b.grid.width-1 || br.Y > b.grid.height-1 {
		return Room{}, nil, false, nil
	}

	floor := Element{Tag: TagRoom, Pos: room.Pos, Size: room.Size, Origin: seed}
	elems := append(doors, floor)
	if randFloat(b.rng, 0, 1) < b.params.TeleportChance {
		corners := [2]Pos{tl, br.Sub(Pos{1, 1})}
		elems = append(elems, Element{Tag: TagTeleport, Pos: corners[randInt(b.rng, 0, 1)], Size: Pos{1, 1}})
		room.Teleport = true
	}
	return room, elems, true, nil
}

// centreTile picks a random empty cell at least border cells from every edge.
func (b *builder) centreTile(border int) (Pos, bool) {
	for try := 0; try < b.params.SanityLimit; try++ {
		p := Pos{
			randInt(b.rng, border, b.grid.width-border-1),
			randInt(b.rng, border, b.grid.height-border-1),
		}
		if b.grid.InBounds(p) && b.grid.At(p) == TagEmpty {
			return p, true
		}
	}
	return Pos{}, false
}

// placeRooms carves rooms at random empty cells until the sampled quota is
// met. Each room is stamped straight away so later rooms grow against it.
func (b *builder) placeRooms() ([]Room, error) {
	quota := randInt(b.rng, b.params.MinRooms, b.params.MaxRooms)
	limit := b.params.SanityLimit * 10

	var rooms []Room
	for tries := 0; len(rooms) < quota; tries++ {
		if tries >= limit {
			if len(rooms) >= b.params.MinRooms {
				break
			}
			return nil, reject("placed %d of %d rooms in %d tries", len(rooms), quota, limit)
		}

		seed, ok := b.centreTile(3)
		if !ok {
			continue
		}
		room, elems, ok, err := b.carveRoom(seed)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for _, e := range elems {
			if e, ok := b.grid.Clip(e); ok {
				b.grid.Stamp(e)
			}
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func doorAt(p Pos) Element {
	return Element{Tag: TagDoor, Pos: p, Size: Pos{1, 1}}
}
