package dungeon

import "math/rand"

// populate finishes an accepted grid: it pairs up a lone teleport pad, asks
// the collaborators for furniture, monsters, items and evidence, and puts
// connected stairs down last.
func (g *Generator) populate(l *Layout) error {
	if l.Grid.Count(TagTeleport) == 1 {
		p, err := g.clearCell(l, func(p Pos) bool { return !besideDoor(l, p) })
		if err != nil {
			return err
		}
		l.Grid.Set(p, TagTeleport)
		l.setTile(p, TileTeleport)
	}

	if ents := g.opts.Entities; ents != nil {
		if err := g.scatter(l, LayerFurniture, g.params.Furniture, ents.Furniture); err != nil {
			return err
		}
		if err := g.scatter(l, LayerMonster, g.params.Monsters, ents.Monster); err != nil {
			return err
		}
		if err := g.scatter(l, LayerItem, g.params.Items, ents.Item); err != nil {
			return err
		}
	}
	for i := 0; i < g.params.Evidence; i++ {
		p, err := g.opts.Finder.RandomClear(g.rng, l)
		if err != nil {
			return err
		}
		l.Place(LayerItem, NameEvidence, p)
	}

	return g.placeStairs(l)
}

// scatter places n entities on one layer. The cell is drawn before the
// entity so the random stream stays in a fixed order.
func (g *Generator) scatter(l *Layout, layer Layer, n int, pick func(*rand.Rand) string) error {
	for i := 0; i < n; i++ {
		p, err := g.opts.Finder.RandomClear(g.rng, l)
		if err != nil {
			return err
		}
		l.Place(layer, pick(g.rng), p)
	}
	return nil
}

// placeStairs draws pairs of clear cells until the pathfinder connects them.
func (g *Generator) placeStairs(l *Layout) error {
	for try := 0; try < g.params.SanityLimit; try++ {
		up, err := g.opts.Finder.RandomClear(g.rng, l)
		if err != nil {
			return err
		}
		down, err := g.opts.Finder.RandomClear(g.rng, l)
		if err != nil {
			return err
		}
		if up == down {
			continue
		}
		if len(g.opts.Pathfinder.FindPath(l, up, down)) == 0 {
			continue
		}
		l.Place(LayerStairs, NameStairsDown, down)
		l.Place(LayerStairs, NameStairsUp, up)
		return nil
	}
	return reject("no connected stairs pair in %d tries", g.params.SanityLimit)
}

// clearCell asks the finder for a clear cell that also satisfies accept.
func (g *Generator) clearCell(l *Layout, accept func(Pos) bool) (Pos, error) {
	for try := 0; try < g.params.SanityLimit; try++ {
		p, err := g.opts.Finder.RandomClear(g.rng, l)
		if err != nil {
			return Pos{}, err
		}
		if accept(p) {
			return p, nil
		}
	}
	return Pos{}, insane("no acceptable clear cell after %d tries", g.params.SanityLimit)
}

func besideDoor(l *Layout, p Pos) bool {
	for _, d := range compassOrder {
		if l.Grid.InBounds(p.Move(d, 1)) && l.Grid.At(p.Move(d, 1)) == TagDoor {
			return true
		}
	}
	return false
}
