package dungeon

// span returns the bounding box of the elements as a top-left corner and an
// exclusive bottom-right corner.
func span(elems []Element) (Pos, Pos) {
	if len(elems) == 0 {
		return Pos{}, Pos{}
	}
	tl, br := elems[0].Pos, elems[0].End()
	for _, e := range elems[1:] {
		end := e.End()
		tl = Pos{min(tl.X, e.Pos.X), min(tl.Y, e.Pos.Y)}
		br = Pos{max(br.X, end.X), max(br.Y, end.Y)}
	}
	return tl, br
}

// checkCorridorCoverage rejects corridor networks whose bounding box
// diagonal is short of the required fraction of the map diagonal.
func checkCorridorCoverage(elems []Element, width, height int, fraction float64) error {
	tl, br := span(elems)
	got := tl.DistanceTo(br)
	want := Pos{}.DistanceTo(Pos{width, height}) * fraction
	if got < want {
		return reject("corridor span %.1f below %.1f", got, want)
	}
	return nil
}

// solidCoverage is the fraction of the map that is not void.
func solidCoverage(misses, width, height int) float64 {
	return 1 - float64(misses)/float64(width*height)
}

func checkSolidCoverage(misses, width, height int, threshold float64) error {
	if c := solidCoverage(misses, width, height); c < threshold {
		return reject("solid coverage %.3f below %.3f", c, threshold)
	}
	return nil
}
