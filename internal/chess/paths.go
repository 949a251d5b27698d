package chess

// PathSet holds the squares reachable from an origin, split by geometric
// class. Sliding classes stop at the first occupied square, which is
// included only when it holds an opposing piece.
type PathSet struct {
	Horizontal SquareSet
	Vertical   SquareSet
	Diagonal   SquareSet
	Knight     SquareSet
}

func (p PathSet) All() SquareSet {
	return p.Horizontal | p.Vertical | p.Diagonal | p.Knight
}

// Straight is the rook's reach.
func (p PathSet) Straight() SquareSet {
	return p.Horizontal | p.Vertical
}

// resolvePaths walks the grid from origin on behalf of a piece of color c.
// Nothing is cached: occupancy changes with every move.
func (b *board) resolvePaths(origin Square, c Color) PathSet {
	return PathSet{
		Horizontal: b.walkRays(origin, c, horizontalRays),
		Vertical:   b.walkRays(origin, c, verticalRays),
		Diagonal:   b.walkRays(origin, c, diagonalRays),
		Knight:     b.leaps(origin, c),
	}
}

func (b *board) walkRays(origin Square, c Color, dirs []Direction) SquareSet {
	var set SquareSet
	for _, d := range dirs {
		sq := origin
		for {
			next, ok := grid.Neighbor(sq, d)
			if !ok {
				break
			}
			occupant := b.at(next)
			if occupant != nil && occupant.Color == c {
				break
			}
			set = set.Add(next)
			if occupant != nil {
				break
			}
			sq = next
		}
	}
	return set
}

func (b *board) leaps(origin Square, c Color) SquareSet {
	var set SquareSet
	for _, d := range knightLeaps {
		next, ok := grid.Neighbor(origin, d)
		if !ok {
			continue
		}
		if occupant := b.at(next); occupant != nil && occupant.Color == c {
			continue
		}
		set = set.Add(next)
	}
	return set
}

// between lists the squares strictly between two squares on a common line.
func between(from, to Square) []Square {
	d, ok := rayToward(from, to)
	if !ok {
		return nil
	}
	var out []Square
	for sq, _ := grid.Neighbor(from, d); sq != to && sq != NoSquare; sq, _ = grid.Neighbor(sq, d) {
		out = append(out, sq)
	}
	return out
}
