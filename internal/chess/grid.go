package chess

// Direction is one of the eight ray directions or one of the eight knight
// leaps.
type Direction int

const (
	North Direction = iota
	South
	East
	West
	NorthEast
	NorthWest
	SouthEast
	SouthWest
	LeapNNE
	LeapENE
	LeapESE
	LeapSSE
	LeapSSW
	LeapWSW
	LeapWNW
	LeapNNW

	numDirections
)

var directionDelta = [numDirections]struct{ file, rank int }{
	North:     {0, 1},
	South:     {0, -1},
	East:      {1, 0},
	West:      {-1, 0},
	NorthEast: {1, 1},
	NorthWest: {-1, 1},
	SouthEast: {1, -1},
	SouthWest: {-1, -1},
	LeapNNE:   {1, 2},
	LeapENE:   {2, 1},
	LeapESE:   {2, -1},
	LeapSSE:   {1, -2},
	LeapSSW:   {-1, -2},
	LeapWSW:   {-2, -1},
	LeapWNW:   {-2, 1},
	LeapNNW:   {-1, 2},
}

var (
	horizontalRays = []Direction{East, West}
	verticalRays   = []Direction{North, South}
	diagonalRays   = []Direction{NorthEast, NorthWest, SouthEast, SouthWest}
	knightLeaps    = []Direction{LeapNNE, LeapENE, LeapESE, LeapSSE, LeapSSW, LeapWSW, LeapWNW, LeapNNW}
)

func (d Direction) IsLeap() bool {
	return d >= LeapNNE && d < numDirections
}

// Grid is the adjacency structure over the 64 squares. It depends only on
// board geometry and never changes after construction.
type Grid struct {
	neighbors [64][numDirections]Square
}

// BuildGrid computes every square's ray and leap neighbors. A neighbor that
// would fall off the board is recorded as NoSquare.
func BuildGrid() *Grid {
	g := &Grid{}
	for i := range g.neighbors {
		sq := Square(i)
		for d := range numDirections {
			delta := directionDelta[d]
			n, ok := squareAt(sq.File()+delta.file, sq.Rank()+delta.rank)
			if !ok {
				n = NoSquare
			}
			g.neighbors[i][d] = n
		}
	}
	return g
}

// Neighbor returns the square one step from sq in direction d.
func (g *Grid) Neighbor(sq Square, d Direction) (Square, bool) {
	if !sq.Valid() || d < 0 || d >= numDirections {
		return NoSquare, false
	}
	n := g.neighbors[sq][d]
	return n, n != NoSquare
}

var grid = BuildGrid()

// rayToward returns the ray direction leading from one square to another
// when both lie on a common rank, file or diagonal.
func rayToward(from, to Square) (Direction, bool) {
	df := to.File() - from.File()
	dr := to.Rank() - from.Rank()
	if from == to || (df != 0 && dr != 0 && abs(df) != abs(dr)) {
		return 0, false
	}
	for _, d := range [...]Direction{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest} {
		delta := directionDelta[d]
		if delta.file == sign(df) && delta.rank == sign(dr) {
			return d, true
		}
	}
	return 0, false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}
