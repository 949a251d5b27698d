package chess

type Color int8

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	if c == White {
		return "White"
	}
	return "Black"
}

func (c Color) Opponent() Color {
	return 1 - c
}

// forward is the rank step of a pawn of this color.
func (c Color) forward() int {
	if c == White {
		return 1
	}
	return -1
}

// homeRank is the zero-based back rank of this color.
func (c Color) homeRank() int {
	if c == White {
		return 0
	}
	return 7
}

type Kind int8

const (
	Empty Kind = iota
	Pawn
	Rook
	Knight
	Bishop
	Queen
	King
)

var kindNames = [...]string{
	Empty:  "Empty",
	Pawn:   "Pawn",
	Rook:   "Rook",
	Knight: "Knight",
	Bishop: "Bishop",
	Queen:  "Queen",
	King:   "King",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// Side pairs a rook with the castling move that uses it.
type Side int8

const (
	NoSide Side = iota
	KingSide
	QueenSide
)

func (s Side) String() string {
	switch s {
	case KingSide:
		return "king-side"
	case QueenSide:
		return "queen-side"
	}
	return "none"
}

// Piece is a man on the board. The zero Kind is Empty, which has no
// meaningful color.
type Piece struct {
	Kind   Kind
	Color  Color
	Moves  int    // committed relocations of this piece
	Square Square // NoSquare once captured
	Side   Side   // rooks only; a king castles toward the rook tagged for that side

	ref pieceRef
}

func (p Piece) IsEmpty() bool {
	return p.Kind == Empty
}

func (p Piece) Name() string {
	if p.Kind == Empty {
		return "Empty"
	}
	return p.Color.String() + " " + p.Kind.String()
}

var (
	blackSymbols = [...]string{Empty: " ", Pawn: "♟", Rook: "♜", Knight: "♞", Bishop: "♝", Queen: "♛", King: "♚"}
	whiteSymbols = [...]string{Empty: " ", Pawn: "♙", Rook: "♖", Knight: "♘", Bishop: "♗", Queen: "♕", King: "♔"}
)

func (p Piece) String() string {
	if p.Kind < 0 || int(p.Kind) >= len(whiteSymbols) {
		return "?"
	}
	if p.Color == White {
		return whiteSymbols[p.Kind]
	}
	return blackSymbols[p.Kind]
}
