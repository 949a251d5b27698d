package chess

import "fmt"

// pieceRef indexes a piece in the board's arena.
type pieceRef int16

const noPiece pieceRef = -1

const maxPieces = 64

// board keeps every piece in a fixed arena; squares hold arena indices
// rather than pointers so the whole board copies by value.
type board struct {
	cells  [64]pieceRef
	pieces [maxPieces]Piece
	n      int
}

func newBoard() board {
	var b board
	for i := range b.cells {
		b.cells[i] = noPiece
	}
	return b
}

// at returns the occupant of sq, or nil when the square is empty.
func (b *board) at(sq Square) *Piece {
	if !sq.Valid() || b.cells[sq] == noPiece {
		return nil
	}
	return &b.pieces[b.cells[sq]]
}

func (b *board) piece(ref pieceRef) *Piece {
	if ref == noPiece {
		return nil
	}
	return &b.pieces[ref]
}

func (b *board) place(sq Square, kind Kind, color Color) (*Piece, error) {
	if !sq.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSquare, int(sq))
	}
	if b.cells[sq] != noPiece {
		return nil, fmt.Errorf("%w: %s", ErrSquareOccupied, sq)
	}
	if b.n == maxPieces {
		return nil, ErrBoardFull
	}
	ref := pieceRef(b.n)
	b.n++
	side := NoSide
	if kind == Rook {
		switch sq.File() {
		case 0:
			side = QueenSide
		case 7:
			side = KingSide
		}
	}
	b.pieces[ref] = Piece{Kind: kind, Color: color, Square: sq, Side: side, ref: ref}
	b.cells[sq] = ref
	return &b.pieces[ref], nil
}

// relocate moves the occupant of from onto to. Anything standing on to is
// taken off the board.
func (b *board) relocate(from, to Square) {
	ref := b.cells[from]
	b.remove(to)
	b.cells[to] = ref
	b.cells[from] = noPiece
	b.pieces[ref].Square = to
}

func (b *board) remove(sq Square) {
	if ref := b.cells[sq]; ref != noPiece {
		b.pieces[ref].Square = NoSquare
		b.cells[sq] = noPiece
	}
}

func (b *board) king(c Color) *Piece {
	for i := range b.n {
		p := &b.pieces[i]
		if p.Kind == King && p.Color == c && p.Square != NoSquare {
			return p
		}
	}
	return nil
}

// snapshot records the named squares and their occupants so that a
// simulated move touching only those squares can be undone exactly.
type snapshot struct {
	cells [4]struct {
		sq    Square
		ref   pieceRef
		piece Piece
	}
	n int
}

func (b *board) snapshot(squares ...Square) snapshot {
	var s snapshot
	for _, sq := range squares {
		if !sq.Valid() {
			continue
		}
		c := &s.cells[s.n]
		c.sq, c.ref = sq, b.cells[sq]
		if c.ref != noPiece {
			c.piece = b.pieces[c.ref]
		}
		s.n++
	}
	return s
}

func (b *board) restore(s snapshot) {
	for i := s.n - 1; i >= 0; i-- {
		c := s.cells[i]
		b.cells[c.sq] = c.ref
		if c.ref != noPiece {
			b.pieces[c.ref] = c.piece
		}
	}
}

// Board is a read-only copy of the 64 squares. Empty squares hold a Piece of
// Kind Empty whose Square is still set.
type Board [64]Piece

func (b *Board) At(sq Square) Piece {
	if !sq.Valid() {
		return Piece{Square: NoSquare}
	}
	return b[sq]
}

func (b *board) export() Board {
	var out Board
	for i := range out {
		sq := Square(i)
		if p := b.at(sq); p != nil {
			out[i] = *p
		} else {
			out[i] = Piece{Kind: Empty, Square: sq, ref: noPiece}
		}
	}
	return out
}
