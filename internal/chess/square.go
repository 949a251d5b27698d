// Package chess implements the rules of chess: board geometry, per-piece
// move legality, en passant, castling, king safety and turn bookkeeping.
package chess

import (
	"fmt"
	"math/bits"
	"strings"
)

// Square is one of the 64 board positions, numbered rank-major from a1 (0)
// to h8 (63).
type Square int8

// NoSquare marks an absent square: off the board, or a captured piece.
const NoSquare Square = -1

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
)

func squareAt(file, rank int) (Square, bool) {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, false
	}
	return Square(rank*8 + file), true
}

// ParseSquare parses a square in coordinate form, e.g. "e4".
func ParseSquare(s string) (Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	sq, ok := squareAt(int(s[0])-'a', int(s[1])-'1')
	if !ok {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return sq, nil
}

func (s Square) Valid() bool {
	return s >= 0 && s < 64
}

// File returns the zero-based file, 0 for a through 7 for h.
func (s Square) File() int { return int(s) % 8 }

// Rank returns the zero-based rank, 0 for rank 1 through 7 for rank 8.
func (s Square) Rank() int { return int(s) / 8 }

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+s.File(), s.Rank()+1)
}

func (s Square) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSquare, int(s))
	}
	return []byte(s.String()), nil
}

func (s *Square) UnmarshalText(text []byte) error {
	sq, err := ParseSquare(string(text))
	if err != nil {
		return err
	}
	*s = sq
	return nil
}

// SquareSet is a set of squares, one bit per square.
type SquareSet uint64

func (s SquareSet) Add(sq Square) SquareSet {
	return s | 1<<uint(sq)
}

func (s SquareSet) Has(sq Square) bool {
	return sq.Valid() && s&(1<<uint(sq)) != 0
}

func (s SquareSet) Len() int {
	return bits.OnesCount64(uint64(s))
}

// Squares lists the members in ascending order.
func (s SquareSet) Squares() []Square {
	out := make([]Square, 0, s.Len())
	for rest := uint64(s); rest != 0; rest &= rest - 1 {
		out = append(out, Square(bits.TrailingZeros64(rest)))
	}
	return out
}

func (s SquareSet) String() string {
	names := make([]string, 0, s.Len())
	for _, sq := range s.Squares() {
		names = append(names, sq.String())
	}
	return "{" + strings.Join(names, " ") + "}"
}
