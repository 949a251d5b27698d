package chess

import "fmt"

type MoveKind int8

const (
	Normal MoveKind = iota
	Capture
	EnPassant
	KingSideCastle
	QueenSideCastle
)

func (k MoveKind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Capture:
		return "capture"
	case EnPassant:
		return "en passant"
	case KingSideCastle:
		return "king-side castle"
	case QueenSideCastle:
		return "queen-side castle"
	}
	return "unknown"
}

func (k MoveKind) IsCastle() bool {
	return k == KingSideCastle || k == QueenSideCastle
}

// verdict is the outcome of a legal evaluation. aux is the en passant
// victim; rookFrom and rookTo describe the rook half of a castle.
type verdict struct {
	kind     MoveKind
	aux      Square
	rookFrom Square
	rookTo   Square
}

func legal(kind MoveKind) verdict {
	return verdict{kind: kind, aux: NoSquare, rookFrom: NoSquare, rookTo: NoSquare}
}

// evaluate classifies moving p to to. The position is left as it was found.
func (pos *position) evaluate(p *Piece, to Square, rules Rules) (verdict, error) {
	from := p.Square
	if from == to {
		return verdict{}, fmt.Errorf("%w: %s does not move", ErrIllegalMove, p.Name())
	}
	paths := pos.resolvePaths(from, p.Color)

	kind := Normal
	if target := pos.at(to); target != nil && target.Color != p.Color {
		kind = Capture
	}

	switch p.Kind {
	case Rook:
		if paths.Straight().Has(to) {
			return legal(kind), nil
		}
		return verdict{}, pos.slideError(p, to, false, true)
	case Bishop:
		if paths.Diagonal.Has(to) {
			return legal(kind), nil
		}
		return verdict{}, pos.slideError(p, to, true, false)
	case Queen:
		if paths.Straight().Has(to) || paths.Diagonal.Has(to) {
			return legal(kind), nil
		}
		return verdict{}, pos.slideError(p, to, true, true)
	case Knight:
		if paths.Knight.Has(to) {
			return legal(kind), nil
		}
		return verdict{}, fmt.Errorf("%w: knight cannot reach %s from %s", ErrIllegalMove, to, from)
	case King:
		return pos.evaluateKing(p, to, paths, kind, rules)
	case Pawn:
		return pos.evaluatePawn(p, to, paths, rules)
	case Empty:
		return verdict{}, ErrNoPieceSelected
	}
	return verdict{}, fmt.Errorf("%w: unknown piece kind %d", ErrIllegalMove, p.Kind)
}

// slideError explains why a sliding piece cannot reach to: either the line
// is interrupted, or to is not on any line the piece moves along.
func (pos *position) slideError(p *Piece, to Square, diagonal, straight bool) error {
	from := p.Square
	df, dr := to.File()-from.File(), to.Rank()-from.Rank()
	aligned := (straight && (df == 0 || dr == 0)) || (diagonal && abs(df) == abs(dr))
	if !aligned {
		return fmt.Errorf("%w: %s cannot move from %s to %s", ErrIllegalMove, p.Kind, from, to)
	}
	for _, sq := range between(from, to) {
		if pos.at(sq) != nil {
			return fmt.Errorf("%w: %s stands between %s and %s", ErrPathBlocked, sq, from, to)
		}
	}
	return fmt.Errorf("%w: %s is occupied by a %s piece", ErrIllegalMove, to, p.Color)
}

func (pos *position) evaluateKing(p *Piece, to Square, paths PathSet, kind MoveKind, rules Rules) (verdict, error) {
	from := p.Square
	df, dr := to.File()-from.File(), to.Rank()-from.Rank()
	if abs(df) <= 1 && abs(dr) <= 1 {
		if target := pos.at(to); target != nil && target.Color == p.Color {
			return verdict{}, fmt.Errorf("%w: %s is occupied by a %s piece", ErrIllegalMove, to, p.Color)
		}
		return legal(kind), nil
	}
	if dr == 0 && abs(df) == 2 {
		return pos.evaluateCastle(p, df > 0, paths, rules)
	}
	return verdict{}, fmt.Errorf("%w: king cannot move from %s to %s", ErrIllegalMove, from, to)
}

// evaluateCastle checks the castling preconditions for a king moving two
// files toward the rook on the given wing.
func (pos *position) evaluateCastle(king *Piece, kingSide bool, paths PathSet, rules Rules) (verdict, error) {
	if king.Moves != 0 {
		return verdict{}, fmt.Errorf("%w: king has already moved", ErrCastling)
	}
	rank, step, side, kind := king.Square.Rank(), -1, QueenSide, QueenSideCastle
	rookFile := 0
	if kingSide {
		step, side, kind, rookFile = 1, KingSide, KingSideCastle, 7
	}
	rookFrom, _ := squareAt(rookFile, rank)
	rook := pos.at(rookFrom)
	if rook == nil || rook.Kind != Rook || rook.Color != king.Color || rook.Side != side {
		return verdict{}, fmt.Errorf("%w: no %s rook on %s", ErrCastling, side, rookFrom)
	}
	if rook.Moves != 0 {
		return verdict{}, fmt.Errorf("%w: %s rook has already moved", ErrCastling, side)
	}

	if abs(rookFile-king.Square.File()) < 3 {
		return verdict{}, fmt.Errorf("%w: %s rook is too close to the king", ErrCastling, side)
	}
	// The king's ray continues only across empty squares, so the square
	// beside the rook being reachable and empty means the gap is clear.
	inner, _ := squareAt(rookFile-step, rank)
	if !paths.Horizontal.Has(inner) || pos.at(inner) != nil {
		return verdict{}, fmt.Errorf("%w: pieces between king and %s rook", ErrCastling, side)
	}

	rookTo, _ := squareAt(king.Square.File()+step, rank)
	if rules == RulesStrict {
		if pos.attacked(king.Square, king.Color, rules) {
			return verdict{}, fmt.Errorf("%w: king is in check", ErrCastling)
		}
		snap := pos.snapshot(king.Square, rookTo)
		pos.relocate(king.Square, rookTo)
		crossed := pos.kingSafe(king.Color, rules)
		pos.restore(snap)
		if !crossed {
			return verdict{}, fmt.Errorf("%w: king passes through attacked %s", ErrCastling, rookTo)
		}
	}
	v := legal(kind)
	v.rookFrom, v.rookTo = rookFrom, rookTo
	return v, nil
}

func (pos *position) evaluatePawn(p *Piece, to Square, paths PathSet, rules Rules) (verdict, error) {
	from := p.Square
	df := to.File() - from.File()
	advance := p.Color.forward() * (to.Rank() - from.Rank())
	target := pos.at(to)

	switch {
	case df == 0 && (advance == 1 || advance == 2):
		if advance == 2 && p.Moves != 0 {
			return verdict{}, fmt.Errorf("%w: pawn on %s has already moved", ErrIllegalMove, from)
		}
		if target != nil || !paths.Vertical.Has(to) {
			return verdict{}, fmt.Errorf("%w: pawn push from %s to %s", ErrPathBlocked, from, to)
		}
		return legal(Normal), nil

	case abs(df) == 1 && advance == 1:
		if !paths.Diagonal.Has(to) {
			return verdict{}, fmt.Errorf("%w: %s is occupied by a %s piece", ErrIllegalMove, to, p.Color)
		}
		if target != nil {
			return legal(Capture), nil
		}
		victimSq, _ := squareAt(to.File(), from.Rank())
		if pos.enPassantVictim(p, victimSq, rules) {
			v := legal(EnPassant)
			v.aux = victimSq
			return v, nil
		}
		return verdict{}, fmt.Errorf("%w: pawn on %s has nothing to capture on %s", ErrIllegalMove, from, to)
	}
	return verdict{}, fmt.Errorf("%w: pawn cannot move from %s to %s", ErrIllegalMove, from, to)
}

// enPassantVictim reports whether the piece on sq is an opposing pawn that
// has moved once and was the last piece moved. Strict rules also require
// that move to have been a two-square advance.
func (pos *position) enPassantVictim(p *Piece, sq Square, rules Rules) bool {
	victim := pos.at(sq)
	if victim == nil || victim.Kind != Pawn || victim.Color == p.Color || victim.Moves != 1 {
		return false
	}
	if victim.ref != pos.lastMoved {
		return false
	}
	if rules == RulesStrict {
		return abs(pos.lastMove.To.Rank()-pos.lastMove.From.Rank()) == 2
	}
	return true
}
