package chess

import (
	"fmt"
	"strings"
)

// Rules selects how strictly king safety is enforced.
type Rules int8

const (
	// RulesClassic only counts rooks, bishops and queens as attackers and
	// lets the king castle across attacked squares.
	RulesClassic Rules = iota
	// RulesStrict also counts knights, pawns and kings, and forbids
	// castling out of or through check.
	RulesStrict
)

func (r Rules) String() string {
	if r == RulesStrict {
		return "strict"
	}
	return "classic"
}

func ParseRules(s string) (Rules, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classic":
		return RulesClassic, nil
	case "strict":
		return RulesStrict, nil
	}
	return RulesClassic, fmt.Errorf("unknown rules %q, want classic or strict", s)
}

// attacked reports whether a piece of color defender standing on sq could be
// taken by the opponent.
func (b *board) attacked(sq Square, defender Color, rules Rules) bool {
	paths := b.resolvePaths(sq, defender)
	hit := func(set SquareSet, kinds ...Kind) bool {
		for _, s := range set.Squares() {
			p := b.at(s)
			if p == nil || p.Color == defender {
				continue
			}
			for _, k := range kinds {
				if p.Kind == k {
					return true
				}
			}
		}
		return false
	}

	if hit(paths.Straight(), Rook, Queen) || hit(paths.Diagonal, Bishop, Queen) {
		return true
	}
	if rules != RulesStrict {
		return false
	}
	if hit(paths.Knight, Knight) {
		return true
	}

	var adjacent, pawnFrom SquareSet
	for _, d := range []Direction{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest} {
		if n, ok := grid.Neighbor(sq, d); ok {
			adjacent = adjacent.Add(n)
		}
	}
	for _, df := range []int{-1, 1} {
		if n, ok := squareAt(sq.File()+df, sq.Rank()+defender.forward()); ok {
			pawnFrom = pawnFrom.Add(n)
		}
	}
	return hit(adjacent, King) || hit(pawnFrom, Pawn)
}

// kingSafe reports whether c's king is out of attack. A side without a king
// is always safe.
func (b *board) kingSafe(c Color, rules Rules) bool {
	k := b.king(c)
	if k == nil {
		return true
	}
	return !b.attacked(k.Square, c, rules)
}
