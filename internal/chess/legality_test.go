package chess

import (
	"errors"
	"testing"
)

func TestMoveClassification(t *testing.T) {
	tests := []struct {
		name     string
		turn     Color
		pieces   []string
		from, to Square
		kind     MoveKind
		err      error
	}{
		{"rook slides", White, []string{"Ra1"}, A1, A8, Normal, nil},
		{"rook captures", White, []string{"Ra1", "ra5"}, A1, A5, Capture, nil},
		{"rook blocked by own", White, []string{"Ra1", "Pa3"}, A1, A5, 0, ErrPathBlocked},
		{"rook blocked by enemy", White, []string{"Ra1", "pa3"}, A1, A5, 0, ErrPathBlocked},
		{"rook onto own piece", White, []string{"Ra1", "Pa3"}, A1, A3, 0, ErrIllegalMove},
		{"rook off line", White, []string{"Ra1"}, A1, B2, 0, ErrIllegalMove},
		{"bishop diagonal", White, []string{"Bc1"}, C1, H6, Normal, nil},
		{"bishop blocked", White, []string{"Bc1", "Pd2"}, C1, E3, 0, ErrPathBlocked},
		{"bishop straight", White, []string{"Bc1"}, C1, C4, 0, ErrIllegalMove},
		{"queen straight", Black, []string{"qd8"}, D8, D1, Normal, nil},
		{"queen diagonal capture", Black, []string{"qd8", "Ba5"}, D8, A5, Capture, nil},
		{"queen knight shape", Black, []string{"qd8"}, D8, E6, 0, ErrIllegalMove},
		{"knight jumps", White, []string{"Ng1", "Pf2", "Pg2", "Ph2"}, G1, F3, Normal, nil},
		{"knight captures", White, []string{"Ng1", "ph3"}, G1, H3, Capture, nil},
		{"knight onto own", White, []string{"Ng1", "Pe2"}, G1, E2, 0, ErrIllegalMove},
		{"knight straight", White, []string{"Ng1"}, G1, G3, 0, ErrIllegalMove},
		{"king step", White, []string{"Ke1"}, E1, F2, Normal, nil},
		{"king captures", White, []string{"Ke1", "pd2"}, E1, D2, Capture, nil},
		{"king onto own", White, []string{"Ke1", "Pd2"}, E1, D2, 0, ErrIllegalMove},
		{"king too far", White, []string{"Ke1"}, E1, E3, 0, ErrIllegalMove},
		{"pawn single push", White, []string{"Pe2"}, E2, E3, Normal, nil},
		{"pawn double push", White, []string{"Pe2"}, E2, E4, Normal, nil},
		{"black pawn push", Black, []string{"pe7"}, E7, E5, Normal, nil},
		{"pawn push blocked", White, []string{"Pe2", "pe3"}, E2, E3, 0, ErrPathBlocked},
		{"pawn double push blocked midway", White, []string{"Pe2", "Ne3"}, E2, E4, 0, ErrPathBlocked},
		{"pawn double push onto piece", White, []string{"Pe2", "pe4"}, E2, E4, 0, ErrPathBlocked},
		{"pawn triple push", White, []string{"Pe2"}, E2, E5, 0, ErrIllegalMove},
		{"pawn backwards", White, []string{"Pe3"}, E3, E2, 0, ErrIllegalMove},
		{"black pawn backwards", Black, []string{"pe6"}, E6, E7, 0, ErrIllegalMove},
		{"pawn sideways", White, []string{"Pe3"}, E3, F3, 0, ErrIllegalMove},
		{"pawn captures", White, []string{"Pe4", "pd5"}, E4, D5, Capture, nil},
		{"pawn diagonal onto empty", White, []string{"Pe4"}, E4, F5, 0, ErrIllegalMove},
		{"pawn diagonal onto own", White, []string{"Pe4", "Nf5"}, E4, F5, 0, ErrIllegalMove},
		{"pawn captures backwards", White, []string{"Pe4", "pd3"}, E4, D3, 0, ErrIllegalMove},
		{"no piece", White, []string{"Ke1"}, E4, E5, 0, ErrNoPieceSelected},
		{"wrong turn", Black, []string{"Pe2"}, E2, E3, 0, ErrWrongTurn},
		{"null move", White, []string{"Ra1"}, A1, A1, 0, ErrIllegalMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := setup(t, tt.turn, tt.pieces...)
			before := g.Board()

			out, err := g.Move(tt.from, tt.to)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("Move(%s, %s) error = %v, want %v", tt.from, tt.to, err, tt.err)
				}
				if g.Board() != before {
					t.Errorf("rejected move changed the board")
				}
				if g.Turn() != tt.turn {
					t.Errorf("rejected move changed the turn to %s", g.Turn())
				}
				return
			}
			if err != nil {
				t.Fatalf("Move(%s, %s): %v", tt.from, tt.to, err)
			}
			if out.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", out.Kind, tt.kind)
			}
			if got := out.Board.At(tt.to); got.Square != tt.to || got.Moves != 1 {
				t.Errorf("mover on %s = %+v", tt.to, got)
			}
			if !out.Board.At(tt.from).IsEmpty() {
				t.Errorf("%s not vacated", tt.from)
			}
			if g.Turn() == tt.turn {
				t.Errorf("turn did not flip")
			}
		})
	}
}

func TestSlidingLegalityMatchesPaths(t *testing.T) {
	pieces := []string{"Rd4", "Bf2", "Qb6", "pd7", "Pd2", "nf4", "pg3", "Pb2", "ra4"}
	for _, origin := range []Square{D4, F2, B6} {
		g := setup(t, White, pieces...)
		p := g.PieceAt(origin)
		paths := g.Paths(origin)

		var reach SquareSet
		switch p.Kind {
		case Rook:
			reach = paths.Straight()
		case Bishop:
			reach = paths.Diagonal
		case Queen:
			reach = paths.Straight() | paths.Diagonal
		}

		for i := range 64 {
			to := Square(i)
			g := setup(t, White, pieces...)
			_, err := g.Move(origin, to)
			if legal := err == nil; legal != reach.Has(to) {
				t.Errorf("%s %s -> %s: legal = %v (err %v), path membership = %v", p.Name(), origin, to, legal, err, reach.Has(to))
			}
		}
		if got := g.LegalDestinations(origin); got != reach {
			t.Errorf("LegalDestinations(%s) = %s, want %s", origin, got, reach)
		}
	}
}

func TestPawnDoublePushFollowsMoveCount(t *testing.T) {
	t.Run("unmoved pawn off its home rank", func(t *testing.T) {
		g := setup(t, White, "Pd4")
		if _, err := g.Move(D4, D6); err != nil {
			t.Fatalf("d4-d6: %v", err)
		}
	})

	t.Run("moved pawn on its home rank", func(t *testing.T) {
		g := setup(t, White, "Pd1", "pa7")
		mustMove(t, g, D1, D2)
		mustMove(t, g, A7, A6)
		if _, err := g.Move(D2, D4); !errors.Is(err, ErrIllegalMove) {
			t.Fatalf("d2-d4 after moving: error = %v, want ErrIllegalMove", err)
		}
		mustMove(t, g, D2, D3)
	})

	t.Run("black", func(t *testing.T) {
		g := setup(t, Black, "pc7", "pd6")
		mustMove(t, g, C7, C5)
		g.SetTurn(Black)
		if _, err := g.Move(D6, D4); err != nil {
			t.Fatalf("d6-d4 for an unmoved pawn: %v", err)
		}
	})
}

func TestEnPassant(t *testing.T) {
	t.Run("immediately after double push", func(t *testing.T) {
		g := setup(t, Black, "Pa5", "pb7")
		mustMove(t, g, B7, B5)

		last, ok := g.LastMoved()
		if !ok || last.Square != B5 || last.Moves != 1 {
			t.Fatalf("LastMoved = %+v, %v", last, ok)
		}

		out, err := g.Move(A5, B6)
		if err != nil {
			t.Fatalf("a5xb6 e.p.: %v", err)
		}
		if out.Kind != EnPassant {
			t.Errorf("Kind = %s, want en passant", out.Kind)
		}
		if !out.Board.At(B5).IsEmpty() {
			t.Errorf("b5 still holds %s", out.Board.At(B5).Name())
		}
		if out.Captured.Kind != Pawn || out.Captured.Color != Black {
			t.Errorf("Captured = %+v", out.Captured)
		}
		if got := g.Captured(Black); len(got) != 1 || got[0].Kind != Pawn {
			t.Errorf("Captured(Black) = %+v", got)
		}
	})

	t.Run("after an interposed move", func(t *testing.T) {
		g := setup(t, Black, "Pa5", "pb7", "Ph2", "ph7")
		mustMove(t, g, B7, B5)
		mustMove(t, g, H2, H3)
		mustMove(t, g, H7, H6)
		before := g.Board()
		if _, err := g.Move(A5, B6); !errors.Is(err, ErrIllegalMove) {
			t.Fatalf("late e.p. error = %v, want ErrIllegalMove", err)
		}
		if g.Board() != before {
			t.Errorf("rejected en passant changed the board")
		}
	})

	t.Run("after a single step classic", func(t *testing.T) {
		g := setup(t, Black, "Pa5", "pb6")
		mustMove(t, g, B6, B5)
		out, err := g.Move(A5, B6)
		if err != nil {
			t.Fatalf("e.p. against a first single step: %v", err)
		}
		if out.Kind != EnPassant || !out.Board.At(B5).IsEmpty() {
			t.Errorf("Kind = %s, b5 = %s", out.Kind, out.Board.At(B5).Name())
		}
	})

	t.Run("after a single step strict", func(t *testing.T) {
		g := setupRules(t, RulesStrict, Black, "Pa5", "pb6")
		mustMove(t, g, B6, B5)
		if _, err := g.Move(A5, B6); !errors.Is(err, ErrIllegalMove) {
			t.Fatalf("e.p. against a single step: error = %v, want ErrIllegalMove", err)
		}
	})

	// Reachable from the standard setup: a white pawn on a6 and an unmoved
	// black pawn on b7 that steps to b6.
	t.Run("behind a pawn that stepped once", func(t *testing.T) {
		for _, tt := range []struct {
			rules Rules
			legal bool
		}{
			{RulesClassic, true},
			{RulesStrict, false},
		} {
			t.Run(tt.rules.String(), func(t *testing.T) {
				g := setupRules(t, tt.rules, Black, "Pa6", "pb7")
				mustMove(t, g, B7, B6)
				before := g.Board()
				out, err := g.Move(A6, B7)
				if !tt.legal {
					if !errors.Is(err, ErrIllegalMove) {
						t.Fatalf("a6xb7 e.p.: error = %v, want ErrIllegalMove", err)
					}
					if g.Board() != before {
						t.Errorf("rejected en passant changed the board")
					}
					return
				}
				if err != nil {
					t.Fatalf("a6xb7 e.p.: %v", err)
				}
				if out.Kind != EnPassant || out.Captured.Square != NoSquare || out.Captured.Kind != Pawn {
					t.Errorf("Kind = %s, Captured = %+v", out.Kind, out.Captured)
				}
				if !out.Board.At(B6).IsEmpty() || out.Board.At(B7).Kind != Pawn || out.Board.At(B7).Color != White {
					t.Errorf("b6 = %s, b7 = %s", out.Board.At(B6).Name(), out.Board.At(B7).Name())
				}
			})
		}
	})

	t.Run("black captures", func(t *testing.T) {
		g := setup(t, White, "pe4", "Pd2")
		mustMove(t, g, D2, D4)
		out, err := g.Move(E4, D3)
		if err != nil {
			t.Fatalf("e4xd3 e.p.: %v", err)
		}
		if out.Kind != EnPassant || !out.Board.At(D4).IsEmpty() {
			t.Errorf("Kind = %s, d4 = %s", out.Kind, out.Board.At(D4).Name())
		}
	})
}

func TestCastling(t *testing.T) {
	t.Run("king side", func(t *testing.T) {
		g := setup(t, White, "Ke1", "Rh1", "Ra1", "ke8")
		out, err := g.Move(E1, G1)
		if err != nil {
			t.Fatalf("O-O: %v", err)
		}
		if out.Kind != KingSideCastle {
			t.Errorf("Kind = %s", out.Kind)
		}
		b := out.Board
		if b.At(G1).Kind != King || b.At(F1).Kind != Rook || !b.At(H1).IsEmpty() || !b.At(E1).IsEmpty() {
			t.Errorf("unexpected back rank after O-O")
		}
		if b.At(G1).Moves != 1 || b.At(F1).Moves != 1 {
			t.Errorf("move counts king=%d rook=%d, want 1 and 1", b.At(G1).Moves, b.At(F1).Moves)
		}
		if got := g.Ledger(); len(got) != 1 || got[0] != (Move{E1, G1}) {
			t.Errorf("Ledger = %v", got)
		}
	})

	t.Run("queen side", func(t *testing.T) {
		g := setup(t, Black, "ke8", "ra8", "rh8", "Ke1")
		out, err := g.Move(E8, C8)
		if err != nil {
			t.Fatalf("O-O-O: %v", err)
		}
		if out.Kind != QueenSideCastle || out.Board.At(C8).Kind != King || out.Board.At(D8).Kind != Rook {
			t.Errorf("Kind = %s, c8 = %s, d8 = %s", out.Kind, out.Board.At(C8).Name(), out.Board.At(D8).Name())
		}
	})

	t.Run("blocked", func(t *testing.T) {
		for _, blocker := range []string{"Bf1", "Ng1", "bg1"} {
			g := setup(t, White, "Ke1", "Rh1", blocker)
			if _, err := g.Move(E1, G1); !errors.Is(err, ErrCastling) {
				t.Errorf("O-O with %s: error = %v, want ErrCastling", blocker, err)
			}
		}
		g := setup(t, White, "Ke1", "Ra1", "Nb1")
		if _, err := g.Move(E1, C1); !errors.Is(err, ErrCastling) {
			t.Errorf("O-O-O with b1 occupied: error = %v, want ErrCastling", err)
		}
	})

	t.Run("king moved first", func(t *testing.T) {
		g := setup(t, White, "Ke1", "Rh1", "ke8")
		mustMove(t, g, E1, E2)
		mustMove(t, g, E8, E7)
		mustMove(t, g, E2, E1)
		mustMove(t, g, E7, E8)
		if _, err := g.Move(E1, G1); !errors.Is(err, ErrCastling) {
			t.Fatalf("O-O after king returned: error = %v, want ErrCastling", err)
		}
	})

	t.Run("rook moved first", func(t *testing.T) {
		g := setup(t, White, "Ke1", "Rh1", "ke8")
		mustMove(t, g, H1, H2)
		mustMove(t, g, E8, E7)
		mustMove(t, g, H2, H1)
		mustMove(t, g, E7, E8)
		if _, err := g.Move(E1, G1); !errors.Is(err, ErrCastling) {
			t.Fatalf("O-O after rook returned: error = %v, want ErrCastling", err)
		}
	})

	t.Run("no rook", func(t *testing.T) {
		g := setup(t, White, "Ke1", "Bh1")
		if _, err := g.Move(E1, G1); !errors.Is(err, ErrCastling) {
			t.Fatalf("O-O without rook: error = %v, want ErrCastling", err)
		}
	})

	t.Run("enemy rook", func(t *testing.T) {
		g := setup(t, White, "Ke1", "rh1")
		if _, err := g.Move(E1, G1); !errors.Is(err, ErrCastling) {
			t.Fatalf("O-O with an enemy rook: error = %v, want ErrCastling", err)
		}
	})
}

func TestPromotion(t *testing.T) {
	g := setup(t, White, "Pb7", "ra8")
	out, err := g.Move(B7, A8)
	if err != nil {
		t.Fatalf("b7xa8: %v", err)
	}
	if out.Kind != Capture || out.Promotion != Queen {
		t.Errorf("Kind = %s, Promotion = %s", out.Kind, out.Promotion)
	}
	if got := g.PieceAt(A8); got.Kind != Queen || got.Color != White || got.Moves != 1 {
		t.Errorf("a8 = %+v", got)
	}
}

func mustMove(t *testing.T, g *Game, from, to Square) Outcome {
	t.Helper()
	out, err := g.Move(from, to)
	if err != nil {
		t.Fatalf("Move(%s, %s): %v", from, to, err)
	}
	return out
}
