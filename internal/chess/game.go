package chess

import (
	"fmt"
	"sync"
)

// Move is a committed relocation as recorded in the ledger.
type Move struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

func (m Move) String() string {
	return m.From.String() + m.To.String()
}

// Outcome describes a committed move.
type Outcome struct {
	Move      Move
	Kind      MoveKind
	Piece     Piece // the mover, after the move
	Captured  Piece // Kind Empty when nothing was taken
	Promotion Kind  // Empty unless a pawn was promoted
	Board     Board
}

// position is everything the rules read: the board, whose turn it is and
// what moved last. It copies by value.
type position struct {
	board
	turn      Color
	lastMoved pieceRef
	lastMove  Move
}

type Option func(*Game)

// WithRules selects the king-safety strictness. The default is RulesClassic.
func WithRules(r Rules) Option {
	return func(g *Game) {
		g.rules = r
	}
}

// Game owns the live board and sequences every move through evaluation, the
// king-safety check and the commit. It is safe for concurrent use: moves are
// serialized and queries never observe a half-applied move.
type Game struct {
	mu     sync.RWMutex
	rules  Rules
	pos    position
	ledger []Move
}

var backRank = [8]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewGame returns a game in the standard starting position, White to move.
func NewGame(opts ...Option) *Game {
	g := NewEmptyGame(opts...)
	for _, c := range []Color{White, Black} {
		home := c.homeRank()
		for file, kind := range backRank {
			sq, _ := squareAt(file, home)
			g.pos.place(sq, kind, c)
		}
		for file := range 8 {
			sq, _ := squareAt(file, home+c.forward())
			g.pos.place(sq, Pawn, c)
		}
	}
	return g
}

// NewEmptyGame returns a game with no pieces, White to move. Pieces are added
// with Place.
func NewEmptyGame(opts ...Option) *Game {
	g := &Game{
		pos: position{
			board:     newBoard(),
			turn:      White,
			lastMoved: noPiece,
			lastMove:  Move{From: NoSquare, To: NoSquare},
		},
		ledger: make([]Move, 0),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Place puts a new, unmoved piece on an empty square. Rooks on the a-file and
// h-file are paired with queen-side and king-side castling.
func (g *Game) Place(sq Square, kind Kind, c Color) error {
	if kind == Empty {
		return fmt.Errorf("%w: cannot place an empty piece", ErrIllegalMove)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.pos.place(sq, kind, c)
	return err
}

// SetTurn hands the move to c.
func (g *Game) SetTurn(c Color) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pos.turn = c
}

func (g *Game) Rules() Rules {
	return g.rules
}

// Move validates and commits the relocation of the piece on from to to. On
// error the game is left exactly as it was.
func (g *Game) Move(from, to Square) (Outcome, error) {
	if !from.Valid() || !to.Valid() {
		return Outcome{}, fmt.Errorf("%w: %s -> %s", ErrInvalidSquare, from, to)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.pos.at(from)
	if p == nil {
		return Outcome{}, fmt.Errorf("%w: %s is empty", ErrNoPieceSelected, from)
	}
	if p.Color != g.pos.turn {
		return Outcome{}, fmt.Errorf("%w: %s to move, not %s", ErrWrongTurn, g.pos.turn, p.Color)
	}

	v, err := g.pos.evaluate(p, to, g.rules)
	if err != nil {
		return Outcome{}, err
	}

	var captured Piece
	switch {
	case v.kind == EnPassant:
		captured = *g.pos.at(v.aux)
	case v.kind == Capture:
		captured = *g.pos.at(to)
	}

	snap, promoted := g.pos.apply(p, to, v)
	if !g.pos.kingSafe(p.Color, g.rules) {
		g.pos.restore(snap)
		return Outcome{}, fmt.Errorf("%w: %s %s -> %s leaves the %s king attacked", ErrKingExposed, p.Name(), from, to, p.Color)
	}
	g.commit(p, v, Move{From: from, To: to})

	captured.Square = NoSquare
	out := Outcome{
		Move:     Move{From: from, To: to},
		Kind:     v.kind,
		Piece:    *p,
		Captured: captured,
		Board:    g.pos.export(),
	}
	if promoted {
		out.Promotion = p.Kind
	}
	return out, nil
}

// apply performs the relocations of an evaluated move and returns the state
// needed to undo them.
func (pos *position) apply(p *Piece, to Square, v verdict) (snapshot, bool) {
	from := p.Square
	snap := pos.snapshot(from, to, v.aux, v.rookFrom, v.rookTo)
	switch v.kind {
	case EnPassant:
		pos.remove(v.aux)
	case KingSideCastle, QueenSideCastle:
		pos.relocate(v.rookFrom, v.rookTo)
	}
	pos.relocate(from, to)

	promoted := false
	if p.Kind == Pawn && to.Rank() == p.Color.Opponent().homeRank() {
		p.Kind = Queen
		promoted = true
	}
	return snap, promoted
}

func (g *Game) commit(p *Piece, v verdict, m Move) {
	p.Moves++
	if v.kind.IsCastle() {
		g.pos.at(v.rookTo).Moves++
	}
	g.pos.lastMoved = p.ref
	g.pos.lastMove = m
	g.ledger = append(g.ledger, m)
	g.pos.turn = g.pos.turn.Opponent()
}

// LegalDestinations returns every square the occupant of sq may move to,
// whichever side is to move. It runs its simulations on a copy of the
// position.
func (g *Game) LegalDestinations(sq Square) SquareSet {
	g.mu.RLock()
	pos := g.pos
	rules := g.rules
	g.mu.RUnlock()

	p := pos.at(sq)
	if p == nil {
		return 0
	}
	var out SquareSet
	for _, to := range pos.resolvePaths(sq, p.Color).All().Squares() {
		v, err := pos.evaluate(p, to, rules)
		if err != nil {
			continue
		}
		snap, _ := pos.apply(p, to, v)
		if pos.kingSafe(p.Color, rules) {
			out = out.Add(to)
		}
		pos.restore(snap)
	}
	return out
}

// Paths exposes the path sets of the occupant of sq. An empty square is
// resolved as if it held a piece of the side to move.
func (g *Game) Paths(sq Square) PathSet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c := g.pos.turn
	if p := g.pos.at(sq); p != nil {
		c = p.Color
	}
	return g.pos.resolvePaths(sq, c)
}

func (g *Game) Turn() Color {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.pos.turn
}

// Ledger returns a copy of the committed moves in order.
func (g *Game) Ledger() []Move {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Move(nil), g.ledger...)
}

func (g *Game) Board() Board {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.pos.export()
}

func (g *Game) PieceAt(sq Square) Piece {
	b := g.Board()
	return b.At(sq)
}

// LastMoved returns the piece moved by the most recent committed move.
func (g *Game) LastMoved() (Piece, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p := g.pos.piece(g.pos.lastMoved)
	if p == nil {
		return Piece{}, false
	}
	return *p, true
}

// Captured lists the pieces of color c taken so far, in arena order.
func (g *Game) Captured(c Color) []Piece {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []Piece
	for i := range g.pos.n {
		p := g.pos.pieces[i]
		if p.Color == c && p.Square == NoSquare {
			out = append(out, p)
		}
	}
	return out
}

// InCheck reports whether c's king is attacked under the game's rules.
func (g *Game) InCheck(c Color) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return !g.pos.kingSafe(c, g.rules)
}

// Replay rebuilds a game from the standard setup by playing moves in order.
func Replay(moves []Move, opts ...Option) (*Game, error) {
	g := NewGame(opts...)
	for i, m := range moves {
		if _, err := g.Move(m.From, m.To); err != nil {
			return nil, fmt.Errorf("replay move %d (%s): %w", i+1, m, err)
		}
	}
	return g, nil
}
