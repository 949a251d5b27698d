package chess

import "errors"

var (
	ErrNoPieceSelected = errors.New("no piece selected")
	ErrWrongTurn       = errors.New("wrong turn")
	ErrIllegalMove     = errors.New("illegal move")
	ErrPathBlocked     = errors.New("path blocked")
	ErrKingExposed     = errors.New("king exposed")
	ErrCastling        = errors.New("castling not allowed")
	ErrInvalidSquare   = errors.New("invalid square")
	ErrSquareOccupied  = errors.New("square occupied")
	ErrBoardFull       = errors.New("board full")
)
