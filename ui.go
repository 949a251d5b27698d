package main

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/imjasonh/chesslaw/internal/chess"
)

type styles struct {
	cursor   lipgloss.Style
	selected lipgloss.Style
	valid    lipgloss.Style
	light    lipgloss.Style
	dark     lipgloss.Style
	info     lipgloss.Style
	alert    lipgloss.Style
	title    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	square := r.NewStyle().Padding(0, 1)
	return styles{
		cursor:   square.Background(lipgloss.Color("1")),
		selected: square.Background(lipgloss.Color("3")),
		valid:    square.Background(lipgloss.Color("2")),
		light:    square.Background(lipgloss.Color("8")),
		dark:     square.Background(lipgloss.Color("0")),
		info:     r.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1).Width(23),
		alert:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		title:    r.NewStyle().Bold(true),
	}
}

type model struct {
	// Game state
	game       *chess.Game
	cursorRow  int
	cursorCol  int
	selected   *chess.Square
	validMoves chess.SquareSet
	last       *chess.Outcome
	message    string

	// Multiplayer state
	manager     *GameManager
	player      *Player
	opponent    *Player
	gameSession *GameSession
	gameState   string // "waiting", "playing", "finished", "opponent_disconnected"
	isMyTurn    bool

	styles styles
}

// initialModel is a hotseat game: both colors move from the same terminal.
func initialModel(rules chess.Rules, r *lipgloss.Renderer) model {
	return model{
		game:      chess.NewGame(chess.WithRules(rules)),
		gameState: "playing",
		isMyTurn:  true,
		styles:    newStyles(r),
	}
}

func initialModelWithPlayer(manager *GameManager, player *Player, r *lipgloss.Renderer) model {
	m := initialModel(manager.rules, r)
	m.manager = manager
	m.player = player
	m.gameState = "waiting"
	m.isMyTurn = false
	return m
}

func (m model) Init() tea.Cmd {
	if m.player != nil && m.player.UpdateChan != nil {
		return m.listenForUpdates()
	}
	return nil
}

func (m model) listenForUpdates() tea.Cmd {
	return func() tea.Msg {
		if m.player != nil && m.player.UpdateChan != nil {
			update, ok := <-m.player.UpdateChan
			if !ok {
				return nil
			}
			return update
		}
		return nil
	}
}

func (m model) cursor() chess.Square {
	return chess.Square(m.cursorRow*8 + m.cursorCol)
}

// mover is the color this terminal moves for.
func (m model) mover() chess.Color {
	if m.player == nil {
		return m.game.Turn()
	}
	return m.player.Color
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEscape:
			if m.gameState == "playing" && m.isMyTurn {
				m = m.deselect()
			}
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit
		}

		switch msg.String() {
		case "up", "k":
			if m.cursorRow < 7 {
				m.cursorRow++
				m.broadcastCursorUpdate()
			}
		case "down", "j":
			if m.cursorRow > 0 {
				m.cursorRow--
				m.broadcastCursorUpdate()
			}
		case "left", "h":
			if m.cursorCol > 0 {
				m.cursorCol--
				m.broadcastCursorUpdate()
			}
		case "right", "l":
			if m.cursorCol < 7 {
				m.cursorCol++
				m.broadcastCursorUpdate()
			}
		case "enter", " ":
			if m.gameState == "playing" && m.isMyTurn {
				m = m.activate(m.cursor())
			}
		}

	case GameUpdate:
		return m.handleGameUpdate(msg)
	}
	return m, nil
}

// activate handles enter on a square: select an own piece, drop the current
// selection, or try to move the selected piece there.
func (m model) activate(sq chess.Square) model {
	piece := m.game.PieceAt(sq)
	if m.selected != nil && *m.selected == sq {
		return m.deselect()
	}
	if !piece.IsEmpty() && piece.Color == m.mover() {
		m.selected = &sq
		m.validMoves = m.game.LegalDestinations(sq)
		m.message = ""
		m.broadcast(GameUpdate{
			Type: "select",
			Data: map[string]any{
				"position":   sq,
				"validMoves": m.validMoves.Squares(),
			},
		})
		return m
	}
	if m.selected == nil {
		return m
	}

	var (
		out chess.Outcome
		err error
	)
	if m.gameSession != nil {
		out, err = m.gameSession.Move(m.player.ID, *m.selected, sq)
	} else {
		out, err = m.game.Move(*m.selected, sq)
	}
	if err != nil {
		m.message = describeMoveError(err)
		return m
	}
	m.last = &out
	m.selected = nil
	m.validMoves = 0
	m.message = ""
	if m.player != nil {
		m.isMyTurn = false
	}
	return m
}

func (m model) deselect() model {
	m.selected = nil
	m.validMoves = 0
	m.broadcast(GameUpdate{Type: "deselect"})
	return m
}

func (m model) broadcast(update GameUpdate) {
	if m.gameSession != nil && m.manager != nil {
		m.manager.BroadcastUpdate(m.player.ID, update)
	}
}

func (m model) broadcastCursorUpdate() {
	if m.gameState != "playing" || !m.isMyTurn {
		return
	}
	m.broadcast(GameUpdate{
		Type: "cursor",
		Data: map[string]any{
			"row": m.cursorRow,
			"col": m.cursorCol,
		},
	})
}

func (m model) handleGameUpdate(update GameUpdate) (tea.Model, tea.Cmd) {
	// Don't process updates from self
	if m.player != nil && update.FromPlayer == m.player.ID {
		return m, m.listenForUpdates()
	}

	switch update.Type {
	case "matched":
		m.gameState = "playing"
		m.gameSession = m.manager.GetGameSession(m.player.ID)
		if m.gameSession != nil {
			m.game = m.gameSession.Game
			m.opponent = m.gameSession.GetOpponent(m.player.ID)
			m.isMyTurn = m.gameSession.IsPlayerTurn(m.player.ID)
		}

	case "move":
		if out, ok := update.Data.(chess.Outcome); ok {
			m.last = &out
		}
		m.isMyTurn = m.gameSession != nil && m.gameSession.IsPlayerTurn(m.player.ID)

	case "cursor", "select", "deselect":
		// Opponent activity; not shown yet.

	case "opponent_disconnected":
		m.gameState = "opponent_disconnected"
		m.isMyTurn = false
		m.selected = nil
		m.validMoves = 0
	}

	return m, m.listenForUpdates()
}

// describeMoveError turns an engine rejection into something a player can
// act on.
func describeMoveError(err error) string {
	switch {
	case errors.Is(err, chess.ErrWrongTurn):
		return "It is not your turn."
	case errors.Is(err, chess.ErrNoPieceSelected):
		return "There is no piece there."
	case errors.Is(err, chess.ErrPathBlocked):
		return "The path is blocked."
	case errors.Is(err, chess.ErrKingExposed):
		return "That would leave your king in check."
	case errors.Is(err, chess.ErrCastling):
		return "You cannot castle now."
	case errors.Is(err, chess.ErrIllegalMove):
		return "That piece cannot move there."
	}
	return err.Error()
}

func (m model) View() string {
	var s strings.Builder
	s.WriteString(m.styles.title.Render("CheSSH") + "\n")

	switch m.gameState {
	case "waiting":
		s.WriteString("Waiting for an opponent to connect...\n\n")
		if m.player != nil && m.manager != nil {
			if position := m.manager.GetQueuePosition(m.player.ID); position > 0 {
				s.WriteString(fmt.Sprintf("Position in queue: %d\n", position))
			}
		}
		s.WriteString("You can explore the board while waiting:\n")
		s.WriteString("Use arrow keys to move cursor, Q to quit\n\n")
		s.WriteString(m.renderBoardWithInfo())
		return s.String()

	case "opponent_disconnected":
		s.WriteString(m.styles.alert.Render("*** OPPONENT DISCONNECTED; YOU WIN ***") + "\n\n")
		s.WriteString("Your opponent has left the game.\n")
		s.WriteString("You can continue exploring the board or press Q to quit.\n\n")
		s.WriteString(m.renderBoardWithInfo())
		return s.String()
	}

	if m.player != nil && m.opponent != nil {
		s.WriteString(fmt.Sprintf("You: %s (%s) vs %s (%s)\n",
			m.player.Name, m.player.Color, m.opponent.Name, m.opponent.Color))
	}

	switch {
	case m.player == nil:
		s.WriteString(fmt.Sprintf("%s TO MOVE - arrow keys move the cursor, ENTER/SPACE to select/move, ESC to deselect, Q to quit\n\n", strings.ToUpper(m.game.Turn().String())))
	case m.isMyTurn:
		s.WriteString("YOUR TURN - Use arrow keys to move cursor, ENTER/SPACE to select/move, ESC to deselect, Q to quit\n\n")
	default:
		s.WriteString("OPPONENT'S TURN - Please wait for your opponent to move\n\n")
	}

	if turn := m.game.Turn(); m.game.InCheck(turn) {
		s.WriteString(m.styles.alert.Render(fmt.Sprintf("*** %s is in check! ***", turn)) + "\n\n")
	}
	if m.message != "" {
		s.WriteString(m.styles.alert.Render(m.message) + "\n\n")
	}

	s.WriteString(m.renderBoardWithInfo())
	return s.String()
}

func (m model) renderBoardWithInfo() string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		strings.Join(m.getBoardLines(), "\n"),
		"   ",
		m.styles.info.Render(strings.Join(m.getInfoLines(), "\n")),
	)
}

func (m model) getBoardLines() []string {
	var lines []string

	lines = append(lines, "  a  b  c  d  e  f  g  h  ")

	board := m.game.Board()
	for row := 7; row >= 0; row-- {
		var line strings.Builder
		line.WriteString(fmt.Sprintf("%d", row+1))

		for col := range 8 {
			sq := chess.Square(row*8 + col)
			cell := board.At(sq).String()

			style := m.styles.dark
			switch {
			case m.cursorRow == row && m.cursorCol == col:
				style = m.styles.cursor
			case m.selected != nil && *m.selected == sq:
				style = m.styles.selected
			case m.validMoves.Has(sq):
				style = m.styles.valid
			case (row+col)%2 == 1:
				style = m.styles.light
			}
			line.WriteString(style.Render(cell))
		}

		line.WriteString(fmt.Sprintf("%d", row+1))
		lines = append(lines, line.String())
	}

	lines = append(lines, "  a  b  c  d  e  f  g  h  ")

	return lines
}

func (m model) getInfoLines() []string {
	var lines []string

	lines = append(lines, "GAME INFO")
	lines = append(lines, fmt.Sprintf("Turn: %s", m.game.Turn()))
	lines = append(lines, fmt.Sprintf("Rules: %s", m.game.Rules()))
	lines = append(lines, "")

	cursor := m.cursor()
	lines = append(lines, fmt.Sprintf("Cursor: %s", cursor))
	lines = append(lines, fmt.Sprintf("Piece: %s", m.game.PieceAt(cursor).Name()))

	if m.selected != nil {
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("Selected: %s", m.game.PieceAt(*m.selected).Name()))
		lines = append(lines, fmt.Sprintf("At: %s", *m.selected))

		if moves := m.validMoves.Squares(); len(moves) > 0 {
			lines = append(lines, "Valid moves:")

			shown := min(len(moves), 6)
			for i := 0; i < shown; i += 2 {
				if i+1 < shown {
					lines = append(lines, fmt.Sprintf("  %s  %s", moves[i], moves[i+1]))
				} else {
					lines = append(lines, fmt.Sprintf("  %s", moves[i]))
				}
			}
			if len(moves) > 6 {
				lines = append(lines, fmt.Sprintf("... and %d more", len(moves)-6))
			}
		} else {
			lines = append(lines, "No legal moves")
		}
	}

	for _, c := range []chess.Color{chess.White, chess.Black} {
		if taken := m.game.Captured(c); len(taken) > 0 {
			var symbols strings.Builder
			for _, p := range taken {
				symbols.WriteString(p.String())
			}
			lines = append(lines, "", fmt.Sprintf("Lost by %s: %s", c, symbols.String()))
		}
	}

	if m.last != nil {
		lines = append(lines, "", fmt.Sprintf("Last move: %s -> %s", m.last.Move.From, m.last.Move.To))
		if m.last.Kind != chess.Normal {
			lines = append(lines, fmt.Sprintf("(%s)", m.last.Kind))
		}
	}

	return lines
}
