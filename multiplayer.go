package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"

	"github.com/imjasonh/chesslaw/internal/chess"
	"github.com/imjasonh/chesslaw/internal/storage"
)

var ErrNotInGame = errors.New("player is not in this game")

// Recorder persists game ledgers. *storage.Store implements it.
type Recorder interface {
	CreateGame(rec storage.GameRecord) error
	AppendMove(id string, m chess.Move) error
	FinishGame(id string, result storage.Result) error
}

// Player represents a connected player
type Player struct {
	ID         string
	Session    ssh.Session
	Color      chess.Color
	Name       string
	GameID     string
	Connected  bool
	UpdateChan chan GameUpdate // Channel for sending updates to the player's model
}

// GameUpdate represents an update to broadcast to players
type GameUpdate struct {
	Type       string // "matched", "move", "cursor", "select", "deselect", "opponent_disconnected"
	Data       any
	FromPlayer string
}

// GameSession manages a single game between two players
type GameSession struct {
	ID      string
	Game    *chess.Game
	White   *Player
	Black   *Player
	Updates chan GameUpdate

	recorder Recorder
	logger   *log.Logger
	finished bool
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.RWMutex
	moveMu   sync.Mutex
}

func NewGameSession(id string, white, black *Player, rules chess.Rules, recorder Recorder, logger *log.Logger) *GameSession {
	ctx, cancel := context.WithCancel(context.Background())

	session := &GameSession{
		ID:       id,
		Game:     chess.NewGame(chess.WithRules(rules)),
		White:    white,
		Black:    black,
		Updates:  make(chan GameUpdate, 10),
		recorder: recorder,
		logger:   logger.With("game", id),
		ctx:      ctx,
		cancel:   cancel,
	}

	white.Color = chess.White
	white.GameID = id
	black.Color = chess.Black
	black.GameID = id

	go session.handleUpdates()

	return session
}

// record stores the new game. It must run before either player can move so
// the ledger has somewhere to go.
func (gs *GameSession) record() {
	if gs.recorder == nil {
		return
	}
	err := gs.recorder.CreateGame(storage.GameRecord{
		ID:    gs.ID,
		White: gs.White.Name,
		Black: gs.Black.Name,
		Rules: gs.Game.Rules().String(),
	})
	if err != nil {
		gs.logger.Error("failed to record new game", "err", err)
	}
}

func (gs *GameSession) handleUpdates() {
	for {
		select {
		case <-gs.ctx.Done():
			return
		case update := <-gs.Updates:
			gs.broadcastUpdate(update)
		}
	}
}

func (gs *GameSession) broadcastUpdate(update GameUpdate) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	for _, p := range []*Player{gs.White, gs.Black} {
		if p == nil || !p.Connected || p.UpdateChan == nil {
			continue
		}
		select {
		case p.UpdateChan <- update:
		default:
			// Channel full, drop update
		}
	}
}

func (gs *GameSession) GetPlayer(playerID string) *Player {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	if gs.White != nil && gs.White.ID == playerID {
		return gs.White
	}
	if gs.Black != nil && gs.Black.ID == playerID {
		return gs.Black
	}
	return nil
}

func (gs *GameSession) GetOpponent(playerID string) *Player {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	if gs.White != nil && gs.White.ID == playerID {
		return gs.Black
	}
	if gs.Black != nil && gs.Black.ID == playerID {
		return gs.White
	}
	return nil
}

func (gs *GameSession) IsPlayerTurn(playerID string) bool {
	player := gs.GetPlayer(playerID)
	if player == nil {
		return false
	}
	return gs.Game.Turn() == player.Color
}

// Move plays a move on behalf of a player, records it and tells both sides.
func (gs *GameSession) Move(playerID string, from, to chess.Square) (chess.Outcome, error) {
	player := gs.GetPlayer(playerID)
	if player == nil {
		return chess.Outcome{}, ErrNotInGame
	}

	gs.moveMu.Lock()
	defer gs.moveMu.Unlock()

	if gs.Game.Turn() != player.Color {
		return chess.Outcome{}, fmt.Errorf("%w: waiting for %s", chess.ErrWrongTurn, gs.Game.Turn())
	}
	out, err := gs.Game.Move(from, to)
	if err != nil {
		return out, err
	}
	gs.logger.Debug("move", "player", player.Name, "move", out.Move, "kind", out.Kind)

	if gs.recorder != nil {
		if err := gs.recorder.AppendMove(gs.ID, out.Move); err != nil {
			gs.logger.Error("failed to record move", "move", out.Move, "err", err)
		}
	}

	select {
	case gs.Updates <- GameUpdate{Type: "move", Data: out, FromPlayer: playerID}:
	case <-time.After(100 * time.Millisecond):
		gs.logger.Warn("dropped move update", "move", out.Move)
	}
	return out, nil
}

func (gs *GameSession) Disconnect(playerID string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	var disconnectedPlayer, remainingPlayer *Player

	if gs.White != nil && gs.White.ID == playerID {
		gs.White.Connected = false
		disconnectedPlayer = gs.White
		remainingPlayer = gs.Black
	}
	if gs.Black != nil && gs.Black.ID == playerID {
		gs.Black.Connected = false
		disconnectedPlayer = gs.Black
		remainingPlayer = gs.White
	}
	if disconnectedPlayer == nil {
		return
	}

	result := storage.ResultAbandoned
	if remainingPlayer != nil && remainingPlayer.Connected {
		result = storage.ResultWhiteWins
		if remainingPlayer.Color == chess.Black {
			result = storage.ResultBlackWins
		}
	}
	gs.finish(result)

	// Notify remaining player of opponent disconnect
	if remainingPlayer != nil && remainingPlayer.Connected && remainingPlayer.UpdateChan != nil {
		disconnectUpdate := GameUpdate{
			Type: "opponent_disconnected",
			Data: map[string]any{
				"disconnectedPlayer": disconnectedPlayer.Name,
			},
		}
		select {
		case remainingPlayer.UpdateChan <- disconnectUpdate:
		default:
		}
	}

	// If both players disconnected, cleanup
	if (gs.White == nil || !gs.White.Connected) && (gs.Black == nil || !gs.Black.Connected) {
		gs.cleanup()
	}
}

// finish records the first result reported for the game. Callers hold mu.
func (gs *GameSession) finish(result storage.Result) {
	if gs.finished {
		return
	}
	gs.finished = true
	gs.logger.Info("game over", "result", result, "moves", len(gs.Game.Ledger()))
	if gs.recorder != nil {
		if err := gs.recorder.FinishGame(gs.ID, result); err != nil {
			gs.logger.Error("failed to record result", "err", err)
		}
	}
}

func (gs *GameSession) cleanup() {
	gs.cancel()
}

// GameManager handles matchmaking and game coordination
type GameManager struct {
	playerQueue  []*Player
	activeGames  map[string]*GameSession
	playerToGame map[string]string // playerID -> gameID
	mu           sync.RWMutex
	gameCounter  int

	rules    chess.Rules
	recorder Recorder
	logger   *log.Logger
}

// NewGameManager creates a manager whose games use rules and are recorded by
// recorder, which may be nil.
func NewGameManager(rules chess.Rules, recorder Recorder, logger *log.Logger) *GameManager {
	return &GameManager{
		playerQueue:  make([]*Player, 0),
		activeGames:  make(map[string]*GameSession),
		playerToGame: make(map[string]string),
		rules:        rules,
		recorder:     recorder,
		logger:       logger,
	}
}

func (gm *GameManager) AddPlayer(player *Player) {
	session := gm.enqueue(player)
	if session == nil {
		return
	}

	// Recording touches disk, so it happens outside gm.mu. Players only
	// learn about the game once it is recorded.
	session.record()

	white, black := session.White, session.Black
	matchUpdate := GameUpdate{
		Type: "matched",
		Data: map[string]any{
			"gameID": session.ID,
			"opponent": map[string]string{
				"white_opponent": black.Name,
				"black_opponent": white.Name,
			},
		},
	}
	for _, p := range []*Player{white, black} {
		if p.UpdateChan == nil {
			continue
		}
		select {
		case p.UpdateChan <- matchUpdate:
		default:
		}
	}
}

// enqueue adds player to the queue and pairs the two oldest waiting players
// into a new session, if there are two.
func (gm *GameManager) enqueue(player *Player) *GameSession {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	gm.playerQueue = append(gm.playerQueue, player)
	gm.logger.Info("player queued", "player", player.Name, "queue", len(gm.playerQueue))

	if len(gm.playerQueue) < 2 {
		return nil
	}
	white := gm.playerQueue[0]
	black := gm.playerQueue[1]
	gm.playerQueue = gm.playerQueue[2:]

	gm.gameCounter++
	gameID := fmt.Sprintf("game_%d_%d", time.Now().Unix(), gm.gameCounter)

	session := NewGameSession(gameID, white, black, gm.rules, gm.recorder, gm.logger)
	gm.activeGames[gameID] = session
	gm.playerToGame[white.ID] = gameID
	gm.playerToGame[black.ID] = gameID
	gm.logger.Info("game started", "game", gameID, "white", white.Name, "black", black.Name, "rules", gm.rules)
	return session
}

func (gm *GameManager) RemovePlayer(playerID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for i, player := range gm.playerQueue {
		if player.ID == playerID {
			gm.playerQueue = append(gm.playerQueue[:i], gm.playerQueue[i+1:]...)
			break
		}
	}

	if gameID, exists := gm.playerToGame[playerID]; exists {
		if session, gameExists := gm.activeGames[gameID]; gameExists {
			session.Disconnect(playerID)

			if (session.White == nil || !session.White.Connected) &&
				(session.Black == nil || !session.Black.Connected) {
				delete(gm.activeGames, gameID)
				delete(gm.playerToGame, session.White.ID)
				delete(gm.playerToGame, session.Black.ID)
			}
		}
		delete(gm.playerToGame, playerID)
	}
}

func (gm *GameManager) GetGameSession(playerID string) *GameSession {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	if gameID, exists := gm.playerToGame[playerID]; exists {
		return gm.activeGames[gameID]
	}
	return nil
}

func (gm *GameManager) BroadcastUpdate(playerID string, update GameUpdate) {
	session := gm.GetGameSession(playerID)
	if session != nil {
		update.FromPlayer = playerID
		select {
		case session.Updates <- update:
		case <-time.After(100 * time.Millisecond):
			// Drop update if channel is full
		}
	}
}

func (gm *GameManager) GetQueuePosition(playerID string) int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	for i, player := range gm.playerQueue {
		if player.ID == playerID {
			return i + 1
		}
	}
	return -1
}
