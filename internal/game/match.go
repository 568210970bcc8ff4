// Package game owns running matches. Each Match is the single writer for one
// engine state: every move funnels through its mutex, so the pure engine
// never needs locking of its own.
package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	engine "github.com/maximobesteiro/montoncito/engine"
	"github.com/maximobesteiro/montoncito/internal/cache"
)

// ErrNotInGame rejects moves from clients that are not part of the match.
var ErrNotInGame = errors.New("player is not in this game")

// BroadcastFn fans public events out to everyone in the match's room.
type BroadcastFn func(events []engine.GameEvent)

// BroadcastToPlayerFn pushes one observer's redacted view to that player.
type BroadcastToPlayerFn func(playerID string, view View)

// OnGameEndFunc runs once when the match reaches gameover.
type OnGameEndFunc func(roomID, gameID, winnerID string, turns int)

// Meta is the match bookkeeping kept alongside the engine state.
type Meta struct {
	ID         string     `json:"id"`
	RoomID     string     `json:"roomId"`
	Players    []string   `json:"players"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	WinnerID   *string    `json:"winnerId"`
}

// Match pairs one engine state with the callbacks that push its effects out.
type Match struct {
	Meta Meta

	mu    sync.Mutex
	state engine.GameState

	log   *logrus.Entry
	cache *cache.Cache

	BroadcastFn         BroadcastFn
	BroadcastToPlayerFn BroadcastToPlayerFn
	OnGameEnd           OnGameEndFunc
}

// HandleMove applies one move on behalf of playerID and fans out the
// results. The engine decides legality; this layer only pins the move to the
// submitting client so nobody can act as someone else.
func (m *Match) HandleMove(ctx context.Context, playerID string, move engine.Move) ([]engine.GameEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasPlayer(playerID) {
		return nil, ErrNotInGame
	}
	if move.Kind != engine.MoveStartGame && m.state.Turn.ActivePlayer != engine.PlayerID(playerID) {
		return []engine.GameEvent{{
			Type:    engine.EventInvalidMove,
			Payload: map[string]any{"reason": "Not your turn"},
		}}, nil
	}

	next, events := engine.ApplyMove(m.state, move)
	m.state = next

	if next.Phase == engine.PhaseGameOver && m.Meta.FinishedAt == nil {
		now := time.Now().UTC()
		m.Meta.FinishedAt = &now
		if next.Winner != nil {
			w := string(*next.Winner)
			m.Meta.WinnerID = &w
		}
	}

	m.persistSnapshot(ctx)
	m.fanOut(events)

	if next.Phase == engine.PhaseGameOver && m.OnGameEnd != nil {
		winner := ""
		if m.Meta.WinnerID != nil {
			winner = *m.Meta.WinnerID
		}
		m.OnGameEnd(m.Meta.RoomID, m.Meta.ID, winner, next.Turn.Number)
	}
	return events, nil
}

// ViewFor returns the redacted state for one observer.
func (m *Match) ViewFor(playerID string) View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ViewFor(m.state, engine.PlayerID(playerID))
}

// State returns a deep copy of the full engine state. Room members only; the
// HTTP layer enforces membership before calling.
func (m *Match) State() engine.GameState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// PushViews re-sends every player their current view, used after a reconnect
// or an explicit state request.
func (m *Match) PushViews() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushViewsLocked()
}

func (m *Match) hasPlayer(playerID string) bool {
	for _, p := range m.Meta.Players {
		if p == playerID {
			return true
		}
	}
	return false
}

// persistSnapshot caches the latest encoded state asynchronously; a cache
// miss or failure never blocks or fails the move.
func (m *Match) persistSnapshot(ctx context.Context) {
	data, err := engine.EncodeSnapshot(m.state)
	if err != nil {
		m.log.WithError(err).Warn("encode snapshot")
		return
	}
	go func() {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := m.cache.SaveSnapshot(saveCtx, m.Meta.ID, data); err != nil {
			m.log.WithError(err).Warn("cache snapshot")
		}
	}()
}

func (m *Match) fanOut(events []engine.GameEvent) {
	if m.BroadcastFn != nil && len(events) > 0 {
		m.BroadcastFn(events)
	}
	m.pushViewsLocked()
}

func (m *Match) pushViewsLocked() {
	if m.BroadcastToPlayerFn == nil {
		return
	}
	for _, pid := range m.Meta.Players {
		m.BroadcastToPlayerFn(pid, ViewFor(m.state, engine.PlayerID(pid)))
	}
}
