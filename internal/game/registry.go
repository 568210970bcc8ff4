package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	engine "github.com/maximobesteiro/montoncito/engine"
	"github.com/maximobesteiro/montoncito/internal/cache"
	"github.com/maximobesteiro/montoncito/internal/rooms"
)

// ErrGameNotFound is returned for unknown game ids.
var ErrGameNotFound = errors.New("game not found")

// Registry tracks every live match by game id.
type Registry struct {
	mu      sync.Mutex
	matches map[string]*Match

	log   *logrus.Logger
	cache *cache.Cache
}

// NewRegistry builds an empty registry. cache may be nil.
func NewRegistry(log *logrus.Logger, c *cache.Cache) *Registry {
	return &Registry{
		matches: make(map[string]*Match),
		log:     log,
		cache:   c,
	}
}

// Create builds a match for a starting room: a standard deck shuffled with a
// fresh seed, room settings folded into the rules, players seated in join
// order. The match is replayable from (seed, players, rules).
func (r *Registry) Create(roomID string, players []string, cfg rooms.GameConfig) (*Match, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("create game for room %s: need at least two players", roomID)
	}

	rules := engine.DefaultRules()
	if cfg.DiscardPiles >= 1 && cfg.DiscardPiles <= 8 {
		rules.DiscardPiles = cfg.DiscardPiles
	}

	seed := rand.Uint32()
	if seed == 0 {
		seed = engine.DefaultSeed
	}
	deck := engine.Shuffle(engine.NewStandardDeck(rules), engine.NewRNG(seed))

	refs := make([]engine.PlayerRef, len(players))
	for i, pid := range players {
		refs[i] = engine.PlayerRef{ID: engine.PlayerID(pid)}
	}

	id := uuid.NewString()
	state := engine.NewGame(refs, deck, engine.Options{Rules: &rules, Seed: seed, ID: id})

	m := &Match{
		Meta: Meta{
			ID:        id,
			RoomID:    roomID,
			Players:   append([]string(nil), players...),
			StartedAt: time.Now().UTC(),
		},
		state: state,
		log:   r.log.WithFields(logrus.Fields{"gameId": id, "roomId": roomID}),
		cache: r.cache,
	}

	r.mu.Lock()
	r.matches[id] = m
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{"gameId": id, "roomId": roomID, "players": len(players), "seed": seed}).
		Info("match created")
	return m, nil
}

// Get returns the live match with that id. Finished matches stay registered
// so players can still fetch the final state after the game ends.
func (r *Registry) Get(gameID string) (*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return m, nil
}

// Load returns the live match for gameID, falling back to the cached
// snapshot when this process no longer holds it (a restart, typically). A
// rehydrated match rejoins the registry so later moves hit the same owner.
func (r *Registry) Load(ctx context.Context, roomID, gameID string) (*Match, error) {
	if m, err := r.Get(gameID); err == nil {
		return m, nil
	}
	data, err := r.cache.LoadSnapshot(ctx, gameID)
	if err != nil {
		return nil, ErrGameNotFound
	}
	m, err := r.rehydrate(roomID, gameID, data)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := r.matches[gameID]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.matches[gameID] = m
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{"gameId": gameID, "roomId": roomID}).
		Info("match rehydrated from snapshot")
	return m, nil
}

// rehydrate rebuilds a match from an encoded snapshot. Only state-derived
// metadata survives; wall-clock fields like StartedAt are lost with the
// process that held them.
func (r *Registry) rehydrate(roomID, gameID string, data []byte) (*Match, error) {
	state, err := engine.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("rehydrate game %s: %w", gameID, err)
	}

	players := make([]string, len(state.Players))
	for i, pid := range state.Players {
		players[i] = string(pid)
	}
	meta := Meta{ID: gameID, RoomID: roomID, Players: players}
	if state.Phase == engine.PhaseGameOver && state.Winner != nil {
		w := string(*state.Winner)
		meta.WinnerID = &w
	}

	return &Match{
		Meta:  meta,
		state: state,
		log:   r.log.WithFields(logrus.Fields{"gameId": gameID, "roomId": roomID}),
		cache: r.cache,
	}, nil
}

// Remove drops a match from the registry.
func (r *Registry) Remove(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.matches, gameID)
}
