// Package rooms owns the pre-game lobby lifecycle: creating rooms, joining
// and leaving them, tweaking settings, and handing a full room off to the
// game registry when the owner starts the match.
package rooms

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/maximobesteiro/montoncito/internal/database"
	"github.com/maximobesteiro/montoncito/internal/names"
)

// Sentinel errors; the HTTP layer maps each to a status code.
var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrNotOwner      = errors.New("only the owner can do this")
	ErrRoomNotOpen   = errors.New("room is not open")
	ErrRoomFull      = errors.New("room is full")
	ErrAlreadyInRoom = errors.New("player already in room")
	ErrNotInRoom     = errors.New("player is not in this room")
	ErrTooFewPlayers = errors.New("at least two players are required to start")
	ErrInvalidPatch  = errors.New("invalid room settings")
)

// Visibility controls whether a room shows up in the public listing.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Status is the room lifecycle stage.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// PlayerRef is a room membership entry.
type PlayerRef struct {
	ID      string
	IsOwner bool
}

// GameConfig holds the pre-game settings frozen into the match on start.
type GameConfig struct {
	DiscardPiles int `json:"discardPiles"`
}

// Room is the authoritative lobby record.
type Room struct {
	ID         string
	Slug       string
	Visibility Visibility
	Status     Status
	MaxPlayers int
	OwnerID    string
	Players    []PlayerRef
	CreatedAt  time.Time
	GameID     string
	GameConfig GameConfig
}

// Defaults are the creation-time settings, sourced from configuration.
type Defaults struct {
	Visibility     Visibility
	MaxPlayers     int
	HardMaxPlayers int
	SlugLength     int
}

// StartGameFn creates the match for a starting room and returns its id.
type StartGameFn func(roomID string, players []string, cfg GameConfig) (string, error)

// Patch is a partial room update; nil fields are left untouched.
type Patch struct {
	Visibility   *Visibility
	MaxPlayers   *int
	DiscardPiles *int
}

// Service holds every room in memory, keyed by id and by slug.
type Service struct {
	mu        sync.Mutex
	defaults  Defaults
	profiles  database.ProfileStore
	startGame StartGameFn
	log       *logrus.Logger

	byID     map[string]*Room
	idBySlug map[string]string
}

// NewService builds a room service. startGame is invoked while starting a
// room and must not call back into the service.
func NewService(defaults Defaults, profiles database.ProfileStore, startGame StartGameFn, log *logrus.Logger) *Service {
	return &Service{
		defaults:  defaults,
		profiles:  profiles,
		startGame: startGame,
		log:       log,
		byID:      make(map[string]*Room),
		idBySlug:  make(map[string]string),
	}
}

// Create opens a new room owned by clientID, provisioning the owner's
// profile if needed.
func (s *Service) Create(ctx context.Context, clientID string) (Room, error) {
	if _, err := s.profiles.GetOrCreate(ctx, clientID); err != nil {
		return Room{}, fmt.Errorf("provision profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room := &Room{
		ID:         uuid.NewString(),
		Slug:       s.uniqueSlugLocked(),
		Visibility: s.defaults.Visibility,
		Status:     StatusOpen,
		MaxPlayers: s.defaults.MaxPlayers,
		OwnerID:    clientID,
		Players:    []PlayerRef{{ID: clientID, IsOwner: true}},
		CreatedAt:  time.Now().UTC(),
		GameConfig: GameConfig{DiscardPiles: 1},
	}
	s.byID[room.ID] = room
	s.idBySlug[room.Slug] = room.ID

	s.log.WithFields(logrus.Fields{"roomId": room.ID, "slug": room.Slug, "ownerId": clientID}).
		Info("room created")
	return copyRoom(room), nil
}

// GetByID returns a snapshot of the room.
func (s *Service) GetByID(roomID string) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.byID[roomID]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	return copyRoom(room), nil
}

// GetBySlug returns a snapshot of the room with that slug.
func (s *Service) GetBySlug(slug string) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.idBySlug[slug]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	return copyRoom(s.byID[id]), nil
}

// Update applies an owner-only settings patch to an open room.
func (s *Service) Update(roomID, requesterID string, patch Patch) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.byID[roomID]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	if room.OwnerID != requesterID {
		return Room{}, ErrNotOwner
	}
	if room.Status != StatusOpen {
		return Room{}, ErrRoomNotOpen
	}

	if patch.Visibility != nil {
		v := *patch.Visibility
		if v != VisibilityPublic && v != VisibilityPrivate {
			return Room{}, fmt.Errorf("%w: unknown visibility %q", ErrInvalidPatch, v)
		}
		room.Visibility = v
	}

	if patch.MaxPlayers != nil {
		requested := *patch.MaxPlayers
		switch {
		case requested < len(room.Players):
			return Room{}, fmt.Errorf("%w: maxPlayers cannot be less than current players (%d)", ErrInvalidPatch, len(room.Players))
		case requested < 2:
			return Room{}, fmt.Errorf("%w: maxPlayers must be at least 2", ErrInvalidPatch)
		case requested > s.defaults.HardMaxPlayers:
			return Room{}, fmt.Errorf("%w: maxPlayers cannot exceed hard limit (%d)", ErrInvalidPatch, s.defaults.HardMaxPlayers)
		}
		room.MaxPlayers = requested
	}

	if patch.DiscardPiles != nil {
		v := *patch.DiscardPiles
		if v < 1 || v > 8 {
			return Room{}, fmt.Errorf("%w: discardPiles must be between 1 and 8", ErrInvalidPatch)
		}
		room.GameConfig.DiscardPiles = v
	}

	return copyRoom(room), nil
}

// Page is one page of the public room listing.
type Page struct {
	Items []Room `json:"items"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Total int    `json:"total"`
	Pages int    `json:"pages"`
}

// ListPublicOpen returns public open rooms, paged, oldest first.
func (s *Service) ListPublicOpen(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var filtered []*Room
	for _, room := range s.byID {
		if room.Visibility == VisibilityPublic && room.Status == StatusOpen {
			filtered = append(filtered, room)
		}
	}
	sortRoomsByCreation(filtered)

	total := len(filtered)
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	items := make([]Room, 0, end-start)
	for _, room := range filtered[start:end] {
		items = append(items, copyRoom(room))
	}
	return Page{Items: items, Page: page, Limit: limit, Total: total, Pages: pages}
}

// Join adds clientID to an open, non-full room they are not already in.
func (s *Service) Join(ctx context.Context, roomID, clientID string) (Room, error) {
	if _, err := s.profiles.GetOrCreate(ctx, clientID); err != nil {
		return Room{}, fmt.Errorf("provision profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.byID[roomID]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	if room.Status != StatusOpen {
		return Room{}, ErrRoomNotOpen
	}
	if hasPlayer(room, clientID) {
		return Room{}, ErrAlreadyInRoom
	}
	if len(room.Players) >= room.MaxPlayers {
		return Room{}, ErrRoomFull
	}

	room.Players = append(room.Players, PlayerRef{ID: clientID})
	s.log.WithFields(logrus.Fields{"roomId": room.ID, "playerId": clientID}).Info("player joined")
	return copyRoom(room), nil
}

// LeaveResult reports what happened to the room after a leave: either the
// updated room, or Deleted when the last player walked out.
type LeaveResult struct {
	ID      string
	Deleted bool
	Room    *Room
}

// Leave removes clientID from an open room. Ownership transfers to the
// oldest remaining player; an emptied room is deleted.
func (s *Service) Leave(roomID, clientID string) (LeaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.byID[roomID]
	if !ok {
		return LeaveResult{}, ErrRoomNotFound
	}
	if room.Status != StatusOpen {
		return LeaveResult{}, ErrRoomNotOpen
	}

	idx := -1
	for i, p := range room.Players {
		if p.ID == clientID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return LeaveResult{}, ErrNotInRoom
	}

	removed := room.Players[idx]
	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)

	if len(room.Players) == 0 {
		delete(s.byID, room.ID)
		delete(s.idBySlug, room.Slug)
		s.log.WithField("roomId", room.ID).Info("room deleted")
		return LeaveResult{ID: room.ID, Deleted: true}, nil
	}

	if removed.IsOwner {
		room.OwnerID = room.Players[0].ID
		for i := range room.Players {
			room.Players[i].IsOwner = i == 0
		}
		s.log.WithFields(logrus.Fields{"roomId": room.ID, "ownerId": room.OwnerID}).
			Info("ownership transferred")
	}

	cp := copyRoom(room)
	return LeaveResult{ID: room.ID, Room: &cp}, nil
}

// Start freezes the room settings into a match and moves the room to
// in_progress. Owner-only, open rooms only, two players minimum.
func (s *Service) Start(roomID, requesterID string) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.byID[roomID]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	if room.OwnerID != requesterID {
		return Room{}, ErrNotOwner
	}
	if room.Status != StatusOpen {
		return Room{}, ErrRoomNotOpen
	}
	if len(room.Players) < 2 {
		return Room{}, ErrTooFewPlayers
	}

	ordered := make([]string, len(room.Players))
	for i, p := range room.Players {
		ordered[i] = p.ID
	}

	gameID, err := s.startGame(room.ID, ordered, room.GameConfig)
	if err != nil {
		return Room{}, fmt.Errorf("create game: %w", err)
	}

	room.GameID = gameID
	room.Status = StatusInProgress
	s.log.WithFields(logrus.Fields{"roomId": room.ID, "gameId": gameID}).Info("game started")
	return copyRoom(room), nil
}

// Finish marks an in-progress room finished once its match ends.
func (s *Service) Finish(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.byID[roomID]; ok && room.Status == StatusInProgress {
		room.Status = StatusFinished
	}
}

// IsMember reports whether clientID belongs to the room.
func (s *Service) IsMember(roomID, clientID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.byID[roomID]
	if !ok {
		return false, ErrRoomNotFound
	}
	return hasPlayer(room, clientID), nil
}

func hasPlayer(room *Room, clientID string) bool {
	for _, p := range room.Players {
		if p.ID == clientID {
			return true
		}
	}
	return false
}

func copyRoom(room *Room) Room {
	out := *room
	out.Players = make([]PlayerRef, len(room.Players))
	copy(out.Players, room.Players)
	return out
}

// uniqueSlugLocked draws readable slugs until one is free; collisions get a
// hex fallback. Caller holds the lock.
func (s *Service) uniqueSlugLocked() string {
	for i := 0; i < 5; i++ {
		candidate := names.RoomSlug(s.defaults.SlugLength)
		if _, taken := s.idBySlug[candidate]; !taken {
			return candidate
		}
	}
	return uuid.NewString()[:8]
}

func sortRoomsByCreation(rs []*Room) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].CreatedAt.Before(rs[j].CreatedAt) })
}
