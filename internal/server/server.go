// Package server exposes the HTTP and WebSocket surface: room lifecycle,
// profile updates, game state and moves. Clients identify themselves with an
// X-Client-Id header; sockets authenticate with a short-lived join token.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maximobesteiro/montoncito/internal/auth"
	"github.com/maximobesteiro/montoncito/internal/cache"
	"github.com/maximobesteiro/montoncito/internal/config"
	"github.com/maximobesteiro/montoncito/internal/database"
	"github.com/maximobesteiro/montoncito/internal/game"
	"github.com/maximobesteiro/montoncito/internal/rooms"
)

const maxDisplayNameLength = 32

// Server bundles the services behind the HTTP mux.
type Server struct {
	log      *logrus.Logger
	cfg      config.Config
	rooms    *rooms.Service
	games    *game.Registry
	profiles database.ProfileStore
	cache    *cache.Cache
	hub      *Hub

	started time.Time
}

// New builds a server around already-wired services.
func New(log *logrus.Logger, cfg config.Config, roomSvc *rooms.Service, games *game.Registry, profiles database.ProfileStore, c *cache.Cache, hub *Hub) *Server {
	return &Server{
		log:      log,
		cfg:      cfg,
		rooms:    roomSvc,
		games:    games,
		profiles: profiles,
		cache:    c,
		hub:      hub,
		started:  time.Now(),
	}
}

// Hub returns the websocket hub, so match creation can attach broadcasts.
func (s *Server) Hub() *Hub { return s.hub }

// Routes builds the full route table.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /rooms", s.withClientID(s.handleCreateRoom))
	mux.HandleFunc("GET /rooms", s.handleListRooms)
	mux.HandleFunc("GET /rooms/by-slug/{slug}", s.handleGetRoomBySlug)
	mux.HandleFunc("PATCH /rooms/{id}", s.withClientID(s.handlePatchRoom))
	mux.HandleFunc("POST /rooms/{id}/join", s.withClientID(s.handleJoinRoom))
	mux.HandleFunc("POST /rooms/{id}/leave", s.withClientID(s.handleLeaveRoom))
	mux.HandleFunc("POST /rooms/{id}/start", s.withClientID(s.handleStartRoom))
	mux.HandleFunc("GET /rooms/{id}/game", s.withClientID(s.handleGetGame))
	mux.HandleFunc("POST /rooms/{id}/game/moves", s.withClientID(s.handlePostMove))

	mux.HandleFunc("PATCH /profile", s.withClientID(s.handlePatchProfile))

	mux.HandleFunc("GET /ws", s.handleWS)

	return mux
}

type clientHandler func(w http.ResponseWriter, r *http.Request, clientID string)

// withClientID enforces the X-Client-Id header on identified endpoints.
func (s *Server) withClientID(next clientHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := strings.TrimSpace(r.Header.Get("X-Client-Id"))
		if clientID == "" {
			writeError(w, http.StatusBadRequest, "missing X-Client-Id header")
			return
		}
		next(w, r, clientID)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"uptimeSeconds": int(time.Since(s.started).Seconds()),
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request, clientID string) {
	room, err := s.rooms.Create(r.Context(), clientID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.roomView(r.Context(), room))
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)
	if limit > 50 {
		limit = 50
	}

	result := s.rooms.ListPublicOpen(page, limit)
	out := roomPage{
		Items: make([]roomView, 0, len(result.Items)),
		Page:  result.Page,
		Limit: result.Limit,
		Total: result.Total,
		Pages: result.Pages,
	}
	for _, room := range result.Items {
		out.Items = append(out.Items, s.roomView(r.Context(), room))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRoomBySlug(w http.ResponseWriter, r *http.Request) {
	room, err := s.rooms.GetBySlug(r.PathValue("slug"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.roomView(r.Context(), room))
}

func (s *Server) handlePatchRoom(w http.ResponseWriter, r *http.Request, clientID string) {
	var req patchRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	room, err := s.rooms.Update(r.PathValue("id"), clientID, req.toPatch())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	view := s.roomView(r.Context(), room)
	s.hub.BroadcastRoom(room.ID, ServerMessage{Type: "room_updated", Room: &view})
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request, clientID string) {
	room, err := s.rooms.Join(r.Context(), r.PathValue("id"), clientID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	token, err := auth.IssueJoinToken(s.cfg.WSSecret, room.ID, clientID, auth.DefaultTokenTTL)
	if err != nil {
		s.log.WithError(err).Error("issue join token")
		writeError(w, http.StatusInternalServerError, "could not issue join token")
		return
	}

	view := s.roomView(r.Context(), room)
	s.hub.BroadcastRoom(room.ID, ServerMessage{Type: "room_updated", Room: &view})
	writeJSON(w, http.StatusOK, joinResponse{roomView: view, WsJoinToken: token})
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request, clientID string) {
	result, err := s.rooms.Leave(r.PathValue("id"), clientID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if result.Deleted {
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
		return
	}

	view := s.roomView(r.Context(), *result.Room)
	s.hub.BroadcastRoom(result.ID, ServerMessage{Type: "room_updated", Room: &view})
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStartRoom(w http.ResponseWriter, r *http.Request, clientID string) {
	room, err := s.rooms.Start(r.PathValue("id"), clientID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	view := s.roomView(r.Context(), room)
	s.hub.BroadcastRoom(room.ID, ServerMessage{Type: "game_started", Room: &view})
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request, clientID string) {
	roomID := r.PathValue("id")
	if !s.requireMember(w, roomID, clientID) {
		return
	}

	m, err := s.matchForRoom(r.Context(), roomID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	view := m.ViewFor(clientID)
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePostMove(w http.ResponseWriter, r *http.Request, clientID string) {
	roomID := r.PathValue("id")
	if !s.requireMember(w, roomID, clientID) {
		return
	}

	var dto moveDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	move, err := dto.ToEngine()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := s.matchForRoom(r.Context(), roomID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	events, err := m.HandleMove(r.Context(), clientID, move)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ServerMessage{Type: "events", Events: events})
}

func (s *Server) handlePatchProfile(w http.ResponseWriter, r *http.Request, clientID string) {
	var req patchProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" || len(name) > maxDisplayNameLength {
		writeError(w, http.StatusBadRequest, "displayName must be 1-32 characters")
		return
	}

	profile, err := s.profiles.SetDisplayName(r.Context(), clientID, name)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// roomView shapes a room for responses, folding in socket presence when a
// cache is configured.
func (s *Server) roomView(ctx context.Context, room rooms.Room) roomView {
	view := toRoomView(ctx, room, s.profiles)
	if present, err := s.cache.Present(ctx, room.ID); err == nil {
		view.Connected = present
	}
	return view
}

// requireMember writes the error response itself when membership fails.
func (s *Server) requireMember(w http.ResponseWriter, roomID, clientID string) bool {
	member, err := s.rooms.IsMember(roomID, clientID)
	if err != nil {
		s.writeServiceError(w, err)
		return false
	}
	if !member {
		writeError(w, http.StatusForbidden, "not a member of this room")
		return false
	}
	return true
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		s.log.WithError(err).Error("request failed")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound),
		errors.Is(err, game.ErrGameNotFound),
		errors.Is(err, database.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, rooms.ErrNotOwner),
		errors.Is(err, game.ErrNotInGame):
		return http.StatusForbidden
	case errors.Is(err, rooms.ErrRoomNotOpen),
		errors.Is(err, rooms.ErrRoomFull),
		errors.Is(err, rooms.ErrAlreadyInRoom),
		errors.Is(err, rooms.ErrNotInRoom),
		errors.Is(err, rooms.ErrTooFewPlayers):
		return http.StatusConflict
	case errors.Is(err, rooms.ErrInvalidPatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
