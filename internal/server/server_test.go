package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engine "github.com/maximobesteiro/montoncito/engine"
	"github.com/maximobesteiro/montoncito/internal/config"
	"github.com/maximobesteiro/montoncito/internal/database"
	"github.com/maximobesteiro/montoncito/internal/game"
	"github.com/maximobesteiro/montoncito/internal/rooms"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := quietLogger()
	cfg := config.Config{
		Port:                  3000,
		WSSecret:              "test-secret-123",
		RoomDefaultVisibility: "public",
		RoomDefaultMaxPlayers: 2,
		RoomHardMaxPlayers:    8,
		RoomSlugLength:        10,
	}

	profiles := database.NewMemoryProfileStore()
	registry := game.NewRegistry(log, nil)
	hub := NewHub(log, nil)

	startGame := func(roomID string, players []string, gameCfg rooms.GameConfig) (string, error) {
		m, err := registry.Create(roomID, players, gameCfg)
		if err != nil {
			return "", err
		}
		hub.AttachMatch(m)
		return m.Meta.ID, nil
	}

	roomSvc := rooms.NewService(rooms.Defaults{
		Visibility:     rooms.VisibilityPublic,
		MaxPlayers:     cfg.RoomDefaultMaxPlayers,
		HardMaxPlayers: cfg.RoomHardMaxPlayers,
		SlugLength:     cfg.RoomSlugLength,
	}, profiles, startGame, log)

	return New(log, cfg, roomSvc, registry, profiles, nil, hub)
}

func doRequest(t *testing.T, s *Server, method, path, clientID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if clientID != "" {
		req.Header.Set("X-Client-Id", clientID)
	}
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/health", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "uptimeSeconds")
	assert.Contains(t, body, "timestamp")
}

func TestMissingClientID(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/rooms", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAndFetchRoom(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/rooms", "owner", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[roomView](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.Slug)
	assert.Equal(t, rooms.StatusOpen, created.Status)
	require.Len(t, created.Players, 1)
	assert.True(t, created.Players[0].IsOwner)
	assert.NotEmpty(t, created.Players[0].DisplayName)

	rec = doRequest(t, s, http.MethodGet, "/rooms/by-slug/"+created.Slug, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decodeBody[roomView](t, rec)
	assert.Equal(t, created.ID, fetched.ID)

	rec = doRequest(t, s, http.MethodGet, "/rooms/by-slug/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJoinReturnsWSToken(t *testing.T) {
	s := newTestServer(t)
	created := decodeBody[roomView](t, doRequest(t, s, http.MethodPost, "/rooms", "owner", nil))

	rec := doRequest(t, s, http.MethodPost, "/rooms/"+created.ID+"/join", "guest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	joined := decodeBody[joinResponse](t, rec)
	assert.NotEmpty(t, joined.WsJoinToken)
	assert.Len(t, joined.Players, 2)

	// Room default capacity is two.
	rec = doRequest(t, s, http.MethodPost, "/rooms/"+created.ID+"/join", "third", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/rooms/"+created.ID+"/join", "guest", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPatchRoom(t *testing.T) {
	s := newTestServer(t)
	created := decodeBody[roomView](t, doRequest(t, s, http.MethodPost, "/rooms", "owner", nil))

	rec := doRequest(t, s, http.MethodPatch, "/rooms/"+created.ID, "stranger", map[string]any{"maxPlayers": 4})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, s, http.MethodPatch, "/rooms/"+created.ID, "owner", map[string]any{"maxPlayers": 99})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodPatch, "/rooms/"+created.ID, "owner", map[string]any{
		"visibility": "private",
		"maxPlayers": 4,
		"gameConfig": map[string]any{"discardPiles": 2},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	patched := decodeBody[roomView](t, rec)
	assert.Equal(t, rooms.VisibilityPrivate, patched.Visibility)
	assert.Equal(t, 4, patched.MaxPlayers)
	assert.Equal(t, 2, patched.GameConfig.DiscardPiles)

	rec = doRequest(t, s, http.MethodPatch, "/rooms/missing", "owner", map[string]any{"maxPlayers": 4})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRoomsFiltersPrivate(t *testing.T) {
	s := newTestServer(t)
	public := decodeBody[roomView](t, doRequest(t, s, http.MethodPost, "/rooms", "a", nil))
	hidden := decodeBody[roomView](t, doRequest(t, s, http.MethodPost, "/rooms", "b", nil))
	doRequest(t, s, http.MethodPatch, "/rooms/"+hidden.ID, "b", map[string]any{"visibility": "private"})

	rec := doRequest(t, s, http.MethodGet, "/rooms?page=1&limit=20", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeBody[roomPage](t, rec)
	require.Len(t, page.Items, 1)
	assert.Equal(t, public.ID, page.Items[0].ID)
	assert.Equal(t, 1, page.Total)
}

func TestGameFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	created := decodeBody[roomView](t, doRequest(t, s, http.MethodPost, "/rooms", "owner", nil))
	doRequest(t, s, http.MethodPost, "/rooms/"+created.ID+"/join", "guest", nil)

	// Starting needs the owner.
	rec := doRequest(t, s, http.MethodPost, "/rooms/"+created.ID+"/start", "guest", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/rooms/"+created.ID+"/start", "owner", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	started := decodeBody[roomView](t, rec)
	assert.Equal(t, rooms.StatusInProgress, started.Status)
	assert.NotEmpty(t, started.GameID)

	rec = doRequest(t, s, http.MethodGet, "/rooms/"+created.ID+"/game", "owner", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[game.View](t, rec)
	assert.Equal(t, started.GameID, view.GameID)
	assert.Equal(t, engine.PhaseLobby, view.Phase)

	// Outsiders cannot see or play the game.
	rec = doRequest(t, s, http.MethodGet, "/rooms/"+created.ID+"/game", "stranger", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/rooms/"+created.ID+"/game/moves", "owner", map[string]any{"kind": "START_GAME"})
	require.Equal(t, http.StatusOK, rec.Code)
	msg := decodeBody[ServerMessage](t, rec)
	require.NotEmpty(t, msg.Events)
	assert.Equal(t, engine.EventGameStarted, msg.Events[0].Type)

	rec = doRequest(t, s, http.MethodGet, "/rooms/"+created.ID+"/game", "owner", nil)
	view = decodeBody[game.View](t, rec)
	assert.Equal(t, engine.PhaseTurn, view.Phase)

	rec = doRequest(t, s, http.MethodPost, "/rooms/"+created.ID+"/game/moves", "owner", map[string]any{"kind": "TELEPORT"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPatchProfile(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPatch, "/profile", "client-1", map[string]any{"displayName": "Ada"})
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decodeBody[database.Profile](t, rec)
	assert.Equal(t, "Ada", profile.DisplayName)

	created := decodeBody[roomView](t, doRequest(t, s, http.MethodPost, "/rooms", "client-1", nil))
	require.Len(t, created.Players, 1)
	assert.Equal(t, "Ada", created.Players[0].DisplayName)

	rec = doRequest(t, s, http.MethodPatch, "/profile", "client-1", map[string]any{"displayName": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodPatch, "/profile", "client-1", map[string]any{
		"displayName": "this display name is way past the thirty-two character cap",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWSRejectsBadTokens(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/ws", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/ws?token=garbage", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
