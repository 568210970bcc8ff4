package server

import (
	"context"
	"errors"
	"time"

	engine "github.com/maximobesteiro/montoncito/engine"
	"github.com/maximobesteiro/montoncito/internal/database"
	"github.com/maximobesteiro/montoncito/internal/game"
	"github.com/maximobesteiro/montoncito/internal/rooms"
)

type playerView struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	IsOwner     bool   `json:"isOwner"`
}

type roomView struct {
	ID         string           `json:"id"`
	Slug       string           `json:"slug"`
	Visibility rooms.Visibility `json:"visibility"`
	Status     rooms.Status     `json:"status"`
	MaxPlayers int              `json:"maxPlayers"`
	OwnerID    string           `json:"ownerId"`
	Players    []playerView     `json:"players"`
	CreatedAt  string           `json:"createdAt"`
	GameID     string           `json:"gameId,omitempty"`
	GameConfig rooms.GameConfig `json:"gameConfig"`
	// Connected lists the players with a live socket, when presence tracking
	// is available.
	Connected []string `json:"connected,omitempty"`
}

type joinResponse struct {
	roomView
	WsJoinToken string `json:"wsJoinToken"`
}

type roomPage struct {
	Items []roomView `json:"items"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Total int        `json:"total"`
	Pages int        `json:"pages"`
}

// toRoomView resolves player display names through the profile store. A store
// failure falls back to the raw client id rather than failing the request.
func toRoomView(ctx context.Context, room rooms.Room, profiles database.ProfileStore) roomView {
	view := roomView{
		ID:         room.ID,
		Slug:       room.Slug,
		Visibility: room.Visibility,
		Status:     room.Status,
		MaxPlayers: room.MaxPlayers,
		OwnerID:    room.OwnerID,
		Players:    make([]playerView, 0, len(room.Players)),
		CreatedAt:  room.CreatedAt.UTC().Format(time.RFC3339),
		GameID:     room.GameID,
		GameConfig: room.GameConfig,
	}
	for _, p := range room.Players {
		name := p.ID
		if profile, err := profiles.GetOrCreate(ctx, p.ID); err == nil {
			name = profile.DisplayName
		}
		view.Players = append(view.Players, playerView{
			ID:          p.ID,
			DisplayName: name,
			IsOwner:     p.IsOwner,
		})
	}
	return view
}

type patchRoomRequest struct {
	Visibility *rooms.Visibility `json:"visibility"`
	MaxPlayers *int              `json:"maxPlayers"`
	GameConfig *struct {
		DiscardPiles *int `json:"discardPiles"`
	} `json:"gameConfig"`
}

func (r patchRoomRequest) toPatch() rooms.Patch {
	patch := rooms.Patch{
		Visibility: r.Visibility,
		MaxPlayers: r.MaxPlayers,
	}
	if r.GameConfig != nil {
		patch.DiscardPiles = r.GameConfig.DiscardPiles
	}
	return patch
}

type patchProfileRequest struct {
	DisplayName string `json:"displayName"`
}

type moveDTO struct {
	Kind      string `json:"kind"`
	CardID    string `json:"cardId,omitempty"`
	BuildID   string `json:"buildId,omitempty"`
	PileIndex int    `json:"pileIndex"`
}

func (m *moveDTO) ToEngine() (engine.Move, error) {
	if m == nil {
		return engine.Move{}, errors.New("move missing")
	}
	switch engine.MoveKind(m.Kind) {
	case engine.MoveStartGame:
		return engine.Move{Kind: engine.MoveStartGame}, nil
	case engine.MoveDrawToHand:
		return engine.Move{Kind: engine.MoveDrawToHand}, nil
	case engine.MovePlayHandToBuild:
		return engine.Move{Kind: engine.MovePlayHandToBuild, CardID: m.CardID, BuildID: m.BuildID}, nil
	case engine.MovePlayStockToBuild:
		return engine.Move{Kind: engine.MovePlayStockToBuild, BuildID: m.BuildID}, nil
	case engine.MovePlayDiscardToBuild:
		return engine.Move{Kind: engine.MovePlayDiscardToBuild, BuildID: m.BuildID, PileIndex: m.PileIndex}, nil
	case engine.MoveDiscardFromHand:
		return engine.Move{Kind: engine.MoveDiscardFromHand, CardID: m.CardID, PileIndex: m.PileIndex}, nil
	default:
		return engine.Move{}, errors.New("unknown move kind")
	}
}

// ServerMessage is the single envelope for everything pushed over a socket.
type ServerMessage struct {
	Type   string             `json:"type"`
	State  *game.View         `json:"state,omitempty"`
	Events []engine.GameEvent `json:"events,omitempty"`
	Room   *roomView          `json:"room,omitempty"`
	Error  string             `json:"error,omitempty"`
}

type clientMessage struct {
	Type string   `json:"type"`
	Move *moveDTO `json:"move,omitempty"`
}
