package game

import (
	engine "github.com/maximobesteiro/montoncito/engine"
)

// PlayerView is one player's zones as seen by a specific observer. Hands and
// stock faces are private: the observer sees their own, and only counts for
// everyone else. Discard stacks and build piles are table-public.
type PlayerView struct {
	ID            engine.PlayerID `json:"id"`
	Name          string          `json:"name,omitempty"`
	HandSize      int             `json:"handSize"`
	Hand          []engine.Card   `json:"hand,omitempty"`
	StockSize     int             `json:"stockSize"`
	StockTop      *engine.Card    `json:"stockTop,omitempty"`
	Discards      [][]engine.Card `json:"discards"`
	IsCurrentTurn bool            `json:"isCurrentTurn"`
}

// View is the redacted state pushed to one observer.
type View struct {
	GameID       string             `json:"gameId"`
	Phase        engine.Phase       `json:"phase"`
	Turn         engine.Turn        `json:"turn"`
	Players      []PlayerView       `json:"players"`
	DrawPileSize int                `json:"drawPileSize"`
	BuildPiles   []engine.BuildPile `json:"buildPiles"`
	Winner       *engine.PlayerID   `json:"winner"`
	Rules        engine.RulesConfig `json:"rules"`
}

// ViewFor renders state from forPlayer's perspective.
func ViewFor(state engine.GameState, forPlayer engine.PlayerID) View {
	view := View{
		GameID:       state.ID,
		Phase:        state.Phase,
		Turn:         state.Turn,
		DrawPileSize: len(state.Deck.DrawPile),
		BuildPiles:   state.Center.BuildPiles,
		Winner:       state.Winner,
		Rules:        state.Rules,
	}

	view.Players = make([]PlayerView, 0, len(state.Players))
	for _, pid := range state.Players {
		ps, ok := state.ByID[pid]
		if !ok {
			continue
		}
		pv := PlayerView{
			ID:            pid,
			Name:          ps.Name,
			HandSize:      len(ps.Hand.Cards),
			StockSize:     len(ps.Stock.FaceDown),
			Discards:      ps.Discards,
			IsCurrentTurn: state.Phase == engine.PhaseTurn && state.Turn.ActivePlayer == pid,
		}
		if pid == forPlayer {
			pv.Hand = ps.Hand.Cards
			if n := len(ps.Stock.FaceDown); n > 0 {
				top := ps.Stock.FaceDown[n-1]
				pv.StockTop = &top
			}
		}
		view.Players = append(view.Players, pv)
	}
	return view
}
