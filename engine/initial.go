package engine

import "fmt"

// PlayerRef identifies a player joining a new game.
type PlayerRef struct {
	ID   PlayerID
	Name string
}

// Options tunes NewGame. The zero value means "all defaults".
type Options struct {
	// Rules overrides DefaultRules when non-nil. Build overrides by
	// mutating a DefaultRules() value so the non-zero defaults survive.
	Rules *RulesConfig
	// Seed records the shuffle seed for replayability. 0 selects the
	// documented default seed.
	Seed uint32
	// ID names the game; defaults to "match".
	ID string
}

// DefaultSeed is used when no seed is supplied.
const DefaultSeed uint32 = 123456789

// NewGame builds a lobby-phase state: per-player zones empty, build piles
// materialized at rank 1, rules frozen. The deck must already be in final
// draw order — callers that want deterministic shuffling use NewRNG and
// Shuffle with the same seed they pass here.
func NewGame(players []PlayerRef, deck []Card, opts Options) GameState {
	rules := DefaultRules()
	if opts.Rules != nil {
		rules = *opts.Rules
	}

	seed := opts.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	id := opts.ID
	if id == "" {
		id = "match"
	}

	byID := make(map[PlayerID]PlayerState, len(players))
	order := make([]PlayerID, 0, len(players))
	for _, p := range players {
		order = append(order, p.ID)
		byID[p.ID] = PlayerState{
			ID:       p.ID,
			Name:     p.Name,
			Hand:     Hand{Cards: []Card{}},
			Discards: emptyDiscards(rules.DiscardPiles),
			Stock:    Stock{FaceDown: []Card{}},
		}
	}

	active := PlayerID("P1")
	if len(order) > 0 {
		active = order[0]
	}

	drawPile := append([]Card(nil), deck...)
	if drawPile == nil {
		drawPile = []Card{}
	}

	return GameState{
		Version: SnapshotVersion,
		ID:      id,
		Phase:   PhaseLobby,
		Turn:    Turn{Number: 0, ActivePlayer: active, HasDiscarded: false},
		Players: order,
		ByID:    byID,
		Deck:    Deck{DrawPile: drawPile, Discard: []Card{}},
		Center:  Center{BuildPiles: newBuildPiles(rules.BuildPiles)},
		Winner:  nil,
		RNGSeed: seed,
		Rules:   rules,
		Data:    map[string]any{},
	}
}

func emptyDiscards(n int) [][]Card {
	out := make([][]Card, n)
	for i := range out {
		out[i] = []Card{}
	}
	return out
}

func newBuildPiles(n int) []BuildPile {
	piles := make([]BuildPile, n)
	for i := range piles {
		one := MinRank
		piles[i] = BuildPile{
			ID:       fmt.Sprintf("B%d", i+1),
			Cards:    []Card{},
			NextRank: &one,
		}
	}
	return piles
}
