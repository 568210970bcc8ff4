package engine

// PlayerID identifies a player for the lifetime of a game.
type PlayerID string

// Rank is a card rank, Ace=1 through King=13. Suits are carried for display
// only; build piles care about rank alone.
type Rank int

// Rank bounds for a standard deck.
const (
	MinRank Rank = 1
	MaxRank Rank = 13
)

// Suit labels match the original deck naming.
type Suit string

const (
	SuitClubs    Suit = "Clubs"
	SuitDiamonds Suit = "Diamonds"
	SuitHearts   Suit = "Hearts"
	SuitSpades   Suit = "Spades"
)

// CardKind discriminates the card union.
type CardKind string

const (
	CardStandard CardKind = "standard"
	CardJoker    CardKind = "joker"
)

// Card is either a standard card or a joker. Identity is by ID; rank and
// suit are immutable once created. BaseWild is honored only when
// rules.EnableCardWildFlag is set.
type Card struct {
	Kind     CardKind `json:"kind"`
	ID       string   `json:"id"`
	Rank     Rank     `json:"rank,omitempty"`
	Suit     Suit     `json:"suit,omitempty"`
	BaseWild bool     `json:"baseWild,omitempty"`
}

// Deck holds the shared face-down draw pile. Discard is an optional global
// trash pile, usually unused.
type Deck struct {
	DrawPile []Card `json:"drawPile"`
	Discard  []Card `json:"discard"`
}

// BuildPile is a shared center pile ascending from 1 to rules.MaxBuildRank.
// Cards[0] is the top. NextRank nil means the pile just completed and is
// awaiting a clear.
type BuildPile struct {
	ID       string `json:"id"`
	Cards    []Card `json:"cards"`
	NextRank *Rank  `json:"nextRank"`
}

// Hand is an unordered multiset of cards.
type Hand struct {
	Cards []Card `json:"cards"`
}

// Stock is the personal goal pile; top is the last element. Emptying it is
// the primary win condition.
type Stock struct {
	FaceDown []Card `json:"faceDown"`
}

// PlayerState holds one player's zones. len(Discards) equals
// rules.DiscardPiles at all times; each stack's top is its last element.
type PlayerState struct {
	ID       PlayerID `json:"id"`
	Name     string   `json:"name,omitempty"`
	Hand     Hand     `json:"hand"`
	Discards [][]Card `json:"discards"`
	Stock    Stock    `json:"stock"`
}

// Turn tracks whose turn it is. HasDiscarded is a structural hook only;
// ending a turn is driven entirely by the discard move.
type Turn struct {
	Number       int      `json:"number"`
	ActivePlayer PlayerID `json:"activePlayer"`
	HasDiscarded bool     `json:"hasDiscarded"`
}

// Phase is the coarse lifecycle stage. Transitions are one-way:
// lobby -> turn -> gameover.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseTurn     Phase = "turn"
	PhaseGameOver Phase = "gameover"
)

// Center holds the shared build piles.
type Center struct {
	BuildPiles []BuildPile `json:"buildPiles"`
}

// GameState is the complete, self-contained state of a game. It is treated
// as immutable everywhere: ApplyMove returns a fresh value and never touches
// its input, so a state may be read concurrently without synchronization.
type GameState struct {
	Version int    `json:"version"`
	ID      string `json:"id"`

	Phase Phase `json:"phase"`
	Turn  Turn  `json:"turn"`

	// Players fixes the turn order for the whole game; it never changes
	// after initialization.
	Players []PlayerID               `json:"players"`
	ByID    map[PlayerID]PlayerState `json:"byId"`

	Deck   Deck   `json:"deck"`
	Center Center `json:"center"`

	Winner  *PlayerID   `json:"winner"`
	RNGSeed uint32      `json:"rngSeed"`
	Rules   RulesConfig `json:"rules"`

	// Data is a free-form extension hook; the engine never reads it.
	Data map[string]any `json:"data"`
}

// cloneCards copies a card slice, preserving nil-ness and emptiness so a
// clone stays structurally equal to its source.
func cloneCards(cs []Card) []Card {
	if cs == nil {
		return nil
	}
	out := make([]Card, len(cs))
	copy(out, cs)
	return out
}

// Clone returns a deep copy of the state. Appliers mutate a clone so the
// caller's value is never observably changed. Data values are copied at the
// map level only; the engine treats them as opaque.
func (s GameState) Clone() GameState {
	out := s
	if s.Players != nil {
		out.Players = make([]PlayerID, len(s.Players))
		copy(out.Players, s.Players)
	}

	out.ByID = make(map[PlayerID]PlayerState, len(s.ByID))
	for id, ps := range s.ByID {
		out.ByID[id] = ps.clone()
	}

	out.Deck.DrawPile = cloneCards(s.Deck.DrawPile)
	out.Deck.Discard = cloneCards(s.Deck.Discard)

	out.Center.BuildPiles = make([]BuildPile, len(s.Center.BuildPiles))
	for i, bp := range s.Center.BuildPiles {
		cp := bp
		cp.Cards = cloneCards(bp.Cards)
		if bp.NextRank != nil {
			r := *bp.NextRank
			cp.NextRank = &r
		}
		out.Center.BuildPiles[i] = cp
	}

	if s.Winner != nil {
		w := *s.Winner
		out.Winner = &w
	}

	if s.Data != nil {
		out.Data = make(map[string]any, len(s.Data))
		for k, v := range s.Data {
			out.Data[k] = v
		}
	}
	return out
}

func (p PlayerState) clone() PlayerState {
	out := p
	out.Hand.Cards = cloneCards(p.Hand.Cards)
	out.Stock.FaceDown = cloneCards(p.Stock.FaceDown)
	if p.Discards != nil {
		out.Discards = make([][]Card, len(p.Discards))
		for i, stack := range p.Discards {
			out.Discards[i] = cloneCards(stack)
		}
	}
	return out
}

// MoveKind tags the closed set of player intents.
type MoveKind string

const (
	MoveStartGame          MoveKind = "START_GAME"
	MoveDrawToHand         MoveKind = "DRAW_TO_HAND"
	MovePlayHandToBuild    MoveKind = "PLAY_HAND_TO_BUILD"
	MovePlayStockToBuild   MoveKind = "PLAY_STOCK_TO_BUILD"
	MovePlayDiscardToBuild MoveKind = "PLAY_DISCARD_TO_BUILD"
	MoveDiscardFromHand    MoveKind = "DISCARD_FROM_HAND"
)

// Move is a player-submitted intent. Only the fields relevant to Kind are
// read; the rest are ignored.
type Move struct {
	Kind      MoveKind `json:"kind"`
	CardID    string   `json:"cardId,omitempty"`
	BuildID   string   `json:"buildId,omitempty"`
	PileIndex int      `json:"pileIndex"`
}

// EventType tags the closed set of engine outputs.
type EventType string

const (
	EventGameStarted    EventType = "GameStarted"
	EventDrewToHand     EventType = "DrewToHand"
	EventPlayedToBuild  EventType = "PlayedToBuild"
	EventBuildCompleted EventType = "BuildCompleted"
	EventBuildCleared   EventType = "BuildCleared"
	EventDiscarded      EventType = "Discarded"
	EventTurnEnded      EventType = "TurnEnded"
	EventInvalidMove    EventType = "InvalidMove"
	EventGameOver       EventType = "GameOver"
)

// GameEvent is a semantic event describing one effect of an applied move.
type GameEvent struct {
	Type    EventType      `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

func invalidMove(reason string) GameEvent {
	return GameEvent{Type: EventInvalidMove, Payload: map[string]any{"reason": reason}}
}
