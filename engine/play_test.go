package engine

import "testing"

func setNextRank(s *GameState, buildID string, r Rank) {
	i := buildPileIndex(*s, buildID)
	s.Center.BuildPiles[i].NextRank = &r
}

// TestWildAdvancesRequirement verifies a wild card stands in for the required
// rank: played at a pile wanting 3, it advances the requirement to 4.
func TestWildAdvancesRequirement(t *testing.T) {
	s := startedGame(t)
	setNextRank(&s, "B1", 3)
	ps := s.ByID["p1"]
	ps.Hand.Cards = []Card{{Kind: CardStandard, ID: "king", Rank: 13, Suit: SuitHearts}}
	s.ByID["p1"] = ps

	next, events := ApplyMove(s, Move{Kind: MovePlayHandToBuild, CardID: "king", BuildID: "B1"})

	if len(events) != 1 || events[0].Type != EventPlayedToBuild {
		t.Fatalf("events: want single PlayedToBuild, got %v", events)
	}
	if got := events[0].Payload["from"]; got != "hand" {
		t.Errorf("from: want hand, got %v", got)
	}

	pile := BuildPileByID(next, "B1")
	if pile.NextRank == nil || *pile.NextRank != 4 {
		t.Errorf("nextRank: want 4, got %v", pile.NextRank)
	}
	if len(pile.Cards) != 1 || pile.Cards[0].ID != "king" {
		t.Errorf("pile cards: want [king] with king on top, got %v", pile.Cards)
	}
	if got := len(next.ByID["p1"].Hand.Cards); got != 0 {
		t.Errorf("hand: want empty, got %d cards", got)
	}
}

// TestNaturalPlayAdvancesByOwnRank verifies a natural card advances the
// requirement to its own rank plus one and lands on top of the pile.
func TestNaturalPlayAdvancesByOwnRank(t *testing.T) {
	s := startedGame(t)
	ps := s.ByID["p1"]
	ps.Hand.Cards = []Card{stdCard("ace", 1), stdCard("deuce", 2)}
	s.ByID["p1"] = ps

	s, _ = ApplyMove(s, Move{Kind: MovePlayHandToBuild, CardID: "ace", BuildID: "B1"})
	s, _ = ApplyMove(s, Move{Kind: MovePlayHandToBuild, CardID: "deuce", BuildID: "B1"})

	pile := BuildPileByID(s, "B1")
	if pile.NextRank == nil || *pile.NextRank != 3 {
		t.Errorf("nextRank: want 3, got %v", pile.NextRank)
	}
	if len(pile.Cards) != 2 || pile.Cards[0].ID != "deuce" || pile.Cards[1].ID != "ace" {
		t.Errorf("pile order: want newest first [deuce ace], got %v", pile.Cards)
	}
}

// TestCompletionAutoClears verifies completing a pile at the maximum rank
// emits BuildCompleted then BuildCleared and resets the pile to rank 1 within
// the same move.
func TestCompletionAutoClears(t *testing.T) {
	rules := smallRules()
	rules.KingsAreWild = false
	lobby := NewGame(
		[]PlayerRef{{ID: "p1"}, {ID: "p2"}},
		sequentialDeck(30),
		Options{Rules: &rules},
	)
	s, _ := ApplyMove(lobby, Move{Kind: MoveStartGame})

	setNextRank(&s, "B1", 13)
	ps := s.ByID["p1"]
	ps.Hand.Cards = []Card{{Kind: CardStandard, ID: "king", Rank: 13, Suit: SuitSpades}}
	s.ByID["p1"] = ps

	next, events := ApplyMove(s, Move{Kind: MovePlayHandToBuild, CardID: "king", BuildID: "B1"})

	want := []EventType{EventPlayedToBuild, EventBuildCompleted, EventBuildCleared}
	if len(events) != len(want) {
		t.Fatalf("events: want %v, got %v", want, events)
	}
	for i, w := range want {
		if events[i].Type != w {
			t.Errorf("event %d: want %s, got %s", i, w, events[i].Type)
		}
	}

	pile := BuildPileByID(next, "B1")
	if len(pile.Cards) != 0 {
		t.Errorf("cleared pile: want no cards, got %v", pile.Cards)
	}
	if pile.NextRank == nil || *pile.NextRank != MinRank {
		t.Errorf("cleared pile nextRank: want %d, got %v", MinRank, pile.NextRank)
	}
}

// TestCompletionWithoutAutoClear verifies the pile stays completed, with a
// nil requirement, when auto-clearing is disabled.
func TestCompletionWithoutAutoClear(t *testing.T) {
	rules := smallRules()
	rules.AutoClearCompleteBuild = false
	lobby := NewGame(
		[]PlayerRef{{ID: "p1"}, {ID: "p2"}},
		sequentialDeck(30),
		Options{Rules: &rules},
	)
	s, _ := ApplyMove(lobby, Move{Kind: MoveStartGame})

	setNextRank(&s, "B1", 13)
	ps := s.ByID["p1"]
	ps.Hand.Cards = []Card{{Kind: CardStandard, ID: "king", Rank: 13, Suit: SuitSpades}}
	s.ByID["p1"] = ps

	next, events := ApplyMove(s, Move{Kind: MovePlayHandToBuild, CardID: "king", BuildID: "B1"})

	if len(events) != 2 || events[1].Type != EventBuildCompleted {
		t.Fatalf("events: want PlayedToBuild then BuildCompleted, got %v", events)
	}
	pile := BuildPileByID(next, "B1")
	if pile.NextRank != nil {
		t.Errorf("nextRank: want nil on a completed pile, got %d", *pile.NextRank)
	}
	if len(pile.Cards) != 1 {
		t.Errorf("pile cards: want the king kept, got %v", pile.Cards)
	}
}

// TestPlayStockToBuild verifies the stock top moves onto the pile.
func TestPlayStockToBuild(t *testing.T) {
	s := startedGame(t)
	// p1 stock is [d1 d3 d5]; the top d5 has rank 5.
	setNextRank(&s, "B2", 5)

	next, events := ApplyMove(s, Move{Kind: MovePlayStockToBuild, BuildID: "B2"})

	if len(events) != 1 || events[0].Type != EventPlayedToBuild {
		t.Fatalf("events: want single PlayedToBuild, got %v", events)
	}
	if got := events[0].Payload["from"]; got != "stock" {
		t.Errorf("from: want stock, got %v", got)
	}
	if got := stockIDs(next.ByID["p1"]); len(got) != 2 || got[1] != "d3" {
		t.Errorf("p1 stock: want [d1 d3], got %v", got)
	}
	pile := BuildPileByID(next, "B2")
	if pile.Cards[0].ID != "d5" {
		t.Errorf("pile top: want d5, got %s", pile.Cards[0].ID)
	}
	if pile.NextRank == nil || *pile.NextRank != 6 {
		t.Errorf("nextRank: want 6, got %v", pile.NextRank)
	}
}

// TestPlayDiscardToBuild verifies only the exposed top of a discard stack
// moves, and playing it does not end the turn.
func TestPlayDiscardToBuild(t *testing.T) {
	s := startedGame(t)
	ps := s.ByID["p1"]
	ps.Discards[1] = []Card{stdCard("buried", 9), stdCard("exposed", 1)}
	s.ByID["p1"] = ps

	next, events := ApplyMove(s, Move{Kind: MovePlayDiscardToBuild, PileIndex: 1, BuildID: "B1"})

	if len(events) != 1 || events[0].Type != EventPlayedToBuild {
		t.Fatalf("events: want single PlayedToBuild, got %v", events)
	}
	if got := events[0].Payload["from"]; got != "discard" {
		t.Errorf("from: want discard, got %v", got)
	}
	stack := next.ByID["p1"].Discards[1]
	if len(stack) != 1 || stack[0].ID != "buried" {
		t.Errorf("discard stack: want [buried], got %v", stack)
	}
	if next.Turn.ActivePlayer != "p1" || next.Turn.Number != s.Turn.Number {
		t.Errorf("turn: playing to a build must not end the turn, got %+v", next.Turn)
	}
}
