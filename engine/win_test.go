package engine

import "testing"

func lastEvent(t *testing.T, events []GameEvent) GameEvent {
	t.Helper()
	if len(events) == 0 {
		t.Fatal("no events emitted")
	}
	return events[len(events)-1]
}

// TestWinOnEmptyStock verifies playing the last stock card ends the game
// immediately, with GameOver appended after the move's own events.
func TestWinOnEmptyStock(t *testing.T) {
	s := startedGame(t)
	ps := s.ByID["p1"]
	ps.Stock.FaceDown = []Card{stdCard("last", 1)}
	s.ByID["p1"] = ps

	next, events := ApplyMove(s, Move{Kind: MovePlayStockToBuild, BuildID: "B1"})

	if events[0].Type != EventPlayedToBuild {
		t.Errorf("first event: want PlayedToBuild, got %s", events[0].Type)
	}
	over := lastEvent(t, events)
	if over.Type != EventGameOver {
		t.Fatalf("last event: want GameOver, got %s", over.Type)
	}
	if got := over.Payload["winner"]; got != "p1" {
		t.Errorf("winner payload: want p1, got %v", got)
	}

	if next.Phase != PhaseGameOver {
		t.Errorf("phase: want %s, got %s", PhaseGameOver, next.Phase)
	}
	if next.Winner == nil || *next.Winner != "p1" {
		t.Errorf("winner: want p1, got %v", next.Winner)
	}
}

// TestWinForNonActivePlayer verifies the empty-stock scan covers every
// player, not just the one who moved.
func TestWinForNonActivePlayer(t *testing.T) {
	s := startedGame(t)
	ps := s.ByID["p2"]
	ps.Stock.FaceDown = []Card{}
	s.ByID["p2"] = ps

	next, events := ApplyMove(s, Move{Kind: MoveDiscardFromHand, CardID: "d7", PileIndex: 0})

	over := lastEvent(t, events)
	if over.Type != EventGameOver {
		t.Fatalf("last event: want GameOver, got %s", over.Type)
	}
	if next.Winner == nil || *next.Winner != "p2" {
		t.Errorf("winner: want p2, got %v", next.Winner)
	}
}

// TestDeadlockTiebreak verifies the deadlock rule: draw pile empty, no legal
// placement anywhere, equal stocks break toward the earliest player in order.
func TestDeadlockTiebreak(t *testing.T) {
	s := startedGame(t)
	s.Deck.DrawPile = []Card{}
	// p1's hand holds ranks 7..11 and every pile wants 1, so after the
	// discard nobody can place anything.

	next, events := ApplyMove(s, Move{Kind: MoveDiscardFromHand, CardID: "d7", PileIndex: 0})

	over := lastEvent(t, events)
	if over.Type != EventGameOver {
		t.Fatalf("last event: want GameOver, got %s", over.Type)
	}
	if next.Winner == nil || *next.Winner != "p1" {
		t.Errorf("winner: want p1 on equal stocks, got %v", next.Winner)
	}
	if next.Phase != PhaseGameOver {
		t.Errorf("phase: want %s, got %s", PhaseGameOver, next.Phase)
	}
}

// TestDeadlockFewestStockWins verifies the smaller stock takes the deadlock.
func TestDeadlockFewestStockWins(t *testing.T) {
	s := startedGame(t)
	s.Deck.DrawPile = []Card{}
	ps := s.ByID["p2"]
	ps.Stock.FaceDown = ps.Stock.FaceDown[:2]
	s.ByID["p2"] = ps

	next, events := ApplyMove(s, Move{Kind: MoveDiscardFromHand, CardID: "d7", PileIndex: 0})

	if got := lastEvent(t, events).Type; got != EventGameOver {
		t.Fatalf("last event: want GameOver, got %s", got)
	}
	if next.Winner == nil || *next.Winner != "p2" {
		t.Errorf("winner: want p2 with the smaller stock, got %v", next.Winner)
	}
}

// TestNoDeadlockWhileAnyonePlayable verifies a single playable exposed card
// anywhere keeps the game alive.
func TestNoDeadlockWhileAnyonePlayable(t *testing.T) {
	s := startedGame(t)
	s.Deck.DrawPile = []Card{}
	ps := s.ByID["p2"]
	ps.Hand.Cards = []Card{stdCard("ace", 1)}
	s.ByID["p2"] = ps

	next, events := ApplyMove(s, Move{Kind: MoveDiscardFromHand, CardID: "d7", PileIndex: 0})

	if got := lastEvent(t, events).Type; got == EventGameOver {
		t.Fatal("game ended while p2 still holds a playable card")
	}
	if next.Phase != PhaseTurn {
		t.Errorf("phase: want %s, got %s", PhaseTurn, next.Phase)
	}
	if next.Winner != nil {
		t.Errorf("winner: want nil, got %v", *next.Winner)
	}
}

// TestCheckGameOverIgnoresDeadPiles verifies a completed pile awaiting a
// clear does not count as a placement target.
func TestCheckGameOverIgnoresDeadPiles(t *testing.T) {
	s := startedGame(t)
	s.Deck.DrawPile = []Card{}
	s.Center.BuildPiles[0].NextRank = nil
	s.Center.BuildPiles[1].NextRank = nil
	ps := s.ByID["p2"]
	ps.Hand.Cards = []Card{stdCard("ace", 1)}
	s.ByID["p2"] = ps

	if winner := CheckGameOver(s); winner == nil {
		t.Error("want deadlock when every pile is dead, got none")
	}
}
