package engine

// applyMoveByKind dispatches an already-validated move to its applier. The
// state passed in is a private clone; appliers mutate it freely. The default
// arm keeps the dispatch total, though ValidateMove already screens unknown
// kinds out.
func applyMoveByKind(s GameState, move Move) (GameState, []GameEvent) {
	switch move.Kind {
	case MoveStartGame:
		return applyStartGame(s)
	case MoveDrawToHand:
		return applyDrawToHand(s)
	case MovePlayHandToBuild:
		return applyPlayHandToBuild(s, move.CardID, move.BuildID)
	case MovePlayStockToBuild:
		return applyPlayStockToBuild(s, move.BuildID)
	case MovePlayDiscardToBuild:
		return applyPlayDiscardToBuild(s, move.PileIndex, move.BuildID)
	case MoveDiscardFromHand:
		return applyDiscardFromHand(s, move.CardID, move.PileIndex)
	default:
		return s, []GameEvent{invalidMove("Unknown move")}
	}
}

// applyStartGame deals stock piles round-robin, enters the turn phase, and
// draws the first active player's opening hand.
func applyStartGame(s GameState) (GameState, []GameEvent) {
	if len(s.Center.BuildPiles) == 0 {
		s.Center.BuildPiles = newBuildPiles(s.Rules.BuildPiles)
	}

	// One card per player per round until every stock holds StockSize
	// cards or the draw pile runs dry.
	for k := 0; k < s.Rules.StockSize; k++ {
		for _, pid := range s.Players {
			if len(s.Deck.DrawPile) == 0 {
				break
			}
			card := s.Deck.DrawPile[0]
			s.Deck.DrawPile = s.Deck.DrawPile[1:]
			ps := s.ByID[pid]
			ps.Stock.FaceDown = append(ps.Stock.FaceDown, card)
			s.ByID[pid] = ps
		}
	}

	s.Phase = PhaseTurn
	s.Turn = Turn{Number: 1, ActivePlayer: FirstPlayerID(s), HasDiscarded: false}

	drew := drawUpToHandSize(&s, s.Turn.ActivePlayer)

	events := []GameEvent{{Type: EventGameStarted}}
	if drew > 0 {
		events = append(events, GameEvent{
			Type:    EventDrewToHand,
			Payload: map[string]any{"player": string(s.Turn.ActivePlayer), "count": drew},
		})
	}
	return s, events
}

// applyDrawToHand refills the active player's hand from the front of the
// draw pile. The count may be zero when the draw pile is exhausted.
func applyDrawToHand(s GameState) (GameState, []GameEvent) {
	active := s.Turn.ActivePlayer
	drew := drawUpToHandSize(&s, active)
	events := []GameEvent{{
		Type:    EventDrewToHand,
		Payload: map[string]any{"player": string(active), "count": drew},
	}}
	return s, events
}

// applyDiscardFromHand moves the named card onto the chosen personal discard
// stack and immediately advances the turn. This is the only move that ends a
// turn.
func applyDiscardFromHand(s GameState, cardID string, pileIndex int) (GameState, []GameEvent) {
	active := ActivePlayer(s)

	idx := handIndex(active, cardID)
	invariant(idx >= 0, "Card not found at expected index")
	card := active.Hand.Cards[idx]

	active.Hand.Cards = append(active.Hand.Cards[:idx], active.Hand.Cards[idx+1:]...)
	active.Discards[pileIndex] = append(active.Discards[pileIndex], card)
	s.ByID[active.ID] = active

	next := NextPlayerID(s)
	s.Turn = Turn{Number: s.Turn.Number + 1, ActivePlayer: next, HasDiscarded: false}

	events := []GameEvent{
		{Type: EventDiscarded, Payload: map[string]any{
			"player": string(active.ID), "cardId": card.ID, "pileIndex": pileIndex,
		}},
		{Type: EventTurnEnded, Payload: map[string]any{"turn": s.Turn.Number}},
	}
	return s, events
}

// drawUpToHandSize pops cards off the front of the draw pile into pid's hand
// until the hand size target is met or the pile empties. Returns the count
// drawn.
func drawUpToHandSize(s *GameState, pid PlayerID) int {
	ps, ok := s.ByID[pid]
	if !ok {
		return 0
	}
	drew := 0
	for len(ps.Hand.Cards) < s.Rules.HandSize && len(s.Deck.DrawPile) > 0 {
		ps.Hand.Cards = append(ps.Hand.Cards, s.Deck.DrawPile[0])
		s.Deck.DrawPile = s.Deck.DrawPile[1:]
		drew++
	}
	s.ByID[pid] = ps
	return drew
}

func handIndex(p PlayerState, cardID string) int {
	for i, c := range p.Hand.Cards {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}
