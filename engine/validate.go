package engine

// matchesRequired reports whether card can legally land on a pile whose
// requirement is required. A nil requirement means the pile just completed
// and must be cleared before receiving more cards.
func matchesRequired(card Card, required *Rank, rules RulesConfig) bool {
	if required == nil {
		return false
	}
	if IsWild(card, rules) {
		return true
	}
	return card.Kind == CardStandard && card.Rank == *required
}

// ValidateMove checks a proposed move against the current state and returns
// a short, stable rejection reason, or "" when the move is legal. It never
// mutates state.
func ValidateMove(s GameState, move Move) string {
	switch move.Kind {
	case MoveStartGame:
		if s.Phase != PhaseLobby {
			return "Game already started"
		}
		if len(s.Players) < 2 {
			return "Need at least two players"
		}
		return ""

	case MoveDrawToHand:
		if s.Phase != PhaseTurn {
			return "Not your turn"
		}
		active := ActivePlayer(s)
		if len(active.Hand.Cards) >= s.Rules.HandSize {
			return "Hand already full"
		}
		return ""

	case MovePlayHandToBuild:
		if s.Phase != PhaseTurn {
			return "Not your turn"
		}
		active := ActivePlayer(s)
		card, ok := cardInHand(active, move.CardID)
		if !ok {
			return "Card not in hand"
		}
		pile := BuildPileByID(s, move.BuildID)
		if !matchesRequired(card, pile.NextRank, s.Rules) {
			return "Card does not match build requirement"
		}
		return ""

	case MovePlayStockToBuild:
		if s.Phase != PhaseTurn {
			return "Not your turn"
		}
		active := ActivePlayer(s)
		if len(active.Stock.FaceDown) == 0 {
			return "No stock card to play"
		}
		top := active.Stock.FaceDown[len(active.Stock.FaceDown)-1]
		pile := BuildPileByID(s, move.BuildID)
		if !matchesRequired(top, pile.NextRank, s.Rules) {
			return "Stock card does not match build requirement"
		}
		return ""

	case MovePlayDiscardToBuild:
		if s.Phase != PhaseTurn {
			return "Not your turn"
		}
		active := ActivePlayer(s)
		if move.PileIndex < 0 || move.PileIndex >= s.Rules.DiscardPiles {
			return "Invalid discard pile index"
		}
		source := active.Discards[move.PileIndex]
		if len(source) == 0 {
			return "Discard pile is empty"
		}
		top := source[len(source)-1]
		pile := BuildPileByID(s, move.BuildID)
		if !matchesRequired(top, pile.NextRank, s.Rules) {
			return "Discard card does not match build requirement"
		}
		return ""

	case MoveDiscardFromHand:
		if s.Phase != PhaseTurn {
			return "Not your turn"
		}
		active := ActivePlayer(s)
		if move.PileIndex < 0 || move.PileIndex >= s.Rules.DiscardPiles {
			return "Invalid discard pile index"
		}
		if _, ok := cardInHand(active, move.CardID); !ok {
			return "Card not in hand"
		}
		// Discarding is never blocked by build-pile state; it ends the turn.
		return ""

	default:
		return "Unknown move"
	}
}

func cardInHand(p PlayerState, cardID string) (Card, bool) {
	for _, c := range p.Hand.Cards {
		if c.ID == cardID {
			return c, true
		}
	}
	return Card{}, false
}
