package engine

// Termination is checked after every successfully applied move, in fixed
// priority:
//
//  1. Empty stock: the first player in turn order with no stock cards wins
//     immediately, even mid-turn and even for a non-active player.
//  2. Deadlock: draw pile empty and nobody has any legal placement. The
//     winner is the player with the fewest stock cards, ties broken by
//     earliest position in turn order.

// CheckGameOver returns the winner's id when a termination rule fires, or
// nil while the game continues.
func CheckGameOver(s GameState) *PlayerID {
	// Rule 1: immediate win on empty stock.
	for _, pid := range s.Players {
		if ps, ok := s.ByID[pid]; ok && len(ps.Stock.FaceDown) == 0 {
			winner := pid
			return &winner
		}
	}

	// Rule 2: deck exhausted and no placement available to anyone.
	if len(s.Deck.DrawPile) == 0 {
		for _, pid := range s.Players {
			if playerHasAnyPlacement(s, pid) {
				return nil
			}
		}
		return winnerByFewestStock(s)
	}

	return nil
}

// playerHasAnyPlacement reports whether pid can legally place any candidate
// card — every hand card, the stock top, and each discard top — onto any
// build pile. Drawing is not considered.
func playerHasAnyPlacement(s GameState, pid PlayerID) bool {
	ps, ok := s.ByID[pid]
	if !ok {
		return false
	}

	candidates := make([]Card, 0, len(ps.Hand.Cards)+1+len(ps.Discards))
	candidates = append(candidates, ps.Hand.Cards...)
	if n := len(ps.Stock.FaceDown); n > 0 {
		candidates = append(candidates, ps.Stock.FaceDown[n-1])
	}
	for _, stack := range ps.Discards {
		if n := len(stack); n > 0 {
			candidates = append(candidates, stack[n-1])
		}
	}
	if len(candidates) == 0 {
		return false
	}

	for _, pile := range s.Center.BuildPiles {
		if pile.NextRank == nil {
			continue // completed and awaiting clear; dead for placement
		}
		for _, card := range candidates {
			if matchesRequired(card, pile.NextRank, s.Rules) {
				return true
			}
		}
	}
	return false
}

// winnerByFewestStock picks the player with the smallest stock; earliest
// turn-order position wins ties, keeping the outcome deterministic.
func winnerByFewestStock(s GameState) *PlayerID {
	var winner *PlayerID
	best := -1
	for _, pid := range s.Players {
		ps, ok := s.ByID[pid]
		if !ok {
			continue
		}
		n := len(ps.Stock.FaceDown)
		if winner == nil || n < best {
			p := pid
			winner = &p
			best = n
		}
	}
	return winner
}
