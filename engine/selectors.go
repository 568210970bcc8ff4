package engine

// ActivePlayer returns the record of the player whose turn it is. Panics if
// the record is missing, which only happens on malformed state.
func ActivePlayer(s GameState) PlayerState {
	p, ok := s.ByID[s.Turn.ActivePlayer]
	invariant(ok, "Active player not found")
	return p
}

// FirstPlayerID returns the first player in turn order.
func FirstPlayerID(s GameState) PlayerID {
	if len(s.Players) > 0 {
		return s.Players[0]
	}
	invariant(s.Turn.ActivePlayer != "", "No players in game")
	return s.Turn.ActivePlayer
}

// NextPlayerID returns the player after the active one, cycling through the
// fixed turn order.
func NextPlayerID(s GameState) PlayerID {
	n := len(s.Players)
	invariant(n > 0, "No players in game")
	idx := -1
	for i, pid := range s.Players {
		if pid == s.Turn.ActivePlayer {
			idx = i
			break
		}
	}
	return s.Players[(idx+1)%n]
}

// BuildPileByID returns the center build pile with the given id. Panics if
// absent; validated moves only ever name existing piles.
func BuildPileByID(s GameState, buildID string) BuildPile {
	return s.Center.BuildPiles[buildPileIndex(s, buildID)]
}

func buildPileIndex(s GameState, buildID string) int {
	for i, bp := range s.Center.BuildPiles {
		if bp.ID == buildID {
			return i
		}
	}
	invariantf(false, "Build pile %s not found", buildID)
	return -1
}

// TopBuildCard returns the top card of a build pile, or nil when empty.
func TopBuildCard(pile BuildPile) *Card {
	if len(pile.Cards) == 0 {
		return nil
	}
	return &pile.Cards[0]
}

// NextRankAfterPlace computes a pile's requirement after a placement.
// placedRank nil means the placed card was wild, contributing the previous
// requirement. Returns nil when the pile just reached maxRank.
func NextRankAfterPlace(currentRequired, placedRank *Rank, maxRank Rank) *Rank {
	if currentRequired == nil {
		return nil // pile already complete
	}
	r := *currentRequired
	if placedRank != nil {
		r = *placedRank
	}
	if r == maxRank {
		return nil // just completed
	}
	next := r + 1
	return &next
}
