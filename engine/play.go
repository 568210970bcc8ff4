package engine

// The three play moves share the same tail: push the card onto the target
// pile (new top = index 0), then advance the pile's requirement. A wild card
// contributes the previously-required rank; a natural card contributes its
// own rank, which the validator has already matched against the requirement.

// placeOnBuild updates the pile's requirement after a card landed on it and
// emits completion/clear events. placedRank nil marks a wild placement.
func placeOnBuild(s *GameState, buildID string, placedRank *Rank) []GameEvent {
	i := buildPileIndex(*s, buildID)
	pile := &s.Center.BuildPiles[i]
	pile.NextRank = NextRankAfterPlace(pile.NextRank, placedRank, s.Rules.MaxBuildRank)

	var events []GameEvent
	if pile.NextRank == nil {
		events = append(events, GameEvent{
			Type:    EventBuildCompleted,
			Payload: map[string]any{"buildId": buildID},
		})
		if s.Rules.AutoClearCompleteBuild {
			one := MinRank
			pile.Cards = []Card{}
			pile.NextRank = &one
			events = append(events, GameEvent{
				Type:    EventBuildCleared,
				Payload: map[string]any{"buildId": buildID},
			})
		}
	}
	return events
}

// pushAndPlace puts card on top of the pile and computes its rank
// contribution, returning the PlayedToBuild event followed by any
// completion/clear events.
func pushAndPlace(s *GameState, card Card, from, buildID string, player PlayerID) []GameEvent {
	i := buildPileIndex(*s, buildID)
	pile := &s.Center.BuildPiles[i]
	required := pile.NextRank

	pile.Cards = append([]Card{card}, pile.Cards...)

	var placedRank *Rank
	if card.Kind == CardStandard && !IsWild(card, s.Rules) {
		r := card.Rank
		placedRank = &r
	} else {
		placedRank = required
	}

	events := []GameEvent{{
		Type: EventPlayedToBuild,
		Payload: map[string]any{
			"player": string(player), "from": from, "cardId": card.ID, "buildId": buildID,
		},
	}}
	return append(events, placeOnBuild(s, buildID, placedRank)...)
}

func applyPlayHandToBuild(s GameState, cardID, buildID string) (GameState, []GameEvent) {
	active := ActivePlayer(s)

	idx := handIndex(active, cardID)
	invariant(idx >= 0, "Card not found at expected index")
	card := active.Hand.Cards[idx]

	active.Hand.Cards = append(active.Hand.Cards[:idx], active.Hand.Cards[idx+1:]...)
	s.ByID[active.ID] = active

	events := pushAndPlace(&s, card, "hand", buildID, active.ID)
	return s, events
}

func applyPlayStockToBuild(s GameState, buildID string) (GameState, []GameEvent) {
	active := ActivePlayer(s)

	n := len(active.Stock.FaceDown)
	invariant(n > 0, "No stock card to play")
	card := active.Stock.FaceDown[n-1]

	active.Stock.FaceDown = active.Stock.FaceDown[:n-1]
	s.ByID[active.ID] = active

	events := pushAndPlace(&s, card, "stock", buildID, active.ID)
	return s, events
}

func applyPlayDiscardToBuild(s GameState, pileIndex int, buildID string) (GameState, []GameEvent) {
	active := ActivePlayer(s)

	source := active.Discards[pileIndex]
	n := len(source)
	invariant(n > 0, "Discard pile is empty")
	card := source[n-1]

	active.Discards[pileIndex] = source[:n-1]
	s.ByID[active.ID] = active

	events := pushAndPlace(&s, card, "discard", buildID, active.ID)
	return s, events
}
