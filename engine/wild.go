package engine

// IsWild reports whether card currently counts as wild under rules.
// Precedence: per-card flag, then joker policy, then kings-are-wild, then
// the additional-wild-ranks list. Pure function of its two inputs.
func IsWild(card Card, rules RulesConfig) bool {
	// Card-level override.
	if rules.EnableCardWildFlag && card.BaseWild {
		return true
	}

	// Joker policy: wild iff jokers are in play and not explicitly tamed.
	if card.Kind == CardJoker {
		return rules.UseJokers && rules.JokersAreWild
	}

	// Rank-based policy for standard cards.
	if rules.KingsAreWild && card.Rank == rules.MaxBuildRank {
		return true
	}
	for _, r := range rules.AdditionalWildRanks {
		if card.Rank == r {
			return true
		}
	}
	return false
}
