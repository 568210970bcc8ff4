package engine

// RulesConfig holds the configurable rule settings, frozen per game at
// creation time.
//
// When AutoClearCompleteBuild is false, a completed build pile keeps
// NextRank nil forever and can never be played on again. No clearing
// mechanism exists elsewhere; whether that dead-pile variant is intentional
// is a product decision, and the engine preserves the behavior as-is.
type RulesConfig struct {
	HandSize     int  `json:"handSize"`
	StockSize    int  `json:"stockSize"`
	BuildPiles   int  `json:"buildPiles"`
	MaxBuildRank Rank `json:"maxBuildRank"`
	DiscardPiles int  `json:"discardPiles"`

	// Wildness policy: rule-level flags plus an optional per-card override.
	UseJokers           bool   `json:"useJokers"`
	JokersAreWild       bool   `json:"jokersAreWild"`
	KingsAreWild        bool   `json:"kingsAreWild"`
	AdditionalWildRanks []Rank `json:"additionalWildRanks"`
	EnableCardWildFlag  bool   `json:"enableCardWildFlag"`

	AutoClearCompleteBuild bool `json:"autoClearCompleteBuild"`
}

// DefaultRules returns the standard montoncito rule set. Callers tweak
// individual fields from here rather than constructing a RulesConfig from
// scratch, so the non-zero defaults survive.
func DefaultRules() RulesConfig {
	return RulesConfig{
		HandSize:               5,
		StockSize:              20,
		BuildPiles:             4,
		MaxBuildRank:           13,
		DiscardPiles:           3,
		UseJokers:              false,
		JokersAreWild:          true,
		KingsAreWild:           true,
		AdditionalWildRanks:    []Rank{},
		EnableCardWildFlag:     true,
		AutoClearCompleteBuild: true,
	}
}
