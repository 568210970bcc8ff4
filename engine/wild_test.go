package engine

import "testing"

func TestIsWildPerCardFlag(t *testing.T) {
	rules := DefaultRules()
	card := Card{Kind: CardStandard, ID: "x", Rank: 4, Suit: SuitHearts, BaseWild: true}

	if !IsWild(card, rules) {
		t.Error("baseWild card should be wild when flag is honored")
	}

	rules.EnableCardWildFlag = false
	if IsWild(card, rules) {
		t.Error("baseWild card should not be wild when flag is ignored")
	}
}

func TestIsWildJokerPolicy(t *testing.T) {
	joker := Card{Kind: CardJoker, ID: "j1"}

	rules := DefaultRules()
	if IsWild(joker, rules) {
		t.Error("joker should not be wild when jokers are not in play")
	}

	rules.UseJokers = true
	if !IsWild(joker, rules) {
		t.Error("joker should be wild when jokers are in play")
	}

	rules.JokersAreWild = false
	if IsWild(joker, rules) {
		t.Error("joker should not be wild when explicitly marked non-wild")
	}
}

func TestIsWildKings(t *testing.T) {
	king := Card{Kind: CardStandard, ID: "k", Rank: 13, Suit: SuitSpades}

	rules := DefaultRules()
	if !IsWild(king, rules) {
		t.Error("king should be wild under default rules")
	}

	rules.KingsAreWild = false
	if IsWild(king, rules) {
		t.Error("king should not be wild when kingsAreWild is off")
	}
}

func TestIsWildAdditionalRanks(t *testing.T) {
	rules := DefaultRules()
	rules.AdditionalWildRanks = []Rank{2}

	deuce := Card{Kind: CardStandard, ID: "d", Rank: 2, Suit: SuitClubs}
	three := Card{Kind: CardStandard, ID: "t", Rank: 3, Suit: SuitClubs}

	if !IsWild(deuce, rules) {
		t.Error("deuce should be wild when rank 2 is in additionalWildRanks")
	}
	if IsWild(three, rules) {
		t.Error("three should not be wild")
	}
}
