package engine

import "fmt"

// RNG is a deterministic stream of floats in [0, 1).
type RNG func() float64

// NewRNG returns a Mulberry32 generator over a 32-bit seed. Two generators
// built from the same seed produce identical streams, which is what makes
// shuffles replayable across runs.
func NewRNG(seed uint32) RNG {
	t := seed
	return func() float64 {
		t += 0x6d2b79f5
		z := t
		z = (z ^ z>>15) * (z | 1)
		z ^= z + (z^z>>7)*(z|61)
		return float64(z^z>>14) / 4294967296.0
	}
}

// Shuffle returns a Fisher-Yates shuffled copy of cards, consuming rng. The
// input slice is never mutated.
func Shuffle(cards []Card, rng RNG) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	for i := len(out) - 1; i > 0; i-- {
		j := int(rng() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// NewStandardDeck builds an unshuffled 52-card deck, plus two jokers when
// rules.UseJokers is set. Card IDs are stable ("c1".."c52", "j1", "j2") so a
// fixed (rules, seed) pair always yields the same draw order after Shuffle.
func NewStandardDeck(rules RulesConfig) []Card {
	suits := []Suit{SuitClubs, SuitDiamonds, SuitHearts, SuitSpades}
	deck := make([]Card, 0, 54)
	n := 0
	for _, s := range suits {
		for r := MinRank; r <= MaxRank; r++ {
			n++
			deck = append(deck, Card{Kind: CardStandard, ID: fmt.Sprintf("c%d", n), Rank: r, Suit: s})
		}
	}
	if rules.UseJokers {
		deck = append(deck,
			Card{Kind: CardJoker, ID: "j1"},
			Card{Kind: CardJoker, ID: "j2"},
		)
	}
	return deck
}
