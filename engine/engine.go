// Package engine implements the montoncito card-game rules: shared build
// piles ascending from 1 to a configured maximum, personal stock and discard
// zones, a hybrid wildness policy, and two termination rules.
//
// The engine is a pure core. Every operation is a function from (state,
// move) to (state, events) with no I/O and no internal mutable state; a
// GameState value is never mutated in place. Callers own concurrency: all
// ApplyMove calls for one game id must be serialized by a single writer,
// while any number of readers may share a state value freely.
package engine

// ApplyMove is the single public entry point: validate, apply, then check
// termination.
//
// An illegal move is not an error — the original state is returned unchanged
// together with one InvalidMove event carrying the rejection reason, and no
// partial application ever occurs. On success the returned state is a fresh
// value and the event list describes everything that happened, with GameOver
// appended last when a termination rule fires.
func ApplyMove(state GameState, move Move) (GameState, []GameEvent) {
	if reason := ValidateMove(state, move); reason != "" {
		return state, []GameEvent{invalidMove(reason)}
	}

	next, events := applyMoveByKind(state.Clone(), move)

	if winner := CheckGameOver(next); winner != nil {
		next.Phase = PhaseGameOver
		next.Winner = winner
		events = append(events, GameEvent{
			Type:    EventGameOver,
			Payload: map[string]any{"winner": string(*winner)},
		})
	}

	return next, events
}
