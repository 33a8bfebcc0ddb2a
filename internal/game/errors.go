package game

import "errors"

var (
	// ErrGameNotFound reports an unknown game id.
	ErrGameNotFound = errors.New("game not found")

	// ErrConfiguration reports missing or inconsistent math config
	// (reel set, paytable, weight table). Fatal; surfaced before any
	// randomness is drawn.
	ErrConfiguration = errors.New("invalid game configuration")

	// ErrInsufficientRandomness reports that the randomness supply
	// could not cover the round. The round may be retried by the
	// caller.
	ErrInsufficientRandomness = errors.New("insufficient randomness")

	// ErrCascadeDivergence reports that a cascade exceeded the safety
	// ceiling. Treated as a configuration defect; the round is aborted
	// with no partial win.
	ErrCascadeDivergence = errors.New("cascade exceeded safety ceiling")

	// ErrInvalidBet reports a rejected play request: non-positive or
	// out-of-range bet, unknown bet mode, or a feature buy in an
	// ineligible mode. Rejected before any computation.
	ErrInvalidBet = errors.New("invalid bet")
)
