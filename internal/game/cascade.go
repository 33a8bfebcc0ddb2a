package game

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mvoronov/cascata/internal/config"
	"github.com/mvoronov/cascata/internal/money"
)

// cascadeOutcome is the aggregate of one spin's cascade resolution.
type cascadeOutcome struct {
	steps      []CascadeStep
	finalBoard *Board
	// total is the sum of step wins. In free spins the steps are
	// unscaled; the round-level accumulated multiplier applies once at
	// the end of the round, not per step.
	total money.Money
}

// resolveCascades runs the evaluate/remove/refill loop until the board
// stabilizes. Termination is probabilistic, so a configured safety
// ceiling guards against degenerate strip data; exceeding it aborts the
// round with ErrCascadeDivergence rather than looping unboundedly.
//
// Multiplier semantics differ by mode: in the base game each step's win
// is multiplied by the multiplier sum visible on the board when that
// step was evaluated (no multiplication when none are present); in free
// spins the visible sums accumulate across the round instead, and the
// caller scales the round total once.
// accum receives the free-spin multiplier contributions as they are
// observed, so that refills drawn later in the same round see the
// updated tier.
func resolveCascades(ctx context.Context, cfg *config.GameConfig, b *builder, board *Board, bet money.Money, inFree bool, accum *decimal.Decimal) (*cascadeOutcome, error) {
	out := &cascadeOutcome{
		total: money.Zero(),
	}

	for iter := 0; ; iter++ {
		if iter >= cfg.MaxCascades {
			return nil, fmt.Errorf("%w: %d iterations on game %s", ErrCascadeDivergence, iter, cfg.ID)
		}

		wins := evaluateBoard(cfg, board, bet)
		if len(wins) == 0 {
			break
		}

		before := board.Clone()
		multSum := board.MultiplierSum()

		stepWin := money.Zero()
		for _, win := range wins {
			stepWin = stepWin.Add(win.Payout)
		}
		if inFree {
			*accum = accum.Add(decimal.NewFromInt(int64(multSum)))
		} else if multSum > 0 {
			stepWin = stepWin.MulInt(int64(multSum))
		}

		removeWinners(cfg, board, wins)
		if err := b.refill(ctx, board); err != nil {
			return nil, err
		}

		out.steps = append(out.steps, CascadeStep{
			Before:        before,
			After:         board.Clone(),
			Wins:          wins,
			StepWin:       stepWin,
			MultiplierSum: multSum,
		})
		out.total = out.total.Add(stepWin)
	}

	out.finalBoard = board
	return out, nil
}
