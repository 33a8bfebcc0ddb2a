package game

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mvoronov/cascata/internal/config"
	"github.com/mvoronov/cascata/internal/money"
	"github.com/mvoronov/cascata/internal/rng"
)

// Engine resolves rounds against immutable game config snapshots. It
// holds no per-session state; concurrent calls are safe as long as each
// supplies its own FreeSpinState.
type Engine struct {
	games map[string]*config.GameConfig
	src   rng.Source
	log   zerolog.Logger
}

// New creates an engine over the given game snapshots.
func New(games map[string]*config.GameConfig, src rng.Source, log zerolog.Logger) *Engine {
	return &Engine{games: games, src: src, log: log}
}

// Games returns all registered games sorted by id.
func (e *Engine) Games() []*config.GameConfig {
	out := make([]*config.GameConfig, 0, len(e.games))
	for _, cfg := range e.games {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Game returns a game snapshot by id.
func (e *Engine) Game(id string) (*config.GameConfig, error) {
	cfg, ok := e.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return cfg, nil
}

// validateRequest rejects bad requests before any randomness is drawn.
func validateRequest(cfg *config.GameConfig, req *PlayRequest) error {
	if !req.Bet.IsPositive() {
		return fmt.Errorf("%w: bet must be positive", ErrInvalidBet)
	}
	bet := req.Bet.Decimal()
	if bet.LessThan(cfg.MinBet.Decimal) || bet.GreaterThan(cfg.MaxBet.Decimal) {
		return fmt.Errorf("%w: bet %s outside [%s,%s]", ErrInvalidBet, req.Bet, cfg.MinBet, cfg.MaxBet)
	}

	switch req.Mode {
	case config.BetModeStandard, config.BetModeAnte:
	default:
		return fmt.Errorf("%w: unknown bet mode %q", ErrInvalidBet, req.Mode)
	}

	if req.BuyFeature {
		if !cfg.Buy.Enabled {
			return fmt.Errorf("%w: feature buy is not available", ErrInvalidBet)
		}
		// Standing rule: no feature buy in the higher-volatility mode.
		if req.Mode == config.BetModeAnte {
			return fmt.Errorf("%w: feature buy is not allowed in ante mode", ErrInvalidBet)
		}
		if req.Feature.Active {
			return fmt.Errorf("%w: feature already active", ErrInvalidBet)
		}
	}
	return nil
}

// PlayRound resolves one round: board build, cascade resolution,
// scatter evaluation, and the feature-state transition. On any error
// the round aborts atomically; no partially updated feature state is
// ever returned.
func (e *Engine) PlayRound(ctx context.Context, req *PlayRequest) (*RoundResult, error) {
	cfg, err := e.Game(req.GameID)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(cfg, req); err != nil {
		return nil, err
	}

	// Work on a copy; the caller's prior state stays untouched.
	st := req.Feature

	wasBuy := req.BuyFeature
	buyCost := money.Zero()
	if wasBuy {
		enterFreeSpins(cfg, &st)
		buyCost = req.Bet.Scale(cfg.Buy.CostXBet.Decimal)
	}
	inFree := st.Active

	wager := money.Zero()
	switch {
	case wasBuy:
		wager = buyCost
	case inFree:
		// Free spins cost nothing.
	case req.Mode == config.BetModeAnte:
		wager = req.Bet.Scale(cfg.AnteXBet.Decimal)
	default:
		wager = req.Bet
	}

	stream := rng.NewStream(e.src)
	roundAccum := decimal.Zero
	b, err := newBuilder(cfg, cfg.SelectReelSet(req.Mode, wasBuy, inFree), stream, req.Mode, inFree, func() decimal.Decimal {
		return st.AccumulatedMultiplier.Add(roundAccum)
	})
	if err != nil {
		return nil, err
	}

	board, err := b.build(ctx)
	if err != nil {
		return nil, err
	}

	outcome, err := resolveCascades(ctx, cfg, b, board, req.Bet, inFree, &roundAccum)
	if err != nil {
		return nil, err
	}

	total := outcome.total
	if inFree {
		st.AccumulatedMultiplier = st.AccumulatedMultiplier.Add(roundAccum)
		if st.AccumulatedMultiplier.IsPositive() {
			total = total.ScaleDown(st.AccumulatedMultiplier)
		}
	}

	scatter := evaluateScatters(cfg, outcome.finalBoard, req.Bet)
	total = total.Add(scatter.Payout)

	// Max-win cap applies to the whole round.
	total = total.Min(req.Bet.Scale(cfg.MaxWinXBet.Decimal))

	event := advanceFeature(cfg, &st, scatter.Count, inFree, total)
	if wasBuy {
		// The buy itself is the entry transition; the round just played
		// consumed the first awarded spin.
		if _, ok := event.(NoTrigger); ok {
			event = Triggered{Spins: cfg.FreeSpins.Initial}
		}
	}

	result := &RoundResult{
		RoundID:     uuid.New().String(),
		GameID:      cfg.ID,
		Bet:         req.Bet,
		Mode:        req.Mode,
		Cascades:    outcome.steps,
		FinalBoard:  outcome.finalBoard,
		TotalWin:    total,
		Scatter:     scatter,
		Feature:     event,
		NextFeature: st,
		Wager:       wager,
		BuyCost:     buyCost,
	}

	e.log.Debug().
		Str("round_id", result.RoundID).
		Str("game_id", cfg.ID).
		Str("bet", req.Bet.String()).
		Str("total_win", total.String()).
		Int("cascades", len(outcome.steps)).
		Int("scatters", scatter.Count).
		Bool("free_spin", inFree).
		Msg("round resolved")

	return result, nil
}
