// Package game implements the round-resolution engine for cascading
// reel games: board construction, win evaluation, cascade resolution,
// and the free-spin feature state machine.
//
// The engine is stateless per call. Each round is a pure function of
// (config snapshot, prior FreeSpinState, randomness draws); the caller
// owns persistence of the returned state. Rounds for independent
// sessions may run concurrently against a shared read-only config.
package game

import (
	"github.com/shopspring/decimal"

	"github.com/mvoronov/cascata/internal/config"
	"github.com/mvoronov/cascata/internal/money"
)

// Cell is one board position: a symbol instance plus the multiplier
// value attached to that cell, if any. An empty symbol marks a removed
// cell awaiting refill.
type Cell struct {
	Symbol     config.Symbol `json:"symbol"`
	Multiplier int           `json:"multiplier,omitempty"`
}

// empty reports whether the cell has been cleared.
func (c Cell) empty() bool {
	return c.Symbol == ""
}

// Board is the materialized grid, indexed by (column, row) with row 0
// at the top. Column heights vary in Megaways mode. Top holds the
// horizontal top reel cells; Top[i] covers the column configured at the
// same index. On the wire a board travels as a FlatBoard.
type Board struct {
	Columns [][]Cell
	Top     []Cell
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	out := &Board{Columns: make([][]Cell, len(b.Columns))}
	for i, col := range b.Columns {
		out.Columns[i] = append([]Cell(nil), col...)
	}
	if b.Top != nil {
		out.Top = append([]Cell(nil), b.Top...)
	}
	return out
}

// MultiplierSum returns the sum of all multiplier values visible on the
// board, top reel included.
func (b *Board) MultiplierSum() int {
	sum := 0
	for _, col := range b.Columns {
		for _, cell := range col {
			sum += cell.Multiplier
		}
	}
	for _, cell := range b.Top {
		sum += cell.Multiplier
	}
	return sum
}

// Position addresses one board cell. Row -1 addresses the top reel cell
// covering Col.
type Position struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// TopRow marks a position on the top reel.
const TopRow = -1

// SymbolWin is one winning symbol group. Count is the observed symbol
// count in fixed-grid games and the contiguous column count in ways
// games; Ways carries the per-column match product in ways games.
// Positions are informational, recorded for client highlighting.
type SymbolWin struct {
	Symbol    config.Symbol `json:"symbol"`
	Count     int           `json:"count"`
	Ways      int           `json:"ways,omitempty"`
	TierCount int           `json:"tier_count"`
	Payout    money.Money   `json:"payout"`
	Positions []Position    `json:"positions"`
}

// CascadeStep records one evaluate/remove/refill cycle.
type CascadeStep struct {
	Before        *Board      `json:"board_before"`
	After         *Board      `json:"board_after"`
	Wins          []SymbolWin `json:"wins"`
	StepWin       money.Money `json:"step_win"`
	MultiplierSum int         `json:"multiplier_sum"`
}

// ScatterResult reports scatter symbols on the final board.
type ScatterResult struct {
	Count     int         `json:"count"`
	Payout    money.Money `json:"payout"`
	Positions []Position  `json:"positions"`
}

// FreeSpinState is the entire cross-round persistence surface of the
// engine. The caller stores the returned state and supplies it on the
// next call; the engine never retains it.
type FreeSpinState struct {
	Active                bool            `json:"active"`
	SpinsRemaining        int             `json:"spins_remaining"`
	TotalAwarded          int             `json:"total_awarded"`
	AccumulatedMultiplier decimal.Decimal `json:"accumulated_multiplier"`
	FeatureWin            money.Money     `json:"feature_win"`
}

// EmptyFeatureState returns the idle state a session starts with.
func EmptyFeatureState() FreeSpinState {
	return FreeSpinState{
		AccumulatedMultiplier: decimal.Zero,
		FeatureWin:            money.Zero(),
	}
}

// PlayRequest is one round request. Feature carries the prior state as
// persisted by the caller.
type PlayRequest struct {
	GameID     string         `json:"game_id"`
	Bet        money.Money    `json:"bet"`
	Mode       config.BetMode `json:"mode"`
	BuyFeature bool           `json:"buy_feature"`
	Feature    FreeSpinState  `json:"feature"`
}

// RoundResult is the full outcome of one resolved round.
type RoundResult struct {
	RoundID     string         `json:"round_id"`
	GameID      string         `json:"game_id"`
	Bet         money.Money    `json:"bet"`
	Mode        config.BetMode `json:"mode"`
	Cascades    []CascadeStep  `json:"cascades"`
	FinalBoard  *Board         `json:"final_board"`
	TotalWin    money.Money    `json:"total_win"`
	Scatter     ScatterResult  `json:"scatter"`
	Feature     FeatureEvent   `json:"feature"`
	NextFeature FreeSpinState  `json:"next_feature"`
	// Wager is the amount the caller debits for this round: the bet
	// (ante-adjusted), the buy cost, or zero during free spins. The
	// engine never touches a balance, it only reports amounts.
	Wager   money.Money `json:"wager"`
	BuyCost money.Money `json:"buy_cost"`
}
