package game

import (
	"sort"

	"github.com/mvoronov/cascata/internal/config"
	"github.com/mvoronov/cascata/internal/money"
)

// evaluateBoard runs the win evaluator configured for the game. The two
// algorithms are never mixed within one round. Scatters are excluded
// here; they are evaluated separately on the final board. A symbol with
// no paytable entry silently contributes no win.
func evaluateBoard(cfg *config.GameConfig, board *Board, bet money.Money) []SymbolWin {
	if cfg.Megaways {
		return evaluateWays(cfg, board, bet)
	}
	return evaluateCount(cfg, board, bet)
}

// paytableSymbols returns the paying symbols in deterministic order,
// scatter and wild excluded.
func paytableSymbols(cfg *config.GameConfig) []config.Symbol {
	symbols := make([]config.Symbol, 0, len(cfg.Paytable))
	for sym := range cfg.Paytable {
		if sym == cfg.Scatter.Symbol || (cfg.Wild != "" && sym == cfg.Wild) {
			continue
		}
		symbols = append(symbols, sym)
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i] < symbols[j] })
	return symbols
}

// bestTier picks the highest tier whose minimum count is satisfied, or
// nil when even the lowest tier is not met.
func bestTier(tiers []config.PayTier, observed int) *config.PayTier {
	var best *config.PayTier
	for i := range tiers {
		if observed >= tiers[i].Count {
			best = &tiers[i]
		}
	}
	return best
}

// evaluateCount is the fixed-grid algorithm: a symbol pays on its total
// count across the whole grid, with no adjacency or payline
// requirement.
func evaluateCount(cfg *config.GameConfig, board *Board, bet money.Money) []SymbolWin {
	var wins []SymbolWin

	for _, sym := range paytableSymbols(cfg) {
		var positions []Position
		for col, cells := range board.Columns {
			for row, cell := range cells {
				if cell.Symbol == sym {
					positions = append(positions, Position{Col: col, Row: row})
				}
			}
		}

		tier := bestTier(cfg.Paytable[sym], len(positions))
		if tier == nil {
			continue
		}

		wins = append(wins, SymbolWin{
			Symbol:    sym,
			Count:     len(positions),
			TierCount: tier.Count,
			Payout:    bet.ScaleDown(tier.Multiplier.Decimal),
			Positions: positions,
		})
	}

	return wins
}

// columnMatches counts cells on column col matching sym, wilds
// substituting on wild-eligible columns, with the top reel's cell
// folded in for columns it covers.
func columnMatches(cfg *config.GameConfig, board *Board, col int, sym config.Symbol) []Position {
	wildOK := cfg.Wild != "" && cfg.WildEligibleColumn(col)

	var positions []Position
	for row, cell := range board.Columns[col] {
		if cell.Symbol == sym || (wildOK && cell.Symbol == cfg.Wild) {
			positions = append(positions, Position{Col: col, Row: row})
		}
	}

	if i := topIndexFor(cfg, col); i >= 0 && i < len(board.Top) {
		cell := board.Top[i]
		if cell.Symbol == sym || (wildOK && cell.Symbol == cfg.Wild) {
			positions = append(positions, Position{Col: col, Row: TopRow})
		}
	}

	return positions
}

// evaluateWays is the Megaways algorithm. A symbol pays only on a
// contiguous run of matching columns starting at column 0, where it
// must appear directly (wilds never sit on column 0). The paytable tier
// keys off the contiguous column count; the tier multiplier applies to
// the bet as-is, without scaling by the ways product.
func evaluateWays(cfg *config.GameConfig, board *Board, bet money.Money) []SymbolWin {
	var wins []SymbolWin

	for _, sym := range paytableSymbols(cfg) {
		ways := 1
		var positions []Position
		runLength := 0

		for col := 0; col < len(board.Columns); col++ {
			matches := columnMatches(cfg, board, col, sym)
			if len(matches) == 0 {
				break
			}
			ways *= len(matches)
			positions = append(positions, matches...)
			runLength++
		}

		if runLength < 2 {
			continue
		}
		tier := bestTier(cfg.Paytable[sym], runLength)
		if tier == nil {
			continue
		}

		wins = append(wins, SymbolWin{
			Symbol:    sym,
			Count:     runLength,
			Ways:      ways,
			TierCount: tier.Count,
			Payout:    bet.ScaleDown(tier.Multiplier.Decimal),
			Positions: positions,
		})
	}

	return wins
}

// evaluateScatters counts scatter symbols across the whole final board,
// top reel included, and computes the optional scatter payout.
func evaluateScatters(cfg *config.GameConfig, board *Board, bet money.Money) ScatterResult {
	var positions []Position
	for col, cells := range board.Columns {
		for row, cell := range cells {
			if cell.Symbol == cfg.Scatter.Symbol {
				positions = append(positions, Position{Col: col, Row: row})
			}
		}
	}
	for i, cell := range board.Top {
		if cell.Symbol == cfg.Scatter.Symbol && cfg.TopReel != nil {
			positions = append(positions, Position{Col: cfg.TopReel.Columns[i], Row: TopRow})
		}
	}

	result := ScatterResult{
		Count:     len(positions),
		Payout:    money.Zero(),
		Positions: positions,
	}
	if pay := cfg.ScatterPayFor(result.Count); pay.IsPositive() {
		result.Payout = bet.ScaleDown(pay)
	}
	return result
}
