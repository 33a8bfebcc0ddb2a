package game

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mvoronov/cascata/internal/config"
	"github.com/mvoronov/cascata/internal/money"
)

func dec(s string) config.Dec {
	return config.Dec{Decimal: decimal.RequireFromString(s)}
}

func bet(s string) money.Money {
	return money.MustFromString(s)
}

// col builds one board column from symbol codes, row 0 first.
func col(symbols ...config.Symbol) []Cell {
	cells := make([]Cell, len(symbols))
	for i, s := range symbols {
		cells[i] = Cell{Symbol: s}
	}
	return cells
}

// strip repeats a symbol sequence until the strip reaches n entries.
func strip(n int, symbols ...config.Symbol) []config.Symbol {
	out := make([]config.Symbol, n)
	for i := range out {
		out[i] = symbols[i%len(symbols)]
	}
	return out
}

// fixedGridConfig is a 5x3 count-evaluation game: symbol A pays from
// 8 of a kind, scatter S triggers 15 free spins at 4+.
func fixedGridConfig() *config.GameConfig {
	mixed := []config.Symbol{"A", "B", "C", "D", "A", "C", "B", "D", "C", "A", "B", "D", "C", "B", "A", "D", "C", "B", "D", "A"}
	cfg := &config.GameConfig{
		ID:      "test-fixed",
		Columns: 5,
		Rows:    3,
		ReelSets: map[string]config.ReelSet{
			"standard": {Reels: [][]config.Symbol{mixed, mixed, mixed, mixed, mixed}},
			"ante":     {Reels: [][]config.Symbol{mixed, mixed, mixed, mixed, mixed}},
			"free":     {Reels: [][]config.Symbol{mixed, mixed, mixed, mixed, mixed}},
			"buy":      {Reels: [][]config.Symbol{mixed, mixed, mixed, mixed, mixed}},
		},
		Selection: config.ReelSelection{
			Standard:  "standard",
			Ante:      "ante",
			FreeSpins: "free",
			Buy:       "buy",
		},
		Paytable: map[config.Symbol][]config.PayTier{
			"A": {{Count: 8, Multiplier: dec("10")}, {Count: 10, Multiplier: dec("25")}, {Count: 12, Multiplier: dec("50")}},
			"B": {{Count: 8, Multiplier: dec("5")}},
			"C": {{Count: 8, Multiplier: dec("2")}},
			"D": {{Count: 8, Multiplier: dec("1")}},
		},
		Scatter: config.ScatterConfig{
			Symbol:    "S",
			Trigger:   4,
			Retrigger: 3,
		},
		FreeSpins:   config.FreeSpinConfig{Initial: 15, Retrigger: 5},
		MinBet:      dec("0.10"),
		MaxBet:      dec("100"),
		AnteXBet:    dec("1.25"),
		MaxWinXBet:  dec("10000"),
		Buy:         config.BuyConfig{Enabled: true, CostXBet: dec("100"), UseBuyReelSet: true},
		MaxCascades: 20,
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("fixedGridConfig invalid: %v", err))
	}
	return cfg
}

// winningGridConfig is fixedGridConfig with strips dense enough to
// win: A fills two of every four strip positions, so a zero-draw board
// shows ten A symbols (tier 10, 25x) and stabilizes after one cascade.
func winningGridConfig() *config.GameConfig {
	cfg := fixedGridConfig()
	hot := strip(20, "A", "A", "B", "C")
	reels := [][]config.Symbol{hot, hot, hot, hot, hot}
	for name := range cfg.ReelSets {
		cfg.ReelSets[name] = config.ReelSet{Reels: reels}
	}
	return cfg
}

// megawaysConfig is a 4-column ways game with wilds on columns 1..3 and
// a 2-cell top reel over columns 1 and 2.
func megawaysConfig() *config.GameConfig {
	mixed := []config.Symbol{"X", "Y", "Z", "W", "X", "Z", "Y", "W", "Z", "X", "Y", "Z", "X", "Y", "Z", "X"}
	top := []config.Symbol{"X", "Y", "Z", "X", "Y", "Z", "X", "Y"}
	cfg := &config.GameConfig{
		ID:       "test-ways",
		Columns:  4,
		Megaways: true,
		MaxRows:  5,
		HeightWeights: []config.WeightedValue{
			{Value: 2, Weight: 1},
			{Value: 3, Weight: 2},
			{Value: 4, Weight: 2},
			{Value: 5, Weight: 1},
		},
		TopReel:     &config.TopReelConfig{Size: 2, Columns: []int{1, 2}},
		Wild:        "W",
		WildColumns: []int{1, 2, 3},
		ReelSets: map[string]config.ReelSet{
			"standard": {Reels: [][]config.Symbol{mixed, mixed, mixed, mixed}, Top: top},
			"ante":     {Reels: [][]config.Symbol{mixed, mixed, mixed, mixed}, Top: top},
			"free":     {Reels: [][]config.Symbol{mixed, mixed, mixed, mixed}, Top: top},
		},
		Selection: config.ReelSelection{
			Standard:  "standard",
			Ante:      "ante",
			FreeSpins: "free",
		},
		Paytable: map[config.Symbol][]config.PayTier{
			"X": {{Count: 2, Multiplier: dec("1")}, {Count: 3, Multiplier: dec("5")}, {Count: 4, Multiplier: dec("10")}},
			"Y": {{Count: 3, Multiplier: dec("2")}},
			"Z": {{Count: 4, Multiplier: dec("1.5")}},
		},
		Scatter: config.ScatterConfig{
			Symbol:    "S",
			Trigger:   4,
			Retrigger: 3,
			Pays:      []config.PayTier{{Count: 4, Multiplier: dec("3")}},
		},
		FreeSpins:   config.FreeSpinConfig{Initial: 12, Retrigger: 5},
		MinBet:      dec("0.10"),
		MaxBet:      dec("100"),
		AnteXBet:    dec("1.25"),
		MaxWinXBet:  dec("10000"),
		MaxCascades: 20,
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("megawaysConfig invalid: %v", err))
	}
	return cfg
}

// scriptSource replays a fixed seed sequence and fails when exhausted.
type scriptSource struct {
	vals []uint64
	pos  int
}

func (s *scriptSource) Seeds(_ context.Context, count int) ([]uint64, error) {
	if s.pos+count > len(s.vals) {
		return nil, fmt.Errorf("script exhausted: want %d more, have %d", count, len(s.vals)-s.pos)
	}
	out := s.vals[s.pos : s.pos+count]
	s.pos += count
	return out, nil
}

// countingSource counts calls; used to assert no randomness was drawn.
type countingSource struct {
	calls int
}

func (c *countingSource) Seeds(_ context.Context, count int) ([]uint64, error) {
	c.calls++
	out := make([]uint64, count)
	return out, nil
}
