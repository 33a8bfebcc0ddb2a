package game

import (
	"testing"

	"github.com/mvoronov/cascata/internal/config"
)

func TestEvaluateCount(t *testing.T) {
	cfg := fixedGridConfig()

	t.Run("EightOfAKind", func(t *testing.T) {
		// 8 A's scattered anywhere on the grid pay tier {8, x10}.
		board := &Board{Columns: [][]Cell{
			col("A", "A", "B"),
			col("A", "C", "A"),
			col("B", "A", "C"),
			col("A", "A", "D"),
			col("C", "A", "B"),
		}}

		wins := evaluateBoard(cfg, board, bet("0.20"))
		if len(wins) != 1 {
			t.Fatalf("got %d wins, want 1: %+v", len(wins), wins)
		}
		win := wins[0]
		if win.Symbol != "A" || win.Count != 8 || win.TierCount != 8 {
			t.Errorf("unexpected win: %+v", win)
		}
		if win.Payout.String() != "2.00" {
			t.Errorf("payout = %s, want 2.00", win.Payout)
		}
		if len(win.Positions) != 8 {
			t.Errorf("got %d positions, want 8", len(win.Positions))
		}
	})

	t.Run("BelowMinimumCount", func(t *testing.T) {
		// 7 A's never pay: the lowest tier requires 8.
		board := &Board{Columns: [][]Cell{
			col("A", "A", "B"),
			col("A", "C", "A"),
			col("B", "A", "C"),
			col("A", "A", "D"),
			col("C", "B", "B"),
		}}

		wins := evaluateBoard(cfg, board, bet("0.20"))
		if len(wins) != 0 {
			t.Fatalf("expected no wins, got %+v", wins)
		}
	})

	t.Run("HighestSatisfiedTier", func(t *testing.T) {
		// 11 A's satisfy tiers 8 and 10; the 10 tier (x25) applies.
		board := &Board{Columns: [][]Cell{
			col("A", "A", "A"),
			col("A", "A", "A"),
			col("A", "A", "A"),
			col("A", "A", "B"),
			col("C", "B", "B"),
		}}

		wins := evaluateBoard(cfg, board, bet("1.00"))
		if len(wins) != 1 {
			t.Fatalf("got %d wins, want 1", len(wins))
		}
		if wins[0].TierCount != 10 {
			t.Errorf("tier = %d, want 10", wins[0].TierCount)
		}
		if wins[0].Payout.String() != "25.00" {
			t.Errorf("payout = %s, want 25.00", wins[0].Payout)
		}
	})

	t.Run("ScatterNeverPaysInline", func(t *testing.T) {
		board := &Board{Columns: [][]Cell{
			col("S", "S", "S"),
			col("S", "S", "S"),
			col("S", "S", "S"),
			col("S", "S", "S"),
			col("S", "S", "S"),
		}}

		if wins := evaluateBoard(cfg, board, bet("1.00")); len(wins) != 0 {
			t.Fatalf("scatters must not pay through count evaluation: %+v", wins)
		}
	})
}

func TestEvaluateWays(t *testing.T) {
	cfg := megawaysConfig()

	t.Run("ColumnCountsProduct", func(t *testing.T) {
		// X matches per column: [1, 2, 1], then a miss. Three
		// contiguous columns, ways = 1*2*1 = 2, tier {3, x5}. The tier
		// multiplier applies to the bet directly, not scaled by ways.
		board := &Board{
			Columns: [][]Cell{
				col("X", "Y", "Z"),
				col("X", "W", "Y"),
				col("Y", "X", "Z"),
				col("Y", "Z", "Y"),
			},
			Top: col("Y", "Z"),
		}

		wins := evaluateBoard(cfg, board, bet("1.00"))
		var xWin *SymbolWin
		for i := range wins {
			if wins[i].Symbol == "X" {
				xWin = &wins[i]
			}
		}
		if xWin == nil {
			t.Fatalf("no win for X: %+v", wins)
		}
		if xWin.Count != 3 || xWin.Ways != 2 {
			t.Errorf("count/ways = %d/%d, want 3/2", xWin.Count, xWin.Ways)
		}
		if xWin.Payout.String() != "5.00" {
			t.Errorf("payout = %s, want 5.00", xWin.Payout)
		}
	})

	t.Run("MustStartAtColumnZero", func(t *testing.T) {
		// X everywhere except column 0: no win.
		board := &Board{
			Columns: [][]Cell{
				col("Y", "Z"),
				col("X", "X"),
				col("X", "X"),
				col("X", "X"),
			},
			Top: col("Y", "Z"),
		}

		for _, win := range evaluateBoard(cfg, board, bet("1.00")) {
			if win.Symbol == "X" {
				t.Fatalf("win reported for symbol absent from column 0: %+v", win)
			}
		}
	})

	t.Run("SingleColumnIsNoWin", func(t *testing.T) {
		board := &Board{
			Columns: [][]Cell{
				col("X", "X"),
				col("Y", "Z"),
				col("X", "X"),
				col("X", "X"),
			},
			Top: col("Y", "Z"),
		}

		for _, win := range evaluateBoard(cfg, board, bet("1.00")) {
			if win.Symbol == "X" {
				t.Fatalf("win reported for a 1-column run: %+v", win)
			}
		}
	})

	t.Run("WildSubstitutesOffColumnZero", func(t *testing.T) {
		// Column 1 holds only a wild; it substitutes for X there.
		board := &Board{
			Columns: [][]Cell{
				col("X", "Y"),
				col("W", "Y"),
				col("X", "Z"),
				col("Y", "Z"),
			},
			Top: col("Y", "Z"),
		}

		wins := evaluateBoard(cfg, board, bet("1.00"))
		var xWin *SymbolWin
		for i := range wins {
			if wins[i].Symbol == "X" {
				xWin = &wins[i]
			}
		}
		if xWin == nil {
			t.Fatal("expected wild-substituted win for X")
		}
		if xWin.Count != 3 {
			t.Errorf("contiguous columns = %d, want 3", xWin.Count)
		}
	})

	t.Run("TopReelExtendsRun", func(t *testing.T) {
		// Column 1's grid has no X, but the top reel cell covering
		// column 1 does, keeping the run alive.
		board := &Board{
			Columns: [][]Cell{
				col("X", "Y"),
				col("Y", "Z"),
				col("X", "Z"),
				col("Y", "Z"),
			},
			Top: col("X", "Y"),
		}

		wins := evaluateBoard(cfg, board, bet("1.00"))
		var xWin *SymbolWin
		for i := range wins {
			if wins[i].Symbol == "X" {
				xWin = &wins[i]
			}
		}
		if xWin == nil {
			t.Fatal("expected top-reel-extended win for X")
		}
		if xWin.Count != 3 {
			t.Errorf("contiguous columns = %d, want 3", xWin.Count)
		}
		foundTop := false
		for _, pos := range xWin.Positions {
			if pos.Row == TopRow && pos.Col == 1 {
				foundTop = true
			}
		}
		if !foundTop {
			t.Error("top reel position missing from win positions")
		}
	})
}

func TestEvaluateScatters(t *testing.T) {
	cfg := megawaysConfig()

	board := &Board{
		Columns: [][]Cell{
			col("S", "Y"),
			col("X", "S"),
			col("S", "Z"),
			col("Y", "Z"),
		},
		Top: col("S", "Y"),
	}

	result := evaluateScatters(cfg, board, bet("2.00"))
	if result.Count != 4 {
		t.Fatalf("scatter count = %d, want 4", result.Count)
	}
	// Pays tier {4, x3}: 2.00 * 3 = 6.00.
	if result.Payout.String() != "6.00" {
		t.Errorf("scatter payout = %s, want 6.00", result.Payout)
	}

	var topCount int
	for _, pos := range result.Positions {
		if pos.Row == TopRow {
			topCount++
		}
	}
	if topCount != 1 {
		t.Errorf("top reel scatter positions = %d, want 1", topCount)
	}
}

func TestPaytableSymbolsExcludesSpecials(t *testing.T) {
	cfg := megawaysConfig()
	cfg.Paytable["S"] = []config.PayTier{{Count: 3, Multiplier: dec("1")}}
	cfg.Paytable["W"] = []config.PayTier{{Count: 3, Multiplier: dec("1")}}

	for _, sym := range paytableSymbols(cfg) {
		if sym == "S" || sym == "W" {
			t.Errorf("special symbol %s included in ways evaluation", sym)
		}
	}
}
