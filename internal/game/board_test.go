package game

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mvoronov/cascata/internal/config"
	"github.com/mvoronov/cascata/internal/rng"
)

func zeros(n int) []uint64 {
	return make([]uint64, n)
}

func accumZero() decimal.Decimal {
	return decimal.Zero
}

func TestBuildFixedGrid(t *testing.T) {
	cfg := fixedGridConfig()
	stream := rng.NewStream(&scriptSource{vals: zeros(64)})

	b, err := newBuilder(cfg, "standard", stream, config.BetModeStandard, false, accumZero)
	if err != nil {
		t.Fatalf("newBuilder: %v", err)
	}
	board, err := b.build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if len(board.Columns) != 5 {
		t.Fatalf("got %d columns, want 5", len(board.Columns))
	}
	for colIdx, cells := range board.Columns {
		if len(cells) != 3 {
			t.Fatalf("column %d height = %d, want 3", colIdx, len(cells))
		}
	}

	// Start index 0 reads the first three strip symbols per column.
	want := []config.Symbol{"A", "B", "C"}
	for colIdx, cells := range board.Columns {
		for row, cell := range cells {
			if cell.Symbol != want[row] {
				t.Errorf("column %d row %d = %s, want %s", colIdx, row, cell.Symbol, want[row])
			}
		}
	}
}

func TestBuildWrapsStrip(t *testing.T) {
	cfg := fixedGridConfig()
	// Start index 19 on a 20-symbol strip wraps to 0 and 1.
	vals := zeros(64)
	for i := 0; i < 5; i++ {
		vals[i] = 19
	}
	stream := rng.NewStream(&scriptSource{vals: vals})

	b, _ := newBuilder(cfg, "standard", stream, config.BetModeStandard, false, accumZero)
	board, err := b.build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	strip := cfg.ReelSets["standard"].Reels[0]
	want := []config.Symbol{strip[19], strip[0], strip[1]}
	for row, cell := range board.Columns[0] {
		if cell.Symbol != want[row] {
			t.Errorf("row %d = %s, want %s", row, cell.Symbol, want[row])
		}
	}
}

func TestBuildMegaways(t *testing.T) {
	cfg := megawaysConfig()
	stream := rng.NewStream(&scriptSource{vals: zeros(64)})

	b, err := newBuilder(cfg, "standard", stream, config.BetModeStandard, false, accumZero)
	if err != nil {
		t.Fatalf("newBuilder: %v", err)
	}
	board, err := b.build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// All-zero draws pick the first height entry (2) for every column.
	for colIdx, cells := range board.Columns {
		if len(cells) != 2 {
			t.Errorf("column %d height = %d, want 2", colIdx, len(cells))
		}
	}

	if len(board.Top) != 2 {
		t.Fatalf("top reel size = %d, want 2", len(board.Top))
	}
	topStrip := cfg.ReelSets["standard"].Top
	if board.Top[0].Symbol != topStrip[0] || board.Top[1].Symbol != topStrip[1] {
		t.Errorf("top reel = %+v, want first two strip symbols", board.Top)
	}
}

func TestBuildHeightsWithinBounds(t *testing.T) {
	cfg := megawaysConfig()
	stream := rng.NewStream(rng.NewSeeded(5))

	for i := 0; i < 50; i++ {
		b, _ := newBuilder(cfg, "standard", stream, config.BetModeStandard, false, accumZero)
		board, err := b.build(context.Background())
		if err != nil {
			t.Fatalf("build %d: %v", i, err)
		}
		for colIdx, cells := range board.Columns {
			if len(cells) < 2 || len(cells) > cfg.MaxRows {
				t.Fatalf("build %d column %d height %d outside [2,%d]", i, colIdx, len(cells), cfg.MaxRows)
			}
		}
	}
}

func TestMultiplierInjection(t *testing.T) {
	cfg := fixedGridConfig()
	cfg.Mults = config.MultiplierConfig{
		Symbols: []config.Symbol{"A"},
		Chance:  config.MultiplierChance{Standard: 1000},
		Values: config.MultiplierValues{
			Standard: []config.WeightedValue{{Value: 2, Weight: 1}},
		},
	}

	stream := rng.NewStream(&scriptSource{vals: zeros(128)})
	b, _ := newBuilder(cfg, "standard", stream, config.BetModeStandard, false, accumZero)
	board, err := b.build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	for colIdx, cells := range board.Columns {
		for row, cell := range cells {
			if cell.Symbol == "A" && cell.Multiplier != 2 {
				t.Errorf("column %d row %d: eligible cell missing multiplier", colIdx, row)
			}
			if cell.Symbol != "A" && cell.Multiplier != 0 {
				t.Errorf("column %d row %d: ineligible cell carries multiplier %d", colIdx, row, cell.Multiplier)
			}
		}
	}
}

func TestFreeSpinMultiplierTierSwitch(t *testing.T) {
	cfg := fixedGridConfig()
	cfg.Mults = config.MultiplierConfig{
		Symbols: []config.Symbol{"A"},
		Chance:  config.MultiplierChance{FreeSpins: 1000},
		Values: config.MultiplierValues{
			FreeLow:  []config.WeightedValue{{Value: 2, Weight: 1}},
			FreeHigh: []config.WeightedValue{{Value: 10, Weight: 1}},
		},
		FreeTierThreshold: dec("5"),
	}

	accum := decimal.Zero
	stream := rng.NewStream(&scriptSource{vals: zeros(128)})
	b, err := newBuilder(cfg, "free", stream, config.BetModeStandard, true, func() decimal.Decimal { return accum })
	if err != nil {
		t.Fatalf("newBuilder: %v", err)
	}
	board, err := b.build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// Below the threshold every eligible cell draws from the low table.
	for colIdx, cells := range board.Columns {
		for row, cell := range cells {
			if cell.Symbol == "A" && cell.Multiplier != 2 {
				t.Fatalf("column %d row %d multiplier = %d, want low-table 2", colIdx, row, cell.Multiplier)
			}
		}
	}

	// Cross the threshold mid-round: cells refilled afterwards must draw
	// from the high table. Clearing rows 0 and 1 of column 0 makes the
	// refill pull strip[3] (D, ineligible) and strip[4] (A, eligible).
	accum = decimal.NewFromInt(5)
	removeWinners(cfg, board, []SymbolWin{{
		Positions: []Position{{Col: 0, Row: 0}, {Col: 0, Row: 1}},
	}})
	if err := b.refill(context.Background(), board); err != nil {
		t.Fatalf("refill: %v", err)
	}

	refilled := board.Columns[0][1]
	if refilled.Symbol != "A" {
		t.Fatalf("refilled cell = %s, want A", refilled.Symbol)
	}
	if refilled.Multiplier != 10 {
		t.Errorf("refilled multiplier = %d, want high-table 10", refilled.Multiplier)
	}
	// Cells drawn before the switch keep their low-table values.
	if board.Columns[1][0].Multiplier != 2 {
		t.Errorf("pre-switch cell multiplier = %d, want 2", board.Columns[1][0].Multiplier)
	}
}

func TestRefillContinuesFromCursor(t *testing.T) {
	cfg := fixedGridConfig()
	stream := rng.NewStream(&scriptSource{vals: zeros(64)})

	b, _ := newBuilder(cfg, "standard", stream, config.BetModeStandard, false, accumZero)
	board, err := b.build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// Clear the top two cells of column 0. The visible window used
	// strip[0..2], so the refill must continue at strip[3].
	removeWinners(cfg, board, []SymbolWin{{
		Symbol:    "A",
		Positions: []Position{{Col: 0, Row: 0}, {Col: 0, Row: 1}},
	}})
	if err := b.refill(context.Background(), board); err != nil {
		t.Fatalf("refill: %v", err)
	}

	strip := cfg.ReelSets["standard"].Reels[0]
	want := []config.Symbol{strip[3], strip[4], strip[2]}
	for row, cell := range board.Columns[0] {
		if cell.Symbol != want[row] {
			t.Errorf("row %d = %s, want %s", row, cell.Symbol, want[row])
		}
	}
}

func TestRefillCompactsTowardBottom(t *testing.T) {
	cfg := fixedGridConfig()
	stream := rng.NewStream(&scriptSource{vals: zeros(64)})

	b, _ := newBuilder(cfg, "standard", stream, config.BetModeStandard, false, accumZero)
	board, err := b.build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// Clear the middle cell: survivors keep relative order at the
	// bottom, the refill lands on top.
	survivorTop := board.Columns[1][0].Symbol
	survivorBottom := board.Columns[1][2].Symbol
	removeWinners(cfg, board, []SymbolWin{{
		Positions: []Position{{Col: 1, Row: 1}},
	}})
	if err := b.refill(context.Background(), board); err != nil {
		t.Fatalf("refill: %v", err)
	}

	cells := board.Columns[1]
	if cells[1].Symbol != survivorTop || cells[2].Symbol != survivorBottom {
		t.Errorf("survivors reordered: %+v", cells)
	}
	if cells[0].empty() {
		t.Error("vacated top cell not refilled")
	}
}

func TestTopReelScrolls(t *testing.T) {
	cfg := megawaysConfig()
	stream := rng.NewStream(&scriptSource{vals: zeros(64)})

	b, _ := newBuilder(cfg, "standard", stream, config.BetModeStandard, false, accumZero)
	board, err := b.build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	second := board.Top[1].Symbol
	removeWinners(cfg, board, []SymbolWin{{
		Positions: []Position{{Col: cfg.TopReel.Columns[0], Row: TopRow}},
	}})
	if err := b.refill(context.Background(), board); err != nil {
		t.Fatalf("refill: %v", err)
	}

	if len(board.Top) != 2 {
		t.Fatalf("top reel size = %d after refill, want 2", len(board.Top))
	}
	// Survivor shifts left, a fresh strip symbol enters on the right.
	if board.Top[0].Symbol != second {
		t.Errorf("top[0] = %s, want surviving %s", board.Top[0].Symbol, second)
	}
	topStrip := cfg.ReelSets["standard"].Top
	if board.Top[1].Symbol != topStrip[2] {
		t.Errorf("top[1] = %s, want %s from cursor", board.Top[1].Symbol, topStrip[2])
	}
}

func TestUnknownReelSet(t *testing.T) {
	cfg := fixedGridConfig()
	stream := rng.NewStream(&scriptSource{vals: zeros(64)})

	_, err := newBuilder(cfg, "missing", stream, config.BetModeStandard, false, accumZero)
	if err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestFlattenRoundTrip(t *testing.T) {
	board := &Board{
		Columns: [][]Cell{
			{{Symbol: "A"}, {Symbol: "B", Multiplier: 3}},
			{{Symbol: "C"}, {Symbol: "D"}, {Symbol: "A"}},
			{{Symbol: "B"}},
		},
		Top: []Cell{{Symbol: "A"}, {Symbol: "C", Multiplier: 5}},
	}

	flat := Flatten(board)
	back, err := Unflatten(flat)
	if err != nil {
		t.Fatalf("Unflatten: %v", err)
	}

	orig, _ := json.Marshal(board)
	got, _ := json.Marshal(back)
	if string(orig) != string(got) {
		t.Errorf("round trip mismatch:\n%s\n%s", orig, got)
	}
}

func TestBoardSerializesFlat(t *testing.T) {
	board := &Board{
		Columns: [][]Cell{
			{{Symbol: "A"}, {Symbol: "B", Multiplier: 3}},
			{{Symbol: "C"}},
		},
		Top: []Cell{{Symbol: "D"}},
	}

	data, err := json.Marshal(board)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	// The wire form is the flat transport shape, not the jagged grid.
	var flat FlatBoard
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("wire form is not a FlatBoard: %v", err)
	}
	if len(flat.Heights) != 2 || flat.Heights[0] != 2 || flat.Heights[1] != 1 {
		t.Errorf("heights = %v, want [2 1]", flat.Heights)
	}
	if len(flat.Symbols) != 3 || flat.Symbols[1] != "B" {
		t.Errorf("symbols = %v, want column-major [A B C]", flat.Symbols)
	}
	if len(flat.Multipliers) != 3 || flat.Multipliers[1] != 3 {
		t.Errorf("multipliers = %v, want [0 3 0]", flat.Multipliers)
	}

	var back Board
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(back.Columns) != 2 || len(back.Columns[0]) != 2 {
		t.Fatalf("jagged shape lost: %+v", back.Columns)
	}
	if back.Columns[0][1].Multiplier != 3 {
		t.Errorf("cell multiplier lost: %+v", back.Columns[0][1])
	}
	if len(back.Top) != 1 || back.Top[0].Symbol != "D" {
		t.Errorf("top reel lost: %+v", back.Top)
	}
}

func TestUnflattenRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		flat *FlatBoard
	}{
		{"SymbolCountMismatch", &FlatBoard{Heights: []int{2}, Symbols: []config.Symbol{"A"}}},
		{"MultiplierCountMismatch", &FlatBoard{Heights: []int{1}, Symbols: []config.Symbol{"A"}, Multipliers: []int{1, 2}}},
		{"NegativeHeight", &FlatBoard{Heights: []int{-1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unflatten(tt.flat); err == nil {
				t.Error("expected error")
			}
		})
	}
}
