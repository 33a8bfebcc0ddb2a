package game

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mvoronov/cascata/internal/config"
	"github.com/mvoronov/cascata/internal/rng"
)

// builder materializes boards from reel strips and owns the per-column
// strip cursors. Refills continue from the cursor left by the previous
// draw, never resetting to index 0. One builder serves exactly one
// round; draw order is fixed and must not be reordered.
type builder struct {
	cfg    *config.GameConfig
	set    config.ReelSet
	stream *rng.Stream
	mode   config.BetMode
	inFree bool

	// accumulated returns the multiplier accumulated so far this round,
	// which selects the free-spin multiplier table tier.
	accumulated func() decimal.Decimal

	cursors   []int
	topCursor int
}

func newBuilder(cfg *config.GameConfig, setName string, stream *rng.Stream, mode config.BetMode, inFree bool, accumulated func() decimal.Decimal) (*builder, error) {
	set, ok := cfg.ReelSets[setName]
	if !ok {
		return nil, fmt.Errorf("%w: no strip data for reel set %q", ErrConfiguration, setName)
	}
	return &builder{
		cfg:         cfg,
		set:         set,
		stream:      stream,
		mode:        mode,
		inFree:      inFree,
		accumulated: accumulated,
		cursors:     make([]int, cfg.Columns),
	}, nil
}

// drawCell pulls the next symbol for col from its strip cursor and
// samples multiplier attachment.
func (b *builder) drawCell(ctx context.Context, col int) (Cell, error) {
	strip := b.set.Reels[col]
	sym := strip[b.cursors[col]%len(strip)]
	b.cursors[col]++
	return b.attachMultiplier(ctx, Cell{Symbol: sym})
}

// drawTopCell pulls the next top reel symbol.
func (b *builder) drawTopCell(ctx context.Context) (Cell, error) {
	sym := b.set.Top[b.topCursor%len(b.set.Top)]
	b.topCursor++
	return b.attachMultiplier(ctx, Cell{Symbol: sym})
}

// attachMultiplier independently samples whether the cell carries a
// multiplier value and which one, using the weight table for the
// current mode and free-spin tier. The value attaches to the cell
// itself, preserving 1:1 cell correspondence for the evaluator.
func (b *builder) attachMultiplier(ctx context.Context, cell Cell) (Cell, error) {
	if !b.cfg.MultiplierEligible(cell.Symbol) {
		return cell, nil
	}
	chance := b.cfg.MultiplierChanceFor(b.mode, b.inFree)
	if chance <= 0 {
		return cell, nil
	}

	roll, err := b.stream.Intn(ctx, 1000)
	if err != nil {
		return Cell{}, fmt.Errorf("%w: %v", ErrInsufficientRandomness, err)
	}
	if roll >= chance {
		return cell, nil
	}

	table := b.cfg.MultiplierTableFor(b.mode, b.inFree, b.accumulated())
	if len(table) == 0 {
		return Cell{}, fmt.Errorf("%w: no multiplier weight table for mode %s", ErrConfiguration, b.mode)
	}
	weights := make([]int, len(table))
	for i, wv := range table {
		weights[i] = wv.Weight
	}
	idx, err := b.stream.Pick(ctx, weights)
	if err != nil {
		return Cell{}, fmt.Errorf("%w: %v", ErrInsufficientRandomness, err)
	}
	cell.Multiplier = table[idx].Value
	return cell, nil
}

// columnHeight draws a column's visible height for this round.
func (b *builder) columnHeight(ctx context.Context) (int, error) {
	if !b.cfg.Megaways {
		return b.cfg.Rows, nil
	}
	weights := make([]int, len(b.cfg.HeightWeights))
	for i, wv := range b.cfg.HeightWeights {
		weights[i] = wv.Weight
	}
	idx, err := b.stream.Pick(ctx, weights)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInsufficientRandomness, err)
	}
	return b.cfg.HeightWeights[idx].Value, nil
}

// build materializes the initial board. Per column, left to right: the
// height (Megaways only), the strip start index, then the visible cells
// top to bottom with their multiplier draws. The top reel, when
// configured, is drawn last.
func (b *builder) build(ctx context.Context) (*Board, error) {
	board := &Board{Columns: make([][]Cell, b.cfg.Columns)}

	for col := 0; col < b.cfg.Columns; col++ {
		height, err := b.columnHeight(ctx)
		if err != nil {
			return nil, err
		}

		strip := b.set.Reels[col]
		start, err := b.stream.Intn(ctx, len(strip))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInsufficientRandomness, err)
		}
		b.cursors[col] = start

		cells := make([]Cell, height)
		for row := 0; row < height; row++ {
			cells[row], err = b.drawCell(ctx, col)
			if err != nil {
				return nil, err
			}
		}
		board.Columns[col] = cells
	}

	if b.cfg.TopReel != nil && len(b.set.Top) > 0 {
		start, err := b.stream.Intn(ctx, len(b.set.Top))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInsufficientRandomness, err)
		}
		b.topCursor = start

		board.Top = make([]Cell, b.cfg.TopReel.Size)
		for i := range board.Top {
			board.Top[i], err = b.drawTopCell(ctx)
			if err != nil {
				return nil, err
			}
		}
	}

	return board, nil
}

// removeWinners clears every cell referenced by a win's positions.
func removeWinners(cfg *config.GameConfig, board *Board, wins []SymbolWin) {
	for _, win := range wins {
		for _, pos := range win.Positions {
			if pos.Row == TopRow {
				if i := topIndexFor(cfg, pos.Col); i >= 0 && i < len(board.Top) {
					board.Top[i] = Cell{}
				}
				continue
			}
			if pos.Col < len(board.Columns) && pos.Row < len(board.Columns[pos.Col]) {
				board.Columns[pos.Col][pos.Row] = Cell{}
			}
		}
	}
}

// topIndexFor maps a covered column to its top reel cell index.
func topIndexFor(cfg *config.GameConfig, col int) int {
	if cfg.TopReel == nil {
		return -1
	}
	for i, c := range cfg.TopReel.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// refill compacts each column toward the bottom preserving relative
// order and fills the vacated cells at the top by continuing from the
// column's strip cursor. Cleared top reel cells scroll: survivors shift
// left and new cells enter from the right.
func (b *builder) refill(ctx context.Context, board *Board) error {
	for col := range board.Columns {
		cells := board.Columns[col]
		kept := make([]Cell, 0, len(cells))
		for _, cell := range cells {
			if !cell.empty() {
				kept = append(kept, cell)
			}
		}

		missing := len(cells) - len(kept)
		if missing == 0 {
			continue
		}

		refilled := make([]Cell, 0, len(cells))
		for i := 0; i < missing; i++ {
			cell, err := b.drawCell(ctx, col)
			if err != nil {
				return err
			}
			refilled = append(refilled, cell)
		}
		board.Columns[col] = append(refilled, kept...)
	}

	if len(board.Top) > 0 {
		kept := make([]Cell, 0, len(board.Top))
		for _, cell := range board.Top {
			if !cell.empty() {
				kept = append(kept, cell)
			}
		}
		for len(kept) < len(board.Top) {
			cell, err := b.drawTopCell(ctx)
			if err != nil {
				return err
			}
			kept = append(kept, cell)
		}
		board.Top = kept
	}

	return nil
}
