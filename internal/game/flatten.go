package game

import (
	"encoding/json"
	"fmt"

	"github.com/mvoronov/cascata/internal/config"
)

// FlatBoard is the linear transport form of a board: symbols and
// multipliers in column-major order with explicit per-column heights.
// The engine works on the jagged (column, row) structure; every board
// crossing the wire goes through this pair via Board's JSON methods.
type FlatBoard struct {
	Heights        []int           `json:"heights"`
	Symbols        []config.Symbol `json:"symbols"`
	Multipliers    []int           `json:"multipliers,omitempty"`
	TopSymbols     []config.Symbol `json:"top_symbols,omitempty"`
	TopMultipliers []int           `json:"top_multipliers,omitempty"`
}

// Flatten converts a board to its transport form.
func Flatten(b *Board) *FlatBoard {
	flat := &FlatBoard{Heights: make([]int, len(b.Columns))}

	hasMult := false
	for col, cells := range b.Columns {
		flat.Heights[col] = len(cells)
		for _, cell := range cells {
			flat.Symbols = append(flat.Symbols, cell.Symbol)
			flat.Multipliers = append(flat.Multipliers, cell.Multiplier)
			if cell.Multiplier != 0 {
				hasMult = true
			}
		}
	}
	if !hasMult {
		flat.Multipliers = nil
	}

	hasTopMult := false
	for _, cell := range b.Top {
		flat.TopSymbols = append(flat.TopSymbols, cell.Symbol)
		flat.TopMultipliers = append(flat.TopMultipliers, cell.Multiplier)
		if cell.Multiplier != 0 {
			hasTopMult = true
		}
	}
	if !hasTopMult {
		flat.TopMultipliers = nil
	}

	return flat
}

// Unflatten reconstructs a board from its transport form.
func Unflatten(flat *FlatBoard) (*Board, error) {
	total := 0
	for _, h := range flat.Heights {
		if h < 0 {
			return nil, fmt.Errorf("negative column height %d", h)
		}
		total += h
	}
	if len(flat.Symbols) != total {
		return nil, fmt.Errorf("flat board has %d symbols, heights require %d", len(flat.Symbols), total)
	}
	if flat.Multipliers != nil && len(flat.Multipliers) != total {
		return nil, fmt.Errorf("flat board has %d multipliers, heights require %d", len(flat.Multipliers), total)
	}
	if flat.TopMultipliers != nil && len(flat.TopMultipliers) != len(flat.TopSymbols) {
		return nil, fmt.Errorf("flat board has %d top multipliers for %d top symbols", len(flat.TopMultipliers), len(flat.TopSymbols))
	}

	board := &Board{Columns: make([][]Cell, len(flat.Heights))}
	idx := 0
	for col, h := range flat.Heights {
		cells := make([]Cell, h)
		for row := 0; row < h; row++ {
			cells[row] = Cell{Symbol: flat.Symbols[idx]}
			if flat.Multipliers != nil {
				cells[row].Multiplier = flat.Multipliers[idx]
			}
			idx++
		}
		board.Columns[col] = cells
	}

	for i, sym := range flat.TopSymbols {
		cell := Cell{Symbol: sym}
		if flat.TopMultipliers != nil {
			cell.Multiplier = flat.TopMultipliers[i]
		}
		board.Top = append(board.Top, cell)
	}

	return board, nil
}

// MarshalJSON renders the board in its flat transport form.
func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(Flatten(b))
}

// UnmarshalJSON reconstructs the jagged board from the flat form.
func (b *Board) UnmarshalJSON(data []byte) error {
	var flat FlatBoard
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	board, err := Unflatten(&flat)
	if err != nil {
		return err
	}
	*b = *board
	return nil
}
