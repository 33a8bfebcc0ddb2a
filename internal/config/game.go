package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Symbol is a reel symbol code.
type Symbol string

// BetMode selects the wager variant for a round.
type BetMode string

const (
	BetModeStandard BetMode = "standard"
	BetModeAnte     BetMode = "ante"
)

// Dec is a decimal config value decoded from a YAML scalar.
type Dec struct {
	decimal.Decimal
}

// UnmarshalYAML decodes a YAML scalar (number or string) into a decimal.
func (d *Dec) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	d.Decimal = parsed
	return nil
}

// PayTier is one paytable tier. Count is the minimum symbol count
// (fixed-grid games) or the minimum contiguous column count (ways
// games) the tier requires.
type PayTier struct {
	Count      int `yaml:"count"`
	Multiplier Dec `yaml:"multiplier"`
}

// WeightedValue is one entry of a weight table.
type WeightedValue struct {
	Value  int `yaml:"value"`
	Weight int `yaml:"weight"`
}

// ReelSet is the strip data for one named reel set.
type ReelSet struct {
	Reels [][]Symbol `yaml:"reels"`
	// Top is the strip feeding the horizontal top reel. Megaways only.
	Top []Symbol `yaml:"top,omitempty"`
}

// ReelSelection maps play context to the reel set used for the round.
type ReelSelection struct {
	Standard  string `yaml:"standard"`
	Ante      string `yaml:"ante"`
	FreeSpins string `yaml:"free_spins"`
	// Buy, when set, is used for the very first bought spin only.
	Buy string `yaml:"buy,omitempty"`
}

// TopReelConfig describes the horizontally scrolling auxiliary reel.
// Its cells count as extra matching positions for the columns it
// covers.
type TopReelConfig struct {
	Size    int   `yaml:"size"`
	Columns []int `yaml:"columns"`
}

// MultiplierChance is the per-mode permille chance that an eligible
// cell carries a multiplier value.
type MultiplierChance struct {
	Standard  int `yaml:"standard"`
	Ante      int `yaml:"ante"`
	FreeSpins int `yaml:"free_spins"`
}

// MultiplierValues are the weight tables multiplier values are drawn
// from. During free spins the table switches from FreeLow to FreeHigh
// once the accumulated round multiplier reaches FreeTierThreshold.
type MultiplierValues struct {
	Standard []WeightedValue `yaml:"standard"`
	Ante     []WeightedValue `yaml:"ante"`
	FreeLow  []WeightedValue `yaml:"free_low"`
	FreeHigh []WeightedValue `yaml:"free_high"`
}

// MultiplierConfig controls multiplier injection during board build.
type MultiplierConfig struct {
	Symbols           []Symbol         `yaml:"symbols"`
	Chance            MultiplierChance `yaml:"chance_permille"`
	Values            MultiplierValues `yaml:"values"`
	FreeTierThreshold Dec              `yaml:"free_tier_threshold"`
}

// ScatterConfig controls the feature-triggering scatter symbol.
type ScatterConfig struct {
	Symbol    Symbol    `yaml:"symbol"`
	Trigger   int       `yaml:"trigger"`
	Retrigger int       `yaml:"retrigger"`
	Pays      []PayTier `yaml:"pays,omitempty"`
}

// FreeSpinConfig holds awarded spin counts.
type FreeSpinConfig struct {
	Initial   int `yaml:"initial"`
	Retrigger int `yaml:"retrigger"`
}

// BuyConfig controls the feature-buy shortcut.
type BuyConfig struct {
	Enabled       bool `yaml:"enabled"`
	CostXBet      Dec  `yaml:"cost_x_bet"`
	UseBuyReelSet bool `yaml:"use_buy_reel_set"`
}

// GameConfig is the immutable math snapshot for one game. The engine
// receives it read-only; a validated snapshot may be shared by any
// number of concurrent rounds.
type GameConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	Columns int `yaml:"columns"`
	// Rows is the fixed grid height. Ignored when Megaways is set.
	Rows     int  `yaml:"rows"`
	Megaways bool `yaml:"megaways"`
	MaxRows  int  `yaml:"max_rows"`
	// HeightWeights draws each column's visible height in Megaways mode.
	HeightWeights []WeightedValue `yaml:"height_weights,omitempty"`
	TopReel       *TopReelConfig  `yaml:"top_reel,omitempty"`

	Wild Symbol `yaml:"wild,omitempty"`
	// WildColumns are the columns where a wild substitutes. Never
	// includes column 0.
	WildColumns []int `yaml:"wild_columns,omitempty"`

	ReelSets  map[string]ReelSet   `yaml:"reel_sets"`
	Selection ReelSelection        `yaml:"selection"`
	Paytable  map[Symbol][]PayTier `yaml:"paytable"`
	Scatter   ScatterConfig        `yaml:"scatter"`
	FreeSpins FreeSpinConfig       `yaml:"free_spins"`
	Mults     MultiplierConfig     `yaml:"multipliers"`

	MinBet     Dec       `yaml:"min_bet"`
	MaxBet     Dec       `yaml:"max_bet"`
	AnteXBet   Dec       `yaml:"ante_x_bet"`
	MaxWinXBet Dec       `yaml:"max_win_x_bet"`
	Buy        BuyConfig `yaml:"buy"`

	// MaxCascades is the safety ceiling of the cascade loop.
	MaxCascades int `yaml:"max_cascades"`
}

// visibleRows is the tallest column the board can show.
func (c *GameConfig) visibleRows() int {
	if c.Megaways {
		return c.MaxRows
	}
	return c.Rows
}

// SelectReelSet resolves the reel set name for a play context.
// firstBuySpin applies only to the first spin awarded by a feature buy.
func (c *GameConfig) SelectReelSet(mode BetMode, firstBuySpin, inFreeSpins bool) string {
	if firstBuySpin && c.Buy.UseBuyReelSet && c.Selection.Buy != "" {
		return c.Selection.Buy
	}
	if inFreeSpins {
		return c.Selection.FreeSpins
	}
	if mode == BetModeAnte {
		return c.Selection.Ante
	}
	return c.Selection.Standard
}

// MultiplierChanceFor returns the permille chance that an eligible cell
// carries a multiplier in the given context.
func (c *GameConfig) MultiplierChanceFor(mode BetMode, inFreeSpins bool) int {
	if inFreeSpins {
		return c.Mults.Chance.FreeSpins
	}
	if mode == BetModeAnte {
		return c.Mults.Chance.Ante
	}
	return c.Mults.Chance.Standard
}

// MultiplierTableFor returns the value weight table for the given
// context. accumulated is the free-spin round multiplier accumulated so
// far; it selects between the low and high free-spin tables.
func (c *GameConfig) MultiplierTableFor(mode BetMode, inFreeSpins bool, accumulated decimal.Decimal) []WeightedValue {
	if inFreeSpins {
		if !c.Mults.FreeTierThreshold.IsZero() && accumulated.GreaterThanOrEqual(c.Mults.FreeTierThreshold.Decimal) {
			return c.Mults.Values.FreeHigh
		}
		return c.Mults.Values.FreeLow
	}
	if mode == BetModeAnte {
		return c.Mults.Values.Ante
	}
	return c.Mults.Values.Standard
}

// MultiplierEligible reports whether cells of the given symbol may
// carry a multiplier value.
func (c *GameConfig) MultiplierEligible(sym Symbol) bool {
	for _, s := range c.Mults.Symbols {
		if s == sym {
			return true
		}
	}
	return false
}

// WildEligibleColumn reports whether wilds substitute on column col.
func (c *GameConfig) WildEligibleColumn(col int) bool {
	for _, wc := range c.WildColumns {
		if wc == col {
			return true
		}
	}
	return false
}

// ScatterPayFor returns the scatter payout multiplier for count
// scatters, or zero when no tier applies.
func (c *GameConfig) ScatterPayFor(count int) decimal.Decimal {
	best := decimal.Zero
	for _, tier := range c.Scatter.Pays {
		if count >= tier.Count {
			best = tier.Multiplier.Decimal
		}
	}
	return best
}

// Validate checks the snapshot for internal consistency and fills
// defaults. A config that passes Validate never fails structural checks
// inside the engine.
func (c *GameConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("game config: missing id")
	}
	if c.Columns <= 0 {
		return fmt.Errorf("game %s: columns must be positive", c.ID)
	}

	if c.Megaways {
		if c.MaxRows < 2 {
			return fmt.Errorf("game %s: megaways max_rows must be at least 2", c.ID)
		}
		if err := validateWeights(c.HeightWeights); err != nil {
			return fmt.Errorf("game %s: height_weights: %w", c.ID, err)
		}
		for _, wv := range c.HeightWeights {
			if wv.Value < 2 || wv.Value > c.MaxRows {
				return fmt.Errorf("game %s: height weight value %d outside [2,%d]", c.ID, wv.Value, c.MaxRows)
			}
		}
		if c.TopReel != nil {
			if c.TopReel.Size <= 0 {
				return fmt.Errorf("game %s: top reel size must be positive", c.ID)
			}
			if len(c.TopReel.Columns) != c.TopReel.Size {
				return fmt.Errorf("game %s: top reel covers %d columns but has size %d", c.ID, len(c.TopReel.Columns), c.TopReel.Size)
			}
			for _, col := range c.TopReel.Columns {
				if col < 0 || col >= c.Columns {
					return fmt.Errorf("game %s: top reel column %d out of range", c.ID, col)
				}
			}
		}
	} else {
		if c.Rows <= 0 {
			return fmt.Errorf("game %s: rows must be positive", c.ID)
		}
		if c.TopReel != nil {
			return fmt.Errorf("game %s: top reel requires megaways mode", c.ID)
		}
	}

	if len(c.ReelSets) == 0 {
		return fmt.Errorf("game %s: no reel sets", c.ID)
	}
	for name, set := range c.ReelSets {
		if len(set.Reels) != c.Columns {
			return fmt.Errorf("game %s: reel set %q has %d strips, want %d", c.ID, name, len(set.Reels), c.Columns)
		}
		for col, strip := range set.Reels {
			if len(strip) < c.visibleRows() {
				return fmt.Errorf("game %s: reel set %q column %d strip too short (%d < %d)", c.ID, name, col, len(strip), c.visibleRows())
			}
		}
		if c.TopReel != nil && len(set.Top) > 0 && len(set.Top) < c.TopReel.Size {
			return fmt.Errorf("game %s: reel set %q top strip too short (%d < %d)", c.ID, name, len(set.Top), c.TopReel.Size)
		}
	}

	required := []string{c.Selection.Standard, c.Selection.Ante, c.Selection.FreeSpins}
	if c.Selection.Buy != "" {
		required = append(required, c.Selection.Buy)
	}
	for _, name := range required {
		if name == "" {
			return fmt.Errorf("game %s: incomplete reel set selection", c.ID)
		}
		if _, ok := c.ReelSets[name]; !ok {
			return fmt.Errorf("game %s: selection references unknown reel set %q", c.ID, name)
		}
	}

	if len(c.Paytable) == 0 {
		return fmt.Errorf("game %s: empty paytable", c.ID)
	}
	for sym, tiers := range c.Paytable {
		if len(tiers) == 0 {
			return fmt.Errorf("game %s: paytable symbol %s has no tiers", c.ID, sym)
		}
		sorted := sort.SliceIsSorted(tiers, func(i, j int) bool { return tiers[i].Count < tiers[j].Count })
		if !sorted {
			return fmt.Errorf("game %s: paytable symbol %s tiers not sorted by count", c.ID, sym)
		}
		for _, tier := range tiers {
			if tier.Count <= 0 {
				return fmt.Errorf("game %s: paytable symbol %s has non-positive tier count", c.ID, sym)
			}
			if !tier.Multiplier.IsPositive() {
				return fmt.Errorf("game %s: paytable symbol %s has non-positive multiplier", c.ID, sym)
			}
		}
	}

	for _, col := range c.WildColumns {
		if col == 0 {
			return fmt.Errorf("game %s: wilds are not allowed on column 0", c.ID)
		}
		if col < 0 || col >= c.Columns {
			return fmt.Errorf("game %s: wild column %d out of range", c.ID, col)
		}
	}

	if c.Scatter.Symbol == "" {
		return fmt.Errorf("game %s: missing scatter symbol", c.ID)
	}
	if c.Scatter.Trigger <= 0 {
		return fmt.Errorf("game %s: scatter trigger must be positive", c.ID)
	}
	if c.Scatter.Retrigger < 0 || c.Scatter.Retrigger > c.Scatter.Trigger {
		return fmt.Errorf("game %s: scatter retrigger must be in [0,%d]", c.ID, c.Scatter.Trigger)
	}
	if c.FreeSpins.Initial <= 0 {
		return fmt.Errorf("game %s: free spin initial count must be positive", c.ID)
	}

	chances := []int{c.Mults.Chance.Standard, c.Mults.Chance.Ante, c.Mults.Chance.FreeSpins}
	for _, chance := range chances {
		if chance < 0 || chance > 1000 {
			return fmt.Errorf("game %s: multiplier chance must be in [0,1000] permille", c.ID)
		}
	}
	if c.Mults.Chance.Standard > 0 || c.Mults.Chance.Ante > 0 || c.Mults.Chance.FreeSpins > 0 {
		if len(c.Mults.Symbols) == 0 {
			return fmt.Errorf("game %s: multiplier chance set but no eligible symbols", c.ID)
		}
		tables := [][]WeightedValue{c.Mults.Values.Standard, c.Mults.Values.Ante, c.Mults.Values.FreeLow, c.Mults.Values.FreeHigh}
		for _, table := range tables {
			if len(table) == 0 {
				continue
			}
			if err := validateWeights(table); err != nil {
				return fmt.Errorf("game %s: multiplier values: %w", c.ID, err)
			}
		}
		if c.Mults.Chance.Standard > 0 && len(c.Mults.Values.Standard) == 0 {
			return fmt.Errorf("game %s: standard multiplier table missing", c.ID)
		}
		if c.Mults.Chance.Ante > 0 && len(c.Mults.Values.Ante) == 0 {
			return fmt.Errorf("game %s: ante multiplier table missing", c.ID)
		}
		if c.Mults.Chance.FreeSpins > 0 && len(c.Mults.Values.FreeLow) == 0 {
			return fmt.Errorf("game %s: free-spin multiplier table missing", c.ID)
		}
	}

	if !c.MinBet.IsPositive() || !c.MaxBet.IsPositive() || c.MinBet.GreaterThan(c.MaxBet.Decimal) {
		return fmt.Errorf("game %s: invalid bet range [%s,%s]", c.ID, c.MinBet, c.MaxBet)
	}
	if !c.MaxWinXBet.IsPositive() {
		return fmt.Errorf("game %s: max_win_x_bet must be positive", c.ID)
	}
	if c.Buy.Enabled && !c.Buy.CostXBet.IsPositive() {
		return fmt.Errorf("game %s: buy cost must be positive", c.ID)
	}
	if c.AnteXBet.IsZero() {
		c.AnteXBet = Dec{decimal.NewFromInt(1)}
	}
	if c.MaxCascades == 0 {
		c.MaxCascades = 64
	}
	if c.MaxCascades < 0 {
		return fmt.Errorf("game %s: max_cascades must be positive", c.ID)
	}

	return nil
}

func validateWeights(table []WeightedValue) error {
	if len(table) == 0 {
		return fmt.Errorf("empty weight table")
	}
	total := 0
	for _, wv := range table {
		if wv.Weight < 0 {
			return fmt.Errorf("negative weight for value %d", wv.Value)
		}
		total += wv.Weight
	}
	if total <= 0 {
		return fmt.Errorf("weight table has zero total weight")
	}
	return nil
}

// LoadGame reads and validates one game config file.
func LoadGame(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config %s: %w", path, err)
	}

	var cfg GameConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse game config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadGames reads every *.yaml game config in dir, keyed by game id.
func LoadGames(dir string) (map[string]*GameConfig, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no game configs found in %s", dir)
	}

	games := make(map[string]*GameConfig, len(paths))
	for _, path := range paths {
		cfg, err := LoadGame(path)
		if err != nil {
			return nil, err
		}
		if _, dup := games[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate game id %s in %s", cfg.ID, path)
		}
		games[cfg.ID] = cfg
	}
	return games, nil
}
