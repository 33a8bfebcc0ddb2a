package game

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/mvoronov/cascata/internal/config"
	"github.com/mvoronov/cascata/internal/money"
)

// FeatureEvent is the feature-state transition reported for a round.
// Exactly one of the variants below is returned; absence of a trigger
// is an explicit NoTrigger, never a zero-valued catch-all struct.
type FeatureEvent interface {
	featureEvent()
}

// NoTrigger reports that the round left the feature state unchanged
// (aside from a free-spin decrement).
type NoTrigger struct{}

// Triggered reports entry into free spins, by scatters or by a buy.
type Triggered struct {
	Spins int `json:"spins"`
}

// Retriggered reports additional spins awarded during free spins.
type Retriggered struct {
	AddedSpins int `json:"added_spins"`
}

// Exhausted reports the terminal transition: the final free spin
// completed and the state was reset. FeatureWin is the full feature-win
// accumulator being paid out of the feature.
type Exhausted struct {
	FeatureWin money.Money `json:"feature_win"`
}

func (NoTrigger) featureEvent()   {}
func (Triggered) featureEvent()   {}
func (Retriggered) featureEvent() {}
func (Exhausted) featureEvent()   {}

type taggedEvent struct {
	Kind       string      `json:"kind"`
	Spins      int         `json:"spins,omitempty"`
	AddedSpins int         `json:"added_spins,omitempty"`
	FeatureWin money.Money `json:"feature_win,omitempty"`
}

// MarshalJSON renders the variant with an explicit kind tag.
func (e NoTrigger) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedEvent{Kind: "none"})
}

func (e Triggered) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedEvent{Kind: "triggered", Spins: e.Spins})
}

func (e Retriggered) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedEvent{Kind: "retriggered", AddedSpins: e.AddedSpins})
}

func (e Exhausted) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedEvent{Kind: "exhausted", FeatureWin: e.FeatureWin})
}

// enterFreeSpins moves an idle state into free spins.
func enterFreeSpins(cfg *config.GameConfig, st *FreeSpinState) {
	st.Active = true
	st.SpinsRemaining = cfg.FreeSpins.Initial
	st.TotalAwarded = cfg.FreeSpins.Initial
	st.AccumulatedMultiplier = decimal.Zero
	st.FeatureWin = money.Zero()
}

// advanceFeature applies end-of-round feature transitions to st:
// scatter trigger or retrigger, free-spin decrement, and the terminal
// reset. wasFreeSpin reports whether the round just resolved consumed a
// free spin; roundWin is the round's final (capped) win.
//
// Exactly one event is returned. The terminal reset is reported
// explicitly as Exhausted, never inferred by the caller.
func advanceFeature(cfg *config.GameConfig, st *FreeSpinState, scatters int, wasFreeSpin bool, roundWin money.Money) FeatureEvent {
	if !wasFreeSpin {
		if scatters >= cfg.Scatter.Trigger {
			enterFreeSpins(cfg, st)
			return Triggered{Spins: st.SpinsRemaining}
		}
		return NoTrigger{}
	}

	// Free-spin round: fold the win into the feature accumulator first,
	// then handle retrigger before the decrement so added spins keep
	// the feature alive.
	st.FeatureWin = st.FeatureWin.Add(roundWin)

	var event FeatureEvent = NoTrigger{}
	if cfg.Scatter.Retrigger > 0 && scatters >= cfg.Scatter.Retrigger {
		st.SpinsRemaining += cfg.FreeSpins.Retrigger
		st.TotalAwarded += cfg.FreeSpins.Retrigger
		event = Retriggered{AddedSpins: cfg.FreeSpins.Retrigger}
	}

	st.SpinsRemaining--
	if st.SpinsRemaining <= 0 {
		finalWin := st.FeatureWin
		*st = EmptyFeatureState()
		return Exhausted{FeatureWin: finalWin}
	}
	return event
}
