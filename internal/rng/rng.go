// Package rng supplies the raw randomness behind round resolution.
// Compliant with GLI-19 Chapter 3: RNG Requirements
//
// One Source interface covers the remote seed service, the local
// cryptographic generator used as its fallback, and the deterministic
// generator used for replay and simulation. Call sites never pick an
// implementation themselves; they go through Provider.
package rng

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	mrand "math/rand"
	"sync"
	"time"
)

// ErrExhausted reports that a source could not supply the requested
// number of values.
var ErrExhausted = errors.New("randomness source exhausted")

// Source supplies raw uniform 64-bit values. Within one round the order
// of values is significant and must not be reordered.
type Source interface {
	Seeds(ctx context.Context, count int) ([]uint64, error)
}

// Local is a cryptographically strong source backed by crypto/rand.
// It serves as the fallback when the remote seed service is unreachable.
// GLI-19 §3.2: General RNG Requirements
type Local struct {
	entropy io.Reader

	mu               sync.Mutex
	samplesGenerated int64
}

// NewLocal creates a local source using crypto/rand.
func NewLocal() *Local {
	return &Local{entropy: rand.Reader}
}

// Seeds returns count raw values from the system entropy source.
func (l *Local) Seeds(_ context.Context, count int) ([]uint64, error) {
	if count <= 0 {
		return nil, fmt.Errorf("seed count must be positive, got %d", count)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	buf := make([]byte, count*8)
	if _, err := io.ReadFull(l.entropy, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExhausted, err)
	}

	out := make([]uint64, count)
	for i := range out {
		out[i] = binary.BigEndian.Uint64(buf[i*8 : i*8+8])
	}
	l.samplesGenerated += int64(count)
	return out, nil
}

// HealthCheck verifies the local generator is producing plausibly
// uniform output.
// GLI-19 §3.3.3: Dynamic Output Monitoring
func (l *Local) HealthCheck(ctx context.Context) (*HealthResult, error) {
	const sampleSize = 1000
	seeds, err := l.Seeds(ctx, sampleSize)
	if err != nil {
		return &HealthResult{
			Healthy:   false,
			Timestamp: time.Now(),
			Error:     err.Error(),
		}, err
	}

	samples := make([]int64, sampleSize)
	for i, s := range seeds {
		samples[i] = int64(s % 100)
	}
	chiSquare, passed := chiSquareTest(samples, 100)

	l.mu.Lock()
	generated := l.samplesGenerated
	l.mu.Unlock()

	return &HealthResult{
		Healthy:          passed,
		Timestamp:        time.Now(),
		SamplesGenerated: generated,
		ChiSquare:        chiSquare,
		ChiSquarePassed:  passed,
	}, nil
}

// chiSquareTest performs a basic chi-square test for uniformity.
// GLI-19 §3.2.2: Statistical Analysis
func chiSquareTest(samples []int64, bins int) (float64, bool) {
	counts := make([]int, bins)
	for _, sample := range samples {
		counts[int(sample)%bins]++
	}

	expected := float64(len(samples)) / float64(bins)

	var chiSquare float64
	for _, count := range counts {
		diff := float64(count) - expected
		chiSquare += (diff * diff) / expected
	}

	// Critical value for bins-1 degrees of freedom at 99% confidence.
	criticalValue := 134.6
	if bins != 100 {
		criticalValue = float64(bins-1) + 2.576*math.Sqrt(2.0*float64(bins-1))
	}

	return chiSquare, chiSquare < criticalValue
}

// HealthResult contains RNG health check results.
type HealthResult struct {
	Healthy          bool      `json:"healthy"`
	Timestamp        time.Time `json:"timestamp"`
	SamplesGenerated int64     `json:"samples_generated"`
	ChiSquare        float64   `json:"chi_square"`
	ChiSquarePassed  bool      `json:"chi_square_passed"`
	Error            string    `json:"error,omitempty"`
}

// Seeded is a deterministic source for audit replay and simulation.
// Identical seeds produce identical draw sequences, which together with
// the engine's fixed draw ordering makes a whole round reproducible.
type Seeded struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// NewSeeded creates a deterministic source from seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{r: mrand.New(mrand.NewSource(seed))}
}

// Seeds returns the next count values of the deterministic sequence.
func (s *Seeded) Seeds(_ context.Context, count int) ([]uint64, error) {
	if count <= 0 {
		return nil, fmt.Errorf("seed count must be positive, got %d", count)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]uint64, count)
	for i := range out {
		out[i] = s.r.Uint64()
	}
	return out, nil
}
