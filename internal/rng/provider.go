package rng

import (
	"context"

	"github.com/rs/zerolog"
)

// Provider is the single fallback policy between the remote seed
// service and the local generator. A remote failure degrades to the
// local source with a warning; it is not a hard failure. Only when the
// local source also fails does the error propagate.
type Provider struct {
	remote Source
	local  Source
	log    zerolog.Logger
}

// NewProvider creates a provider. remote may be nil, in which case all
// draws come from local.
func NewProvider(remote Source, local Source, log zerolog.Logger) *Provider {
	return &Provider{remote: remote, local: local, log: log}
}

// Seeds returns count raw values, preferring the remote service.
func (p *Provider) Seeds(ctx context.Context, count int) ([]uint64, error) {
	if p.remote != nil {
		seeds, err := p.remote.Seeds(ctx, count)
		if err == nil {
			return seeds, nil
		}
		p.log.Warn().Err(err).Int("count", count).Msg("remote seed service unavailable, falling back to local generator")
	}
	return p.local.Seeds(ctx, count)
}
