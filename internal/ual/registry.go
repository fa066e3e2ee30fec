package ual

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

const maxConcurrentInit = 4

// Registry is the ordered list of configured authenticators.
type Registry struct {
	authenticators []Authenticator
}

func NewRegistry(authenticators ...Authenticator) *Registry {
	return &Registry{authenticators: authenticators}
}

// All returns the authenticators in configuration order.
func (r *Registry) All() []Authenticator {
	out := make([]Authenticator, len(r.authenticators))
	copy(out, r.authenticators)
	return out
}

// Find returns the authenticator whose display text equals name.
func (r *Registry) Find(name string) (Authenticator, bool) {
	for _, a := range r.authenticators {
		if a.Style().Text == name {
			return a, true
		}
	}
	return nil, false
}

// Availability reports, per authenticator name, whether it initialized
// without error.
type Availability map[string]bool

// InitAll initializes every authenticator concurrently and waits for each
// with wait. A provider that fails to initialize is reported unavailable;
// only a wait error (cancellation) aborts the batch.
func (r *Registry) InitAll(ctx context.Context, wait func(context.Context, Authenticator) error) (Availability, error) {
	results := make([]bool, len(r.authenticators))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentInit)

	for i, a := range r.authenticators {
		g.Go(func() error {
			a.Init(ctx)
			if err := wait(ctx, a); err != nil {
				return err
			}
			results[i] = !a.InitError()
			if !results[i] {
				slog.Warn("Authenticator failed to initialize", "authenticator", a.Style().Text)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	avail := make(Availability, len(r.authenticators))
	for i, a := range r.authenticators {
		avail[a.Style().Text] = results[i]
	}
	return avail, nil
}
