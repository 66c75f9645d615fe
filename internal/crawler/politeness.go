package crawler

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/marketsnap/catalog-crawler/internal/metrics"
)

// Politeness spaces upstream requests with fixed delays: a small one between
// product cards and a larger one between result pages. The delays are a
// rate-limiting policy the upstream tolerates, not a tunable performance
// knob.
type Politeness struct {
	cards *rate.Limiter
	pages *rate.Limiter
}

// NewPoliteness builds limiters for the given fixed delays. A non-positive
// delay disables its limiter.
func NewPoliteness(cardDelay, pageDelay time.Duration) *Politeness {
	p := &Politeness{}
	if cardDelay > 0 {
		p.cards = rate.NewLimiter(rate.Every(cardDelay), 1)
	}
	if pageDelay > 0 {
		p.pages = rate.NewLimiter(rate.Every(pageDelay), 1)
	}
	return p
}

// WaitCard blocks until the next product card may be processed.
func (p *Politeness) WaitCard(ctx context.Context) error {
	return wait(ctx, p.cards, "card")
}

// WaitPage blocks until the next result page may be fetched.
func (p *Politeness) WaitPage(ctx context.Context) error {
	return wait(ctx, p.pages, "page")
}

func wait(ctx context.Context, l *rate.Limiter, scope string) error {
	if l == nil {
		return nil
	}
	start := time.Now()
	if err := l.Wait(ctx); err != nil {
		return err
	}
	metrics.ObservePolitenessDelay(scope, time.Since(start))
	return nil
}
