// Package memory provides queue implementations for local development.
package memory

import (
	"context"
	"errors"
	"sync"
)

// Provider captures published messages in memory. It is used in tests and
// when running against a local environment without Pub/Sub.
type Provider struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

// NewProvider constructs an empty in-memory provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Publish records the payload.
func (p *Provider) Publish(_ context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("queue closed")
	}
	p.messages = append(p.messages, append([]byte(nil), payload...))
	return nil
}

// Messages returns a snapshot of everything published so far.
func (p *Provider) Messages() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.messages))
	copy(out, p.messages)
	return out
}

// Close marks the provider closed; further publishes fail.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
