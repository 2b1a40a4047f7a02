// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package media

import (
	"context"
	"io"
	"sync"
	"time"
)

// Pacer paces live tracks at fixed interval. Ticker is started on first Wait,
// so first frame is delivered one interval after track is read.
type Pacer struct {
	interval time.Duration

	mu      sync.Mutex
	ticker  *time.Ticker
	stopped bool
}

func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Wait blocks until next tick. It returns io.EOF when done is closed or pacer is stopped
func (p *Pacer) Wait(ctx context.Context, done <-chan struct{}) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return io.EOF
	}
	if p.ticker == nil {
		p.ticker = time.NewTicker(p.interval)
	}
	ticker := p.ticker
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return io.EOF
	case <-ticker.C:
		return nil
	}
}

func (p *Pacer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	if p.ticker != nil {
		p.ticker.Stop()
	}
}
