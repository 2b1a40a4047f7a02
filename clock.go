// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package streammerge

import (
	"context"
	"time"
)

var (
	// DefaultRefreshRate is display refresh rate driving frame loop
	DefaultRefreshRate = 60
)

// FrameClock schedules frame loop on display refresh
type FrameClock interface {
	// WaitFrame blocks until next refresh
	WaitFrame(ctx context.Context) error
}

// FrameClockFunc is adapter for using function as FrameClock
type FrameClockFunc func(ctx context.Context) error

func (f FrameClockFunc) WaitFrame(ctx context.Context) error {
	return f(ctx)
}

// TickerClock ticks at fixed refresh rate. Missed refreshes are dropped.
type TickerClock struct {
	ticker *time.Ticker
}

func NewTickerClock(rate int) *TickerClock {
	if rate <= 0 {
		rate = DefaultRefreshRate
	}
	return &TickerClock{
		ticker: time.NewTicker(time.Second / time.Duration(rate)),
	}
}

func (c *TickerClock) WaitFrame(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ticker.C:
		return nil
	}
}

func (c *TickerClock) Stop() {
	c.ticker.Stop()
}
