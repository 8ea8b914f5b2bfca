// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// Fake returns a FakeClock initialized to the given time. Time stands
// still until Advance is called; tickers registered on the clock fire
// as the advance crosses their deadlines.
//
// FakeClock is safe for concurrent use by multiple goroutines.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a deterministic Clock for testing. Time advances only
// when Advance is called.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	tickers []*fakeTicker
}

type fakeTicker struct {
	deadline time.Time
	interval time.Duration
	channel  chan time.Time
	stopped  bool
}

// Now returns the fake clock's current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NewTicker registers a ticker that fires when Advance crosses its
// deadline. Panics if d <= 0, matching time.NewTicker.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ticker := &fakeTicker{
		deadline: c.current.Add(d),
		interval: d,
		// Capacity 1, matching time.Ticker: ticks are dropped, not
		// queued, when the consumer falls behind.
		channel: make(chan time.Time, 1),
	}
	c.tickers = append(c.tickers, ticker)
	return &Ticker{
		C:        ticker.channel,
		stopFunc: func() { c.stopTicker(ticker) },
	}
}

func (c *FakeClock) stopTicker(t *fakeTicker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t.stopped = true
}

// Advance moves the clock forward by d, delivering a tick for every
// ticker deadline the move crosses. Delivery is non-blocking: a
// ticker whose previous tick has not been consumed drops the new one.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)

	for _, t := range c.tickers {
		for !t.stopped && !t.deadline.After(c.current) {
			select {
			case t.channel <- t.deadline:
			default:
			}
			t.deadline = t.deadline.Add(t.interval)
		}
	}
}

// TickerCount returns the number of registered, unstopped tickers.
// Tests use it to wait until the goroutine under test has started its
// loop before advancing the clock.
func (c *FakeClock) TickerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, t := range c.tickers {
		if !t.stopped {
			count++
		}
	}
	return count
}
