// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notice

import (
	"sync"
	"time"
)

// Kind is the severity of a notice.
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindWarning
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindWarning:
		return "warning"
	case KindError:
		return "error"
	default:
		return "info"
	}
}

// DefaultTTL is how long a notice stays visible.
const DefaultTTL = 5 * time.Second

// DefaultCapacity bounds how many notices are shown at once.
const DefaultCapacity = 5

// Notice is a transient user-visible message.
type Notice struct {
	ID        int
	Kind      Kind
	Text      string
	CreatedAt time.Time
	TTL       time.Duration
}

// Expired reports whether the notice should be gone at now.
func (n Notice) Expired(now time.Time) bool {
	return now.Sub(n.CreatedAt) >= n.TTL
}

// Remaining is the time left before the notice expires.
func (n Notice) Remaining(now time.Time) time.Duration {
	if r := n.TTL - now.Sub(n.CreatedAt); r > 0 {
		return r
	}
	return 0
}

// Poster is the narrow interface controllers use to surface messages.
type Poster interface {
	Post(kind Kind, text string) int
}

// Center holds the active notices, newest first.
type Center struct {
	mu       sync.Mutex
	notices  []Notice
	nextID   int
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// Option configures a Center.
type Option func(*Center)

// WithTTL overrides DefaultTTL.
func WithTTL(d time.Duration) Option {
	return func(c *Center) { c.ttl = d }
}

// WithCapacity overrides DefaultCapacity.
func WithCapacity(n int) Option {
	return func(c *Center) { c.capacity = n }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// NewCenter returns an empty notice center.
func NewCenter(opts ...Option) *Center {
	c := &Center{
		nextID:   1,
		capacity: DefaultCapacity,
		ttl:      DefaultTTL,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	if c.capacity < 1 {
		c.capacity = 1
	}
	return c
}

// Post adds a notice and returns its ID. The oldest notice is dropped when
// the center is full.
func (c *Center) Post(kind Kind, text string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := Notice{
		ID:        c.nextID,
		Kind:      kind,
		Text:      text,
		CreatedAt: c.now(),
		TTL:       c.ttl,
	}
	c.nextID++

	c.notices = append([]Notice{n}, c.notices...)
	if len(c.notices) > c.capacity {
		c.notices = c.notices[:c.capacity]
	}
	return n.ID
}

func (c *Center) Info(text string) int    { return c.Post(KindInfo, text) }
func (c *Center) Success(text string) int { return c.Post(KindSuccess, text) }
func (c *Center) Warning(text string) int { return c.Post(KindWarning, text) }
func (c *Center) Error(text string) int   { return c.Post(KindError, text) }

// Dismiss removes a notice early.
func (c *Center) Dismiss(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.notices {
		if n.ID == id {
			c.notices = append(c.notices[:i], c.notices[i+1:]...)
			return
		}
	}
}

// Expire drops notices past their TTL and reports whether any remain.
func (c *Center) Expire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	kept := c.notices[:0]
	for _, n := range c.notices {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	c.notices = kept
	return len(c.notices) > 0
}

// Active returns a copy of the current notices, newest first.
func (c *Center) Active() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Notice, len(c.notices))
	copy(out, c.notices)
	return out
}

// Latest returns the newest notice, if any.
func (c *Center) Latest() (Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.notices) == 0 {
		return Notice{}, false
	}
	return c.notices[0], true
}

// Clear removes every notice.
func (c *Center) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = nil
}

// Now is the center's clock.
func (c *Center) Now() time.Time {
	return c.now()
}
