// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// =============================================================================
// SESSION TIMER
// =============================================================================

// Timer tracks how long the current session has been open. It shares no
// state with the controllers.
type Timer struct {
	mu    sync.Mutex
	id    string
	start time.Time
	now   func() time.Time
}

// NewTimer starts a session now.
func NewTimer() *Timer {
	return NewTimerWithClock(time.Now)
}

// NewTimerWithClock starts a session using a custom clock, for tests.
func NewTimerWithClock(now func() time.Time) *Timer {
	return &Timer{
		id:    uuid.NewString(),
		start: now(),
		now:   now,
	}
}

// ID identifies the session in logs.
func (t *Timer) ID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

// StartTime returns when the session started.
func (t *Timer) StartTime() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.start
}

// Elapsed is the time since the session started.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now().Sub(t.start)
}

// Label is Elapsed formatted for the status bar.
func (t *Timer) Label() string {
	return Format(t.Elapsed())
}

// Restart begins a new session, e.g. after the transcript is cleared.
func (t *Timer) Restart() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.id = uuid.NewString()
	t.start = t.now()
}

// Format renders d as whole hours and zero-padded minutes: "0h:05m",
// "12h:30m". Negative durations show as zero.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh:%02dm", h, m)
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg refreshes the timer display.
type TickMsg struct {
	Time time.Time
}

// TickInterval is how often the display refreshes.
const TickInterval = time.Second

// TickCmd schedules the next TickMsg.
func TickCmd() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
