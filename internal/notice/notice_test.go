// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notice

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestCenter_PostNewestFirst(t *testing.T) {
	c := NewCenter()
	c.Info("first")
	c.Error("second")

	active := c.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "second", active[0].Text)
	assert.Equal(t, KindError, active[0].Kind)
	assert.Equal(t, "first", active[1].Text)

	latest, ok := c.Latest()
	require.True(t, ok)
	assert.Equal(t, "second", latest.Text)
}

func TestCenter_Capacity(t *testing.T) {
	c := NewCenter(WithCapacity(3))
	for i := 0; i < 5; i++ {
		c.Info(fmt.Sprintf("n%d", i))
	}

	active := c.Active()
	require.Len(t, active, 3)
	assert.Equal(t, "n4", active[0].Text)
	assert.Equal(t, "n2", active[2].Text)
}

func TestCenter_ExpiresAfterTTL(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCenter(WithClock(clk.now))

	c.Success("saved")
	clk.advance(2 * time.Second)
	c.Warning("later")

	clk.advance(3 * time.Second)
	assert.True(t, c.Expire())
	active := c.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "later", active[0].Text)
	assert.Equal(t, 2*time.Second, active[0].Remaining(clk.now()))

	clk.advance(2 * time.Second)
	assert.False(t, c.Expire())
	assert.Empty(t, c.Active())
}

func TestCenter_Dismiss(t *testing.T) {
	c := NewCenter()
	a := c.Info("a")
	c.Info("b")

	c.Dismiss(a)
	c.Dismiss(999)

	active := c.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "b", active[0].Text)
}

func TestCenter_ActiveIsACopy(t *testing.T) {
	c := NewCenter()
	c.Info("a")
	got := c.Active()
	got[0].Text = "changed"

	assert.Equal(t, "a", c.Active()[0].Text)
}

func TestCenter_Clear(t *testing.T) {
	c := NewCenter()
	c.Info("a")
	c.Clear()
	_, ok := c.Latest()
	assert.False(t, ok)
}

func TestCenter_SatisfiesPoster(t *testing.T) {
	var p Poster = NewCenter()
	assert.Equal(t, 1, p.Post(KindInfo, "x"))
}
