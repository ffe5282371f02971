// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jeranaias/knowme-tui/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memKV is an in-memory storage.KV.
type memKV struct {
	data    map[string][]byte
	failPut error
}

func newMemKV() *memKV { return &memKV{data: map[string][]byte{}} }

func (m *memKV) Get(key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Put(key string, value []byte) error {
	if m.failPut != nil {
		return m.failPut
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memKV) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func (m *memKV) Close() error { return nil }

// =============================================================================
// DERIVE CONTEXT
// =============================================================================

func TestDeriveContext(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    string
	}{
		{"empty", Profile{}, ""},
		{"nil", nil, ""},
		{
			"canonical order regardless of insertion",
			Profile{
				KeyResponseLength: "Brief",
				KeyNickname:       "Sam",
				KeyLocation:       "Lisbon",
				KeyLifeFocus:      "Career",
				KeyMotivation:     "Curiosity",
				KeyTonePreference: "Friendly",
			},
			"Name: Sam, Focus: Career, Motivation: Curiosity, Location: Lisbon, Preferred tone: Friendly, Response style: Brief",
		},
		{"omits blank values", Profile{KeyNickname: "Sam", KeyLifeFocus: "  ", KeyLocation: "Oslo"}, "Name: Sam, Location: Oslo"},
		{"ignores unknown keys", Profile{"favourite_colour": "green", KeyInterests: "chess"}, ""},
		{"trims values", Profile{KeyMotivation: "  growth \n"}, "Motivation: growth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveContext(tt.profile))
		})
	}
}

// =============================================================================
// STORE
// =============================================================================

func TestStore_LoadMissingIsEmpty(t *testing.T) {
	s := NewStore(newMemKV(), nil)
	assert.Empty(t, s.Load())
	assert.Equal(t, "", s.Context())
}

func TestStore_LoadMalformedIsEmpty(t *testing.T) {
	for _, raw := range []string{`{not json`, `[1,2,3]`, `{"nickname": 5}`, `null`} {
		kv := newMemKV()
		kv.data[StorageKey] = []byte(raw)

		s := NewStore(kv, nil)
		assert.Empty(t, s.Load(), "record %q", raw)
	}
}

func TestStore_SaveThenLoad(t *testing.T) {
	kv := newMemKV()
	want := Profile{KeyNickname: "Sam", KeyTonePreference: "Direct", KeyGoals: "run a marathon"}

	require.NoError(t, NewStore(kv, nil).Save(want))

	got := NewStore(kv, nil).Load()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_UpdateMergesAndPersists(t *testing.T) {
	kv := newMemKV()
	s := NewStore(kv, nil)
	require.NoError(t, s.Save(Profile{KeyNickname: "Sam"}))

	require.NoError(t, s.Update(KeyLocation, "Lisbon"))

	want := Profile{KeyNickname: "Sam", KeyLocation: "Lisbon"}
	if diff := cmp.Diff(want, s.Profile()); diff != "" {
		t.Errorf("in-memory mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, NewStore(kv, nil).Load()); diff != "" {
		t.Errorf("persisted mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Name: Sam, Location: Lisbon", s.Context())
}

func TestStore_UpdateBlankRemovesField(t *testing.T) {
	s := NewStore(newMemKV(), nil)
	require.NoError(t, s.Update(KeyNickname, "Sam"))
	require.NoError(t, s.Update(KeyNickname, "  "))

	_, ok := s.Profile()[KeyNickname]
	assert.False(t, ok)
}

func TestStore_FailedWriteKeepsMemory(t *testing.T) {
	kv := newMemKV()
	s := NewStore(kv, nil)
	require.NoError(t, s.Update(KeyNickname, "Sam"))

	kv.failPut = errors.New("disk full")
	err := s.Update(KeyNickname, "Alex")
	require.Error(t, err)
	assert.Equal(t, "Sam", s.Get(KeyNickname))
	assert.Error(t, s.Save(Profile{}))
	assert.Equal(t, "Sam", s.Get(KeyNickname))
}

func TestStore_ProfileIsACopy(t *testing.T) {
	s := NewStore(newMemKV(), nil)
	require.NoError(t, s.Update(KeyNickname, "Sam"))

	p := s.Profile()
	p[KeyNickname] = "mutated"
	assert.Equal(t, "Sam", s.Get(KeyNickname))
}

func TestStore_Clear(t *testing.T) {
	kv := newMemKV()
	s := NewStore(kv, nil)
	require.NoError(t, s.Update(KeyNickname, "Sam"))
	require.NoError(t, s.Clear())

	assert.Empty(t, s.Profile())
	assert.Empty(t, NewStore(kv, nil).Load())
}

func TestStore_SQLiteBackend(t *testing.T) {
	kv, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "knowme.db"))
	require.NoError(t, err)
	defer kv.Close()

	s := NewStore(kv, nil)
	require.NoError(t, s.Update(KeyNickname, "Sam"))
	require.NoError(t, s.Update(KeyLifeFocus, "Health"))

	assert.Equal(t, "Name: Sam, Focus: Health", DeriveContext(NewStore(kv, nil).Load()))
}

func TestStore_WatchReloadsExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	kv := storage.NewFileStore(path)
	s := NewStore(kv, nil)
	require.NoError(t, s.Update(KeyNickname, "Sam"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan Profile, 4)
	require.NoError(t, s.Watch(ctx, func(p Profile) { reloaded <- p }))

	require.NoError(t, os.WriteFile(path, []byte(`{"knowme_personality":{"nickname":"Alex"}}`), 0600))

	select {
	case p := <-reloaded:
		assert.Equal(t, "Alex", p[KeyNickname])
		assert.Equal(t, "Alex", s.Get(KeyNickname))
	case <-time.After(5 * time.Second):
		t.Fatal("profile was not reloaded")
	}
}

func TestStore_WatchUnsupportedIsNoop(t *testing.T) {
	s := NewStore(newMemKV(), nil)
	assert.NoError(t, s.Watch(context.Background(), nil))
}

// =============================================================================
// FIELDS
// =============================================================================

func TestFields_CoverWizardSteps(t *testing.T) {
	for step := 1; step <= 7; step++ {
		assert.NotEmpty(t, FieldsForStep(step), "step %d has no questions", step)
	}
	assert.Empty(t, FieldsForStep(8))

	f, ok := LookupField(KeyTonePreference)
	require.True(t, ok)
	assert.Equal(t, "Preferred tone", f.Label)

	_, ok = LookupField("nope")
	assert.False(t, ok)
}

func TestFields_LabelsMatchContext(t *testing.T) {
	for _, f := range Fields {
		if f.Label == "" {
			continue
		}
		got := DeriveContext(Profile{f.Key: "x"})
		assert.Equal(t, f.Label+": x", got)
	}
}
