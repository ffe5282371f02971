// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/knowme-tui/internal/storage"
)

// StorageKey is the record the profile is persisted under.
const StorageKey = "knowme_personality"

// Profile maps field keys to free-text answers.
type Profile map[string]string

// Clone returns an independent copy.
func (p Profile) Clone() Profile {
	if p == nil {
		return Profile{}
	}
	return maps.Clone(p)
}

// Empty reports whether no field carries a non-blank value.
func (p Profile) Empty() bool {
	for _, v := range p {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// contextOrder fixes the sequence of the injected context.
var contextOrder = []struct{ key, label string }{
	{KeyNickname, "Name"},
	{KeyLifeFocus, "Focus"},
	{KeyMotivation, "Motivation"},
	{KeyLocation, "Location"},
	{KeyTonePreference, "Preferred tone"},
	{KeyResponseLength, "Response style"},
}

// DeriveContext renders the profile as "Name: Sam, Focus: Career". Blank
// values and keys outside the canonical six are left out; an empty result
// means no context is injected.
func DeriveContext(p Profile) string {
	parts := make([]string, 0, len(contextOrder))
	for _, f := range contextOrder {
		v := strings.TrimSpace(p[f.key])
		if v == "" {
			continue
		}
		parts = append(parts, f.label+": "+v)
	}
	return strings.Join(parts, ", ")
}

// =============================================================================
// STORE
// =============================================================================

// Store keeps the in-memory profile and its persisted copy in step. Every
// write persists the whole record.
type Store struct {
	kv  storage.KV
	log *zap.Logger

	mu      sync.RWMutex
	profile Profile
}

// NewStore wraps kv. Call Load to read the persisted profile.
func NewStore(kv storage.KV, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, log: log.Named("profile"), profile: Profile{}}
}

// Load reads the persisted profile and makes it current. A missing or
// malformed record yields an empty profile; Load never fails.
func (s *Store) Load() Profile {
	p := s.read()

	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()

	return p.Clone()
}

func (s *Store) read() Profile {
	data, err := s.kv.Get(StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return Profile{}
	}
	if err != nil {
		s.log.Warn("profile unreadable, starting empty", zap.Error(err))
		return Profile{}
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		s.log.Warn("profile malformed, starting empty", zap.Error(err))
		return Profile{}
	}
	if p == nil {
		return Profile{}
	}
	return p
}

// Save replaces the persisted profile with p and makes it current.
func (s *Store) Save(p Profile) error {
	p = p.Clone()
	if err := s.persist(p); err != nil {
		return err
	}

	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
	return nil
}

// SaveCurrent persists the in-memory profile as is.
func (s *Store) SaveCurrent() error {
	return s.Save(s.Profile())
}

// Update sets one field and persists immediately. A blank value removes
// the field.
func (s *Store) Update(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.profile.Clone()
	if strings.TrimSpace(value) == "" {
		delete(next, field)
	} else {
		next[field] = value
	}

	if err := s.persist(next); err != nil {
		return err
	}
	s.profile = next
	return nil
}

// Clear removes every field and the persisted record.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(StorageKey); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	s.profile = Profile{}
	return nil
}

// Profile returns a copy of the current profile.
func (s *Store) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Clone()
}

// Get returns one field of the current profile.
func (s *Store) Get(field string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile[field]
}

// Context derives the context string from the current profile.
func (s *Store) Context() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return DeriveContext(s.profile)
}

func (s *Store) persist(p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.kv.Put(StorageKey, data); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	s.log.Debug("profile saved", zap.Int("fields", len(p)))
	return nil
}

// Watch reloads the profile whenever the backing store reports an
// external change, then calls onChange with the new profile. Backends that
// cannot watch make this a no-op.
func (s *Store) Watch(ctx context.Context, onChange func(Profile)) error {
	w, ok := s.kv.(storage.Watcher)
	if !ok {
		return nil
	}
	return w.Watch(ctx, func() {
		p := s.Load()
		s.log.Info("profile reloaded from disk", zap.Int("fields", len(p)))
		if onChange != nil {
			onChange(p)
		}
	})
}
