// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/knowme-tui/internal/api"
	"github.com/jeranaias/knowme-tui/internal/chat"
	"github.com/jeranaias/knowme-tui/internal/config"
	"github.com/jeranaias/knowme-tui/internal/library"
	"github.com/jeranaias/knowme-tui/internal/nav"
	"github.com/jeranaias/knowme-tui/internal/notice"
	"github.com/jeranaias/knowme-tui/internal/profile"
	"github.com/jeranaias/knowme-tui/internal/session"
	"github.com/jeranaias/knowme-tui/internal/storage"
)

// Backend is everything the application needs from the API client.
type Backend interface {
	chat.Sender
	library.Backend
	FetchWelcome(ctx context.Context) (string, error)
}

// Deps are the collaborators a Store is built from.
type Deps struct {
	Backend     Backend
	KV          storage.KV
	Logger      *zap.Logger
	WizardSteps int
	Notices     *notice.Center // optional
}

// Store owns every controller for one session. The TUI and CLI read state
// through its fields and change it through its action methods.
type Store struct {
	Backend Backend
	Chat    *chat.Controller
	Library *library.Controller
	Profile *profile.Store
	Nav     *nav.Machine
	Notices *notice.Center
	Timer   *session.Timer

	kv  storage.KV
	log *zap.Logger

	mu      sync.RWMutex
	welcome string
}

// NewStore wires the controllers and loads the profile.
func NewStore(d Deps) *Store {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	notices := d.Notices
	if notices == nil {
		notices = notice.NewCenter()
	}

	prof := profile.NewStore(d.KV, log)
	prof.Load()

	s := &Store{
		Backend: d.Backend,
		Profile: prof,
		Notices: notices,
		Nav:     nav.NewMachine(d.WizardSteps),
		Timer:   session.NewTimer(),
		kv:      d.KV,
		log:     log,
	}
	s.Chat = chat.NewController(d.Backend, prof, notices, log)
	s.Library = library.NewController(d.Backend, notices, log)

	log.Info("session started", zap.String("session", s.Timer.ID()))
	return s
}

// Open builds a Store from configuration: the API client and the profile
// storage backend it names.
func Open(cfg *config.Config, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	client := api.NewClientWithConfig(api.ClientConfig{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		MaxUploadBytes:    int64(cfg.API.MaxUploadMB) << 20,
		UserID:            cfg.API.UserID,
		Logger:            log,
	})

	path, err := cfg.ProfilePath()
	if err != nil {
		return nil, err
	}
	kv, err := storage.Open(cfg.Profile.Backend, path)
	if err != nil {
		return nil, fmt.Errorf("open profile storage: %w", err)
	}

	return NewStore(Deps{
		Backend:     client,
		KV:          kv,
		Logger:      log,
		WizardSteps: cfg.UI.WizardSteps,
	}), nil
}

// Close releases the profile storage.
func (s *Store) Close() error {
	if s.kv == nil {
		return nil
	}
	return s.kv.Close()
}

// Bootstrap fetches the welcome text and the document list concurrently.
// The welcome text is advisory: failures are logged and never returned.
func (s *Store) Bootstrap(ctx context.Context) error {
	var g errgroup.Group

	g.Go(func() error {
		s.LoadWelcome(ctx)
		return nil
	})
	g.Go(func() error {
		return s.Library.Refresh(ctx)
	})

	return g.Wait()
}

// LoadWelcome fetches the greeting and keeps it for the welcome view.
func (s *Store) LoadWelcome(ctx context.Context) {
	text, err := s.Backend.FetchWelcome(ctx)
	s.SetWelcome(text, err)
}

// SetWelcome records a FetchWelcome result.
func (s *Store) SetWelcome(text string, err error) {
	if err != nil {
		s.log.Info("welcome message unavailable", zap.Error(err))
		return
	}
	s.log.Debug("welcome message", zap.String("text", text))

	s.mu.Lock()
	s.welcome = text
	s.mu.Unlock()
}

// Welcome is the greeting from the backend, empty until it arrives.
func (s *Store) Welcome() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.welcome
}

// WatchProfile reloads the profile when its file is edited elsewhere.
func (s *Store) WatchProfile(ctx context.Context, onChange func(profile.Profile)) error {
	return s.Profile.Watch(ctx, onChange)
}

// AssistantView is the current sub-view of the assistant tab.
func (s *Store) AssistantView() nav.View {
	return nav.AssistantView(s.Chat.Len())
}

// Title is the header text for the active tab.
func (s *Store) Title() string {
	return nav.Title(s.Nav.Tab(), s.Chat.Len())
}
