// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/knowme-tui/internal/app"
	"github.com/jeranaias/knowme-tui/internal/profile"
)

// Run starts the full-screen program and blocks until the user quits or
// ctx is cancelled. When watch is set, edits to the profile file made
// elsewhere are picked up live.
func Run(ctx context.Context, store *app.Store, opts Options, watch bool, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(
		New(ctx, store, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if watch {
		go func() {
			err := store.WatchProfile(ctx, func(profile.Profile) {
				p.Send(ProfileReloadedMsg{})
			})
			if err != nil && ctx.Err() == nil {
				log.Warn("profile watch stopped", zap.Error(err))
			}
		}()
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
