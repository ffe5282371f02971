// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/knowme-tui/internal/api"
	"github.com/jeranaias/knowme-tui/internal/app"
	"github.com/jeranaias/knowme-tui/internal/chat"
)

// =============================================================================
// COMPLETION MESSAGES
// =============================================================================

// welcomeMsg delivers the FetchWelcome result.
type welcomeMsg struct {
	text string
	err  error
}

// documentsMsg delivers a ListDocuments result.
type documentsMsg struct {
	infos []api.DocumentInfo
	err   error
}

// chatReplyMsg delivers the answer to a chat request.
type chatReplyMsg struct {
	req chat.Request
	res *api.ChatResult
	err error
}

// uploadDoneMsg signals the end of an upload. The controller has already
// recorded the outcome.
type uploadDoneMsg struct {
	name string
	err  error
}

// deleteDoneMsg delivers a DeleteDocument result.
type deleteDoneMsg struct {
	name string
	res  *api.DeleteResult
	err  error
}

// ProfileReloadedMsg is sent when the profile changed on disk.
type ProfileReloadedMsg struct{}

// noticeTickMsg drives notice expiry.
type noticeTickMsg struct {
	Time time.Time
}

// NoticeTickInterval is how often expired notices are swept.
const NoticeTickInterval = 100 * time.Millisecond

// =============================================================================
// COMMANDS
// =============================================================================

func noticeTickCmd() tea.Cmd {
	return tea.Tick(NoticeTickInterval, func(t time.Time) tea.Msg {
		return noticeTickMsg{Time: t}
	})
}

func fetchWelcomeCmd(ctx context.Context, b app.Backend) tea.Cmd {
	return func() tea.Msg {
		text, err := b.FetchWelcome(ctx)
		return welcomeMsg{text: text, err: err}
	}
}

func listDocumentsCmd(ctx context.Context, b app.Backend) tea.Cmd {
	return func() tea.Msg {
		infos, err := b.ListDocuments(ctx)
		return documentsMsg{infos: infos, err: err}
	}
}

func exchangeCmd(ctx context.Context, c *chat.Controller, req chat.Request) tea.Cmd {
	return func() tea.Msg {
		res, err := c.Exchange(ctx, req)
		return chatReplyMsg{req: req, res: res, err: err}
	}
}

func uploadCmd(ctx context.Context, s *app.Store, path string) tea.Cmd {
	return func() tea.Msg {
		err := s.Library.UploadFile(ctx, path)
		return uploadDoneMsg{name: path, err: err}
	}
}

func deleteCmd(ctx context.Context, b app.Backend, name string) tea.Cmd {
	return func() tea.Msg {
		res, err := b.DeleteDocument(ctx, name)
		return deleteDoneMsg{name: name, res: res, err: err}
	}
}
