// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation controller.
//
// A query moves through three steps. Begin appends the user's message and
// marks the controller pending; Exchange calls the backend; Complete
// appends the reply (or a fallback reply when the call failed) and clears
// the pending flag. Only one query may be in flight. The TUI runs Exchange
// in a tea.Cmd; the CLI uses the blocking Send.
//
// # Usage
//
//	ctrl := chat.NewController(client, profileStore, notices, log)
//	reply, ok := ctrl.Send(ctx, "Summarize my CV")
package chat
