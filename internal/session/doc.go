// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the elapsed time of a TUI session.
//
// # Usage
//
//	timer := session.NewTimer()
//	label := timer.Label() // "0h:42m"
//
// In a Bubble Tea model, return session.TickCmd() from Init and again on
// every session.TickMsg to keep the label current.
package session
