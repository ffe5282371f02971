// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package nav is the navigation state machine: which tab is active and,
// inside the personality wizard, which step.
//
// The assistant tab's welcome/chat choice is not stored; AssistantView
// derives it from the transcript length every time.
package nav
