// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the value types shared by the controllers, the
// TUI and the CLI.
//
// # Key Types
//
//   - Message: one transcript entry with role, content, timestamp and sources
//   - Document: a stored PDF keyed by its NFC-normalized name
//   - Role: message author (user, assistant)
//
// # Usage
//
//	msg := model.NewUserMessage("What did I write about Rust?")
//	reply := model.NewAssistantMessage(answer, []string{"notes.pdf"})
//	fmt.Println(reply.SourceLine())
package model
