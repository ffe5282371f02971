// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package profile holds the user's personality profile and turns it into
// the context string appended to chat queries.
//
// # Key Types
//
//   - Profile: field key to answer
//   - Store: load, save, per-field update and optional reload on external edits
//   - Field: wizard question metadata
//
// # Usage
//
//	store := profile.NewStore(kv, log)
//	store.Load()
//	_ = store.Update(profile.KeyNickname, "Sam")
//	ctx := store.Context() // "Name: Sam"
package profile
