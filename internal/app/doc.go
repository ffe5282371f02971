// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the composition root. A Store owns the chat, library,
// profile and navigation controllers plus the notice center and session
// timer, and exposes state changes as typed actions.
//
// # Usage
//
//	store, err := app.Open(cfg, log)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	_ = store.Bootstrap(ctx)
//	_ = store.Dispatch(ctx, app.SendChat{Text: "Hello"})
package app
