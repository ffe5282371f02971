// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local key-value persistence used for the
// personality profile.
//
// # Key Types
//
//   - KV: whole-record Get/Put/Delete by key
//   - FileStore: a single JSON object file, atomically replaced on write,
//     with fsnotify-based change watching
//   - SQLiteStore: a kv table in a modernc.org/sqlite database
//
// # Usage
//
//	kv, err := storage.Open(cfg.Profile.Backend, path)
//	if err != nil {
//	    return err
//	}
//	defer kv.Close()
//	data, err := kv.Get("knowme_personality")
//	if errors.Is(err, storage.ErrNotFound) {
//	    // first run
//	}
package storage
