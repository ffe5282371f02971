// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and saves the knowme configuration.
//
// # Key Types
//
//   - Config: all settings, grouped into api, profile, ui and log tables
//   - ValidateErrors: every invalid setting found by Validate
//
// # Configuration Precedence
//
//   - Environment variables (KNOWME_API_URL, KNOWME_USER_ID, KNOWME_TIMEOUT,
//     KNOWME_PROFILE_BACKEND, KNOWME_PROFILE_PATH, KNOWME_LOG_LEVEL)
//   - ~/.knowme/config.toml (or $KNOWME_HOME/config.toml)
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client := api.NewClientWithConfig(api.ClientConfig{BaseURL: cfg.API.BaseURL})
package config
