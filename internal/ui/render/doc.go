// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns application state into terminal text: assistant
// replies through glamour and notices as bordered toasts.
package render
