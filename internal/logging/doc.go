// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the application's zap logger. Records go to a
// lumberjack-rotated JSON file under the config directory; an optional
// console sink is used by the non-interactive commands.
package logging
