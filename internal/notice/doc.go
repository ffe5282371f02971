// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notice keeps the short-lived messages ("toasts") raised by the
// controllers. Notices expire after five seconds by default and at most
// five are kept, newest first. Rendering lives in the ui package.
package notice
