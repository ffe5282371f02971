// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli is the knowme command tree.
//
// Running knowme with no arguments opens the full-screen interface. The
// subcommands cover the same operations for scripts and plain terminals:
//
//	knowme ask "What do you know about me?"
//	knowme chat
//	knowme docs list | upload <file.pdf> | delete <name>
//	knowme profile show | set key=value | clear | fields
//	knowme status
//
// Every command accepts --json and exits with the codes in errors.go.
package cli
