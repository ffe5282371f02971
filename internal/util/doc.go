// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the knowme packages.
//
// # Key Functions
//
//   - AtomicWriteFile: crash-safe file replacement with fsync
//   - TruncateWidth, PadRight: column-aware text fitting (go-runewidth)
//   - FormatFileSize: human readable byte counts for the document list
//
// # Usage
//
//	label := util.TruncateWidth(doc.Name, 40)
//	size := util.FormatFileSize(doc.Size) // "2.34 MB"
//	err := util.AtomicWriteFile(path, data, 0600)
package util
