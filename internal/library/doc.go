// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package library manages the user's uploaded PDFs.
//
// The list only changes after the backend confirms: an upload appends the
// document once the server has stored it, and a delete removes it once the
// server has. Deletion is a two-phase flow (request, then confirm) with room
// for a single name at a time; see DeleteState.
//
// # Usage
//
//	lib := library.NewController(client, notices, log)
//	_ = lib.Refresh(ctx)
//	_ = lib.UploadFile(ctx, "~/Documents/cv.pdf")
//	if lib.RequestDelete("old.pdf") {
//	    _ = lib.ConfirmDelete(ctx)
//	}
package library
