// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/knowme-tui/internal/util"
)

// Document is a PDF the backend has confirmed it stores. Name is the key;
// a library never holds two documents whose keys match.
type Document struct {
	Name string `json:"name"`

	// Size is in bytes and only meaningful when SizeKnown is set. Listings
	// from older backends carry names only.
	Size      int64 `json:"size,omitempty"`
	SizeKnown bool  `json:"-"`

	// UploadedAt is zero for documents that were already on the server
	// when the session started.
	UploadedAt time.Time `json:"uploaded_at,omitempty"`
}

// Key is the normalized name used for identity comparisons, so that the
// composed and decomposed spellings of "résumé.pdf" are one document.
func (d Document) Key() string {
	return DocumentKey(d.Name)
}

// SizeLabel renders the size, or "Unknown size" when the backend did not
// report one.
func (d Document) SizeLabel() string {
	if !d.SizeKnown {
		return "Unknown size"
	}
	return util.FormatFileSize(d.Size)
}

// DocumentKey normalizes a document name to NFC.
func DocumentKey(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// IsPDFName reports whether name carries a .pdf extension, ignoring case.
func IsPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(name)), ".pdf")
}
