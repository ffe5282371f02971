// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the KnowMe retrieval backend.
//
// # Key Types
//
//   - Client: FetchWelcome, SendChat, ListDocuments, UploadDocument, DeleteDocument
//   - Error: normalized failure with a Kind (validation, transport, server)
//   - ChatResult, UploadResult, DeleteResult, DocumentInfo: decoded responses
//
// # Endpoints
//
//	POST   /                      welcome text
//	POST   /chat/?user_msg=...    {response, source}
//	POST   /upload_pdf/           multipart "file" -> {filename, chunks_stored, message}
//	GET    /pdfs/                 {pdfs: [name | {name, size}]}
//	DELETE /pdfs/{name}           {message}
//
// Error responses carry {"detail": ...}; an unreadable error body becomes
// "Unknown error".
//
// # Usage
//
//	client := api.NewClientWithConfig(api.ClientConfig{
//	    BaseURL: cfg.API.BaseURL,
//	    Timeout: 60 * time.Second,
//	})
//	docs, err := client.ListDocuments(ctx)
package api
