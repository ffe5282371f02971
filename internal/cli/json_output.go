// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"io"
	"time"
)

// JSONResponse is the envelope every command prints in --json mode.
type JSONResponse struct {
	Success   bool    `json:"success"`
	Data      any     `json:"data"`
	Error     *string `json:"error"`
	Timestamp string  `json:"timestamp"`
	Command   string  `json:"command,omitempty"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data any) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a failed response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	msg := errorText(err)
	return &JSONResponse{
		Success:   false,
		Error:     &msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes the response with indentation.
func (r *JSONResponse) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// =============================================================================
// RESPONSE DATA
// =============================================================================

// AskData is the --json payload of ask.
type AskData struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
}

// DocumentData is one entry of docs list.
type DocumentData struct {
	Name       string `json:"name"`
	Size       *int64 `json:"size"`
	UploadedAt string `json:"uploaded_at,omitempty"`
}

// StatusData is the --json payload of status.
type StatusData struct {
	ConfigPath     string `json:"config_path"`
	BaseURL        string `json:"base_url"`
	Reachable      bool   `json:"reachable"`
	Error          string `json:"error,omitempty"`
	Documents      int    `json:"documents"`
	ProfileBackend string `json:"profile_backend"`
	ProfilePath    string `json:"profile_path"`
	ProfileFields  int    `json:"profile_fields"`
}
