// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"strings"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// Kind categorizes client errors so callers can pick the right wording.
type Kind int

const (
	KindUnknown Kind = iota

	// KindValidation is a request rejected locally, before any network I/O.
	KindValidation

	// KindTransport means no response arrived: refused connection, reset,
	// timeout or cancellation.
	KindTransport

	// KindServer is a response with a non-success status, or a success
	// body that could not be decoded.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Fallback details, matching what the web client showed.
const (
	DetailUnknown       = "Unknown error"
	DetailRequestFailed = "API request failed"
	DetailConnection    = "Connection error. Please try again."
	DetailBadResponse   = "invalid response from server"
)

// Error is returned by every Client operation.
type Error struct {
	Kind   Kind
	Detail string // user-presentable message
	Status int    // HTTP status for KindServer, otherwise 0
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Detail + ": " + e.Cause.Error()
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func validationError(detail string) *Error {
	return &Error{Kind: KindValidation, Detail: detail}
}

func transportError(cause error) *Error {
	return &Error{Kind: KindTransport, Detail: DetailConnection, Cause: cause}
}

// KindOf returns the Kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsTransport(err error) bool  { return KindOf(err) == KindTransport }
func IsServer(err error) bool     { return KindOf(err) == KindServer }

// DetailOf extracts the presentable message from err.
func DetailOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return err.Error()
}

// serverError turns an error body into an *Error. FastAPI answers with
// {"detail": "..."} for HTTPException and {"detail": [{"msg": ...}]} for
// request validation failures.
func serverError(status int, body []byte) *Error {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return &Error{Kind: KindServer, Status: status, Detail: DetailUnknown}
	}
	return &Error{Kind: KindServer, Status: status, Detail: detailText(payload.Detail)}
}

func detailText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return DetailRequestFailed
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return DetailRequestFailed
		}
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	return DetailRequestFailed
}
