// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClientWithConfig(ClientConfig{BaseURL: srv.URL + "/"}), srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// =============================================================================
// WELCOME
// =============================================================================

func TestFetchWelcome(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/", r.URL.Path)
		writeJSON(w, 200, "Welcome to KnowMe")
	})

	got, err := c.FetchWelcome(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Welcome to KnowMe", got)
}

func TestFetchWelcome_PlainText(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "  hello there \n")
	})

	got, err := c.FetchWelcome(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello there", got)
}

// =============================================================================
// CHAT
// =============================================================================

func TestSendChat_EncodesQueryAndDecodesSources(t *testing.T) {
	const text = "What's in my notes?\n\n[User Context: Name: Sam & co, Focus: 100%]"

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/", r.URL.Path)
		assert.Equal(t, text, r.URL.Query().Get("user_msg"))
		assert.NotContains(t, r.URL.RawQuery, "&co", "ampersand must be escaped")
		writeJSON(w, 200, map[string]any{
			"response": "Here is what I found.",
			"source":   []string{"notes.pdf (Page 2)", "plan.pdf (Page 1)"},
		})
	})

	res, err := c.SendChat(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, "Here is what I found.", res.Response)
	assert.Equal(t, Sources{"notes.pdf (Page 2)", "plan.pdf (Page 1)"}, res.Sources)
}

func TestSources_Shapes(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Sources
	}{
		{"single string", `{"source":"a.pdf"}`, Sources{"a.pdf"}},
		{"empty string", `{"source":""}`, nil},
		{"null", `{"source":null}`, nil},
		{"absent", `{}`, nil},
		{"list", `{"source":["a.pdf","b.pdf"]}`, Sources{"a.pdf", "b.pdf"}},
		{"list with blanks", `{"source":["a.pdf"," ",null]}`, Sources{"a.pdf"}},
		{"empty list", `{"source":[]}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res ChatResult
			require.NoError(t, json.Unmarshal([]byte(tt.json), &res))
			assert.Equal(t, tt.want, res.Sources)
		})
	}

	var res ChatResult
	assert.Error(t, json.Unmarshal([]byte(`{"source":{"x":1}}`), &res))
}

func TestSendChat_SendsUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sam", r.Header.Get("X-User-ID"))
		writeJSON(w, 200, map[string]any{"response": "ok", "source": ""})
	}))
	defer srv.Close()

	c := NewClientWithConfig(ClientConfig{BaseURL: srv.URL, UserID: "sam"})
	_, err := c.SendChat(context.Background(), "hi")
	require.NoError(t, err)
}

// =============================================================================
// ERROR NORMALIZATION
// =============================================================================

func TestServerErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"detail string", 400, `{"detail":"User message cannot be empty"}`, "User message cannot be empty"},
		{"unparseable body", 500, `<html>Internal Server Error</html>`, "Unknown error"},
		{"empty body", 502, ``, "Unknown error"},
		{"no detail field", 500, `{"error":"boom"}`, "API request failed"},
		{"validation list", 422, `{"detail":[{"loc":["query","user_msg"],"msg":"field required"},{"msg":"too short"}]}`, "field required; too short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := c.SendChat(context.Background(), "hi")
			require.Error(t, err)
			assert.True(t, IsServer(err))
			assert.Equal(t, tt.wantDetail, DetailOf(err))

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestTransportError_NoServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClientWithConfig(ClientConfig{BaseURL: url})
	_, err := c.SendChat(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.False(t, IsServer(err))
	assert.Equal(t, DetailConnection, DetailOf(err))
}

func TestTransportError_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClientWithConfig(ClientConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.ListDocuments(context.Background())
	assert.True(t, IsTransport(err))
}

func TestTransportError_CancelledContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"pdfs": []string{}})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListDocuments(ctx)
	assert.True(t, IsTransport(err))
}

func TestBadSuccessBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "not json")
	})

	_, err := c.ListDocuments(context.Background())
	assert.True(t, IsServer(err))
	assert.Equal(t, DetailBadResponse, DetailOf(err))
}

func TestDetailOf_PlainError(t *testing.T) {
	assert.Equal(t, "", DetailOf(nil))
	assert.Equal(t, "boom", DetailOf(errors.New("boom")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
}

// =============================================================================
// DOCUMENTS
// =============================================================================

func TestListDocuments_MixedEntries(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/pdfs/", r.URL.Path)
		io.WriteString(w, `{"pdfs":["old.pdf",{"name":"new.pdf","size":2048},{"name":"nosize.pdf"}]}`)
	})

	docs, err := c.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []DocumentInfo{
		{Name: "old.pdf"},
		{Name: "new.pdf", Size: 2048, SizeKnown: true},
		{Name: "nosize.pdf"},
	}, docs)
}

func TestUploadDocument_Multipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload_pdf/", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)

		assert.Equal(t, "My \"Notes\".pdf", hdr.Filename)
		assert.Equal(t, "%PDF-1.4 fake", string(data))
		writeJSON(w, 200, map[string]any{"filename": hdr.Filename, "chunks_stored": 12, "message": "ok"})
	})

	res, err := c.UploadDocument(context.Background(), "My \"Notes\".pdf", strings.NewReader("%PDF-1.4 fake"))
	require.NoError(t, err)
	assert.Equal(t, "My \"Notes\".pdf", res.Filename)
	assert.Equal(t, 12, res.ChunksStored)
}

func TestUploadDocument_RejectsNonPDFWithoutNetwork(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := c.UploadDocument(context.Background(), "notes.txt", strings.NewReader("x"))
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "Please select a PDF file", DetailOf(err))

	_, err = c.UploadFile(context.Background(), "/does/not/matter.docx")
	assert.True(t, IsValidation(err))

	assert.Equal(t, int32(0), calls.Load())
}

func TestUploadDocument_SizeLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := NewClientWithConfig(ClientConfig{BaseURL: srv.URL, MaxUploadBytes: 4})
	_, err := c.UploadDocument(context.Background(), "big.pdf", strings.NewReader("0123456789"))
	assert.True(t, IsValidation(err))
	assert.Equal(t, int32(0), calls.Load())
}

func TestUploadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0600))

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		writeJSON(w, 200, map[string]any{"filename": hdr.Filename, "chunks_stored": 1})
	})

	res, err := c.UploadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "plan.pdf", res.Filename)

	_, err = c.UploadFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.True(t, IsValidation(err))
}

func TestDeleteDocument_EscapesName(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/pdfs/Q1%20report%2Fdraft%3F.pdf", r.URL.EscapedPath())
		writeJSON(w, 200, map[string]any{"message": "deleted"})
	})

	res, err := c.DeleteDocument(context.Background(), "Q1 report/draft?.pdf")
	require.NoError(t, err)
	assert.Equal(t, "deleted", res.Message)
}

func TestDeleteDocument_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 404, map[string]any{"detail": "No PDF or chunks found for: gone.pdf"})
	})

	_, err := c.DeleteDocument(context.Background(), "gone.pdf")
	assert.True(t, IsServer(err))
	assert.Equal(t, "No PDF or chunks found for: gone.pdf", DetailOf(err))
}

func TestRateLimit(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, "hi")
	})
	limited := NewClientWithConfig(ClientConfig{BaseURL: c.BaseURL(), RequestsPerSecond: 20})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := limited.FetchWelcome(context.Background())
		require.NoError(t, err)
	}
	// Burst of one: the second and third requests each wait ~50ms.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}
