// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/knowme-tui/internal/app"
	"github.com/jeranaias/knowme-tui/internal/chat"
	"github.com/jeranaias/knowme-tui/internal/config"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// backend is an in-memory stand-in for the retrieval server.
type backend struct {
	mu      sync.Mutex
	docs    []string
	queries []string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/":
		json.NewEncoder(w).Encode("Welcome to KnowMe")
	case r.Method == http.MethodPost && r.URL.Path == "/chat/":
		q := r.URL.Query().Get("user_msg")
		b.queries = append(b.queries, q)
		json.NewEncoder(w).Encode(map[string]any{"response": "**Answer** to " + q, "source": b.docs})
	case r.Method == http.MethodGet && r.URL.Path == "/pdfs/":
		json.NewEncoder(w).Encode(map[string]any{"pdfs": b.docs})
	case r.Method == http.MethodPost && r.URL.Path == "/upload_pdf/":
		file, hdr, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"detail":"no file"}`)
			return
		}
		file.Close()
		b.docs = append(b.docs, hdr.Filename)
		json.NewEncoder(w).Encode(map[string]any{"filename": hdr.Filename, "chunks_stored": 3, "message": "ok"})
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/pdfs/"):
		name := strings.TrimPrefix(r.URL.Path, "/pdfs/")
		for i, d := range b.docs {
			if d == name {
				b.docs = append(b.docs[:i], b.docs[i+1:]...)
				json.NewEncoder(w).Encode(map[string]any{"message": "Deleted " + name})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail":"No PDF or chunks found for: `+name+`"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// env isolates config and profile storage in a temp directory and starts
// a backend.
func env(t *testing.T, b *backend) string {
	t.Helper()
	t.Setenv("KNOWME_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	ts := httptest.NewServer(b)
	t.Cleanup(ts.Close)
	return ts.URL
}

type result struct {
	code int
	out  string
	err  string
}

// run executes one command line against a fresh App.
func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	a := NewApp()
	a.In = strings.NewReader(stdin)
	a.Out = &out
	a.Err = &errOut
	a.forceInteractive = true

	code := a.Execute(context.Background(), args)
	a.Close()
	return result{code: code, out: out.String(), err: errOut.String()}
}

func decodeData(t *testing.T, raw string, v any) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &resp), raw)
	require.True(t, resp.Success, raw)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func writePDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0644))
	return path
}

// =============================================================================
// EXIT CODES
// =============================================================================

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", &ValidationError{Field: "x", Reason: "bad"}, ExitUsageError},
		{"tty", &TTYRequiredError{Operation: "chat"}, ExitUsageError},
		{"config", &ConfigError{Path: "c.toml", Err: errors.New("boom")}, ExitConfigError},
		{"invalid config", config.ValidateErrors{{Field: "api.base_url", Message: "empty"}}, ExitConfigError},
		{"not found", fmt.Errorf("wrap: %w", &NotFoundError{Resource: "document", ID: "a.pdf"}), ExitNotFoundError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestConfigErrorExitCode(t *testing.T) {
	t.Setenv("KNOWME_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api\nbase_url = "), 0600))

	r := run(t, "", "--config", path, "status")
	assert.Equal(t, ExitConfigError, r.code)
	assert.Contains(t, r.err, "[ERROR]")
}

func TestTUIRequiresTerminal(t *testing.T) {
	url := env(t, &backend{})
	r := run(t, "", "--api-url", url)
	assert.Equal(t, ExitUsageError, r.code)
	assert.Contains(t, r.err, "stdin is not a terminal")
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk(t *testing.T) {
	b := &backend{docs: []string{"cv.pdf"}}
	url := env(t, b)

	r := run(t, "", "--api-url", url, "ask", "What", "is", "in", "my", "CV?")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "**Answer** to What is in my CV?")
	assert.Contains(t, r.out, "Sources: cv.pdf")
	assert.Equal(t, []string{"What is in my CV?"}, b.queries)
}

func TestAsk_FromStdin(t *testing.T) {
	b := &backend{}
	url := env(t, b)

	r := run(t, "Summarize my goals\n", "--api-url", url, "ask")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Equal(t, []string{"Summarize my goals"}, b.queries)
}

func TestAsk_JSONIncludesProfileContext(t *testing.T) {
	b := &backend{docs: []string{"cv.pdf"}}
	url := env(t, b)

	require.Equal(t, ExitSuccess, run(t, "", "profile", "set", "nickname=Sam").code)

	r := run(t, "", "--api-url", url, "--json", "ask", "Who am I?")
	require.Equal(t, ExitSuccess, r.code, r.err)

	var data AskData
	decodeData(t, r.out, &data)
	assert.Equal(t, "Who am I?", data.Question)
	assert.Equal(t, []string{"cv.pdf"}, data.Sources)
	assert.Equal(t, []string{"Who am I?\n\n[User Context: Name: Sam]"}, b.queries)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	url := env(t, &backend{})
	r := run(t, "   ", "--api-url", url, "ask")
	assert.Equal(t, ExitUsageError, r.code)
}

func TestAsk_Unreachable(t *testing.T) {
	t.Setenv("KNOWME_HOME", t.TempDir())
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	r := run(t, "", "--api-url", url, "ask", "hello")
	assert.Equal(t, ExitNetworkError, r.code)
	assert.Contains(t, r.out, chat.FallbackConnection)
}

// =============================================================================
// DOCS
// =============================================================================

func TestDocs_UploadListDelete(t *testing.T) {
	b := &backend{}
	url := env(t, b)
	path := writePDF(t, "plan.pdf")

	r := run(t, "", "--api-url", url, "docs", "upload", path)
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "Successfully uploaded plan.pdf")

	r = run(t, "", "--api-url", url, "docs", "list")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "plan.pdf")
	assert.Contains(t, r.out, "1 documents")

	r = run(t, "", "--api-url", url, "--json", "docs", "list")
	var docs []DocumentData
	decodeData(t, r.out, &docs)
	require.Len(t, docs, 1)
	assert.Equal(t, "plan.pdf", docs[0].Name)
	assert.Nil(t, docs[0].Size)

	r = run(t, "n\n", "--api-url", url, "docs", "delete", "plan.pdf")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "Cancelled.")
	assert.Equal(t, []string{"plan.pdf"}, b.docs)

	r = run(t, "y\n", "--api-url", url, "docs", "delete", "plan.pdf")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "Deleted plan.pdf")
	assert.Empty(t, b.docs)
}

func TestDocs_DeleteUnknown(t *testing.T) {
	url := env(t, &backend{docs: []string{"cv.pdf"}})
	r := run(t, "", "--api-url", url, "docs", "delete", "--yes", "missing.pdf")
	assert.Equal(t, ExitNotFoundError, r.code)
}

func TestDocs_DeleteJSONNeedsYes(t *testing.T) {
	url := env(t, &backend{docs: []string{"cv.pdf"}})
	r := run(t, "", "--api-url", url, "--json", "docs", "delete", "cv.pdf")
	assert.Equal(t, ExitUsageError, r.code)
	assert.Contains(t, r.err, "--json requires --yes")
}

func TestDocs_UploadRejectsNonPDF(t *testing.T) {
	b := &backend{}
	url := env(t, b)
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0644))

	r := run(t, "", "--api-url", url, "docs", "upload", path)
	assert.Equal(t, ExitUsageError, r.code)
	assert.Empty(t, b.docs)
}

// =============================================================================
// PROFILE
// =============================================================================

func TestProfile_SetShowClear(t *testing.T) {
	env(t, &backend{})

	r := run(t, "", "profile", "set", "nickname=Sam", "life_focus=Career")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "Updated 2 field(s).")

	r = run(t, "", "profile", "show")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "Sam")
	assert.Contains(t, r.out, "Name: Sam, Focus: Career")

	r = run(t, "", "profile", "show", "--format", "yaml")
	require.Equal(t, ExitSuccess, r.code, r.err)
	var data ProfileData
	require.NoError(t, yaml.Unmarshal([]byte(r.out), &data))
	assert.Equal(t, map[string]string{"nickname": "Sam", "life_focus": "Career"}, data.Fields)

	r = run(t, "", "profile", "set", "nickname=")
	require.Equal(t, ExitSuccess, r.code, r.err)
	r = run(t, "", "--json", "profile", "show")
	decodeData(t, r.out, &data)
	assert.Equal(t, "Focus: Career", data.Context)

	r = run(t, "", "profile", "clear", "--yes")
	require.Equal(t, ExitSuccess, r.code, r.err)
	r = run(t, "", "profile", "show")
	assert.Contains(t, r.out, "Your profile is empty")
}

func TestProfile_SetValidation(t *testing.T) {
	env(t, &backend{})

	r := run(t, "", "profile", "set", "favourite_colour=blue")
	assert.Equal(t, ExitUsageError, r.code)
	assert.Contains(t, r.err, "unknown profile field")

	r = run(t, "", "profile", "set", "nickname")
	assert.Equal(t, ExitUsageError, r.code)

	r = run(t, "", "profile", "show", "--format", "xml")
	assert.Equal(t, ExitUsageError, r.code)
}

func TestProfile_Fields(t *testing.T) {
	env(t, &backend{})
	r := run(t, "", "profile", "fields")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "tone_preference")
	assert.Contains(t, r.out, "Professional")
}

// =============================================================================
// STATUS
// =============================================================================

func TestStatus(t *testing.T) {
	url := env(t, &backend{docs: []string{"a.pdf", "b.pdf"}})

	r := run(t, "", "--api-url", url, "--json", "status")
	require.Equal(t, ExitSuccess, r.code, r.err)

	var data StatusData
	decodeData(t, r.out, &data)
	assert.True(t, data.Reachable)
	assert.Equal(t, 2, data.Documents)
	assert.Equal(t, url, data.BaseURL)
	assert.Equal(t, config.BackendFile, data.ProfileBackend)
}

func TestStatus_Unreachable(t *testing.T) {
	t.Setenv("KNOWME_HOME", t.TempDir())
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	r := run(t, "", "--api-url", url, "--json", "status")
	require.Equal(t, ExitSuccess, r.code, r.err)

	var data StatusData
	decodeData(t, r.out, &data)
	assert.False(t, data.Reachable)
	assert.NotEmpty(t, data.Error)
	assert.Zero(t, data.Documents)
}

// =============================================================================
// CHAT REPL
// =============================================================================

// scripted replays input lines, then reports end of input.
type scripted struct {
	lines []string
}

func (s *scripted) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func newREPLApp(t *testing.T, url string) (*App, *app.Store, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.API.BaseURL = url

	store, err := app.Open(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	var out bytes.Buffer
	a := NewApp()
	a.Out = &out
	a.cfg = cfg
	return a, store, &out
}

func TestREPL(t *testing.T) {
	b := &backend{docs: []string{"cv.pdf"}}
	url := env(t, b)
	a, store, out := newREPLApp(t, url)

	require.NoError(t, store.Profile.Update("nickname", "Sam"))
	in := &scripted{lines: []string{"", "/profile", "hello", "/docs", "/new", "/quit", "never read"}}

	require.NoError(t, a.runREPL(context.Background(), in, store))
	assert.Contains(t, out.String(), "Name: Sam")
	assert.Contains(t, out.String(), "**Answer** to hello")
	assert.Contains(t, out.String(), "1 documents")
	assert.Contains(t, out.String(), "Started a new conversation.")
	assert.Equal(t, 0, store.Chat.Len())
	assert.Equal(t, []string{"never read"}, in.lines)
	assert.Len(t, b.queries, 1)
}

func TestREPL_EndOfInput(t *testing.T) {
	url := env(t, &backend{})
	a, store, out := newREPLApp(t, url)

	require.NoError(t, a.runREPL(context.Background(), &scripted{lines: []string{"hi"}}, store))
	assert.Contains(t, out.String(), "2 messages.")
}

func TestREPL_TransportErrorKeepsGoing(t *testing.T) {
	t.Setenv("KNOWME_HOME", t.TempDir())
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()
	a, store, out := newREPLApp(t, url)

	require.NoError(t, a.runREPL(context.Background(), &scripted{lines: []string{"one", "two"}}, store))
	assert.Equal(t, 2, strings.Count(out.String(), chat.FallbackConnection))
}
