// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"encoding/json"
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

	"github.com/jeranaias/knowme-tui/internal/api"
	"github.com/jeranaias/knowme-tui/internal/chat"
	"github.com/jeranaias/knowme-tui/internal/config"
	"github.com/jeranaias/knowme-tui/internal/nav"
	"github.com/jeranaias/knowme-tui/internal/profile"
	"github.com/jeranaias/knowme-tui/internal/storage"
)

// fakeServer mimics the retrieval backend in memory.
type fakeServer struct {
	mu      sync.Mutex
	docs    []string
	queries []string
	welcome int // status for POST /
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/":
		if f.welcome != 0 {
			w.WriteHeader(f.welcome)
			return
		}
		json.NewEncoder(w).Encode("Welcome to KnowMe")
	case r.Method == http.MethodPost && r.URL.Path == "/chat/":
		q := r.URL.Query().Get("user_msg")
		f.queries = append(f.queries, q)
		json.NewEncoder(w).Encode(map[string]any{"response": "**Answer** to " + q, "source": f.docs})
	case r.Method == http.MethodGet && r.URL.Path == "/pdfs/":
		json.NewEncoder(w).Encode(map[string]any{"pdfs": f.docs})
	case r.Method == http.MethodPost && r.URL.Path == "/upload_pdf/":
		file, hdr, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(400)
			io.WriteString(w, `{"detail":"no file"}`)
			return
		}
		file.Close()
		f.docs = append(f.docs, hdr.Filename)
		json.NewEncoder(w).Encode(map[string]any{"filename": hdr.Filename, "chunks_stored": 7, "message": "ok"})
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/pdfs/"):
		name := strings.TrimPrefix(r.URL.Path, "/pdfs/")
		for i, d := range f.docs {
			if d == name {
				f.docs = append(f.docs[:i], f.docs[i+1:]...)
				json.NewEncoder(w).Encode(map[string]any{"message": "Deleted " + name})
				return
			}
		}
		w.WriteHeader(404)
		io.WriteString(w, `{"detail":"No PDF or chunks found for: `+name+`"}`)
	default:
		w.WriteHeader(404)
	}
}

func newStore(t *testing.T, srv *fakeServer) *Store {
	t.Helper()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	kv := storage.NewFileStore(filepath.Join(t.TempDir(), "profile.json"))
	s := NewStore(Deps{
		Backend:     api.NewClientWithConfig(api.ClientConfig{BaseURL: ts.URL}),
		KV:          kv,
		WizardSteps: 7,
	})
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBootstrap(t *testing.T) {
	s := newStore(t, &fakeServer{docs: []string{"cv.pdf", "goals.pdf"}})

	require.NoError(t, s.Bootstrap(context.Background()))
	assert.Equal(t, "Welcome to KnowMe", s.Welcome())
	assert.Equal(t, 2, s.Library.Count())
}

func TestBootstrap_WelcomeFailureIsSilent(t *testing.T) {
	s := newStore(t, &fakeServer{welcome: 500})

	require.NoError(t, s.Bootstrap(context.Background()))
	assert.Equal(t, "", s.Welcome())
	assert.Empty(t, s.Notices.Active())
}

func TestChatFlow_WithProfileContext(t *testing.T) {
	srv := &fakeServer{docs: []string{"cv.pdf"}}
	s := newStore(t, srv)

	assert.Equal(t, nav.ViewWelcome, s.AssistantView())
	assert.Equal(t, nav.WelcomeTitle, s.Title())

	require.NoError(t, s.Dispatch(context.Background(), UpdateProfileField{Field: profile.KeyNickname, Value: "Sam"}))
	require.NoError(t, s.Dispatch(context.Background(), SendChat{Text: "What is in my CV?"}))

	assert.Equal(t, nav.ViewChat, s.AssistantView())
	assert.Equal(t, "Assistant", s.Title())

	msgs := s.Chat.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "What is in my CV?", msgs[0].Content)
	assert.Equal(t, []string{"cv.pdf"}, msgs[1].Sources)
	assert.Equal(t, []string{"What is in my CV?\n\n[User Context: Name: Sam]"}, srv.queries)

	assert.ErrorIs(t, s.Dispatch(context.Background(), SendChat{Text: "   "}), ErrRejected)
}

func TestQuickQuestion(t *testing.T) {
	srv := &fakeServer{}
	s := newStore(t, srv)

	require.NoError(t, s.Dispatch(context.Background(), QuickQuestion{Index: 2}))
	want, _ := chat.QuickQuestion(2)
	assert.Equal(t, []string{want}, srv.queries)

	assert.Error(t, s.Dispatch(context.Background(), QuickQuestion{Index: 99}))
}

func TestDocumentFlow(t *testing.T) {
	srv := &fakeServer{}
	s := newStore(t, srv)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "plan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0600))

	require.NoError(t, s.Dispatch(ctx, UploadDocument{Path: path}))
	require.Equal(t, 1, s.Library.Count())
	latest, _ := s.Notices.Latest()
	assert.Equal(t, "Successfully uploaded plan.pdf. 7 chunks stored.", latest.Text)

	require.NoError(t, s.Dispatch(ctx, RequestDelete{Name: "plan.pdf"}))
	assert.ErrorIs(t, s.Dispatch(ctx, RequestDelete{Name: "plan.pdf"}), ErrRejected)
	require.NoError(t, s.Dispatch(ctx, CancelDelete{}))
	assert.Equal(t, 1, s.Library.Count())

	require.NoError(t, s.Dispatch(ctx, RequestDelete{Name: "plan.pdf"}))
	require.NoError(t, s.Dispatch(ctx, ConfirmDelete{}))
	assert.Equal(t, 0, s.Library.Count())
	latest, _ = s.Notices.Latest()
	assert.Equal(t, "Deleted plan.pdf", latest.Text)

	require.NoError(t, s.Dispatch(ctx, RefreshDocuments{}))
	assert.Equal(t, 0, s.Library.Count())
}

func TestWizardFlow(t *testing.T) {
	s := newStore(t, &fakeServer{})
	ctx := context.Background()

	require.NoError(t, s.Dispatch(ctx, SwitchTab{Tab: nav.TabSettings}))
	require.NoError(t, s.Dispatch(ctx, SwitchTab{Tab: nav.TabWizard}))
	require.NoError(t, s.Dispatch(ctx, UpdateProfileField{Field: profile.KeyLifeFocus, Value: "Health"}))
	require.NoError(t, s.Dispatch(ctx, WizardNext{}))
	require.NoError(t, s.Dispatch(ctx, WizardNext{}))
	require.NoError(t, s.Dispatch(ctx, WizardPrev{}))
	assert.Equal(t, 2, s.Nav.Step())

	require.NoError(t, s.Dispatch(ctx, WizardSave{}))
	assert.Equal(t, nav.TabAssistant, s.Nav.Tab())
	latest, _ := s.Notices.Latest()
	assert.Equal(t, nav.SavedNotice, latest.Text)
	assert.Equal(t, "Focus: Health", s.Profile.Context())
}

func TestResetChat(t *testing.T) {
	s := newStore(t, &fakeServer{})
	require.NoError(t, s.Dispatch(context.Background(), SendChat{Text: "hi"}))
	require.NoError(t, s.Dispatch(context.Background(), ResetChat{}))
	assert.Equal(t, 0, s.Chat.Len())
	assert.Equal(t, nav.ViewWelcome, s.AssistantView())
}

func TestOpen_FromConfig(t *testing.T) {
	t.Setenv("KNOWME_HOME", t.TempDir())
	cfg := config.Default()
	cfg.Profile.Backend = config.BackendSQLite

	s, err := Open(cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Profile.Update(profile.KeyNickname, "Sam"))
	assert.Equal(t, "Name: Sam", s.Profile.Context())
}
