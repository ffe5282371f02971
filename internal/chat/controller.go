// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/knowme-tui/internal/api"
	"github.com/jeranaias/knowme-tui/internal/model"
	"github.com/jeranaias/knowme-tui/internal/notice"
)

// Fallback replies appended when a query fails, so every question gets an
// answer in the transcript.
const (
	FallbackConnection = "Sorry, I'm having trouble connecting. Please check your connection and try again."
	FallbackServer     = "Sorry, I encountered an error processing your request. Please try again."
)

// NoticeConnection is raised alongside FallbackConnection.
const NoticeConnection = "Connection error. Please try again."

// Sender submits a query to the backend.
type Sender interface {
	SendChat(ctx context.Context, text string) (*api.ChatResult, error)
}

// ContextSource supplies the profile context appended to queries.
type ContextSource interface {
	Context() string
}

// Request is one accepted query, from Begin to Complete.
type Request struct {
	ID      uint64
	Message model.Message // the user message already in the transcript

	// Contextual is what goes over the wire: the text, plus the profile
	// context when there is any.
	Contextual string
}

// Controller owns the transcript and enforces a single query in flight.
type Controller struct {
	sender  Sender
	profile ContextSource
	notices notice.Poster
	log     *zap.Logger

	mu       sync.Mutex
	messages []model.Message
	pending  bool
	inFlight uint64
	seq      uint64
}

// NewController wires a controller. profile and notices may be nil.
func NewController(sender Sender, profile ContextSource, notices notice.Poster, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		sender:  sender,
		profile: profile,
		notices: notices,
		log:     log.Named("chat"),
	}
}

// WithContext formats text with the profile context appended.
func WithContext(text, profileContext string) string {
	if profileContext == "" {
		return text
	}
	return text + "\n\n[User Context: " + profileContext + "]"
}

// Begin accepts a query: it appends the user message, marks the controller
// pending and derives the wire text. It refuses blank input and any query
// while another is pending.
func (c *Controller) Begin(raw string) (Request, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Request{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending {
		c.log.Debug("query ignored, another is in flight")
		return Request{}, false
	}

	msg := model.NewUserMessage(text)
	c.messages = append(c.messages, msg)
	c.pending = true
	c.seq++
	c.inFlight = c.seq

	ctxText := ""
	if c.profile != nil {
		ctxText = c.profile.Context()
	}

	return Request{
		ID:         c.seq,
		Message:    msg.Clone(),
		Contextual: WithContext(text, ctxText),
	}, true
}

// Exchange performs the network call for req. It does not touch state, so
// it can run off the UI goroutine.
func (c *Controller) Exchange(ctx context.Context, req Request) (*api.ChatResult, error) {
	return c.sender.SendChat(ctx, req.Contextual)
}

// Complete records the outcome of req: the assistant's reply on success,
// a fallback reply and a notice on failure. Pending is cleared either way.
// A completion for anything but the in-flight request is dropped.
func (c *Controller) Complete(req Request, res *api.ChatResult, err error) (model.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.pending || req.ID != c.inFlight {
		c.log.Warn("stale chat completion dropped", zap.Uint64("request", req.ID))
		return model.Message{}, false
	}
	c.pending = false

	var reply model.Message
	switch {
	case err == nil && res != nil:
		reply = model.NewAssistantMessage(res.Response, res.Sources)
		c.log.Debug("reply received", zap.Int("sources", len(reply.Sources)))
	case api.IsTransport(err):
		reply = model.NewAssistantMessage(FallbackConnection, nil)
		c.post(notice.KindError, NoticeConnection)
		c.log.Warn("chat request could not reach backend", zap.Error(err))
	default:
		reply = model.NewAssistantMessage(FallbackServer, nil)
		detail := api.DetailOf(err)
		if detail == "" {
			detail = api.DetailRequestFailed
		}
		c.post(notice.KindError, detail)
		c.log.Warn("chat request failed", zap.Error(err))
	}

	c.messages = append(c.messages, reply)
	return reply.Clone(), true
}

// Send runs Begin, Exchange and Complete in one blocking call.
func (c *Controller) Send(ctx context.Context, raw string) (model.Message, bool) {
	req, ok := c.Begin(raw)
	if !ok {
		return model.Message{}, false
	}
	res, err := c.Exchange(ctx, req)
	return c.Complete(req, res, err)
}

// Messages returns a copy of the transcript.
func (c *Controller) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Message, len(c.messages))
	for i, m := range c.messages {
		out[i] = m.Clone()
	}
	return out
}

// Len is the number of messages in the transcript.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Pending reports whether a query is in flight.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Typing mirrors Pending; the UI shows the indicator while it is set.
func (c *Controller) Typing() bool {
	return c.Pending()
}

// Reset clears the transcript. An outstanding request is abandoned and its
// completion will be dropped.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.pending = false
	c.inFlight = 0
}

func (c *Controller) post(kind notice.Kind, text string) {
	if c.notices != nil {
		c.notices.Post(kind, text)
	}
}
