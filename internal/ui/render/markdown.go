// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// Glamour style names accepted by NewMarkdown.
const (
	StyleAuto  = "auto"
	StyleDark  = "dark"
	StyleLight = "light"
	StyleNoTTY = "notty"
)

// minWrap keeps very narrow terminals from producing one word per line.
const minWrap = 20

// Markdown renders assistant replies for the terminal. Renderers are built
// lazily per wrap width because glamour fixes the width at construction.
type Markdown struct {
	style string

	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdown creates a renderer for a configured style. "auto" (or an
// empty string) is resolved once against the terminal background.
func NewMarkdown(style string) *Markdown {
	return &Markdown{
		style:     ResolveStyle(style, termenv.HasDarkBackground),
		renderers: make(map[int]*glamour.TermRenderer),
	}
}

// ResolveStyle maps a configured style to a concrete glamour style.
func ResolveStyle(style string, hasDark func() bool) string {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case StyleDark:
		return StyleDark
	case StyleLight:
		return StyleLight
	case StyleNoTTY:
		return StyleNoTTY
	default:
		if hasDark != nil && !hasDark() {
			return StyleLight
		}
		return StyleDark
	}
}

// Style is the resolved glamour style.
func (m *Markdown) Style() string {
	return m.style
}

// Render renders content wrapped to width. The raw content is returned
// when glamour fails so a reply is never lost.
func (m *Markdown) Render(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	r, err := m.renderer(width)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

func (m *Markdown) renderer(width int) (*glamour.TermRenderer, error) {
	if width < minWrap {
		width = minWrap
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.renderers[width]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	m.renderers[width] = r
	return r, nil
}
