// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/knowme-tui/internal/nav"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings. Letter shortcuts only apply on
// screens without a focused text input.
type KeyMap struct {
	Quit    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Submit  key.Binding
	Back    key.Binding
	Dismiss key.Binding

	// Assistant
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	NewChat  key.Binding

	// Documents
	Upload  key.Binding
	Delete  key.Binding
	Refresh key.Binding
	Confirm key.Binding
	Cancel  key.Binding

	// Settings and wizard
	Personality  key.Binding
	ClearProfile key.Binding
	PrevStep     key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-Tab", "prev tab"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "submit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "back"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "dismiss notice"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "next"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new chat"),
		),
		Upload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "upload"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "cancel"),
		),
		Personality: key.NewBinding(
			key.WithKeys("p", "enter"),
			key.WithHelp("p", "edit personality"),
		),
		ClearProfile: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear profile"),
		),
		PrevStep: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("C-b", "back a step"),
		),
	}
}

// ShortHelp lists the bindings shown in the status bar for a tab.
func (k KeyMap) ShortHelp(tab nav.Tab) []key.Binding {
	switch tab {
	case nav.TabDocuments:
		return []key.Binding{k.Upload, k.Delete, k.Refresh, k.NextTab, k.Quit}
	case nav.TabSettings:
		return []key.Binding{k.Personality, k.ClearProfile, k.NewChat, k.NextTab, k.Quit}
	case nav.TabWizard:
		return []key.Binding{k.Submit, k.PrevStep, k.Back, k.Quit}
	default:
		return []key.Binding{k.Submit, k.PageUp, k.NewChat, k.NextTab, k.Quit}
	}
}
