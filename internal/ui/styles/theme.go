// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// HEADER AND TABS
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	Timer       lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	// ==========================================================================
	// ASSISTANT
	// ==========================================================================

	WelcomeTitle    lipgloss.Style
	WelcomeText     lipgloss.Style
	QuickQuestion   lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	RoleLabel       lipgloss.Style
	Timestamp       lipgloss.Style
	Sources         lipgloss.Style
	Typing          lipgloss.Style

	// ==========================================================================
	// INPUT AND LISTS
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	ListItem       lipgloss.Style
	ListSelected   lipgloss.Style
	ListMeta       lipgloss.Style
	Confirm        lipgloss.Style

	// ==========================================================================
	// WIZARD AND SETTINGS
	// ==========================================================================

	WizardStep   lipgloss.Style
	WizardPrompt lipgloss.Style
	FieldLabel   lipgloss.Style
	FieldValue   lipgloss.Style

	// ==========================================================================
	// FOOTER
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Muted        lipgloss.Style
}

// NewTheme creates a theme for the current terminal.
func NewTheme() *Theme {
	return NewThemeFor(termenv.ColorProfile(), termenv.HasDarkBackground())
}

// NewThemeFor creates a theme for an explicit profile and background.
func NewThemeFor(profile termenv.Profile, isDark bool) *Theme {
	t := &Theme{
		IsDark:       isDark,
		ColorProfile: profile,
		Width:        80,
		Height:       24,
	}
	t.build()
	return t
}

// SetSize updates the layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// ContentWidth is the usable width inside the app's side padding.
func (t *Theme) ContentWidth() int {
	w := t.Width - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (t *Theme) build() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)
	t.Timer = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.TabActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Indigo).
		Bold(true).
		Padding(0, 2)
	t.TabInactive = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)

	t.WelcomeTitle = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true).
		MarginBottom(1)
	t.WelcomeText = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.QuickQuestion = lipgloss.NewStyle().
		Foreground(Purple).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)
	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)
	t.RoleLabel = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)
	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.Sources = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)
	t.Typing = lipgloss.NewStyle().
		Foreground(Purple).
		Italic(true)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)
	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.ListItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(2)
	t.ListSelected = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)
	t.ListMeta = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.Confirm = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.WizardStep = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)
	t.WizardPrompt = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.FieldLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Width(16)
	t.FieldValue = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)
}
