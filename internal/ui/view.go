// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/knowme-tui/internal/chat"
	"github.com/jeranaias/knowme-tui/internal/model"
	"github.com/jeranaias/knowme-tui/internal/nav"
	"github.com/jeranaias/knowme-tui/internal/profile"
	"github.com/jeranaias/knowme-tui/internal/ui/render"
	"github.com/jeranaias/knowme-tui/internal/util"
)

// View renders the whole screen.
func (m Model) View() string {
	tab := m.store.Nav.Tab()

	header := m.renderHeader()
	tabs := m.renderTabs(tab)
	notices := render.Notices(m.store.Notices.Active(), m.store.Notices.Now(), m.width)
	status := m.renderStatusBar(tab)

	var body string
	switch tab {
	case nav.TabDocuments:
		body = m.renderDocuments()
	case nav.TabSettings:
		body = m.renderSettings()
	case nav.TabWizard:
		body = m.renderWizard()
	default:
		body = m.renderAssistant()
	}

	parts := []string{header, tabs, body}
	if notices != "" {
		parts = append(parts, notices)
	}
	parts = append(parts, status)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// =============================================================================
// CHROME
// =============================================================================

func (m Model) renderHeader() string {
	t := m.theme
	left := t.HeaderTitle.Render("KnowMe") + "  " + t.WelcomeText.Render(m.store.Title())

	right := ""
	if m.opts.ShowTimer {
		right = t.Timer.Render("Session " + m.store.Timer.Label())
	}

	gap := m.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return t.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderTabs(active nav.Tab) string {
	if active == nav.TabWizard {
		active = nav.TabSettings
	}
	cells := make([]string, 0, len(nav.Tabs))
	for _, tab := range nav.Tabs {
		label := tab.DisplayName()
		if tab == nav.TabDocuments {
			label = fmt.Sprintf("%s (%d)", label, m.store.Library.Count())
		}
		if tab == active {
			cells = append(cells, m.theme.TabActive.Render(label))
		} else {
			cells = append(cells, m.theme.TabInactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...) + "\n"
}

func (m Model) renderStatusBar(tab nav.Tab) string {
	t := m.theme
	var hints []string
	for _, b := range m.keys.ShortHelp(tab) {
		h := b.Help()
		hints = append(hints, t.ShortcutKey.Render(h.Key)+" "+t.ShortcutDesc.Render(h.Desc))
	}
	return t.StatusBar.Width(m.width).Render(strings.Join(hints, "  "))
}

// =============================================================================
// ASSISTANT
// =============================================================================

func (m Model) renderAssistant() string {
	t := m.theme
	var b strings.Builder

	if m.store.AssistantView() == nav.ViewWelcome {
		b.WriteString(m.renderWelcome())
	} else {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		if m.store.Chat.Typing() {
			b.WriteString(t.Typing.Render(m.spinner.View() + " KnowMe is thinking..."))
		}
		b.WriteString("\n")
	}

	b.WriteString(t.InputContainer.Width(t.ContentWidth()).Render(m.input.View()))
	return lipgloss.NewStyle().Padding(0, 2).Render(b.String())
}

func (m Model) renderWelcome() string {
	t := m.theme
	var b strings.Builder

	b.WriteString(t.WelcomeTitle.Render(nav.WelcomeTitle))
	b.WriteString("\n")
	if w := m.store.Welcome(); w != "" {
		b.WriteString(t.WelcomeText.Render(render.Wrap(w, t.ContentWidth())))
		b.WriteString("\n\n")
	}

	i := 0
	for _, g := range chat.QuickQuestions {
		b.WriteString(t.RoleLabel.Render(g.Title))
		b.WriteString("\n")
		for _, q := range g.Questions {
			var line string
			if i == m.questionCursor {
				line = t.ListSelected.Render("> " + q)
			} else {
				line = t.ListItem.Render(q)
			}
			b.WriteString(line)
			b.WriteString("\n")
			i++
		}
	}
	b.WriteString(t.Muted.Render("Pick a question with up/down and press Enter, or type your own."))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderTranscript() string {
	t := m.theme
	width := m.theme.ContentWidth() - 4
	if m.opts.WrapWidth > 0 && m.opts.WrapWidth < width {
		width = m.opts.WrapWidth
	}

	var b strings.Builder
	for _, msg := range m.store.Chat.Messages() {
		b.WriteString(t.RoleLabel.Render(msg.Role.DisplayName()))
		b.WriteString(" ")
		b.WriteString(t.Timestamp.Render(msg.TimeLabel()))
		b.WriteString("\n")
		b.WriteString(m.renderBubble(msg, width))
		b.WriteString("\n")
		if msg.HasSources() {
			b.WriteString(t.Sources.Render("Sources: " + msg.SourceLine()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderBubble(msg model.Message, width int) string {
	if msg.IsUser() {
		return m.theme.UserBubble.Render(render.Wrap(msg.Content, width))
	}
	return m.theme.AssistantBubble.Render(m.md.Render(msg.Content, width))
}

// =============================================================================
// DOCUMENTS
// =============================================================================

func (m Model) renderDocuments() string {
	t := m.theme
	lib := m.store.Library
	var b strings.Builder

	docs := lib.Documents()
	b.WriteString(t.RoleLabel.Render(fmt.Sprintf("Your documents (%d)", len(docs))))
	b.WriteString("\n\n")

	if len(docs) == 0 {
		b.WriteString(t.Muted.Render("No documents yet. Press u to upload a PDF."))
		b.WriteString("\n")
	}

	nameWidth := t.ContentWidth() - 36
	if nameWidth < 16 {
		nameWidth = 16
	}
	for i, doc := range docs {
		name := util.PadRight(util.TruncateWidth(doc.Name, nameWidth), nameWidth)
		meta := doc.SizeLabel()
		if !doc.UploadedAt.IsZero() {
			meta += "  uploaded " + doc.UploadedAt.Format("Jan 2 15:04")
		}
		if i == m.docCursor {
			b.WriteString(t.ListSelected.Render("> " + name))
		} else {
			b.WriteString(t.ListItem.Render(name))
		}
		b.WriteString("  ")
		b.WriteString(t.ListMeta.Render(meta))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	del := lib.DeleteState()
	switch {
	case del.Confirming():
		b.WriteString(t.Confirm.Render(fmt.Sprintf("Delete %s? This cannot be undone. (y/n)", del.Name)))
		b.WriteString("\n")
	case del.Deleting():
		b.WriteString(t.Typing.Render(m.spinner.View() + " Deleting " + del.Name + "..."))
		b.WriteString("\n")
	}
	if lib.Uploading() {
		b.WriteString(t.Typing.Render(m.spinner.View() + " Uploading..."))
		b.WriteString("\n")
	}
	if m.pathInput.Focused() {
		b.WriteString(t.InputContainer.Width(t.ContentWidth()).Render(m.pathInput.View()))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Padding(0, 2).Render(b.String())
}

// selectedDocument is the document under the cursor.
func (m Model) selectedDocument() (model.Document, bool) {
	docs := m.store.Library.Documents()
	if m.docCursor < 0 || m.docCursor >= len(docs) {
		return model.Document{}, false
	}
	return docs[m.docCursor], true
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m Model) renderSettings() string {
	t := m.theme
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(t.FieldLabel.Render(label))
		b.WriteString(t.FieldValue.Render(value))
		b.WriteString("\n")
	}

	b.WriteString(t.RoleLabel.Render("Connection"))
	b.WriteString("\n")
	row("Backend", m.opts.BaseURL)
	row("Profile storage", m.opts.ProfileBackend)
	row("Session", m.store.Timer.Label())
	b.WriteString("\n")

	b.WriteString(t.RoleLabel.Render("Personality"))
	b.WriteString("\n")
	p := m.store.Profile.Profile()
	if p.Empty() {
		b.WriteString(t.Muted.Render("Not set up yet. Press p to tell me about yourself."))
		b.WriteString("\n")
	} else {
		for _, f := range profile.Fields {
			if v := p[f.Key]; v != "" {
				row(fieldLabel(f), v)
			}
		}
	}

	if m.clearArmed {
		b.WriteString("\n")
		b.WriteString(t.Confirm.Render("Clear your whole profile? (y/n)"))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Padding(0, 2).Render(b.String())
}

func fieldLabel(f profile.Field) string {
	if f.Label != "" {
		return f.Label
	}
	label := strings.ReplaceAll(f.Key, "_", " ")
	return strings.ToUpper(label[:1]) + label[1:]
}

// =============================================================================
// WIZARD
// =============================================================================

func (m Model) renderWizard() string {
	t := m.theme
	step, total := m.store.Nav.Step(), m.store.Nav.TotalSteps()
	var b strings.Builder

	b.WriteString(t.WizardStep.Render(fmt.Sprintf("Step %d of %d", step, total)))
	b.WriteString("  ")
	b.WriteString(progressBar(step, total, 20))
	b.WriteString("\n\n")

	fields := profile.FieldsForStep(step)
	if len(fields) == 0 {
		b.WriteString(t.Muted.Render("Nothing to fill in here."))
		b.WriteString("\n")
	}
	for i, f := range fields {
		b.WriteString(t.WizardPrompt.Render(f.Prompt))
		b.WriteString("\n")
		if i == m.fieldIndex {
			b.WriteString(m.fieldInput.View())
		} else {
			value := m.store.Profile.Get(f.Key)
			if value == "" {
				value = "-"
			}
			b.WriteString(t.ListItem.Render(value))
		}
		b.WriteString("\n")
		if len(f.Choices) > 0 {
			b.WriteString(t.Muted.Render("e.g. " + strings.Join(f.Choices, ", ")))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	var hints []string
	if !m.store.Nav.AtFirstStep() {
		hints = append(hints, "C-b back")
	}
	if m.store.Nav.AtLastStep() {
		hints = append(hints, "Enter save")
	} else {
		hints = append(hints, "Enter next")
	}
	hints = append(hints, "Esc leave")
	b.WriteString(t.Muted.Render(strings.Join(hints, "  ")))

	return lipgloss.NewStyle().Padding(0, 2).Render(b.String())
}

// progressBar draws "[#####-----]" scaled to width.
func progressBar(step, total, width int) string {
	if total < 1 {
		total = 1
	}
	filled := step * width / total
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
