// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/knowme-tui/internal/app"
	"github.com/jeranaias/knowme-tui/internal/chat"
	"github.com/jeranaias/knowme-tui/internal/nav"
	"github.com/jeranaias/knowme-tui/internal/profile"
	"github.com/jeranaias/knowme-tui/internal/session"
	"github.com/jeranaias/knowme-tui/internal/ui/render"
	"github.com/jeranaias/knowme-tui/internal/ui/styles"
)

// Options tune the program from configuration.
type Options struct {
	GlamourStyle string
	ShowTimer    bool
	WrapWidth    int // 0 follows the terminal

	// Shown on the settings tab.
	BaseURL        string
	ProfileBackend string
}

// Model is the root Bubble Tea model. All domain state lives in the
// Store; the model only holds widgets and cursors.
type Model struct {
	ctx   context.Context
	store *app.Store
	opts  Options
	theme *styles.Theme
	md    *render.Markdown
	keys  KeyMap

	width  int
	height int

	input      textinput.Model // chat query
	pathInput  textinput.Model // upload path
	fieldInput textinput.Model // wizard answer
	viewport   viewport.Model
	spinner    spinner.Model

	questionCursor int
	docCursor      int
	fieldIndex     int
	clearArmed     bool
}

// New creates the root model over store.
func New(ctx context.Context, store *app.Store, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask me anything about your story..."
	ti.CharLimit = 4096
	ti.Focus()

	pi := textinput.New()
	pi.Prompt = "PDF path: "
	pi.Placeholder = "~/Documents/resume.pdf"
	pi.CharLimit = 1024

	fi := textinput.New()
	fi.Prompt = "> "
	fi.CharLimit = 512

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	return Model{
		ctx:        ctx,
		store:      store,
		opts:       opts,
		theme:      styles.NewTheme(),
		md:         render.NewMarkdown(opts.GlamourStyle),
		keys:       DefaultKeyMap(),
		width:      80,
		height:     24,
		input:      ti,
		pathInput:  pi,
		fieldInput: fi,
		viewport:   viewport.New(80, 16),
		spinner:    sp,
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init fetches the welcome text and document list and starts the tickers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		noticeTickCmd(),
		session.TickCmd(),
		fetchWelcomeCmd(m.ctx, m.store.Backend),
		listDocumentsCmd(m.ctx, m.store.Backend),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.store.Nav.Tab() == nav.TabAssistant {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil

	case welcomeMsg:
		m.store.SetWelcome(msg.text, msg.err)
		return m, nil

	case documentsMsg:
		m.store.Library.ApplyListing(msg.infos, msg.err)
		m.clampDocCursor()
		return m, nil

	case chatReplyMsg:
		if _, ok := m.store.Chat.Complete(msg.req, msg.res, msg.err); ok {
			m.refreshTranscript()
		}
		return m, nil

	case uploadDoneMsg:
		m.clampDocCursor()
		return m, nil

	case deleteDoneMsg:
		m.store.Library.FinishDelete(msg.name, msg.res, msg.err)
		m.clampDocCursor()
		return m, nil

	case ProfileReloadedMsg:
		if m.store.Nav.Tab() == nav.TabWizard {
			m.loadField()
		}
		return m, nil

	case noticeTickMsg:
		m.store.Notices.Expire()
		return m, noticeTickCmd()

	case session.TickMsg:
		return m, session.TickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateFocusedInput(msg)
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	// header + tab bar + input area + status bar
	const reserved = 2 + 2 + 4 + 1
	vpHeight := m.height - reserved
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = m.theme.ContentWidth()
	m.viewport.Height = vpHeight

	inputWidth := m.theme.ContentWidth() - 4
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth
	m.pathInput.Width = inputWidth - len(m.pathInput.Prompt)
	m.fieldInput.Width = inputWidth

	m.refreshTranscript()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Dismiss):
		if n, ok := m.store.Notices.Latest(); ok {
			m.store.Notices.Dismiss(n.ID)
		}
		return m, nil
	}

	tab := m.store.Nav.Tab()
	if tab != nav.TabWizard {
		switch {
		case key.Matches(msg, m.keys.NextTab):
			return m.cycleTab(1)
		case key.Matches(msg, m.keys.PrevTab):
			return m.cycleTab(-1)
		}
	}

	switch tab {
	case nav.TabDocuments:
		return m.handleDocumentsKey(msg)
	case nav.TabSettings:
		return m.handleSettingsKey(msg)
	case nav.TabWizard:
		return m.handleWizardKey(msg)
	default:
		return m.handleAssistantKey(msg)
	}
}

func (m Model) cycleTab(delta int) (tea.Model, tea.Cmd) {
	cur := 0
	for i, t := range nav.Tabs {
		if t == m.store.Nav.Tab() {
			cur = i
		}
	}
	next := nav.Tabs[(cur+delta+len(nav.Tabs))%len(nav.Tabs)]
	return m.switchTab(next)
}

func (m Model) switchTab(tab nav.Tab) (tea.Model, tea.Cmd) {
	if err := m.store.Dispatch(m.ctx, app.SwitchTab{Tab: tab}); err != nil {
		return m, nil
	}
	m.clearArmed = false
	m.input.Blur()
	m.pathInput.Blur()
	m.fieldInput.Blur()

	switch tab {
	case nav.TabAssistant:
		m.refreshTranscript()
		return m, m.input.Focus()
	case nav.TabWizard:
		m.fieldIndex = 0
		m.loadField()
		return m, m.fieldInput.Focus()
	}
	return m, nil
}

func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.input.Focused():
		m.input, cmd = m.input.Update(msg)
	case m.pathInput.Focused():
		m.pathInput, cmd = m.pathInput.Update(msg)
	case m.fieldInput.Focused():
		m.fieldInput, cmd = m.fieldInput.Update(msg)
	}
	return m, cmd
}

// =============================================================================
// ASSISTANT
// =============================================================================

func (m Model) handleAssistantKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	welcome := m.store.AssistantView() == nav.ViewWelcome
	empty := strings.TrimSpace(m.input.Value()) == ""

	switch {
	case key.Matches(msg, m.keys.Submit):
		if welcome && empty {
			q, ok := chat.QuickQuestion(m.questionCursor)
			if !ok {
				return m, nil
			}
			return m.submitChat(q)
		}
		return m.submitChat(m.input.Value())

	case welcome && empty && key.Matches(msg, m.keys.Up):
		if m.questionCursor > 0 {
			m.questionCursor--
		}
		return m, nil

	case welcome && empty && key.Matches(msg, m.keys.Down):
		if m.questionCursor < len(chat.AllQuickQuestions())-1 {
			m.questionCursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.NewChat):
		m.store.Dispatch(m.ctx, app.ResetChat{})
		m.questionCursor = 0
		m.refreshTranscript()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitChat appends the query and starts the exchange. Input is kept
// when the query is refused so nothing typed is lost.
func (m Model) submitChat(text string) (tea.Model, tea.Cmd) {
	req, ok := m.store.Chat.Begin(text)
	if !ok {
		return m, nil
	}
	m.input.Reset()
	m.refreshTranscript()
	return m, exchangeCmd(m.ctx, m.store.Chat, req)
}

// refreshTranscript re-renders the message log into the viewport and
// scrolls to the newest message.
func (m *Model) refreshTranscript() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// =============================================================================
// DOCUMENTS
// =============================================================================

func (m Model) handleDocumentsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pathInput.Focused() {
		switch {
		case key.Matches(msg, m.keys.Submit):
			path := expandHome(strings.TrimSpace(m.pathInput.Value()))
			if path == "" || m.store.Library.Uploading() {
				return m, nil
			}
			m.pathInput.Reset()
			m.pathInput.Blur()
			return m, uploadCmd(m.ctx, m.store, path)
		case key.Matches(msg, m.keys.Back):
			m.pathInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, cmd
	}

	del := m.store.Library.DeleteState()
	if del.Confirming() {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			name, ok := m.store.Library.BeginDelete()
			if !ok {
				return m, nil
			}
			return m, deleteCmd(m.ctx, m.store.Backend, name)
		case key.Matches(msg, m.keys.Cancel):
			m.store.Dispatch(m.ctx, app.CancelDelete{})
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.docCursor > 0 {
			m.docCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.docCursor < m.store.Library.Count()-1 {
			m.docCursor++
		}
	case key.Matches(msg, m.keys.Upload):
		if m.store.Library.Uploading() {
			return m, nil
		}
		return m, m.pathInput.Focus()
	case key.Matches(msg, m.keys.Delete):
		if doc, ok := m.selectedDocument(); ok {
			m.store.Dispatch(m.ctx, app.RequestDelete{Name: doc.Name})
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, listDocumentsCmd(m.ctx, m.store.Backend)
	}
	return m, nil
}

func (m *Model) clampDocCursor() {
	n := m.store.Library.Count()
	if m.docCursor >= n {
		m.docCursor = n - 1
	}
	if m.docCursor < 0 {
		m.docCursor = 0
	}
}

// =============================================================================
// SETTINGS
// =============================================================================

// NoticeProfileCleared confirms the clear-profile action.
const NoticeProfileCleared = "Your personality profile has been cleared."

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.clearArmed {
		m.clearArmed = false
		if key.Matches(msg, m.keys.Confirm) {
			if err := m.store.Profile.Clear(); err != nil {
				m.store.Notices.Error("Could not clear your profile. Please try again.")
			} else {
				m.store.Notices.Success(NoticeProfileCleared)
			}
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Personality):
		return m.switchTab(nav.TabWizard)
	case key.Matches(msg, m.keys.ClearProfile):
		m.clearArmed = true
	case key.Matches(msg, m.keys.NewChat):
		m.store.Dispatch(m.ctx, app.ResetChat{})
		m.refreshTranscript()
	}
	return m, nil
}

// =============================================================================
// WIZARD
// =============================================================================

func (m Model) handleWizardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fields := profile.FieldsForStep(m.store.Nav.Step())

	switch {
	case key.Matches(msg, m.keys.Back):
		m.commitField()
		return m.switchTab(nav.TabSettings)

	case key.Matches(msg, m.keys.Submit):
		m.commitField()
		if m.fieldIndex < len(fields)-1 {
			m.fieldIndex++
			m.loadField()
			return m, nil
		}
		if m.store.Nav.AtLastStep() {
			if err := m.store.Dispatch(m.ctx, app.WizardSave{}); err != nil {
				return m, nil
			}
			m.fieldInput.Blur()
			m.refreshTranscript()
			return m, m.input.Focus()
		}
		m.store.Dispatch(m.ctx, app.WizardNext{})
		m.fieldIndex = 0
		m.loadField()
		return m, nil

	case key.Matches(msg, m.keys.PrevStep):
		m.commitField()
		if m.fieldIndex > 0 {
			m.fieldIndex--
		} else if m.store.Nav.Prev() {
			m.fieldIndex = len(profile.FieldsForStep(m.store.Nav.Step())) - 1
			if m.fieldIndex < 0 {
				m.fieldIndex = 0
			}
		}
		m.loadField()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.fieldIndex > 0 {
			m.commitField()
			m.fieldIndex--
			m.loadField()
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.fieldIndex < len(fields)-1 {
			m.commitField()
			m.fieldIndex++
			m.loadField()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.fieldInput, cmd = m.fieldInput.Update(msg)
	return m, cmd
}

// currentField is the field being edited, if the step has any.
func (m Model) currentField() (profile.Field, bool) {
	fields := profile.FieldsForStep(m.store.Nav.Step())
	if m.fieldIndex < 0 || m.fieldIndex >= len(fields) {
		return profile.Field{}, false
	}
	return fields[m.fieldIndex], true
}

// loadField puts the stored answer for the current field in the input.
func (m *Model) loadField() {
	f, ok := m.currentField()
	if !ok {
		m.fieldInput.Reset()
		m.fieldInput.Placeholder = ""
		return
	}
	m.fieldInput.SetValue(m.store.Profile.Get(f.Key))
	m.fieldInput.CursorEnd()
	m.fieldInput.Placeholder = ""
	if len(f.Choices) > 0 {
		m.fieldInput.Placeholder = f.Choices[0]
	}
}

// commitField stores the input for the current field when it changed.
func (m *Model) commitField() {
	f, ok := m.currentField()
	if !ok {
		return
	}
	value := strings.TrimSpace(m.fieldInput.Value())
	if value == m.store.Profile.Get(f.Key) {
		return
	}
	if err := m.store.Dispatch(m.ctx, app.UpdateProfileField{Field: f.Key, Value: value}); err != nil {
		m.store.Notices.Error("Could not save your profile. Please try again.")
	}
}

// expandHome resolves a leading "~/" against the home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
