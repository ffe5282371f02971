// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package nav

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jeranaias/knowme-tui/internal/notice"
)

// =============================================================================
// TABS AND VIEWS
// =============================================================================

// Tab is a top-level screen.
type Tab string

const (
	TabAssistant Tab = "assistant"
	TabDocuments Tab = "documents"
	TabSettings  Tab = "settings"
	TabWizard    Tab = "wizard" // modal, entered from settings
)

// Tabs are the screens shown in the tab bar, in order.
var Tabs = []Tab{TabAssistant, TabDocuments, TabSettings}

// ParseTab accepts a tab name in any case.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(strings.ToLower(strings.TrimSpace(s))); t {
	case TabAssistant, TabDocuments, TabSettings, TabWizard:
		return t, nil
	default:
		return "", fmt.Errorf("unknown tab %q", s)
	}
}

// DisplayName is the tab bar label.
func (t Tab) DisplayName() string {
	switch t {
	case TabAssistant:
		return "Assistant"
	case TabDocuments:
		return "Documents"
	case TabSettings:
		return "Settings"
	case TabWizard:
		return "Personality"
	default:
		return string(t)
	}
}

// View is the assistant tab's sub-view.
type View int

const (
	ViewWelcome View = iota
	ViewChat
)

// AssistantView picks the sub-view from the transcript length alone: the
// welcome screen until the first message, the chat after.
func AssistantView(messageCount int) View {
	if messageCount > 0 {
		return ViewChat
	}
	return ViewWelcome
}

// WelcomeTitle is the header over the empty assistant tab.
const WelcomeTitle = "Tell me your story, and I'll remember it forever."

// Title is the header text for a tab.
func Title(tab Tab, messageCount int) string {
	if tab == TabAssistant && AssistantView(messageCount) == ViewWelcome {
		return WelcomeTitle
	}
	return tab.DisplayName()
}

// =============================================================================
// STATE MACHINE
// =============================================================================

// DefaultTotalSteps is the number of wizard steps.
const DefaultTotalSteps = 7

// SavedNotice is shown after the wizard saves the profile.
const SavedNotice = "Your personality profile has been saved!"

// ErrWizardFromSettings is returned when the wizard is entered from a tab
// other than settings.
var ErrWizardFromSettings = errors.New("nav: the wizard opens from settings")

// ErrNotInWizard is returned by Save outside the wizard.
var ErrNotInWizard = errors.New("nav: not in the wizard")

// ProfileSaver persists the profile being edited.
type ProfileSaver interface {
	SaveCurrent() error
}

// Machine holds the active tab and wizard step.
type Machine struct {
	mu    sync.Mutex
	tab   Tab
	step  int
	total int
}

// NewMachine starts on the assistant tab. totalSteps below 1 uses
// DefaultTotalSteps.
func NewMachine(totalSteps int) *Machine {
	if totalSteps < 1 {
		totalSteps = DefaultTotalSteps
	}
	return &Machine{tab: TabAssistant, step: 1, total: totalSteps}
}

// Tab is the active tab.
func (m *Machine) Tab() Tab {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tab
}

// Step is the current wizard step, 1-based.
func (m *Machine) Step() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// TotalSteps is the number of wizard steps.
func (m *Machine) TotalSteps() int {
	return m.total
}

// SwitchTab activates tab. Entering the wizard is only allowed from
// settings and always starts at step 1.
func (m *Machine) SwitchTab(tab Tab) error {
	if _, err := ParseTab(string(tab)); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if tab == TabWizard {
		if m.tab == TabWizard {
			return nil
		}
		if m.tab != TabSettings {
			return ErrWizardFromSettings
		}
		m.step = 1
	}
	m.tab = tab
	return nil
}

// Next advances the wizard. It does nothing on the last step and reports
// whether the step changed.
func (m *Machine) Next() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.step >= m.total {
		return false
	}
	m.step++
	return true
}

// Prev goes back one step. It does nothing on the first step.
func (m *Machine) Prev() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.step <= 1 {
		return false
	}
	m.step--
	return true
}

// AtFirstStep hides the back button.
func (m *Machine) AtFirstStep() bool {
	return m.Step() == 1
}

// AtLastStep swaps the next button for save.
func (m *Machine) AtLastStep() bool {
	return m.Step() == m.total
}

// Save persists the profile, announces it and returns to the assistant.
// On a failed save the wizard stays open so nothing typed is lost.
func (m *Machine) Save(saver ProfileSaver, notices notice.Poster) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tab != TabWizard {
		return ErrNotInWizard
	}
	if err := saver.SaveCurrent(); err != nil {
		if notices != nil {
			notices.Post(notice.KindError, "Could not save your profile. Please try again.")
		}
		return err
	}
	if notices != nil {
		notices.Post(notice.KindSuccess, SavedNotice)
	}
	m.tab = TabAssistant
	return nil
}
