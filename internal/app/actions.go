// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/knowme-tui/internal/chat"
	"github.com/jeranaias/knowme-tui/internal/model"
	"github.com/jeranaias/knowme-tui/internal/nav"
)

// Action is a typed request to change application state.
type Action interface {
	action()
}

type (
	SendChat           struct{ Text string }
	QuickQuestion      struct{ Index int }
	RefreshDocuments   struct{}
	UploadDocument     struct{ Path string }
	RequestDelete      struct{ Name string }
	ConfirmDelete      struct{}
	CancelDelete       struct{}
	SwitchTab          struct{ Tab nav.Tab }
	WizardNext         struct{}
	WizardPrev         struct{}
	WizardSave         struct{}
	UpdateProfileField struct{ Field, Value string }
	ResetChat          struct{}
)

func (SendChat) action()           {}
func (QuickQuestion) action()      {}
func (RefreshDocuments) action()   {}
func (UploadDocument) action()     {}
func (RequestDelete) action()      {}
func (ConfirmDelete) action()      {}
func (CancelDelete) action()       {}
func (SwitchTab) action()          {}
func (WizardNext) action()         {}
func (WizardPrev) action()         {}
func (WizardSave) action()         {}
func (UpdateProfileField) action() {}
func (ResetChat) action()          {}

// ErrRejected is returned when an action is not allowed in the current
// state, e.g. a second query while one is pending.
var ErrRejected = errors.New("action not allowed in the current state")

// Dispatch applies a, blocking until any network call it needs finishes.
func (s *Store) Dispatch(ctx context.Context, a Action) error {
	switch a := a.(type) {
	case SendChat:
		_, err := s.SendChat(ctx, a.Text)
		return err
	case QuickQuestion:
		_, err := s.AskQuickQuestion(ctx, a.Index)
		return err
	case RefreshDocuments:
		return s.Library.Refresh(ctx)
	case UploadDocument:
		return s.Library.UploadFile(ctx, a.Path)
	case RequestDelete:
		if !s.Library.RequestDelete(a.Name) {
			return ErrRejected
		}
		return nil
	case ConfirmDelete:
		return s.Library.ConfirmDelete(ctx)
	case CancelDelete:
		s.Library.CancelDelete()
		return nil
	case SwitchTab:
		return s.Nav.SwitchTab(a.Tab)
	case WizardNext:
		s.Nav.Next()
		return nil
	case WizardPrev:
		s.Nav.Prev()
		return nil
	case WizardSave:
		return s.Nav.Save(s.Profile, s.Notices)
	case UpdateProfileField:
		return s.Profile.Update(a.Field, a.Value)
	case ResetChat:
		s.Chat.Reset()
		s.Timer.Restart()
		return nil
	default:
		return fmt.Errorf("unknown action %T", a)
	}
}

// SendChat submits a query and returns the reply (or fallback reply).
func (s *Store) SendChat(ctx context.Context, text string) (model.Message, error) {
	reply, ok := s.Chat.Send(ctx, text)
	if !ok {
		return model.Message{}, ErrRejected
	}
	return reply, nil
}

// AskQuickQuestion sends the i-th starter prompt.
func (s *Store) AskQuickQuestion(ctx context.Context, i int) (model.Message, error) {
	q, ok := chat.QuickQuestion(i)
	if !ok {
		return model.Message{}, fmt.Errorf("no quick question %d", i)
	}
	return s.SendChat(ctx, q)
}
