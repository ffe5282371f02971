// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package library

// Phase is where the delete flow stands.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingConfirmation
	PhaseDeleting
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingConfirmation:
		return "awaiting-confirmation"
	case PhaseDeleting:
		return "deleting"
	default:
		return "idle"
	}
}

// DeleteState is the two-phase delete machine. Name is empty exactly when
// Phase is PhaseIdle.
//
//	Idle --RequestDelete(n)--> AwaitingConfirmation(n)
//	AwaitingConfirmation(n) --CancelDelete--> Idle
//	AwaitingConfirmation(n) --BeginDelete--> Deleting(n)
//	Deleting(n) --FinishDelete--> Idle
type DeleteState struct {
	Phase Phase
	Name  string
}

// Idle reports whether no delete is requested or running.
func (s DeleteState) Idle() bool {
	return s.Phase == PhaseIdle
}

// Confirming reports whether the confirmation prompt should be shown.
func (s DeleteState) Confirming() bool {
	return s.Phase == PhaseAwaitingConfirmation
}

// Deleting reports whether the delete call is outstanding.
func (s DeleteState) Deleting() bool {
	return s.Phase == PhaseDeleting
}
