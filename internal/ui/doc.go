// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package ui is the full-screen Bubble Tea front end.

The root Model renders the tab bar, the active screen, notices and a
status bar. It holds only widgets and cursors; all domain state lives in
the app.Store it is given.

Network calls never run on the update loop. A key press that needs the
backend begins the operation on its controller, returns a command that
performs the call, and the resulting completion message is applied
through the controller's Complete or Finish method:

	enter  -> Chat.Begin        -> exchangeCmd -> chatReplyMsg -> Chat.Complete
	y      -> Library.BeginDelete -> deleteCmd -> deleteDoneMsg -> Library.FinishDelete

# Usage

	store, _ := app.Open(cfg, log)
	err := ui.Run(ctx, store, ui.Options{GlamourStyle: "auto", ShowTimer: true}, true, log)
*/
package ui
