// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/knowme-tui/internal/app"
	"github.com/jeranaias/knowme-tui/internal/config"
)

func newChatCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Line-mode chat with input history",
		Long: `Chat without the full-screen interface. Up and down recall earlier
questions; history is kept in ~/.knowme/chat_history.

Commands: /new starts over, /profile shows what I know about you,
/docs lists your documents, /quit leaves.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(a.In) {
				return &TTYRequiredError{Operation: "chat"}
			}
			store, err := a.Store()
			if err != nil {
				return err
			}
			historyFile, err := config.HistoryPath()
			if err != nil {
				return err
			}
			line := NewChatCLI(historyFile)
			defer line.Close()
			return a.runREPL(cmd.Context(), line, store)
		},
	}
}

// =============================================================================
// LINE EDITING
// =============================================================================

// Prompter reads one line of input.
type Prompter interface {
	Prompt(prompt string) (string, error)
}

// ChatCLI provides input history and line editing for the REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor with history loaded from historyFile.
func NewChatCLI(historyFile string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	c := &ChatCLI{line: line, historyFile: historyFile}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// Prompt reads a line and records it in history.
func (c *ChatCLI) Prompt(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists history, readable by the owner only.
func (c *ChatCLI) SaveHistory() {
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

func (a *App) runREPL(ctx context.Context, in Prompter, store *app.Store) error {
	fmt.Fprintln(a.Out, TitleStyle.Render("KnowMe")+" "+DimStyle.Render("type /help for commands, /quit to leave"))

	for {
		input, err := in.Prompt(PromptStyle.Render("knowme> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(a.Out)
				a.printSessionSummary(store)
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		input = strings.TrimSpace(input)
		switch input {
		case "":
			continue
		case "/quit", "/exit":
			a.printSessionSummary(store)
			return nil
		case "/help":
			fmt.Fprintln(a.Out, DimStyle.Render("/new  start over   /profile  what I know   /docs  your documents   /quit  leave"))
			continue
		case "/new":
			store.Dispatch(ctx, app.ResetChat{})
			fmt.Fprintln(a.Out, DimStyle.Render("Started a new conversation."))
			continue
		case "/profile":
			if c := store.Profile.Context(); c != "" {
				fmt.Fprintln(a.Out, c)
			} else {
				fmt.Fprintln(a.Out, DimStyle.Render("Your profile is empty. Run 'knowme profile set' or use the wizard."))
			}
			continue
		case "/docs":
			if err := store.Library.Refresh(ctx); err != nil {
				fmt.Fprintln(a.Out, ErrorStyle.Render("[X] ")+errorText(err))
				continue
			}
			for _, d := range store.Library.Documents() {
				fmt.Fprintln(a.Out, "  "+d.Name+"  "+DimStyle.Render(d.SizeLabel()))
			}
			fmt.Fprintln(a.Out, DimStyle.Render(fmt.Sprintf("%d documents", store.Library.Count())))
			continue
		}

		reqCtx, cancel := a.requestContext(ctx)
		reply, err := exchange(reqCtx, store, input)
		cancel()
		if err != nil {
			a.log.Warn("chat exchange failed", zap.Error(err))
		}
		a.printReply(reply, false)
		fmt.Fprintln(a.Out)
	}
}

func (a *App) printSessionSummary(store *app.Store) {
	fmt.Fprintln(a.Out, DimStyle.Render(fmt.Sprintf("Session %s, %d messages.", store.Timer.Label(), store.Chat.Len())))
}
