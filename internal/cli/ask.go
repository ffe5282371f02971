// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/knowme-tui/internal/app"
	"github.com/jeranaias/knowme-tui/internal/model"
	"github.com/jeranaias/knowme-tui/internal/ui/render"
)

func newAskCommand(a *App) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask one question and print the answer",
		Example: `  knowme ask "What are my goals this year?"
  echo "Summarize my CV" | knowme ask`,
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			if strings.TrimSpace(question) == "" && !isTerminal(a.In) {
				data, err := io.ReadAll(a.In)
				if err != nil {
					return fmt.Errorf("read question from stdin: %w", err)
				}
				question = string(data)
			}
			if strings.TrimSpace(question) == "" {
				return &ValidationError{
					Field:   "question",
					Reason:  "question is empty",
					Example: `knowme ask "What do you know about me?"`,
				}
			}
			return a.ask(cmd.Context(), question, raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the answer without markdown rendering")
	return cmd
}

func (a *App) ask(ctx context.Context, question string, raw bool) error {
	store, err := a.Store()
	if err != nil {
		return err
	}
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	reply, err := exchange(ctx, store, question)
	if a.jsonMode {
		if err != nil {
			return err
		}
		return NewJSONResponse("ask", AskData{
			Question: strings.TrimSpace(question),
			Answer:   reply.Content,
			Sources:  reply.Sources,
		}).Write(a.Out)
	}

	a.printReply(reply, raw)
	return err
}

// exchange runs one query through the chat controller. The reply is the
// assistant's answer, or the fallback text when err is set.
func exchange(ctx context.Context, store *app.Store, question string) (model.Message, error) {
	req, ok := store.Chat.Begin(question)
	if !ok {
		return model.Message{}, &ValidationError{Field: "question", Reason: "another question is still waiting for an answer"}
	}
	res, err := store.Chat.Exchange(ctx, req)
	reply, _ := store.Chat.Complete(req, res, err)
	return reply, err
}

// printReply writes an assistant message, rendered as markdown when the
// output is a terminal.
func (a *App) printReply(reply model.Message, raw bool) {
	content := reply.Content
	if !raw && isTerminal(a.Out) {
		style := "auto"
		if a.cfg != nil {
			style = a.cfg.UI.GlamourStyle
		}
		content = render.NewMarkdown(style).Render(content, GetTerminalWidth()-4)
	}
	fmt.Fprintln(a.Out, content)
	if reply.HasSources() {
		fmt.Fprintln(a.Out, DimStyle.Render("Sources: "+reply.SourceLine()))
	}
	a.log.Debug("reply printed", zap.Int("sources", len(reply.Sources)))
}
