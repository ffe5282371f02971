// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/knowme-tui/internal/config"
)

// statusProbeTimeout bounds the reachability check.
const statusProbeTimeout = 5 * time.Second

func newStatusCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration and whether the backend answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.collectStatus(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonMode {
				return NewJSONResponse("status", data).Write(a.Out)
			}
			a.printStatus(data)
			return nil
		},
	}
}

func (a *App) collectStatus(ctx context.Context) (StatusData, error) {
	data := StatusData{
		ConfigPath:     a.configPath,
		BaseURL:        a.cfg.API.BaseURL,
		ProfileBackend: a.cfg.Profile.Backend,
	}
	if data.ConfigPath == "" {
		data.ConfigPath, _ = config.ConfigPath()
	}
	data.ProfilePath, _ = a.cfg.ProfilePath()

	store, err := a.Store()
	if err != nil {
		return data, err
	}
	data.ProfileFields = len(store.Profile.Profile())

	ctx, cancel := context.WithTimeout(ctx, statusProbeTimeout)
	defer cancel()
	if _, err := store.Backend.FetchWelcome(ctx); err != nil {
		data.Error = errorText(err)
		return data, nil
	}
	data.Reachable = true
	if err := store.Library.Refresh(ctx); err == nil {
		data.Documents = store.Library.Count()
	}
	return data, nil
}

func (a *App) printStatus(d StatusData) {
	fmt.Fprintln(a.Out, TitleStyle.Render("KnowMe status"))
	fmt.Fprintln(a.Out, RenderLabel("Config", d.ConfigPath))
	fmt.Fprintln(a.Out, RenderLabel("Backend", d.BaseURL))
	if d.Reachable {
		fmt.Fprintln(a.Out, RenderLabel("Reachable", SuccessStyle.Render("yes")))
		fmt.Fprintln(a.Out, RenderLabel("Documents", fmt.Sprint(d.Documents)))
	} else {
		fmt.Fprintln(a.Out, RenderLabel("Reachable", ErrorStyle.Render("no")+" "+DimStyle.Render(d.Error)))
	}
	fmt.Fprintln(a.Out, RenderLabel("Profile storage", d.ProfileBackend+" "+DimStyle.Render(d.ProfilePath)))
	fmt.Fprintln(a.Out, RenderLabel("Profile fields", fmt.Sprint(d.ProfileFields)))
}
