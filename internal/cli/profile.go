// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/knowme-tui/internal/app"
	"github.com/jeranaias/knowme-tui/internal/profile"
)

func newProfileCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit what KnowMe knows about you",
	}
	cmd.AddCommand(
		newProfileShowCommand(a),
		newProfileSetCommand(a),
		newProfileClearCommand(a),
		newProfileFieldsCommand(a),
	)
	return cmd
}

// ProfileData is the structured form of profile show.
type ProfileData struct {
	Fields  map[string]string `json:"fields" yaml:"fields"`
	Context string            `json:"context" yaml:"context"`
}

func newProfileShowCommand(a *App) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.Store()
			if err != nil {
				return err
			}
			p := store.Profile.Profile()
			data := ProfileData{Fields: map[string]string{}, Context: profile.DeriveContext(p)}
			for k, v := range p {
				if strings.TrimSpace(v) != "" {
					data.Fields[k] = v
				}
			}

			if a.jsonMode {
				format = "json"
			}
			switch format {
			case "json":
				return NewJSONResponse("profile show", data).Write(a.Out)
			case "yaml":
				out, err := yaml.Marshal(data)
				if err != nil {
					return fmt.Errorf("encode profile: %w", err)
				}
				_, err = a.Out.Write(out)
				return err
			case "text", "":
				a.printProfile(p)
				return nil
			default:
				return &ValidationError{Field: "format", Value: format, Reason: "must be text, json or yaml", Example: "knowme profile show --format yaml"}
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json, yaml")
	return cmd
}

func (a *App) printProfile(p profile.Profile) {
	if p.Empty() {
		fmt.Fprintln(a.Out, DimStyle.Render("Your profile is empty. Fill it in with 'knowme profile set' or the Personality wizard."))
		return
	}
	fmt.Fprintln(a.Out, TitleStyle.Render("Your profile"))
	for _, f := range profile.Fields {
		v := strings.TrimSpace(p[f.Key])
		if v == "" {
			continue
		}
		fmt.Fprintln(a.Out, RenderLabel(f.Key, v))
	}
	if c := profile.DeriveContext(p); c != "" {
		fmt.Fprintln(a.Out)
		fmt.Fprintln(a.Out, DimStyle.Render("Sent with each question: "+c))
	}
}

func newProfileSetCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key=value>...",
		Short: "Set profile fields (an empty value clears one)",
		Example: `  knowme profile set nickname=Sam life_focus=Career
  knowme profile set location=`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates := make([][2]string, 0, len(args))
			for _, arg := range args {
				key, value, ok := strings.Cut(arg, "=")
				key = strings.TrimSpace(key)
				if !ok {
					return &ValidationError{Field: "argument", Value: arg, Reason: "expected key=value", Example: "knowme profile set nickname=Sam"}
				}
				if _, known := profile.LookupField(key); !known {
					return &ValidationError{
						Field:   "key",
						Value:   key,
						Reason:  "unknown profile field (see 'knowme profile fields')",
						Example: "knowme profile set " + profile.KeyNickname + "=Sam",
					}
				}
				updates = append(updates, [2]string{key, value})
			}

			store, err := a.Store()
			if err != nil {
				return err
			}
			for _, u := range updates {
				if err := store.Dispatch(cmd.Context(), app.UpdateProfileField{Field: u[0], Value: u[1]}); err != nil {
					return err
				}
			}
			if a.jsonMode {
				return NewJSONResponse("profile set", store.Profile.Profile()).Write(a.Out)
			}
			fmt.Fprintln(a.Out, SuccessStyle.Render(fmt.Sprintf("Updated %d field(s).", len(updates))))
			return nil
		},
	}
}

func newProfileClearCommand(a *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Erase the whole profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.RequireConfirmation("clear your profile", ConfirmationOptions{Yes: yes, JSONMode: a.jsonMode})
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(a.Out, DimStyle.Render("Cancelled."))
				return nil
			}
			store, err := a.Store()
			if err != nil {
				return err
			}
			if err := store.Profile.Clear(); err != nil {
				return err
			}
			if a.jsonMode {
				return NewJSONResponse("profile clear", map[string]bool{"cleared": true}).Write(a.Out)
			}
			fmt.Fprintln(a.Out, SuccessStyle.Render("Profile cleared."))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newProfileFieldsCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the profile keys and their questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonMode {
				type field struct {
					Key     string   `json:"key"`
					Step    int      `json:"step"`
					Prompt  string   `json:"prompt"`
					Choices []string `json:"choices,omitempty"`
				}
				out := make([]field, 0, len(profile.Fields))
				for _, f := range profile.Fields {
					out = append(out, field{f.Key, f.Step, f.Prompt, f.Choices})
				}
				return NewJSONResponse("profile fields", out).Write(a.Out)
			}
			for _, f := range profile.Fields {
				line := RenderLabel(f.Key, f.Prompt)
				if len(f.Choices) > 0 {
					line += DimStyle.Render(" (" + strings.Join(f.Choices, ", ") + ")")
				}
				fmt.Fprintln(a.Out, line)
			}
			return nil
		},
	}
}
