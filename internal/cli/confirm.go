// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"fmt"
	"strings"
)

// ConfirmationOptions control RequireConfirmation.
type ConfirmationOptions struct {
	// Yes indicates --yes was passed (skip the prompt).
	Yes bool
	// JSONMode requires --yes since nothing can be prompted.
	JSONMode bool
}

// RequireConfirmation asks before a destructive action. With --yes it
// proceeds; in JSON mode or without a terminal it refuses to guess.
func (a *App) RequireConfirmation(action string, opts ConfirmationOptions) (bool, error) {
	if opts.Yes {
		return true, nil
	}
	if opts.JSONMode {
		return false, &ValidationError{Field: "flags", Reason: "--json requires --yes to " + action}
	}
	if !a.interactive() {
		return false, &TTYRequiredError{Operation: "confirm " + action}
	}

	fmt.Fprintf(a.Out, "%s %s? [y/N]: ", WarningStyle.Render("[!]"), capitalize(action))
	reader := bufio.NewReader(a.In)
	answer, err := reader.ReadString('\n')
	if err != nil && answer == "" {
		return false, nil
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
