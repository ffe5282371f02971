// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the KnowMe TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Indigo - Brand color, active tab and wizard progress
  - Purple - Assistant messages and quick questions
  - Cyan - Info notices and prompts
  - Emerald, Rose, Amber - Success, error and warning states

Every status color is paired with an ASCII indicator from StatusIndicators
so state never depends on color alone.

# Theme System (theme.go)

	theme := styles.NewTheme()
	theme.SetSize(width, height)
	header := theme.HeaderTitle.Render("KnowMe")
*/
package styles
