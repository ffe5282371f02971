// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// QuestionGroup is a themed set of starter prompts shown on the welcome
// view.
type QuestionGroup struct {
	Title     string
	Questions []string
}

// QuickQuestions are the starter prompts. Picking one sends it like typed
// input.
var QuickQuestions = []QuestionGroup{
	{
		Title: "Ask",
		Questions: []string{
			"What are the key objectives and deliverables of this project?",
			"How will tasks be assigned, and who is responsible for each one?",
		},
	},
	{
		Title: "Summarize",
		Questions: []string{
			"How can I communicate my points clearly and persuasively?",
			"Can you propose a new idea, or advocate for a change?",
		},
	},
	{
		Title: "Discover",
		Questions: []string{
			"What are the company's long-term goals and core values?",
			"What is our policy for remote work this year?",
		},
	},
}

// AllQuickQuestions flattens QuickQuestions in display order.
func AllQuickQuestions() []string {
	var out []string
	for _, g := range QuickQuestions {
		out = append(out, g.Questions...)
	}
	return out
}

// QuickQuestion returns the i-th prompt of AllQuickQuestions.
func QuickQuestion(i int) (string, bool) {
	all := AllQuickQuestions()
	if i < 0 || i >= len(all) {
		return "", false
	}
	return all[i], true
}
