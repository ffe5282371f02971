// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

// Field describes one profile question.
type Field struct {
	Key    string
	Label  string // name used in the derived context, empty if not injected
	Step   int    // wizard step that asks for it
	Prompt string
	// Choices, when set, are the suggested answers.
	Choices []string
}

// Profile keys.
const (
	KeyNickname       = "nickname"
	KeyLifeFocus      = "life_focus"
	KeyMotivation     = "motivation"
	KeyLocation       = "location"
	KeyTonePreference = "tone_preference"
	KeyResponseLength = "response_length"
	KeyInterests      = "interests"
	KeyGoals          = "goals"
)

// Fields lists every question in wizard order. Only the first six carry a
// context label; the rest are kept for the user's own reference.
var Fields = []Field{
	{Key: KeyNickname, Label: "Name", Step: 1, Prompt: "What should I call you?"},
	{Key: KeyLifeFocus, Label: "Focus", Step: 2, Prompt: "What is your main focus in life right now?",
		Choices: []string{"Career", "Studies", "Family", "Health", "Creativity", "Personal growth"}},
	{Key: KeyMotivation, Label: "Motivation", Step: 3, Prompt: "What motivates you?"},
	{Key: KeyLocation, Label: "Location", Step: 4, Prompt: "Where are you based?"},
	{Key: KeyTonePreference, Label: "Preferred tone", Step: 5, Prompt: "How should I talk to you?",
		Choices: []string{"Friendly", "Professional", "Casual", "Encouraging", "Direct"}},
	{Key: KeyResponseLength, Label: "Response style", Step: 6, Prompt: "How long should my answers be?",
		Choices: []string{"Brief", "Balanced", "Detailed"}},
	{Key: KeyInterests, Step: 7, Prompt: "What are you interested in?"},
	{Key: KeyGoals, Step: 7, Prompt: "Any goals you want me to keep in mind?"},
}

// FieldsForStep returns the questions asked on one wizard step.
func FieldsForStep(step int) []Field {
	var out []Field
	for _, f := range Fields {
		if f.Step == step {
			out = append(out, f)
		}
	}
	return out
}

// LookupField finds a field by key.
func LookupField(key string) (Field, bool) {
	for _, f := range Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}
