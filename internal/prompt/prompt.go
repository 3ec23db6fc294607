// Package prompt builds the chat-completion message lists sent to the
// text-generation upstream. Prompt text lives here, away from HTTP
// concerns, so the embedding format is independently testable.
package prompt

import (
	"encoding/json"
	"fmt"
)

// Message is a single chat-completion message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const ChatSystemPrompt = `You are the SyncScript assistant, a productivity copilot.
You help users plan tasks, manage their calendar, and stay on top of goals.
Be concise and practical. When the user shares context about their schedule,
use it; never invent events or tasks the user did not mention.`

const InsightsSystemPrompt = `You analyze a user's tasks and goals and produce productivity insights.
Respond with a single JSON object of the shape:
{"summary": string, "completionRate": number, "focusAreas": [string], "recommendations": [string]}
Return only JSON, no prose.`

const SuggestionsSystemPrompt = `You suggest next actions for a productivity app user.
Respond with a single JSON array of suggestion objects:
[{"title": string, "reason": string, "priority": "low"|"medium"|"high"}]
Return only JSON, no prose.`

const WeeklyReportSystemPrompt = `You write a short weekly productivity report for a user.
Summarize wins, slipped tasks, and one focus recommendation for next week.
Plain text, under 200 words.`

// BuildChatMessages assembles the message list for the chat proxy. When the
// client supplies a full history it is used as-is after the system prompt;
// otherwise the single message becomes the user turn. Optional context is
// folded into the system prompt.
func BuildChatMessages(message string, history []Message, context string) []Message {
	system := ChatSystemPrompt
	if context != "" {
		system = system + "\n\nUser context:\n" + context
	}

	messages := []Message{{Role: "system", Content: system}}
	if len(history) > 0 {
		messages = append(messages, history...)
	} else {
		messages = append(messages, Message{Role: "user", Content: message})
	}
	return messages
}

// BuildInsightsMessages embeds the user's tasks and goals, with counts, into
// the analysis prompt
func BuildInsightsMessages(tasks, goals []interface{}, timeRange string) []Message {
	if timeRange == "" {
		timeRange = "week"
	}
	content := fmt.Sprintf("Time range: %s\nTasks (%d): %s\nGoals (%d): %s",
		timeRange, len(tasks), compactJSON(tasks), len(goals), compactJSON(goals))

	return []Message{
		{Role: "system", Content: InsightsSystemPrompt},
		{Role: "user", Content: content},
	}
}

// BuildSuggestionsMessages embeds the user's context, tasks, and goals into
// the suggestion prompt
func BuildSuggestionsMessages(context string, tasks, goals []interface{}, count int) []Message {
	if count <= 0 {
		count = 5
	}
	content := fmt.Sprintf("Produce %d suggestions.\nContext: %s\nTasks (%d): %s\nGoals (%d): %s",
		count, context, len(tasks), compactJSON(tasks), len(goals), compactJSON(goals))

	return []Message{
		{Role: "system", Content: SuggestionsSystemPrompt},
		{Role: "user", Content: content},
	}
}

// BuildWeeklyReportMessages assembles the scheduled report prompt
func BuildWeeklyReportMessages(weekOf string) []Message {
	return []Message{
		{Role: "system", Content: WeeklyReportSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Write the weekly report for the week of %s.", weekOf)},
	}
}

// compactJSON renders a possibly-nil slice as a JSON array, never "null"
func compactJSON(items []interface{}) string {
	if items == nil {
		items = []interface{}{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}
