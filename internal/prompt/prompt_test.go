package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChatMessages_SingleMessage(t *testing.T) {
	messages := BuildChatMessages("plan my day", nil, "")

	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, ChatSystemPrompt, messages[0].Content)
	assert.Equal(t, "user", messages[1].Role)
	assert.Equal(t, "plan my day", messages[1].Content)
}

func TestBuildChatMessages_HistoryWins(t *testing.T) {
	history := []Message{
		{Role: "user", Content: "first turn"},
		{Role: "assistant", Content: "first reply"},
		{Role: "user", Content: "second turn"},
	}

	messages := BuildChatMessages("ignored", history, "")

	require.Len(t, messages, 4)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, history, messages[1:])
}

func TestBuildChatMessages_ContextFoldedIntoSystem(t *testing.T) {
	messages := BuildChatMessages("hi", nil, "3 meetings today, focus block at 2pm")

	assert.Contains(t, messages[0].Content, ChatSystemPrompt)
	assert.Contains(t, messages[0].Content, "3 meetings today, focus block at 2pm")
}

func TestBuildInsightsMessages_EmptySnapshots(t *testing.T) {
	messages := BuildInsightsMessages(nil, nil, "")

	require.Len(t, messages, 2)
	assert.Equal(t, InsightsSystemPrompt, messages[0].Content)
	assert.Contains(t, messages[1].Content, "Time range: week")
	assert.Contains(t, messages[1].Content, "Tasks (0): []")
	assert.Contains(t, messages[1].Content, "Goals (0): []")
}

func TestBuildInsightsMessages_CountsAndData(t *testing.T) {
	tasks := []interface{}{
		map[string]interface{}{"title": "Ship report", "done": true},
		map[string]interface{}{"title": "Review PRs", "done": false},
	}
	goals := []interface{}{
		map[string]interface{}{"title": "Inbox zero"},
	}

	messages := BuildInsightsMessages(tasks, goals, "month")

	assert.Contains(t, messages[1].Content, "Time range: month")
	assert.Contains(t, messages[1].Content, "Tasks (2):")
	assert.Contains(t, messages[1].Content, "Goals (1):")
	assert.Contains(t, messages[1].Content, "Ship report")
	assert.Contains(t, messages[1].Content, "Inbox zero")
}

func TestBuildSuggestionsMessages_DefaultCount(t *testing.T) {
	messages := BuildSuggestionsMessages("deep work morning", nil, nil, 0)

	require.Len(t, messages, 2)
	assert.Equal(t, SuggestionsSystemPrompt, messages[0].Content)
	assert.Contains(t, messages[1].Content, "Produce 5 suggestions.")
	assert.Contains(t, messages[1].Content, "Context: deep work morning")
}

func TestBuildSuggestionsMessages_ExplicitCount(t *testing.T) {
	messages := BuildSuggestionsMessages("", nil, nil, 3)

	assert.Contains(t, messages[1].Content, "Produce 3 suggestions.")
}

func TestBuildWeeklyReportMessages(t *testing.T) {
	messages := BuildWeeklyReportMessages("2026-08-24")

	require.Len(t, messages, 2)
	assert.Equal(t, WeeklyReportSystemPrompt, messages[0].Content)
	assert.Contains(t, messages[1].Content, "2026-08-24")
}
