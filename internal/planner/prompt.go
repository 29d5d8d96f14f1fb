package planner

import (
	"fmt"
	"strings"
	"time"
)

// DateTimeLayout renders timestamps inside prompts, e.g. "March 05, 2025 at 02:30 PM".
const DateTimeLayout = "January 02, 2006 at 03:04 PM"

// StrategySystemPrompt is the system message sent with every strategy request.
const StrategySystemPrompt = "You are a helpful goal planning assistant. Always consider the current date and time context provided. " +
	"Provide detailed, actionable advice formatted with clear headings and bullet points."

const chatSystemPrompt = "You are a helpful goal planning assistant. Always be aware of the current date and time context provided in user messages. " +
	"Provide practical, time-aware advice."

// StrategyPromptData is the typed input of BuildStrategyPrompt.
type StrategyPromptData struct {
	Request GoalRequest
	Now     time.Time
}

// StrategyContext is the client-held snapshot of a generated strategy that
// accompanies each chat message. It is never stored server-side.
type StrategyContext struct {
	Strategy string
	Goal     string
	Deadline string
	FreeTime string
}

type strategySection struct {
	title  string
	detail string
}

func strategySections(freeTime string) []strategySection {
	return []strategySection{
		{"Timeline & Milestones", "Break down the goal into weekly milestones"},
		{"Daily Actions", fmt.Sprintf("Specific daily tasks that fit within %s hours", freeTime)},
		{"Potential Obstacles", "Common challenges and how to overcome them"},
		{"Resources Needed", "Tools, materials, or support required"},
		{"Progress Tracking", "How to measure success along the way"},
	}
}

// BuildStrategyPrompt renders the instruction asking the model for a
// five-section goal strategy.
func BuildStrategyPrompt(data StrategyPromptData) string {
	now := FormatDateTime(data.Now)
	freeTime := data.Request.FreeTimeString()
	daysRemaining := data.Request.DaysRemaining(data.Now)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Today is %s.\n\n", now))
	builder.WriteString("I need help creating a personalized goal achievement strategy with the following details:\n")
	builder.WriteString(fmt.Sprintf("- Goal: %s\n", data.Request.Goal))
	builder.WriteString(fmt.Sprintf("- Deadline: %s\n", data.Request.DeadlineString()))
	builder.WriteString(fmt.Sprintf("- Days remaining: %d\n", daysRemaining))
	builder.WriteString(fmt.Sprintf("- Daily available time: %s hours\n\n", freeTime))

	builder.WriteString("Please create a comprehensive strategy that includes:\n")
	for i, section := range strategySections(freeTime) {
		builder.WriteString(fmt.Sprintf("%d. **%s**: %s\n", i+1, section.title, section.detail))
	}

	builder.WriteString(fmt.Sprintf("\nConsider the current date (%s) and the time constraint of %d days.\n", now, daysRemaining))
	builder.WriteString("Format your response with clear headings and bullet points for easy reading.")

	return builder.String()
}

// BuildChatSystemPrompt renders the system message for a follow-up chat.
// Goal details and the strategy text are included only when sc.Strategy is set.
func BuildChatSystemPrompt(sc StrategyContext, now time.Time) string {
	var builder strings.Builder
	builder.WriteString(chatSystemPrompt)
	builder.WriteString(" Current session time: ")
	builder.WriteString(FormatDateTime(now))

	if sc.Strategy == "" {
		return builder.String()
	}

	builder.WriteString("\n\nUser's Current Goal Information:\n")
	builder.WriteString(fmt.Sprintf("- Goal: %s\n", sc.Goal))
	builder.WriteString(fmt.Sprintf("- Deadline: %s\n", sc.Deadline))
	builder.WriteString(fmt.Sprintf("- Daily available time: %s hours\n\n", sc.FreeTime))
	builder.WriteString("Generated Strategy:\n")
	builder.WriteString(sc.Strategy)
	builder.WriteString("\n\nWhen answering questions, reference this strategy and goal information to provide personalized, relevant advice.")

	return builder.String()
}

// UserTurnContent tags a chat message with the time it was sent.
func UserTurnContent(message string, now time.Time) string {
	return fmt.Sprintf("[Current time: %s] %s", FormatDateTime(now), message)
}

func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}
