package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/wuwenbin0122/goal-planner/internal/conversation"
	"github.com/wuwenbin0122/goal-planner/internal/planner"
)

type chatRequest struct {
	Message         string         `json:"message"`
	SessionID       string         `json:"session_id"`
	StrategyContext string         `json:"strategy_context"`
	Goal            string         `json:"goal"`
	Deadline        string         `json:"deadline"`
	FreeTime        flexibleString `json:"free_time"`
}

func (r chatRequest) input() conversation.ChatInput {
	return conversation.ChatInput{
		SessionID: r.SessionID,
		Message:   r.Message,
		Context: planner.StrategyContext{
			Strategy: r.StrategyContext,
			Goal:     r.Goal,
			Deadline: r.Deadline,
			FreeTime: string(r.FreeTime),
		},
	}
}

// flexibleString accepts a JSON string, number or null. Pages post free_time
// back as whatever type they rendered it with.
type flexibleString string

func (f *flexibleString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*f = ""
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("free_time must be a string or number: %w", err)
	}
	*f = flexibleString(n.String())
	return nil
}
