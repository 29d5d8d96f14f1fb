// Package conversation keeps per-session chat histories and runs chat
// exchanges against them one at a time per session.
package conversation

import (
	"context"
	"errors"

	"github.com/wuwenbin0122/goal-planner/internal/models"
)

var (
	ErrEmptySessionID = errors.New("conversation: session_id is required")
	ErrEmptyMessage   = errors.New("conversation: message is required")
)

// Store maps session ids to append-only turn sequences.
type Store interface {
	// GetOrCreate returns a copy of the session's turns, creating an empty
	// conversation for an unseen id.
	GetOrCreate(ctx context.Context, sessionID string) ([]models.Turn, error)

	// Append adds turn to the end of the session's conversation.
	Append(ctx context.Context, sessionID string, turn models.Turn) error
}
