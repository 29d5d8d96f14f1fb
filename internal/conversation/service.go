package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wuwenbin0122/goal-planner/internal/models"
	"github.com/wuwenbin0122/goal-planner/internal/planner"
)

// Responder produces the assistant's next reply for a conversation.
type Responder interface {
	ContinueConversation(ctx context.Context, history []models.Turn, sc planner.StrategyContext) (string, error)
}

type ChatInput struct {
	SessionID string
	Message   string
	Context   planner.StrategyContext
}

// Service runs chat exchanges. Exchanges on the same session are serialized;
// different sessions run concurrently.
type Service struct {
	store     Store
	responder Responder
	locks     *SessionLocks
	now       func() time.Time
	logger    *zap.SugaredLogger
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, responder Responder, logger *zap.SugaredLogger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	s := &Service{
		store:     store,
		responder: responder,
		locks:     NewSessionLocks(),
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chat records the user's message, asks the responder for a reply using the
// whole session history and records the reply. When the responder fails the
// user turn stays in the history and the error is returned unchanged.
func (s *Service) Chat(ctx context.Context, in ChatInput) (string, error) {
	if strings.TrimSpace(in.SessionID) == "" {
		return "", ErrEmptySessionID
	}
	if strings.TrimSpace(in.Message) == "" {
		return "", ErrEmptyMessage
	}

	unlock := s.locks.Lock(in.SessionID)
	defer unlock()

	history, err := s.store.GetOrCreate(ctx, in.SessionID)
	if err != nil {
		return "", fmt.Errorf("conversation: load session: %w", err)
	}

	now := s.now()
	userTurn := models.Turn{
		Role:      models.RoleUser,
		Content:   planner.UserTurnContent(in.Message, now),
		CreatedAt: now,
	}
	if err := s.store.Append(ctx, in.SessionID, userTurn); err != nil {
		return "", fmt.Errorf("conversation: append user turn: %w", err)
	}
	history = append(history, userTurn)

	reply, err := s.responder.ContinueConversation(ctx, history, in.Context)
	if err != nil {
		s.logger.Warnw("chat reply failed", "session_id", in.SessionID, "turns", len(history), "error", err)
		return "", err
	}

	assistantTurn := models.Turn{
		Role:      models.RoleAssistant,
		Content:   reply,
		CreatedAt: s.now(),
	}
	if err := s.store.Append(ctx, in.SessionID, assistantTurn); err != nil {
		return "", fmt.Errorf("conversation: append assistant turn: %w", err)
	}

	s.logger.Debugw("chat reply recorded", "session_id", in.SessionID, "turns", len(history)+1)
	return reply, nil
}
