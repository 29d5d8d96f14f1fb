package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/goal-planner/internal/conversation"
	"github.com/wuwenbin0122/goal-planner/internal/llm"
	"github.com/wuwenbin0122/goal-planner/internal/planner"
)

const indexTemplate = "index.html"

type StrategyGenerator interface {
	GenerateStrategy(ctx context.Context, prompt string) (string, error)
}

type ChatService interface {
	Chat(ctx context.Context, in conversation.ChatInput) (string, error)
}

type Handler struct {
	strategies StrategyGenerator
	chat       ChatService
	logger     *zap.SugaredLogger

	now          func() time.Time
	newSessionID func() string
}

func NewHandler(strategies StrategyGenerator, chat ChatService, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{
		strategies:   strategies,
		chat:         chat,
		logger:       logger,
		now:          time.Now,
		newSessionID: uuid.NewString,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.handleIndex)
	router.POST("/", h.handleSubmitGoal)

	router.POST("/chat", h.handleChat)
	router.GET("/chat/ws", h.handleChatWebsocket)
}

type pageData struct {
	Goal      string
	Deadline  string
	FreeTime  string
	Strategy  string
	Error     string
	SessionID string
}

func (h *Handler) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, indexTemplate, pageData{})
}

func (h *Handler) handleSubmitGoal(c *gin.Context) {
	goal := c.PostForm("goal")
	deadline := c.PostForm("deadline")
	freeTime := c.PostForm("free_time")

	req, err := planner.ParseGoalRequest(goal, deadline, freeTime)
	if err != nil {
		c.HTML(http.StatusBadRequest, indexTemplate, pageData{
			Goal:     goal,
			Deadline: deadline,
			FreeTime: freeTime,
			Error:    err.Error(),
		})
		return
	}

	prompt := planner.BuildStrategyPrompt(planner.StrategyPromptData{Request: req, Now: h.now()})

	strategy, err := h.strategies.GenerateStrategy(c.Request.Context(), prompt)
	if err != nil {
		h.logger.Warnw("generate strategy failed",
			"request_id", c.GetString(requestIDKey),
			"kind", llm.KindOf(err),
			"error", err,
		)
		c.HTML(http.StatusOK, indexTemplate, pageData{
			Goal:     req.Goal,
			Deadline: req.DeadlineString(),
			FreeTime: req.FreeTimeString(),
			Error:    "Error generating strategy: " + err.Error(),
		})
		return
	}

	c.HTML(http.StatusOK, indexTemplate, pageData{
		Goal:      req.Goal,
		Deadline:  req.DeadlineString(),
		FreeTime:  req.FreeTimeString(),
		Strategy:  strategy,
		SessionID: h.newSessionID(),
	})
}

func (h *Handler) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request payload", err)
		return
	}

	reply, err := h.chat.Chat(c.Request.Context(), req.input())
	if err != nil {
		status, body := h.chatError(c, req, err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply})
}

// chatError maps a chat failure to a status and JSON body shared by the
// HTTP and websocket endpoints.
func (h *Handler) chatError(c *gin.Context, req chatRequest, err error) (int, gin.H) {
	if errors.Is(err, conversation.ErrEmptySessionID) || errors.Is(err, conversation.ErrEmptyMessage) {
		return http.StatusBadRequest, gin.H{"error": err.Error()}
	}

	kind := llm.KindOf(err)
	h.logger.Warnw("chat failed",
		"request_id", c.GetString(requestIDKey),
		"session_id", req.SessionID,
		"kind", kind,
		"error", err,
	)
	return http.StatusInternalServerError, gin.H{"error": "Error: " + err.Error(), "kind": kind}
}

func writeError(c *gin.Context, status int, message string, err error) {
	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}
