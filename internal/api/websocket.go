package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  16 * 1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleChatWebsocket serves the chat over a websocket: every text frame is
// a chat request and gets exactly one JSON reply frame.
func (h *Handler) handleChatWebsocket(c *gin.Context) {
	conn, err := chatUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnf("chat websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warnf("chat websocket closed unexpectedly: %v", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var req chatRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			if err := conn.WriteJSON(gin.H{"error": "invalid request payload", "details": err.Error()}); err != nil {
				return
			}
			continue
		}

		reply, err := h.chat.Chat(ctx, req.input())
		var frame gin.H
		if err != nil {
			_, frame = h.chatError(c, req, err)
		} else {
			frame = gin.H{"response": reply}
		}

		if err := conn.WriteJSON(frame); err != nil {
			h.logger.Warnf("chat websocket write failed: %v", err)
			return
		}
	}
}
