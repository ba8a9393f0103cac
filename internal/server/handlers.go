package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zhengyanglee07/Let-s-Chat/internal/directory"
	"github.com/zhengyanglee07/Let-s-Chat/pkg/protocol"
)

// handleVerifiedUsers returns the identity provider's verified accounts.
func (s *Server) handleVerifiedUsers(c *gin.Context) {
	users, err := s.dir.VerifiedUsers(c.Request.Context())
	if err != nil {
		s.log.Error("failed to list verified users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	if users == nil {
		users = []directory.User{}
	}
	c.JSON(http.StatusOK, users)
}

// handleListMessages returns a conversation's history, ascending by creation
// time. This is the page-load path; the relay core never reads history.
func (s *Server) handleListMessages(c *gin.Context) {
	chatID := c.Query("chatId")
	if chatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chatId is required"})
		return
	}

	messages, err := s.store.ByChat(c.Request.Context(), chatID)
	if err != nil {
		s.log.Error("failed to query messages",
			zap.String("chatId", chatID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query messages"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

// handleAppendMessage stores one message without relaying it. The web client
// posts here in parallel with the socket path.
func (s *Server) handleAppendMessage(c *gin.Context) {
	var msg protocol.ChatMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message payload"})
		return
	}
	if msg.ChatID == "" || msg.Sender == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chatId and sender are required"})
		return
	}

	if err := s.store.Append(c.Request.Context(), msg); err != nil {
		s.log.Error("failed to store message",
			zap.String("chatId", msg.ChatID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// handlePresence returns the current online snapshot, so a late-joining
// client does not have to wait for the next presence broadcast.
func (s *Server) handlePresence(c *gin.Context) {
	users := s.hub.OnlineUsers()
	if users == nil {
		users = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
