package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"meal-genie/internal/chat"
)

func (s *Server) createChat(c *gin.Context) {
	u := currentUser(c)
	now := time.Now()
	rec := chat.Record{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Title:     "New Conversation",
		Messages:  []chat.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.chats.Create(c.Request.Context(), &rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to create chat"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) listChats(c *gin.Context) {
	u := currentUser(c)
	records, err := s.chats.ListByUser(c.Request.Context(), u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to list chats"})
		return
	}
	if records == nil {
		records = []chat.Record{}
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) getChat(c *gin.Context) {
	u := currentUser(c)
	rec, err := s.chats.GetByID(c.Request.Context(), c.Param("id"), u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to get chat"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "chat not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

type messageRequest struct {
	Message string `json:"message" binding:"required"`
}

// postChatMessage appends the user message, generates the assistant reply
// synchronously, and returns both new messages. The first exchange of a
// conversation also generates its title.
func (s *Server) postChatMessage(c *gin.Context) {
	u := currentUser(c)

	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "message is required"})
		return
	}

	rec, err := s.chats.GetByID(c.Request.Context(), c.Param("id"), u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to get chat"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "chat not found"})
		return
	}

	userMessage := chat.Message{
		Content:   req.Message,
		IsUser:    true,
		Timestamp: time.Now(),
	}
	history := append(rec.Messages, userMessage)

	reply, err := s.chatSvc.Reply(c.Request.Context(), history)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to generate response"})
		return
	}
	aiMessage := chat.Message{
		Content:   reply,
		IsUser:    false,
		Timestamp: time.Now(),
	}

	title := rec.Title
	if len(rec.Messages) == 0 {
		generated, err := s.chatSvc.Title(c.Request.Context(), req.Message)
		if err != nil {
			log.Printf("Failed to generate chat title for %s: %v", rec.ID, err)
		} else {
			title = generated
		}
	}

	messages := append(history, aiMessage)
	if err := s.chats.Update(c.Request.Context(), rec.ID, title, messages, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to save chat"})
		return
	}

	c.JSON(http.StatusOK, []chat.Message{userMessage, aiMessage})
}
