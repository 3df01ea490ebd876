package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"github.com/calemaley/airbnb/internal/app/dto"
	assistantapp "github.com/calemaley/airbnb/internal/app/handlers/assistant"
	"github.com/calemaley/airbnb/internal/app/policies"
	"github.com/calemaley/airbnb/internal/app/queries"
)

type AssistantHandler struct {
	Queries queries.Bus
}

type askAssistantRequest struct {
	Question string              `json:"question"`
	History  []dto.AssistantTurn `json:"history"`
}

func (h AssistantHandler) Ask(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant unavailable"})
		return
	}
	var req askAssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	query := assistantapp.AskQuery{
		Question: req.Question,
		History:  req.History,
	}
	result, err := queries.Ask[assistantapp.AskQuery, dto.AssistantAnswer](c.Request.Context(), h.Queries, query)
	if err != nil {
		switch {
		case errors.Is(err, assistantapp.ErrQuestionRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, policies.ErrAssistantUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AssistantHTTP = AssistantHandler{}
