package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/transport/http/response"
)

type ChatHandler struct {
	queryService *app.QueryService
}

type AskRequest struct {
	Question string `json:"question" binding:"required,max=4096"`
}

func NewChatHandler(queryService *app.QueryService) *ChatHandler {
	return &ChatHandler{queryService: queryService}
}

func (h *ChatHandler) Ask(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.queryService.AnswerQuestion(c.Request.Context(), userID, req.Question)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrEmbeddingUnavailable):
			response.Error(c, http.StatusBadGateway, response.CodeEmbeddingDown, "embedding service is unavailable, try again later")
		case errors.Is(err, app.ErrSynthesisUnavailable):
			response.Error(c, http.StatusBadGateway, response.CodeSynthesisDown, "answer service is unavailable, try again later")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ask failed")
		}
		return
	}
	response.OK(c, result)
}

func (h *ChatHandler) History(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	limit := 0
	if s := c.Query("limit"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil {
			limit = parsed
		}
	}

	messages, err := h.queryService.History(userID, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list history failed")
		return
	}
	response.OK(c, messages)
}
