package handlers

import (
	"net/http"
	"time"

	"github.com/docuchat-labs/docuchat/internal/api"
	"github.com/docuchat-labs/docuchat/internal/domain"
)

type ConversationLog interface {
	History() []domain.ConversationTurn
	Reset()
}

type HistoryHandler struct {
	log ConversationLog
}

func NewHistoryHandler(log ConversationLog) *HistoryHandler {
	return &HistoryHandler{log: log}
}

type ConversationTurnResponse struct {
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	CitedChunks []string `json:"cited_chunks"`
	CreatedAt   string   `json:"created_at"`
}

type HistoryResponse struct {
	Turns []*ConversationTurnResponse `json:"turns"`
}

// List returns the conversation history, oldest turn first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	turns := h.log.History()

	items := make([]*ConversationTurnResponse, len(turns))
	for i, turn := range turns {
		cited := turn.CitedChunks
		if cited == nil {
			cited = []string{}
		}
		items[i] = &ConversationTurnResponse{
			Question:    turn.Question,
			Answer:      turn.Answer,
			CitedChunks: cited,
			CreatedAt:   turn.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	api.Success(w, http.StatusOK, HistoryResponse{Turns: items})
}

// Reset clears the conversation history.
func (h *HistoryHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.log.Reset()
	api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
}
