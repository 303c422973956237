package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/docuchat-labs/docuchat/internal/api"
	"github.com/docuchat-labs/docuchat/internal/service"
)

type AskService interface {
	Ask(ctx context.Context, input service.AskInput) (*service.AskOutput, error)
}

type AskHandler struct {
	svc AskService
}

func NewAskHandler(svc AskService) *AskHandler {
	return &AskHandler{svc: svc}
}

type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

type RetrievedChunkResponse struct {
	ID         string  `json:"id"`
	DocumentID string  `json:"document_id"`
	Page       int     `json:"page,omitempty"`
	Score      float32 `json:"score"`
}

type AskResponse struct {
	Answer    string                    `json:"answer"`
	Grounded  bool                      `json:"grounded"`
	Citations []string                  `json:"citations"`
	Retrieved []*RetrievedChunkResponse `json:"retrieved"`
}

// Ask answers a question against the ingested corpus.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	output, err := h.svc.Ask(r.Context(), service.AskInput{
		Question: req.Question,
		TopK:     req.TopK,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	retrieved := make([]*RetrievedChunkResponse, len(output.Retrieved))
	for i, scored := range output.Retrieved {
		retrieved[i] = &RetrievedChunkResponse{
			ID:         scored.Chunk.ID,
			DocumentID: scored.Chunk.DocumentID,
			Page:       scored.Chunk.Page,
			Score:      scored.Score,
		}
	}

	citations := output.Citations
	if citations == nil {
		citations = []string{}
	}

	api.Success(w, http.StatusOK, AskResponse{
		Answer:    output.Answer,
		Grounded:  output.Grounded,
		Citations: citations,
		Retrieved: retrieved,
	})
}
