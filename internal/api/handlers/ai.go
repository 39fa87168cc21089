package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dvloznov/finance-advisor/internal/api/middleware"
	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/dvloznov/finance-advisor/internal/finance"
	"github.com/rs/zerolog"
)

// Advisor produces generated financial advice for a user.
type Advisor interface {
	Suggestion(ctx context.Context, userID string) (finance.Suggestion, error)
	Chat(ctx context.Context, userID, message string, history []domain.ChatMessage) (string, error)
}

// AIHandler handles the suggestion and chat endpoints.
type AIHandler struct {
	advisor Advisor
	log     zerolog.Logger
	now     func() time.Time
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(advisor Advisor, log zerolog.Logger) *AIHandler {
	return &AIHandler{
		advisor: advisor,
		log:     log,
		now:     time.Now,
	}
}

type suggestionResponse struct {
	Success          bool                     `json:"success"`
	Suggestion       string                   `json:"suggestion"`
	FinancialSummary finance.FinancialSummary `json:"financialSummary"`
}

// GetSuggestion handles GET /api/v1/ai/suggestion
func (h *AIHandler) GetSuggestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	s, err := h.advisor.Suggestion(ctx, userID)
	if err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log).With().Str("user_id", userID).Logger(), err, "Failed to generate suggestion")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, suggestionResponse{
		Success:          true,
		Suggestion:       s.Text,
		FinancialSummary: s.Summary,
	})
}

type chatRequest struct {
	Message             string               `json:"message"`
	ConversationHistory []domain.ChatMessage `json:"conversationHistory"`
}

type chatResponse struct {
	Success   bool      `json:"success"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Chat handles POST /api/v1/ai/chat
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserIDFromContext(ctx)

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log), err, "Chatbot failed")
		return
	}

	reply, err := h.advisor.Chat(ctx, userID, req.Message, req.ConversationHistory)
	if err != nil {
		middleware.WriteServiceError(w, requestLog(r, h.log).With().Str("user_id", userID).Logger(), err, "Chatbot failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, chatResponse{
		Success:   true,
		Response:  reply,
		Timestamp: h.now().UTC(),
	})
}
