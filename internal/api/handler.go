package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RichardoC/athena/internal/models"
)

const SessionCookie = "athena_session"

// Replier is implemented by llm.Service.
type Replier interface {
	Reply(ctx context.Context, sessionID string, mode models.Mode, message string) (string, error)
	Reset(sessionID string) error
}

type Handler struct {
	llm    Replier
	logger *zap.Logger
}

func NewHandler(llmService Replier, logger *zap.Logger) *Handler {
	return &Handler{
		llm:    llmService,
		logger: logger,
	}
}

type AskRequest struct {
	Message string `json:"message"`
	Mode    string `json:"mode"`
}

type AskResponse struct {
	Reply string `json:"reply"`
}

type ResetResponse struct {
	Reset bool `json:"reset"`
}

// Routes registers the service endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ask", h.HandleAsk)
	mux.HandleFunc("/reset", h.HandleReset)
}

func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	sessionID := h.session(w, r)
	mode := models.ParseMode(req.Mode)

	reply, err := h.llm.Reply(r.Context(), sessionID, mode, req.Message)
	if err != nil {
		// The client shows whatever comes back, so the error travels as the reply.
		h.logger.Error("Failed to process message",
			zap.Error(err),
			zap.String("session", sessionID),
			zap.String("mode", string(mode)))
		reply = "⚠️ Error: " + err.Error()
	}

	h.writeJSON(w, AskResponse{Reply: reply})
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := h.session(w, r)
	if err := h.llm.Reset(sessionID); err != nil {
		h.logger.Error("Failed to reset session", zap.Error(err), zap.String("session", sessionID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.logger.Info("Session reset", zap.String("session", sessionID))
	h.writeJSON(w, ResetResponse{Reset: true})
}

// session returns the caller's session id, issuing a cookie when there is none.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
