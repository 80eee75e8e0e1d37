package handlers

import (
	"net/http"

	"riskatlas-api/internal/config"
)

type HealthHandler struct {
	provider   string
	model      string
	configured bool
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		provider:   cfg.LLMProvider,
		model:      cfg.LLMModel,
		configured: cfg.APIKey() != "",
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "ok",
		"provider":           h.provider,
		"model":              h.model,
		"api_key_configured": h.configured,
	})
}
