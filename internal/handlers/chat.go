package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"riskatlas-api/internal/config"
	"riskatlas-api/internal/logger"
	"riskatlas-api/internal/metrics"
	"riskatlas-api/internal/middleware"
	"riskatlas-api/internal/models"
	"riskatlas-api/internal/services"
)

// chatError is a failed relay. Client and config errors are raised before
// any upstream call; upstream errors after one was attempted.
type chatError struct {
	status  int
	outcome string
	message string
	details string
}

func (e *chatError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}
	return e.message
}

func clientError(status int, message string) *chatError {
	return &chatError{status: status, outcome: metrics.OutcomeClientError, message: message}
}

type ChatHandler struct {
	llm          services.LLMClient
	apiKeySet    bool
	provider     string
	model        string
	maxTokens    int
	systemPrompt string
	timeout      time.Duration
	maxBodyBytes int64
	metrics      *metrics.Metrics
}

// NewChatHandler wires the relay. llm may be nil when no credential is
// configured; every POST then fails with "API key not configured".
func NewChatHandler(llm services.LLMClient, cfg *config.Config, systemPrompt string, m *metrics.Metrics) *ChatHandler {
	return &ChatHandler{
		llm:          llm,
		apiKeySet:    cfg.APIKey() != "",
		provider:     cfg.LLMProvider,
		model:        cfg.LLMModel,
		maxTokens:    cfg.LLMMaxTokens,
		systemPrompt: systemPrompt,
		timeout:      time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		maxBodyBytes: cfg.MaxRequestBytes,
		metrics:      m,
	}
}

// Chat serves every method on the chat route so non-POST methods get the
// JSON 405 body rather than the router's plain one.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		h.fail(w, r, clientError(http.StatusMethodNotAllowed, "Method not allowed"))
		return
	}

	resp, cerr := h.relay(w, r)
	if cerr != nil {
		h.fail(w, r, cerr)
		return
	}

	h.metrics.ObserveRequest(metrics.OutcomeOK)
	writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) relay(w http.ResponseWriter, r *http.Request) (*models.ChatResponse, *chatError) {
	req, cerr := h.decode(w, r)
	if cerr != nil {
		return nil, cerr
	}

	if !h.apiKeySet || h.llm == nil {
		logger.L.Error("API key not configured", "provider", h.provider)
		return nil, &chatError{
			status:  http.StatusInternalServerError,
			outcome: metrics.OutcomeConfigError,
			message: "API key not configured",
		}
	}

	requestID := middleware.GetRequestID(r.Context())
	logger.L.Info("chat message received",
		"request_id", requestID,
		"message", req.Message,
		"history_turns", len(req.History),
	)

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	completion, err := h.llm.Complete(ctx, services.CompletionRequest{
		Model:     h.model,
		MaxTokens: h.maxTokens,
		System:    h.systemPrompt,
		Messages:  req.Conversation(),
	})
	h.metrics.ObserveUpstream(h.provider, time.Since(start), err)
	if err != nil {
		return nil, &chatError{
			status:  http.StatusInternalServerError,
			outcome: metrics.OutcomeUpstreamError,
			message: "Failed to process request",
			details: err.Error(),
		}
	}

	h.metrics.ObserveUsage(completion.Usage)
	logger.L.Info("response generated",
		"request_id", requestID,
		"input_tokens", completion.Usage.InputTokens,
		"output_tokens", completion.Usage.OutputTokens,
		"elapsed", time.Since(start).String(),
	)

	return &models.ChatResponse{Response: completion.Text, Usage: completion.Usage}, nil
}

// decode parses and validates the body. An empty body counts as {}.
func (h *ChatHandler) decode(w http.ResponseWriter, r *http.Request) (*models.ChatRequest, *chatError) {
	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	var req models.ChatRequest
	dec := json.NewDecoder(body)
	err := dec.Decode(&req)
	switch {
	case err == nil:
		err = expectEOF(dec)
	case errors.Is(err, io.EOF):
		err = nil
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, clientError(http.StatusRequestEntityTooLarge, "Request body too large")
		}
		return nil, clientError(http.StatusBadRequest, "Invalid request body")
	}

	if req.Message == "" {
		return nil, clientError(http.StatusBadRequest, "Message is required")
	}
	for _, turn := range req.History {
		if !models.ValidRole(turn.Role) {
			return nil, clientError(http.StatusBadRequest, "Invalid history")
		}
	}

	return &req, nil
}

var errTrailingData = errors.New("unexpected data after JSON body")

// expectEOF fails unless only whitespace follows the decoded value.
func expectEOF(dec *json.Decoder) error {
	var extra json.RawMessage
	err := dec.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return errTrailingData
	}
	return err
}

func (h *ChatHandler) fail(w http.ResponseWriter, r *http.Request, e *chatError) {
	h.metrics.ObserveRequest(e.outcome)

	switch e.outcome {
	case metrics.OutcomeUpstreamError:
		logger.L.Error("chat request failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", e,
		)
	case metrics.OutcomeClientError:
		logger.L.Debug("chat request rejected",
			"request_id", middleware.GetRequestID(r.Context()),
			"status", e.status,
			"reason", e.message,
		)
	}

	writeJSON(w, e.status, models.ErrorResponse{Error: e.message, Details: e.details})
}
