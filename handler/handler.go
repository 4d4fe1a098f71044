package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"brainbox/internal/domain"
	"brainbox/internal/usecase"
)

const (
	correlationHeader     = "X-Correlation-Id"
	messagesPath          = "/messages"
	errorNotFound         = "NOT_FOUND"
	errorMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// ChatUseCase is the part of usecase.ChatService the handler drives.
type ChatUseCase interface {
	Send(ctx context.Context, in usecase.SendInput) (usecase.SendOutput, error)
	Clear(ctx context.Context) error
	Transcript() domain.Transcript
	Refresh(ctx context.Context) error
}

type Handler struct {
	chat   ChatUseCase
	logger *slog.Logger
}

type sendRequest struct {
	Text string `json:"text"`
}

type sendResponse struct {
	Message   domain.Message `json:"message"`
	Reply     domain.Message `json:"reply"`
	Persisted bool           `json:"persisted"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func NewHandler(chat ChatUseCase) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat use case must not be nil")
	}
	return &Handler{chat: chat, logger: slog.Default()}, nil
}

// Handle routes an API Gateway proxy request to the chat use case.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(req.Headers)
	logger := h.logger.With("correlation_id", corrID, "method", req.HTTPMethod, "path", req.Path)

	if strings.TrimRight(req.Path, "/") != messagesPath {
		return respond(corrID, http.StatusNotFound, errorResponse{Error: errorNotFound}), nil
	}

	// Another instance may have written since this one last read the store.
	if err := h.chat.Refresh(ctx); err != nil {
		logger.Warn("serving local transcript, refresh failed", "err", err)
	}

	switch req.HTTPMethod {
	case http.MethodGet:
		return respond(corrID, http.StatusOK, h.chat.Transcript()), nil

	case http.MethodPost:
		var body sendRequest
		if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
			logger.Info("rejecting malformed body", "err", err)
			return respond(corrID, http.StatusBadRequest, errorResponse{
				Error:  string(usecase.ErrorInvalidInput),
				Reason: "malformed_body",
			}), nil
		}
		out, err := h.chat.Send(ctx, usecase.SendInput{Text: body.Text})
		if err != nil {
			return h.respondError(logger, corrID, err), nil
		}
		if !out.Persisted {
			logger.Warn("reply sent but transcript write is outstanding")
		}
		return respond(corrID, http.StatusOK, sendResponse{
			Message:   out.User,
			Reply:     out.Reply,
			Persisted: out.Persisted,
		}), nil

	case http.MethodDelete:
		if err := h.chat.Clear(ctx); err != nil {
			return h.respondError(logger, corrID, err), nil
		}
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusNoContent,
			Headers:    map[string]string{correlationHeader: corrID},
		}, nil

	default:
		resp := respond(corrID, http.StatusMethodNotAllowed, errorResponse{Error: errorMethodNotAllowed})
		resp.Headers["Allow"] = "GET, POST, DELETE"
		return resp, nil
	}
}

func (h *Handler) respondError(logger *slog.Logger, corrID string, err error) events.APIGatewayProxyResponse {
	code := usecase.CodeOf(err)
	body := errorResponse{Error: string(code)}
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		body.Reason = ucErr.Reason
	}

	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		logger.Error("chat request failed", "code", code, "err", err)
	} else {
		logger.Info("chat request rejected", "code", code, "reason", body.Reason)
	}
	return respond(corrID, status, body)
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest
	case usecase.ErrorCanceled:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respond(corrID string, status int, payload any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"INTERNAL_ERROR"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: corrID,
		},
		Body: string(body),
	}
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return uuid.NewString()
}
