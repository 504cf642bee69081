package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("response encode failed", slog.Any("err", err))
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, status int, code, message string, details map[string]any) {
	writeJSON(w, log, status, errorResponse{Code: code, Message: message, Details: details})
}
