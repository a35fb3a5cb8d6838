// Package api defines the response envelope and error taxonomy shared by
// every clipstream HTTP surface.
package api

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope for every successful call.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// PageData is the data payload for paginated responses.
type PageData struct {
	Items      any `json:"items"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes the standard success envelope.
func OK(w http.ResponseWriter, status int, data any, message string) {
	if message == "" {
		message = "success"
	}
	WriteJSON(w, status, Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < 400,
	})
}
