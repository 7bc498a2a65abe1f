// Package httpx provides HTTP response utilities for the JSON API envelope.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/ordersight/ordersight/internal/shared"
)

type envelope struct {
	Data       any                `json:"data"`
	Pagination *shared.Pagination `json:"pagination,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Data sends a 200 response wrapping the payload in the data envelope.
func Data(w http.ResponseWriter, payload any) {
	JSON(w, http.StatusOK, envelope{Data: payload})
}

// Paginated sends a 200 response with the payload and pagination metadata.
func Paginated(w http.ResponseWriter, payload any, p shared.Pagination) {
	JSON(w, http.StatusOK, envelope{Data: payload, Pagination: &p})
}

// Error sends an error response with a caller-safe message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorBody{Error: message})
}
