// Package apierror формирует JSON-ответы с ошибками HTTP API.
package apierror

import (
	"encoding/json"
	"net/http"
)

// Kind классифицирует ошибку для клиента.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindInvalidTransition   Kind = "invalid_transition"
	KindInsufficientBalance Kind = "insufficient_balance"
	KindValidation          Kind = "validation"
	KindUnauthorized        Kind = "unauthorized"
	KindConflict            Kind = "conflict"
	KindInternal            Kind = "internal"
)

// Body описывает тело ответа с ошибкой.
type Body struct {
	Error   Kind   `json:"error"`
	Message string `json:"message"`
	Needed  *int64 `json:"needed,omitempty"`
}

// Write записывает ошибку в ответ.
func Write(w http.ResponseWriter, status int, kind Kind, message string) {
	WriteBody(w, status, Body{Error: kind, Message: message})
}

// WriteBody записывает подготовленное тело ошибки в ответ.
func WriteBody(w http.ResponseWriter, status int, body Body) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
