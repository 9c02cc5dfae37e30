package response

import (
	"encoding/json"
	"net/http"
	e "resetme/internal/core/domain/errors"
)

type errorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func RenderInternalError(rw http.ResponseWriter) {
	RenderError(rw, "internal error", http.StatusInternalServerError)
}

func RenderRateLimitExceeded(rw http.ResponseWriter) {
	RenderError(rw, "rate limit exceeded", http.StatusTooManyRequests)
}

func RenderInvalidRequestData(rw http.ResponseWriter) {
	RenderError(rw, "invalid request data", http.StatusBadRequest)
}

// RenderValidationError uses the same {"field": "message"} shape as
// ozzo-validation errors.
func RenderValidationError(rw http.ResponseWriter, err *e.ValidationError) {
	Render(rw, map[string]string{err.Field: err.Message}, http.StatusBadRequest)
}

func RenderMessage(rw http.ResponseWriter, msg string) {
	Render(rw, MessageResponse{Message: msg}, http.StatusOK)
}

func RenderError(rw http.ResponseWriter, msg string, status int) {
	Render(rw, errorResponse{Error: msg}, status)
}

func Render(rw http.ResponseWriter, res interface{}, status int) {
	rw.Header().Set("Content-Type", "application/json")

	content, err := json.Marshal(res)
	if err != nil {
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}

	rw.WriteHeader(status)
	rw.Write(content)
}
