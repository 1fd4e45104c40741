package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Response is the envelope of every JSON answer
type Response struct {
	Code  string       `json:"code,omitempty"`
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail describes a failed request
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps err to a status. The message of a wrapped HTTPError is the
// error text, so callers can attach the cause with fmt.Errorf("%w: %w").
func writeError(w http.ResponseWriter, err error) {
	httpErr := ErrInternalServerError
	message := http.StatusText(httpErr.Code)
	if errors.As(err, &httpErr) {
		message = err.Error()
	}
	writeJSON(w, httpErr.Code, Response{
		Code:  httpErr.Key,
		Error: &ErrorDetail{Code: httpErr.Key, Message: message},
	})
}
