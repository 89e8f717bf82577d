// Package dto defines the request and response shapes of the HTTP API. All
// JSON keys are snake_case.
package dto

// ErrorResponse is the uniform error payload
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusResponse is a simple acknowledgement payload
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
