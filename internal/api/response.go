// Package api defines the JSON envelopes shared by every handler.
package api

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// MessageResponse acknowledges an operation that returns no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// Generic messages for 5xx responses. Internal causes are logged, never returned.
const (
	MsgInternal       = "something went wrong"
	MsgInvalidRequest = "invalid request"
)
