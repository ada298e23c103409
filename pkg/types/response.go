package types

import "encoding/json"

// SuccessEnvelope wraps facade success payloads.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

const remoteStatusSuccess = "success"

// RemoteEnvelope is the wrapper every marketplace service response uses.
type RemoteEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// OK reports whether the remote call succeeded; anything else is treated the
// same as a transport failure.
func (e RemoteEnvelope) OK() bool {
	return e.Status == remoteStatusSuccess
}
