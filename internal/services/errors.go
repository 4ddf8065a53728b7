package services

import (
	"fmt"

	"agency-backend/internal/models"
)

// RelayError is a terminal relay failure classified into the client-facing
// taxonomy. Details, HTTPCode and Upstream are diagnostics echoed to the caller.
type RelayError struct {
	Kind     models.ErrorKind
	Details  string
	HTTPCode int
	Upstream interface{}
	Err      error
}

func (e *RelayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.HTTPCode != 0 {
		return fmt.Sprintf("%s: upstream status %d", e.Kind, e.HTTPCode)
	}
	return string(e.Kind)
}

func (e *RelayError) Unwrap() error { return e.Err }

// ChatError converts the failure into the response body.
func (e *RelayError) ChatError() models.ChatError {
	body := models.NewChatError(e.Kind)
	body.Details = e.Details
	body.HTTPCode = e.HTTPCode
	body.Upstream = e.Upstream
	return body
}
