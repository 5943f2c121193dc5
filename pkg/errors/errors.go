// Package errors defines the error types returned by the session client.
//
// Every failure the client can produce maps to exactly one of these types, so
// callers can branch with errors.As instead of matching on message text.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel causes wrapped by AuthError.
var (
	// ErrNoSession means no persisted session exists.
	ErrNoSession = errors.New("no saved session")
	// ErrSessionExpired means Reddit no longer accepts the saved cookies.
	ErrSessionExpired = errors.New("saved session expired")
)

// joinParts joins error message parts with the specified separator.
func joinParts(parts []string, sep string) string {
	return strings.Join(parts, sep)
}

// ConfigError indicates a problem with the client configuration.
type ConfigError struct {
	// Field contains the name of the configuration field that caused the error
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// TransportError indicates the request did not produce a usable HTTP response:
// either the connection failed or the status code was not the expected one.
type TransportError struct {
	// StatusCode is the HTTP status code, zero when no response was received
	StatusCode int
	// URL is the URL that was being accessed
	URL string
	// Err contains the underlying error if available
	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	if e.Err != nil {
		return "request failed: " + e.Err.Error()
	}
	return "request failed"
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError indicates the response body was not valid JSON or did not have
// the expected shape.
type DecodeError struct {
	// Message contains the user-facing error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *DecodeError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		return "decode error"
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// PlatformError carries an error reported by Reddit itself, either through a
// top-level {"error": ..., "message": ...} envelope or the errors list of an
// api_type=json write response.
type PlatformError struct {
	// Message is the platform's error message
	Message string
	// Errors holds the raw [code, message, field] triples of a write response
	Errors [][]string
}

func (e *PlatformError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Errors) == 0 {
		return "reddit returned an error"
	}

	parts := make([]string, 0, len(e.Errors))
	for _, entry := range e.Errors {
		parts = append(parts, renderErrorEntry(entry))
	}
	return joinParts(parts, "; ")
}

// renderErrorEntry formats one [code, message, field] triple as
// "CODE: message (field)", dropping the parts that are empty.
func renderErrorEntry(entry []string) string {
	var code, msg, field string
	if len(entry) > 0 {
		code = entry[0]
	}
	if len(entry) > 1 {
		msg = entry[1]
	}
	if len(entry) > 2 {
		field = entry[2]
	}

	out := code
	if msg != "" {
		if out != "" {
			out += ": "
		}
		out += msg
	}
	if field != "" {
		out += " (" + field + ")"
	}
	return out
}

// AuthError indicates that no valid session is available: nothing is saved,
// the saved cookies were rejected, or the browser refresh was exhausted.
type AuthError struct {
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *AuthError) Error() string {
	var parts []string
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return "auth error"
	}
	return joinParts(parts, ": ")
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// PreconditionError indicates an invalid argument or argument combination.
// It is always returned before any request is issued.
type PreconditionError struct {
	// Field names the offending argument, if there is a single one
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}
