package api

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// FallbackMessage is reported when a failure carries no usable message.
const FallbackMessage = "Something went wrong on the server."

// Kind classifies a normalized failure.
type Kind string

const (
	// KindTransport is a network or HTTP failure without a usable message.
	KindTransport Kind = "transport"
	// KindServerMessage is a failure that carries a human-readable message.
	KindServerMessage Kind = "server_message"
)

// Failure is the single shape every failed API operation is reported in.
type Failure struct {
	Err     error
	Op      string
	Kind    Kind
	Message string
	Status  int
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// messenger is implemented by errors that carry a message fit for the user.
type messenger interface {
	UserMessage() string
}

// statusError is a non-2xx response.
type statusError struct {
	message string
	status  int
}

func (e *statusError) Error() string {
	if e.message != "" {
		return fmt.Sprintf("server responded %d: %s", e.status, e.message)
	}
	return fmt.Sprintf("server responded %d", e.status)
}

func (e *statusError) UserMessage() string {
	return e.message
}

// argumentError rejects a call before any request is made.
type argumentError struct {
	err error
}

func (e *argumentError) Error() string {
	return e.err.Error()
}

func (e *argumentError) Unwrap() error {
	return e.err
}

func (e *argumentError) UserMessage() string {
	return e.err.Error()
}

// normalize collapses any error into a Failure. Only errors that carry a
// user message keep it; everything else gets FallbackMessage.
func normalize(op string, err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}

	failure := &Failure{
		Op:      op,
		Kind:    KindTransport,
		Message: FallbackMessage,
		Err:     err,
	}

	var se *statusError
	if errors.As(err, &se) {
		failure.Status = se.status
	}

	var m messenger
	if errors.As(err, &m) {
		if msg := strings.TrimSpace(m.UserMessage()); msg != "" {
			failure.Kind = KindServerMessage
			failure.Message = msg
		}
	}

	return failure
}

// logFailure is the funnel every request-issuing operation returns through.
// A nil error passes unchanged; anything else is normalized, logged and
// returned as a *Failure.
func logFailure(logger *slog.Logger, op string, err error) error {
	if err == nil {
		return nil
	}

	failure := normalize(op, err)
	logger.Error(op+" failed: "+failure.Message,
		"operation", op,
		"kind", string(failure.Kind),
		"status", failure.Status,
		"error", err)

	return failure
}
