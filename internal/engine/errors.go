package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/Simplici0/facecost/internal/factors"
	"github.com/Simplici0/facecost/internal/restaurant"
)

// Kind is the machine-readable error tag of a failed request.
type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindCalculation  Kind = "calculation_error"
	KindFileNotFound Kind = "file_not_found"
	KindDecode       Kind = "decode_error"
	KindUnexpected   Kind = "unexpected_error"
	KindConfig       Kind = "configuration_error"
	KindUsage        Kind = "usage_error"
)

// Error is the structured error payload returned by the CLI and the HTTP API.
type Error struct {
	Kind    Kind   `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && Classify(err).Kind == kind
}

// DecodeError marks err as a malformed request document.
func DecodeError(err error) *Error {
	return &Error{Kind: KindDecode, Message: err.Error(), Details: "request body is not a valid document", Err: err}
}

// Classify maps any error to its structured payload. Errors that are already
// an *Error are returned as is.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	var verr *restaurant.ValidationError
	if errors.As(err, &verr) {
		return &Error{
			Kind:    KindValidation,
			Message: verr.Error(),
			Details: map[string]string{"field": verr.Field, "rule": verr.Rule},
			Err:     err,
		}
	}

	if errors.Is(err, fs.ErrNotExist) {
		return &Error{Kind: KindFileNotFound, Message: err.Error(), Err: err}
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		yamlErr   *yaml.TypeError
	)
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.As(err, &yamlErr) {
		return DecodeError(err)
	}

	var serr *factors.StoreError
	if errors.As(err, &serr) {
		return &Error{Kind: KindCalculation, Message: err.Error(), Details: "factor store unavailable", Err: err}
	}

	return &Error{Kind: KindCalculation, Message: err.Error(), Details: "calculation engine failure", Err: err}
}

// ConfigError marks err as an invalid configuration value.
func ConfigError(err error) *Error {
	return &Error{Kind: KindConfig, Message: err.Error(), Details: "check the environment and .env file", Err: err}
}

// UsageError marks err as a malformed command line.
func UsageError(err error) *Error {
	return &Error{Kind: KindUsage, Message: err.Error(), Details: "run with --help for usage", Err: err}
}

func panicError(v any) *Error {
	return &Error{Kind: KindUnexpected, Message: fmt.Sprintf("panic: %v", v), Details: "internal engine fault"}
}
