package core

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ResourceErrorConfiguration   = "RESOURCE_CONFIGURATION"
	ResourceErrorValidation      = "RESOURCE_VALIDATION"
	ResourceErrorPersistFailed   = "RESOURCE_PERSIST_FAILED"
	ResourceErrorTransportFailed = "RESOURCE_TRANSPORT_FAILED"
	ResourceErrorBadInput        = "RESOURCE_BAD_INPUT"
)

// NewConfigurationError reports a programming error by the embedder, such as
// a missing base URL or validator binding.
func NewConfigurationError(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ResourceErrorConfiguration).
		WithSeverity(goerrors.SeverityCritical)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// NewValidationError builds a field error envelope. Fields are emitted in
// sorted order so messages are stable.
func NewValidationError(message string, fields map[string][]string) error {
	if strings.TrimSpace(message) == "" {
		message = "validation failed"
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	fieldErrors := make([]goerrors.FieldError, 0, len(names))
	for _, name := range names {
		for _, msg := range fields[name] {
			fieldErrors = append(fieldErrors, goerrors.FieldError{
				Field:   name,
				Message: msg,
			})
		}
	}
	return goerrors.NewValidation(message, fieldErrors...).
		WithCode(http.StatusBadRequest).
		WithTextCode(ResourceErrorValidation).
		WithSeverity(goerrors.SeverityError)
}

// WrapValidationError gives a foreign validation failure the resource
// validation envelope. Rich validation errors pass through with their field
// errors intact.
func WrapValidationError(err error, message string) error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.Category == goerrors.CategoryValidation {
		wrapped := rich.Clone()
		if strings.TrimSpace(wrapped.TextCode) == "" {
			wrapped.TextCode = ResourceErrorValidation
		}
		if wrapped.Code == 0 {
			wrapped.Code = http.StatusBadRequest
		}
		return wrapped
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, message).
		WithCode(http.StatusBadRequest).
		WithTextCode(ResourceErrorValidation)
}

func newPersistError(source error, index int, key string) error {
	message := fmt.Sprintf("core: persist aborted at record %d", index)
	metadata := map[string]any{"index": index}
	if key != "" {
		metadata["key"] = key
	}
	// The source keeps its own category as the cause; the persist failure
	// itself is always an operation error.
	err := goerrors.New(message, goerrors.CategoryOperation).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ResourceErrorPersistFailed).
		WithMetadata(metadata)
	err.Source = source
	return err
}

func newTransportError(source error, method string, url string) error {
	return goerrors.Wrap(source, goerrors.CategoryExternal, "core: transport send failed").
		WithCode(http.StatusBadGateway).
		WithTextCode(ResourceErrorTransportFailed).
		WithMetadata(map[string]any{"method": method, "url": url})
}

func newBadInputError(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ResourceErrorBadInput)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func IsConfigurationError(err error) bool {
	return hasTextCode(err, ResourceErrorConfiguration)
}

func IsValidationError(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.Category == goerrors.CategoryValidation
}

func IsPersistError(err error) bool {
	return hasTextCode(err, ResourceErrorPersistFailed)
}

func IsTransportError(err error) bool {
	return hasTextCode(err, ResourceErrorTransportFailed)
}

// ValidationMessages flattens the field errors of a validation error into
// field -> messages. Non-validation errors yield nil.
func ValidationMessages(err error) map[string][]string {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryValidation {
		return nil
	}
	out := map[string][]string{}
	for _, fieldErr := range rich.AllValidationErrors() {
		out[fieldErr.Field] = append(out[fieldErr.Field], fieldErr.Message)
	}
	if len(out) == 0 {
		out["$"] = []string{rich.Message}
	}
	return out
}

func hasTextCode(err error, code string) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == code
}
