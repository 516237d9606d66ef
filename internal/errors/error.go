package errors

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryReactive  Category = "reactive"
	CategoryReconcile Category = "reconcile"
	CategoryHost      Category = "host"
	CategoryConfig    Category = "config"
)

// Severity tells the reporter how loudly to log an error.
type Severity uint8

const (
	// SeverityWarning marks a non-fatal usage error; the operation was a no-op.
	SeverityWarning Severity = iota
	// SeverityError marks a failure that degraded a cell or a subtree.
	SeverityError
)

// Error is a structured error with a code, category and key/value context.
type Error struct {
	// Code is a unique error identifier (e.g., "R001").
	Code string

	// Category is the error type (reactive, reconcile, ...).
	Category Category

	// Severity is the log level the error should be reported at.
	Severity Severity

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Fields locate the failure (key value, parent identity, cell id, ...).
	Fields map[string]any

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		b.WriteString(" (")
		b.WriteString(e.fieldString())
		b.WriteString(")")
	}
	if e.Wrapped != nil {
		b.WriteString(": ")
		b.WriteString(e.Wrapped.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithField attaches a key/value pair locating the failure.
func (e *Error) WithField(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]any, 4)
	}
	e.Fields[key] = value
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithPanic records a recovered panic value as the wrapped error.
func (e *Error) WithPanic(r any) *Error {
	if err, ok := r.(error); ok {
		e.Wrapped = err
	} else {
		e.Wrapped = fmt.Errorf("panic: %v", r)
	}
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// LogAttrs returns the error as slog attributes for structured logging.
func (e *Error) LogAttrs() []any {
	attrs := make([]any, 0, 6+2*len(e.Fields))
	attrs = append(attrs,
		slog.String("code", e.Code),
		slog.String("category", string(e.Category)),
	)
	for _, k := range e.fieldKeys() {
		attrs = append(attrs, slog.Any(k, e.Fields[k]))
	}
	if e.Wrapped != nil {
		attrs = append(attrs, slog.String("cause", e.Wrapped.Error()))
	}
	return attrs
}

func (e *Error) fieldKeys() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *Error) fieldString() string {
	parts := make([]string, 0, len(e.Fields))
	for _, k := range e.fieldKeys() {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Fields[k]))
	}
	return strings.Join(parts, " ")
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:     code,
			Message:  "Unknown error",
			Severity: SeverityError,
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Severity: template.Severity,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new Error with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an Error.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if re, ok := err.(*Error); ok {
		return re
	}
	return New(code).Wrap(err)
}
