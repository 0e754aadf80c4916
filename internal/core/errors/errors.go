package errors

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeDecode          ErrorCode = "DECODE_ERROR"
	CodeRead            ErrorCode = "READ_ERROR"
	CodeSyntax          ErrorCode = "SYNTAX_ERROR"
	CodeDiscovery       ErrorCode = "DISCOVERY_ERROR"
	CodeValidationError ErrorCode = "VALIDATION_ERROR"
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeNotSupported    ErrorCode = "NOT_SUPPORTED"
)

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]interface{}
}

const (
	CtxPath = "path"
	CtxLine = "line"
	CtxText = "text"
)

func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		msg += fmt.Sprintf(" %v", e.Context)
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// NewParseError builds a per-file failure that always carries the path.
func NewParseError(code ErrorCode, path, msg string, err error) *DomainError {
	de := &DomainError{Code: code, Message: msg, Err: err}
	return de.WithContext(CtxPath, path)
}

// NewSyntaxError records the 1-based line and, when known, the offending source line.
func NewSyntaxError(path string, line int, text string) *DomainError {
	de := NewParseError(CodeSyntax, path, fmt.Sprintf("syntax error in %s at line %d", path, line), nil)
	de.WithContext(CtxLine, line)
	if text != "" {
		de.WithContext(CtxText, text)
	}
	return de
}

func AddContext(err error, key string, value interface{}) error {
	var de *DomainError
	if errors.As(err, &de) {
		de.WithContext(key, value)
		return de
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "wrapped error",
		Err:     err,
		Context: map[string]interface{}{key: value},
	}
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsParseError reports whether err belongs to the per-file failure family
// (missing file, decode failure, syntax error).
func IsParseError(err error) bool {
	return IsCode(err, CodeNotFound) || IsCode(err, CodeDecode) || IsCode(err, CodeSyntax)
}

// ContextValue returns a context entry from the first DomainError in the chain.
func ContextValue(err error, key string) (interface{}, bool) {
	var de *DomainError
	if !errors.As(err, &de) || de.Context == nil {
		return nil, false
	}
	v, ok := de.Context[key]
	return v, ok
}

// CodeOf returns the code of the first DomainError in the chain, or
// CodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
