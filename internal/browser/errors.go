package browser

import (
	"errors"
	"fmt"

	"github.com/dgnsrekt/loginbrowser/internal/bookmarks"
	"github.com/dgnsrekt/loginbrowser/internal/tabs"
)

const (
	CodeValidation        = "VALIDATION"
	CodeTabNotFound       = "TAB_NOT_FOUND"
	CodeBookmarkNotFound  = "BOOKMARK_NOT_FOUND"
	CodeEngineUnavailable = "ENGINE_UNAVAILABLE"
	CodeLoginFailed       = "LOGIN_FAILED"
)

// CodedError is a typed error used for stable API mapping.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

func newError(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}

// classify wraps errors from the tab and bookmark layers with their API code.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return err
	}
	switch {
	case errors.Is(err, tabs.ErrUnknownTab):
		return newError(CodeTabNotFound, err.Error(), err)
	case errors.Is(err, bookmarks.ErrNotFound), errors.Is(err, bookmarks.ErrUnknownKind):
		return newError(CodeBookmarkNotFound, err.Error(), err)
	case errors.Is(err, bookmarks.ErrInvalid):
		return newError(CodeValidation, err.Error(), err)
	}
	return err
}
