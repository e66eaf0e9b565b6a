package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/tools"
)

var (
	ErrRateLimited             = errors.New("rate limit exceeded")
	ErrNotEntitled             = errors.New("tool not available on current plan")
	ErrTrialExpired            = errors.New("free trial has expired")
	ErrUnknownTool             = errors.New("unknown tool")
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidInput            = tools.ErrInvalidInput
	ErrMalformedOutput         = errors.New("malformed model output")
	ErrStorageUnavailable      = errors.New("usage storage unavailable")
	ErrNotificationUnavailable = errors.New("notification service unavailable")
)

// Rate limiter scopes.
const (
	ScopeIdentity = "identity"
	ScopeGlobal   = "global"
)

// RateLimitError reports which limiter rejected the call.
type RateLimitError struct {
	Scope string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limit exceeded, please try again later", e.Scope)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// ToolNotAvailableError carries the caller's allowed tools and the cheapest plan
// that unlocks the requested one.
type ToolNotAvailableError struct {
	ToolID       string
	Allowed      []string
	RequiredPlan string
}

func (e *ToolNotAvailableError) Error() string {
	return fmt.Sprintf("tool %q requires the %s plan or higher", e.ToolID, e.RequiredPlan)
}

func (e *ToolNotAvailableError) Unwrap() error { return ErrNotEntitled }

// Generation failure kinds.
const (
	KindUnauthorized  = "unauthorized"
	KindQuotaExceeded = "quota_exceeded"
	KindTransient     = "transient"
	KindUnknown       = "unknown"
	KindMalformed     = "malformed_output"
	KindInvalidInput  = "invalid_input"
	KindCancelled     = "cancelled"
)

// GenerationError is a classified failure from the generation client.
type GenerationError struct {
	Kind       string
	Provider   string
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("generation ")
	b.WriteString(e.Kind)
	if e.Provider != "" {
		b.WriteString(" (" + e.Provider + ")")
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " status=%d", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ErrorKind extracts the generation failure kind from err.
func ErrorKind(err error) string {
	var genErr *GenerationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &genErr):
		return genErr.Kind
	case errors.Is(err, ErrMalformedOutput):
		return KindMalformed
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return KindTransient
	default:
		return KindUnknown
	}
}
