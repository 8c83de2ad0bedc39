package extractor

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an extraction failure into a user-facing category.
type Kind string

const (
	KindUnknown       Kind = "unknown"
	KindUnavailable   Kind = "unavailable"
	KindPrivate       Kind = "private"
	KindProtected     Kind = "protected"
	KindLoginRequired Kind = "login_required"
	KindUnsupported   Kind = "unsupported"
)

// Error is returned by backends; Kind is set from structured library errors
// where possible and from message heuristics otherwise.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("extractor %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("extractor %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the classification carried by err, or classifies its text.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var xerr *Error
	if errors.As(err, &xerr) && xerr.Kind != "" && xerr.Kind != KindUnknown {
		return xerr.Kind
	}
	return classifyMessage(err.Error())
}

// classifyMessage matches free-text yt-dlp output. Library messages change
// between releases; this only runs when no structured kind is available.
func classifyMessage(msg string) Kind {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "could not extract functions"),
		strings.Contains(lower, "unable to extract"),
		strings.Contains(lower, "drm protected"):
		return KindProtected
	case strings.Contains(lower, "private video"),
		strings.Contains(lower, "video is private"),
		strings.Contains(lower, "private"):
		return KindPrivate
	case strings.Contains(lower, "sign in to confirm"),
		strings.Contains(lower, "login required"),
		strings.Contains(lower, "age-restricted"):
		return KindLoginRequired
	case strings.Contains(lower, "video unavailable"),
		strings.Contains(lower, "is not available"),
		strings.Contains(lower, "has been removed"):
		return KindUnavailable
	case strings.Contains(lower, "unsupported url"):
		return KindUnsupported
	default:
		return KindUnknown
	}
}

func wrap(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	if kind == "" || kind == KindUnknown {
		kind = classifyMessage(err.Error())
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
