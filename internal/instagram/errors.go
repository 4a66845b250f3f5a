package instagram

import (
	"errors"
	"fmt"
)

// Kind classifies a Graph API failure so callers can branch on it
// without parsing provider-specific strings.
type Kind int

const (
	// KindTransient covers network-level failures (timeout, connection
	// refused) and provider responses flagged is_transient. Safe to retry
	// the whole operation from the start.
	KindTransient Kind = iota

	// KindOAuth covers code/redirect mismatch, expired codes and
	// provider-side failures during either exchange step.
	KindOAuth

	// KindAccountNotFound means the token is valid but no page has an
	// Instagram business account linked. Terminal for this attempt.
	KindAccountNotFound

	// KindReconnectRequired means the stored token is past its expiry.
	// No network call was made.
	KindReconnectRequired

	// KindContainerCreation covers step-1 publish failures: unfetchable
	// image, rejected caption, quota. Needs corrected input, not a retry.
	KindContainerCreation

	// KindPublish covers step-2 failures after a successful container
	// creation. Retrying the whole publish creates a fresh container.
	KindPublish
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindOAuth:
		return "oauth"
	case KindAccountNotFound:
		return "account_not_found"
	case KindReconnectRequired:
		return "reconnect_required"
	case KindContainerCreation:
		return "container_creation"
	case KindPublish:
		return "publish"
	}
	return "unknown"
}

// Error carries the local classification plus the raw provider message
// for support diagnostics.
type Error struct {
	Kind      Kind
	Op        string
	Message   string
	Code      int
	Subcode   int
	Transient bool
	Trace     string
	err       error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("instagram: %s: %s (%s)", e.Op, e.Message, e.Kind)
	}
	if e.err != nil {
		return fmt.Sprintf("instagram: %s: %v (%s)", e.Op, e.err, e.Kind)
	}
	return fmt.Sprintf("instagram: %s failed (%s)", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.err
}

// KindOf reports the classification of err. ok is false when err is not
// an instagram *Error.
func KindOf(err error) (Kind, bool) {
	var ie *Error
	if !errors.As(err, &ie) {
		return 0, false
	}
	return ie.Kind, true
}

// IsKind reports whether err is an instagram error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// errorEnvelope is the Graph API error wrapper returned on any failed call.
type errorEnvelope struct {
	Error graphError `json:"error"`
}

type graphError struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode"`
	IsTransient  bool   `json:"is_transient"`
	UserTitle    string `json:"error_user_title"`
	UserMessage  string `json:"error_user_msg"`
	FbtraceID    string `json:"fbtrace_id"`
}

func (g graphError) toError(op string, kind Kind) *Error {
	if g.IsTransient {
		kind = KindTransient
	}
	return &Error{
		Kind:      kind,
		Op:        op,
		Message:   g.Message,
		Code:      g.Code,
		Subcode:   g.ErrorSubcode,
		Transient: g.IsTransient,
		Trace:     g.FbtraceID,
	}
}
