package messaging

import (
	"errors"
	"fmt"
)

// Kind tags which side of the request a failure belongs to.
type Kind int

const (
	// KindValidation is a caller fault: the request body has the wrong shape.
	KindValidation Kind = iota + 1
	// KindConfig is an operator fault: required configuration is missing.
	KindConfig
	// KindProvider is an upstream fault: the provider rejected or failed the send.
	KindProvider
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConfig:
		return "config"
	case KindProvider:
		return "provider"
	default:
		return "unknown"
	}
}

// Validation reasons.
const (
	ReasonInvalidBody      = "invalid_body"
	ReasonMissingField     = "missing_field"
	ReasonBadPhoneFormat   = "bad_phone_format"
	ReasonBadMessageLength = "bad_message_length"
)

// Configuration reasons.
const (
	ReasonMissingCredentials    = "missing_credentials"
	ReasonMissingSender         = "missing_sender"
	ReasonMissingCallbackTarget = "missing_callback_target"
)

// ReasonProviderFailure is the only provider reason; subtypes are not distinguished.
const ReasonProviderFailure = "provider_failure"

// Error is the single error type surfaced by this package.
type Error struct {
	Kind    Kind
	Reason  string
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("messaging: %s error (%s) on %s: %s", e.Kind, e.Reason, e.Field, e.Message)
	}
	return fmt.Sprintf("messaging: %s error (%s): %s", e.Kind, e.Reason, e.Message)
}

// ValidationError reports a request body that failed shape checks.
func ValidationError(reason, field, message string) *Error {
	return &Error{Kind: KindValidation, Reason: reason, Field: field, Message: message}
}

// ConfigError reports a missing piece of provider configuration.
func ConfigError(reason, message string) *Error {
	return &Error{Kind: KindConfig, Reason: reason, Message: message}
}

// ProviderError wraps the provider's raw error text unmodified.
func ProviderError(message string) *Error {
	return &Error{Kind: KindProvider, Reason: ReasonProviderFailure, Message: message}
}

// KindOf returns the tagged kind of err, or 0 when err is not a *Error.
func KindOf(err error) Kind {
	var merr *Error
	if errors.As(err, &merr) {
		return merr.Kind
	}
	return 0
}
