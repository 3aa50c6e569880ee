package messaging

import (
	"fmt"
	"regexp"
)

const (
	// MinMessageBytes and MaxMessageBytes bound the outbound body length.
	MinMessageBytes = 1
	MaxMessageBytes = 4096
)

var e164Pattern = regexp.MustCompile(`^\+[0-9]{10,15}$`)

// OutboundMessage is a validated send-whatsapp request.
type OutboundMessage struct {
	To      string
	Message string
}

// CallbackRequest is a validated request-callback request.
type CallbackRequest struct {
	UserName  string
	UserPhone string
}

// IsE164 reports whether value is a plus sign followed by 10 to 15 digits.
func IsE164(value string) bool {
	return e164Pattern.MatchString(value)
}

// ValidatePhone checks a single phone field. The check is syntactic only.
func ValidatePhone(field, value string) error {
	if !IsE164(value) {
		return ValidationError(ReasonBadPhoneFormat, field,
			fmt.Sprintf("%s must be a '+' followed by 10 to 15 digits", field))
	}
	return nil
}

// ValidateMessageBody checks the body length in bytes.
func ValidateMessageBody(field, body string) error {
	if n := len(body); n < MinMessageBytes || n > MaxMessageBytes {
		return ValidationError(ReasonBadMessageLength, field,
			fmt.Sprintf("%s must be between %d and %d bytes, got %d", field, MinMessageBytes, MaxMessageBytes, n))
	}
	return nil
}

// ValidateOutbound builds an OutboundMessage or returns the first violation.
func ValidateOutbound(to, message string) (OutboundMessage, error) {
	if err := ValidatePhone("to", to); err != nil {
		return OutboundMessage{}, err
	}
	if err := ValidateMessageBody("message", message); err != nil {
		return OutboundMessage{}, err
	}
	return OutboundMessage{To: to, Message: message}, nil
}

// ValidateCallback builds a CallbackRequest. Only the phone is constrained.
func ValidateCallback(userName, userPhone string) (CallbackRequest, error) {
	if err := ValidatePhone("user_phone", userPhone); err != nil {
		return CallbackRequest{}, err
	}
	return CallbackRequest{UserName: userName, UserPhone: userPhone}, nil
}
