package messaging

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePhoneRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"too short":         "+123",
		"missing plus":      "12345678901",
		"too long":          "+1234567890123456",
		"nine digits":       "+123456789",
		"spaces":            "+1 555 123 4567",
		"dashes":            "+1-555-123-4567",
		"letters":           "+1555ABC4567",
		"empty":             "",
		"double plus":       "++15551234567",
		"trailing newline":  "+15551234567\n",
		"leading space":     " +15551234567",
		"non ascii digits":  "+١٥٥٥١٢٣٤٥٦٧",
		"channel tag":       "whatsapp:+15551234567",
		"plus only":         "+",
		"embedded plus":     "+1555+1234567",
		"parenthesized":     "+1(555)1234567",
		"fullwidth numbers": "+１５５５１２３４５６７",
	}
	for name, phone := range cases {
		t.Run(name, func(t *testing.T) {
			err := ValidatePhone("to", phone)
			require.Error(t, err)

			var merr *Error
			require.True(t, errors.As(err, &merr))
			assert.Equal(t, KindValidation, merr.Kind)
			assert.Equal(t, ReasonBadPhoneFormat, merr.Reason)
			assert.Equal(t, "to", merr.Field)
		})
	}
}

func TestValidatePhoneAcceptsBounds(t *testing.T) {
	for _, phone := range []string{"+1234567890", "+15551234567", "+123456789012345"} {
		assert.NoError(t, ValidatePhone("to", phone), phone)
	}
}

func TestValidateMessageBodyLengthBounds(t *testing.T) {
	cases := []struct {
		name    string
		length  int
		wantErr bool
	}{
		{"empty", 0, true},
		{"one byte", 1, false},
		{"typical", 120, false},
		{"max", MaxMessageBytes, false},
		{"over max", MaxMessageBytes + 1, true},
		{"far over", 3 * MaxMessageBytes, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateMessageBody("message", strings.Repeat("a", tc.length))
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var merr *Error
			require.True(t, errors.As(err, &merr))
			assert.Equal(t, ReasonBadMessageLength, merr.Reason)
		})
	}
}

func TestValidateMessageBodyCountsBytes(t *testing.T) {
	// 2049 two-byte runes is 4098 bytes.
	body := strings.Repeat("é", 2049)
	err := ValidateMessageBody("message", body)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	assert.NoError(t, ValidateMessageBody("message", strings.Repeat("é", 2048)))
}

func TestValidateOutbound(t *testing.T) {
	msg, err := ValidateOutbound("+15551234567", "hello")
	require.NoError(t, err)
	assert.Equal(t, OutboundMessage{To: "+15551234567", Message: "hello"}, msg)

	_, err = ValidateOutbound("+123", "hello")
	require.Error(t, err)
	var merr *Error
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, ReasonBadPhoneFormat, merr.Reason)

	_, err = ValidateOutbound("+15551234567", "")
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, ReasonBadMessageLength, merr.Reason)
}

func TestValidateCallbackOnlyConstrainsPhone(t *testing.T) {
	cb, err := ValidateCallback("", "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "", cb.UserName)

	cb, err = ValidateCallback("Dr. Ünïcödé <script>", "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Ünïcödé <script>", cb.UserName)

	_, err = ValidateCallback("Alice", "15551234567")
	require.Error(t, err)
	var merr *Error
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, "user_phone", merr.Field)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindProvider, KindOf(ProviderError("boom")))
	assert.Equal(t, KindConfig, KindOf(ConfigError(ReasonMissingSender, "x")))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, "validation", KindValidation.String())
	assert.Contains(t, ValidationError(ReasonBadPhoneFormat, "to", "bad").Error(), "on to")
}
