package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/whatsapp-sender/pkg/logging"
)

var twilioSendTracer = otel.Tracer("whatsapp.internal.messaging.twilio_send")

// DefaultTwilioBaseURL is the public Twilio REST host.
const DefaultTwilioBaseURL = "https://api.twilio.com"

// TwilioSender posts WhatsApp messages using Twilio's REST API.
type TwilioSender struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewTwilioSender builds a sender. An empty baseURL targets api.twilio.com and
// a zero timeout falls back to 10s.
func NewTwilioSender(baseURL string, timeout time.Duration, logger *logging.Logger) *TwilioSender {
	if logger == nil {
		logger = logging.Default()
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultTwilioBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TwilioSender{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

var _ Sender = (*TwilioSender)(nil)

// SendMessage makes a single Messages.json call. The to address is tagged
// with the WhatsApp channel prefix. Any failure comes back as a ProviderError
// carrying Twilio's own error text.
func (s *TwilioSender) SendMessage(ctx context.Context, creds Credentials, body, from, to string) (SendResult, error) {
	to = ChannelAddress(to)

	ctx, span := twilioSendTracer.Start(ctx, "messaging.twilio.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("whatsapp.to_region", RegionCode(to)),
		attribute.Int("whatsapp.body_bytes", len(body)),
	)

	result, err := s.send(ctx, creds, body, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SendResult{}, err
	}
	span.SetAttributes(attribute.String("whatsapp.sid", result.SID))
	return result, nil
}

func (s *TwilioSender) send(ctx context.Context, creds Credentials, body, from, to string) (SendResult, error) {
	payload := url.Values{}
	payload.Set("To", to)
	payload.Set("From", from)
	payload.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, url.PathEscape(creds.AccountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
	if err != nil {
		return SendResult{}, ProviderError(err.Error())
	}
	req.SetBasicAuth(creds.AccountSID, creds.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("twilio request failed", "error", err, "to_region", RegionCode(to))
		return SendResult{}, ProviderError(err.Error())
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := twilioErrorText(resp.StatusCode, respBody)
		s.logger.Warn("twilio rejected message", "status", resp.StatusCode, "error", msg, "to_region", RegionCode(to))
		return SendResult{}, ProviderError(msg)
	}

	var parsed struct {
		SID    string `json:"sid"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return SendResult{}, ProviderError(fmt.Sprintf("decode twilio response: %v", err))
	}
	if parsed.SID == "" {
		return SendResult{}, ProviderError("twilio response missing message sid")
	}
	s.logger.Info("twilio whatsapp message sent", "sid", parsed.SID, "status", parsed.Status, "to_region", RegionCode(to))
	return SendResult{SID: parsed.SID, Status: parsed.Status}, nil
}

type twilioAPIError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

// twilioErrorText returns Twilio's message field verbatim when present,
// otherwise the raw body, otherwise the HTTP status.
func twilioErrorText(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fmt.Sprintf("twilio returned status %d", status)
	}
	var parsed twilioAPIError
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return trimmed
}
