package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/wolfman30/whatsapp-sender/internal/messaging/templates"
	"github.com/wolfman30/whatsapp-sender/internal/observability/metrics"
	"github.com/wolfman30/whatsapp-sender/pkg/logging"
)

const (
	endpointSendWhatsApp    = "send_whatsapp"
	endpointRequestCallback = "request_callback"

	maxRequestBodyBytes = 1 << 20
)

// Handler serves the send-whatsapp and request-callback endpoints.
type Handler struct {
	settings Settings
	sender   Sender
	renderer templates.Renderer
	metrics  *metrics.MessagingMetrics
	logger   *logging.Logger
}

// NewHandler creates a new messaging handler. settings is the startup
// snapshot; it is checked per request so missing values fail each call.
func NewHandler(settings Settings, sender Sender, m *metrics.MessagingMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if sender == nil {
		panic("messaging: sender cannot be nil")
	}
	return &Handler{
		settings: settings,
		sender:   sender,
		metrics:  m,
		logger:   logger,
	}
}

type sendWhatsAppRequest struct {
	To      *string `json:"to"`
	Message *string `json:"message"`
}

type requestCallbackRequest struct {
	UserName  *string `json:"user_name"`
	UserPhone *string `json:"user_phone"`
}

type sendResponse struct {
	Status string `json:"status"`
	SID    string `json:"sid"`
}

// SendWhatsApp handles POST /send-whatsapp.
func (h *Handler) SendWhatsApp(w http.ResponseWriter, r *http.Request) {
	var req sendWhatsAppRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.fail(w, endpointSendWhatsApp, err)
		return
	}
	if err := requireFields(fieldValue{"to", req.To}, fieldValue{"message", req.Message}); err != nil {
		h.fail(w, endpointSendWhatsApp, err)
		return
	}
	msg, err := ValidateOutbound(*req.To, *req.Message)
	if err != nil {
		h.fail(w, endpointSendWhatsApp, err)
		return
	}

	creds, err := ResolveCredentials(h.settings, PurposeSend)
	if err != nil {
		h.fail(w, endpointSendWhatsApp, err)
		return
	}

	h.logger.Info("sending whatsapp message", "to_region", RegionCode(msg.To), "body_bytes", len(msg.Message))
	result, err := h.send(r.Context(), endpointSendWhatsApp, creds, msg.Message, msg.To)
	if err != nil {
		h.fail(w, endpointSendWhatsApp, err)
		return
	}

	h.metrics.ObserveRequest(endpointSendWhatsApp, metrics.OutcomeSuccess)
	writeJSON(w, http.StatusOK, sendResponse{Status: "success", SID: result.SID})
}

// RequestCallback handles POST /request-callback. The notification goes to
// the configured staff number, never to the caller's number.
func (h *Handler) RequestCallback(w http.ResponseWriter, r *http.Request) {
	var req requestCallbackRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.fail(w, endpointRequestCallback, err)
		return
	}
	if err := requireFields(fieldValue{"user_name", req.UserName}, fieldValue{"user_phone", req.UserPhone}); err != nil {
		h.fail(w, endpointRequestCallback, err)
		return
	}
	cb, err := ValidateCallback(*req.UserName, *req.UserPhone)
	if err != nil {
		h.fail(w, endpointRequestCallback, err)
		return
	}

	creds, err := ResolveCredentials(h.settings, PurposeCallback)
	if err != nil {
		h.fail(w, endpointRequestCallback, err)
		return
	}

	body, err := h.renderer.RenderCallback(templates.Callback{UserName: cb.UserName, UserPhone: cb.UserPhone})
	if err != nil {
		h.logger.Error("failed to render callback notification", "error", err)
		h.metrics.ObserveRequest(endpointRequestCallback, "render_error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: err.Error()})
		return
	}

	h.logger.Info("requesting staff callback", "user_region", RegionCode(cb.UserPhone))
	result, err := h.send(r.Context(), endpointRequestCallback, creds, body, creds.CallbackTo)
	if err != nil {
		h.fail(w, endpointRequestCallback, err)
		return
	}

	h.metrics.ObserveRequest(endpointRequestCallback, metrics.OutcomeSuccess)
	writeJSON(w, http.StatusOK, sendResponse{Status: "callback_requested", SID: result.SID})
}

// HealthCheck returns a simple health check response.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) send(ctx context.Context, endpoint string, creds Credentials, body, to string) (SendResult, error) {
	to = ChannelAddress(to)
	start := time.Now()
	result, err := h.sender.SendMessage(ctx, creds, body, creds.From, to)
	h.metrics.ObserveProviderLatency(endpoint, time.Since(start).Seconds())
	h.metrics.ObserveOutbound(endpoint, RegionCode(to), err == nil)
	if err != nil {
		// Adapters should already return a ProviderError; anything else is
		// still an upstream failure and keeps its text.
		if KindOf(err) == 0 {
			err = ProviderError(err.Error())
		}
		return SendResult{}, err
	}
	h.logger.Info("whatsapp message accepted", "endpoint", endpoint, "sid", result.SID)
	return result, nil
}

type errorResponse struct {
	Detail string `json:"detail"`
	Reason string `json:"reason,omitempty"`
	Field  string `json:"field,omitempty"`
}

func (h *Handler) fail(w http.ResponseWriter, endpoint string, err error) {
	var merr *Error
	if !errors.As(err, &merr) {
		h.logger.Error("unexpected messaging error", "endpoint", endpoint, "error", err)
		h.metrics.ObserveRequest(endpoint, "internal_error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: err.Error()})
		return
	}

	switch merr.Kind {
	case KindValidation:
		h.logger.Info("rejected invalid request", "endpoint", endpoint, "reason", merr.Reason, "field", merr.Field)
		h.metrics.ObserveRequest(endpoint, metrics.OutcomeValidationError)
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: merr.Message, Reason: merr.Reason, Field: merr.Field})
	case KindConfig:
		h.logger.Error("provider configuration missing", "endpoint", endpoint, "reason", merr.Reason)
		h.metrics.ObserveRequest(endpoint, metrics.OutcomeConfigError)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: merr.Message})
	case KindProvider:
		// Provider text is returned verbatim.
		h.logger.Error("failed to send whatsapp message", "endpoint", endpoint, "error", merr.Message)
		h.metrics.ObserveRequest(endpoint, metrics.OutcomeProviderError)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: merr.Message})
	default:
		h.metrics.ObserveRequest(endpoint, "internal_error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: merr.Message})
	}
}

type fieldValue struct {
	name  string
	value *string
}

func requireFields(fields ...fieldValue) error {
	for _, f := range fields {
		if f.value == nil {
			return ValidationError(ReasonMissingField, f.name, f.name+" is required")
		}
	}
	return nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return ValidationError(ReasonInvalidBody, "", "request body is required")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return ValidationError(ReasonInvalidBody, "", "invalid JSON body: "+err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
