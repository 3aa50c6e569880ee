package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/whatsapp-sender/internal/messaging"
	"github.com/wolfman30/whatsapp-sender/internal/observability/metrics"
	"github.com/wolfman30/whatsapp-sender/pkg/logging"
)

// fakeTwilio stands in for api.twilio.com and records submitted forms.
type fakeTwilio struct {
	mu       sync.Mutex
	requests []map[string]string
	status   int
	body     string
}

func (f *fakeTwilio) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	f.mu.Lock()
	f.requests = append(f.requests, map[string]string{
		"To":   r.PostForm.Get("To"),
		"From": r.PostForm.Get("From"),
		"Body": r.PostForm.Get("Body"),
	})
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = w.Write([]byte(f.body))
}

func (f *fakeTwilio) sent() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.requests...)
}

func newTestRouter(t *testing.T, fake *fakeTwilio, settings messaging.Settings) http.Handler {
	t.Helper()

	upstream := httptest.NewServer(fake)
	t.Cleanup(upstream.Close)

	logger := logging.New("error")
	reg := prometheus.NewRegistry()
	m := metrics.NewMessagingMetrics(reg)
	sender := messaging.NewTwilioSender(upstream.URL, 2*time.Second, logger)

	return New(&Config{
		Logger:           logger,
		MessagingHandler: messaging.NewHandler(settings, sender, m, logger),
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
}

func completeSettings() messaging.Settings {
	return messaging.Settings{
		AccountSID: "AC123",
		AuthToken:  "token",
		From:       "whatsapp:+14155238886",
		CallbackTo: "+15550009999",
	}
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, &fakeTwilio{status: http.StatusCreated}, completeSettings())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if resp := decode(t, rr); resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterSendWhatsApp(t *testing.T) {
	fake := &fakeTwilio{status: http.StatusCreated, body: `{"sid":"SM123","status":"queued"}`}
	router := newTestRouter(t, fake, completeSettings())

	rr := post(router, "/send-whatsapp", `{"to":"+15551234567","message":"hello"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decode(t, rr)
	if resp["status"] != "success" || resp["sid"] != "SM123" {
		t.Fatalf("unexpected response %v", resp)
	}
	if len(fake.sent()) != 1 {
		t.Fatalf("expected exactly one provider call, got %d", len(fake.sent()))
	}
	if fake.sent()[0]["To"] != "whatsapp:+15551234567" {
		t.Fatalf("expected channel-tagged destination, got %q", fake.sent()[0]["To"])
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestRouterRequestCallback(t *testing.T) {
	fake := &fakeTwilio{status: http.StatusCreated, body: `{"sid":"SM999","status":"queued"}`}
	router := newTestRouter(t, fake, completeSettings())

	rr := post(router, "/request-callback", `{"user_name":"Alice","user_phone":"+15551234567"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decode(t, rr)
	if resp["status"] != "callback_requested" || resp["sid"] != "SM999" {
		t.Fatalf("unexpected response %v", resp)
	}
	if len(fake.sent()) != 1 {
		t.Fatalf("expected exactly one provider call, got %d", len(fake.sent()))
	}
	sent := fake.sent()[0]
	if sent["To"] != "whatsapp:+15550009999" {
		t.Fatalf("expected staff destination, got %q", sent["To"])
	}
	if !strings.Contains(sent["Body"], "Alice") || !strings.Contains(sent["Body"], "+15551234567") {
		t.Fatalf("expected name and phone in body, got %q", sent["Body"])
	}
}

func TestRouterProviderErrorDetail(t *testing.T) {
	fake := &fakeTwilio{
		status: http.StatusBadRequest,
		body:   `{"code":21211,"message":"Invalid 'To' Phone Number","status":400}`,
	}
	router := newTestRouter(t, fake, completeSettings())

	rr := post(router, "/send-whatsapp", `{"to":"+15551234567","message":"hello"}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
	if detail := decode(t, rr)["detail"]; detail != "Invalid 'To' Phone Number" {
		t.Fatalf("expected provider text verbatim, got %q", detail)
	}
}

func TestRouterMissingCredentialsMakesNoProviderCall(t *testing.T) {
	fake := &fakeTwilio{status: http.StatusCreated, body: `{"sid":"SM1"}`}
	router := newTestRouter(t, fake, messaging.Settings{From: "whatsapp:+14155238886", CallbackTo: "+15550009999"})

	for path, body := range map[string]string{
		"/send-whatsapp":    `{"to":"+15551234567","message":"hello"}`,
		"/request-callback": `{"user_name":"Alice","user_phone":"+15551234567"}`,
	} {
		rr := post(router, path, body)
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("%s: expected status 500, got %d", path, rr.Code)
		}
	}
	if len(fake.sent()) != 0 {
		t.Fatalf("expected zero provider calls, got %d", len(fake.sent()))
	}
}

func TestRouterValidationError(t *testing.T) {
	router := newTestRouter(t, &fakeTwilio{status: http.StatusCreated}, completeSettings())

	rr := post(router, "/send-whatsapp", `{"to":"+123","message":"hello"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rr.Code)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	fake := &fakeTwilio{status: http.StatusCreated, body: `{"sid":"SM123"}`}
	router := newTestRouter(t, fake, completeSettings())
	post(router, "/send-whatsapp", `{"to":"+15551234567","message":"hello"}`)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "whatsapp_api_requests_total") {
		t.Fatalf("expected request counter to be exported")
	}
}

func TestRouterRejectsWrongMethod(t *testing.T) {
	router := newTestRouter(t, &fakeTwilio{status: http.StatusCreated}, completeSettings())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/send-whatsapp", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
