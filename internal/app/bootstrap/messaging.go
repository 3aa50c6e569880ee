package bootstrap

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/whatsapp-sender/internal/api/router"
	appconfig "github.com/wolfman30/whatsapp-sender/internal/config"
	"github.com/wolfman30/whatsapp-sender/internal/messaging"
	"github.com/wolfman30/whatsapp-sender/internal/observability/metrics"
	"github.com/wolfman30/whatsapp-sender/pkg/logging"
)

// BuildHTTPHandler wires config, sender, metrics and router into one handler.
// It is shared by the API server and the Lambda entrypoint. A nil registry
// uses the Prometheus default registry.
func BuildHTTPHandler(cfg *appconfig.Config, logger *logging.Logger, reg *prometheus.Registry) http.Handler {
	if cfg == nil {
		cfg = &appconfig.Config{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	settings := messaging.SettingsFromConfig(cfg)
	if missing := MissingProviderConfig(settings); len(missing) > 0 {
		// Not fatal: each request reports the gap until the process is restarted.
		if cfg.IsProduction() {
			logger.Error("twilio whatsapp configuration incomplete", "missing", missing, "env", cfg.Env)
		} else {
			logger.Warn("twilio whatsapp configuration incomplete", "missing", missing, "env", cfg.Env)
		}
	}

	var (
		registerer     prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer       prometheus.Gatherer   = prometheus.DefaultGatherer
		metricsHandler http.Handler
	)
	if reg != nil {
		registerer, gatherer = reg, reg
	}
	messagingMetrics := metrics.NewMessagingMetrics(registerer)
	if cfg.MetricsEnabled {
		metricsHandler = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}

	sender := messaging.NewTwilioSender(cfg.TwilioBaseURL, cfg.TwilioHTTPTimeout, logger)
	handler := messaging.NewHandler(settings, sender, messagingMetrics, logger)

	return router.New(&router.Config{
		Logger:             logger,
		MessagingHandler:   handler,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
}

// MissingProviderConfig lists the environment variables that are unset.
func MissingProviderConfig(s messaging.Settings) []string {
	var missing []string
	if s.AccountSID == "" {
		missing = append(missing, "TWILIO_ACCOUNT_SID")
	}
	if s.AuthToken == "" {
		missing = append(missing, "TWILIO_AUTH_TOKEN")
	}
	if s.From == "" {
		missing = append(missing, "TWILIO_WHATSAPP_FROM")
	}
	if s.CallbackTo == "" {
		missing = append(missing, "TWILIO_CALLBACK_TO")
	}
	return missing
}
