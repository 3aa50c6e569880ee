package messaging

import (
	"strings"

	appconfig "github.com/wolfman30/whatsapp-sender/internal/config"
)

// Purpose selects which configuration items an operation needs.
type Purpose int

const (
	// PurposeSend needs the account credentials and the sender address.
	PurposeSend Purpose = iota
	// PurposeCallback additionally needs the staff callback-target address.
	PurposeCallback
)

// Credentials is the provider configuration resolved for one operation.
type Credentials struct {
	AccountSID string
	AuthToken  string
	From       string
	CallbackTo string
}

// Settings is the provider configuration snapshot taken at startup.
// It never re-reads the environment; changes require a restart.
type Settings struct {
	AccountSID string
	AuthToken  string
	From       string
	CallbackTo string
}

// SettingsFromConfig copies the provider fields out of the loaded config.
func SettingsFromConfig(cfg *appconfig.Config) Settings {
	if cfg == nil {
		return Settings{}
	}
	return Settings{
		AccountSID: strings.TrimSpace(cfg.TwilioAccountSID),
		AuthToken:  strings.TrimSpace(cfg.TwilioAuthToken),
		From:       strings.TrimSpace(cfg.TwilioWhatsAppFrom),
		CallbackTo: strings.TrimSpace(cfg.TwilioCallbackTo),
	}
}

// ResolveCredentials returns the credentials needed for purpose, or a
// ConfigError naming the first missing item. It never touches the network.
func ResolveCredentials(s Settings, purpose Purpose) (Credentials, error) {
	if strings.TrimSpace(s.AccountSID) == "" || strings.TrimSpace(s.AuthToken) == "" {
		return Credentials{}, ConfigError(ReasonMissingCredentials,
			"Twilio credentials are missing in environment variables.")
	}
	if strings.TrimSpace(s.From) == "" {
		return Credentials{}, ConfigError(ReasonMissingSender,
			"Twilio WhatsApp sender number not configured.")
	}
	creds := Credentials{
		AccountSID: strings.TrimSpace(s.AccountSID),
		AuthToken:  strings.TrimSpace(s.AuthToken),
		From:       ChannelAddress(s.From),
	}
	if purpose == PurposeCallback {
		if strings.TrimSpace(s.CallbackTo) == "" {
			return Credentials{}, ConfigError(ReasonMissingCallbackTarget,
				"Twilio WhatsApp callback target number not configured.")
		}
		creds.CallbackTo = strings.TrimSpace(s.CallbackTo)
	}
	return creds, nil
}
