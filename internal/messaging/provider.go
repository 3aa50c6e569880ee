package messaging

import (
	"context"
	"strings"
)

// WhatsAppChannelPrefix tags an address as the provider's WhatsApp transport.
const WhatsAppChannelPrefix = "whatsapp:"

// SendResult is what the provider returns for an accepted message.
type SendResult struct {
	// SID is the provider-assigned delivery id.
	SID    string
	Status string
}

// Sender submits one message to the provider. Implementations make exactly
// one attempt and report every failure as a ProviderError.
type Sender interface {
	SendMessage(ctx context.Context, creds Credentials, body, from, to string) (SendResult, error)
}

// ChannelAddress returns addr with the WhatsApp channel tag, adding it only once.
func ChannelAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if strings.HasPrefix(addr, WhatsAppChannelPrefix) {
		return addr
	}
	return WhatsAppChannelPrefix + addr
}
