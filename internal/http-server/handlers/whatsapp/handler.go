package whatsapp

import (
	"log/slog"
	"net/http"

	"RideDesk/internal/lib/sl"
)

// Webhook is the WhatsApp Cloud API endpoint pair.
type Webhook interface {
	HandleWebhookVerification(w http.ResponseWriter, r *http.Request)
	HandleWebhook(w http.ResponseWriter, r *http.Request)
}

// WebhookVerify handles GET requests for webhook verification
func WebhookVerify(log *slog.Logger, hook Webhook) http.HandlerFunc {
	logger := log.With(sl.Module("whatsapp.webhook"))
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("webhook verification request")
		hook.HandleWebhookVerification(w, r)
	}
}

// WebhookHandler handles POST requests for incoming messages
func WebhookHandler(log *slog.Logger, hook Webhook) http.HandlerFunc {
	logger := log.With(sl.Module("whatsapp.webhook"))
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("webhook message received")
		hook.HandleWebhook(w, r)
	}
}
