package whatsapp

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"RideDesk/bot/chat"
	"RideDesk/internal/lib/sl"
)

const (
	defaultBaseURL    = "https://graph.facebook.com"
	defaultAPIVersion = "v19.0"
	defaultTimeout    = 30 * time.Second

	maxPayloadSize = 1 << 20

	businessAccountObject = "whatsapp_business_account"
	messagesField         = "messages"
	receivedAck           = "EVENT_RECEIVED"
)

// Config holds the Graph API credentials and webhook secrets.
type Config struct {
	AccessToken   string
	VerifyToken   string
	AppSecret     string
	PhoneNumberID string
	APIVersion    string
	BaseURL       string
	EventTimeout  time.Duration
}

// EventHandler processes one normalized inbound event.
type EventHandler interface {
	HandleEvent(ctx context.Context, userID string, input chat.UserInput) error
}

// Event is an inbound message reduced to what the conversation needs.
type Event struct {
	From      string
	MessageID string
	Input     chat.UserInput
}

// WhatsAppBot handles WhatsApp messaging via the Graph API
type WhatsAppBot struct {
	log     *slog.Logger
	cfg     Config
	client  *http.Client
	handler EventHandler
}

// NewWhatsAppBot creates a new WhatsApp bot instance
func NewWhatsAppBot(cfg Config, log *slog.Logger) *WhatsAppBot {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.EventTimeout <= 0 {
		cfg.EventTimeout = defaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &WhatsAppBot{
		log:    log.With(sl.Module("whatsappbot")),
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// SetEventHandler sets the consumer of inbound events.
func (b *WhatsAppBot) SetEventHandler(h EventHandler) {
	b.handler = h
}

// HandleWebhookVerification handles the GET request for webhook verification
func (b *WhatsAppBot) HandleWebhookVerification(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && b.cfg.VerifyToken != "" && token == b.cfg.VerifyToken {
		b.log.Info("webhook verified")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(challenge))
		return
	}

	b.log.Warn("webhook verification failed",
		slog.String("mode", mode),
		slog.Bool("token_match", token == b.cfg.VerifyToken),
	)
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// HandleWebhook handles incoming webhook POST requests. Every event is
// processed before the acknowledgement is written.
func (b *WhatsAppBot) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadSize))
	if err != nil {
		b.log.Error("failed to read request body", sl.Err(err))
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if b.cfg.AppSecret != "" {
		signature := r.Header.Get("X-Hub-Signature-256")
		if !b.verifySignature(body, signature) {
			b.log.Warn("invalid webhook signature")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		b.log.Error("failed to parse webhook payload", sl.Err(err))
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	events := Normalize(payload)
	if len(events) == 0 {
		b.log.Debug("webhook without messages", slog.String("object", payload.Object))
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), b.cfg.EventTimeout)
	defer cancel()
	for _, ev := range events {
		b.dispatch(ctx, ev)
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(receivedAck))
}

func (b *WhatsAppBot) dispatch(ctx context.Context, ev Event) {
	b.log.Info("received message",
		slog.String("sender_phone", ev.From),
		slog.String("message_id", ev.MessageID),
		slog.String("kind", string(ev.Input.Kind)),
	)
	if b.handler == nil {
		b.log.Warn("no event handler set")
		return
	}
	// The handler has already answered the sender; failures only need logging.
	if err := b.handler.HandleEvent(ctx, ev.From, ev.Input); err != nil {
		b.log.Debug("event not applied",
			slog.String("sender_phone", ev.From),
			sl.Err(err),
		)
	}
}

// Normalize extracts the text and interactive replies of a webhook payload.
// Other objects, fields and message types are skipped.
func Normalize(payload WebhookPayload) []Event {
	if payload.Object != businessAccountObject {
		return nil
	}

	var events []Event
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != messagesField {
				continue
			}
			for _, msg := range change.Value.Messages {
				input, ok := normalizeMessage(msg)
				if !ok || msg.From == "" {
					continue
				}
				events = append(events, Event{From: msg.From, MessageID: msg.ID, Input: input})
			}
		}
	}
	return events
}

func normalizeMessage(msg InboundMessage) (chat.UserInput, bool) {
	switch msg.Type {
	case "text":
		if msg.Text == nil || msg.Text.Body == "" {
			return chat.UserInput{}, false
		}
		return chat.UserInput{Kind: chat.InputText, Value: msg.Text.Body}, true
	case "interactive":
		if msg.Interactive == nil {
			return chat.UserInput{}, false
		}
		var id string
		switch {
		case msg.Interactive.ButtonReply != nil:
			id = msg.Interactive.ButtonReply.ID
		case msg.Interactive.ListReply != nil:
			id = msg.Interactive.ListReply.ID
		}
		if id == "" {
			return chat.UserInput{}, false
		}
		return chat.UserInput{Kind: chat.InputSelection, Value: id}, true
	}
	return chat.UserInput{}, false
}

// SendText sends a text message to the specified recipient
func (b *WhatsAppBot) SendText(ctx context.Context, to, text string) error {
	return b.SendRequest(ctx, &MessageRequest{
		Type: "text",
		To:   to,
		Text: &TextBody{Body: text},
	})
}

// SendInteractive sends a reply-button or list message.
func (b *WhatsAppBot) SendInteractive(ctx context.Context, to string, interactive *Interactive) error {
	return b.SendRequest(ctx, &MessageRequest{
		Type:        "interactive",
		To:          to,
		Interactive: interactive,
	})
}

// SendRequest posts a message to the Graph API.
func (b *WhatsAppBot) SendRequest(ctx context.Context, reqBody *MessageRequest) error {
	reqBody.MessagingProduct = "whatsapp"
	reqBody.RecipientType = "individual"

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", b.cfg.BaseURL, b.cfg.APIVersion, b.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.cfg.AccessToken)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	b.log.Debug("message sent",
		slog.String("recipient_phone", reqBody.To),
		slog.String("type", reqBody.Type),
	)
	return nil
}

// verifySignature verifies the X-Hub-Signature-256 header
func (b *WhatsAppBot) verifySignature(body []byte, signature string) bool {
	expectedSig, ok := strings.CutPrefix(signature, "sha256=")
	if !ok || expectedSig == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(b.cfg.AppSecret))
	mac.Write(body)
	actualSig := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expectedSig), []byte(actualSig))
}
