package whatsapp

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RideDesk/bot/chat"
)

const inboundPayload = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "1",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "messages": [
          {"from": "5565111", "id": "m1", "type": "text", "text": {"body": "oi"}},
          {"from": "5565111", "id": "m2", "type": "interactive", "interactive": {"type": "button_reply", "button_reply": {"id": "fazer_cotacao", "title": "Fazer"}}},
          {"from": "5565222", "id": "m3", "type": "interactive", "interactive": {"type": "list_reply", "list_reply": {"id": "loc_Centro", "title": "Centro"}}},
          {"from": "5565222", "id": "m4", "type": "image"},
          {"from": "5565222", "id": "m5", "type": "text", "text": {"body": ""}}
        ]
      }
    }, {
      "field": "statuses",
      "value": {"messages": [{"from": "5565333", "id": "m6", "type": "text", "text": {"body": "ignored"}}]}
    }]
  }]
}`

type received struct {
	from  string
	input chat.UserInput
}

type recordingHandler struct {
	mu     sync.Mutex
	events []received
}

func (h *recordingHandler) HandleEvent(_ context.Context, userID string, input chat.UserInput) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, received{from: userID, input: input})
	return nil
}

func testBot(cfg Config) *WhatsAppBot {
	return NewWhatsAppBot(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestNormalize(t *testing.T) {
	var payload WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(inboundPayload), &payload))

	events := Normalize(payload)
	require.Len(t, events, 3)
	assert.Equal(t, Event{From: "5565111", MessageID: "m1", Input: chat.UserInput{Kind: chat.InputText, Value: "oi"}}, events[0])
	assert.Equal(t, chat.UserInput{Kind: chat.InputSelection, Value: "fazer_cotacao"}, events[1].Input)
	assert.Equal(t, chat.UserInput{Kind: chat.InputSelection, Value: "loc_Centro"}, events[2].Input)
	assert.Equal(t, "5565222", events[2].From)
}

func TestNormalize_OtherObject(t *testing.T) {
	payload := WebhookPayload{Object: "page"}
	assert.Empty(t, Normalize(payload))
}

func TestHandleWebhookVerification(t *testing.T) {
	bot := testBot(Config{VerifyToken: "s3cret"})

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantBody string
	}{
		{name: "ok", query: "hub.mode=subscribe&hub.verify_token=s3cret&hub.challenge=42", wantCode: http.StatusOK, wantBody: "42"},
		{name: "wrong token", query: "hub.mode=subscribe&hub.verify_token=nope&hub.challenge=42", wantCode: http.StatusForbidden},
		{name: "wrong mode", query: "hub.mode=unsubscribe&hub.verify_token=s3cret&hub.challenge=42", wantCode: http.StatusForbidden},
		{name: "missing params", query: "", wantCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/webhook?"+tt.query, nil)
			rec := httptest.NewRecorder()
			bot.HandleWebhookVerification(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestHandleWebhook_DispatchesEvents(t *testing.T) {
	bot := testBot(Config{})
	h := &recordingHandler{}
	bot.SetEventHandler(h)

	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(inboundPayload))
	rec := httptest.NewRecorder()
	bot.HandleWebhook(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, receivedAck, rec.Body.String())
	require.Len(t, h.events, 3)
	assert.Equal(t, "5565111", h.events[0].from)
	assert.Equal(t, "oi", h.events[0].input.Value)
}

func TestHandleWebhook_MalformedJSON(t *testing.T) {
	bot := testBot(Config{})
	h := &recordingHandler{}
	bot.SetEventHandler(h)

	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	bot.HandleWebhook(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, h.events)
}

func TestHandleWebhook_UnrelatedPayloadAcknowledged(t *testing.T) {
	bot := testBot(Config{})
	h := &recordingHandler{}
	bot.SetEventHandler(h)

	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(`{"object":"instagram","entry":[]}`))
	rec := httptest.NewRecorder()
	bot.HandleWebhook(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, h.events)
}

func TestHandleWebhook_Signature(t *testing.T) {
	const secret = "app-secret"
	bot := testBot(Config{AppSecret: secret})
	h := &recordingHandler{}
	bot.SetEventHandler(h)

	send := func(signature string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(inboundPayload))
		if signature != "" {
			req.Header.Set("X-Hub-Signature-256", signature)
		}
		rec := httptest.NewRecorder()
		bot.HandleWebhook(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, send(""))
	assert.Equal(t, http.StatusForbidden, send("sha256=deadbeef"))
	assert.Equal(t, http.StatusForbidden, send(sign("other", inboundPayload)))
	assert.Empty(t, h.events)

	assert.Equal(t, http.StatusOK, send(sign(secret, inboundPayload)))
	assert.Len(t, h.events, 3)
}

func TestSendRequest(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody MessageRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	bot := testBot(Config{AccessToken: "tok", PhoneNumberID: "10203", BaseURL: srv.URL + "/"})

	require.NoError(t, bot.SendText(context.Background(), "5565111", "olá"))
	assert.Equal(t, "/v19.0/10203/messages", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "whatsapp", gotBody.MessagingProduct)
	assert.Equal(t, "text", gotBody.Type)
	require.NotNil(t, gotBody.Text)
	assert.Equal(t, "olá", gotBody.Text.Body)

	err := bot.SendInteractive(context.Background(), "5565111", &Interactive{
		Type:   InteractiveButton,
		Body:   InteractiveText{Text: "Escolha"},
		Action: InteractiveAction{Buttons: []ReplyButton{{Type: "reply", Reply: Reply{ID: "a", Title: "A"}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "interactive", gotBody.Type)
	require.NotNil(t, gotBody.Interactive)
	assert.Equal(t, "a", gotBody.Interactive.Action.Buttons[0].Reply.ID)
}

func TestSendRequest_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid recipient"}}`))
	}))
	defer srv.Close()

	bot := testBot(Config{BaseURL: srv.URL})
	err := bot.SendText(context.Background(), "x", "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "invalid recipient")
}
