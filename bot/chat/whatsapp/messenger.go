package whatsapp

import (
	"context"
	"fmt"

	"RideDesk/bot/chat"
	"RideDesk/bot/whatsapp"
)

// Graph API length limits, in characters.
const (
	maxTextBody     = 4096
	maxInteractive  = 1024
	maxHeader       = 60
	maxFooter       = 60
	maxButtonTitle  = 20
	maxListButton   = 20
	maxSectionTitle = 24
	maxRowTitle     = 24
	maxRowDesc      = 72
)

// Sender delivers Graph API messages.
type Sender interface {
	SendText(ctx context.Context, to, text string) error
	SendInteractive(ctx context.Context, to string, interactive *whatsapp.Interactive) error
}

// Messenger implements chat.Messenger for WhatsApp.
type Messenger struct {
	sender Sender
}

// NewMessenger creates a new WhatsApp Messenger.
func NewMessenger(sender Sender) *Messenger {
	return &Messenger{sender: sender}
}

func (m *Messenger) Send(ctx context.Context, to string, msg chat.OutboundMessage) error {
	switch msg.Kind {
	case chat.KindText:
		return m.sender.SendText(ctx, to, truncate(msg.Body, maxTextBody))
	case chat.KindButtons:
		return m.sender.SendInteractive(ctx, to, buttons(msg))
	case chat.KindList:
		return m.sender.SendInteractive(ctx, to, list(msg))
	}
	return fmt.Errorf("%w: unsupported kind %q", chat.ErrInvalidMessage, msg.Kind)
}

func buttons(msg chat.OutboundMessage) *whatsapp.Interactive {
	out := &whatsapp.Interactive{
		Type: whatsapp.InteractiveButton,
		Body: whatsapp.InteractiveText{Text: truncate(msg.Body, maxInteractive)},
	}
	decorate(out, msg)
	for _, b := range msg.Buttons {
		out.Action.Buttons = append(out.Action.Buttons, whatsapp.ReplyButton{
			Type:  "reply",
			Reply: whatsapp.Reply{ID: b.ID, Title: truncate(b.Title, maxButtonTitle)},
		})
	}
	return out
}

func list(msg chat.OutboundMessage) *whatsapp.Interactive {
	out := &whatsapp.Interactive{
		Type: whatsapp.InteractiveList,
		Body: whatsapp.InteractiveText{Text: truncate(msg.Body, maxInteractive)},
		Action: whatsapp.InteractiveAction{
			Button: truncate(msg.Action, maxListButton),
		},
	}
	decorate(out, msg)
	for _, s := range msg.Rows {
		section := whatsapp.Section{Title: truncate(s.Title, maxSectionTitle)}
		for _, r := range s.Rows {
			section.Rows = append(section.Rows, whatsapp.Row{
				ID:          r.ID,
				Title:       truncate(r.Title, maxRowTitle),
				Description: truncate(r.Description, maxRowDesc),
			})
		}
		out.Action.Sections = append(out.Action.Sections, section)
	}
	return out
}

func decorate(out *whatsapp.Interactive, msg chat.OutboundMessage) {
	if msg.Header != "" {
		out.Header = &whatsapp.Header{Type: "text", Text: truncate(msg.Header, maxHeader)}
	}
	if msg.Footer != "" {
		out.Footer = &whatsapp.InteractiveText{Text: truncate(msg.Footer, maxFooter)}
	}
}

// truncate cuts s to at most n runes, ending with an ellipsis when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
