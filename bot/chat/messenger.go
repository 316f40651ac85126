package chat

import (
	"fmt"
)

// MessageKind selects how an outbound message is rendered.
type MessageKind string

const (
	KindText    MessageKind = "text"
	KindButtons MessageKind = "buttons"
	KindList    MessageKind = "list"
)

// MaxButtons is the number of reply buttons a button prompt may carry.
const MaxButtons = 3

// Button is a reply option with a selection id.
type Button struct {
	ID    string
	Title string
}

// ListRow is a selectable row inside a list section.
type ListRow struct {
	ID          string
	Title       string
	Description string
}

// ListSection groups list rows under a title.
type ListSection struct {
	Title string
	Rows  []ListRow
}

// OutboundMessage is a transport-independent message descriptor.
type OutboundMessage struct {
	Kind    MessageKind
	Body    string
	Header  string
	Footer  string
	Action  string // list button label
	Buttons []Button
	Rows    []ListSection
}

func TextMessage(body string) OutboundMessage {
	return OutboundMessage{Kind: KindText, Body: body}
}

func ButtonMessage(body string, buttons ...Button) OutboundMessage {
	return OutboundMessage{Kind: KindButtons, Body: body, Buttons: buttons}
}

func ListMessage(header, body, footer, action string, sections ...ListSection) OutboundMessage {
	return OutboundMessage{
		Kind:   KindList,
		Header: header,
		Body:   body,
		Footer: footer,
		Action: action,
		Rows:   sections,
	}
}

// SelectionIDs returns the ids of all buttons or list rows, in display order.
func (m OutboundMessage) SelectionIDs() []string {
	var ids []string
	for _, b := range m.Buttons {
		ids = append(ids, b.ID)
	}
	for _, s := range m.Rows {
		for _, r := range s.Rows {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

func (m OutboundMessage) Validate() error {
	if m.Body == "" {
		return fmt.Errorf("%w: empty body", ErrInvalidMessage)
	}
	switch m.Kind {
	case KindText:
	case KindButtons:
		if len(m.Buttons) == 0 || len(m.Buttons) > MaxButtons {
			return fmt.Errorf("%w: %d buttons", ErrInvalidMessage, len(m.Buttons))
		}
		for _, b := range m.Buttons {
			if b.ID == "" || b.Title == "" {
				return fmt.Errorf("%w: button without id or title", ErrInvalidMessage)
			}
		}
	case KindList:
		if len(m.Rows) == 0 {
			return fmt.Errorf("%w: list without sections", ErrInvalidMessage)
		}
		for _, s := range m.Rows {
			if len(s.Rows) == 0 {
				return fmt.Errorf("%w: empty section %q", ErrInvalidMessage, s.Title)
			}
			for _, r := range s.Rows {
				if r.ID == "" || r.Title == "" {
					return fmt.Errorf("%w: row without id or title", ErrInvalidMessage)
				}
			}
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidMessage, m.Kind)
	}
	return nil
}
