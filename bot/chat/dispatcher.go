package chat

import (
	"context"
	"log/slog"

	"RideDesk/internal/lib/sl"
)

type DeliveryStatus string

const (
	Delivered DeliveryStatus = "delivered"
	Failed    DeliveryStatus = "failed"
)

// Delivery is the outcome of a single outbound send.
type Delivery struct {
	Status DeliveryStatus
	Reason error
}

func (d Delivery) OK() bool {
	return d.Status == Delivered
}

// MessageDispatcher validates and sends outbound messages through a Messenger.
// A failed send is logged and returned as a Delivery; it never undoes the
// state transition that produced the message.
type MessageDispatcher struct {
	messenger Messenger
	log       *slog.Logger
}

func NewMessageDispatcher(m Messenger, log *slog.Logger) *MessageDispatcher {
	return &MessageDispatcher{
		messenger: m,
		log:       log.With(sl.Module("chat.dispatcher")),
	}
}

func (d *MessageDispatcher) Dispatch(ctx context.Context, to string, msg OutboundMessage) Delivery {
	if err := msg.Validate(); err != nil {
		d.log.Error("invalid outbound message",
			slog.String("recipient", to),
			slog.String("kind", string(msg.Kind)),
			sl.Err(err),
		)
		return Delivery{Status: Failed, Reason: err}
	}

	if err := d.messenger.Send(ctx, to, msg); err != nil {
		d.log.Warn("message delivery failed",
			slog.String("recipient", to),
			slog.String("kind", string(msg.Kind)),
			sl.Err(err),
		)
		return Delivery{Status: Failed, Reason: err}
	}

	d.log.Debug("message delivered",
		slog.String("recipient", to),
		slog.String("kind", string(msg.Kind)),
	)
	return Delivery{Status: Delivered}
}
