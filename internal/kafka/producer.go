package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"RideDesk/entity"
	"RideDesk/internal/lib/sl"
)

const EventBookingConfirmed = "booking_confirmed"

// BookingEvent is the message published for every confirmed booking.
type BookingEvent struct {
	Type       string         `json:"type"`
	BookingID  string         `json:"booking_id"`
	Booking    entity.Booking `json:"booking"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	brokers []string
	topic   string
	writer  messageWriter
	log     *slog.Logger
}

func NewProducer(brokers []string, topic string, log *slog.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		brokers: brokers,
		topic:   topic,
		writer:  writer,
		log:     log.With(sl.Module("kafka.producer")),
	}
}

// PublishBooking writes a booking_confirmed event keyed by booking id, so
// events of one booking stay on one partition.
func (p *Producer) PublishBooking(ctx context.Context, b entity.Booking) error {
	event := BookingEvent{
		Type:       EventBookingConfirmed,
		BookingID:  b.ID,
		Booking:    b,
		OccurredAt: time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(b.ID),
		Value: data,
		Time:  event.OccurredAt,
	}
	if err = p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.log.Debug("booking event published",
		slog.String("topic", p.topic),
		slog.String("booking_id", b.ID),
	)
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	if _, err = conn.Brokers(); err != nil {
		return fmt.Errorf("failed to read brokers: %w", err)
	}
	return nil
}
