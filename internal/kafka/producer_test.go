package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RideDesk/entity"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testProducer(w messageWriter) *Producer {
	return &Producer{
		topic:  "ridedesk.bookings",
		writer: w,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestProducer_PublishBooking(t *testing.T) {
	w := &fakeWriter{}
	p := testProducer(w)

	b := entity.Booking{
		ID:          "0192f0c4-7a10-7000-8000-000000000001",
		CreatedAt:   time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Origin:      "Centro",
		Destination: "UFMT",
		Passengers:  2,
		Total:       88,
		Status:      entity.BookingStatusConfirmed,
	}
	require.NoError(t, p.PublishBooking(context.Background(), b))

	require.Len(t, w.messages, 1)
	assert.Equal(t, []byte(b.ID), w.messages[0].Key)

	var event BookingEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &event))
	assert.Equal(t, EventBookingConfirmed, event.Type)
	assert.Equal(t, b.ID, event.BookingID)
	assert.Equal(t, "UFMT", event.Booking.Destination)
	assert.Equal(t, 88.0, event.Booking.Total)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducer_WriteFailure(t *testing.T) {
	p := testProducer(&fakeWriter{err: errors.New("leader not available")})

	err := p.PublishBooking(context.Background(), entity.Booking{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}
