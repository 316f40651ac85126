package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RideDesk/entity"
)

type stubBookings map[string]*entity.Booking

func (s stubBookings) GetBooking(_ context.Context, id string) (*entity.Booking, error) {
	b, ok := s[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return b, nil
}

type stubConversations struct {
	reset []string
}

func (s *stubConversations) ResetConversation(_ context.Context, userID string) error {
	s.reset = append(s.reset, userID)
	return nil
}

func newCore() *Core {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCore_AuthenticateByToken(t *testing.T) {
	c := newCore()

	_, err := c.AuthenticateByToken("anything")
	assert.ErrorIs(t, err, ErrAuthDisabled)

	c.SetAuthKey("k3y")
	name, err := c.AuthenticateByToken("k3y")
	require.NoError(t, err)
	assert.Equal(t, apiClientName, name)

	_, err = c.ValidateToken("k3")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCore_NotConfigured(t *testing.T) {
	c := newCore()

	_, err := c.GetBooking(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotAvailable)
	assert.ErrorIs(t, c.ResetConversation(context.Background(), "x"), ErrNotAvailable)
}

func TestCore_Delegates(t *testing.T) {
	c := newCore()
	conv := &stubConversations{}
	c.SetBookingReader(stubBookings{"b1": {ID: "b1"}})
	c.SetConversations(conv)

	b, err := c.GetBooking(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)

	require.NoError(t, c.ResetConversation(context.Background(), "5565111"))
	assert.Equal(t, []string{"5565111"}, conv.reset)
}

func TestCore_Health(t *testing.T) {
	c := newCore()

	status, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Empty(t, status)

	c.AddHealthCheck("redis", func(context.Context) error { return nil })
	c.AddHealthCheck("mongo", func(context.Context) error { return errors.New("connection refused") })

	status, err = c.Health(context.Background())
	require.Error(t, err)
	assert.Equal(t, map[string]string{"redis": "ok", "mongo": "connection refused"}, status)
}
