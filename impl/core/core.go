package core

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"RideDesk/entity"
	"RideDesk/internal/lib/sl"
)

const apiClientName = "backoffice"

var (
	ErrAuthDisabled = errors.New("authentication not enabled")
	ErrInvalidToken = errors.New("invalid token")
	ErrNotAvailable = errors.New("service not configured")
)

type BookingReader interface {
	GetBooking(ctx context.Context, id string) (*entity.Booking, error)
}

type Conversations interface {
	ResetConversation(ctx context.Context, userID string) error
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Core is the facade the HTTP layer talks to.
type Core struct {
	bookings      BookingReader
	conversations Conversations
	checks        map[string]HealthCheck
	authKey       string
	log           *slog.Logger
}

func New(log *slog.Logger) *Core {
	return &Core{
		log:    log.With(sl.Module("core")),
		checks: make(map[string]HealthCheck),
	}
}

func (c *Core) SetAuthKey(key string) {
	c.authKey = key
}

func (c *Core) SetBookingReader(r BookingReader) {
	c.bookings = r
}

func (c *Core) SetConversations(conv Conversations) {
	c.conversations = conv
}

func (c *Core) AddHealthCheck(name string, check HealthCheck) {
	c.checks[name] = check
}

// AuthenticateByToken accepts the static API key and returns the client name.
func (c *Core) AuthenticateByToken(token string) (string, error) {
	if c.authKey == "" {
		return "", ErrAuthDisabled
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(c.authKey)) != 1 {
		return "", ErrInvalidToken
	}
	return apiClientName, nil
}

// ValidateToken is AuthenticateByToken for the WebSocket feed.
func (c *Core) ValidateToken(token string) (string, error) {
	return c.AuthenticateByToken(token)
}

func (c *Core) GetBooking(ctx context.Context, id string) (*entity.Booking, error) {
	if c.bookings == nil {
		return nil, ErrNotAvailable
	}
	return c.bookings.GetBooking(ctx, id)
}

func (c *Core) ResetConversation(ctx context.Context, userID string) error {
	if c.conversations == nil {
		return ErrNotAvailable
	}
	if err := c.conversations.ResetConversation(ctx, userID); err != nil {
		return fmt.Errorf("reset conversation: %w", err)
	}
	c.log.Info("conversation reset", slog.String("user_id", userID))
	return nil
}

// Health runs every registered check. The map holds "ok" or the error text
// per dependency; the error is set if any check failed.
func (c *Core) Health(ctx context.Context) (map[string]string, error) {
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := make(map[string]string, len(names))
	var failed []string
	for _, name := range names {
		if err := c.checks[name](ctx); err != nil {
			status[name] = err.Error()
			failed = append(failed, name)
			c.log.Warn("health check failed", slog.String("check", name), sl.Err(err))
			continue
		}
		status[name] = "ok"
	}
	if len(failed) > 0 {
		return status, fmt.Errorf("unhealthy: %v", failed)
	}
	return status, nil
}
