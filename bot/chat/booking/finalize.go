package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"RideDesk/bot/chat"
	"RideDesk/entity"
	"RideDesk/internal/catalog"
	"RideDesk/internal/lib/sl"
)

// BookingRepository persists confirmed bookings.
type BookingRepository interface {
	SaveBooking(ctx context.Context, b *entity.Booking) error
}

// EventPublisher receives every confirmed booking after it is stored.
type EventPublisher interface {
	PublishBooking(ctx context.Context, b entity.Booking) error
}

// Finalizer turns a completed conversation into a booking record and sends
// the closing messages.
type Finalizer struct {
	repo       BookingRepository
	texts      texts
	driverID   string
	publishers []EventPublisher
	validate   *validator.Validate
	now        func() time.Time
	newID      func() (string, error)
	log        *slog.Logger
}

func NewFinalizer(repo BookingRepository, cat *catalog.Catalog, log *slog.Logger, publishers ...EventPublisher) *Finalizer {
	return &Finalizer{
		repo:       repo,
		texts:      texts{catalog: cat},
		driverID:   cat.Driver.WhatsAppID(),
		publishers: publishers,
		validate:   validator.New(),
		now:        time.Now,
		newID:      newBookingID,
		log:        log.With(sl.Module("chat.finalizer")),
	}
}

func newBookingID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Finalize stores the booking, confirms it to the customer, notifies the
// driver and publishes the event. Only a failure to build or store the
// record is returned; the sends and publishing are best effort.
func (f *Finalizer) Finalize(ctx context.Context, d chat.Dispatcher, state *chat.ChatState) (*entity.Booking, error) {
	id, err := f.newID()
	if err != nil {
		return nil, fmt.Errorf("booking id: %w", err)
	}

	b, err := entity.NewBooking(id, f.now(), state.UserID, state.Data)
	if err != nil {
		return nil, err
	}
	if err = f.validate.Struct(b); err != nil {
		return nil, fmt.Errorf("invalid booking: %w", err)
	}

	if err = f.repo.SaveBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("saving booking: %w", err)
	}

	log := f.log.With(
		slog.String("booking_id", b.ID),
		slog.String("user_id", state.UserID),
	)
	log.Info("booking confirmed",
		slog.String("origin", b.Origin),
		slog.String("destination", b.Destination),
		slog.Float64("total", b.Total),
	)

	d.Dispatch(ctx, state.UserID, f.texts.customerConfirmation(b))
	if delivery := d.Dispatch(ctx, f.driverID, driverNotification(b)); !delivery.OK() {
		log.Warn("driver not notified", sl.Err(delivery.Reason))
	}

	for _, p := range f.publishers {
		if err := p.PublishBooking(ctx, *b); err != nil {
			log.Warn("publish booking", sl.Err(err))
		}
	}

	return b, nil
}
