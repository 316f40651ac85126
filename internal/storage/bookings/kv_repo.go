package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"RideDesk/entity"
	"RideDesk/internal/storage/kv"
)

const keyPrefix = "booking:"

var (
	ErrExists   = errors.New("booking already exists")
	ErrNotFound = errors.New("booking not found")
)

// KVRepository stores booking records in the key-value store under the
// "booking:" namespace, apart from the per-sender session keys.
type KVRepository struct {
	store kv.Store
}

func NewKVRepository(store kv.Store) *KVRepository {
	return &KVRepository{store: store}
}

func Key(id string) string {
	return keyPrefix + id
}

// SaveBooking writes a new record. Records are write-once.
func (r *KVRepository) SaveBooking(ctx context.Context, b *entity.Booking) error {
	key := Key(b.ID)

	_, err := r.store.Get(ctx, key)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrExists, b.ID)
	case !errors.Is(err, kv.ErrNotFound):
		return fmt.Errorf("check booking: %w", err)
	}

	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal booking: %w", err)
	}
	if err := r.store.Set(ctx, key, data, 0); err != nil {
		return fmt.Errorf("save booking: %w", err)
	}
	return nil
}

func (r *KVRepository) GetBooking(ctx context.Context, id string) (*entity.Booking, error) {
	data, err := r.store.Get(ctx, Key(id))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}

	var b entity.Booking
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode booking: %w", err)
	}
	return &b, nil
}
