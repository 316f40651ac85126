package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"RideDesk/entity"
	"RideDesk/internal/storage/bookings"
)

// SaveBooking inserts a confirmed booking. Records are write-once; the
// unique id index turns a second insert into bookings.ErrExists.
func (m *MongoDB) SaveBooking(ctx context.Context, b *entity.Booking) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(bookingsCollection)

	_, err = collection.InsertOne(ctx, b)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", bookings.ErrExists, b.ID)
		}
		return fmt.Errorf("mongodb insert error: %w", err)
	}
	return nil
}

func (m *MongoDB) GetBooking(ctx context.Context, id string) (*entity.Booking, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(bookingsCollection)

	var b entity.Booking
	err = collection.FindOne(ctx, bson.D{{Key: "id", Value: id}}).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookings.ErrNotFound
		}
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	return &b, nil
}
