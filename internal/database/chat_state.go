package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"RideDesk/bot/chat"
)

// SaveChatState replaces the sender's session document, creating it if
// needed.
func (m *MongoDB) SaveChatState(ctx context.Context, state *chat.ChatState) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(chatStatesCollection)

	filter := bson.D{{Key: "user_id", Value: state.UserID}}
	opts := options.Replace().SetUpsert(true)

	_, err = collection.ReplaceOne(ctx, filter, state, opts)
	return err
}

// LoadChatState returns nil, nil when the sender has no session.
func (m *MongoDB) LoadChatState(ctx context.Context, userID string) (*chat.ChatState, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(chatStatesCollection)

	filter := bson.D{{Key: "user_id", Value: userID}}

	var state chat.ChatState
	err = collection.FindOne(ctx, filter).Decode(&state)
	if err != nil {
		if err = m.findError(err); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &state, nil
}

// DeleteChatState removes a sender's session.
func (m *MongoDB) DeleteChatState(ctx context.Context, userID string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(chatStatesCollection)

	filter := bson.D{{Key: "user_id", Value: userID}}

	_, err = collection.DeleteOne(ctx, filter)
	return err
}
