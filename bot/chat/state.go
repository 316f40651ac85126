package chat

import (
	"time"

	"RideDesk/entity"
)

// ChatState is the per-sender conversation session.
type ChatState struct {
	UserID      string           `json:"user_id" bson:"user_id"`
	CurrentStep StepID           `json:"current_step" bson:"current_step"`
	Data        entity.TripDraft `json:"data" bson:"data"`
	Offered     []string         `json:"offered,omitempty" bson:"offered,omitempty"`
	UpdatedAt   time.Time        `json:"updated_at" bson:"updated_at"`
}

// NewChatState creates a new ChatState with empty data.
func NewChatState(userID string, initialStep StepID) *ChatState {
	return &ChatState{
		UserID:      userID,
		CurrentStep: initialStep,
		UpdatedAt:   time.Now(),
	}
}

// SetOffered remembers the selection ids shown by the latest prompt so a
// numbered text reply can be mapped back to them.
func (s *ChatState) SetOffered(ids ...string) {
	s.Offered = append([]string(nil), ids...)
}

// Reset clears everything collected so far.
func (s *ChatState) Reset() {
	s.Data = entity.TripDraft{}
	s.Offered = nil
}
