package entity

// Quote is the computed fare and time estimate for a trip.
// Values keep full precision; rounding happens only when formatting.
type Quote struct {
	BaseFare         float64 `json:"base_fare" bson:"base_fare"`
	Surcharge        float64 `json:"surcharge" bson:"surcharge"`
	Total            float64 `json:"total" bson:"total"`
	EstimatedMinutes int     `json:"estimated_minutes" bson:"estimated_minutes"`
}

// TripDraft accumulates the answers collected during a booking conversation.
type TripDraft struct {
	Origin          string `json:"origin,omitempty" bson:"origin,omitempty"`
	Destination     string `json:"destination,omitempty" bson:"destination,omitempty"`
	Passengers      int    `json:"passengers,omitempty" bson:"passengers,omitempty"`
	CustomerName    string `json:"customer_name,omitempty" bson:"customer_name,omitempty"`
	CustomerContact string `json:"customer_contact,omitempty" bson:"customer_contact,omitempty"`
	Quote           *Quote `json:"quote,omitempty" bson:"quote,omitempty"`
}

func (t *TripDraft) IsEmpty() bool {
	return *t == TripDraft{}
}
