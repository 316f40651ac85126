package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		id   string
		want Selection
	}{
		{id: "loc_Centro", want: Selection{Kind: SelectionLocation, Location: "Centro"}},
		{id: "loc_Cuiabá Centro", want: Selection{Kind: SelectionLocation, Location: "Cuiabá Centro"}},
		{id: "loc_loc_x", want: Selection{Kind: SelectionLocation, Location: "loc_x"}},
		{id: "pass_1", want: Selection{Kind: SelectionPassengers, Passengers: 1}},
		{id: "pass_3", want: Selection{Kind: SelectionPassengers, Passengers: 3}},
		{id: "pass_12", want: Selection{Kind: SelectionPassengers, Passengers: 12}},
		{id: "outro_local", want: Selection{Kind: SelectionEscape}},
		{id: "fazer_cotacao", want: Selection{Kind: SelectionAction, Action: ActionStartQuote}},
		{id: "confirmar_viagem", want: Selection{Kind: SelectionAction, Action: ActionConfirmTrip}},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := ParseSelection(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSelection_Malformed(t *testing.T) {
	for _, id := range []string{"", "loc_", "loc_  ", "pass_", "pass_x", "pass_0", "pass_-2", "pass_2.5"} {
		_, err := ParseSelection(id)
		assert.Error(t, err, id)
	}
}

func TestSelectionIDs_RoundTrip(t *testing.T) {
	s, err := ParseSelection(LocationID("Várzea Grande"))
	require.NoError(t, err)
	assert.Equal(t, "Várzea Grande", s.Location)

	s, err = ParseSelection(PassengersID(4))
	require.NoError(t, err)
	assert.Equal(t, 4, s.Passengers)
}
