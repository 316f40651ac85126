package booking

import (
	"fmt"
	"strconv"
	"strings"
)

// Selection id prefixes and fixed ids.
const (
	LocationPrefix   = "loc_"
	PassengersPrefix = "pass_"
	EscapeID         = "outro_local"
)

// Fixed action ids.
const (
	ActionStartQuote    = "fazer_cotacao"
	ActionShowPrices    = "ver_precos"
	ActionDirectContact = "contato_direto"
	ActionConfirmTrip   = "confirmar_viagem"
	ActionNewQuote      = "nova_cotacao"
)

type SelectionKind int

const (
	SelectionAction SelectionKind = iota + 1
	SelectionLocation
	SelectionPassengers
	SelectionEscape
)

// Selection is a parsed button or list reply id.
type Selection struct {
	Kind       SelectionKind
	Action     string
	Location   string
	Passengers int
}

func LocationID(name string) string {
	return LocationPrefix + name
}

func PassengersID(n int) string {
	return PassengersPrefix + strconv.Itoa(n)
}

// ParseSelection decodes a selection id. Ids without a known prefix are
// treated as actions; a malformed location or passenger id is an error.
func ParseSelection(id string) (Selection, error) {
	switch {
	case id == "":
		return Selection{}, fmt.Errorf("empty selection id")
	case id == EscapeID:
		return Selection{Kind: SelectionEscape}, nil
	case strings.HasPrefix(id, LocationPrefix):
		name := strings.TrimPrefix(id, LocationPrefix)
		if strings.TrimSpace(name) == "" {
			return Selection{}, fmt.Errorf("location id without name: %q", id)
		}
		return Selection{Kind: SelectionLocation, Location: name}, nil
	case strings.HasPrefix(id, PassengersPrefix):
		n, err := strconv.Atoi(strings.TrimPrefix(id, PassengersPrefix))
		if err != nil {
			return Selection{}, fmt.Errorf("passenger id %q: %w", id, err)
		}
		if n < 1 {
			return Selection{}, fmt.Errorf("passenger id %q: count must be positive", id)
		}
		return Selection{Kind: SelectionPassengers, Passengers: n}, nil
	}
	return Selection{Kind: SelectionAction, Action: id}, nil
}
