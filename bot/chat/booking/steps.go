package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"RideDesk/bot/chat"
	"RideDesk/entity"
)

// send dispatches a prompt and remembers its selection ids. Delivery
// failures are already logged by the dispatcher and do not stop the flow.
func send(ctx context.Context, d chat.Dispatcher, state *chat.ChatState, msg chat.OutboundMessage) {
	state.SetOffered(msg.SelectionIDs()...)
	d.Dispatch(ctx, state.UserID, msg)
}

func unexpected(step chat.StepID, id string) chat.StepResult {
	return chat.StepResult{Error: fmt.Errorf("%w: %q at %s", chat.ErrUnexpectedInput, id, step)}
}

// parseAction accepts only fixed action ids; location, passenger and
// escape ids are rejected at menu steps.
func parseAction(step chat.StepID, id string) (string, error) {
	sel, err := ParseSelection(id)
	if err != nil {
		return "", fmt.Errorf("%w: %v", chat.ErrUnexpectedInput, err)
	}
	if sel.Kind != SelectionAction {
		return "", fmt.Errorf("%w: %q at %s", chat.ErrUnexpectedInput, id, step)
	}
	return sel.Action, nil
}

// waiting is embedded by steps that only act on input.
type waiting struct{}

func (waiting) Enter(context.Context, chat.Dispatcher, *chat.ChatState) chat.StepResult {
	return chat.StepResult{}
}

// WelcomeStep greets the customer and offers the start menu.
type WelcomeStep struct {
	texts texts
}

func (s *WelcomeStep) ID() chat.StepID         { return StepWelcome }
func (s *WelcomeStep) Accepts() chat.InputMode { return chat.AcceptAny }

func (s *WelcomeStep) Enter(ctx context.Context, d chat.Dispatcher, state *chat.ChatState) chat.StepResult {
	send(ctx, d, state, s.texts.welcome())
	return chat.StepResult{NextStep: StepAwaitingStartChoice}
}

func (s *WelcomeStep) HandleInput(ctx context.Context, d chat.Dispatcher, state *chat.ChatState, _ chat.UserInput) chat.StepResult {
	return s.Enter(ctx, d, state)
}

// StartChoiceStep handles the start menu.
type StartChoiceStep struct {
	waiting
	texts texts
}

func (s *StartChoiceStep) ID() chat.StepID         { return StepAwaitingStartChoice }
func (s *StartChoiceStep) Accepts() chat.InputMode { return chat.AcceptSelection }

func (s *StartChoiceStep) HandleInput(ctx context.Context, d chat.Dispatcher, state *chat.ChatState, input chat.UserInput) chat.StepResult {
	action, err := parseAction(s.ID(), input.Value)
	if err != nil {
		return chat.StepResult{Error: err}
	}

	switch action {
	case ActionStartQuote:
		return chat.StepResult{NextStep: StepOriginPrompt}
	case ActionShowPrices:
		d.Dispatch(ctx, state.UserID, s.texts.priceTable())
		return chat.StepResult{NextStep: StepWelcome}
	case ActionDirectContact:
		d.Dispatch(ctx, state.UserID, s.texts.contact())
		return chat.StepResult{NextStep: StepWelcome}
	}
	return unexpected(s.ID(), input.Value)
}

// OriginPromptStep shows the list of departure points.
type OriginPromptStep struct {
	texts texts
}

func (s *OriginPromptStep) ID() chat.StepID         { return StepOriginPrompt }
func (s *OriginPromptStep) Accepts() chat.InputMode { return chat.AcceptAny }

func (s *OriginPromptStep) Enter(ctx context.Context, d chat.Dispatcher, state *chat.ChatState) chat.StepResult {
	send(ctx, d, state, s.texts.originList())
	return chat.StepResult{NextStep: StepAwaitingOriginChoice}
}

func (s *OriginPromptStep) HandleInput(ctx context.Context, d chat.Dispatcher, state *chat.ChatState, _ chat.UserInput) chat.StepResult {
	return s.Enter(ctx, d, state)
}

// DestinationPromptStep shows the list of destinations, echoing the origin.
type DestinationPromptStep struct {
	texts texts
}

func (s *DestinationPromptStep) ID() chat.StepID         { return StepDestinationPrompt }
func (s *DestinationPromptStep) Accepts() chat.InputMode { return chat.AcceptAny }

func (s *DestinationPromptStep) Enter(ctx context.Context, d chat.Dispatcher, state *chat.ChatState) chat.StepResult {
	send(ctx, d, state, s.texts.destinationList(state.Data.Origin))
	return chat.StepResult{NextStep: StepAwaitingDestinationChoice}
}

func (s *DestinationPromptStep) HandleInput(ctx context.Context, d chat.Dispatcher, state *chat.ChatState, _ chat.UserInput) chat.StepResult {
	return s.Enter(ctx, d, state)
}

// LocationChoiceStep handles a pick from a location list. The escape row
// switches to free text entry.
type LocationChoiceStep struct {
	waiting
	id       chat.StepID
	textStep chat.StepID
	next     chat.StepID
	prompt   string
	assign   func(d *entity.TripDraft, value string)
}

func (s *LocationChoiceStep) ID() chat.StepID         { return s.id }
func (s *LocationChoiceStep) Accepts() chat.InputMode { return chat.AcceptSelection }

func (s *LocationChoiceStep) HandleInput(ctx context.Context, d chat.Dispatcher, state *chat.ChatState, input chat.UserInput) chat.StepResult {
	sel, err := ParseSelection(input.Value)
	if err != nil {
		return chat.StepResult{Error: fmt.Errorf("%w: %v", chat.ErrUnexpectedInput, err)}
	}

	switch sel.Kind {
	case SelectionEscape:
		send(ctx, d, state, chat.TextMessage(s.prompt))
		return chat.StepResult{NextStep: s.textStep}
	case SelectionLocation:
		s.assign(&state.Data, sel.Location)
		return chat.StepResult{NextStep: s.next}
	}
	return unexpected(s.id, input.Value)
}

// LocationTextStep stores a typed address.
type LocationTextStep struct {
	waiting
	id     chat.StepID
	next   chat.StepID
	assign func(d *entity.TripDraft, value string)
}

func (s *LocationTextStep) ID() chat.StepID         { return s.id }
func (s *LocationTextStep) Accepts() chat.InputMode { return chat.AcceptText }

func (s *LocationTextStep) HandleInput(_ context.Context, _ chat.Dispatcher, state *chat.ChatState, input chat.UserInput) chat.StepResult {
	if strings.TrimSpace(input.Value) == "" {
		return unexpected(s.id, input.Value)
	}
	s.assign(&state.Data, input.Value)
	return chat.StepResult{NextStep: s.next}
}

// PassengerPromptStep asks how many people travel.
type PassengerPromptStep struct{}

func (s *PassengerPromptStep) ID() chat.StepID         { return StepPassengerPrompt }
func (s *PassengerPromptStep) Accepts() chat.InputMode { return chat.AcceptAny }

func (s *PassengerPromptStep) Enter(ctx context.Context, d chat.Dispatcher, state *chat.ChatState) chat.StepResult {
	send(ctx, d, state, passengerButtons())
	return chat.StepResult{NextStep: StepAwaitingPassengerChoice}
}

func (s *PassengerPromptStep) HandleInput(ctx context.Context, d chat.Dispatcher, state *chat.ChatState, _ chat.UserInput) chat.StepResult {
	return s.Enter(ctx, d, state)
}

// PassengerChoiceStep stores the passenger count, computes the quote and
// presents it for confirmation.
type PassengerChoiceStep struct {
	waiting
	calc QuoteCalculator
	log  *slog.Logger
}

func (s *PassengerChoiceStep) ID() chat.StepID         { return StepAwaitingPassengerChoice }
func (s *PassengerChoiceStep) Accepts() chat.InputMode { return chat.AcceptSelection }

func (s *PassengerChoiceStep) HandleInput(ctx context.Context, d chat.Dispatcher, state *chat.ChatState, input chat.UserInput) chat.StepResult {
	sel, err := ParseSelection(input.Value)
	if err != nil {
		return chat.StepResult{Error: fmt.Errorf("%w: %v", chat.ErrUnexpectedInput, err)}
	}
	if sel.Kind != SelectionPassengers {
		return unexpected(s.ID(), input.Value)
	}

	quote := s.calc.Quote(state.Data.Destination, sel.Passengers)
	state.Data.Passengers = sel.Passengers
	state.Data.Quote = &quote

	s.log.Debug("quote computed",
		slog.String("user_id", state.UserID),
		slog.String("destination", state.Data.Destination),
		slog.Int("passengers", sel.Passengers),
		slog.Float64("total", quote.Total),
	)

	send(ctx, d, state, quoteSummary(state.Data))
	return chat.StepResult{NextStep: StepConfirmation}
}

// ConfirmationStep accepts the quote or starts over.
type ConfirmationStep struct {
	waiting
}

func (s *ConfirmationStep) ID() chat.StepID         { return StepConfirmation }
func (s *ConfirmationStep) Accepts() chat.InputMode { return chat.AcceptSelection }

func (s *ConfirmationStep) HandleInput(ctx context.Context, d chat.Dispatcher, state *chat.ChatState, input chat.UserInput) chat.StepResult {
	action, err := parseAction(s.ID(), input.Value)
	if err != nil {
		return chat.StepResult{Error: err}
	}

	switch action {
	case ActionConfirmTrip:
		send(ctx, d, state, chat.TextMessage(textAskName))
		return chat.StepResult{NextStep: StepAwaitingName}
	case ActionNewQuote, ActionStartQuote:
		state.Reset()
		return chat.StepResult{NextStep: StepWelcome}
	}
	return unexpected(s.ID(), input.Value)
}

// NameStep stores the customer name.
type NameStep struct {
	waiting
}

func (s *NameStep) ID() chat.StepID         { return StepAwaitingName }
func (s *NameStep) Accepts() chat.InputMode { return chat.AcceptText }

func (s *NameStep) HandleInput(ctx context.Context, d chat.Dispatcher, state *chat.ChatState, input chat.UserInput) chat.StepResult {
	name := strings.TrimSpace(input.Value)
	if name == "" {
		return unexpected(s.ID(), input.Value)
	}
	state.Data.CustomerName = name
	send(ctx, d, state, askContact(name))
	return chat.StepResult{NextStep: StepAwaitingContact}
}

// ContactStep stores the contact phone and finalizes the booking.
type ContactStep struct {
	waiting
	finalizer *Finalizer
}

func (s *ContactStep) ID() chat.StepID         { return StepAwaitingContact }
func (s *ContactStep) Accepts() chat.InputMode { return chat.AcceptText }

func (s *ContactStep) HandleInput(ctx context.Context, d chat.Dispatcher, state *chat.ChatState, input chat.UserInput) chat.StepResult {
	contact := strings.TrimSpace(input.Value)
	if contact == "" {
		return unexpected(s.ID(), input.Value)
	}
	state.Data.CustomerContact = contact

	if _, err := s.finalizer.Finalize(ctx, d, state); err != nil {
		return chat.StepResult{Error: err}
	}
	return chat.StepResult{Complete: true}
}
