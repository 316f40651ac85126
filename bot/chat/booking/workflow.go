package booking

import (
	"log/slog"

	"RideDesk/bot/chat"
	"RideDesk/entity"
	"RideDesk/internal/catalog"
	"RideDesk/internal/lib/sl"
)

// Step IDs
const (
	StepWelcome                   chat.StepID = "welcome"
	StepAwaitingStartChoice       chat.StepID = "awaiting_start_choice"
	StepOriginPrompt              chat.StepID = "origin_prompt"
	StepAwaitingOriginChoice      chat.StepID = "awaiting_origin_choice"
	StepAwaitingOriginText        chat.StepID = "awaiting_origin_text"
	StepDestinationPrompt         chat.StepID = "destination_prompt"
	StepAwaitingDestinationChoice chat.StepID = "awaiting_destination_choice"
	StepAwaitingDestinationText   chat.StepID = "awaiting_destination_text"
	StepPassengerPrompt           chat.StepID = "passenger_prompt"
	StepAwaitingPassengerChoice   chat.StepID = "awaiting_passenger_choice"
	StepConfirmation              chat.StepID = "confirmation"
	StepAwaitingName              chat.StepID = "awaiting_name"
	StepAwaitingContact           chat.StepID = "awaiting_contact"
)

// QuoteCalculator prices a trip.
type QuoteCalculator interface {
	Quote(destination string, passengers int) entity.Quote
}

// BookingWorkflow implements the ride quote and booking conversation.
type BookingWorkflow struct {
	steps map[chat.StepID]chat.Step
}

func NewBookingWorkflow(cat *catalog.Catalog, calc QuoteCalculator, fin *Finalizer, log *slog.Logger) *BookingWorkflow {
	w := &BookingWorkflow{
		steps: make(map[chat.StepID]chat.Step),
	}
	t := texts{catalog: cat}
	log = log.With(sl.Module("chat.booking"))

	w.add(&WelcomeStep{texts: t})
	w.add(&StartChoiceStep{texts: t})
	w.add(&OriginPromptStep{texts: t})
	w.add(&LocationChoiceStep{
		id:       StepAwaitingOriginChoice,
		textStep: StepAwaitingOriginText,
		next:     StepDestinationPrompt,
		prompt:   textAskOrigin,
		assign:   func(d *entity.TripDraft, v string) { d.Origin = v },
	})
	w.add(&LocationTextStep{
		id:     StepAwaitingOriginText,
		next:   StepDestinationPrompt,
		assign: func(d *entity.TripDraft, v string) { d.Origin = v },
	})
	w.add(&DestinationPromptStep{texts: t})
	w.add(&LocationChoiceStep{
		id:       StepAwaitingDestinationChoice,
		textStep: StepAwaitingDestinationText,
		next:     StepPassengerPrompt,
		prompt:   textAskDestination,
		assign:   func(d *entity.TripDraft, v string) { d.Destination = v },
	})
	w.add(&LocationTextStep{
		id:     StepAwaitingDestinationText,
		next:   StepPassengerPrompt,
		assign: func(d *entity.TripDraft, v string) { d.Destination = v },
	})
	w.add(&PassengerPromptStep{})
	w.add(&PassengerChoiceStep{calc: calc, log: log})
	w.add(&ConfirmationStep{})
	w.add(&NameStep{})
	w.add(&ContactStep{finalizer: fin})

	return w
}

func (w *BookingWorkflow) add(s chat.Step) {
	w.steps[s.ID()] = s
}

func (w *BookingWorkflow) InitialStep() chat.StepID { return StepWelcome }

func (w *BookingWorkflow) GetStep(id chat.StepID) (chat.Step, bool) {
	step, ok := w.steps[id]
	return step, ok
}
