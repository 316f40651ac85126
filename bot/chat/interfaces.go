package chat

import (
	"context"
)

// StepID is a unique identifier for a step within a workflow.
type StepID string

// InputKind tells free text apart from a button or list reply.
type InputKind string

const (
	InputText      InputKind = "text"
	InputSelection InputKind = "selection"
)

// InputMode is the kind of input a step is willing to handle.
type InputMode int

const (
	AcceptAny InputMode = iota
	AcceptText
	AcceptSelection
)

// UserInput represents a normalized inbound event.
type UserInput struct {
	Kind  InputKind
	Value string // message body or selection id
}

func (m InputMode) accepts(kind InputKind) bool {
	switch m {
	case AcceptText:
		return kind == InputText
	case AcceptSelection:
		return kind == InputSelection
	}
	return true
}

// StepResult represents the outcome of handling an event in a step.
type StepResult struct {
	NextStep StepID
	Complete bool
	Error    error
}

// Step defines the interface for a single workflow step.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() StepID

	// Accepts reports which input kind the step handles.
	Accepts() InputMode

	// Enter is called when the conversation moves into this step.
	// Return a StepResult with NextStep set to auto-transition without waiting for user input.
	Enter(ctx context.Context, d Dispatcher, state *ChatState) StepResult

	// HandleInput processes user input.
	HandleInput(ctx context.Context, d Dispatcher, state *ChatState, input UserInput) StepResult
}

// Workflow defines the interface for a complete workflow.
type Workflow interface {
	// InitialStep returns the step new sessions start at.
	InitialStep() StepID

	// GetStep returns a step by its ID.
	GetStep(id StepID) (Step, bool)
}

// ChatStateStorage handles persistence of chat states.
type ChatStateStorage interface {
	Save(ctx context.Context, state *ChatState) error
	Load(ctx context.Context, userID string) (*ChatState, error)
	Delete(ctx context.Context, userID string) error
}

// Messenger is the transport adapter that delivers an outbound message.
type Messenger interface {
	Send(ctx context.Context, to string, msg OutboundMessage) error
}

// Dispatcher renders outbound messages for the state machine.
// Delivery failures are reported, never raised.
type Dispatcher interface {
	Dispatch(ctx context.Context, to string, msg OutboundMessage) Delivery
}

// MessageListener is notified of every inbound event before it is processed.
type MessageListener interface {
	OnInbound(userID string, input UserInput, step StepID)
}
