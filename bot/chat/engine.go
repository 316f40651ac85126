package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"RideDesk/internal/lib/sl"
)

const (
	maxTransitions = 20

	DefaultCancelMessage = "❌ Atendimento cancelado. Se precisar de algo, é só chamar!"
	DefaultRetryMessage  = "⚠️ Não consegui processar sua resposta. Tente novamente ou digite *cancelar* para recomeçar."
)

// EngineOptions tunes the engine's fixed replies and keywords.
type EngineOptions struct {
	CancelKeywords []string
	CancelMessage  string
	RetryMessage   string
}

func (o *EngineOptions) withDefaults() EngineOptions {
	out := EngineOptions{}
	if o != nil {
		out = *o
	}
	if len(out.CancelKeywords) == 0 {
		out.CancelKeywords = []string{"cancelar", "cancel"}
	}
	if out.CancelMessage == "" {
		out.CancelMessage = DefaultCancelMessage
	}
	if out.RetryMessage == "" {
		out.RetryMessage = DefaultRetryMessage
	}
	return out
}

// ChatEngine runs a workflow for every inbound event: it loads the sender's
// session, applies one transition and saves the result. A failed event leaves
// the stored session untouched.
type ChatEngine struct {
	workflow   Workflow
	storage    ChatStateStorage
	dispatcher Dispatcher
	locks      *SenderLocks
	opts       EngineOptions
	log        *slog.Logger
	listener   MessageListener
}

// NewChatEngine creates a new chat engine.
func NewChatEngine(w Workflow, storage ChatStateStorage, d Dispatcher, opts *EngineOptions, log *slog.Logger) *ChatEngine {
	return &ChatEngine{
		workflow:   w,
		storage:    storage,
		dispatcher: d,
		locks:      NewSenderLocks(),
		opts:       opts.withDefaults(),
		log:        log.With(sl.Module("chat.engine")),
	}
}

// SetMessageListener sets the listener for incoming messages.
func (e *ChatEngine) SetMessageListener(l MessageListener) {
	e.listener = l
}

// HandleEvent processes one inbound event from a sender. Errors are logged
// and answered with the retry message before being returned.
func (e *ChatEngine) HandleEvent(ctx context.Context, userID string, input UserInput) error {
	unlock := e.locks.Lock(userID)
	defer unlock()

	state, err := e.storage.Load(ctx, userID)
	if err != nil {
		err = fmt.Errorf("loading state: %w", err)
		e.reportFailure(ctx, userID, "", err)
		return err
	}
	if state == nil {
		state = NewChatState(userID, e.workflow.InitialStep())
	}

	if e.listener != nil {
		e.listener.OnInbound(userID, input, state.CurrentStep)
	}

	if IsKeyword(input.Value, e.opts.CancelKeywords) {
		return e.cancel(ctx, state)
	}

	step, ok := e.workflow.GetStep(state.CurrentStep)
	if !ok {
		err = fmt.Errorf("%w: %s", ErrUnknownStep, state.CurrentStep)
		e.reportFailure(ctx, userID, state.CurrentStep, err)
		return err
	}

	input, err = e.normalize(step, state, input)
	if err != nil {
		e.reportFailure(ctx, userID, state.CurrentStep, err)
		return err
	}

	from := state.CurrentStep
	result := step.HandleInput(ctx, e.dispatcher, state, input)
	if err = e.processResult(ctx, state, result); err != nil {
		e.reportFailure(ctx, userID, from, err)
		return err
	}
	return nil
}

// ResetConversation drops the sender's session without messaging them.
func (e *ChatEngine) ResetConversation(ctx context.Context, userID string) error {
	unlock := e.locks.Lock(userID)
	defer unlock()

	return e.storage.Delete(ctx, userID)
}

// normalize checks the input against the step's regime. A numbered text
// reply to a selection step is mapped to the matching offered id.
func (e *ChatEngine) normalize(step Step, state *ChatState, input UserInput) (UserInput, error) {
	mode := step.Accepts()
	if mode.accepts(input.Kind) {
		return input, nil
	}
	if mode == AcceptSelection && input.Kind == InputText {
		if id := MatchNumberToOffered(input.Value, state.Offered); id != "" {
			return UserInput{Kind: InputSelection, Value: id}, nil
		}
	}
	return input, fmt.Errorf("%w: %s input at %s", ErrUnexpectedInput, input.Kind, step.ID())
}

// cancel acknowledges first and deletes afterwards so the user is told even
// if the delete fails.
func (e *ChatEngine) cancel(ctx context.Context, state *ChatState) error {
	e.dispatcher.Dispatch(ctx, state.UserID, TextMessage(e.opts.CancelMessage))

	if err := e.storage.Delete(ctx, state.UserID); err != nil {
		e.log.Error("delete cancelled session",
			slog.String("user_id", state.UserID),
			sl.Err(err),
		)
		return fmt.Errorf("deleting state: %w", err)
	}

	e.log.Info("conversation cancelled",
		slog.String("user_id", state.UserID),
		slog.String("step_id", string(state.CurrentStep)),
	)
	return nil
}

func (e *ChatEngine) reportFailure(ctx context.Context, userID string, stepID StepID, err error) {
	e.log.Error("step error",
		slog.String("user_id", userID),
		slog.String("step_id", string(stepID)),
		sl.Err(err),
	)
	e.dispatcher.Dispatch(ctx, userID, TextMessage(e.opts.RetryMessage))
}

// processResult handles the result of a step handler: transitions, chaining
// and the single save at the end of the event.
func (e *ChatEngine) processResult(ctx context.Context, state *ChatState, result StepResult) error {
	for i := 0; ; i++ {
		if result.Error != nil {
			return result.Error
		}

		if result.Complete {
			e.log.Info("conversation completed",
				slog.String("user_id", state.UserID),
			)
			if err := e.storage.Delete(ctx, state.UserID); err != nil {
				return fmt.Errorf("deleting state: %w", err)
			}
			return nil
		}

		if result.NextStep == "" || result.NextStep == state.CurrentStep {
			break
		}
		if i >= maxTransitions {
			return fmt.Errorf("%w: stopped at %s", ErrTransitionLoop, result.NextStep)
		}

		step, ok := e.workflow.GetStep(result.NextStep)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownStep, result.NextStep)
		}

		e.log.Debug("transitioning",
			slog.String("user_id", state.UserID),
			slog.String("from", string(state.CurrentStep)),
			slog.String("step_id", string(result.NextStep)),
		)

		state.CurrentStep = result.NextStep
		result = step.Enter(ctx, e.dispatcher, state)
	}

	state.UpdatedAt = time.Now()
	if err := e.storage.Save(ctx, state); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}
