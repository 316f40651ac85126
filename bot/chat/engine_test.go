package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcStep struct {
	id     StepID
	mode   InputMode
	enter  func(ctx context.Context, d Dispatcher, s *ChatState) StepResult
	handle func(ctx context.Context, d Dispatcher, s *ChatState, in UserInput) StepResult
}

func (f *funcStep) ID() StepID         { return f.id }
func (f *funcStep) Accepts() InputMode { return f.mode }

func (f *funcStep) Enter(ctx context.Context, d Dispatcher, s *ChatState) StepResult {
	if f.enter == nil {
		return StepResult{}
	}
	return f.enter(ctx, d, s)
}

func (f *funcStep) HandleInput(ctx context.Context, d Dispatcher, s *ChatState, in UserInput) StepResult {
	if f.handle == nil {
		return StepResult{}
	}
	return f.handle(ctx, d, s, in)
}

type testWorkflow map[StepID]Step

func (w testWorkflow) InitialStep() StepID { return "start" }

func (w testWorkflow) GetStep(id StepID) (Step, bool) {
	s, ok := w[id]
	return s, ok
}

func newTestWorkflow() testWorkflow {
	w := testWorkflow{}
	add := func(s *funcStep) { w[s.id] = s }

	greet := func(ctx context.Context, d Dispatcher, s *ChatState) StepResult {
		msg := ButtonMessage("hello", Button{ID: "go", Title: "Go"}, Button{ID: "done", Title: "Done"})
		s.SetOffered(msg.SelectionIDs()...)
		d.Dispatch(ctx, s.UserID, msg)
		return StepResult{NextStep: "ask"}
	}
	add(&funcStep{
		id:    "start",
		mode:  AcceptAny,
		enter: greet,
		handle: func(ctx context.Context, d Dispatcher, s *ChatState, _ UserInput) StepResult {
			return greet(ctx, d, s)
		},
	})
	add(&funcStep{
		id:   "ask",
		mode: AcceptSelection,
		handle: func(ctx context.Context, d Dispatcher, s *ChatState, in UserInput) StepResult {
			switch in.Value {
			case "go":
				return StepResult{NextStep: "relay"}
			case "done":
				return StepResult{Complete: true}
			case "loop":
				return StepResult{NextStep: "ping"}
			case "lost":
				return StepResult{NextStep: "nowhere"}
			case "inc":
				s.Data.Passengers++
				return StepResult{}
			}
			s.Data.Origin = "mutated before failing"
			return StepResult{Error: errors.New("bad choice")}
		},
	})
	add(&funcStep{
		id:   "relay",
		mode: AcceptAny,
		enter: func(ctx context.Context, d Dispatcher, s *ChatState) StepResult {
			d.Dispatch(ctx, s.UserID, TextMessage("type something"))
			return StepResult{NextStep: "free"}
		},
	})
	add(&funcStep{
		id:   "free",
		mode: AcceptText,
		handle: func(_ context.Context, _ Dispatcher, s *ChatState, in UserInput) StepResult {
			s.Data.Origin = in.Value
			return StepResult{NextStep: "ask"}
		},
	})
	add(&funcStep{id: "ping", mode: AcceptAny, enter: func(context.Context, Dispatcher, *ChatState) StepResult {
		return StepResult{NextStep: "pong"}
	}})
	add(&funcStep{id: "pong", mode: AcceptAny, enter: func(context.Context, Dispatcher, *ChatState) StepResult {
		return StepResult{NextStep: "ping"}
	}})
	return w
}

type memStorage struct {
	mu        sync.Mutex
	states    map[string]ChatState
	saves     int
	loadErr   error
	deleteErr error
	journal   *[]string
}

func newMemStorage() *memStorage {
	return &memStorage{states: make(map[string]ChatState)}
}

func (m *memStorage) Save(_ context.Context, s *ChatState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.states[s.UserID] = *s
	return nil
}

func (m *memStorage) Load(_ context.Context, userID string) (*ChatState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	s, ok := m.states[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memStorage) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.journal != nil {
		*m.journal = append(*m.journal, "delete")
	}
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.states, userID)
	return nil
}

func (m *memStorage) get(userID string) (ChatState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[userID]
	return s, ok
}

type recordingDispatcher struct {
	mu      sync.Mutex
	bodies  []string
	journal *[]string
}

func (r *recordingDispatcher) Dispatch(_ context.Context, _ string, msg OutboundMessage) Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies = append(r.bodies, msg.Body)
	if r.journal != nil {
		*r.journal = append(*r.journal, "send:"+msg.Body)
	}
	return Delivery{Status: Delivered}
}

type recordingListener struct {
	steps []StepID
}

func (l *recordingListener) OnInbound(_ string, _ UserInput, step StepID) {
	l.steps = append(l.steps, step)
}

func newTestEngine(storage ChatStateStorage, d Dispatcher) *ChatEngine {
	return NewChatEngine(newTestWorkflow(), storage, d, nil, testLogger())
}

func selection(v string) UserInput { return UserInput{Kind: InputSelection, Value: v} }
func text(v string) UserInput      { return UserInput{Kind: InputText, Value: v} }

func TestChatEngine_FirstEventStartsSession(t *testing.T) {
	storage := newMemStorage()
	d := &recordingDispatcher{}
	e := newTestEngine(storage, d)

	require.NoError(t, e.HandleEvent(context.Background(), "u1", text("oi")))

	assert.Equal(t, []string{"hello"}, d.bodies)
	state, ok := storage.get("u1")
	require.True(t, ok)
	assert.Equal(t, StepID("ask"), state.CurrentStep)
	assert.Equal(t, []string{"go", "done"}, state.Offered)
	assert.Equal(t, 1, storage.saves)
}

func TestChatEngine_ChainedTransitionsSaveOnce(t *testing.T) {
	storage := newMemStorage()
	d := &recordingDispatcher{}
	e := newTestEngine(storage, d)
	ctx := context.Background()

	require.NoError(t, e.HandleEvent(ctx, "u1", text("oi")))
	require.NoError(t, e.HandleEvent(ctx, "u1", selection("go")))

	state, _ := storage.get("u1")
	assert.Equal(t, StepID("free"), state.CurrentStep)
	assert.Equal(t, 2, storage.saves)
	assert.Equal(t, []string{"hello", "type something"}, d.bodies)
}

func TestChatEngine_NumberedReply(t *testing.T) {
	storage := newMemStorage()
	e := newTestEngine(storage, &recordingDispatcher{})
	ctx := context.Background()

	require.NoError(t, e.HandleEvent(ctx, "u1", text("oi")))
	require.NoError(t, e.HandleEvent(ctx, "u1", text("1")))

	state, _ := storage.get("u1")
	assert.Equal(t, StepID("free"), state.CurrentStep)
}

func TestChatEngine_CompleteDeletesSession(t *testing.T) {
	storage := newMemStorage()
	e := newTestEngine(storage, &recordingDispatcher{})
	ctx := context.Background()

	require.NoError(t, e.HandleEvent(ctx, "u1", text("oi")))
	require.NoError(t, e.HandleEvent(ctx, "u1", selection("done")))

	_, ok := storage.get("u1")
	assert.False(t, ok)
}

func TestChatEngine_ErrorLeavesSessionUnsaved(t *testing.T) {
	tests := []struct {
		name    string
		input   UserInput
		wantErr error
	}{
		{name: "step error", input: selection("nope")},
		{name: "wrong input kind", input: text("free text"), wantErr: ErrUnexpectedInput},
		{name: "transition loop", input: selection("loop"), wantErr: ErrTransitionLoop},
		{name: "unknown next step", input: selection("lost"), wantErr: ErrUnknownStep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newMemStorage()
			d := &recordingDispatcher{}
			e := newTestEngine(storage, d)
			ctx := context.Background()

			require.NoError(t, e.HandleEvent(ctx, "u1", text("oi")))
			before, _ := storage.get("u1")
			d.bodies = nil

			err := e.HandleEvent(ctx, "u1", tt.input)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			after, _ := storage.get("u1")
			assert.Equal(t, before, after)
			assert.Equal(t, 1, storage.saves)
			assert.Equal(t, []string{DefaultRetryMessage}, d.bodies)
		})
	}
}

func TestChatEngine_CancelAcknowledgesThenDeletes(t *testing.T) {
	var journal []string
	storage := newMemStorage()
	d := &recordingDispatcher{}
	e := newTestEngine(storage, d)
	ctx := context.Background()

	require.NoError(t, e.HandleEvent(ctx, "u1", text("oi")))
	storage.journal = &journal
	d.journal = &journal

	require.NoError(t, e.HandleEvent(ctx, "u1", text(" Cancel ")))

	assert.Equal(t, []string{"send:" + DefaultCancelMessage, "delete"}, journal)
	_, ok := storage.get("u1")
	assert.False(t, ok)

	storage.journal = nil
	d.journal = nil
	d.bodies = nil
	require.NoError(t, e.HandleEvent(ctx, "u1", text("oi de novo")))

	assert.Equal(t, []string{"hello"}, d.bodies)
	state, ok := storage.get("u1")
	require.True(t, ok)
	assert.Equal(t, StepID("ask"), state.CurrentStep)
}

func TestChatEngine_CancelDeleteFailure(t *testing.T) {
	storage := newMemStorage()
	storage.deleteErr = errors.New("redis down")
	d := &recordingDispatcher{}
	e := newTestEngine(storage, d)

	err := e.HandleEvent(context.Background(), "u1", text("cancelar"))
	require.Error(t, err)
	assert.Equal(t, []string{DefaultCancelMessage}, d.bodies)
}

func TestChatEngine_CustomOptions(t *testing.T) {
	storage := newMemStorage()
	d := &recordingDispatcher{}
	e := NewChatEngine(newTestWorkflow(), storage, d, &EngineOptions{
		CancelKeywords: []string{"sair"},
		CancelMessage:  "tchau",
	}, testLogger())

	require.NoError(t, e.HandleEvent(context.Background(), "u1", text("sair")))
	assert.Equal(t, []string{"tchau"}, d.bodies)
}

func TestChatEngine_LoadFailure(t *testing.T) {
	storage := newMemStorage()
	storage.loadErr = errors.New("connection refused")
	d := &recordingDispatcher{}
	e := newTestEngine(storage, d)

	err := e.HandleEvent(context.Background(), "u1", text("oi"))
	require.Error(t, err)
	assert.Equal(t, []string{DefaultRetryMessage}, d.bodies)
	assert.Equal(t, 0, storage.saves)
}

func TestChatEngine_ListenerSeesCurrentStep(t *testing.T) {
	storage := newMemStorage()
	e := newTestEngine(storage, &recordingDispatcher{})
	l := &recordingListener{}
	e.SetMessageListener(l)
	ctx := context.Background()

	require.NoError(t, e.HandleEvent(ctx, "u1", text("oi")))
	require.NoError(t, e.HandleEvent(ctx, "u1", selection("go")))

	assert.Equal(t, []StepID{"start", "ask"}, l.steps)
}

func TestChatEngine_ResetConversation(t *testing.T) {
	storage := newMemStorage()
	d := &recordingDispatcher{}
	e := newTestEngine(storage, d)
	ctx := context.Background()

	require.NoError(t, e.HandleEvent(ctx, "u1", text("oi")))
	require.NoError(t, e.ResetConversation(ctx, "u1"))

	_, ok := storage.get("u1")
	assert.False(t, ok)
	assert.Equal(t, []string{"hello"}, d.bodies)
}

func TestChatEngine_SerializesSender(t *testing.T) {
	storage := newMemStorage()
	e := newTestEngine(storage, &recordingDispatcher{})
	ctx := context.Background()
	require.NoError(t, e.HandleEvent(ctx, "u1", text("oi")))

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, e.HandleEvent(ctx, "u1", selection("inc")))
		}()
	}
	wg.Wait()

	state, _ := storage.get("u1")
	assert.Equal(t, n, state.Data.Passengers)
}
