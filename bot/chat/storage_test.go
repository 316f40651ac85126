package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RideDesk/entity"
	"RideDesk/internal/storage/kv"
)

func TestKVSessionStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	storage := NewKVSessionStorage(store, time.Hour)

	missing, err := storage.Load(ctx, "5511")
	require.NoError(t, err)
	assert.Nil(t, missing)

	state := NewChatState("5511", "awaiting_origin_choice")
	state.Data = entity.TripDraft{Origin: "Centro", Quote: &entity.Quote{Total: 15, EstimatedMinutes: 10}}
	state.SetOffered("loc_Centro", "outro_local")
	require.NoError(t, storage.Save(ctx, state))

	assert.Equal(t, []string{"session:5511"}, store.Keys())

	loaded, err := storage.Load(ctx, "5511")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, state.CurrentStep, loaded.CurrentStep)
	assert.Equal(t, state.Data, loaded.Data)
	assert.Equal(t, state.Offered, loaded.Offered)

	require.NoError(t, storage.Delete(ctx, "5511"))
	gone, err := storage.Load(ctx, "5511")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestKVSessionStorage_CorruptSession(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, SessionKey("5511"), []byte("{not json"), 0))

	_, err := NewKVSessionStorage(store, 0).Load(ctx, "5511")
	assert.Error(t, err)
}

func TestChatState_Reset(t *testing.T) {
	state := NewChatState("5511", "confirmation")
	state.Data.Origin = "Centro"
	state.Data.Passengers = 2
	state.SetOffered("confirmar_viagem")

	state.Reset()

	assert.True(t, state.Data.IsEmpty())
	assert.Empty(t, state.Offered)
	assert.Equal(t, StepID("confirmation"), state.CurrentStep)
}
