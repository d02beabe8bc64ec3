package scheduler

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/fotkaminsk-creator/LumiVault/internal/state"
)

func newTestStore() *state.Store {
	advise := func(context.Context, float64, float64, string) (string, error) {
		return "Looking good! ✨", nil
	}
	return state.NewStore(state.Seed(), advise, zerolog.Nop())
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), newTestStore(), zerolog.Nop())
	require.NoError(t, s.RegisterAll(AdviceSpec, WindDownSpec))
}

func TestRegisterAllBadSpec(t *testing.T) {
	s := NewScheduler(context.Background(), newTestStore(), zerolog.Nop())
	require.Error(t, s.RegisterAll("not a cron expression", WindDownSpec))
}

func TestWindDownPutsMascotToSleep(t *testing.T) {
	store := newTestStore()
	s := NewScheduler(context.Background(), store, zerolog.Nop())
	s.windDownTask()
	require.Equal(t, state.MoodSleepy, store.Snapshot().Mood)
}
