package command

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/fotkaminsk-creator/LumiVault/internal/gemini"
	"github.com/fotkaminsk-creator/LumiVault/internal/state"
)

func newRouter(t *testing.T) (*Router, *state.Store) {
	t.Helper()
	store := state.NewStore(state.Seed(), nil, zerolog.Nop())
	t.Cleanup(store.Close)
	return NewRouter(store, zerolog.Nop()), store
}

func TestApplySetBudget(t *testing.T) {
	r, store := newRouter(t)

	out := r.Apply(gemini.CommandResult{Intent: gemini.IntentSetBudget, Amount: 8000, Feedback: "Budget updated! 💰"})

	require.True(t, out.Mutated)
	require.Equal(t, float64(8000), store.Snapshot().Budget)
	require.Equal(t, "Budget updated! 💰", out.Feedback)
}

func TestApplySetBudgetMissingAmount(t *testing.T) {
	r, store := newRouter(t)
	before := store.Snapshot().Budget

	out := r.Apply(gemini.CommandResult{Intent: gemini.IntentSetBudget, Feedback: "How much should it be?"})

	require.False(t, out.Mutated)
	require.Equal(t, before, store.Snapshot().Budget)
	require.Equal(t, "How much should it be?", out.Feedback, "feedback still surfaces on a no-op")
}

func TestApplySetDream(t *testing.T) {
	r, store := newRouter(t)
	current := store.Snapshot().Dream.Current

	out := r.Apply(gemini.CommandResult{
		Intent:      gemini.IntentSetDream,
		DreamName:   "Orbit Station",
		DreamTarget: 20000,
		Feedback:    "New dream set! 🚀",
	})

	require.True(t, out.Mutated)
	snap := store.Snapshot()
	require.Equal(t, "Orbit Station", snap.Dream.Name)
	require.Equal(t, float64(20000), snap.Dream.Target)
	require.Equal(t, current, snap.Dream.Current)
}

func TestApplySetDreamPartialFields(t *testing.T) {
	r, store := newRouter(t)
	before := store.Snapshot().Dream

	out := r.Apply(gemini.CommandResult{Intent: gemini.IntentSetDream, DreamName: "Moon Cabin", Feedback: "?"})

	require.False(t, out.Mutated)
	require.Equal(t, before, store.Snapshot().Dream)
}

func TestApplyAddExpense(t *testing.T) {
	r, store := newRouter(t)
	before := store.Snapshot()

	out := r.Apply(gemini.CommandResult{
		Intent:   gemini.IntentAddExpense,
		Merchant: "Holo Cinema",
		Amount:   25,
		Category: state.CategoryEntertainment,
		Feedback: "Movie night logged! 🎬",
	})

	require.True(t, out.Mutated)
	snap := store.Snapshot()
	require.Equal(t, before.Spent+25, snap.Spent)
	require.Equal(t, "Holo Cinema", snap.Expenses[0].Merchant)
	require.False(t, snap.Expenses[0].IsSmartBuy, "judgments default to false")
	require.False(t, snap.Expenses[0].IsWasteful)
}

func TestApplySplitBillInert(t *testing.T) {
	r, store := newRouter(t)
	before := store.Snapshot()

	out := r.Apply(gemini.CommandResult{
		Intent:   gemini.IntentSplitBill,
		Split:    &gemini.SplitDetails{Total: 120, PerPerson: 30, PeopleCount: 4},
		Feedback: "That's $30 each! 🧾",
	})

	require.False(t, out.Mutated)
	require.NotNil(t, out.Split)
	require.Equal(t, float64(30), out.Split.PerPerson)
	after := store.Snapshot()
	require.Equal(t, before.Spent, after.Spent)
	require.Len(t, after.Expenses, len(before.Expenses))
}

func TestApplyUnknownNoMutation(t *testing.T) {
	r, store := newRouter(t)
	before := store.Snapshot()

	out := r.Apply(gemini.CommandResult{Intent: gemini.IntentUnknown, Feedback: "Could you rephrase that? 💫"})

	require.False(t, out.Mutated)
	require.Equal(t, before.Spent, store.Snapshot().Spent)
	require.NotEmpty(t, out.Feedback)
}
