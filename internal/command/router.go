// Package command routes classified free-text instructions onto state
// transitions. The router is a single dispatch with no multi-turn memory:
// one classification in, at most one state mutation out.
package command

import (
	"github.com/rs/zerolog"

	"github.com/fotkaminsk-creator/LumiVault/internal/gemini"
	"github.com/fotkaminsk-creator/LumiVault/internal/state"
)

// Outcome reports what a routed command did. Feedback is always set and is
// the view's to display; the store is only touched when Mutated is true.
type Outcome struct {
	Feedback string
	Mutated  bool
	// Split carries bill-split details for SPLIT_BILL. The split never
	// mutates state; the view may surface it.
	Split *gemini.SplitDetails
}

// Router applies NLU results to the state store.
type Router struct {
	store *state.Store
	log   zerolog.Logger
}

func NewRouter(store *state.Store, log zerolog.Logger) *Router {
	return &Router{
		store: store,
		log:   log.With().Str("component", "command").Logger(),
	}
}

// Apply performs exactly one state mutation attempt for the given result.
// Partial or malformed results degrade to a no-op; the feedback message
// still comes back for display.
func (r *Router) Apply(res gemini.CommandResult) Outcome {
	out := Outcome{Feedback: res.Feedback}

	switch res.Intent {
	case gemini.IntentSetBudget:
		if res.Amount <= 0 {
			r.log.Debug().Msg("SET_BUDGET without amount, ignoring")
			break
		}
		r.store.SetBudget(res.Amount)
		out.Mutated = true

	case gemini.IntentSetDream:
		if res.DreamName == "" || res.DreamTarget <= 0 {
			r.log.Debug().Msg("SET_DREAM with missing fields, ignoring")
			break
		}
		r.store.SetDream(res.DreamName, res.DreamTarget)
		out.Mutated = true

	case gemini.IntentAddExpense:
		if res.Amount <= 0 || res.Merchant == "" {
			r.log.Debug().Msg("ADD_EXPENSE with missing fields, ignoring")
			break
		}
		r.store.AddExpense(state.ExpenseDraft{
			Merchant:        res.Merchant,
			Amount:          res.Amount,
			Category:        res.Category,
			IsSmartBuy:      res.IsSmartBuy,
			IsWasteful:      res.IsWasteful,
			SavingsAmount:   res.SavingsAmount,
			FeedbackMessage: res.Feedback,
		})
		out.Mutated = true

	case gemini.IntentSplitBill:
		// Intentionally inert on state; Lumi just talks.
		out.Split = res.Split

	case gemini.IntentUnknown:
		// no-op
	}

	return out
}
