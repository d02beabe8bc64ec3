package gemini

import "github.com/fotkaminsk-creator/LumiVault/internal/state"

// Intent is the classified purpose of a free-text command.
type Intent string

const (
	IntentSetBudget  Intent = "SET_BUDGET"
	IntentSetDream   Intent = "SET_DREAM"
	IntentAddExpense Intent = "ADD_EXPENSE"
	IntentSplitBill  Intent = "SPLIT_BILL"
	IntentUnknown    Intent = "UNKNOWN"
)

// SplitDetails carries a bill-split computed by the model.
type SplitDetails struct {
	Total       float64
	PerPerson   float64
	PeopleCount int
}

// CommandResult is a normalized NLU classification. Fields are only
// meaningful for the intent that carries them; Feedback is always set.
type CommandResult struct {
	Intent        Intent
	Merchant      string
	Amount        float64
	Category      state.Category
	Split         *SplitDetails
	DreamName     string
	DreamTarget   float64
	IsSmartBuy    bool
	IsWasteful    bool
	SavingsAmount float64
	Feedback      string
}

// ReceiptExtraction is a normalized receipt result. All fields already
// carry their defaults; callers can use them as-is.
type ReceiptExtraction struct {
	Merchant      string
	Amount        float64
	Category      state.Category
	IsSmartBuy    bool
	IsWasteful    bool
	SavingsAmount float64
	Feedback      string
}
