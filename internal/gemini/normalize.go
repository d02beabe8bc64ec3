package gemini

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/fotkaminsk-creator/LumiVault/internal/state"
)

// Field defaults applied at the boundary. Everything the model sends is
// advisory; missing or unusable values degrade to these instead of failing.
const (
	defaultMerchant = "Unknown Vendor"
	defaultReceipt  = "Scanned!"
	defaultFeedback = "Hmm, I didn't catch that. Try again? 💫"
)

func normalizeCommand(p commandPayload) CommandResult {
	res := CommandResult{
		Intent:   parseIntent(strVal(p.Action)),
		Merchant: strings.TrimSpace(strVal(p.Merchant)),
		Amount:   floatVal(p.Amount),
		Category: state.CategoryOther,
		Feedback: strings.TrimSpace(strVal(p.FeedbackMessage)),
	}
	if p.Category != nil {
		res.Category = NormalizeCategory(*p.Category)
	}
	if p.DreamName != nil {
		res.DreamName = strings.TrimSpace(*p.DreamName)
	}
	res.DreamTarget = floatVal(p.DreamTarget)
	res.IsSmartBuy = boolVal(p.IsSmartBuy)
	res.IsWasteful = boolVal(p.IsWasteful)
	res.SavingsAmount = floatVal(p.SavingsAmount)
	if res.SavingsAmount < 0 {
		res.SavingsAmount = 0
	}
	if p.SplitDetails != nil {
		res.Split = &SplitDetails{
			Total:       floatVal(p.SplitDetails.Total),
			PerPerson:   floatVal(p.SplitDetails.PerPerson),
			PeopleCount: intVal(p.SplitDetails.PeopleCount),
		}
	}
	if res.Feedback == "" {
		res.Feedback = defaultFeedback
	}
	return res
}

func normalizeReceipt(p receiptPayload) ReceiptExtraction {
	res := ReceiptExtraction{
		Merchant: strings.TrimSpace(strVal(p.Merchant)),
		Amount:   floatVal(p.Amount),
		Category: state.CategoryOther,
		Feedback: strings.TrimSpace(strVal(p.FeedbackMessage)),
	}
	if res.Merchant == "" {
		res.Merchant = defaultMerchant
	}
	if res.Amount < 0 {
		res.Amount = 0
	}
	if p.Category != nil {
		res.Category = NormalizeCategory(*p.Category)
	}
	res.IsSmartBuy = boolVal(p.IsSmartBuy)
	res.IsWasteful = boolVal(p.IsWasteful)
	res.SavingsAmount = floatVal(p.SavingsAmount)
	if res.SavingsAmount < 0 {
		res.SavingsAmount = 0
	}
	if res.Feedback == "" {
		res.Feedback = defaultReceipt
	}
	return res
}

// NormalizeCategory snaps a model-emitted category string onto the closed
// enum: exact case-insensitive match first, then the nearest category
// within levenshtein distance 3 (catches "Dinning" at 1 and "Grocery" at
// 3), else Other.
func NormalizeCategory(raw string) state.Category {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return state.CategoryOther
	}
	for _, cat := range state.Categories() {
		if strings.EqualFold(raw, string(cat)) {
			return cat
		}
	}

	best := state.CategoryOther
	bestDist := 4
	for _, cat := range state.Categories() {
		d := levenshtein.ComputeDistance(strings.ToLower(raw), strings.ToLower(string(cat)))
		if d < bestDist {
			bestDist = d
			best = cat
		}
	}
	return best
}

func parseIntent(raw string) Intent {
	switch Intent(strings.ToUpper(strings.TrimSpace(raw))) {
	case IntentSetBudget:
		return IntentSetBudget
	case IntentSetDream:
		return IntentSetDream
	case IntentAddExpense:
		return IntentAddExpense
	case IntentSplitBill:
		return IntentSplitBill
	default:
		return IntentUnknown
	}
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatVal(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func intVal(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func boolVal(p *bool) bool {
	return p != nil && *p
}
