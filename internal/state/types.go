package state

import "time"

// ---------------------------------------------------------------------------
// Domain types
// ---------------------------------------------------------------------------

// Category classifies an expense. The set is closed; values arriving from
// the model that don't match are snapped to CategoryOther at the boundary.
type Category string

const (
	CategoryGroceries     Category = "Groceries"
	CategoryApparel       Category = "Apparel"
	CategoryAuto          Category = "Auto"
	CategoryOther         Category = "Other"
	CategoryDining        Category = "Dining"
	CategoryEntertainment Category = "Entertainment"
)

// Categories returns every valid category.
func Categories() []Category {
	return []Category{
		CategoryGroceries, CategoryApparel, CategoryAuto,
		CategoryOther, CategoryDining, CategoryEntertainment,
	}
}

// Mood is Lumi's current mascot mood. Non-neutral moods decay back to
// MoodNeutral after their assigned duration.
type Mood string

const (
	MoodNeutral  Mood = "NEUTRAL"
	MoodHappy    Mood = "HAPPY"
	MoodThinking Mood = "THINKING"
	MoodAlert    Mood = "ALERT"
	MoodSleepy   Mood = "SLEEPY"
)

// Expense is a single logged purchase. Immutable once created; the store
// assigns ID and Date.
type Expense struct {
	ID              string
	Merchant        string
	Amount          float64
	Category        Category
	Date            time.Time
	IsSmartBuy      bool
	IsWasteful      bool
	SavingsAmount   float64
	FeedbackMessage string
}

// ExpenseDraft carries the caller-supplied fields of a new expense.
type ExpenseDraft struct {
	Merchant        string
	Amount          float64
	Category        Category
	IsSmartBuy      bool
	IsWasteful      bool
	SavingsAmount   float64
	FeedbackMessage string
}

// Dream is the savings goal. Current is not clamped to Target.
type Dream struct {
	Name    string
	Target  float64
	Current float64
}

// AppState is the aggregate root. All mutation goes through Store; views
// only ever see copies.
type AppState struct {
	UserName string
	Budget   float64
	Spent    float64
	Dream    Dream
	Expenses []Expense // most-recent-first
	Advice   string
	Mood     Mood
}

// Seed returns the initial in-memory state shown before the user has done
// anything. State is memory-only and resets on every launch.
func Seed() AppState {
	now := time.Now()
	return AppState{
		UserName: "Star-Saver",
		Budget:   5000,
		Spent:    1200,
		Dream: Dream{
			Name:    "Cyber-Voyage to Neo-Tokyo",
			Target:  15000,
			Current: 4500,
		},
		Expenses: []Expense{
			{
				ID:              "seed-1",
				Merchant:        "CyberMart",
				Amount:          45.5,
				Category:        CategoryGroceries,
				Date:            now,
				IsSmartBuy:      true,
				SavingsAmount:   5.2,
				FeedbackMessage: "Great smart grocery choice! 🍏",
			},
			{
				ID:              "seed-2",
				Merchant:        "Neon Arcade",
				Amount:          120,
				Category:        CategoryEntertainment,
				Date:            now,
				IsWasteful:      true,
				FeedbackMessage: "That was a splurge, beware! 🕹️",
			},
		},
		Advice: "Welcome back, Star-Saver! Ready to vault your dreams today? ✨",
		Mood:   MoodNeutral,
	}
}
