package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Mood decay windows. A fresh assignment always replaces the pending
// reversion, so the longest of two overlapping moods never loses to the
// shorter one's stale timer.
const (
	DecayAlert    = 8 * time.Second
	DecayHappy    = 6 * time.Second
	DecaySettings = 4 * time.Second
	DecayDefault  = 5 * time.Second
)

// adviceThrottle is the minimum spacing between non-forced advice
// refreshes, measured from the last successful one.
const adviceThrottle = 30 * time.Second

// AdviceFunc fetches a short proactive suggestion for the given numbers.
// The gemini client satisfies this.
type AdviceFunc func(ctx context.Context, budget, spent float64, dreamName string) (string, error)

// Store is the single owner of the application state. Every mutation is a
// named transition applied under one lock, and every transition publishes
// a fresh snapshot on the updates channel.
type Store struct {
	mu  sync.Mutex
	st  AppState
	log zerolog.Logger

	advise AdviceFunc
	now    func() time.Time
	newID  func() string

	moodTimer    *time.Timer
	lastAdvice   time.Time
	adviceBusy   bool
	adviceEverOK bool

	updates chan AppState
	closed  bool
}

// NewStore builds a store around the given initial state. advise may be
// nil, in which case RefreshAdvice is a no-op.
func NewStore(initial AppState, advise AdviceFunc, log zerolog.Logger) *Store {
	return &Store{
		st:      initial,
		log:     log.With().Str("component", "state").Logger(),
		advise:  advise,
		now:     time.Now,
		newID:   uuid.NewString,
		updates: make(chan AppState, 8),
	}
}

// Updates delivers a state snapshot after every transition. Slow consumers
// lose intermediate snapshots, never the latest one.
func (s *Store) Updates() <-chan AppState {
	return s.updates
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Close stops the decay timer. The store must not be used afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.moodTimer != nil {
		s.moodTimer.Stop()
		s.moodTimer = nil
	}
	s.closed = true
}

// AddExpense assigns identity and timestamp to the draft, prepends it to
// the log, bumps the running spend and surfaces the expense's feedback as
// the advisory message. Wasteful wins over smart-buy when picking the mood.
func (s *Store) AddExpense(draft ExpenseDraft) Expense {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp := Expense{
		ID:              s.newID(),
		Merchant:        draft.Merchant,
		Amount:          draft.Amount,
		Category:        draft.Category,
		Date:            s.now(),
		IsSmartBuy:      draft.IsSmartBuy,
		IsWasteful:      draft.IsWasteful,
		SavingsAmount:   draft.SavingsAmount,
		FeedbackMessage: draft.FeedbackMessage,
	}

	s.st.Expenses = append([]Expense{exp}, s.st.Expenses...)
	s.st.Spent += exp.Amount
	if exp.FeedbackMessage != "" {
		s.st.Advice = exp.FeedbackMessage
	}

	switch {
	case exp.IsWasteful:
		s.setMoodLocked(MoodAlert, DecayAlert)
	case exp.IsSmartBuy:
		s.setMoodLocked(MoodHappy, DecayHappy)
	default:
		s.setMoodLocked(MoodNeutral, 0)
	}

	s.log.Info().
		Str("merchant", exp.Merchant).
		Float64("amount", exp.Amount).
		Str("category", string(exp.Category)).
		Msg("expense added")

	s.publishLocked()
	return exp
}

// UpdateSettings overwrites the user profile wholesale.
func (s *Store) UpdateSettings(userName string, budget float64, dream Dream) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.UserName = userName
	s.st.Budget = budget
	s.st.Dream = dream
	s.st.Advice = fmt.Sprintf("System recalibrated, %s. Your path to %s is optimized! ⚙️", userName, dream.Name)
	s.setMoodLocked(MoodHappy, DecaySettings)
	s.publishLocked()
}

// SetBudget overwrites only the budget (SET_BUDGET intent).
func (s *Store) SetBudget(amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Budget = amount
	s.publishLocked()
}

// SetDream overwrites the dream's name and target, keeping the saved
// progress (SET_DREAM intent).
func (s *Store) SetDream(name string, target float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Dream.Name = name
	s.st.Dream.Target = target
	s.publishLocked()
}

// SetAdvice replaces the advisory message shown as Lumi's speech.
func (s *Store) SetAdvice(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Advice = msg
	s.publishLocked()
}

// SetMood assigns a mood and schedules its reversion to neutral after
// decay. The previous reversion, if any, is cancelled first.
func (s *Store) SetMood(mood Mood, decay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setMoodLocked(mood, decay)
	s.publishLocked()
}

// RefreshAdvice asks the advice function for a new suggestion. Non-forced
// calls within 30s of the last successful refresh are suppressed, as is
// any call while one is already in flight. Lumi thinks while waiting and
// settles back to neutral either way; the message only changes on success.
// Failures are logged and swallowed.
func (s *Store) RefreshAdvice(ctx context.Context, force bool) {
	if s.advise == nil {
		return
	}

	s.mu.Lock()
	if s.closed || s.adviceBusy {
		s.mu.Unlock()
		return
	}
	if !force && s.adviceEverOK && s.now().Sub(s.lastAdvice) < adviceThrottle {
		s.mu.Unlock()
		return
	}
	s.adviceBusy = true
	s.setMoodLocked(MoodThinking, 0)
	budget, spent, dream := s.st.Budget, s.st.Spent, s.st.Dream.Name
	s.publishLocked()
	s.mu.Unlock()

	advice, err := s.advise(ctx, budget, spent, dream)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.adviceBusy = false
	s.setMoodLocked(MoodNeutral, 0)
	if err != nil {
		s.log.Warn().Err(err).Msg("advice refresh failed")
		s.publishLocked()
		return
	}
	s.st.Advice = advice
	s.lastAdvice = s.now()
	s.adviceEverOK = true
	s.publishLocked()
}

// setMoodLocked is the one place the decay timer is armed. Stopping the
// previous timer before arming the next keeps reversion last-writer-safe.
func (s *Store) setMoodLocked(mood Mood, decay time.Duration) {
	if s.moodTimer != nil {
		s.moodTimer.Stop()
		s.moodTimer = nil
	}
	s.st.Mood = mood
	if mood == MoodNeutral || decay <= 0 {
		return
	}
	s.moodTimer = time.AfterFunc(decay, s.revertMood)
}

func (s *Store) revertMood() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.moodTimer = nil
	s.st.Mood = MoodNeutral
	s.publishLocked()
}

func (s *Store) copyLocked() AppState {
	snap := s.st
	snap.Expenses = make([]Expense, len(s.st.Expenses))
	copy(snap.Expenses, s.st.Expenses)
	return snap
}

// publishLocked posts a snapshot without ever blocking a transition: when
// the channel is full the oldest pending snapshot is discarded.
func (s *Store) publishLocked() {
	if s.closed {
		return
	}
	snap := s.copyLocked()
	for {
		select {
		case s.updates <- snap:
			return
		default:
		}
		select {
		case <-s.updates:
		default:
		}
	}
}
