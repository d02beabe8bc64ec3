package tui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fotkaminsk-creator/LumiVault/internal/command"
	"github.com/fotkaminsk-creator/LumiVault/internal/config"
	"github.com/fotkaminsk-creator/LumiVault/internal/gemini"
	"github.com/fotkaminsk-creator/LumiVault/internal/state"
	"github.com/fotkaminsk-creator/LumiVault/internal/voice"
)

const (
	commandBudget = 15 * time.Second
	scanBudget    = 30 * time.Second
	voicePoll     = 500 * time.Millisecond
	firstRefresh  = 1500 * time.Millisecond
)

// App ties together views.
type App struct {
	ctx     context.Context
	cfg     config.Config
	store   *state.Store
	client  *gemini.Client
	router  *command.Router
	session *voice.Session

	snap  state.AppState
	view  appView
	modal modalState

	cmdInput textinput.Model
	scanPath string

	// settings modal buffers
	formCursor int
	formBufs   [4]string // name, budget, dream name, dream target

	split     *gemini.SplitDetails
	expCursor int
	status    string
	busy      bool
	width     int
	currency  string
}

type appView string

const (
	viewDashboard appView = "dashboard"
	viewVault     appView = "vault"
	viewVoice     appView = "voice"
)

type modalState string

const (
	modalNone     modalState = ""
	modalCommand  modalState = "command"
	modalScan     modalState = "scan"
	modalSettings modalState = "settings"
)

func New(ctx context.Context, cfg config.Config, store *state.Store, client *gemini.Client, router *command.Router, session *voice.Session) *App {
	input := textinput.New()
	input.Placeholder = "try: set my budget to 6000"
	input.CharLimit = 200
	input.Width = 48

	return &App{
		ctx:      ctx,
		cfg:      cfg,
		store:    store,
		client:   client,
		router:   router,
		session:  session,
		snap:     store.Snapshot(),
		view:     viewDashboard,
		cmdInput: input,
		scanPath: "receipt.jpg",
		width:    80,
		currency: cfg.UI.CurrencySymbol,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.waitForState(),
		tea.Tick(firstRefresh, func(time.Time) tea.Msg { return refreshTickMsg{} }),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width

	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		return a.handleKey(m)

	case stateMsg:
		a.snap = state.AppState(m)
		if a.expCursor >= len(a.snap.Expenses) {
			a.expCursor = 0
		}
		return a, a.waitForState()

	case commandDoneMsg:
		a.busy = false
		if m.Err != nil {
			a.status = "SYSTEM_EXCEPTION: " + m.Err.Error()
			return a, nil
		}
		a.status = m.Out.Feedback
		a.split = m.Out.Split
		if m.Out.Mutated {
			return a, a.delayedRefresh()
		}

	case scanDoneMsg:
		a.busy = false
		if m.Err != nil {
			a.status = m.Tag + ": " + m.Err.Error()
			return a, nil
		}
		a.status = "RECEIPT LOGGED ✓"
		return a, a.delayedRefresh()

	case voiceToggledMsg:
		if m.Err != nil {
			a.status = voice.StatusFailure + ": " + m.Err.Error()
		}
		return a, a.voiceTick()

	case voiceTickMsg:
		if a.view == viewVoice {
			return a, a.voiceTick()
		}

	case refreshTickMsg:
		return a, a.refreshAdviceCmd(false)

	case forcedRefreshMsg:
		return a, a.refreshAdviceCmd(true)
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "tab":
		a.view = nextView(a.view)
		if a.view == viewVoice {
			return a, a.voiceTick()
		}
	case "shift+tab":
		a.view = prevView(a.view)
		if a.view == viewVoice {
			return a, a.voiceTick()
		}
	case "1":
		a.view = viewDashboard
	case "2":
		a.view = viewVault
	case "3":
		a.view = viewVoice
		return a, a.voiceTick()
	case ":", "c":
		a.modal = modalCommand
		a.cmdInput.SetValue("")
		a.cmdInput.Focus()
		return a, textinput.Blink
	case "s":
		a.modal = modalScan
		a.status = ""
	case "e":
		a.openSettings()
	case "r":
		a.status = "SYNCING..."
		return a, a.refreshAdviceCmd(true)
	case "up", "k":
		if a.view == viewVault && a.expCursor > 0 {
			a.expCursor--
		}
	case "down", "j":
		if a.view == viewVault && a.expCursor < len(a.snap.Expenses)-1 {
			a.expCursor++
		}
	case "enter":
		if a.view == viewVoice {
			return a, a.toggleVoiceCmd()
		}
	}
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalCommand:
		switch m.Type {
		case tea.KeyEsc:
			a.modal = modalNone
			a.cmdInput.Blur()
			return a, nil
		case tea.KeyEnter:
			text := strings.TrimSpace(a.cmdInput.Value())
			a.modal = modalNone
			a.cmdInput.Blur()
			if text == "" {
				return a, nil
			}
			a.busy = true
			a.status = "SYNCING..."
			return a, a.classifyCmd(text)
		}
		var cmd tea.Cmd
		a.cmdInput, cmd = a.cmdInput.Update(m)
		return a, cmd

	case modalScan:
		switch m.Type {
		case tea.KeyEsc:
			a.modal = modalNone
		case tea.KeyEnter:
			path := strings.TrimSpace(a.scanPath)
			a.modal = modalNone
			if path == "" {
				a.status = "enter an image path"
				return a, nil
			}
			a.busy = true
			a.status = "SCANNING..."
			return a, a.scanCmd(path)
		case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
			if len(a.scanPath) > 0 {
				a.scanPath = a.scanPath[:len(a.scanPath)-1]
			}
		case tea.KeySpace:
			a.scanPath += " "
		case tea.KeyRunes:
			a.scanPath += string(m.Runes)
		}

	case modalSettings:
		switch m.Type {
		case tea.KeyEsc:
			a.modal = modalNone
		case tea.KeyEnter:
			a.modal = modalNone
			if a.saveSettings() {
				return a, a.delayedRefresh()
			}
		case tea.KeyUp, tea.KeyShiftTab:
			if a.formCursor > 0 {
				a.formCursor--
			}
		case tea.KeyDown, tea.KeyTab:
			if a.formCursor < len(a.formBufs)-1 {
				a.formCursor++
			}
		case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
			buf := a.formBufs[a.formCursor]
			if len(buf) > 0 {
				a.formBufs[a.formCursor] = buf[:len(buf)-1]
			}
		case tea.KeySpace:
			a.formBufs[a.formCursor] += " "
		case tea.KeyRunes:
			a.formBufs[a.formCursor] += string(m.Runes)
		}
	}
	return a, nil
}

func (a *App) openSettings() {
	a.modal = modalSettings
	a.formCursor = 0
	a.formBufs = [4]string{
		a.snap.UserName,
		strconv.FormatFloat(a.snap.Budget, 'f', -1, 64),
		a.snap.Dream.Name,
		strconv.FormatFloat(a.snap.Dream.Target, 'f', -1, 64),
	}
}

func (a *App) saveSettings() bool {
	name := strings.TrimSpace(a.formBufs[0])
	budget, err := strconv.ParseFloat(strings.TrimSpace(a.formBufs[1]), 64)
	if err != nil || budget <= 0 {
		a.status = "budget must be a positive number"
		return false
	}
	dreamName := strings.TrimSpace(a.formBufs[2])
	target, err := strconv.ParseFloat(strings.TrimSpace(a.formBufs[3]), 64)
	if err != nil || target <= 0 {
		a.status = "dream target must be a positive number"
		return false
	}
	if name == "" || dreamName == "" {
		a.status = "name and dream are required"
		return false
	}
	a.store.UpdateSettings(name, budget, state.Dream{
		Name:    dreamName,
		Target:  target,
		Current: a.snap.Dream.Current,
	})
	a.status = ""
	a.cfg.UI.Username = name
	if err := config.Save(a.cfg); err != nil {
		a.status = "saved, but writing config failed: " + err.Error()
	}
	return true
}

// commands

func (a *App) waitForState() tea.Cmd {
	return func() tea.Msg {
		st, ok := <-a.store.Updates()
		if !ok {
			return nil
		}
		return stateMsg(st)
	}
}

func (a *App) classifyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.ctx, commandBudget)
		defer cancel()
		res, err := a.client.ClassifyCommand(ctx, text)
		if err != nil {
			return commandDoneMsg{Err: err}
		}
		return commandDoneMsg{Out: a.router.Apply(res)}
	}
}

func (a *App) scanCmd(path string) tea.Cmd {
	return func() tea.Msg {
		img, err := os.ReadFile(path)
		if err != nil {
			return scanDoneMsg{Tag: "CORE_READ_ERROR", Err: err}
		}
		ctx, cancel := context.WithTimeout(a.ctx, scanBudget)
		defer cancel()
		rec, err := a.client.ExtractReceipt(ctx, img)
		if err != nil {
			return scanDoneMsg{Tag: "OCR_SYNC_FAILED", Err: err}
		}
		a.store.AddExpense(state.ExpenseDraft{
			Merchant:        rec.Merchant,
			Amount:          rec.Amount,
			Category:        rec.Category,
			IsSmartBuy:      rec.IsSmartBuy,
			IsWasteful:      rec.IsWasteful,
			SavingsAmount:   rec.SavingsAmount,
			FeedbackMessage: rec.Feedback,
		})
		return scanDoneMsg{}
	}
}

func (a *App) refreshAdviceCmd(force bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.ctx, commandBudget)
		defer cancel()
		a.store.RefreshAdvice(ctx, force)
		return nil
	}
}

func (a *App) toggleVoiceCmd() tea.Cmd {
	if a.session == nil {
		return func() tea.Msg {
			return voiceToggledMsg{Err: fmt.Errorf("voice link not configured")}
		}
	}
	if a.session.Active() {
		return func() tea.Msg {
			return voiceToggledMsg{Err: a.session.Stop()}
		}
	}
	return func() tea.Msg {
		return voiceToggledMsg{Err: a.session.Start(a.ctx)}
	}
}

func (a *App) voiceTick() tea.Cmd {
	return tea.Tick(voicePoll, func(time.Time) tea.Msg { return voiceTickMsg{} })
}

// delayedRefresh pulls fresh advice shortly after a mutation so Lumi
// reacts to the new totals rather than the stale snapshot.
func (a *App) delayedRefresh() tea.Cmd {
	return tea.Tick(firstRefresh, func(time.Time) tea.Msg { return forcedRefreshMsg{} })
}

func nextView(v appView) appView {
	switch v {
	case viewDashboard:
		return viewVault
	case viewVault:
		return viewVoice
	default:
		return viewDashboard
	}
}

func prevView(v appView) appView {
	switch v {
	case viewDashboard:
		return viewVoice
	case viewVoice:
		return viewVault
	default:
		return viewDashboard
	}
}

// messages

type stateMsg state.AppState

type commandDoneMsg struct {
	Out command.Outcome
	Err error
}

type scanDoneMsg struct {
	Tag string
	Err error
}

type voiceToggledMsg struct {
	Err error
}

type voiceTickMsg struct{}

type refreshTickMsg struct{}

type forcedRefreshMsg struct{}
