package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/fotkaminsk-creator/LumiVault/internal/command"
	"github.com/fotkaminsk-creator/LumiVault/internal/config"
	"github.com/fotkaminsk-creator/LumiVault/internal/state"
)

func newTestApp(t *testing.T) (*App, *state.Store) {
	t.Helper()
	t.Setenv("LUMIVAULT_CONFIG", filepath.Join(t.TempDir(), "config.toml"))
	advise := func(context.Context, float64, float64, string) (string, error) {
		return "test advice", nil
	}
	store := state.NewStore(state.Seed(), advise, zerolog.Nop())
	t.Cleanup(store.Close)
	router := command.NewRouter(store, zerolog.Nop())
	cfg := config.Config{UI: config.UIConfig{CurrencySymbol: "$"}}
	return New(context.Background(), cfg, store, nil, router, nil), store
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestViewCycling(t *testing.T) {
	cases := []struct {
		from appView
		key  string
		want appView
	}{
		{viewDashboard, "tab", viewVault},
		{viewVault, "tab", viewVoice},
		{viewVoice, "tab", viewDashboard},
		{viewDashboard, "shift+tab", viewVoice},
		{viewVoice, "shift+tab", viewVault},
		{viewVault, "2", viewVault},
		{viewVault, "1", viewDashboard},
	}
	for _, tc := range cases {
		a, _ := newTestApp(t)
		a.view = tc.from
		a.Update(key(tc.key))
		if a.view != tc.want {
			t.Errorf("%s from %s: got %s want %s", tc.key, tc.from, a.view, tc.want)
		}
	}
}

func TestCommandModalOpensAndCancels(t *testing.T) {
	a, _ := newTestApp(t)
	a.Update(key(":"))
	if a.modal != modalCommand {
		t.Fatalf("modal = %q, want command", a.modal)
	}
	a.Update(key("esc"))
	if a.modal != modalNone {
		t.Fatalf("modal = %q, want closed", a.modal)
	}
}

func TestSettingsSaveValidation(t *testing.T) {
	cases := []struct {
		name    string
		bufs    [4]string
		applied bool
	}{
		{"valid", [4]string{"Nova", "7000", "Mars Trip", "30000"}, true},
		{"bad_budget", [4]string{"Nova", "lots", "Mars Trip", "30000"}, false},
		{"zero_target", [4]string{"Nova", "7000", "Mars Trip", "0"}, false},
		{"empty_name", [4]string{"", "7000", "Mars Trip", "30000"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, store := newTestApp(t)
			a.formBufs = tc.bufs
			a.saveSettings()
			got := store.Snapshot().UserName == "Nova"
			if got != tc.applied {
				t.Errorf("applied = %v, want %v (status %q)", got, tc.applied, a.status)
			}
		})
	}
}

func TestSettingsSavePersistsConfig(t *testing.T) {
	a, _ := newTestApp(t)
	a.formBufs = [4]string{"River", "7000", "Mars Trip", "30000"}
	if !a.saveSettings() {
		t.Fatalf("save rejected: %s", a.status)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.Username != "River" {
		t.Fatalf("persisted username = %q, want River", cfg.UI.Username)
	}
}

func TestMutationSchedulesAdviceRefresh(t *testing.T) {
	cases := []struct {
		name string
		msg  tea.Msg
		want bool
	}{
		{"mutating_command", commandDoneMsg{Out: command.Outcome{Mutated: true}}, true},
		{"readonly_command", commandDoneMsg{Out: command.Outcome{Feedback: "hi"}}, false},
		{"scan_logged", scanDoneMsg{}, true},
		{"scan_failed", scanDoneMsg{Tag: "OCR_SYNC_FAILED", Err: context.Canceled}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, _ := newTestApp(t)
			_, cmd := a.Update(tc.msg)
			if got := cmd != nil; got != tc.want {
				t.Errorf("refresh scheduled = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStateMsgClampsCursor(t *testing.T) {
	a, _ := newTestApp(t)
	a.expCursor = 99
	a.Update(stateMsg(state.Seed()))
	if a.expCursor != 0 {
		t.Fatalf("expCursor = %d, want 0", a.expCursor)
	}
}

func TestCommandDoneShowsFeedback(t *testing.T) {
	a, _ := newTestApp(t)
	a.busy = true
	a.Update(commandDoneMsg{Out: command.Outcome{Feedback: "Logged it! ✨"}})
	if a.busy {
		t.Fatal("busy should clear")
	}
	if a.status != "Logged it! ✨" {
		t.Fatalf("status = %q", a.status)
	}
}

func TestDashboardRenders(t *testing.T) {
	a, _ := newTestApp(t)
	out := a.View()
	for _, want := range []string{"LUMIVAULT", "Star-Saver", "DREAM", "Cyber-Voyage to Neo-Tokyo"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestVaultRendersExpenses(t *testing.T) {
	a, _ := newTestApp(t)
	a.view = viewVault
	out := a.View()
	for _, want := range []string{"CyberMart", "Neon Arcade"} {
		if !strings.Contains(out, want) {
			t.Errorf("vault missing %q", want)
		}
	}
}

func TestBudgetBarColor(t *testing.T) {
	cases := []struct {
		spent, budget float64
		want          string
	}{
		{100, 1000, string(colorSuccess)},
		{750, 1000, string(colorWarning)},
		{950, 1000, string(colorError)},
	}
	for _, tc := range cases {
		if got := string(colorForBudget(tc.spent, tc.budget)); got != tc.want {
			t.Errorf("colorForBudget(%v, %v) = %s, want %s", tc.spent, tc.budget, got, tc.want)
		}
	}
}

func TestClip(t *testing.T) {
	if got := clip("short", 10); got != "short" {
		t.Errorf("clip short = %q", got)
	}
	if got := clip("a very long merchant name", 10); len([]rune(got)) != 10 {
		t.Errorf("clip long = %q (len %d)", got, len([]rune(got)))
	}
}
