package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/fotkaminsk-creator/LumiVault/internal/voice"
)

func (a *App) View() string {
	var body string
	switch a.view {
	case viewVault:
		body = a.renderVault()
	case viewVoice:
		body = a.renderVoice()
	default:
		body = a.renderDashboard()
	}

	out := a.renderHeader() + "\n" + a.renderTabs() + "\n\n" + body
	if a.modal != modalNone {
		out += "\n\n" + a.renderModal()
	}
	out += "\n\n" + a.renderFooter()
	if a.status != "" {
		out += "\n" + labelStyle.Render(a.status)
	}
	return out
}

func (a *App) renderHeader() string {
	title := titleStyle.Render("◢ LUMIVAULT ◣")
	node := hintStyle.Render("ACCESS NODE: " + a.snap.UserName)
	return title + "  " + node
}

func (a *App) renderTabs() string {
	render := func(v appView, label string) string {
		if a.view == v {
			return tabActive.Render(label)
		}
		return tabStyle.Render(label)
	}
	return render(viewDashboard, "1:DASHBOARD") + render(viewVault, "2:VAULT") + render(viewVoice, "3:LUMIVOCAL")
}

func (a *App) renderDashboard() string {
	out := renderMascot(a.snap.Mood, a.snap.Advice, a.width) + "\n\n"

	out += fmt.Sprintf("%s %s / %s\n",
		labelStyle.Render("CREDITS BURNED"),
		valueStyle.Render(a.money(a.snap.Spent)),
		a.money(a.snap.Budget))
	out += a.renderBar(a.snap.Spent, a.snap.Budget, colorForBudget(a.snap.Spent, a.snap.Budget)) + "\n\n"

	out += fmt.Sprintf("%s %s  %s / %s\n",
		labelStyle.Render("DREAM"),
		valueStyle.Render(a.snap.Dream.Name),
		a.money(a.snap.Dream.Current),
		a.money(a.snap.Dream.Target))
	out += a.renderBar(a.snap.Dream.Current, a.snap.Dream.Target, colorInfo) + "\n"

	if a.split != nil {
		out += fmt.Sprintf("\n%s %s total, %d ways → %s each\n",
			happyStyle.Render("SPLIT:"),
			a.money(a.split.Total), a.split.PeopleCount, a.money(a.split.PerPerson))
	}
	return out
}

func (a *App) renderVault() string {
	if len(a.snap.Expenses) == 0 {
		return hintStyle.Render("vault is empty, log something with [:]")
	}
	var out string
	for i, e := range a.snap.Expenses {
		marker := " "
		if i == a.expCursor {
			marker = "▶"
		}
		badge := "  "
		if e.IsWasteful {
			badge = alertStyle.Render("!!")
		} else if e.IsSmartBuy {
			badge = happyStyle.Render("✓ ")
		}
		out += fmt.Sprintf("%s %s  %-28s %10s  %-13s %s\n",
			marker, e.Date.Format("02/01"), clip(e.Merchant, 28), a.money(e.Amount), e.Category, badge)
	}
	if a.expCursor < len(a.snap.Expenses) {
		sel := a.snap.Expenses[a.expCursor]
		if sel.FeedbackMessage != "" {
			out += "\n" + hintStyle.Render("Lumi: "+sel.FeedbackMessage)
		}
		if sel.SavingsAmount > 0 {
			out += "\n" + happyStyle.Render(fmt.Sprintf("saved %s on this one", a.money(sel.SavingsAmount)))
		}
	}
	return out
}

func (a *App) renderVoice() string {
	status, st := voice.StatusReady, voice.StateIdle
	pending := 0
	if a.session != nil {
		status = a.session.Status()
		st = a.session.State()
		pending = a.session.Scheduler().Pending()
	}

	style := labelStyle
	switch st {
	case voice.StateActive:
		style = happyStyle
	case voice.StateConnecting:
		style = lipgloss.NewStyle().Foreground(colorWarning)
	}

	out := renderMascot(a.snap.Mood, "Speak to me, "+a.snap.UserName+"!", a.width) + "\n\n"
	out += labelStyle.Render("LINK  ") + style.Render(status) + "\n"
	out += labelStyle.Render("CORE  ") + valueStyle.Render(st.String()) + "\n"
	if st == voice.StateActive {
		out += labelStyle.Render("QUEUE ") + fmt.Sprintf("%d chunk(s) buffered", pending) + "\n"
		out += "\n" + hintStyle.Render("[enter] disengage")
	} else {
		out += "\n" + hintStyle.Render("[enter] engage voice link")
	}
	return out
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalCommand:
		return modalStyle.Render(titleStyle.Render("TELL LUMI") + "\n" + a.cmdInput.View() + "\n" + hintStyle.Render("[enter] send  [esc] cancel"))
	case modalScan:
		return modalStyle.Render(titleStyle.Render("SCAN RECEIPT") + "\n" + a.scanPath + "█\n" + hintStyle.Render("[enter] scan  [esc] cancel"))
	case modalSettings:
		labels := [4]string{"NAME", "BUDGET", "DREAM", "TARGET"}
		var rows string
		for i, label := range labels {
			marker := "  "
			if i == a.formCursor {
				marker = "▶ "
			}
			rows += fmt.Sprintf("%s%-7s %s\n", marker, label, a.formBufs[i])
		}
		return modalStyle.Render(titleStyle.Render("RECALIBRATE") + "\n" + rows + hintStyle.Render("[↑/↓] field  [enter] save  [esc] cancel"))
	default:
		return ""
	}
}

func (a *App) renderFooter() string {
	hints := "[:] command  [s] scan  [e] settings  [r] refresh  [tab] view  [q] quit"
	if a.busy {
		hints = "⟳ working..."
	}
	return hintStyle.Render(hints)
}

// renderBar draws a fixed-width progress bar. Overspend past the budget
// stays pinned at full.
func (a *App) renderBar(value, max float64, color lipgloss.Color) string {
	const width = 40
	frac := 0.0
	if max > 0 {
		frac = value / max
	}
	if frac > 1 {
		frac = 1
	}
	if frac < 0 {
		frac = 0
	}
	filled := int(frac * width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(color).Render(bar)
}

func colorForBudget(spent, budget float64) lipgloss.Color {
	if budget > 0 && spent/budget >= 0.9 {
		return colorError
	}
	if budget > 0 && spent/budget >= 0.7 {
		return colorWarning
	}
	return colorSuccess
}

func (a *App) money(v float64) string {
	return a.currency + humanize.CommafWithDigits(v, 2)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
