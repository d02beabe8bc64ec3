package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fotkaminsk-creator/LumiVault/internal/state"
)

// Lumi, the vault spirit. One face per mood.
func mascotFace(mood state.Mood) string {
	switch mood {
	case state.MoodHappy:
		return `  /\_/\
 ( ^ᴗ^ )
  > ♥ <`
	case state.MoodThinking:
		return `  /\_/\
 ( •_• )?
  > ~ <`
	case state.MoodAlert:
		return `  /\_/\
 ( ⊙_⊙ )!
  > ! <`
	case state.MoodSleepy:
		return `  /\_/\
 ( -.- )zZ
  > ‿ <`
	default:
		return `  /\_/\
 ( o.o )
  > ^ <`
	}
}

// renderMascot draws Lumi next to a speech bubble carrying the current
// advice line.
func renderMascot(mood state.Mood, speech string, width int) string {
	face := lipgloss.NewStyle().Foreground(moodColor(string(mood))).Render(mascotFace(mood))

	bubbleWidth := width - 14
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}
	bubble := bubbleStyle.Width(bubbleWidth).Render(wordWrap(speech, bubbleWidth))

	return lipgloss.JoinHorizontal(lipgloss.Center, face, " ", bubble)
}

// wordWrap is a minimal greedy wrapper; lipgloss handles the border, we
// just keep lines under the bubble width.
func wordWrap(s string, width int) string {
	if width < 1 {
		return s
	}
	var b strings.Builder
	lineLen := 0
	for _, word := range strings.Fields(s) {
		wl := len([]rune(word))
		if lineLen > 0 && lineLen+1+wl > width {
			b.WriteByte('\n')
			lineLen = 0
		} else if lineLen > 0 {
			b.WriteByte(' ')
			lineLen++
		}
		b.WriteString(word)
		lineLen += wl
	}
	return b.String()
}
