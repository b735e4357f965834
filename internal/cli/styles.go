// Package cli renders classifier output for the terminal with lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/autocategorize/internal/model"
)

// Tone is the visual weight of a line of output. Every classification
// outcome has one, so a batch table, a history listing and a single result
// all color the same outcome the same way.
type Tone int

// Tones, from neutral to alarming.
const (
	ToneInfo Tone = iota
	ToneMatched
	ToneNoMatch
	ToneFailed
)

type toneStyle struct {
	style lipgloss.Style
	icon  string
}

var (
	accentColor = lipgloss.AdaptiveColor{Light: "#1A5FB4", Dark: "#8AB4F8"}
	dimColor    = lipgloss.AdaptiveColor{Light: "#5E6A71", Dark: "#7F8C8D"}

	palette = map[Tone]toneStyle{
		ToneInfo:    {icon: "•", style: lipgloss.NewStyle().Foreground(accentColor)},
		ToneMatched: {icon: "✓", style: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1E8E3E", Dark: "#34A853"})},
		ToneNoMatch: {icon: "?", style: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B06000", Dark: "#F9AB00"})},
		ToneFailed:  {icon: "✗", style: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#C5221F", Dark: "#EA4335"})},
	}

	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	labelStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(dimColor)
	fieldStyle   = lipgloss.NewStyle().Foreground(dimColor).Width(12)

	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)

	headerRowStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(dimColor)

	cellStyle = lipgloss.NewStyle().PaddingRight(2)
)

// OutcomeTone maps a journal outcome to its tone. Unknown outcomes are neutral.
func OutcomeTone(outcome model.JournalOutcome) Tone {
	switch outcome {
	case model.OutcomeMatched:
		return ToneMatched
	case model.OutcomeNoMatch:
		return ToneNoMatch
	case model.OutcomeFailed:
		return ToneFailed
	default:
		return ToneInfo
	}
}

// Styled renders msg in tone t, prefixed with the tone's icon.
func Styled(t Tone, msg string) string {
	ts := palette[t]
	return ts.style.Render(ts.icon + " " + msg)
}

// Paint renders msg in tone t without an icon.
func Paint(t Tone, msg string) string {
	return palette[t].style.Render(msg)
}

func summaryBox(title, body string) string {
	return summaryBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, headingStyle.Render(title), body))
}
