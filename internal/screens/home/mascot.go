package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/interviewiz/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // Default
	MascotCelebrating                      // Last interview passed
	MascotAlert                            // An interview is unfinished
)

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ◡  │
│ ? ! │
└─────┘`

const mascotCelebrating = `┌─────┐
│ ★ ★ │
│  ▿  │
│ ? ! │
└─╥═╥─┘
  ╚═╝`

const mascotAlert = `┌─────┐
│ ◉ ◉ │ …
│  ▽  │
│ ? ! │
└─────┘`

// mascotFor picks the variant from the stored sessions, newest first.
func mascotFor(st stats) MascotVariant {
	switch {
	case st.Unfinished > 0:
		return MascotAlert
	case st.LastPassed:
		return MascotCelebrating
	default:
		return MascotIdle
	}
}

// RenderMascot returns the mascot ASCII art for the given variant.
func RenderMascot(v MascotVariant) string {
	art := mascotIdle
	fg := theme.Primary

	switch v {
	case MascotCelebrating:
		art = mascotCelebrating
		fg = theme.Success
	case MascotAlert:
		art = mascotAlert
		fg = theme.Accent
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
