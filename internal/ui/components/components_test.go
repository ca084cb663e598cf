package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
)

type pickedMsg string

func testMenu() Menu {
	pick := func(s string) func() tea.Cmd {
		return func() tea.Cmd { return func() tea.Msg { return pickedMsg(s) } }
	}
	return NewMenu([]MenuItem{
		{Label: "Start", Action: pick("start")},
		{Label: "Resume", Disabled: true},
		{Label: "Quit", Action: pick("quit")},
	})
}

func TestMenu_SkipsDisabled(t *testing.T) {
	m := testMenu()
	assert.Equal(t, 0, m.Selected)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 2, m.Selected)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 0, m.Selected)
}

func TestMenu_Enter(t *testing.T) {
	m := testMenu()
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if assert.NotNil(t, cmd) {
		assert.Equal(t, pickedMsg("quit"), cmd())
	}
}

func TestMenu_DigitShortcut(t *testing.T) {
	m := testMenu()
	m, cmd := m.Update(tea.KeyPressMsg{Code: '3', Text: "3"})
	assert.Equal(t, 2, m.Selected)
	if assert.NotNil(t, cmd) {
		assert.Equal(t, pickedMsg("quit"), cmd())
	}

	m, cmd = m.Update(tea.KeyPressMsg{Code: '2', Text: "2"})
	assert.Nil(t, cmd)
	assert.Equal(t, 2, m.Selected)
}

func TestMenu_StopsAtEdges(t *testing.T) {
	m := testMenu()
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 0, m.Selected)
}

func TestMenu_FirstEnabledSelected(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "a", Disabled: true}, {Label: "b"}})
	assert.Equal(t, 1, m.Selected)
	assert.Contains(t, m.View(), "▸ b")
}

func TestProgressBar_Fraction(t *testing.T) {
	tests := []struct {
		value, max, want float64
	}{
		{5, 10, 0.5},
		{12, 10, 1},
		{-1, 10, 0},
		{3, 0, 0},
	}
	for _, tt := range tests {
		p := ProgressBar{Value: tt.value, Max: tt.max}
		assert.InDelta(t, tt.want, p.Fraction(), 1e-9)
	}
}

func TestScoreBar_View(t *testing.T) {
	v := NewScoreBar("Completeness", 7.5, 40).View()
	assert.Contains(t, v, "Completeness")
	assert.Contains(t, v, "7.5")
}

func TestTextInput_SetAndReset(t *testing.T) {
	in := NewTextInput("Type your answer...", 100)
	in.SetValue("hello")
	assert.Equal(t, "hello", in.Value())
	in.Reset()
	assert.Empty(t, in.Value())
}

func TestContentWidth(t *testing.T) {
	assert.Equal(t, 20, ContentWidth(10))
	assert.Equal(t, 60, ContentWidth(66))
	assert.Equal(t, 72, ContentWidth(200))
}
