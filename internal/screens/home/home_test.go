package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/interviewiz/internal/router"
	"github.com/abhisek/interviewiz/internal/screen"
	"github.com/abhisek/interviewiz/internal/store"
)

type stubScreen struct{ title string }

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

type staticLister []store.SessionSummary

func (l staticLister) List(context.Context) ([]store.SessionSummary, error) { return l, nil }

func TestComputeStats(t *testing.T) {
	st := computeStats([]store.SessionSummary{
		{ID: "c", Completed: false},
		{ID: "b", Completed: true, FinalScore: 5},
		{ID: "a", Completed: true, FinalScore: 8},
	})
	assert.Equal(t, 3, st.Sessions)
	assert.Equal(t, 2, st.Completed)
	assert.Equal(t, 1, st.Unfinished)
	assert.Equal(t, 8.0, st.Best)
	assert.InDelta(t, 6.5, st.Average, 1e-9)
	assert.False(t, st.LastPassed, "newest completed session scored below the pass mark")

	assert.Equal(t, MascotAlert, mascotFor(st))
	assert.Equal(t, MascotCelebrating, mascotFor(stats{LastPassed: true}))
	assert.Equal(t, MascotIdle, mascotFor(stats{}))
}

func TestComputeStats_Empty(t *testing.T) {
	st := computeStats(nil)
	assert.Equal(t, stats{}, st)
}

func TestHome_StartInterview(t *testing.T) {
	h := New(Options{
		Sessions:     staticLister{{ID: "a", Completed: true, FinalScore: 7}},
		NewInterview: func() screen.Screen { return &stubScreen{title: "Interview"} },
		NewHistory:   func() screen.Screen { return &stubScreen{title: "Past Sessions"} },
	})

	cmd := h.Init()
	require.NotNil(t, cmd)
	h.Update(cmd())
	assert.True(t, h.loaded)
	assert.Equal(t, 1, h.stats.Completed)

	_, cmd = h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Interview", push.Screen.Title())

	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd = h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	push, ok = cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Past Sessions", push.Screen.Title())

	assert.NotNil(t, h.Resume())
}

func TestHome_NoInterviewer(t *testing.T) {
	h := New(Options{})

	assert.Nil(t, h.Init())
	assert.True(t, h.menu.Items[0].Disabled)
	assert.True(t, h.menu.Items[1].Disabled)
	assert.Equal(t, 2, h.menu.Selected, "only QUIT is enabled")

	view := h.View(120, 40)
	assert.True(t, strings.Contains(view, "Set an LLM API key"))
}
