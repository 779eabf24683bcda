package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/messages"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewView_Defaults(t *testing.T) {
	view := NewView(nil, nil)

	require.NotNil(t, view)
	require.Len(t, view.Items(), 3)
	assert.Equal(t, "Search", view.Items()[0].Label)
	assert.Equal(t, "Sources", view.Items()[1].Label)
	assert.True(t, view.Items()[2].Quit)
	assert.Equal(t, 0, view.Selected())
	assert.Nil(t, view.Init())
}

func TestView_Navigation(t *testing.T) {
	view := NewView(nil, nil)

	view.Update(key("up"))
	assert.Equal(t, 0, view.Selected(), "stays at the top")

	view.Update(key("j"))
	view.Update(key("down"))
	assert.Equal(t, 2, view.Selected())

	view.Update(key("down"))
	assert.Equal(t, 2, view.Selected(), "stays at the bottom")

	view.Update(key("k"))
	assert.Equal(t, 1, view.Selected())
}

func TestView_SelectChangesView(t *testing.T) {
	tests := []struct {
		name  string
		moves int
		want  messages.ViewType
	}{
		{"search", 0, messages.ViewSearch},
		{"sources", 1, messages.ViewSources},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := NewView(nil, nil)
			for range tt.moves {
				view.Update(key("down"))
			}

			_, cmd := view.Update(key("enter"))

			require.NotNil(t, cmd)
			assert.Equal(t, messages.ViewChanged{View: tt.want}, cmd())
		})
	}
}

func TestView_QuitItem(t *testing.T) {
	view := NewView(nil, nil)
	view.Update(key("down"))
	view.Update(key("down"))

	_, cmd := view.Update(key("enter"))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_QuitKey(t *testing.T) {
	view := NewView(nil, nil)

	_, cmd := view.Update(key("q"))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_WindowSize(t *testing.T) {
	view := NewView(nil, nil)
	assert.Equal(t, "Initialising...", view.View())

	_, cmd := view.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.Nil(t, cmd)
	assert.Equal(t, 100, view.width)
	assert.Contains(t, view.View(), "Inkling")
}

func TestView_RendersItems(t *testing.T) {
	view := NewView(nil, nil)
	view.SetDimensions(80, 24)

	out := view.View()

	assert.Contains(t, out, "> Search")
	assert.Contains(t, out, "Sources")
	assert.Contains(t, out, "Quit")
}
