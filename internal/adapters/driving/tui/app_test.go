package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/inkling/internal/core/domain"
)

func newTestApp(t *testing.T, ports *Ports) *App {
	t.Helper()
	if ports == nil {
		ports = &Ports{Search: &MockSearchService{}, Integrations: &MockIntegrationService{}, Owner: "local"}
	}
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewApp_StartsAtMenu(t *testing.T) {
	app := newTestApp(t, nil)

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.NotNil(t, app.Init())
	assert.Contains(t, app.View(), "Inkling")
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingSearchService)
	assert.Nil(t, app)
}

func TestApp_NotReadyUntilSized(t *testing.T) {
	app, err := NewApp(&Ports{Search: &MockSearchService{}})
	require.NoError(t, err)

	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())

	app.Update(tea.WindowSizeMsg{Width: 90, Height: 20})
	assert.True(t, app.Ready())
}

func TestApp_CtrlCQuitsFromAnyView(t *testing.T) {
	app := newTestApp(t, nil)
	app.Update(messages.ViewChanged{View: messages.ViewSearch})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_MenuToSearchAndBack(t *testing.T) {
	app := newTestApp(t, nil)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Equal(t, messages.ViewSearch, app.CurrentView())

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_SearchRoundTrip(t *testing.T) {
	var gotQuery string
	ports := &Ports{Search: &MockSearchService{
		SearchFunc: func(_ context.Context, query string, _ domain.SearchOptions) ([]domain.QueryResult, error) {
			gotQuery = query
			return []domain.QueryResult{{ChunkID: 1, DocumentName: "notes.md", ChunkText: "quarterly plan"}}, nil
		},
	}}
	app := newTestApp(t, ports)
	app.Update(messages.ViewChanged{View: messages.ViewSearch})

	app.Update(runes("plan"))
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	// The submit command batches the spinner tick with the query.
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if msg, ok := c().(messages.SearchCompleted); ok {
			app.Update(msg)
		}
	}

	assert.Equal(t, "plan", gotQuery)
	assert.NoError(t, app.Err())
	assert.Contains(t, app.View(), "notes.md")
}

func TestApp_MenuToSourcesLoads(t *testing.T) {
	svc := &MockIntegrationService{Integrations: []domain.Integration{
		{Provider: domain.ProviderFilesystem, Account: "/home/ada/notes", SyncStatus: domain.SyncSuccess},
	}}
	app := newTestApp(t, &Ports{Search: &MockSearchService{}, Integrations: svc, Owner: "local"})

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewSources})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, messages.ViewSources, app.CurrentView())
	assert.Contains(t, app.View(), "/home/ada/notes")

	_, cmd = app.Update(runes("r"))
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Equal(t, 1, svc.Triggered)
}

func TestApp_SourcesErrorSurfaces(t *testing.T) {
	svc := &MockIntegrationService{StatusErr: errors.New("store closed")}
	app := newTestApp(t, &Ports{Search: &MockSearchService{}, Integrations: svc})

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewSources})
	app.Update(cmd())

	assert.EqualError(t, app.Err(), "store closed")
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t, nil)

	app.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.Same(t, app, app.WithContext(ctx))
	assert.Equal(t, ctx, app.ctx)
}
