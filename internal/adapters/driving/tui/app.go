package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/views/sources"
)

// App routes messages between the menu, search and sources views.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView    *menu.View
	searchView  *search.View
	sourcesView *sources.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// NewApp creates the TUI application.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		menuView:    menu.NewView(s, km),
		searchView:  search.NewView(s, km, ports.Search, ports.Open),
		sourcesView: sources.NewView(s, km, ports.Integrations, ports.Owner),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context service calls run under.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.sourcesView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("inkling")
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewSearch:
			a.searchView.Reset()
			return a, a.searchView.Init()
		case messages.ViewSources:
			return a, a.sourcesView.Init()
		case messages.ViewMenu:
		}
		return a, nil

	case messages.SearchCompleted, messages.Opened:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.IntegrationsLoaded, messages.IndexingTriggered:
		a.sourcesView, cmd = a.sourcesView.Update(msg)
		a.err = a.sourcesView.Err()
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
	}

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewSources:
		a.sourcesView, cmd = a.sourcesView.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewSources:
		return a.sourcesView.View()
	default:
		return a.menuView.View()
	}
}

// Run starts the program and blocks until the user quits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error seen by any view.
func (a *App) Err() error {
	return a.err
}

// Ready reports whether a window size has been received.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions resizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.sourcesView.SetDimensions(width, height)
}
