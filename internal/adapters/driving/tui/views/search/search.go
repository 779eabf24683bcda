// Package search provides the query and results view for the TUI.
package search

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driving"
)

// Opener opens an origin URL outside the terminal.
type Opener func(url string) error

// View is the search input, a spinner while a query runs, and the results.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	statusbar *status.Bar
	spinner   spinner.Model

	searchService driving.SearchService
	open          Opener
	ctx           context.Context

	width      int
	height     int
	ready      bool
	searching  bool
	err        error
	focusInput bool
}

// NewView creates a new search view. open may be nil.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService, open Opener) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Spinner))

	v := &View{
		styles:        s,
		keymap:        km,
		input:         input.NewSearchInput(s),
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s),
		spinner:       sp,
		searchService: searchService,
		open:          open,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
	v.statusbar.SetHints(km.InputHelp())
	return v
}

// WithContext sets the context queries run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case spinner.TickMsg:
		if !v.searching {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.Opened:
		if msg.Err != nil {
			v.statusbar.SetMessage("open failed: " + msg.Err.Error())
		} else {
			v.statusbar.SetMessage("opened")
		}
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if keymap.Matches(msg.String(), v.keymap.Back) {
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	}

	if v.focusInput {
		if keymap.Matches(msg.String(), v.keymap.Submit) {
			return v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.NewSearch):
		v.focusInput = true
		v.input.SetValue("")
		v.statusbar.SetHints(v.keymap.InputHelp())
		return v, v.input.Focus()
	case keymap.Matches(msg.String(), v.keymap.Open):
		return v, v.openSelected()
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

func (v *View) submit() (*View, tea.Cmd) {
	query := strings.TrimSpace(v.input.Value())
	if query == "" || v.searching {
		return v, nil
	}
	v.searching = true
	v.err = nil
	v.statusbar.SetState(status.StateSearching)
	v.statusbar.SetMessage("")
	return v, tea.Batch(v.spinner.Tick, v.performSearch(query))
}

func (v *View) performSearch(query string) tea.Cmd {
	return func() tea.Msg {
		if v.searchService == nil {
			return messages.SearchCompleted{Query: query, Err: ErrNoSearchService}
		}
		results, err := v.searchService.Search(v.ctx, query, domain.SearchOptions{})
		return messages.SearchCompleted{Query: query, Results: results, Err: err}
	}
}

func (v *View) openSelected() tea.Cmd {
	res := v.list.SelectedResult()
	if res == nil || v.open == nil {
		return nil
	}
	url := res.OriginURL
	open := v.open
	return func() tea.Msg {
		if url == "" {
			return messages.Opened{Err: ErrNoOriginURL}
		}
		return messages.Opened{URL: url, Err: open(url)}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	v.searching = false
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Results))
	v.statusbar.SetHints(v.keymap.ResultsHelp())
	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.searching = false
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("inkling"), "", v.input.View(), ""}

	switch {
	case v.searching:
		sections = append(sections, v.spinner.View()+" "+v.styles.Muted.Render("Searching..."))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	default:
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-8)
	v.statusbar.SetWidth(width)
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Results returns the current search results.
func (v *View) Results() []domain.QueryResult {
	return v.list.Results()
}

// SelectedResult returns the currently selected result.
func (v *View) SelectedResult() *domain.QueryResult {
	return v.list.SelectedResult()
}

// Searching reports whether a query is in flight.
func (v *View) Searching() bool {
	return v.searching
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset returns the view to an empty query.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.err = nil
	v.searching = false
	v.statusbar.Clear()
	v.statusbar.SetHints(v.keymap.InputHelp())
}
