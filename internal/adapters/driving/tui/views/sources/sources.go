// Package sources lists connected integrations with their sync status.
package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driving"
)

// ErrNoIntegrationService is reported when the view has nothing to query.
var ErrNoIntegrationService = errors.New("integration service not available")

// View is the integrations list.
type View struct {
	styles       *styles.Styles
	keymap       *keymap.KeyMap
	statusbar    *status.Bar
	integrations driving.IntegrationService
	owner        string
	ctx          context.Context

	items    []domain.Integration
	selected int
	width    int
	height   int
	ready    bool
	loading  bool
	err      error
}

// NewView creates the sources view for owner.
func NewView(s *styles.Styles, km *keymap.KeyMap, integrations driving.IntegrationService, owner string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	v := &View{
		styles:       s,
		keymap:       km,
		statusbar:    status.NewBar(s),
		integrations: integrations,
		owner:        owner,
		ctx:          context.Background(),
		width:        80,
		height:       24,
	}
	v.statusbar.SetHints(km.SourcesHelp())
	return v
}

// WithContext sets the context service calls run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the integrations.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.load()
}

func (v *View) load() tea.Cmd {
	return func() tea.Msg {
		if v.integrations == nil {
			return messages.IntegrationsLoaded{Err: ErrNoIntegrationService}
		}
		items, err := v.integrations.Status(v.ctx, v.owner)
		return messages.IntegrationsLoaded{Integrations: items, Err: err}
	}
}

func (v *View) reindex() tea.Cmd {
	return func() tea.Msg {
		if v.integrations == nil {
			return messages.IndexingTriggered{Err: ErrNoIntegrationService}
		}
		return messages.IndexingTriggered{Err: v.integrations.TriggerIndexing(v.ctx, v.owner)}
	}
}

// Update handles messages for the sources view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.IntegrationsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.items = msg.Integrations
			v.selected = min(v.selected, max(len(v.items)-1, 0))
		}
		return v, nil

	case messages.IndexingTriggered:
		if msg.Err != nil {
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
			return v, nil
		}
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage("indexing started")
		return v, v.load()
	}

	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	case keymap.Matches(k, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(k, v.keymap.Down):
		if v.selected < len(v.items)-1 {
			v.selected++
		}
	case keymap.Matches(k, v.keymap.Reindex):
		return v, v.reindex()
	case keymap.Matches(k, v.keymap.Refresh):
		v.loading = true
		return v, v.load()
	}
	return v, nil
}

// View renders the list.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Sources"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading sources..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.items) == 0:
		b.WriteString(v.styles.Muted.Render("Nothing connected yet. Try `inkling connect google` or `inkling add <dir>`."))
	default:
		for i := range v.items {
			b.WriteString(v.renderItem(i, &v.items[i]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	v.statusbar.SetWidth(v.width)
	b.WriteString(v.statusbar.View())
	return b.String()
}

func (v *View) renderItem(index int, in *domain.Integration) string {
	label := fmt.Sprintf("%-11s %s", in.Provider, list.Truncate(in.Account, max(v.width-40, 10)))
	if index == v.selected {
		label = v.styles.Selected.Render("> " + label)
	} else {
		label = "  " + v.styles.Normal.Render(label)
	}

	state := string(in.SyncStatus)
	line := label + "  " + v.styles.SyncStatus(state).Render(state) +
		"  " + v.styles.Muted.Render(lastSynced(in.LastSyncedAt))
	if in.LastError != "" {
		line += "\n    " + v.styles.Error.Render(list.Truncate(in.LastError, max(v.width-6, 20)))
	}
	return line
}

func lastSynced(t time.Time) string {
	if t.IsZero() {
		return "never synced"
	}
	return "synced " + t.Local().Format("2006-01-02 15:04")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Integrations returns the loaded integrations.
func (v *View) Integrations() []domain.Integration {
	return v.items
}

// SelectedIndex returns the highlighted row.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Loading reports whether a load is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}

// StatusMessage returns the status bar message.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}
