// Package list renders search results.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/inkling/internal/core/domain"
)

// linesPerResult is the rendered height of one result.
const linesPerResult = 3

// ResultList displays one row per document with its best chunk.
type ResultList struct {
	results  []domain.QueryResult
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates an empty result list.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &ResultList{styles: s, width: 80, height: 12}
}

// Update moves the selection on arrow and j/k keys.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the visible window of results.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	visible := max((r.height-2)/linesPerResult, 1)
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := min(start+visible, len(r.results))

	lines := []string{r.styles.Subtitle.Render(fmt.Sprintf("%d documents", len(r.results))), ""}
	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i, &r.results[i]))
	}
	return strings.Join(lines, "\n")
}

func (r *ResultList) renderResult(index int, res *domain.QueryResult) string {
	name := res.DocumentName
	if name == "" {
		name = "(untitled)"
	}
	nameWidth := max(r.width-16, 10)
	name = Truncate(name, nameWidth)
	score := fmt.Sprintf("%.4f", res.Score)

	var title string
	if index == r.selected {
		title = r.styles.Selected.Render(fmt.Sprintf("> %-*s  %s", nameWidth, name, score))
	} else {
		title = r.styles.Normal.Render(fmt.Sprintf("  %-*s  ", nameWidth, name)) + r.styles.Score.Render(score)
	}

	snippet := Truncate(strings.Join(strings.Fields(res.ChunkText), " "), max(r.width-6, 20))
	meta := ""
	if !res.Timestamp.IsZero() {
		meta = res.Timestamp.Local().Format("2006-01-02")
	}
	if res.OriginURL != "" {
		if meta != "" {
			meta += "  "
		}
		meta += res.OriginURL
	}

	return title + "\n" +
		r.styles.Normal.Render("    "+snippet) + "\n" +
		r.styles.Muted.Render("    "+Truncate(meta, max(r.width-6, 20)))
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// SetResults replaces the results and resets the selection.
func (r *ResultList) SetResults(results []domain.QueryResult) {
	r.results = results
	r.selected = 0
}

// Results returns the current results.
func (r *ResultList) Results() []domain.QueryResult {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SelectedResult returns the selected result, or nil if there is none.
func (r *ResultList) SelectedResult() *domain.QueryResult {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.results)
}
