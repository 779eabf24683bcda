// Package slack normalises a channel's message history into
// conversation sessions.
package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	slackapi "github.com/slack-go/slack"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	// MIMEType marks a JSON-encoded History payload.
	MIMEType = "application/x-slack-history+json"

	// ContentType is recorded on session documents.
	ContentType = "text/x-slack-session"

	// DefaultSessionGap starts a new session after five quiet minutes.
	DefaultSessionGap = 300 * time.Second

	originURL = "https://slack.com/app_redirect?channel="
)

// History is the payload the Slack connector fetches for one channel.
// Messages are in the API's reverse-chronological order.
type History struct {
	ChannelID   string             `json:"channel_id"`
	ChannelName string             `json:"channel_name"`
	Users       map[string]string  `json:"users,omitempty"`
	Messages    []slackapi.Message `json:"messages"`
}

// Normaliser splits channel histories on quiet gaps.
type Normaliser struct {
	gap time.Duration
}

// New creates a Slack normaliser. A non-positive gap uses DefaultSessionGap.
func New(gap time.Duration) *Normaliser {
	if gap <= 0 {
		gap = DefaultSessionGap
	}
	return &Normaliser{gap: gap}
}

func (n *Normaliser) Name() string { return "slack" }

func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

func (n *Normaliser) Priority() int {
	return 90
}

// Normalise returns one document per session, external id
// "<channel>_<index>" and display name "<channel>, part N".
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.NormalisedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	var h History
	if err := json.Unmarshal(raw.Content, &h); err != nil {
		return nil, fmt.Errorf("%w: slack history: %w", domain.ErrConversion, err)
	}
	if h.ChannelID == "" {
		h.ChannelID = raw.Item.ExternalID
	}
	name := h.ChannelName
	if name == "" {
		name = raw.Item.Name
	}
	if name == "" {
		name = h.ChannelID
	}

	msgs := chronological(h.Messages)
	sessions := splitSessions(msgs, n.gap)

	docs := make([]domain.NormalisedDocument, 0, len(sessions))
	for i, session := range sessions {
		lines := make([]string, len(session))
		for j, m := range session {
			lines[j] = fmt.Sprintf("[%s] %s: %s", m.at.Format("15:04"), h.author(m.msg), m.msg.Text)
		}
		docs = append(docs, domain.NormalisedDocument{
			Document: domain.Document{
				ExternalID:  fmt.Sprintf("%s_%d", h.ChannelID, i),
				DisplayName: fmt.Sprintf("%s, part %d", name, i+1),
				ContentType: ContentType,
				OriginURL:   originURL + h.ChannelID,
				CreatedAt:   session[0].at,
				ModifiedAt:  session[len(session)-1].at,
			},
			Text:   strings.Join(lines, "\n"),
			Policy: domain.SegmentSemantic,
		})
	}
	return docs, nil
}

func (h *History) author(m slackapi.Message) string {
	if name := h.Users[m.User]; name != "" {
		return name
	}
	for _, s := range []string{m.Username, m.User, m.BotID} {
		if s != "" {
			return s
		}
	}
	return "unknown"
}

type timed struct {
	msg slackapi.Message
	at  time.Time
}

// chronological reverses the API order and drops messages with no text
// or an unreadable timestamp.
func chronological(in []slackapi.Message) []timed {
	out := make([]timed, 0, len(in))
	for i := len(in) - 1; i >= 0; i-- {
		m := in[i]
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		at, err := ParseTimestamp(m.Timestamp)
		if err != nil {
			continue
		}
		out = append(out, timed{msg: m, at: at})
	}
	return out
}

// splitSessions groups chronological messages, starting a new group whenever
// consecutive timestamps are more than gap apart.
func splitSessions(msgs []timed, gap time.Duration) [][]timed {
	var out [][]timed
	for i, m := range msgs {
		if i == 0 || m.at.Sub(msgs[i-1].at) > gap {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], m)
	}
	return out
}

// ParseTimestamp reads a Slack "seconds.micros" timestamp as UTC.
func ParseTimestamp(ts string) (time.Time, error) {
	secs, frac, _ := strings.Cut(ts, ".")
	s, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("slack timestamp %q: %w", ts, err)
	}
	var micros int64
	if frac != "" {
		frac = (frac + "000000")[:6]
		if micros, err = strconv.ParseInt(frac, 10, 64); err != nil {
			return time.Time{}, fmt.Errorf("slack timestamp %q: %w", ts, err)
		}
	}
	return time.Unix(s, micros*1000).UTC(), nil
}
