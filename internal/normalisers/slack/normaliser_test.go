package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/inkling/internal/core/domain"
)

const base = 1700000000 // 2023-11-14 22:13:20 UTC

func message(offset int, user, text string) slackapi.Message {
	var m slackapi.Message
	m.Timestamp = fmt.Sprintf("%d.000100", base+offset)
	m.User = user
	m.Text = text
	return m
}

// newestFirst mimics conversations.history ordering.
func newestFirst(msgs ...slackapi.Message) []slackapi.Message {
	out := make([]slackapi.Message, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = m
	}
	return out
}

func rawHistory(t *testing.T, h History) *domain.RawDocument {
	t.Helper()
	b, err := json.Marshal(h)
	require.NoError(t, err)
	return &domain.RawDocument{
		Item:     domain.ItemHandle{ExternalID: h.ChannelID, Name: h.ChannelName},
		Provider: domain.ProviderSlack,
		MIMEType: MIMEType,
		Content:  b,
	}
}

func TestNormalise_SplitsSessions(t *testing.T) {
	h := History{
		ChannelID:   "C123",
		ChannelName: "general",
		Users:       map[string]string{"U1": "ada"},
		Messages: newestFirst(
			message(0, "U1", "morning"),
			message(100, "U2", "hi ada"),
			message(500, "U1", "lunch?"),
			message(520, "U2", "yes"),
		),
	}

	docs, err := New(300*time.Second).Normalise(context.Background(), rawHistory(t, h))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	first, second := docs[0], docs[1]
	assert.Equal(t, "C123_0", first.Document.ExternalID)
	assert.Equal(t, "general, part 1", first.Document.DisplayName)
	assert.Equal(t, "[22:13] ada: morning\n[22:15] U2: hi ada", first.Text)
	assert.Equal(t, "C123_1", second.Document.ExternalID)
	assert.Equal(t, "general, part 2", second.Document.DisplayName)
	assert.Equal(t, "[22:21] ada: lunch?\n[22:22] U2: yes", second.Text)

	assert.Equal(t, "https://slack.com/app_redirect?channel=C123", first.Document.OriginURL)
	assert.Equal(t, ContentType, first.Document.ContentType)
	assert.Equal(t, int64(base), first.Document.CreatedAt.Unix())
	assert.Equal(t, int64(base+100), first.Document.ModifiedAt.Unix())
	assert.Equal(t, domain.SegmentSemantic, first.Policy)
}

func TestSessions_GapBoundary(t *testing.T) {
	at := func(offsets ...int) []timed {
		out := make([]timed, len(offsets))
		for i, o := range offsets {
			out[i] = timed{at: time.Unix(int64(base+o), 0)}
		}
		return out
	}

	tests := []struct {
		name    string
		offsets []int
		want    []int
	}{
		{"worked example", []int{0, 100, 500, 520}, []int{2, 2}},
		{"gap equal to threshold stays", []int{0, 300}, []int{2}},
		{"gap over threshold splits", []int{0, 301}, []int{1, 1}},
		{"single", []int{42}, []int{1}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := splitSessions(at(tt.offsets...), 300*time.Second)
			var sizes []int
			for _, s := range sessions {
				sizes = append(sizes, len(s))
			}
			assert.Equal(t, tt.want, sizes)
		})
	}
}

func TestNormalise_SkipsEmptyAndFallsBack(t *testing.T) {
	bot := message(10, "", "deploy done")
	bot.BotID = "B9"
	h := History{
		ChannelID: "C9",
		Messages:  newestFirst(message(0, "U1", "  "), bot),
	}
	raw := rawHistory(t, h)
	raw.Item.Name = "deploys"

	docs, err := New(0).Normalise(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "deploys, part 1", docs[0].Document.DisplayName)
	assert.Equal(t, "[22:13] B9: deploy done", docs[0].Text)
}

func TestNormalise_NoMessages(t *testing.T) {
	docs, err := New(0).Normalise(context.Background(), rawHistory(t, History{ChannelID: "C1"}))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestNormalise_BadPayload(t *testing.T) {
	_, err := New(0).Normalise(context.Background(), &domain.RawDocument{Content: []byte("[")})
	assert.ErrorIs(t, err, domain.ErrConversion)
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("1700000000.123456")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123456000), got.UnixNano())

	got, err = ParseTimestamp("1700000000")
	require.NoError(t, err)
	assert.Equal(t, int64(base), got.Unix())

	_, err = ParseTimestamp("soon")
	assert.Error(t, err)
}
