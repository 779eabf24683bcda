package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from SyncStatus
		to   SyncStatus
		want bool
	}{
		{SyncIdle, SyncSyncing, true},
		{SyncSuccess, SyncSyncing, true},
		{SyncError, SyncSyncing, true},
		{SyncSyncing, SyncSuccess, true},
		{SyncSyncing, SyncError, true},
		{SyncSyncing, SyncSyncing, false},
		{SyncIdle, SyncSuccess, false},
		{SyncIdle, SyncError, false},
		{SyncSuccess, SyncError, false},
		{SyncError, SyncIdle, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestSyncStatus_IsTerminal(t *testing.T) {
	assert.True(t, SyncSuccess.IsTerminal())
	assert.True(t, SyncError.IsTerminal())
	assert.False(t, SyncIdle.IsTerminal())
	assert.False(t, SyncSyncing.IsTerminal())
}

func TestParseSyncStatus(t *testing.T) {
	s, err := ParseSyncStatus("syncing")
	require.NoError(t, err)
	assert.Equal(t, SyncSyncing, s)

	_, err = ParseSyncStatus("paused")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRawDocument_BaseDocument(t *testing.T) {
	modified := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	raw := &RawDocument{
		Item:     ItemHandle{ExternalID: "notes/a.md", Name: "a.md", ModifiedAt: modified},
		MIMEType: "text/markdown",
		Metadata: map[string]string{MetaURL: "file:///notes/a.md"},
	}

	doc := raw.BaseDocument()
	assert.Equal(t, "notes/a.md", doc.ExternalID)
	assert.Equal(t, "a.md", doc.DisplayName)
	assert.Equal(t, "text/markdown", doc.ContentType)
	assert.Equal(t, "file:///notes/a.md", doc.OriginURL)
	assert.Equal(t, modified, doc.CreatedAt)

	raw.Metadata[MetaTitle] = "Notes"
	raw.Metadata[MetaCreated] = "2023-01-02T03:04:05Z"
	doc = raw.BaseDocument()
	assert.Equal(t, "Notes", doc.DisplayName)
	assert.Equal(t, 2023, doc.CreatedAt.Year())
}
