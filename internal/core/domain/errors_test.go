package domain

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"auth", fmt.Errorf("list: %w", ErrConnectorAuth), true},
		{"cancelled", fmt.Errorf("list: %w", context.Canceled), true},
		{"deadline", context.DeadlineExceeded, true},
		{"fetch", fmt.Errorf("item 3: %w", ErrConnectorFetch), false},
		{"conversion", ErrConversion, false},
		{"store write", ErrStoreWrite, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFatal(tt.err))
		})
	}
}

func TestChunk_IsSentinel(t *testing.T) {
	assert.True(t, (&Chunk{Embedding: make([]float32, 4)}).IsSentinel())
	assert.True(t, (&Chunk{}).IsSentinel())
	assert.False(t, (&Chunk{Embedding: []float32{0, 0.5}}).IsSentinel())
}
