package domain

import "fmt"

// SyncStatus is the per-(owner, integration) indexing state.
type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncSyncing SyncStatus = "syncing"
	SyncSuccess SyncStatus = "success"
	SyncError   SyncStatus = "error"
)

// CanTransition reports whether the state machine allows s → to.
//
//	idle|success|error → syncing
//	syncing → success|error
func (s SyncStatus) CanTransition(to SyncStatus) bool {
	switch s {
	case SyncIdle, SyncSuccess, SyncError, "":
		return to == SyncSyncing
	case SyncSyncing:
		return to == SyncSuccess || to == SyncError
	}
	return false
}

// IsTerminal reports whether s ends a pass.
func (s SyncStatus) IsTerminal() bool {
	return s == SyncSuccess || s == SyncError
}

// ParseSyncStatus validates a persisted status value.
func ParseSyncStatus(v string) (SyncStatus, error) {
	switch s := SyncStatus(v); s {
	case SyncIdle, SyncSyncing, SyncSuccess, SyncError:
		return s, nil
	}
	return "", fmt.Errorf("%w: sync status %q", ErrInvalidInput, v)
}

// PassReport summarises one indexing pass.
type PassReport struct {
	IntegrationID string
	Provider      Provider
	Listed        int
	Indexed       int
	Skipped       int
	Empty         int
	Pruned        int
	Status        SyncStatus
	Err           error
}
