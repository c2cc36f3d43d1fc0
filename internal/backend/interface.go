package backend

import (
	"context"

	"finanzas/internal/gauth"
	"finanzas/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the selected store and what the caller needs to
// report and release it.
type BackendResult struct {
	Backend store.Store
	Cleanup CleanupFunc

	// Mode is the backend actually in use; it differs from the requested
	// type when auto resolved or fell back.
	Mode BackendType
	// Fallback is set when auto picked firestore but had to use sqlite.
	Fallback bool
	// Lenient reports whether read failures degrade to defaults.
	Lenient bool
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend resolves the mode once and builds the store for the
	// lifetime of the process.
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Firestore specific
	FirestoreProjectID string
	FirestoreDatabase  string
	Credentials        gauth.Credentials

	// Memory backend specific: optional seed files <key>.json
	DataDirectory string

	LenientReads bool
}

// BackendType represents the type of backend
type BackendType string

const (
	AutoBackend      BackendType = "auto"
	SQLiteBackend    BackendType = "sqlite"
	MemoryBackend    BackendType = "memory"
	FirestoreBackend BackendType = "firestore"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case AutoBackend, SQLiteBackend, MemoryBackend, FirestoreBackend:
		return true
	default:
		return false
	}
}

// IsRemote reports whether the mode stores data outside the process host.
func (bt BackendType) IsRemote() bool {
	return bt == FirestoreBackend
}
