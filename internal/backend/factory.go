package backend

import (
	"context"
	"fmt"
	"log/slog"

	"finanzas/internal/store"
	"finanzas/internal/store/firestore"
	"finanzas/internal/store/kv"
	"finanzas/internal/store/local"
	"finanzas/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger

	// constructors, replaceable in tests
	openSQLite    func(path string) (kv.Store, CleanupFunc, error)
	openFirestore func(ctx context.Context, cfg firestore.Config) (store.Store, CleanupFunc, error)
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger:        logger,
		openSQLite:    openSQLite,
		openFirestore: openFirestore,
	}
}

func openSQLite(path string) (kv.Store, CleanupFunc, error) {
	db, err := storage.NewSQLiteKV(path)
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}

func openFirestore(ctx context.Context, cfg firestore.Config) (store.Store, CleanupFunc, error) {
	fs, err := firestore.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return fs, fs.Close, nil
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	mode := config.Resolve()
	var (
		result *BackendResult
		err    error
	)
	switch mode {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		result, err = f.createMemoryBackend(config)
	case FirestoreBackend:
		result, err = f.createFirestoreBackend(ctx, config)
		if err != nil && config.Type == AutoBackend {
			f.logger.Warn("Firestore unavailable, falling back to SQLite for this process",
				"error", err,
				"db_path", config.SQLiteDBPath)
			result, err = f.createSQLiteBackend(config)
			if result != nil {
				result.Fallback = true
			}
		}
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", mode)
	}
	if err != nil {
		return nil, err
	}

	if config.LenientReads {
		result.Backend = store.Lenient(result.Backend)
		result.Lenient = true
	}

	f.logger.Info("Persistence backend selected",
		"requested", config.Type,
		"mode", result.Mode,
		"fallback", result.Fallback,
		"lenient_reads", result.Lenient)

	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	db, cleanup, err := f.openSQLite(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: local.New(db),
		Cleanup: cleanup,
		Mode:    SQLiteBackend,
	}, nil
}

func (f *DefaultFactory) createFirestoreBackend(ctx context.Context, config Config) (*BackendResult, error) {
	fs, cleanup, err := f.openFirestore(ctx, firestore.Config{
		ProjectID:   config.FirestoreProjectID,
		Database:    config.FirestoreDatabase,
		Credentials: config.Credentials,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firestore client: %w", err)
	}

	f.logger.Info("Initialized Firestore backend", "project", config.FirestoreProjectID)

	return &BackendResult{
		Backend: fs,
		Cleanup: cleanup,
		Mode:    FirestoreBackend,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	var mem *kv.Memory
	if config.DataDirectory != "" {
		mem = kv.NewMemoryFromDir(config.DataDirectory, local.Keys...)
	} else {
		mem = kv.NewMemory()
	}

	f.logger.Info("Initialized memory backend",
		"data_directory", config.DataDirectory,
		"seeded_keys", len(mem.Keys()))

	return &BackendResult{
		Backend: local.New(mem),
		Mode:    MemoryBackend,
	}, nil
}
