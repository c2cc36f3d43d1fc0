package backend

import (
	"fmt"

	"finanzas/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		FirestoreProjectID: appConfig.FirestoreProjectID,
		FirestoreDatabase:  appConfig.FirestoreDatabase,
		Credentials:        appConfig.GoogleCredentials(),

		DataDirectory: appConfig.DataDirectory,
		LenientReads:  appConfig.LenientReads,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}

	case FirestoreBackend:
		if c.FirestoreProjectID == "" {
			return fmt.Errorf("Firestore project ID is required for firestore backend")
		}
		if !c.Credentials.Configured() {
			return fmt.Errorf("Google credentials are required for firestore backend")
		}

	case AutoBackend:
		// auto may end on sqlite either way
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for auto backend")
		}

	case MemoryBackend:
		// Memory backend doesn't require additional validation
	}

	return nil
}

// Resolve maps auto to the concrete mode the credentials allow. Other types
// are returned unchanged.
func (c Config) Resolve() BackendType {
	if c.Type != AutoBackend {
		return c.Type
	}
	if c.FirestoreProjectID != "" && c.Credentials.Configured() {
		return FirestoreBackend
	}
	return SQLiteBackend
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{AutoBackend, SQLiteBackend, MemoryBackend, FirestoreBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	strs := make([]string, len(types))
	for i, t := range types {
		strs[i] = t.String()
	}
	return strs
}
