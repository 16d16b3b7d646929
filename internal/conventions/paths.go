package conventions

import (
	"path/filepath"

	"k8s.io/client-go/util/homedir"
)

const (
	// DefaultDataDir is the default dothis data directory name (relative to home).
	DefaultDataDir = ".dothis"
	// DBFile is the SQLite database filename.
	DBFile = "dothis.db"
	// JSONDir is the subdirectory of the JSON file storage.
	JSONDir = "data"

	// Storage types.

	StorageSQLite = "sqlite"
	StorageFile   = "file"
	StorageMemory = "memory"
)

// DataDir returns the default data directory, inside the user home.
func DataDir() string {
	return filepath.Join(homedir.HomeDir(), DefaultDataDir)
}

// DBPath returns the path of the SQLite database inside a data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// JSONDataDir returns the directory of the JSON file storage inside a data
// directory.
func JSONDataDir(dataDir string) string {
	return filepath.Join(dataDir, JSONDir)
}
