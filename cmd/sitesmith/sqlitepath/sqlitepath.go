// Package sqlitepath resolves where the SQLite conversation store lives.
package sqlitepath

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/papercomputeco/sitesmith/pkg/dotdir"
)

const dbFile = "sitesmith.sqlite"

// ResolveSQLitePath returns override when set. Otherwise an existing
// database in the working directory wins, then the .sitesmith/ directory
// resolved from configDir, where a new database is created on first use.
func ResolveSQLitePath(override, configDir string) (string, error) {
	if override != "" {
		return override, nil
	}

	for _, candidate := range []string{dbFile, "sitesmith.db"} {
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Abs(candidate)
		}
	}

	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return "", fmt.Errorf("resolving sqlite path: %w", err)
	}

	return filepath.Join(dir, dbFile), nil
}
