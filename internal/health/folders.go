package health

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// CheckFolderWritable verifies that path is a directory the service can
// create files in, by writing and removing a probe file.
func CheckFolderWritable(path string) error {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("path does not exist: %s", path)
	case os.IsPermission(err):
		return fmt.Errorf("permission denied: %s", path)
	case err != nil:
		return fmt.Errorf("cannot access path: %w", err)
	case !info.IsDir():
		return fmt.Errorf("path is not a directory: %s", path)
	}

	probe := filepath.Join(path, ".butinmaker_probe_"+uuid.NewString()[:8])
	if err := os.WriteFile(probe, []byte("probe"), 0o600); err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("folder is read-only: %s", path)
		}
		return fmt.Errorf("cannot write to folder: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		return fmt.Errorf("cannot remove probe file: %w", err)
	}
	return nil
}
