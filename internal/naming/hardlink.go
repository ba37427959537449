package naming

import (
	"path/filepath"
	"strings"
)

// DefaultHardlinkDir is used when no hardlink directory is configured.
const DefaultHardlinkDir = "/data"

// HardlinkPath is where the release is linked: the release name under
// baseDir, keeping the source file's extension. Directories get no
// extension.
func HardlinkPath(baseDir, releaseName, sourceName string, sourceIsDir bool) string {
	if strings.TrimSpace(baseDir) == "" {
		baseDir = DefaultHardlinkDir
	}
	name := releaseName
	if !sourceIsDir {
		name += filepath.Ext(sourceName)
	}
	return filepath.Join(baseDir, name)
}
