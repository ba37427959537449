// Package organizer places release files under the hardlink directory
// without copying them, so the originals keep seeding.
package organizer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/butinmaker/butinmaker/internal/pathutil"
)

var (
	ErrSourceNotFound    = errors.New("source does not exist")
	ErrOutsideRoot       = errors.New("destination is outside the hardlink directory")
	ErrDestinationExists = errors.New("destination already exists")
	ErrHardlinkFailed    = errors.New("failed to create hardlink")
	ErrCrossDevice       = errors.New("source and destination must be on the same filesystem")
)

// maxReportedErrors caps the per-file errors kept on a Result.
const maxReportedErrors = 3

// Result describes a link operation.
type Result struct {
	Source        string   `json:"source"`
	Dest          string   `json:"destination"`
	AlreadyLinked bool     `json:"already_linked"`
	Linked        int      `json:"linked"`
	Skipped       int      `json:"skipped"`
	Failed        int      `json:"failed"`
	Errors        []string `json:"errors,omitempty"`
}

// Message summarizes the result for the wizard.
func (r *Result) Message() string {
	if r.AlreadyLinked {
		return "hardlink already exists: " + r.Dest
	}
	if r.Linked == 1 && r.Skipped == 0 && r.Failed == 0 {
		return "hardlink created: " + r.Dest
	}

	var parts []string
	if r.Linked > 0 {
		parts = append(parts, fmt.Sprintf("%d hardlinks created", r.Linked))
	}
	if r.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d existing files skipped", r.Skipped))
	}
	if r.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d errors (%s)", r.Failed, strings.Join(r.Errors, "; ")))
	}
	if len(parts) == 0 {
		return "empty directory, nothing to link"
	}
	return strings.Join(parts, ", ")
}

// Service creates hardlinks below a configurable root.
type Service struct {
	root   func() string
	logger zerolog.Logger
}

// NewService creates an organizer. root is read on every call so that
// settings changes apply without a restart; an empty root disables the
// containment check.
func NewService(root func() string, logger zerolog.Logger) *Service {
	return &Service{
		root:   root,
		logger: logger.With().Str("component", "organizer").Logger(),
	}
}

// Link hardlinks source to dest, walking directories file by file.
func (s *Service) Link(source, dest string) (*Result, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, source)
	}
	if info.IsDir() {
		return s.LinkTree(source, dest)
	}
	return s.CreateHardlink(source, dest)
}

// CreateHardlink links a single file. A destination that already shares
// the source's inode is reported as AlreadyLinked; any other existing file
// is left alone and yields ErrDestinationExists.
func (s *Service) CreateHardlink(source, dest string) (*Result, error) {
	s.logger.Debug().
		Str("source", source).
		Str("dest", dest).
		Msg("Creating hardlink")

	srcInfo, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, source)
	}
	if err := s.checkRoot(dest); err != nil {
		return nil, err
	}

	result := &Result{Source: source, Dest: dest}
	if destInfo, err := os.Stat(dest); err == nil {
		if os.SameFile(srcInfo, destInfo) {
			result.AlreadyLinked = true
			return result, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrDestinationExists, dest)
	}

	if err := ensureDestDir(dest); err != nil {
		return nil, err
	}
	if err := os.Link(source, dest); err != nil {
		return nil, wrapLinkError(err)
	}
	result.Linked = 1

	s.logger.Info().
		Str("source", source).
		Str("dest", dest).
		Msg("Created hardlink")
	return result, nil
}

// LinkTree recreates the directory layout of sourceDir under destDir and
// hardlinks every regular file. Files already present at the destination
// are skipped. Per-file failures are counted; the operation fails only when
// nothing could be linked.
func (s *Service) LinkTree(sourceDir, destDir string) (*Result, error) {
	if info, err := os.Stat(sourceDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, sourceDir)
	}
	if err := s.checkRoot(destDir); err != nil {
		return nil, err
	}

	result := &Result{Source: sourceDir, Dest: destDir}
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(destDir, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if _, err := os.Lstat(target); err == nil {
			result.Skipped++
			return nil
		}
		if err := os.Link(path, target); err != nil {
			result.Failed++
			if len(result.Errors) < maxReportedErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rel, err))
			}
			return nil
		}
		result.Linked++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHardlinkFailed, err)
	}

	s.logger.Info().
		Str("source", sourceDir).
		Str("dest", destDir).
		Int("linked", result.Linked).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("Linked directory")

	if result.Failed > 0 && result.Linked == 0 {
		return result, fmt.Errorf("%w: %s", ErrHardlinkFailed, strings.Join(result.Errors, "; "))
	}
	return result, nil
}

func (s *Service) checkRoot(dest string) error {
	root := ""
	if s.root != nil {
		root = s.root()
	}
	if root != "" && !pathutil.IsWithin(root, dest) {
		return fmt.Errorf("%w: %s", ErrOutsideRoot, dest)
	}
	return nil
}

// ensureDestDir creates the destination directory if needed, inheriting permissions.
func ensureDestDir(destPath string) error {
	destDir := filepath.Dir(destPath)

	info, err := os.Stat(destDir)
	if err == nil && info.IsDir() {
		return nil
	}

	perm := os.FileMode(0o755)
	if parentInfo, err := os.Stat(filepath.Dir(destDir)); err == nil {
		perm = parentInfo.Mode().Perm()
	}

	if err := os.MkdirAll(destDir, perm); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	return nil
}

func wrapLinkError(err error) error {
	if isCrossDeviceError(err) {
		return fmt.Errorf("%w: %w", ErrCrossDevice, err)
	}
	return fmt.Errorf("%w: %w", ErrHardlinkFailed, err)
}

// isCrossDeviceError checks if an error is a cross-device link error.
func isCrossDeviceError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.EXDEV) {
		return true
	}

	errStr := err.Error()
	if runtime.GOOS == "windows" {
		return strings.Contains(errStr, "not on the same disk")
	}
	return strings.Contains(errStr, "cross-device")
}
