package mediainfo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrFileNotFound     = errors.New("media file not found")
	ErrNoProbeTool      = errors.New("no media probe tool available (mediainfo or ffprobe)")
	ErrMediaInfoMissing = errors.New("mediainfo CLI is required for text reports")
)

// Config holds MediaInfo service configuration.
type Config struct {
	MediaInfoPath string        // Path to mediainfo binary (empty = search PATH)
	FFprobePath   string        // Path to ffprobe binary (empty = search PATH)
	CacheEnabled  bool          // Enable caching of probe results
	CacheTTL      time.Duration // How long to keep cached results
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		CacheEnabled: true,
		CacheTTL:     time.Hour,
	}
}

// NFO is a generated .nfo file.
type NFO struct {
	Path    string `json:"file_path"`
	Content string `json:"content"`
}

type cacheEntry struct {
	info      *MediaInfo
	timestamp time.Time
	size      int64
	modTime   time.Time
}

// Service extracts media information from files.
type Service struct {
	config Config
	logger zerolog.Logger
	run    runFunc
	cache  map[string]*cacheEntry
	mu     sync.RWMutex

	mediainfoBin string
	ffprobeBin   string
}

// NewService creates a new MediaInfo service, locating the probe binaries.
func NewService(config Config, logger zerolog.Logger) *Service {
	s := &Service{
		config: config,
		logger: logger.With().Str("component", "mediainfo").Logger(),
		run:    runCommand,
		cache:  make(map[string]*cacheEntry),
	}

	s.mediainfoBin = findExecutable("mediainfo", config.MediaInfoPath)
	s.ffprobeBin = findExecutable("ffprobe", config.FFprobePath)
	switch {
	case s.mediainfoBin != "":
		s.logger.Info().Str("path", s.mediainfoBin).Msg("Using mediainfo CLI")
	case s.ffprobeBin != "":
		s.logger.Info().Str("path", s.ffprobeBin).Msg("Using ffprobe CLI")
	default:
		s.logger.Warn().Msg("No media probe tool found (mediainfo or ffprobe)")
	}

	return s
}

// IsAvailable returns true if a probe tool is available.
func (s *Service) IsAvailable() bool {
	return s.mediainfoBin != "" || s.ffprobeBin != ""
}

// Analyze returns the tracks of the file at path.
func (s *Service) Analyze(ctx context.Context, path string) (*MediaInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	if s.config.CacheEnabled {
		if info := s.getCached(path, stat); info != nil {
			s.logger.Debug().Str("path", path).Msg("Cache hit")
			return info, nil
		}
	}

	var info *MediaInfo
	switch {
	case s.mediainfoBin != "":
		out, err := s.run(ctx, s.mediainfoBin, "--Output=JSON", path)
		if err != nil {
			return nil, err
		}
		info, err = parseMediaInfoJSON(out)
		if err != nil {
			return nil, err
		}
	case s.ffprobeBin != "":
		out, err := s.run(ctx, s.ffprobeBin,
			"-v", "quiet",
			"-print_format", "json",
			"-show_format",
			"-show_streams",
			path,
		)
		if err != nil {
			return nil, err
		}
		info, err = parseFFprobeJSON(out)
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrNoProbeTool
	}

	info.FilePath = path
	info.FileName = filepath.Base(path)
	info.FileSize = stat.Size()

	s.logger.Debug().
		Str("path", path).
		Int("video", len(info.VideoTracks)).
		Int("audio", len(info.AudioTracks)).
		Int("subtitles", len(info.SubtitleTracks)).
		Msg("Probed media file")

	if s.config.CacheEnabled {
		s.setCache(path, info, stat)
	}
	return info, nil
}

// Raw returns the full mediainfo text report.
func (s *Service) Raw(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if s.mediainfoBin == "" {
		return "", ErrMediaInfoMissing
	}
	out, err := s.run(ctx, s.mediainfoBin, "-f", path)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// GenerateNFO writes the mediainfo summary of path to outDir. When
// releaseName is set the NFO is named after it and the file's full path in
// the report is replaced with the release file name.
func (s *Service) GenerateNFO(ctx context.Context, path, releaseName, outDir string) (*NFO, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if s.mediainfoBin == "" {
		return nil, ErrMediaInfoMissing
	}

	out, err := s.run(ctx, s.mediainfoBin, path)
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(path)
	displayName := filepath.Base(path)
	nfoName := strings.TrimSuffix(displayName, ext) + ".nfo"
	if releaseName != "" {
		displayName = releaseName + ext
		nfoName = releaseName + ".nfo"
	}

	content := strings.ReplaceAll(string(out), path, displayName)
	content = strings.ReplaceAll(content, strings.ReplaceAll(path, "/", `\`), displayName)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	nfoPath := filepath.Join(outDir, nfoName)
	if err := os.WriteFile(nfoPath, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write nfo: %w", err)
	}

	s.logger.Info().Str("path", nfoPath).Msg("Generated NFO")
	return &NFO{Path: nfoPath, Content: content}, nil
}

func (s *Service) getCached(path string, stat os.FileInfo) *MediaInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cache[path]
	if !ok {
		return nil
	}
	if time.Since(entry.timestamp) > s.config.CacheTTL {
		return nil
	}
	if stat.Size() != entry.size || !stat.ModTime().Equal(entry.modTime) {
		return nil
	}
	return entry.info
}

func (s *Service) setCache(path string, info *MediaInfo, stat os.FileInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[path] = &cacheEntry{
		info:      info,
		timestamp: time.Now(),
		size:      stat.Size(),
		modTime:   stat.ModTime(),
	}
}

// ClearCache clears all cached entries.
func (s *Service) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cacheEntry)
}
