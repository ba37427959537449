package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/butinmaker/butinmaker/internal/bbcode"
	"github.com/butinmaker/butinmaker/internal/mediainfo"
	"github.com/butinmaker/butinmaker/internal/metadata"
	"github.com/butinmaker/butinmaker/internal/naming"
	"github.com/butinmaker/butinmaker/internal/organizer"
	"github.com/butinmaker/butinmaker/internal/presentation"
	"github.com/butinmaker/butinmaker/internal/taxonomy"
	"github.com/butinmaker/butinmaker/internal/tracker"
)

var (
	ErrMediaNotFound  = errors.New("media path does not exist")
	ErrNoMedia        = errors.New("no media selected")
	ErrNoReleaseName  = errors.New("no release name")
	ErrNoTorrent      = errors.New("no torrent file selected")
	ErrNoVideoInDir   = errors.New("directory holds no video file")
	ErrUploadDisabled = errors.New("tracker API key is not configured")
)

// untitled is sent when an upload happens before any name was built.
const untitled = "Untitled"

// MediaAnalyzer inspects media files.
type MediaAnalyzer interface {
	Analyze(ctx context.Context, path string) (*mediainfo.MediaInfo, error)
	GenerateNFO(ctx context.Context, path, releaseName, outDir string) (*mediainfo.NFO, error)
}

// TitleLookup fetches TMDB details.
type TitleLookup interface {
	Get(ctx context.Context, kind string, id int) (*metadata.TitleMetadata, error)
}

// Namer builds release names.
type Namer interface {
	Build(title, year string, media *mediainfo.MediaInfo, opts naming.Options) (string, error)
}

// TagSource provides the resolved tag groups and upload category.
type TagSource interface {
	Groups(ctx context.Context, contentType taxonomy.ContentType) []taxonomy.TagGroup
	CategoryID(ctx context.Context, contentType taxonomy.ContentType) (string, error)
}

// Presenter renders BBCode presentations.
type Presenter interface {
	Generate(d presentation.Data) string
}

// Linker creates hardlinks.
type Linker interface {
	Link(source, dest string) (*organizer.Result, error)
}

// Uploader sends releases to the tracker.
type Uploader interface {
	IsConfigured() bool
	Upload(ctx context.Context, r tracker.UploadRequest) (*tracker.UploadResult, error)
}

// Deps are the collaborators a Service drives.
type Deps struct {
	Media     MediaAnalyzer
	Titles    TitleLookup
	Namer     Namer
	Tags      TagSource
	Presenter Presenter
	Linker    Linker
	Uploader  Uploader
}

// Paths are read on every call so settings changes apply immediately.
type Paths struct {
	HardlinkDir func() string
	OutputDir   func() string
}

// Service runs the release workflow on stored sessions.
type Service struct {
	store  *Store
	deps   Deps
	paths  Paths
	logger zerolog.Logger
}

// NewService creates a workflow service.
func NewService(store *Store, deps Deps, paths Paths, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		deps:   deps,
		paths:  paths,
		logger: logger.With().Str("component", "workflow").Logger(),
	}
}

// Create starts a session.
func (s *Service) Create() State {
	sess := s.store.Create()
	s.logger.Debug().Str("session", sess.ID()).Msg("Session created")
	return sess.Snapshot()
}

// Get returns a session snapshot.
func (s *Service) Get(id string) (State, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return State{}, err
	}
	return sess.Snapshot(), nil
}

// Delete drops a session.
func (s *Service) Delete(id string) error {
	return s.store.Delete(id)
}

// Reset clears a session for a new release.
func (s *Service) Reset(id string) (State, error) {
	return s.update(id, func(sess *Session) error {
		sess.Reset()
		return nil
	})
}

// update runs fn on the session and returns the resulting snapshot.
func (s *Service) update(id string, fn func(*Session) error) (State, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return State{}, err
	}
	if err := fn(sess); err != nil {
		return sess.Snapshot(), err
	}
	return sess.Snapshot(), nil
}

// SetMedia selects the release source. For a directory the largest video
// file inside it is analyzed and the sizes of all files are summed. An
// analysis failure is logged and leaves the media info empty; naming then
// works from the file name alone.
func (s *Service) SetMedia(ctx context.Context, id, path string) (State, error) {
	return s.update(id, func(sess *Session) error {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrMediaNotFound, path)
		}

		target, size := path, info.Size()
		if info.IsDir() {
			target, size, err = largestVideo(path)
			if err != nil {
				return err
			}
		}

		media, err := s.deps.Media.Analyze(ctx, target)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", target).Msg("Media analysis failed")
			media = nil
		}

		sess.SetMedia(path, info.IsDir(), size, media)
		sess.ApplyEpisodeHints(naming.DetectEpisode(filepath.Base(path)))

		s.regenerate(sess)
		s.ensurePresentation(sess)
		s.ensureTags(ctx, sess)
		return nil
	})
}

// largestVideo returns the biggest video file below dir and the total size
// of every regular file.
func largestVideo(dir string) (string, int64, error) {
	var (
		best     string
		bestSize int64
		total    int64
	)
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil || !fi.Mode().IsRegular() {
			return nil
		}
		total += fi.Size()
		if naming.IsVideoFile(d.Name()) && fi.Size() > bestSize {
			best, bestSize = p, fi.Size()
		}
		return nil
	})
	if err != nil {
		return "", 0, err
	}
	if best == "" {
		return "", 0, fmt.Errorf("%w: %s", ErrNoVideoInDir, dir)
	}
	return best, total, nil
}

// SetTitle selects a TMDB title.
func (s *Service) SetTitle(ctx context.Context, id, kind string, tmdbID int) (State, error) {
	return s.update(id, func(sess *Session) error {
		title, err := s.deps.Titles.Get(ctx, kind, tmdbID)
		if err != nil {
			return err
		}
		sess.SetTitle(title)
		s.regenerate(sess)
		s.ensurePresentation(sess)
		s.ensureTags(ctx, sess)
		return nil
	})
}

// SetOptions replaces the naming options and rebuilds the name.
func (s *Service) SetOptions(id string, opts naming.Options) (State, error) {
	return s.update(id, func(sess *Session) error {
		sess.SetOptions(opts)
		s.regenerate(sess)
		return nil
	})
}

// SetContentType switches between movie and series and rebuilds the name.
func (s *Service) SetContentType(id string, ct taxonomy.ContentType) (State, error) {
	return s.update(id, func(sess *Session) error {
		sess.SetContentType(ct)
		s.regenerate(sess)
		return nil
	})
}

// SetReleaseName stores a manual name. Only the hardlink path is derived
// from it.
func (s *Service) SetReleaseName(id, name string) (State, error) {
	return s.update(id, func(sess *Session) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return ErrNoReleaseName
		}
		in, _ := sess.namingInput()
		sess.SetReleaseName(name, naming.HardlinkPath(s.paths.HardlinkDir(), name, in.sourceName, in.sourceIsDir))
		return nil
	})
}

// regenerate rebuilds the release name and hardlink path. A failure keeps
// the previous name and moves the naming action to error.
func (s *Service) regenerate(sess *Session) {
	in, ok := sess.namingInput()
	if !ok {
		return
	}

	t := sess.Begin(ActionNaming)
	name, err := s.deps.Namer.Build(in.title, in.year, in.media, in.options)
	if err != nil {
		s.logger.Warn().Err(err).Str("session", sess.ID()).Msg("Release name generation failed")
		sess.Fail(t, err.Error())
		return
	}

	path := naming.HardlinkPath(s.paths.HardlinkDir(), name, in.sourceName, in.sourceIsDir)
	if !sess.CompleteNaming(t, name, path) {
		s.logger.Debug().Str("session", sess.ID()).Msg("Discarded stale release name")
	}
}

// AutoSelectTags runs tag inference once per session. SetMedia and SetTitle
// trigger it on their own once both are known.
func (s *Service) AutoSelectTags(ctx context.Context, id string) (State, error) {
	return s.update(id, func(sess *Session) error {
		s.autoSelectTags(ctx, sess)
		return nil
	})
}

func (s *Service) autoSelectTags(ctx context.Context, sess *Session) {
	groups := s.deps.Tags.Groups(ctx, sess.ContentType())
	if sess.AutoSelectTags(groups) {
		s.logger.Debug().Str("session", sess.ID()).Msg("Tags auto-selected")
	}
}

// ensureTags infers tags once media and title are both known.
func (s *Service) ensureTags(ctx context.Context, sess *Session) {
	if !sess.hasMediaAndTitle() {
		return
	}
	s.autoSelectTags(ctx, sess)
}

// ToggleTag flips one tag.
func (s *Service) ToggleTag(id, tagID string) (State, error) {
	return s.update(id, func(sess *Session) error {
		sess.ToggleTag(tagID)
		return nil
	})
}

// SetTags replaces the tag selection.
func (s *Service) SetTags(id string, tagIDs []string) (State, error) {
	return s.update(id, func(sess *Session) error {
		sess.SetTags(tagIDs)
		return nil
	})
}

// SetDescription stores an edited presentation.
func (s *Service) SetDescription(id, description string) (State, error) {
	return s.update(id, func(sess *Session) error {
		sess.SetDescription(description)
		return nil
	})
}

// Preview returns the sanitized HTML of the session's presentation.
func (s *Service) Preview(id string) (string, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return "", err
	}
	_, _, _, description := sess.presentationInput()
	return bbcode.Preview(description), nil
}

// GeneratePresentation rebuilds the presentation from the current title
// and media, replacing any edit.
func (s *Service) GeneratePresentation(id string) (State, error) {
	return s.update(id, func(sess *Session) error {
		s.generatePresentation(sess)
		return nil
	})
}

func (s *Service) generatePresentation(sess *Session) {
	title, media, size, _ := sess.presentationInput()
	t := sess.Begin(ActionPresentation)
	sess.CompletePresentation(t, s.deps.Presenter.Generate(presentation.BuildData(title, media, size)))
}

// ensurePresentation fills an empty presentation once a title is known.
func (s *Service) ensurePresentation(sess *Session) {
	title, _, _, description := sess.presentationInput()
	if title == nil || description != "" {
		return
	}
	s.generatePresentation(sess)
}

// GenerateNFO writes the NFO of the session's media to the output
// directory.
func (s *Service) GenerateNFO(ctx context.Context, id string) (State, error) {
	return s.update(id, func(sess *Session) error {
		mediaFile, releaseName := sess.nfoInput()
		if mediaFile == "" {
			return ErrNoMedia
		}

		t := sess.Begin(ActionNFO)
		nfo, err := s.deps.Media.GenerateNFO(ctx, mediaFile, releaseName, s.paths.OutputDir())
		if err != nil {
			sess.Fail(t, err.Error())
			return err
		}
		sess.CompleteNFO(t, nfo.Path)
		return nil
	})
}

// CreateHardlink links the media under its release name.
func (s *Service) CreateHardlink(id string) (State, error) {
	return s.update(id, func(sess *Session) error {
		source, dest := sess.linkInput()
		switch {
		case source == "":
			return ErrNoMedia
		case dest == "":
			return ErrNoReleaseName
		}

		t := sess.Begin(ActionHardlink)
		res, err := s.deps.Linker.Link(source, dest)
		if err != nil {
			sess.Fail(t, err.Error())
			return err
		}
		sess.Complete(t, res.Message())
		return nil
	})
}

// SetTorrentPath selects the .torrent file to upload.
func (s *Service) SetTorrentPath(id, path string) (State, error) {
	return s.update(id, func(sess *Session) error {
		sess.SetTorrentPath(strings.TrimSpace(path))
		return nil
	})
}

// Upload sends the release to the tracker. Failures are recorded on the
// upload action with a user-facing message rather than returned.
func (s *Service) Upload(ctx context.Context, id string) (State, error) {
	return s.update(id, func(sess *Session) error {
		in := sess.uploadInput()
		t := sess.Begin(ActionUpload)

		result, err := s.upload(ctx, in)
		if err != nil {
			s.logger.Warn().Err(err).Str("session", sess.ID()).Msg("Upload failed")
			sess.Fail(t, UploadMessage(err, in.contentType))
			return nil
		}
		sess.CompleteUpload(t, result)
		return nil
	})
}

func (s *Service) upload(ctx context.Context, in uploadInput) (*tracker.UploadResult, error) {
	if !s.deps.Uploader.IsConfigured() {
		return nil, ErrUploadDisabled
	}
	if in.torrentPath == "" {
		return nil, ErrNoTorrent
	}

	categoryID, err := s.deps.Tags.CategoryID(ctx, in.contentType)
	if err != nil {
		return nil, err
	}

	req := tracker.UploadRequest{
		Title:       in.releaseName,
		CategoryID:  categoryID,
		TorrentPath: in.torrentPath,
		TagIDs:      in.tags,
		Description: in.description,
		NFOPath:     in.nfoPath,
	}
	if req.Title == "" {
		req.Title = untitled
	}
	if in.title != nil {
		req.TMDBID = strconv.Itoa(in.title.ID)
		req.CoverURL = in.title.PosterURL
		req.TMDBType = "MOVIE"
		if in.contentType == taxonomy.ContentTV {
			req.TMDBType = "TV"
		}
	}

	return s.deps.Uploader.Upload(ctx, req)
}

// RetryUpload returns a failed upload to idle.
func (s *Service) RetryUpload(id string) (State, error) {
	return s.update(id, func(sess *Session) error {
		return sess.RetryUpload()
	})
}

// PruneIdle drops sessions idle for longer than maxIdle.
func (s *Service) PruneIdle(maxIdle time.Duration) int {
	n := s.store.Prune(maxIdle)
	if n > 0 {
		s.logger.Info().Int("count", n).Msg("Pruned idle sessions")
	}
	return n
}
