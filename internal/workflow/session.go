// Package workflow holds the state of a release being prepared and drives
// the collaborators that fill it in.
package workflow

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/butinmaker/butinmaker/internal/mediainfo"
	"github.com/butinmaker/butinmaker/internal/metadata"
	"github.com/butinmaker/butinmaker/internal/naming"
	"github.com/butinmaker/butinmaker/internal/tagging"
	"github.com/butinmaker/butinmaker/internal/taxonomy"
	"github.com/butinmaker/butinmaker/internal/tracker"
)

// ErrNotRetryable is returned when retrying an upload that has not failed.
var ErrNotRetryable = errors.New("upload is not in an error state")

// Session is the state of one release. Fields change only through its
// methods, which are safe for concurrent use.
type Session struct {
	mu sync.RWMutex

	id        string
	createdAt time.Time
	updatedAt time.Time
	now       func() time.Time

	contentType taxonomy.ContentType
	mediaPath   string
	mediaIsDir  bool
	mediaSize   int64
	media       *mediainfo.MediaInfo
	title       *metadata.TitleMetadata
	options     naming.Options

	releaseName  string
	hardlinkPath string

	tags             tagging.Selection
	tagsAutoSelected bool

	description string
	nfoPath     string
	torrentPath string
	upload      *tracker.UploadResult

	requests lifecycle
}

// State is a point-in-time copy of a session.
type State struct {
	ID               string                  `json:"id"`
	ContentType      taxonomy.ContentType    `json:"content_type"`
	MediaPath        string                  `json:"media_path,omitempty"`
	MediaIsDir       bool                    `json:"media_is_dir"`
	MediaSize        int64                   `json:"media_size,omitempty"`
	Media            *mediainfo.MediaInfo    `json:"media_info"`
	Title            *metadata.TitleMetadata `json:"title"`
	Options          naming.Options          `json:"options"`
	ReleaseName      string                  `json:"release_name"`
	HardlinkPath     string                  `json:"hardlink_path"`
	SelectedTags     []string                `json:"selected_tags"`
	TagsAutoSelected bool                    `json:"tags_auto_selected"`
	Description      string                  `json:"description"`
	NFOPath          string                  `json:"nfo_path,omitempty"`
	TorrentPath      string                  `json:"torrent_path,omitempty"`
	Upload           *tracker.UploadResult   `json:"upload,omitempty"`
	Requests         map[Action]RequestState `json:"requests"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

func newSession(id string, now func() time.Time) *Session {
	t := now()
	return &Session{
		id:          id,
		createdAt:   t,
		updatedAt:   t,
		now:         now,
		contentType: taxonomy.ContentMovie,
		options:     naming.Options{ContentType: taxonomy.ContentMovie},
		requests:    newLifecycle(),
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) touch() {
	s.updatedAt = s.now()
}

// ContentType returns the session's content type.
func (s *Session) ContentType() taxonomy.ContentType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contentType
}

// UpdatedAt returns the time of the last change.
func (s *Session) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return State{
		ID:               s.id,
		ContentType:      s.contentType,
		MediaPath:        s.mediaPath,
		MediaIsDir:       s.mediaIsDir,
		MediaSize:        s.mediaSize,
		Media:            s.media,
		Title:            s.title,
		Options:          s.options,
		ReleaseName:      s.releaseName,
		HardlinkPath:     s.hardlinkPath,
		SelectedTags:     s.tags.IDs(),
		TagsAutoSelected: s.tagsAutoSelected,
		Description:      s.description,
		NFOPath:          s.nfoPath,
		TorrentPath:      s.torrentPath,
		Upload:           s.upload,
		Requests:         s.requests.snapshot(),
		CreatedAt:        s.createdAt,
		UpdatedAt:        s.updatedAt,
	}
}

// SetContentType switches between movie and series.
func (s *Session) SetContentType(ct taxonomy.ContentType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contentType = ct
	s.options.ContentType = ct
	s.touch()
}

// SetMedia records the release source. info may be nil when the file
// could not be inspected.
func (s *Session) SetMedia(path string, isDir bool, size int64, info *mediainfo.MediaInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mediaPath = path
	s.mediaIsDir = isDir
	s.mediaSize = size
	s.media = info
	s.touch()
}

// ApplyEpisodeHints marks the session as a series and fills the season
// and episode options the user has not set yet.
func (s *Session) ApplyEpisodeHints(ep naming.EpisodeInfo) {
	if !ep.IsSeries {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.contentType = taxonomy.ContentTV
	s.options.ContentType = taxonomy.ContentTV
	if s.options.Season == nil && ep.Season != nil {
		season := *ep.Season
		s.options.Season = &season
	}
	if s.options.Episode == nil && ep.Episode != nil {
		episode := *ep.Episode
		s.options.Episode = &episode
	}
	if ep.IsCompleteSeason && s.options.Episode == nil {
		s.options.CompleteSeason = true
	}
	s.touch()
}

// SetTitle records the selected TMDB title. The content type follows it.
func (s *Session) SetTitle(t *metadata.TitleMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = t
	if t != nil {
		ct := taxonomy.ParseContentType(t.Type)
		s.contentType = ct
		s.options.ContentType = ct
	}
	s.touch()
}

// SetOptions replaces the naming options. The content type is owned by
// the session and overrides opts.ContentType.
func (s *Session) SetOptions(opts naming.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	opts.ContentType = s.contentType
	s.options = opts
	s.touch()
}

// SetReleaseName stores a manually edited name. It stays until the next
// naming trigger.
func (s *Session) SetReleaseName(name, hardlinkPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseName = name
	s.hardlinkPath = hardlinkPath
	s.touch()
}

// SetDescription stores the BBCode presentation.
func (s *Session) SetDescription(bbcode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.description = bbcode
	s.touch()
}

// SetTorrentPath records the .torrent file to upload.
func (s *Session) SetTorrentPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.torrentPath = path
	s.touch()
}

// ToggleTag selects or deselects a tag and reports whether it ends up
// selected.
func (s *Session) ToggleTag(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.tags.Toggle(id)
}

// SetTags replaces the selection.
func (s *Session) SetTags(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags.Replace(ids)
	s.touch()
}

// AutoSelectTags fills the selection from inference, at most once per
// session. It does nothing when it already ran, when the user has already
// selected tags, or when groups is empty (taxonomy not loaded yet). Once it
// runs, TagsAutoSelected stays true even if no tag matched. It reports
// whether inference ran.
func (s *Session) AutoSelectTags(groups []taxonomy.TagGroup) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tagsAutoSelected || s.tags.Len() > 0 || len(groups) == 0 {
		return false
	}

	ids := tagging.Infer(tagging.Input{
		ReleaseName: s.releaseName,
		Media:       s.media,
		Title:       s.title,
	}, groups)
	if len(ids) > 0 {
		s.tags.Replace(ids)
	}
	s.tagsAutoSelected = true
	s.touch()
	return true
}

// Begin issues a ticket for action and moves it to loading.
func (s *Session) Begin(a Action) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.requests.begin(a)
}

// Fail moves the ticket's action to error. Stale tickets are ignored.
func (s *Session) Fail(t Ticket, msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.requests.settle(t, StatusError, msg)
}

// Complete moves the ticket's action to success. Stale tickets are ignored.
func (s *Session) Complete(t Ticket, msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.requests.settle(t, StatusSuccess, msg)
}

// CompleteNaming stores a generated name unless t is stale.
func (s *Session) CompleteNaming(t Ticket, name, hardlinkPath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requests.settle(t, StatusSuccess, "") {
		return false
	}
	s.releaseName = name
	s.hardlinkPath = hardlinkPath
	s.touch()
	return true
}

// CompletePresentation stores a generated description unless t is stale.
func (s *Session) CompletePresentation(t Ticket, bbcode string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requests.settle(t, StatusSuccess, "") {
		return false
	}
	s.description = bbcode
	s.touch()
	return true
}

// CompleteNFO stores the generated NFO path unless t is stale.
func (s *Session) CompleteNFO(t Ticket, path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requests.settle(t, StatusSuccess, filepath.Base(path)) {
		return false
	}
	s.nfoPath = path
	s.touch()
	return true
}

// CompleteUpload stores the tracker's answer unless t is stale.
func (s *Session) CompleteUpload(t Ticket, result *tracker.UploadResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := ""
	if result != nil {
		msg = result.Link
	}
	if !s.requests.settle(t, StatusSuccess, msg) {
		return false
	}
	s.upload = result
	s.touch()
	return true
}

// Request returns the lifecycle of action.
func (s *Session) Request(a Action) RequestState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.requests.state(a)
}

// RetryUpload returns a failed upload to idle. Everything else the user
// entered is kept.
func (s *Session) RetryUpload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.requests.state(ActionUpload).Status != StatusError {
		return ErrNotRetryable
	}
	s.requests.reset(ActionUpload)
	s.touch()
	return nil
}

// Reset clears the session for a new release and re-arms tag
// auto-selection. Requests in flight are invalidated.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.contentType = taxonomy.ContentMovie
	s.mediaPath, s.mediaIsDir, s.mediaSize, s.media = "", false, 0, nil
	s.title = nil
	s.options = naming.Options{ContentType: taxonomy.ContentMovie}
	s.releaseName, s.hardlinkPath = "", ""
	s.tags.Replace(nil)
	s.tagsAutoSelected = false
	s.description, s.nfoPath, s.torrentPath = "", "", ""
	s.upload = nil
	for _, a := range actions {
		s.requests.reset(a)
	}
	s.touch()
}

// namingInput is what the release-name builder needs from a session.
type namingInput struct {
	title       string
	year        string
	media       *mediainfo.MediaInfo
	options     naming.Options
	sourceName  string
	sourceIsDir bool
}

func (s *Session) namingInput() (namingInput, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	in := namingInput{
		media:       s.media,
		options:     s.options,
		sourceIsDir: s.mediaIsDir,
	}
	if s.mediaPath != "" {
		in.sourceName = filepath.Base(s.mediaPath)
		if in.media == nil {
			in.media = &mediainfo.MediaInfo{FileName: in.sourceName}
		}
	}
	if s.title != nil {
		in.title = s.title.Title
		in.year = s.title.Year
	}
	return in, in.title != "" || in.sourceName != ""
}

// hasMediaAndTitle reports whether both a source and a TMDB title are set.
func (s *Session) hasMediaAndTitle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mediaPath != "" && s.title != nil
}

// presentationInput returns the values the presentation is built from.
func (s *Session) presentationInput() (*metadata.TitleMetadata, *mediainfo.MediaInfo, int64, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title, s.media, s.mediaSize, s.description
}

// uploadInput is what an upload needs from a session.
type uploadInput struct {
	contentType taxonomy.ContentType
	releaseName string
	torrentPath string
	tags        []string
	description string
	title       *metadata.TitleMetadata
	nfoPath     string
}

func (s *Session) uploadInput() uploadInput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uploadInput{
		contentType: s.contentType,
		releaseName: s.releaseName,
		torrentPath: s.torrentPath,
		tags:        s.tags.IDs(),
		description: s.description,
		title:       s.title,
		nfoPath:     s.nfoPath,
	}
}

// linkInput returns the hardlink source and destination.
func (s *Session) linkInput() (source, dest string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mediaPath, s.hardlinkPath
}

// nfoInput returns the file the NFO describes and the release name.
func (s *Session) nfoInput() (mediaFile, releaseName string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mediaFile = s.mediaPath
	if s.media != nil && s.media.FilePath != "" {
		mediaFile = s.media.FilePath
	}
	return mediaFile, s.releaseName
}
