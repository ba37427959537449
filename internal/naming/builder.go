// Package naming builds La Cale release names and the hardlink paths that
// carry them.
package naming

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/butinmaker/butinmaker/internal/mediainfo"
	"github.com/butinmaker/butinmaker/internal/taxonomy"
)

// DefaultGroup is used when no team can be found.
const DefaultGroup = "NOTAG"

var ErrEmptyTitle = errors.New("a title or a media file name is required")

// Options are the user-controlled parts of a release name. Empty strings
// and nil pointers mean "detect" or "omit".
type Options struct {
	Source         string               `json:"source,omitempty"`
	Edition        string               `json:"edition,omitempty"`
	Info           string               `json:"info,omitempty"`
	Language       string               `json:"language,omitempty"`
	Group          string               `json:"group,omitempty"`
	ContentType    taxonomy.ContentType `json:"content_type,omitempty"`
	Season         *int                 `json:"season,omitempty"`
	Episode        *int                 `json:"episode,omitempty"`
	CompleteSeason bool                 `json:"is_complete_season,omitempty"`
	CompleteSeries bool                 `json:"is_complete_series,omitempty"`
	FinalEpisode   bool                 `json:"is_final_episode,omitempty"`
	EpisodeOnly    bool                 `json:"episode_only,omitempty"`
}

// Builder assembles release names following the La Cale nomenclature:
//
//	Title.Year|SxxEyy[.Year].[INFO].[Edition].Language.[HDR].[Resolution].[Platform].Source.Codec-GROUP
type Builder struct {
	logger zerolog.Logger
}

// NewBuilder creates a release-name builder.
func NewBuilder(logger zerolog.Logger) *Builder {
	return &Builder{logger: logger.With().Str("component", "naming").Logger()}
}

// Build returns the release name for title. When title is empty it is
// recovered from the media file name. media may be nil, in which case only
// the title, year, options and group are used.
func (b *Builder) Build(title, year string, media *mediainfo.MediaInfo, opts Options) (string, error) {
	fileName := ""
	if media != nil {
		fileName = media.FileName
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = ExtractTitle(fileName)
	}
	clean := SanitizeTitle(title)
	if clean == "" {
		return "", ErrEmptyTitle
	}

	group := opts.Group
	if group == "" {
		group = DetectGroup(fileName)
	}
	if group == "" {
		group = DefaultGroup
	}

	parts := []string{clean}
	if opts.ContentType == taxonomy.ContentTV {
		if tag := FormatEpisodeTag(opts); tag != "" {
			parts = append(parts, tag)
		}
	}
	parts = appendNonEmpty(parts,
		strings.TrimSpace(year),
		strings.ToUpper(strings.TrimSpace(opts.Info)),
		strings.TrimSpace(opts.Edition),
	)

	language := strings.TrimSpace(opts.Language)
	if language == "" {
		language = DetectLanguage(media)
	}

	var hdr string
	if video, ok := media.FirstVideo(); ok {
		hdr = string(mediainfo.DetectHDR(video))
	}

	var resolution string
	if !IsSD(media) {
		resolution = DetectResolution(media)
	}

	// Platform and source are read after the title so that words of the
	// title itself ("Mad.Max", "The.Complete...") are not mistaken for tags.
	tail := fileName
	if t := ExtractTitle(fileName); t != "" && strings.HasPrefix(fileName, t) {
		tail = fileName[len(t):]
	}

	source := strings.TrimSpace(opts.Source)
	if source == "" {
		source = DetectSource(tail)
	}

	parts = appendNonEmpty(parts,
		language,
		hdr,
		resolution,
		DetectPlatform(tail),
		source,
		DetectVideoCodec(media),
	)

	name := strings.Join(parts, ".") + "-" + group

	b.logger.Debug().
		Str("title", title).
		Str("file", fileName).
		Str("release", name).
		Msg("Built release name")

	return name, nil
}

func appendNonEmpty(parts []string, values ...string) []string {
	for _, v := range values {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return parts
}
