// Package presentation fills the BBCode presentation posted with a
// release.
package presentation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/butinmaker/butinmaker/internal/mediainfo"
	"github.com/butinmaker/butinmaker/internal/metadata"
	"github.com/butinmaker/butinmaker/internal/quality"
)

// Data holds the values substituted into the template. Every field is
// display text.
type Data struct {
	PosterURL  string `json:"poster_url"`
	Title      string `json:"title"`
	Rating     string `json:"rating"`
	Genre      string `json:"genre"`
	Synopsis   string `json:"synopsis"`
	Quality    string `json:"quality"`
	Format     string `json:"format"`
	VideoCodec string `json:"video_codec"`
	AudioCodec string `json:"audio_codec"`
	Languages  string `json:"languages"`
	Subtitles  string `json:"subtitles"`
	Size       string `json:"size"`
}

const gib = 1024 * 1024 * 1024

// BuildData collects presentation values from the selected title and the
// media file. Either may be nil. fileSize overrides the media file size
// when positive.
func BuildData(title *metadata.TitleMetadata, media *mediainfo.MediaInfo, fileSize int64) Data {
	var d Data

	if title != nil {
		d.Title = title.Title
		d.PosterURL = title.PosterURL
		d.Rating = strconv.FormatFloat(title.VoteAverage, 'f', -1, 64)
		d.Genre = title.Genres
		d.Synopsis = title.Overview
	}

	if media != nil {
		width := 0
		if video, ok := media.FirstVideo(); ok {
			width = video.Width
			d.VideoCodec = video.Codec
		}
		d.Quality = quality.Classify(width)
		d.Format = media.Container
		if audio, ok := media.FirstAudio(); ok {
			d.AudioCodec = audio.Codec
		}

		var langs []string
		for _, a := range media.AudioTracks {
			if a.Language != "" {
				langs = append(langs, a.Language)
			}
		}
		d.Languages = strings.Join(langs, ", ")

		var subs []string
		for _, s := range media.SubtitleTracks {
			if s.Language != "" {
				subs = append(subs, s.Language)
			}
		}
		d.Subtitles = strings.Join(subs, ", ")

		if fileSize <= 0 {
			fileSize = media.FileSize
		}
	}

	if fileSize > 0 {
		d.Size = fmt.Sprintf("%.2f GB", float64(fileSize)/gib)
	}
	return d
}

// withDefaults fills the placeholders that must never render empty.
func (d Data) withDefaults() Data {
	if d.Title == "" {
		d.Title = "Titre"
	}
	if d.Rating == "" {
		d.Rating = "N/A"
	}
	if d.Subtitles == "" {
		d.Subtitles = "Aucun"
	}
	return d
}
