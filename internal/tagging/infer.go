// Package tagging infers tracker tags for a release from its name, media
// tracks and TMDB metadata.
package tagging

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/butinmaker/butinmaker/internal/mediainfo"
	"github.com/butinmaker/butinmaker/internal/metadata"
	"github.com/butinmaker/butinmaker/internal/taxonomy"
)

// Input is what inference looks at. Media and Title may be nil.
type Input struct {
	ReleaseName string
	Media       *mediainfo.MediaInfo
	Title       *metadata.TitleMetadata
}

// rule maps a match condition to the tag names it proposes.
type rule struct {
	match func(s string) bool
	names []string
}

func anyOf(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

// Matched against the upper-cased release name.
var sourceRules = []rule{
	{anyOf("WEB-DL", "WEBDL"), []string{"WEB-DL"}},
	{anyOf("WEBRIP"), []string{"WEBRip"}},
	{anyOf("BLURAY", "BLU-RAY"), []string{"BluRay"}},
	{anyOf("DVDRIP"), []string{"DVDRip"}},
	{anyOf("HDTV"), []string{"HDTV"}},
	{anyOf("REMUX"), []string{"REMUX"}},
}

// Matched against the lower-cased first video codec.
var videoCodecRules = []rule{
	{anyOf("hevc", "h265", "x265"), []string{"HEVC/H265/x265", "x265", "HEVC"}},
	{anyOf("avc", "h264", "x264"), []string{"AVC/H264/x264", "x264", "H264"}},
	{anyOf("av1"), []string{"AV1"}},
}

// Matched against the lower-cased first audio codec. dts-hd must precede
// dts and e-ac-3 must precede ac-3.
var audioCodecRules = []rule{
	{anyOf("truehd"), []string{"TrueHD Atmos", "TrueHD"}},
	{anyOf("dts-hd"), []string{"DTS-HD MA"}},
	{anyOf("dts"), []string{"DTS"}},
	{anyOf("e-ac-3", "eac3"), []string{"E-AC3 Atmos", "E-AC3"}},
	{anyOf("ac3", "ac-3"), []string{"AC3"}},
	{anyOf("aac"), []string{"AAC"}},
}

var resolutionRules = []struct {
	minWidth int
	names    []string
}{
	{3840, []string{"2160p (4K UHD)", "2160p (4K)", "2160p", "4K"}},
	{1920, []string{"1080p (Full HD)", "1080p"}},
	{1280, []string{"720p (HD)", "720p"}},
}

var extensionTags = map[string]string{
	".mkv": "MKV",
	".mp4": "MP4",
}

// Infer proposes tag ids for in, resolved against groups. Rules run in a
// fixed order: source, genres, video codec, audio codec, resolution,
// extension, audio languages. The result has no duplicates and keeps the
// order in which ids were found. Rules whose input is missing are skipped.
func Infer(in Input, groups []taxonomy.TagGroup) []string {
	sel := &Selection{}
	add := func(names ...string) {
		for _, name := range names {
			if id, ok := taxonomy.FindTagID(groups, name); ok {
				sel.Add(id)
			}
		}
	}

	if r, ok := firstMatch(sourceRules, strings.ToUpper(in.ReleaseName)); ok {
		add(r.names...)
	}

	if in.Title != nil && in.Title.Genres != "" {
		for _, genre := range strings.Split(in.Title.Genres, ",") {
			genre = strings.TrimSpace(genre)
			if genre == "" {
				continue
			}
			add(genre, capitalize(genre))
		}
	}

	if in.Media != nil {
		if video, ok := in.Media.FirstVideo(); ok {
			if r, ok := firstMatch(videoCodecRules, strings.ToLower(video.Codec)); ok {
				add(r.names...)
			}
		}
		if audio, ok := in.Media.FirstAudio(); ok {
			if r, ok := firstMatch(audioCodecRules, strings.ToLower(audio.Codec)); ok {
				add(r.names...)
			}
		}
		if video, ok := in.Media.FirstVideo(); ok {
			for _, r := range resolutionRules {
				if video.Width >= r.minWidth {
					add(r.names...)
					break
				}
			}
		}
	}

	fileName := in.ReleaseName
	if in.Media != nil {
		fileName = in.Media.FileName
	}
	if tag, ok := extensionTags[strings.ToLower(filepath.Ext(fileName))]; ok {
		add(tag)
	}

	if in.Media != nil {
		tracks := in.Media.AudioTracks
		if len(tracks) > 1 {
			add("MULTI")
		}
		if anyLanguage(tracks, "fr") {
			add("French")
		}
		if anyLanguage(tracks, "en") {
			add("English")
		}
	}

	return sel.IDs()
}

func firstMatch(rules []rule, s string) (rule, bool) {
	if s == "" {
		return rule{}, false
	}
	for _, r := range rules {
		if r.match(s) {
			return r, true
		}
	}
	return rule{}, false
}

func anyLanguage(tracks []mediainfo.AudioTrack, sub string) bool {
	for _, t := range tracks {
		if strings.Contains(strings.ToLower(t.Language), sub) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
