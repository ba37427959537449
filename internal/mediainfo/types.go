// Package mediainfo inspects media files through the mediainfo or ffprobe
// CLIs and reports their tracks.
package mediainfo

import (
	"path/filepath"
	"strings"
)

// MediaInfo is the technical description of a media file. JSON keys follow
// the snake_case contract the wizard UI consumes. Zero values mean absent.
type MediaInfo struct {
	FilePath       string          `json:"file_path"`
	FileName       string          `json:"file_name"`
	FileSize       int64           `json:"file_size"`
	Container      string          `json:"container,omitempty"`
	Duration       float64         `json:"duration,omitempty"` // seconds
	VideoTracks    []VideoTrack    `json:"video_tracks"`
	AudioTracks    []AudioTrack    `json:"audio_tracks"`
	SubtitleTracks []SubtitleTrack `json:"subtitle_tracks"`
}

// VideoTrack describes one video stream.
type VideoTrack struct {
	Codec                   string  `json:"codec"`
	Width                   int     `json:"width,omitempty"`
	Height                  int     `json:"height,omitempty"`
	Bitrate                 int64   `json:"bitrate,omitempty"`
	Framerate               float64 `json:"framerate,omitempty"`
	BitDepth                int     `json:"bit_depth,omitempty"`
	HDR                     string  `json:"hdr,omitempty"`
	ColorPrimaries          string  `json:"color_primaries,omitempty"`
	TransferCharacteristics string  `json:"transfer_characteristics,omitempty"`
}

// AudioTrack describes one audio stream.
type AudioTrack struct {
	Codec    string `json:"codec"`
	Channels int    `json:"channels,omitempty"`
	Bitrate  int64  `json:"bitrate,omitempty"`
	Language string `json:"language,omitempty"`
	Title    string `json:"title,omitempty"`
}

// SubtitleTrack describes one subtitle stream.
type SubtitleTrack struct {
	Codec    string `json:"codec"`
	Language string `json:"language,omitempty"`
	Title    string `json:"title,omitempty"`
	Forced   bool   `json:"forced"`
}

// FirstVideo returns the first video track, if any. Safe on a nil receiver.
func (m *MediaInfo) FirstVideo() (VideoTrack, bool) {
	if m == nil || len(m.VideoTracks) == 0 {
		return VideoTrack{}, false
	}
	return m.VideoTracks[0], true
}

// FirstAudio returns the first audio track, if any. Safe on a nil receiver.
func (m *MediaInfo) FirstAudio() (AudioTrack, bool) {
	if m == nil || len(m.AudioTracks) == 0 {
		return AudioTrack{}, false
	}
	return m.AudioTracks[0], true
}

// Extension returns the lower-case extension of the file name without the
// leading dot.
func (m *MediaInfo) Extension() string {
	if m == nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(m.FileName)), ".")
}

// FormatChannels formats a channel count as a speaker layout.
func FormatChannels(channels int) string {
	switch {
	case channels >= 8:
		return "7.1"
	case channels >= 6:
		return "5.1"
	case channels >= 2:
		return "2.0"
	case channels == 1:
		return "1.0"
	default:
		return ""
	}
}

// audioCodecName picks a display name for an audio stream from mediainfo's
// raw format fields. mediainfo reports TrueHD as "MLP FA" and DTS-HD as
// "DTS XLL"; the commercial name disambiguates.
func audioCodecName(format, profile, commercial string) string {
	lower := normalizeString(format + " " + profile + " " + commercial)
	switch {
	case containsAny(lower, "mlp fa", "truehd"):
		if containsAny(lower, "atmos") {
			return "TrueHD Atmos"
		}
		return "TrueHD"
	case containsAny(lower, "dts xll", "dts-hd master", "dts-hd ma", "ma / core"):
		return "DTS-HD MA"
	case containsAny(lower, "dts xbr", "dts-hd high"):
		return "DTS-HD HR"
	}
	return format
}

// normalizeString lowercases and trims a string.
func normalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// containsAny checks if s contains any of the substrings.
func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
