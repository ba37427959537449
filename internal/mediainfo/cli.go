package mediainfo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const probeTimeout = 30 * time.Second

// runFunc executes a binary and returns its stdout.
type runFunc func(ctx context.Context, binary string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, binary string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w: %s", binary, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// findExecutable finds an executable by name or explicit path.
func findExecutable(name, explicitPath string) string {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err == nil {
			return explicitPath
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path
	}

	var commonPaths []string
	switch runtime.GOOS {
	case "darwin":
		commonPaths = []string{"/usr/local/bin/" + name, "/opt/homebrew/bin/" + name}
	case "linux":
		commonPaths = []string{"/usr/bin/" + name, "/usr/local/bin/" + name}
	case "windows":
		commonPaths = []string{
			`C:\Program Files\MediaInfo\` + name + ".exe",
			`C:\Program Files (x86)\MediaInfo\` + name + ".exe",
		}
	}

	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

type mediaInfoOutput struct {
	Media struct {
		Track []mediaInfoTrack `json:"track"`
	} `json:"media"`
}

type mediaInfoTrack struct {
	Type                    string `json:"@type"`
	Format                  string `json:"Format"`
	FormatProfile           string `json:"Format_Profile"`
	FormatCommercial        string `json:"Format_Commercial_IfAny"`
	Width                   string `json:"Width"`
	Height                  string `json:"Height"`
	BitRate                 string `json:"BitRate"`
	FrameRate               string `json:"FrameRate"`
	BitDepth                string `json:"BitDepth"`
	ColorPrimaries          string `json:"colour_primaries"`
	TransferCharacteristics string `json:"transfer_characteristics"`
	HDRFormat               string `json:"HDR_Format"`
	HDRFormatCompatibility  string `json:"HDR_Format_Compatibility"`
	Channels                string `json:"Channels"`
	Language                string `json:"Language"`
	Title                   string `json:"Title"`
	Forced                  string `json:"Forced"`
	Duration                string `json:"Duration"`
	FileSize                string `json:"FileSize"`
}

// parseMediaInfoJSON converts `mediainfo --Output=JSON` into MediaInfo.
func parseMediaInfoJSON(data []byte) (*MediaInfo, error) {
	var output mediaInfoOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("failed to parse mediainfo output: %w", err)
	}

	info := &MediaInfo{}
	for _, track := range output.Media.Track {
		switch track.Type {
		case "General":
			info.Container = track.Format
			info.FileSize = parseInt64(track.FileSize)
			info.Duration = parseFloat(track.Duration)

		case "Video":
			hdr := strings.TrimSpace(track.HDRFormat)
			if track.HDRFormatCompatibility != "" {
				hdr = strings.TrimSpace(hdr + ", " + track.HDRFormatCompatibility)
			}
			info.VideoTracks = append(info.VideoTracks, VideoTrack{
				Codec:                   track.Format,
				Width:                   parseInt(track.Width),
				Height:                  parseInt(track.Height),
				Bitrate:                 parseInt64(track.BitRate),
				Framerate:               parseFloat(track.FrameRate),
				BitDepth:                parseInt(track.BitDepth),
				HDR:                     hdr,
				ColorPrimaries:          track.ColorPrimaries,
				TransferCharacteristics: track.TransferCharacteristics,
			})

		case "Audio":
			info.AudioTracks = append(info.AudioTracks, AudioTrack{
				Codec:    audioCodecName(track.Format, track.FormatProfile, track.FormatCommercial),
				Channels: parseInt(track.Channels),
				Bitrate:  parseInt64(track.BitRate),
				Language: track.Language,
				Title:    track.Title,
			})

		case "Text":
			info.SubtitleTracks = append(info.SubtitleTracks, SubtitleTrack{
				Codec:    track.Format,
				Language: track.Language,
				Title:    track.Title,
				Forced:   strings.EqualFold(track.Forced, "yes"),
			})
		}
	}

	return info, nil
}

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

type ffprobeStream struct {
	CodecType      string            `json:"codec_type"`
	CodecName      string            `json:"codec_name"`
	Profile        string            `json:"profile"`
	Width          int               `json:"width"`
	Height         int               `json:"height"`
	BitRate        string            `json:"bit_rate"`
	AvgFrameRate   string            `json:"avg_frame_rate"`
	PixFmt         string            `json:"pix_fmt"`
	ColorPrimaries string            `json:"color_primaries"`
	ColorTransfer  string            `json:"color_transfer"`
	Channels       int               `json:"channels"`
	Tags           ffprobeTags       `json:"tags"`
	Disposition    ffprobeDispo      `json:"disposition"`
	SideDataList   []ffprobeSideData `json:"side_data_list"`
}

type ffprobeTags struct {
	Language string `json:"language"`
	Title    string `json:"title"`
}

type ffprobeDispo struct {
	Forced int `json:"forced"`
}

type ffprobeSideData struct {
	SideDataType string `json:"side_data_type"`
}

// ffprobe codec names mapped to the names mediainfo reports, so both probes
// feed the same downstream matching.
var ffprobeCodecNames = map[string]string{
	"hevc":              "HEVC",
	"h264":              "AVC",
	"av1":               "AV1",
	"vp9":               "VP9",
	"mpeg2video":        "MPEG Video",
	"vc1":               "VC-1",
	"eac3":              "E-AC-3",
	"ac3":               "AC-3",
	"aac":               "AAC",
	"truehd":            "TrueHD",
	"dts":               "DTS",
	"flac":              "FLAC",
	"opus":              "Opus",
	"mp3":               "MPEG Audio",
	"subrip":            "UTF-8",
	"ass":               "ASS",
	"hdmv_pgs_subtitle": "PGS",
}

func ffprobeCodec(name string) string {
	if mapped, ok := ffprobeCodecNames[strings.ToLower(name)]; ok {
		return mapped
	}
	return name
}

// parseFFprobeJSON converts ffprobe's JSON output into MediaInfo.
func parseFFprobeJSON(data []byte) (*MediaInfo, error) {
	var output ffprobeOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &MediaInfo{
		Container: output.Format.FormatName,
		FileSize:  parseInt64(output.Format.Size),
		Duration:  parseFloat(output.Format.Duration),
	}

	for _, stream := range output.Streams {
		switch stream.CodecType {
		case "video":
			hdr := ""
			for _, sd := range stream.SideDataList {
				if strings.Contains(strings.ToLower(sd.SideDataType), "dovi") ||
					strings.Contains(strings.ToLower(sd.SideDataType), "dolby vision") {
					hdr = "Dolby Vision"
				}
			}
			info.VideoTracks = append(info.VideoTracks, VideoTrack{
				Codec:                   ffprobeCodec(stream.CodecName),
				Width:                   stream.Width,
				Height:                  stream.Height,
				Bitrate:                 parseInt64(stream.BitRate),
				Framerate:               parseFrameRate(stream.AvgFrameRate),
				BitDepth:                detectBitDepth(stream.PixFmt),
				HDR:                     hdr,
				ColorPrimaries:          stream.ColorPrimaries,
				TransferCharacteristics: stream.ColorTransfer,
			})

		case "audio":
			codec := ffprobeCodec(stream.CodecName)
			if strings.EqualFold(stream.CodecName, "dts") {
				codec = audioCodecName(codec, stream.Profile, "")
			}
			info.AudioTracks = append(info.AudioTracks, AudioTrack{
				Codec:    codec,
				Channels: stream.Channels,
				Bitrate:  parseInt64(stream.BitRate),
				Language: stream.Tags.Language,
				Title:    stream.Tags.Title,
			})

		case "subtitle":
			info.SubtitleTracks = append(info.SubtitleTracks, SubtitleTrack{
				Codec:    ffprobeCodec(stream.CodecName),
				Language: stream.Tags.Language,
				Title:    stream.Tags.Title,
				Forced:   stream.Disposition.Forced == 1,
			})
		}
	}

	return info, nil
}

// parseInt parses the leading digits of s, ignoring suffixes like " pixels".
func parseInt(s string) int {
	s = strings.TrimSpace(s)
	for i, c := range s {
		if c < '0' || c > '9' {
			s = s[:i]
			break
		}
	}
	n, _ := strconv.Atoi(s)
	return n
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

// parseFrameRate parses ffprobe's "num/den" rate.
func parseFrameRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return parseFloat(s)
	}
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return parseFloat(num) / d
}

// detectBitDepth detects bit depth from an ffprobe pixel format.
func detectBitDepth(pixFmt string) int {
	lower := strings.ToLower(pixFmt)
	switch {
	case pixFmt == "":
		return 0
	case strings.Contains(lower, "10le"), strings.Contains(lower, "10be"), strings.Contains(lower, "p010"):
		return 10
	case strings.Contains(lower, "12le"), strings.Contains(lower, "12be"):
		return 12
	default:
		return 8
	}
}
