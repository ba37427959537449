package mediainfo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

const mediaInfoFixture = `{
  "media": {
    "track": [
      {"@type": "General", "Format": "Matroska", "FileSize": "123456", "Duration": "5423.456"},
      {"@type": "Video", "Format": "HEVC", "Width": "3840", "Height": "1600", "BitRate": "15000000",
       "FrameRate": "23.976", "BitDepth": "10", "HDR_Format": "Dolby Vision",
       "HDR_Format_Compatibility": "HDR10", "colour_primaries": "BT.2020",
       "transfer_characteristics": "PQ"},
      {"@type": "Audio", "Format": "MLP FA", "Format_Commercial_IfAny": "Dolby TrueHD with Dolby Atmos",
       "Channels": "8", "Language": "fr", "Title": "VFF"},
      {"@type": "Audio", "Format": "E-AC-3", "Channels": "6", "Language": "en"},
      {"@type": "Text", "Format": "UTF-8", "Language": "fr", "Forced": "Yes"},
      {"@type": "Text", "Format": "PGS", "Language": "en", "Forced": "No"}
    ]
  }
}`

func TestParseMediaInfoJSON(t *testing.T) {
	info, err := parseMediaInfoJSON([]byte(mediaInfoFixture))
	if err != nil {
		t.Fatalf("parseMediaInfoJSON() error = %v", err)
	}

	if info.Container != "Matroska" || info.Duration != 5423.456 {
		t.Errorf("general = %q %v", info.Container, info.Duration)
	}
	if len(info.VideoTracks) != 1 || len(info.AudioTracks) != 2 || len(info.SubtitleTracks) != 2 {
		t.Fatalf("tracks = %d/%d/%d", len(info.VideoTracks), len(info.AudioTracks), len(info.SubtitleTracks))
	}

	v := info.VideoTracks[0]
	if v.Codec != "HEVC" || v.Width != 3840 || v.Height != 1600 || v.BitDepth != 10 {
		t.Errorf("video = %+v", v)
	}
	if v.HDR != "Dolby Vision, HDR10" {
		t.Errorf("video.HDR = %q", v.HDR)
	}
	if info.AudioTracks[0].Codec != "TrueHD Atmos" || info.AudioTracks[0].Channels != 8 {
		t.Errorf("audio[0] = %+v", info.AudioTracks[0])
	}
	if info.AudioTracks[1].Codec != "E-AC-3" || info.AudioTracks[1].Language != "en" {
		t.Errorf("audio[1] = %+v", info.AudioTracks[1])
	}
	if !info.SubtitleTracks[0].Forced || info.SubtitleTracks[1].Forced {
		t.Errorf("subtitle forced flags = %+v", info.SubtitleTracks)
	}
}

func TestParseMediaInfoJSON_Invalid(t *testing.T) {
	if _, err := parseMediaInfoJSON([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestParseFFprobeJSON(t *testing.T) {
	data := `{
	  "format": {"format_name": "matroska,webm", "duration": "120.5", "size": "999"},
	  "streams": [
	    {"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080,
	     "avg_frame_rate": "24000/1001", "pix_fmt": "yuv420p"},
	    {"codec_type": "audio", "codec_name": "eac3", "channels": 6, "tags": {"language": "fre", "title": "VFQ"}},
	    {"codec_type": "audio", "codec_name": "dts", "profile": "DTS-HD MA", "channels": 8, "tags": {"language": "eng"}},
	    {"codec_type": "subtitle", "codec_name": "subrip", "tags": {"language": "fre"}, "disposition": {"forced": 1}}
	  ]
	}`

	info, err := parseFFprobeJSON([]byte(data))
	if err != nil {
		t.Fatalf("parseFFprobeJSON() error = %v", err)
	}

	v := info.VideoTracks[0]
	if v.Codec != "AVC" || v.Width != 1920 || v.BitDepth != 8 {
		t.Errorf("video = %+v", v)
	}
	if v.Framerate < 23.97 || v.Framerate > 23.98 {
		t.Errorf("framerate = %v", v.Framerate)
	}
	if info.AudioTracks[0].Codec != "E-AC-3" || info.AudioTracks[0].Title != "VFQ" {
		t.Errorf("audio[0] = %+v", info.AudioTracks[0])
	}
	if info.AudioTracks[1].Codec != "DTS-HD MA" {
		t.Errorf("audio[1].Codec = %q", info.AudioTracks[1].Codec)
	}
	if info.SubtitleTracks[0].Codec != "UTF-8" || !info.SubtitleTracks[0].Forced {
		t.Errorf("subtitle = %+v", info.SubtitleTracks[0])
	}
}

func TestDetectHDR(t *testing.T) {
	tests := []struct {
		name  string
		track VideoTrack
		want  HDRTag
	}{
		{"sdr", VideoTrack{ColorPrimaries: "BT.709"}, HDRTagNone},
		{"dolby vision", VideoTrack{HDR: "Dolby Vision"}, HDRTagDolbyVision},
		{"dv hdr10", VideoTrack{HDR: "Dolby Vision, HDR10"}, HDRTagDVHDR10},
		{"dv over pq", VideoTrack{HDR: "Dolby Vision", TransferCharacteristics: "PQ"}, HDRTagDVHDR10},
		{"hdr10+", VideoTrack{HDR: "SMPTE ST 2094 App 4, HDR10+ Profile B"}, HDRTagHDR10Plus},
		{"hdr10", VideoTrack{HDR: "SMPTE ST 2086, HDR10 compatible"}, HDRTagHDR},
		{"pq transfer", VideoTrack{TransferCharacteristics: "smpte2084"}, HDRTagHDR},
		{"hlg", VideoTrack{TransferCharacteristics: "arib-std-b67"}, HDRTagHLG},
		{"bt2020 only", VideoTrack{ColorPrimaries: "BT.2020"}, HDRTagHDR},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectHDR(tt.track); got != tt.want {
				t.Errorf("DetectHDR() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatChannels(t *testing.T) {
	tests := map[int]string{0: "", 1: "1.0", 2: "2.0", 3: "2.0", 6: "5.1", 8: "7.1", 10: "7.1"}
	for in, want := range tests {
		if got := FormatChannels(in); got != want {
			t.Errorf("FormatChannels(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestMediaInfo_Accessors(t *testing.T) {
	var nilInfo *MediaInfo
	if _, ok := nilInfo.FirstVideo(); ok {
		t.Error("nil FirstVideo should be absent")
	}
	if nilInfo.Extension() != "" {
		t.Error("nil Extension should be empty")
	}

	info := &MediaInfo{FileName: "Movie.2024.MKV"}
	if info.Extension() != "mkv" {
		t.Errorf("Extension() = %q", info.Extension())
	}
}

func newTestService(t *testing.T, run runFunc) *Service {
	t.Helper()
	return &Service{
		config:       DefaultConfig(),
		logger:       zerolog.Nop(),
		run:          run,
		cache:        make(map[string]*cacheEntry),
		mediainfoBin: "mediainfo",
	}
}

func writeMediaFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestService_Analyze(t *testing.T) {
	path := writeMediaFile(t, "Movie.2024.1080p.mkv")
	calls := 0
	svc := newTestService(t, func(ctx context.Context, binary string, args ...string) ([]byte, error) {
		calls++
		if args[0] != "--Output=JSON" {
			t.Errorf("args = %v", args)
		}
		return []byte(mediaInfoFixture), nil
	})

	info, err := svc.Analyze(context.Background(), path)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if info.FileName != "Movie.2024.1080p.mkv" || info.FilePath != path || info.FileSize != 4 {
		t.Errorf("file fields = %q %q %d", info.FileName, info.FilePath, info.FileSize)
	}

	if _, err := svc.Analyze(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("probe calls = %d, want 1 (cached)", calls)
	}
}

func TestService_AnalyzeErrors(t *testing.T) {
	svc := newTestService(t, func(ctx context.Context, binary string, args ...string) ([]byte, error) {
		return nil, errors.New("boom")
	})

	if _, err := svc.Analyze(context.Background(), "/does/not/exist.mkv"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}

	path := writeMediaFile(t, "a.mkv")
	if _, err := svc.Analyze(context.Background(), path); err == nil {
		t.Error("expected probe error")
	}

	svc.mediainfoBin = ""
	if _, err := svc.Analyze(context.Background(), path); !errors.Is(err, ErrNoProbeTool) {
		t.Errorf("no tool error = %v", err)
	}
}

func TestService_GenerateNFO(t *testing.T) {
	path := writeMediaFile(t, "source.mkv")
	outDir := filepath.Join(t.TempDir(), "out")
	svc := newTestService(t, func(ctx context.Context, binary string, args ...string) ([]byte, error) {
		return []byte("General\nComplete name : " + path + "\nFormat : Matroska\n"), nil
	})

	nfo, err := svc.GenerateNFO(context.Background(), path, "Movie.2024.1080p.WEB-DL.x264-TEAM", outDir)
	if err != nil {
		t.Fatalf("GenerateNFO() error = %v", err)
	}

	wantPath := filepath.Join(outDir, "Movie.2024.1080p.WEB-DL.x264-TEAM.nfo")
	if nfo.Path != wantPath {
		t.Errorf("Path = %q, want %q", nfo.Path, wantPath)
	}
	if strings.Contains(nfo.Content, path) {
		t.Error("NFO still contains the source path")
	}
	if !strings.Contains(nfo.Content, "Complete name : Movie.2024.1080p.WEB-DL.x264-TEAM.mkv") {
		t.Errorf("Content = %q", nfo.Content)
	}

	written, err := os.ReadFile(wantPath)
	if err != nil || string(written) != nfo.Content {
		t.Errorf("written NFO mismatch: %v", err)
	}
}

func TestService_GenerateNFO_NoReleaseName(t *testing.T) {
	path := writeMediaFile(t, "source.mkv")
	outDir := t.TempDir()
	svc := newTestService(t, func(ctx context.Context, binary string, args ...string) ([]byte, error) {
		return []byte("Complete name : " + path), nil
	})

	nfo, err := svc.GenerateNFO(context.Background(), path, "", outDir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(nfo.Path) != "source.nfo" || nfo.Content != "Complete name : source.mkv" {
		t.Errorf("nfo = %+v", nfo)
	}
}
