package naming

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/butinmaker/butinmaker/internal/mediainfo"
	"github.com/butinmaker/butinmaker/internal/taxonomy"
)

func TestBuild(t *testing.T) {
	b := NewBuilder(zerolog.Nop())

	tests := []struct {
		name  string
		title string
		year  string
		media *mediainfo.MediaInfo
		opts  Options
		want  string
	}{
		{
			name:  "movie with detected parts",
			title: "Iznogoud",
			year:  "2005",
			media: &mediainfo.MediaInfo{
				FileName:    "Iznogoud.2005.FRENCH.1080p.WEB-DL.H264-GRP.mkv",
				VideoTracks: []mediainfo.VideoTrack{{Codec: "AVC", Width: 1920, Height: 800}},
				AudioTracks: []mediainfo.AudioTrack{{Codec: "E-AC-3", Language: "fr"}},
			},
			opts: Options{ContentType: taxonomy.ContentMovie},
			want: "Iznogoud.2005.TrueFrench.1080p.WEB-DL.H264-GRP",
		},
		{
			name:  "title recovered from file name",
			media: &mediainfo.MediaInfo{
				FileName: "Mad.Max.Fury.Road.2015.MULTi.2160p.UHD.BluRay.REMUX.HDR.HEVC-FRATERNiTY.mkv",
				VideoTracks: []mediainfo.VideoTrack{{
					Codec: "HEVC", Width: 3840, Height: 1600, HDR: "SMPTE ST 2086, HDR10 compatible",
				}},
			},
			opts: Options{Language: "MULTi.VFF"},
			want: "Mad.Max.Fury.Road.MULTi.VFF.HDR.2160p.REMUX.HEVC-FRATERNiTY",
		},
		{
			name:  "series episode without media",
			title: "The Office",
			opts:  Options{ContentType: taxonomy.ContentTV, Season: intPtr(1), Episode: intPtr(2), FinalEpisode: true},
			want:  "The.Office.S01E02.FiNAL-NOTAG",
		},
		{
			name:  "complete series",
			title: "Kaamelott",
			year:  "2005",
			opts:  Options{ContentType: taxonomy.ContentTV, CompleteSeries: true, Season: intPtr(1), Group: "TEAM"},
			want:  "Kaamelott.iNTEGRALE.2005-TEAM",
		},
		{
			name:  "episode tag ignored for movies",
			title: "Heat",
			year:  "1995",
			opts:  Options{ContentType: taxonomy.ContentMovie, Season: intPtr(1)},
			want:  "Heat.1995-NOTAG",
		},
		{
			name:  "info upper-cased and edition kept",
			title: "Alien",
			year:  "1979",
			opts:  Options{Info: "proper", Edition: "Directors.Cut", Source: "BluRay"},
			want:  "Alien.1979.PROPER.Directors.Cut.BluRay-NOTAG",
		},
		{
			name:  "sd release has no resolution",
			title: "Old Show",
			media: &mediainfo.MediaInfo{
				FileName:    "old.show.dvdrip.avi",
				VideoTracks: []mediainfo.VideoTrack{{Codec: "MPEG-4 Visual", Width: 720, Height: 576}},
			},
			want: "Old.Show.DVDRip.MPEG-NOTAG",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Build(tt.title, tt.year, tt.media, tt.opts)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Build() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuild_EmptyTitle(t *testing.T) {
	b := NewBuilder(zerolog.Nop())

	if _, err := b.Build("", "", nil, Options{}); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("Build() error = %v, want ErrEmptyTitle", err)
	}
	if _, err := b.Build("  ?!  ", "", nil, Options{}); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("Build() with punctuation-only title error = %v, want ErrEmptyTitle", err)
	}
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"L'Été dernier", "L.Ete.Dernier"},
		{"Star Wars: Episode IV", "Star.Wars.Episode.IV"},
		{"Amélie", "Amelie"},
		{"Movie.mkv", "Movie"},
		{"Who Am I?", "Who.Am.I"},
		{"Iznogoud.FRENCH", "Iznogoud"},
		{"le dîner de cons", "Le.Diner.De.Cons"},
		{"Aujourd’hui", "Aujourd.Hui"},
		{"  spaced   out  ", "Spaced.Out"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeTitle(tt.input); got != tt.want {
				t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatEpisodeTag(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"season and episode", Options{Season: intPtr(1), Episode: intPtr(2)}, "S01E02"},
		{"final episode", Options{Season: intPtr(3), Episode: intPtr(10), FinalEpisode: true}, "S03E10.FiNAL"},
		{"episode only", Options{Episode: intPtr(7), EpisodeOnly: true}, "E07"},
		{"episode only final", Options{Episode: intPtr(7), EpisodeOnly: true, FinalEpisode: true}, "E07.FiNAL"},
		{"season pack", Options{Season: intPtr(2), CompleteSeason: true}, "S02"},
		{"complete series wins", Options{Season: intPtr(1), Episode: intPtr(1), CompleteSeries: true}, "iNTEGRALE"},
		{"episode without season or flag", Options{Episode: intPtr(4)}, ""},
		{"nothing", Options{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatEpisodeTag(tt.opts); got != tt.want {
				t.Errorf("FormatEpisodeTag() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHardlinkPath(t *testing.T) {
	tests := []struct {
		name        string
		baseDir     string
		sourceName  string
		sourceIsDir bool
		want        string
	}{
		{"file keeps extension", "/data", "movie.mkv", false, "/data/Rel-GRP.mkv"},
		{"trailing separator", "/data/", "movie.mkv", false, "/data/Rel-GRP.mkv"},
		{"default directory", "", "movie.mp4", false, "/data/Rel-GRP.mp4"},
		{"directory has no extension", "/media/links", "Season.01", true, "/media/links/Rel-GRP"},
		{"source without extension", "/media/links", "movie", false, "/media/links/Rel-GRP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HardlinkPath(tt.baseDir, "Rel-GRP", tt.sourceName, tt.sourceIsDir)
			if got != tt.want {
				t.Errorf("HardlinkPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
