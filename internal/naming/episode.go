package naming

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/cehbz/torrentname"
)

// EpisodeInfo is what a file name says about its place in a series.
type EpisodeInfo struct {
	IsSeries         bool `json:"is_series"`
	Season           *int `json:"season"`
	Episode          *int `json:"episode"`
	IsCompleteSeason bool `json:"is_complete_season"`
}

var episodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[Ss](\d{1,2})\.?[Ee](\d{1,2})`),
	regexp.MustCompile(`(?:^|\D)(\d{1,2})x(\d{1,2})(?:\D|$)`),
	regexp.MustCompile(`[Ss]aison\s*(\d{1,2}).*[Ee]pisode\s*(\d{1,2})`),
	regexp.MustCompile(`[Ss]eason\s*(\d{1,2}).*[Ee]pisode\s*(\d{1,2})`),
}

var seasonPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[Ss]aison\s*(\d{1,2})`),
	regexp.MustCompile(`[Ss]eason\s*(\d{1,2})`),
}

// S01 not followed by an episode marker. RE2 has no lookahead, the
// trailing character is checked by hand. The leading letter guard keeps
// "DTS5.1" from reading as season 5.
var bareSeasonRe = regexp.MustCompile(`(?:^|[^A-Za-z])[Ss](\d{1,2})`)

func intPtr(n int) *int { return &n }

// DetectEpisode inspects a file or folder name for season and episode
// markers. Explicit episode forms win over season-only forms. When nothing
// matches, the scene-name parser gets a last look.
func DetectEpisode(filename string) EpisodeInfo {
	for _, re := range episodePatterns {
		if m := re.FindStringSubmatch(filename); m != nil {
			season, _ := strconv.Atoi(m[1])
			episode, _ := strconv.Atoi(m[2])
			return EpisodeInfo{IsSeries: true, Season: intPtr(season), Episode: intPtr(episode)}
		}
	}

	for _, re := range seasonPatterns {
		if m := re.FindStringSubmatch(filename); m != nil {
			season, _ := strconv.Atoi(m[1])
			return EpisodeInfo{IsSeries: true, Season: intPtr(season), IsCompleteSeason: true}
		}
	}

	for _, loc := range bareSeasonRe.FindAllStringSubmatchIndex(filename, -1) {
		end := loc[1]
		if end < len(filename) {
			next := filename[end]
			if next == 'E' || next == 'e' || (next >= '0' && next <= '9') {
				continue
			}
		}
		season, _ := strconv.Atoi(filename[loc[2]:loc[3]])
		return EpisodeInfo{IsSeries: true, Season: intPtr(season), IsCompleteSeason: true}
	}

	if parsed := torrentname.Parse(filename); parsed != nil && parsed.Season > 0 {
		info := EpisodeInfo{IsSeries: true, Season: intPtr(parsed.Season)}
		if parsed.Episode > 0 {
			info.Episode = intPtr(parsed.Episode)
		} else {
			info.IsCompleteSeason = true
		}
		return info
	}

	return EpisodeInfo{}
}

// FormatEpisodeTag renders the series marker of a release name:
// iNTEGRALE, S01E02, S01E02.FiNAL, E02 or S01.
func FormatEpisodeTag(opts Options) string {
	if opts.CompleteSeries {
		return "iNTEGRALE"
	}

	final := ""
	if opts.FinalEpisode {
		final = ".FiNAL"
	}

	switch {
	case opts.Season != nil && opts.Episode != nil:
		return fmt.Sprintf("S%02dE%02d%s", *opts.Season, *opts.Episode, final)
	case opts.EpisodeOnly && opts.Episode != nil:
		return fmt.Sprintf("E%02d%s", *opts.Episode, final)
	case opts.Season != nil:
		return fmt.Sprintf("S%02d", *opts.Season)
	}
	return ""
}
