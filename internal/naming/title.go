package naming

import (
	"regexp"
	"strings"
)

var (
	trailingGroupRe = regexp.MustCompile(`-[A-Za-z0-9]+$`)
	dottedYearRe    = regexp.MustCompile(`\.(19|20)\d{2}\.`)
	parenYearRe     = regexp.MustCompile(`\s*\((19|20)\d{2}\)`)
	endYearRe       = regexp.MustCompile(`\.(19|20)\d{2}$`)
	seasonMarkerRe  = regexp.MustCompile(`(?i)\.S\d{1,2}(E\d{1,2})?\.?`)
)

// Technical tokens removed when a name carries no year or season marker.
var sceneTokenRes = compileAll(
	`\.S\d{1,2}E\d{1,2}\b`, `\.S\d{1,2}\b`, `\.\d{1,2}x\d{1,2}\b`,
	`\.\d{3,4}p\b`, `\.[24]k\b`, `\.uhd\b`,
	`\.h\.?264\b`, `\.h\.?265\b`, `\.x264\b`, `\.x265\b`, `\.hevc\b`, `\.avc\b`, `\.av1\b`,
	`\.ac3\b`, `\.aac\b`, `\.dts[^a-z]*`, `\.truehd\b`, `\.atmos\b`, `\.eac3\b`,
	`\.ddp?\d*\.?\d*\b`, `\.flac\b`,
	`\.web-dl\b`, `\.webdl\b`, `\.webrip\b`, `\.web\b`, `\.bluray\b`, `\.blu-ray\b`,
	`\.bdrip\b`, `\.brrip\b`, `\.hdtv\b`, `\.dvdrip\b`, `\.remux\b`, `\.hdlight\b`,
	`\.french\b`, `\.vff\b`, `\.vfq\b`, `\.vostfr\b`, `\.subfrench\b`, `\.multi\b`,
	`\.english\b`, `\.eng\b`, `\.vo\b`, `\.vf\b`, `\.truefrench\b`, `\.vfi\b`,
	`\.hdr10plus\b`, `\.hdr10\b`, `\.hdr\b`, `\.dv\b`, `\.hlg\b`, `\.sdr\b`,
	`\.dc\b`, `\.extended\b`, `\.remastered\b`, `\.unrated\b`, `\.final\.cut\b`,
	`\.directors?\.?cut\b`, `\.theatrical\b`, `\.imax\b`, `\.proper\b`, `\.repack\b`,
	`\.rerip\b`, `\.custom\b`,
	`\.nf\b`, `\.amzn\b`, `\.dsnp\b`, `\.atvp\b`, `\.hmax\b`, `\.pmtp\b`, `\.adn\b`, `\.cr\b`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(`(?i)` + p)
	}
	return res
}

// ExtractTitle recovers the title part of a scene file name:
// "Iznogoud.2005.FRENCH.1080p.WEB-DL.H264-GRP.mkv" gives "Iznogoud". The
// name is cut before the year or season marker; without either, known
// technical tokens are stripped instead.
func ExtractTitle(filename string) string {
	name := stripVideoExt(filename)
	name = trailingGroupRe.ReplaceAllString(name, "")

	if loc := dottedYearRe.FindStringIndex(name); loc != nil {
		if title := strings.Trim(name[:loc[0]], "."); title != "" {
			return title
		}
	}

	if loc := parenYearRe.FindStringIndex(name); loc != nil {
		title := strings.TrimSpace(name[:loc[0]])
		if title != "" {
			return strings.ReplaceAll(title, " ", ".")
		}
	}

	if loc := endYearRe.FindStringIndex(name); loc != nil {
		if title := strings.Trim(name[:loc[0]], "."); title != "" {
			return title
		}
	}

	if loc := seasonMarkerRe.FindStringIndex(name); loc != nil {
		if title := strings.Trim(name[:loc[0]], "."); title != "" {
			return title
		}
	}

	for _, re := range sceneTokenRes {
		name = re.ReplaceAllString(name, "")
	}
	return strings.Trim(multiDotRe.ReplaceAllString(name, "."), ".")
}

// SearchQuery is ExtractTitle with dots turned into spaces, ready for a
// TMDB search.
func SearchQuery(filename string) string {
	return strings.ReplaceAll(ExtractTitle(filename), ".", " ")
}
