package naming

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/butinmaker/butinmaker/internal/mediainfo"
)

// mapping is an ordered key → token table. Order matters: the first key
// found wins.
type mapping struct {
	key   string
	token string
}

var videoCodecs = []mapping{
	{"hevc", "HEVC"}, {"h.265", "H265"}, {"h265", "H265"}, {"x265", "x265"},
	{"avc", "H264"}, {"h.264", "H264"}, {"h264", "H264"}, {"x264", "x264"},
	{"vp9", "VP9"}, {"av1", "AV1"}, {"vc-1", "VC-1"}, {"vc1", "VC-1"},
	{"mpeg", "MPEG"}, {"x266", "x266"}, {"vvc", "VVC"},
}

// REMUX comes before BluRay since remuxes usually say both.
var sources = []mapping{
	{"remux", "REMUX"},
	{"bluray", "BluRay"}, {"blu-ray", "BluRay"}, {"bdrip", "BluRay"},
	{"web-dl", "WEB-DL"}, {"webdl", "WEB-DL"},
	{"webrip", "WEBRip"},
	{"hdtv", "HDTV"},
	{"dvdrip", "DVDRip"}, {"dvd", "DVDRip"},
	{"full", "FULL"}, {"complete", "COMPLETE"},
	{"hdlight", "HDLight"}, {"4klight", "4KLight"},
}

// Dotted abbreviations are matched as plain substrings before full names.
var platforms = []mapping{
	{".nf.", "NF"}, {".amzn.", "AMZN"}, {".dsnp.", "DSNP"}, {".atvp.", "ATVP"},
	{".hmax.", "HMAX"}, {".pmtp.", "PMTP"}, {".adn.", "ADN"}, {".cr.", "CR"},
	{"netflix", "NF"}, {"amazon", "AMZN"}, {"prime", "AMZN"},
	{"disney", "DSNP"}, {"apple", "ATVP"}, {"itunes", "iT"},
	{"hbo", "HMAX"}, {"max", "MAX"}, {"paramount", "PMTP"},
	{"hulu", "HULU"}, {"peacock", "PCOK"}, {"starz", "STARZ"},
	{"crave", "CRAVE"}, {"stan", "STAN"}, {"mubi", "MUBI"},
	{"crunchyroll", "CR"}, {"bravia", "BCORE"},
}

// Suffixes after the last dash that belong to a tag, not a team.
var nonGroupSuffixes = map[string]bool{
	"dl": true, "rip": true, "hd": true, "ma": true, "hr": true, "x": true, "plus": true,
	"264": true, "265": true, "266": true,
	"ac3": true, "aac": true, "dts": true, "flac": true, "mp3": true,
	"1080p": true, "720p": true, "2160p": true, "480p": true, "576p": true,
	"french": true, "multi": true, "vostfr": true, "vff": true, "vfq": true,
}

var groupRe = regexp.MustCompile(`-([A-Za-z0-9]+)$`)

var frenchCodes = map[string]bool{"fr": true, "fra": true, "fre": true, "french": true}
var englishCodes = map[string]bool{"en": true, "eng": true, "english": true}
var undeterminedCodes = map[string]bool{"und": true, "zxx": true}

// lookup returns the token of the first key found in s. Keys containing a
// dot are plain substrings, others must not touch a letter on either side.
func lookup(table []mapping, s string) string {
	s = strings.ToLower(s)
	for _, m := range table {
		if strings.Contains(m.key, ".") {
			if strings.Contains(s, m.key) {
				return m.token
			}
			continue
		}
		if containsWord(s, m.key) {
			return m.token
		}
	}
	return ""
}

// containsWord reports whether key occurs in s with no ASCII letter
// immediately before or after it.
func containsWord(s, key string) bool {
	for offset := 0; offset <= len(s)-len(key); {
		i := strings.Index(s[offset:], key)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(key)
		if (start == 0 || !isASCIILetter(s[start-1])) && (end == len(s) || !isASCIILetter(s[end])) {
			return true
		}
		offset = start + 1
	}
	return false
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// DetectSource returns the release source (REMUX, BluRay, WEB-DL...) named
// in s, or "".
func DetectSource(s string) string {
	return lookup(sources, s)
}

// DetectPlatform returns the streaming platform abbreviation named in s,
// or "".
func DetectPlatform(s string) string {
	return lookup(platforms, s)
}

// DetectVideoCodec maps the first video track's codec to its release-name
// token. Unknown codecs are passed through with spaces dotted.
func DetectVideoCodec(media *mediainfo.MediaInfo) string {
	video, ok := media.FirstVideo()
	if !ok || video.Codec == "" {
		return ""
	}
	codec := strings.ToLower(video.Codec)
	for _, m := range videoCodecs {
		if strings.Contains(codec, m.key) {
			return m.token
		}
	}
	return strings.Join(strings.Fields(video.Codec), ".")
}

// IsSD reports whether the first video track is below 720 lines, or
// missing. SD releases carry no resolution token.
func IsSD(media *mediainfo.MediaInfo) bool {
	video, ok := media.FirstVideo()
	return !ok || video.Height < 720
}

// DetectResolution returns 2160p/1080p/720p from the frame width, falling
// back to height thresholds that tolerate letterboxing. "" when unknown.
func DetectResolution(media *mediainfo.MediaInfo) string {
	video, ok := media.FirstVideo()
	if !ok {
		return ""
	}

	switch {
	case video.Width >= 3840:
		return "2160p"
	case video.Width >= 1920:
		return "1080p"
	case video.Width >= 1280:
		return "720p"
	case video.Height >= 2160:
		return "2160p"
	case video.Height >= 800:
		return "1080p"
	case video.Height >= 700:
		return "720p"
	case video.Height > 0:
		return strconv.Itoa(video.Height) + "p"
	}
	return ""
}

// DetectLanguage builds the language token from the audio tracks: the
// French variant (VFQ, TrueFrench, VFi) comes from track titles, several
// languages give MULTi.<variant>, English alone gives ENGLISH.
func DetectLanguage(media *mediainfo.MediaInfo) string {
	if media == nil || len(media.AudioTracks) == 0 {
		return ""
	}

	var hasFrench, hasEnglish, hasOther bool
	frenchType := ""

	for _, track := range media.AudioTracks {
		lang := strings.ToLower(track.Language)
		title := strings.ToLower(track.Title)

		switch {
		case containsAnyOf(title, "vfq", "quebec", "québec", "canadien"):
			hasFrench, frenchType = true, "VFQ"
		case containsAnyOf(title, "vff", "truefrench", "true french", "france"):
			hasFrench, frenchType = true, "TrueFrench"
		case containsAnyOf(title, "vfi", "international"):
			hasFrench, frenchType = true, "VFi"
		case strings.Contains(title, "vf") || frenchCodes[lang]:
			hasFrench = true
			if frenchType == "" {
				frenchType = "TrueFrench"
			}
		}

		if containsAnyOf(title, "vo", "english") || englishCodes[lang] {
			hasEnglish = true
		}
		if lang != "" && !frenchCodes[lang] && !englishCodes[lang] && !undeterminedCodes[lang] {
			hasOther = true
		}
	}

	count := 0
	for _, b := range []bool{hasFrench, hasEnglish, hasOther} {
		if b {
			count++
		}
	}

	switch {
	case count > 1 && hasFrench:
		return "MULTi." + frenchType
	case count > 1:
		return "MULTi"
	case hasFrench:
		return frenchType
	case hasEnglish:
		return "ENGLISH"
	}
	return ""
}

// DetectGroup returns the team after the final dash of a file name, or ""
// when the suffix is a tag fragment such as the DL of WEB-DL.
func DetectGroup(filename string) string {
	m := groupRe.FindStringSubmatch(stripVideoExt(filename))
	if m == nil || nonGroupSuffixes[strings.ToLower(m[1])] {
		return ""
	}
	return m[1]
}

func containsAnyOf(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
