package naming

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// illegalCharacters are dropped from titles. The first group is punctuation
// La Cale forbids in names, the second is illegal on common filesystems.
const illegalCharacters = `:;,{}[]!?` + `<>"/\|*`

var (
	videoExtRe  = regexp.MustCompile(`(?i)\.(mkv|mp4|avi|mov|wmv|flv|webm|m4v|ts|m2ts)$`)
	spacesRe    = regexp.MustCompile(`\s+`)
	multiDotRe  = regexp.MustCompile(`\.+`)
	titleTagRes = buildTitleTagRes()
)

// Scene tokens that sometimes leak into a title typed from a file name.
var titleTags = []string{
	"french", "vff", "vfq", "vostfr", "multi", "1080p", "720p", "2160p", "4k",
	"h264", "h265", "x264", "x265", "hevc", "avc", "bluray", "web-dl", "webdl",
	"webrip", "hdtv", "dvdrip", "remux", "ac3", "aac", "dts", "hdma",
}

func buildTitleTagRes() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, 2*len(titleTags))
	for _, tag := range titleTags {
		q := regexp.QuoteMeta(tag)
		res = append(res,
			regexp.MustCompile(`(?i)\.`+q+`\b`),
			regexp.MustCompile(`(?i)\b`+q+`\.`),
		)
	}
	return res
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldAccents removes diacritics: "Amélie" becomes "Amelie".
func foldAccents(s string) string {
	out, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return out
}

func stripVideoExt(s string) string {
	return videoExtRe.ReplaceAllString(s, "")
}

// SanitizeTitle turns a human title into its release-name form:
// "L'Été dernier" becomes "L.Ete.Dernier".
func SanitizeTitle(title string) string {
	title = stripVideoExt(title)
	title = foldAccents(title)
	title = strings.NewReplacer("'", ".", "’", ".").Replace(title)
	title = strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalCharacters, r) {
			return -1
		}
		return r
	}, title)

	for _, re := range titleTagRes {
		title = re.ReplaceAllString(title, "")
	}

	title = spacesRe.ReplaceAllString(strings.TrimSpace(title), ".")
	title = multiDotRe.ReplaceAllString(title, ".")

	parts := strings.Split(title, ".")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" {
			continue
		}
		if isLower(p) {
			p = capitalizeFirst(p)
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ".")
}

// isLower reports whether s has at least one letter and no upper-case one.
func isLower(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsLower(r) {
			cased = true
		}
	}
	return cased
}

func capitalizeFirst(s string) string {
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// IsVideoFile reports whether name has a known video extension.
func IsVideoFile(name string) bool {
	return videoExtRe.MatchString(name)
}
