package bbcode

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	allowedElements   = []string{"div", "span", "strong", "em", "u", "s", "a", "img", "blockquote", "pre", "code", "ul", "li", "hr", "br"}
	allowedAttributes = []string{"style", "href", "target", "rel", "src", "width", "height"}
)

var (
	srcSchemeRe = regexp.MustCompile(`(?i)^(https?|ftp)://`)
	cssURLRe    = regexp.MustCompile(`(?i)url\s*\([^)]*\)`)
	httpCSSURL  = regexp.MustCompile(`(?i)^url\s*\(\s*['"]?https?://`)
	// Whitespace and control characters browsers ignore inside a scheme.
	schemeNoiseRe  = regexp.MustCompile(`[\x00-\x20]+`)
	scriptSchemeRe = regexp.MustCompile(`(?i)(java|vb)script:|expression\(`)
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(allowedElements...)
	p.AllowAttrs(allowedAttributes...).Globally()
	p.AllowURLSchemes("http", "https", "ftp")
	p.RequireParseableURLs(true)
	return p
}

// Sanitize restricts markup to the preview allow-list. It runs the
// bluemonday policy, then drops image sources that are not absolute
// http(s) or ftp URLs and removes non-http url() terms from inline styles.
// The result never carries a script scheme in an attribute.
func Sanitize(markup string) string {
	clean := policy.Sanitize(markup)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(clean))
	if err != nil {
		return clean
	}

	// Attributes are filtered on the nodes directly so that a duplicated
	// attribute cannot hide behind the first one.
	doc.Find("[src], [href], [style]").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			n.Attr = cleanAttrs(n.Attr)
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return clean
	}
	return out
}

func cleanAttrs(attrs []html.Attribute) []html.Attribute {
	kept := attrs[:0]
	for _, a := range attrs {
		switch a.Key {
		case "src":
			if !srcSchemeRe.MatchString(a.Val) || hasScriptScheme(a.Val) {
				continue
			}
		case "href":
			if hasScriptScheme(a.Val) {
				continue
			}
		case "style":
			a.Val = stripCSSURLs(a.Val)
			if hasScriptScheme(a.Val) {
				continue
			}
		}
		kept = append(kept, a)
	}
	return kept
}

// stripCSSURLs removes every url() term that does not point to http(s).
func stripCSSURLs(style string) string {
	return cssURLRe.ReplaceAllStringFunc(style, func(term string) string {
		if httpCSSURL.MatchString(term) {
			return term
		}
		return ""
	})
}

func hasScriptScheme(v string) bool {
	return scriptSchemeRe.MatchString(schemeNoiseRe.ReplaceAllString(v, ""))
}
