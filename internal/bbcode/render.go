// Package bbcode renders tracker BBCode to HTML for previews and sanitizes
// the result before it reaches a browser.
package bbcode

import (
	"fmt"
	"regexp"
	"strings"
)

// A stage is one rewrite of the pipeline. Stages run in a fixed order and
// each one sees the output of the previous.
type stage struct {
	name  string
	apply func(string) string
}

// safeURLRe is the scheme check done while generating links and images.
// Anything else becomes "#" for links and is dropped for images.
var safeURLRe = regexp.MustCompile(`^(https?://|//)`)

// textSchemeRe matches a script scheme anywhere in a target or link text.
var textSchemeRe = regexp.MustCompile(`(?i)((?:java|vb)\s*script)\s*:`)

func safeURL(u string) bool {
	return safeURLRe.MatchString(u) && !textSchemeRe.MatchString(u)
}

// defang drops the colon after a script scheme so displayed text stays
// readable but can never be taken for a link target.
func defang(text string) string {
	return textSchemeRe.ReplaceAllString(text, "${1} ")
}

const (
	linkAttrs  = `target="_blank" rel="noopener noreferrer" style="color: #60a5fa; text-decoration: underline;"`
	imageStyle = `style="max-width: 300px; height: auto; display: block; margin: 0 auto;"`
)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var pipeline = []stage{
	// Must run first: user text can never carry raw markup into later stages.
	{"escape", htmlEscaper.Replace},
	{"center", replace(`(?is)\[center\](.*?)\[/center\]`, `<div style="text-align: center;">${1}</div>`)},
	{"basic", chain(
		replace(`(?is)\[b\](.*?)\[/b\]`, `<strong>${1}</strong>`),
		replace(`(?is)\[i\](.*?)\[/i\]`, `<em>${1}</em>`),
		replace(`(?is)\[u\](.*?)\[/u\]`, `<u>${1}</u>`),
		replace(`(?is)\[s\](.*?)\[/s\]`, `<s>${1}</s>`),
	)},
	// The value is copied verbatim; the sanitizer owns style safety.
	{"color", replace(`(?is)\[color=([^\]]+)\](.*?)\[/color\]`, `<span style="color: ${1};">${2}</span>`)},
	{"size", replace(`(?is)\[size=([^\]]+)\](.*?)\[/size\]`, `<span style="font-size: ${1};">${2}</span>`)},
	{"url-attr", replaceFunc(`(?is)\[url=([^\]]+)\](.*?)\[/url\]`, func(m []string) string {
		href := m[1]
		if !safeURL(href) {
			href = "#"
		}
		return fmt.Sprintf(`<a href="%s" %s>%s</a>`, href, linkAttrs, defang(m[2]))
	})},
	// A rejected bare link keeps its text, defanged, so the reader sees what was typed.
	{"url-bare", replaceFunc(`(?is)\[url\](.*?)\[/url\]`, func(m []string) string {
		if !safeURL(m[1]) {
			return fmt.Sprintf(`<a href="#" %s>%s</a>`, linkAttrs, defang(m[1]))
		}
		return fmt.Sprintf(`<a href="%s" %s>%s</a>`, m[1], linkAttrs, m[1])
	})},
	{"img", replaceFunc(`(?is)\[img\](.*?)\[/img\]`, func(m []string) string {
		if !safeURL(m[1]) {
			return ""
		}
		return fmt.Sprintf(`<img src="%s" %s />`, m[1], imageStyle)
	})},
	{"img-sized", replaceFunc(`(?is)\[img=(\d+)x(\d+)\](.*?)\[/img\]`, func(m []string) string {
		if !safeURL(m[3]) {
			return ""
		}
		return fmt.Sprintf(`<img src="%s" width="%s" height="%s" %s />`, m[3], m[1], m[2], imageStyle)
	})},
	{"quote", replace(`(?is)\[quote\](.*?)\[/quote\]`,
		`<blockquote style="border-left: 3px solid #6b7280; padding-left: 1rem; margin: 0.5rem 0; color: #9ca3af;">${1}</blockquote>`)},
	{"code", replace(`(?is)\[code\](.*?)\[/code\]`,
		`<pre style="background: #1f2937; padding: 0.5rem; border-radius: 4px; overflow-x: auto;"><code>${1}</code></pre>`)},
	{"list", replace(`(?is)\[list\](.*?)\[/list\]`, `<ul style="list-style: disc; padding-left: 1.5rem;">${1}</ul>`)},
	// Items are opened but never closed; the HTML parser closes them.
	{"list-item", replace(`\[\*\]`, `<li>`)},
	{"hr", replace(`(?i)\[hr\]`, `<hr style="border: none; border-top: 1px solid #4b5563; margin: 1rem 0;" />`)},
	// Last, so that the newlines inside block tags above are kept as breaks.
	{"newline", replace(`\r?\n`, `<br />`)},
}

func replace(pattern, repl string) func(string) string {
	re := regexp.MustCompile(pattern)
	return func(s string) string {
		return re.ReplaceAllString(s, repl)
	}
}

func replaceFunc(pattern string, fn func(m []string) string) func(string) string {
	re := regexp.MustCompile(pattern)
	return func(s string) string {
		return re.ReplaceAllStringFunc(s, func(match string) string {
			return fn(re.FindStringSubmatch(match))
		})
	}
}

func chain(fns ...func(string) string) func(string) string {
	return func(s string) string {
		for _, fn := range fns {
			s = fn(s)
		}
		return s
	}
}

// Stages returns the names of the rendering stages in execution order.
func Stages() []string {
	names := make([]string, len(pipeline))
	for i, st := range pipeline {
		names[i] = st.name
	}
	return names
}

// ToHTML converts BBCode to HTML. Unknown or unbalanced tags are left as
// text. The output is not safe to display until it has been through
// Sanitize.
func ToHTML(src string) string {
	out := src
	for _, st := range pipeline {
		out = st.apply(out)
	}
	return out
}

// Preview renders and sanitizes src.
func Preview(src string) string {
	return Sanitize(ToHTML(src))
}
