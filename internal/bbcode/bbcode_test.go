package bbcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStages_Order(t *testing.T) {
	want := []string{
		"escape", "center", "basic", "color", "size", "url-attr", "url-bare",
		"img", "img-sized", "quote", "code", "list", "list-item", "hr", "newline",
	}
	assert.Equal(t, want, Stages())
}

func TestToHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bold", "[b]Titre[/b]", "<strong>Titre</strong>"},
		{"case insensitive", "[B]x[/B] [I]y[/i]", "<strong>x</strong> <em>y</em>"},
		{"nested", "[center][b]x[/b][/center]", `<div style="text-align: center;"><strong>x</strong></div>`},
		{"underline and strike", "[u]a[/u][s]b[/s]", "<u>a</u><s>b</s>"},
		{"color", "[color=#ff0000]rouge[/color]", `<span style="color: #ff0000;">rouge</span>`},
		{"size", "[size=18px]grand[/size]", `<span style="font-size: 18px;">grand</span>`},
		{
			"link with text",
			"[url=https://lacale.example]La Cale[/url]",
			`<a href="https://lacale.example" ` + linkAttrs + `>La Cale</a>`,
		},
		{
			"protocol relative link",
			"[url=//cdn.example/x]x[/url]",
			`<a href="//cdn.example/x" ` + linkAttrs + `>x</a>`,
		},
		{
			"unsafe link target",
			"[url=javascript:alert(1)]clic[/url]",
			`<a href="#" ` + linkAttrs + `>clic</a>`,
		},
		{
			"bare link",
			"[url]https://a.example[/url]",
			`<a href="https://a.example" ` + linkAttrs + `>https://a.example</a>`,
		},
		{
			"image",
			"[img]https://img.example/p.jpg[/img]",
			`<img src="https://img.example/p.jpg" ` + imageStyle + ` />`,
		},
		{
			"sized image",
			"[img=300x450]https://img.example/p.jpg[/img]",
			`<img src="https://img.example/p.jpg" width="300" height="450" ` + imageStyle + ` />`,
		},
		{"unsafe image dropped", "a[img]data:image/png;base64,xx[/img]b", "ab"},
		{"list", "[list][*]un[*]deux[/list]", `<ul style="list-style: disc; padding-left: 1.5rem;"><li>un<li>deux</ul>`},
		{"newlines", "a\nb\r\nc", "a<br />b<br />c"},
		{"multiline body", "[b]a\nb[/b]", "<strong>a<br />b</strong>"},
		{"escapes raw html", "<script>alert(1)</script> & co", "&lt;script&gt;alert(1)&lt;/script&gt; &amp; co"},
		{"unbalanced tag left alone", "[b]ouvert", "[b]ouvert"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTML(tt.input))
		})
	}
}

func TestToHTML_QuoteCodeHr(t *testing.T) {
	out := ToHTML("[quote]cite[/quote][code]x := 1[/code][hr]")
	assert.Contains(t, out, "<blockquote")
	assert.Contains(t, out, ">cite</blockquote>")
	assert.Contains(t, out, "<pre")
	assert.Contains(t, out, "<code>x := 1</code></pre>")
	assert.Contains(t, out, "<hr ")
}

func TestPreview_KeepsSafeMarkup(t *testing.T) {
	out := Preview("[center][b]Film[/b][/center]\n[url=https://tmdb.example/1]TMDB[/url]\n[img]https://img.example/p.jpg[/img]")

	assert.Contains(t, out, "<strong>Film</strong>")
	assert.Contains(t, out, "text-align: center")
	assert.Contains(t, out, `href="https://tmdb.example/1"`)
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, `src="https://img.example/p.jpg"`)
	assert.Contains(t, out, "<br")
}

func TestPreview_NoScriptScheme(t *testing.T) {
	schemes := []string{
		"javascript:alert(1)",
		"JaVaScRiPt:alert(1)",
		"java\tscript:alert(1)",
		" javascript:alert(1)",
		"jav&#x09;ascript:alert(1)",
		"vbscript:msgbox(1)",
	}
	templates := []string{
		"[url=%s]x[/url]",
		"[url]%s[/url]",
		"[url=%s]%s[/url]",
		"[url=https://ok.example/]%s[/url]",
		"[url]https://ok.example/?next=%s[/url]",
		"[img]%s[/img]",
		"[img=10x10]%s[/img]",
		`[url=https://ok.example" style="background:url(%s)]x[/url]`,
		`[img]https://ok.example/a.png" style="x:%s[/img]`,
		"[color=%s]x[/color]",
		"[size=%s]x[/size]",
	}

	for _, tmpl := range templates {
		for _, scheme := range schemes {
			input := strings.ReplaceAll(tmpl, "%s", scheme)
			t.Run(input, func(t *testing.T) {
				out := strings.ToLower(Preview(input))
				assert.NotContains(t, out, "javascript:")
				assert.NotContains(t, out, "vbscript:")
			})
		}
	}
}

func TestPreview_RejectedLinkKeepsText(t *testing.T) {
	out := Preview("[url]javascript:alert(1)[/url]")

	assert.Contains(t, out, `href="#"`)
	assert.Contains(t, out, "javascript alert(1)")
}

func TestPreview_EscapedScriptStaysText(t *testing.T) {
	out := Preview("<script>alert(1)</script>")
	assert.NotContains(t, out, "<script")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		contains    []string
		notContains []string
	}{
		{
			name:        "disallowed elements dropped",
			input:       `<div><iframe src="https://x.example"></iframe><strong>ok</strong></div>`,
			contains:    []string{"<strong>ok</strong>"},
			notContains: []string{"iframe"},
		},
		{
			name:        "event handlers dropped",
			input:       `<img src="https://x.example/a.png" onerror="alert(1)"/>`,
			contains:    []string{`src="https://x.example/a.png"`},
			notContains: []string{"onerror"},
		},
		{
			name:        "data image source dropped",
			input:       `<img src="data:image/png;base64,AAAA"/>`,
			notContains: []string{"data:"},
		},
		{
			name:        "non-http css url removed, rest of style kept",
			input:       `<span style="color: red; background: url(data:x)">t</span>`,
			contains:    []string{"color: red"},
			notContains: []string{"url("},
		},
		{
			name:     "http css url kept",
			input:    `<span style="background: url(https://x.example/bg.png)">t</span>`,
			contains: []string{"url(https://x.example/bg.png)"},
		},
		{
			name:        "script in style removes the style",
			input:       `<span style="color: javascript:alert(1)">t</span>`,
			contains:    []string{">t</span>"},
			notContains: []string{"javascript"},
		},
		{
			name:        "ftp link allowed",
			input:       `<a href="ftp://files.example/a">a</a>`,
			contains:    []string{`href="ftp://files.example/a"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Sanitize(tt.input)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestPreview_MalformedInput(t *testing.T) {
	inputs := []string{
		"[url=]",
		"[img][/img]",
		"[list][*][*]",
		"[[b]]][/b]",
		"[color=]x[/color]",
		"[url=[url=https://a]b[/url]]c[/url]",
		strings.Repeat("[b]", 500),
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { _ = Preview(in) })
	}
}
