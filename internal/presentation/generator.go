package presentation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultTemplate is the stock La Cale presentation.
const DefaultTemplate = `[center]
[img]{poster_url}[/img]

[size=6][color=#eab308][b]{title}[/b][/color][/size]

[b]Note :[/b] {rating}/10
[b]Genre :[/b] {genre}

[quote]{synopsis}[/quote]

[color=#eab308][b]--- DÉTAILS ---[/b][/color]

[b]Qualité :[/b] {quality}
[b]Format :[/b] {format}
[b]Codec Vidéo :[/b] {video_codec}
[b]Codec Audio :[/b] {audio_codec}
[b]Langues :[/b] {languages}
[b]Sous-titres :[/b] {subtitles}
[b]Taille :[/b] {size}


[i]Généré par Butin Maker[/i]
[/center]`

const templateFile = "presentation_template.txt"

var ErrEmptyTemplate = errors.New("template is empty")

// Generator renders presentations from the current template. A custom
// template lives in <dataDir>/templates and survives restarts.
type Generator struct {
	mu       sync.RWMutex
	template string
	dataDir  string
	logger   zerolog.Logger
}

// NewGenerator loads the custom template from dataDir, falling back to
// DefaultTemplate.
func NewGenerator(dataDir string, logger zerolog.Logger) *Generator {
	g := &Generator{
		template: DefaultTemplate,
		dataDir:  dataDir,
		logger:   logger.With().Str("component", "presentation").Logger(),
	}

	data, err := os.ReadFile(g.path())
	switch {
	case err == nil && strings.TrimSpace(string(data)) != "":
		g.template = string(data)
		g.logger.Info().Str("path", g.path()).Msg("Loaded custom presentation template")
	case err != nil && !errors.Is(err, os.ErrNotExist):
		g.logger.Warn().Err(err).Str("path", g.path()).Msg("Failed to read presentation template, using default")
	}
	return g
}

func (g *Generator) path() string {
	return filepath.Join(g.dataDir, "templates", templateFile)
}

// Template returns the active template.
func (g *Generator) Template() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.template
}

// SaveTemplate persists tpl and makes it the active template.
func (g *Generator) SaveTemplate(tpl string) error {
	if strings.TrimSpace(tpl) == "" {
		return ErrEmptyTemplate
	}

	if err := os.MkdirAll(filepath.Dir(g.path()), 0o755); err != nil {
		return fmt.Errorf("failed to create template directory: %w", err)
	}
	if err := os.WriteFile(g.path(), []byte(tpl), 0o644); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}

	g.mu.Lock()
	g.template = tpl
	g.mu.Unlock()

	g.logger.Info().Str("path", g.path()).Msg("Saved presentation template")
	return nil
}

// Generate substitutes the {placeholder} tokens of the template. Unknown
// tokens are left as written.
func (g *Generator) Generate(d Data) string {
	d = d.withDefaults()
	r := strings.NewReplacer(
		"{poster_url}", d.PosterURL,
		"{title}", d.Title,
		"{rating}", d.Rating,
		"{genre}", d.Genre,
		"{synopsis}", d.Synopsis,
		"{quality}", d.Quality,
		"{format}", d.Format,
		"{video_codec}", d.VideoCodec,
		"{audio_codec}", d.AudioCodec,
		"{languages}", d.Languages,
		"{subtitles}", d.Subtitles,
		"{size}", d.Size,
	)
	return r.Replace(g.Template())
}
