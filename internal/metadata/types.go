// Package metadata looks up movie and series metadata on TMDB and shapes it
// for the release wizard.
package metadata

import "github.com/butinmaker/butinmaker/internal/metadata/tmdb"

// Title types.
const (
	TypeMovie = "movie"
	TypeTV    = "tv"
)

// TitleMetadata is a movie or series as shown in the wizard. Genres are
// comma-joined. Detail-only fields are zero for search results.
type TitleMetadata struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Year          string  `json:"year,omitempty"`
	ReleaseDate   string  `json:"release_date,omitempty"`
	Overview      string  `json:"overview"`
	VoteAverage   float64 `json:"vote_average"`
	Genres        string  `json:"genres,omitempty"`
	Type          string  `json:"type"`
	PosterURL     string  `json:"poster_path,omitempty"`
	BackdropURL   string  `json:"backdrop_path,omitempty"`

	Runtime          int    `json:"runtime,omitempty"`
	Tagline          string `json:"tagline,omitempty"`
	ImdbID           string `json:"imdb_id,omitempty"`
	Status           string `json:"status,omitempty"`
	NumberOfSeasons  int    `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int    `json:"number_of_episodes,omitempty"`
}

// IsTV reports whether the title is a series.
func (t *TitleMetadata) IsTV() bool {
	return t != nil && t.Type == TypeTV
}

func fromTMDB(t tmdb.Title) TitleMetadata {
	genres := ""
	for i, g := range t.Genres {
		if i > 0 {
			genres += ", "
		}
		genres += g
	}
	return TitleMetadata{
		ID:               t.ID,
		Title:            t.Title,
		OriginalTitle:    t.OriginalTitle,
		Year:             t.Year,
		ReleaseDate:      t.ReleaseDate,
		Overview:         t.Overview,
		VoteAverage:      t.VoteAverage,
		Genres:           genres,
		Type:             t.MediaType,
		PosterURL:        t.PosterURL,
		BackdropURL:      t.BackdropURL,
		Runtime:          t.Runtime,
		Tagline:          t.Tagline,
		ImdbID:           t.ImdbID,
		Status:           t.Status,
		NumberOfSeasons:  t.NumberOfSeasons,
		NumberOfEpisodes: t.NumberOfEpisodes,
	}
}
