package tmdb

// SearchMoviesResponse is the response from /search/movie.
type SearchMoviesResponse struct {
	Page         int           `json:"page"`
	Results      []MovieResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// MovieResult is a movie in search results.
type MovieResult struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date"`
	PosterPath    *string `json:"poster_path"`
	BackdropPath  *string `json:"backdrop_path"`
	VoteAverage   float64 `json:"vote_average"`
}

// MovieDetails is the response from /movie/{id}.
type MovieDetails struct {
	MovieResult
	Runtime int     `json:"runtime"`
	Tagline string  `json:"tagline"`
	ImdbID  string  `json:"imdb_id"`
	Genres  []Genre `json:"genres"`
}

// SearchTVResponse is the response from /search/tv.
type SearchTVResponse struct {
	Page    int        `json:"page"`
	Results []TVResult `json:"results"`
}

// TVResult is a series in search results.
type TVResult struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	OriginalName string  `json:"original_name"`
	Overview     string  `json:"overview"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
}

// TVDetails is the response from /tv/{id}.
type TVDetails struct {
	TVResult
	Status           string  `json:"status"`
	Genres           []Genre `json:"genres"`
	NumberOfSeasons  int     `json:"number_of_seasons"`
	NumberOfEpisodes int     `json:"number_of_episodes"`
}

// SearchMultiResponse is the response from /search/multi. Each result
// carries the union of movie and series fields.
type SearchMultiResponse struct {
	Page    int           `json:"page"`
	Results []MultiResult `json:"results"`
}

// MultiResult is a mixed search hit.
type MultiResult struct {
	MediaType     string  `json:"media_type"`
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	Name          string  `json:"name"`
	OriginalName  string  `json:"original_name"`
	FirstAirDate  string  `json:"first_air_date"`
	Overview      string  `json:"overview"`
	PosterPath    *string `json:"poster_path"`
	BackdropPath  *string `json:"backdrop_path"`
	VoteAverage   float64 `json:"vote_average"`
}

// Genre is a TMDB genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ErrorResponse is a TMDB error body.
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// Title is a normalized movie or series.
type Title struct {
	ID               int
	MediaType        string // "movie" or "tv"
	Title            string
	OriginalTitle    string
	Year             string
	ReleaseDate      string
	Overview         string
	VoteAverage      float64
	PosterURL        string
	BackdropURL      string
	Genres           []string
	Runtime          int
	Tagline          string
	ImdbID           string
	Status           string
	NumberOfSeasons  int
	NumberOfEpisodes int
}
