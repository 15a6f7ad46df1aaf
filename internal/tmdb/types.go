package tmdb

import "context"

// Genre is one entry of a title's genre list.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CastMember is one credited person.
type CastMember struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Credits carries the cast lists the catalog stores. GuestStars is only
// populated on episode payloads.
type Credits struct {
	Cast       []CastMember `json:"cast"`
	GuestStars []CastMember `json:"guest_stars"`
}

// CollectionRef is the lightweight collection pointer on a movie payload.
type CollectionRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Movie models the movie-details endpoint (credits appended).
type Movie struct {
	ID                  int64          `json:"id"`
	Title               string         `json:"title"`
	Overview            string         `json:"overview"`
	ReleaseDate         string         `json:"release_date"`
	VoteAverage         float64        `json:"vote_average"`
	Adult               bool           `json:"adult"`
	Genres              []Genre        `json:"genres"`
	Credits             Credits        `json:"credits"`
	BelongsToCollection *CollectionRef `json:"belongs_to_collection"`
}

// Season summarizes one season on a series payload.
type Season struct {
	SeasonNumber int `json:"season_number"`
	EpisodeCount int `json:"episode_count"`
}

// Series models the TV-details endpoint (credits appended).
type Series struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Overview     string   `json:"overview"`
	FirstAirDate string   `json:"first_air_date"`
	VoteAverage  float64  `json:"vote_average"`
	Adult        bool     `json:"adult"`
	Genres       []Genre  `json:"genres"`
	Credits      Credits  `json:"credits"`
	Seasons      []Season `json:"seasons"`
}

// Episode models the episode-details endpoint (credits appended).
type Episode struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	AirDate       string  `json:"air_date"`
	SeasonNumber  int     `json:"season_number"`
	EpisodeNumber int     `json:"episode_number"`
	VoteAverage   float64 `json:"vote_average"`
	Credits       Credits `json:"credits"`
}

// CollectionPart is one movie belonging to a collection.
type CollectionPart struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Collection models the collection-details endpoint.
type Collection struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Overview string           `json:"overview"`
	Parts    []CollectionPart `json:"parts"`
}

// SearchResult is a single search match. Movies populate Title and
// ReleaseDate; series populate Name and FirstAirDate.
type SearchResult struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	Adult        bool    `json:"adult"`
}

// SearchResponse models the paginated search payload.
type SearchResponse struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// Provider defines the metadata operations the engine, relink, and
// fill-up flows depend on.
type Provider interface {
	SearchMovie(ctx context.Context, query string, year int) (*SearchResponse, error)
	SearchSeries(ctx context.Context, query string, year int) (*SearchResponse, error)
	MovieDetails(ctx context.Context, movieID int64) (*Movie, error)
	SeriesDetails(ctx context.Context, seriesID int64) (*Series, error)
	EpisodeDetails(ctx context.Context, seriesID int64, season, episode int) (*Episode, error)
	CollectionDetails(ctx context.Context, collectionID int64) (*Collection, error)
}
