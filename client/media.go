package client

import "time"

// MediaCollection is the closed set of media entities a URL can point to.
// It is implemented by Series, Season, Episode, MovieListing and Movie;
// consumers dispatch by type switch.
type MediaCollection interface {
	mediaCollection()
}

// Series is a show with one or more seasons.
type Series struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`

	// AudioLocales lists the dubs the series is available in. An empty
	// list means the API did not declare any and no audio filtering can
	// happen at the series level.
	AudioLocales []Locale `json:"audio_locales"`
}

// Season is one season of a series. Crunchyroll-style catalogs expose
// dub and sub versions of the same season as distinct Season entities
// sharing a season number.
type Season struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Number       int      `json:"season_number"`
	SeriesID     string   `json:"series_id"`
	SeriesTitle  string   `json:"series_title"`
	AudioLocales []Locale `json:"audio_locales"`
}

// Episode is a single playable episode.
type Episode struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Number       int     `json:"episode_number"`
	SeasonID     string  `json:"season_id"`
	SeasonTitle  string  `json:"season_title"`
	SeasonNumber int     `json:"season_number"`
	SeriesID     string  `json:"series_id"`
	SeriesTitle  string  `json:"series_title"`
	AudioLocale  Locale  `json:"audio_locale"`
	DurationMS   int64   `json:"duration_ms"`
	FPS          float64 `json:"frame_rate,omitempty"`
}

// Duration returns the episode runtime.
func (e Episode) Duration() time.Duration {
	return time.Duration(e.DurationMS) * time.Millisecond
}

// MovieListing groups one or more movies (e.g. a film series).
type MovieListing struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Movie is a single playable movie.
type Movie struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ListingID   string `json:"listing_id"`
	AudioLocale Locale `json:"audio_locale"`
	DurationMS  int64  `json:"duration_ms"`
}

// Duration returns the movie runtime.
func (m Movie) Duration() time.Duration {
	return time.Duration(m.DurationMS) * time.Millisecond
}

func (Series) mediaCollection()       {}
func (Season) mediaCollection()       {}
func (Episode) mediaCollection()      {}
func (MovieListing) mediaCollection() {}
func (Movie) mediaCollection()        {}
