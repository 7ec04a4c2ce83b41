// Package resolver walks the media hierarchy (series → seasons → episodes,
// movie listings → movies) and flattens it into the list of formats that
// satisfy the user's audio, subtitle and resolution intent.
package resolver

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/famomatic/crunchdl/client"
	"github.com/famomatic/crunchdl/internal/format"
	"github.com/famomatic/crunchdl/internal/urlfilter"
)

// Intent is the immutable per-run download configuration.
type Intent struct {
	Audio          client.Locale
	Subtitle       client.Locale // empty means no subtitle requested
	Resolution     Resolution
	Preset         string
	OutputTemplate string
	SkipExisting   bool
	AssumeYes      bool // non-interactive: never prompt
}

// Catalog enumerates the remote media hierarchy. *client.Client satisfies it.
type Catalog interface {
	Seasons(ctx context.Context, seriesID string) ([]client.Season, error)
	Episodes(ctx context.Context, seasonID string) ([]client.Episode, error)
	Movies(ctx context.Context, listingID string) ([]client.Movie, error)
	Manifest(ctx context.Context, mediaID string, subtitle client.Locale) (*client.StreamManifest, error)
}

// SeasonChooser disambiguates seasons that share a season number (dub/sub
// duplicates). Implementations receive the full surviving season list and
// return it with at most one season per duplicated number.
type SeasonChooser interface {
	Choose(seasons []client.Season) ([]client.Season, error)
}

// Resolver resolves a media collection into formats.
type Resolver struct {
	catalog Catalog
	chooser SeasonChooser
	log     zerolog.Logger
}

// New builds a Resolver. chooser may be nil when the run is non-interactive;
// duplicated season numbers are then left uncollapsed.
func New(catalog Catalog, chooser SeasonChooser, log zerolog.Logger) *Resolver {
	return &Resolver{catalog: catalog, chooser: chooser, log: log}
}

// Resolve maps a media collection to the ordered list of formats matching
// the intent. An empty result means nothing matched; constraint misses are
// logged and skipped, and only an unsatisfiable exact resolution aborts
// with a ResolutionUnavailableError.
func (r *Resolver) Resolve(ctx context.Context, intent Intent, media client.MediaCollection, filter *urlfilter.Filter) ([]format.Format, error) {
	switch m := media.(type) {
	case client.Series:
		return r.resolveSeries(ctx, intent, m, filter)
	case client.Season:
		return r.resolveSeason(ctx, intent, m, filter)
	case client.Episode:
		f, err := r.resolveEpisode(ctx, intent, m, nil, filter, false)
		if err != nil || f == nil {
			return nil, err
		}
		return []format.Format{*f}, nil
	case client.MovieListing:
		return r.resolveMovieListing(ctx, intent, m, filter)
	case client.Movie:
		f, err := r.resolveMovie(ctx, intent, m)
		if err != nil || f == nil {
			return nil, err
		}
		return []format.Format{*f}, nil
	}
	return nil, fmt.Errorf("unsupported media collection %T", media)
}

func (r *Resolver) resolveSeries(ctx context.Context, intent Intent, series client.Series, filter *urlfilter.Filter) ([]format.Format, error) {
	if len(series.AudioLocales) > 0 && !client.HasAudioLocale(series.AudioLocales, intent.Audio) {
		r.log.Error().
			Str("series", series.Title).
			Stringer("audio", intent.Audio).
			Msg("series is not available with the requested audio")
		return nil, nil
	}

	seasons, err := r.catalog.Seasons(ctx, series.ID)
	if err != nil {
		return nil, err
	}

	// Pass 1: per season number, drop every season when none of the
	// members carries the requested audio (one diagnostic per number),
	// otherwise keep only the members that do.
	seasons = r.pruneSeasonsByAudio(seasons, series.Title, intent.Audio)

	// Pass 2: apply the URL filter. Done after the audio prune so that
	// duplicates the user excluded by URL never trigger the interactive
	// disambiguation below.
	kept := seasons[:0:0]
	for _, season := range seasons {
		if filter.IsSeasonValid(season.Number) {
			kept = append(kept, season)
		}
	}
	seasons = kept

	// Pass 3: interactive disambiguation of duplicated season numbers.
	// Non-interactive runs keep duplicates uncollapsed.
	if !intent.AssumeYes && r.chooser != nil && hasDuplicateSeasonNumbers(seasons) {
		seasons, err = r.chooser.Choose(seasons)
		if err != nil {
			return nil, err
		}
	}

	var formats []format.Format
	for _, season := range seasons {
		fmts, err := r.resolveSeason(ctx, intent, season, filter)
		if err != nil {
			return nil, err
		}
		formats = append(formats, fmts...)
	}
	return formats, nil
}

// pruneSeasonsByAudio removes seasons that do not carry the requested
// audio. Season-number groups where no member qualifies are reported once
// and dropped entirely.
func (r *Resolver) pruneSeasonsByAudio(seasons []client.Season, seriesTitle string, audio client.Locale) []client.Season {
	qualified := make(map[int]bool)
	for _, season := range seasons {
		if client.HasAudioLocale(season.AudioLocales, audio) {
			qualified[season.Number] = true
		}
	}

	for _, number := range seasonNumbers(seasons) {
		if !qualified[number] {
			r.log.Error().
				Int("season", number).
				Str("series", seriesTitle).
				Stringer("audio", audio).
				Msg("season is not available with the requested audio")
		}
	}

	kept := seasons[:0:0]
	for _, season := range seasons {
		if client.HasAudioLocale(season.AudioLocales, audio) {
			kept = append(kept, season)
		}
	}
	return kept
}

func seasonNumbers(seasons []client.Season) []int {
	seen := make(map[int]bool)
	var numbers []int
	for _, season := range seasons {
		if !seen[season.Number] {
			seen[season.Number] = true
			numbers = append(numbers, season.Number)
		}
	}
	sort.Ints(numbers)
	return numbers
}

func hasDuplicateSeasonNumbers(seasons []client.Season) bool {
	seen := make(map[int]bool)
	for _, season := range seasons {
		if seen[season.Number] {
			return true
		}
		seen[season.Number] = true
	}
	return false
}

func (r *Resolver) resolveSeason(ctx context.Context, intent Intent, season client.Season, filter *urlfilter.Filter) ([]format.Format, error) {
	if !filter.IsSeasonValid(season.Number) {
		return nil, nil
	}
	if !client.HasAudioLocale(season.AudioLocales, intent.Audio) {
		r.log.Error().
			Int("season", season.Number).
			Str("title", season.Title).
			Stringer("audio", intent.Audio).
			Msg("season is not available with the requested audio")
		return nil, nil
	}

	episodes, err := r.catalog.Episodes(ctx, season.ID)
	if err != nil {
		return nil, err
	}

	var formats []format.Format
	for _, episode := range episodes {
		f, err := r.resolveEpisode(ctx, intent, episode, episodes, filter, true)
		if err != nil {
			return nil, err
		}
		if f != nil {
			formats = append(formats, *f)
		}
	}
	return formats, nil
}

func (r *Resolver) resolveEpisode(ctx context.Context, intent Intent, episode client.Episode, seasonEpisodes []client.Episode, filter *urlfilter.Filter, filterAudio bool) (*format.Format, error) {
	if filterAudio && episode.AudioLocale != intent.Audio {
		r.log.Error().
			Int("episode", episode.Number).
			Str("title", episode.Title).
			Int("season", episode.SeasonNumber).
			Str("series", episode.SeriesTitle).
			Stringer("audio", intent.Audio).
			Msg("episode has no matching audio")
		return nil, nil
	}
	if !filter.IsEpisodeValid(episode.Number, episode.SeasonNumber) {
		// Routine narrowing by URL specificity, not an unmet constraint.
		return nil, nil
	}

	manifest, err := r.catalog.Manifest(ctx, episode.ID, "")
	if err != nil {
		return nil, err
	}

	var subtitles []client.SubtitleTrack
	if intent.Subtitle != "" {
		track, ok := manifest.Subtitles[intent.Subtitle]
		if !ok {
			r.log.Error().
				Int("episode", episode.Number).
				Str("title", episode.Title).
				Int("season", episode.SeasonNumber).
				Str("series", episode.SeriesTitle).
				Stringer("subtitle", intent.Subtitle).
				Msg("episode has no matching subtitles")
			return nil, nil
		}
		subtitles = []client.SubtitleTrack{track}
	}

	stream, ok := selectVariant(manifest.Variants, intent.Resolution)
	if !ok {
		return nil, &ResolutionUnavailableError{
			Resolution: intent.Resolution,
			Entity: fmt.Sprintf("episode %d (%s) of season %d of %s",
				episode.Number, episode.Title, episode.SeasonNumber, episode.SeriesTitle),
		}
	}

	if format.HasRelativeEpisode(intent.OutputTemplate) && seasonEpisodes == nil {
		seasonEpisodes, err = r.catalog.Episodes(ctx, episode.SeasonID)
		if err != nil {
			return nil, err
		}
	}

	f := format.NewFromEpisode(episode, seasonEpisodes, stream, subtitles)
	return &f, nil
}

func (r *Resolver) resolveMovieListing(ctx context.Context, intent Intent, listing client.MovieListing, _ *urlfilter.Filter) ([]format.Format, error) {
	movies, err := r.catalog.Movies(ctx, listing.ID)
	if err != nil {
		return nil, err
	}

	var formats []format.Format
	for _, movie := range movies {
		f, err := r.resolveMovie(ctx, intent, movie)
		if err != nil {
			return nil, err
		}
		if f != nil {
			formats = append(formats, *f)
		}
	}
	return formats, nil
}

func (r *Resolver) resolveMovie(ctx context.Context, intent Intent, movie client.Movie) (*format.Format, error) {
	manifest, err := r.catalog.Manifest(ctx, movie.ID, intent.Subtitle)
	if err != nil {
		return nil, err
	}

	var subtitles []client.SubtitleTrack
	if intent.Subtitle != "" {
		track, ok := manifest.Subtitles[intent.Subtitle]
		if !ok {
			r.log.Error().
				Str("movie", movie.Title).
				Stringer("subtitle", intent.Subtitle).
				Msg("movie has no matching subtitles")
			return nil, nil
		}
		subtitles = []client.SubtitleTrack{track}
	}

	stream, ok := selectVariant(manifest.Variants, intent.Resolution)
	if !ok {
		return nil, &ResolutionUnavailableError{
			Resolution: intent.Resolution,
			Entity:     fmt.Sprintf("movie %s", movie.Title),
		}
	}

	f := format.NewFromMovie(movie, stream, subtitles)
	return &f, nil
}
