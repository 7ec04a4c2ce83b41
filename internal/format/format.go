// Package format holds the resolved unit of work: one playable entity,
// the stream variant chosen for it and at most one subtitle track, plus
// the output-path templating used to name its file.
package format

import (
	"github.com/famomatic/crunchdl/client"
)

// Format is one fully resolved download: everything needed to name the
// output file and drive one transcode.
type Format struct {
	Title string

	SeriesID  string
	SeasonID  string
	EpisodeID string

	SeriesName  string
	SeasonTitle string

	Audio client.Locale

	SeasonNumber  int
	EpisodeNumber int
	// RelativeEpisodeNumber is the episode's position within its own
	// season, counted from 1. Zero when the output template never asks
	// for it.
	RelativeEpisodeNumber int

	Stream client.StreamVariant

	// Subtitles holds zero or one chosen track. It is kept as a slice so
	// downstream handling is uniform with and without subtitles.
	Subtitles []client.SubtitleTrack
}

// NewFromEpisode builds a Format for an episode. seasonEpisodes, when
// non-nil, is the full episode list of the episode's season and is used
// to compute the relative episode number.
func NewFromEpisode(episode client.Episode, seasonEpisodes []client.Episode, stream client.StreamVariant, subtitles []client.SubtitleTrack) Format {
	relative := 0
	for i, sibling := range seasonEpisodes {
		if sibling.ID == episode.ID {
			relative = i + 1
			break
		}
	}
	return Format{
		Title:                 episode.Title,
		SeriesID:              episode.SeriesID,
		SeasonID:              episode.SeasonID,
		EpisodeID:             episode.ID,
		SeriesName:            episode.SeriesTitle,
		SeasonTitle:           episode.SeasonTitle,
		Audio:                 episode.AudioLocale,
		SeasonNumber:          episode.SeasonNumber,
		EpisodeNumber:         episode.Number,
		RelativeEpisodeNumber: relative,
		Stream:                stream,
		Subtitles:             subtitles,
	}
}

// NewFromMovie builds a Format for a movie. Movies have no hierarchy
// position, so season and episode numbers are fixed at 1.
func NewFromMovie(movie client.Movie, stream client.StreamVariant, subtitles []client.SubtitleTrack) Format {
	return Format{
		Title:         movie.Title,
		SeriesID:      movie.ListingID,
		EpisodeID:     movie.ID,
		SeriesName:    movie.Title,
		Audio:         movie.AudioLocale,
		SeasonNumber:  1,
		EpisodeNumber: 1,
		Stream:        stream,
		Subtitles:     subtitles,
	}
}
