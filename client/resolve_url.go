package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/famomatic/crunchdl/internal/urlfilter"
)

// ResolveURL parses a media URL into the entity it points to plus the
// season/episode filter encoded in its optional bracket suffix.
//
// Supported forms:
//
//	https://host/series/<id>[/<slug>]        → Series
//	https://host/watch/<id>[/<slug>]         → Episode or Movie
//	https://host/movie_listing/<id>[/<slug>] → MovieListing
func (c *Client) ResolveURL(ctx context.Context, raw string) (MediaCollection, *urlfilter.Filter, error) {
	stripped, filter, err := urlfilter.Split(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	parsed, err := url.Parse(stripped)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	segments := splitPath(parsed.Path)
	if len(segments) < 2 {
		return nil, nil, fmt.Errorf("%w: %q is not a media url", ErrInvalidURL, raw)
	}

	kind, id := segments[0], segments[1]
	switch kind {
	case "series":
		series, err := c.Series(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return series, filter, nil
	case "watch":
		media, err := c.object(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return media, filter, nil
	case "movie_listing":
		listing, err := c.MovieListing(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return listing, filter, nil
	}
	return nil, nil, fmt.Errorf("%w: unsupported media path %q", ErrInvalidURL, parsed.Path)
}

func splitPath(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	// Locale-prefixed paths like /de/series/<id> carry a leading language
	// segment; skip it.
	if len(segments) > 0 {
		switch segments[0] {
		case "series", "watch", "movie_listing":
		default:
			if _, err := ParseLocale(segments[0]); err == nil {
				segments = segments[1:]
			}
		}
	}
	return segments
}
