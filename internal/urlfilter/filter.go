// Package urlfilter derives a season/episode inclusion predicate from the
// optional bracket suffix of a media URL, e.g.
//
//	https://host/series/ABC123/title[S1E5-S3E2]
//
// A point is written as S<n>, E<n> or S<n>E<n>. A single point keeps only
// that season/episode; a range "<from>-<to>" keeps everything between the
// two points, either of which may be omitted to leave that side open. An
// episode bound without a season applies within every season.
package urlfilter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Filter answers whether a season or (episode, season) pair is in scope.
// The zero value permits everything.
type Filter struct {
	from bound
	to   bound
}

// bound is one endpoint of the range; 0 means the dimension is open.
type bound struct {
	Season  int
	Episode int
}

var pointRe = regexp.MustCompile(`^(?:S(\d+))?(?:E(\d+))?$`)

// Split separates a raw URL from its trailing bracket filter. URLs without
// a filter yield the permit-all Filter.
func Split(raw string) (string, *Filter, error) {
	open := strings.IndexByte(raw, '[')
	if open < 0 {
		return raw, &Filter{}, nil
	}
	if !strings.HasSuffix(raw, "]") {
		return "", nil, fmt.Errorf("unterminated filter in %q", raw)
	}
	filter, err := Parse(raw[open+1 : len(raw)-1])
	if err != nil {
		return "", nil, err
	}
	return raw[:open], filter, nil
}

// Parse parses the inside of a bracket filter ("S1E5-S3E2", "S2", "E5-", …).
func Parse(spec string) (*Filter, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return &Filter{}, nil
	}

	fromSpec, toSpec, ranged := strings.Cut(spec, "-")
	from, err := parsePoint(fromSpec)
	if err != nil {
		return nil, err
	}
	if !ranged {
		return &Filter{from: from, to: from}, nil
	}
	to, err := parsePoint(toSpec)
	if err != nil {
		return nil, err
	}
	return &Filter{from: from, to: to}, nil
}

func parsePoint(spec string) (bound, error) {
	spec = strings.TrimSpace(spec)
	m := pointRe.FindStringSubmatch(spec)
	if m == nil {
		return bound{}, fmt.Errorf("invalid filter point %q", spec)
	}
	var b bound
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n == 0 {
			return bound{}, fmt.Errorf("invalid season number in %q", spec)
		}
		b.Season = n
	}
	if m[2] != "" {
		n, err := strconv.Atoi(m[2])
		if err != nil || n == 0 {
			return bound{}, fmt.Errorf("invalid episode number in %q", spec)
		}
		b.Episode = n
	}
	return b, nil
}

// IsSeasonValid reports whether the season number falls inside the filter's
// season range.
func (f *Filter) IsSeasonValid(season int) bool {
	if f.from.Season != 0 && season < f.from.Season {
		return false
	}
	if f.to.Season != 0 && season > f.to.Season {
		return false
	}
	return true
}

// IsEpisodeValid reports whether the (episode, season) pair falls inside
// the filter. Episode bounds only constrain their own boundary season; an
// episode bound without a season constrains every season.
func (f *Filter) IsEpisodeValid(episode, season int) bool {
	if !f.IsSeasonValid(season) {
		return false
	}
	if f.from.Episode != 0 && (f.from.Season == 0 || season == f.from.Season) && episode < f.from.Episode {
		return false
	}
	if f.to.Episode != 0 && (f.to.Season == 0 || season == f.to.Season) && episode > f.to.Episode {
		return false
	}
	return true
}
