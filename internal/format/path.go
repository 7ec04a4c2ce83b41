package format

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// StdoutSentinel is the output path that redirects the final file to
// standard output instead of the filesystem.
const StdoutSentinel = "-"

// FormatPath substitutes the documented placeholders in the output
// template with this format's fields. When sanitize is set, substituted
// values are stripped of characters that are unsafe in file names; the
// template's own directory separators are kept as-is.
func (f Format) FormatPath(template string, sanitize bool) string {
	if template == StdoutSentinel {
		return StdoutSentinel
	}
	clean := func(s string) string {
		if sanitize {
			return sanitizeComponent(s)
		}
		return s
	}
	replacer := strings.NewReplacer(
		"{title}", clean(f.Title),
		"{series_name}", clean(f.SeriesName),
		"{season_name}", clean(f.SeasonTitle),
		"{audio}", clean(string(f.Audio)),
		"{resolution}", clean(f.Stream.Resolution()),
		"{season_number}", strconv.Itoa(f.SeasonNumber),
		"{episode_number}", strconv.Itoa(f.EpisodeNumber),
		"{relative_episode_number}", strconv.Itoa(f.RelativeEpisodeNumber),
		"{series_id}", clean(f.SeriesID),
		"{season_id}", clean(f.SeasonID),
		"{episode_id}", clean(f.EpisodeID),
	)
	return replacer.Replace(template)
}

// HasRelativeEpisode reports whether the template asks for the relative
// episode number, which is expensive to compute (it needs the season's
// full episode list).
func HasRelativeEpisode(template string) bool {
	return strings.Contains(template, "{relative_episode_number}")
}

var componentSanitizer = strings.NewReplacer(
	"/", "",
	"\\", "",
	":", "",
	"*", "",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

func sanitizeComponent(s string) string {
	return strings.TrimSpace(componentSanitizer.Replace(s))
}

// FreeFile returns a path that does not collide with an existing file,
// appending " (n)" before the extension until an unused name is found.
// The second result reports whether the original path already existed.
func FreeFile(path string) (string, bool) {
	if path == StdoutSentinel {
		return path, false
	}
	if _, err := os.Stat(path); err != nil {
		return path, false
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, i, ext)
		if _, err := os.Stat(candidate); err != nil {
			return candidate, true
		}
	}
}
