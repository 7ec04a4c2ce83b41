// Package prompt implements the interactive season disambiguation used
// when a series exposes several seasons sharing one season number
// (typically dub/sub duplicates).
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/famomatic/crunchdl/client"
)

// Interactive reports whether stdin is a terminal a user can answer on.
func Interactive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Terminal prompts on Out and reads choices from In.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

// NewTerminal returns a Terminal bound to stdin/stderr. Prompts go to
// stderr so they never mix with payload bytes on stdout.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr}
}

// Choose collapses duplicated season numbers to a single user-picked
// season each. Seasons with a unique number pass through unchanged and
// overall order is preserved.
func (t *Terminal) Choose(seasons []client.Season) ([]client.Season, error) {
	counts := make(map[int]int)
	for _, season := range seasons {
		counts[season.Number]++
	}

	chosen := make(map[int]string) // season number → chosen season id
	reader := bufio.NewReader(t.In)
	for _, season := range seasons {
		if counts[season.Number] < 2 {
			continue
		}
		if _, done := chosen[season.Number]; done {
			continue
		}

		var duplicates []client.Season
		for _, candidate := range seasons {
			if candidate.Number == season.Number {
				duplicates = append(duplicates, candidate)
			}
		}

		fmt.Fprintf(t.Out, "Series has multiple seasons numbered %d:\n", season.Number)
		for i, candidate := range duplicates {
			fmt.Fprintf(t.Out, "  [%d] %s (%s)\n", i+1, candidate.Title, joinLocales(candidate.AudioLocales))
		}

		index, err := t.readIndex(reader, len(duplicates))
		if err != nil {
			return nil, err
		}
		chosen[season.Number] = duplicates[index].ID
	}

	kept := seasons[:0:0]
	for _, season := range seasons {
		if id, dup := chosen[season.Number]; dup && season.ID != id {
			continue
		}
		kept = append(kept, season)
	}
	return kept, nil
}

func (t *Terminal) readIndex(reader *bufio.Reader, max int) (int, error) {
	for {
		fmt.Fprintf(t.Out, "Choose [1-%d]: ", max)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return 0, fmt.Errorf("read choice: %w", err)
		}
		n, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr == nil && n >= 1 && n <= max {
			return n - 1, nil
		}
		if err != nil {
			return 0, fmt.Errorf("invalid choice %q", strings.TrimSpace(line))
		}
	}
}

func joinLocales(locales []client.Locale) string {
	if len(locales) == 0 {
		return "unknown audio"
	}
	parts := make([]string, len(locales))
	for i, l := range locales {
		parts[i] = l.String()
	}
	return strings.Join(parts, ", ")
}
