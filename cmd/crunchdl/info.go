package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/famomatic/crunchdl/client"
)

func newInfoCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info URL",
		Short: "Show information about series, seasons, episodes or movies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.Context(), cctx, args[0])
		},
	}
}

func runInfo(ctx context.Context, cctx *commandContext, url string) error {
	c := cctx.newClient()

	media, _, err := c.ResolveURL(ctx, url)
	if err != nil {
		return fmt.Errorf("url %s could not be parsed: %w", url, err)
	}

	switch m := media.(type) {
	case client.Series:
		return printSeries(ctx, c, m)
	case client.Season:
		episodes, err := c.Episodes(ctx, m.ID)
		if err != nil {
			return err
		}
		printEpisodes(m.SeriesTitle, episodes)
		return nil
	case client.Episode:
		printEpisodes(m.SeriesTitle, []client.Episode{m})
		return nil
	case client.MovieListing:
		movies, err := c.Movies(ctx, m.ID)
		if err != nil {
			return err
		}
		printMovies(m.Title, movies)
		return nil
	case client.Movie:
		printMovies(m.Title, []client.Movie{m})
		return nil
	}
	return fmt.Errorf("unsupported media type %T", media)
}

func printSeries(ctx context.Context, c *client.Client, series client.Series) error {
	seasons, err := c.Seasons(ctx, series.ID)
	if err != nil {
		return err
	}

	fmt.Println(series.Title)
	if len(series.AudioLocales) > 0 {
		fmt.Printf("Audio: %s\n", joinLocales(series.AudioLocales))
	}
	fmt.Println()

	rows := make([][]string, 0, len(seasons))
	for _, season := range seasons {
		rows = append(rows, []string{
			strconv.Itoa(season.Number),
			season.Title,
			joinLocales(season.AudioLocales),
			season.ID,
		})
	}
	fmt.Println(renderTable(
		[]string{"Season", "Title", "Audio", "ID"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	))
	return nil
}

func printEpisodes(heading string, episodes []client.Episode) {
	if heading != "" {
		fmt.Println(heading)
		fmt.Println()
	}

	rows := make([][]string, 0, len(episodes))
	for _, ep := range episodes {
		rows = append(rows, []string{
			fmt.Sprintf("S%02dE%02d", ep.SeasonNumber, ep.Number),
			ep.Title,
			ep.AudioLocale.Human(),
			formatRuntime(ep.Duration()),
			ep.ID,
		})
	}
	fmt.Println(renderTable(
		[]string{"Episode", "Title", "Audio", "Runtime", "ID"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
}

func printMovies(heading string, movies []client.Movie) {
	if heading != "" {
		fmt.Println(heading)
		fmt.Println()
	}

	rows := make([][]string, 0, len(movies))
	for _, movie := range movies {
		rows = append(rows, []string{
			movie.Title,
			movie.AudioLocale.Human(),
			formatRuntime(movie.Duration()),
			movie.ID,
		})
	}
	fmt.Println(renderTable(
		[]string{"Title", "Audio", "Runtime", "ID"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))
}

func joinLocales(locales []client.Locale) string {
	names := make([]string, 0, len(locales))
	for _, l := range locales {
		names = append(names, l.Human())
	}
	return strings.Join(names, ", ")
}

func formatRuntime(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
