package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/famomatic/crunchdl/client"
	"github.com/famomatic/crunchdl/internal/format"
	"github.com/famomatic/crunchdl/internal/logging"
	"github.com/famomatic/crunchdl/internal/pipeline"
	"github.com/famomatic/crunchdl/internal/prompt"
	"github.com/famomatic/crunchdl/internal/resolver"
	"github.com/famomatic/crunchdl/internal/transcode"
)

type downloadFlags struct {
	audio        string
	subtitle     string
	output       string
	resolution   string
	ffmpegPreset string
	skipExisting bool
	yes          bool
}

func newDownloadCommand(cctx *commandContext) *cobra.Command {
	flags := downloadFlags{}

	cmd := &cobra.Command{
		Use:   "download URL...",
		Short: "Download episodes or movies",
		Long: `Download episodes or movies.

The output file name supports the following placeholders:
  {title}                   → Title of the video
  {series_name}             → Name of the series
  {season_name}             → Name of the season
  {audio}                   → Audio language of the video
  {resolution}              → Resolution of the video
  {season_number}           → Number of the season
  {episode_number}          → Number of the episode
  {relative_episode_number} → Number of the episode relative to its season
  {series_id}               → ID of the series
  {season_id}               → ID of the season
  {episode_id}              → ID of the episode

Use "-" as output to write the raw result to stdout.

A URL may carry a trailing season/episode filter, e.g.
  https://www.crunchyroll.com/series/ABC/slug[S1E5-S2]`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, cctx, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.audio, "audio", "a", client.SystemLocale().String(), "Audio language")
	cmd.Flags().StringVarP(&flags.subtitle, "subtitle", "s", "", "Subtitle language")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "{title}.mp4", "Name of the output file")
	cmd.Flags().StringVarP(&flags.resolution, "resolution", "r", "best", "Video resolution ('best', 'worst', '1080p' or '1920x1080')")
	cmd.Flags().StringVar(&flags.ffmpegPreset, "ffmpeg-preset", "", "Preset for video converting ("+presetNames()+")")
	cmd.Flags().BoolVar(&flags.skipExisting, "skip-existing", false, "Skip files which are already existing")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Ignore interactive input")

	return cmd
}

// applyConfigDefaults overlays config-file values onto flags the user did
// not set explicitly. Runs after the config is loaded, so it cannot
// happen at flag-definition time.
func applyConfigDefaults(cmd *cobra.Command, flags *downloadFlags) {
	overlay := func(flag, key string, dst *string) {
		if !cmd.Flags().Changed(flag) {
			if v := viper.GetString(key); v != "" {
				*dst = v
			}
		}
	}
	overlay("audio", "audio", &flags.audio)
	overlay("subtitle", "subtitle", &flags.subtitle)
	overlay("output", "output", &flags.output)
	overlay("resolution", "resolution", &flags.resolution)
	overlay("ffmpeg-preset", "ffmpeg_preset", &flags.ffmpegPreset)
}

func presetNames() string {
	var names []string
	for _, p := range transcode.Presets() {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

func runDownload(cmd *cobra.Command, cctx *commandContext, flags downloadFlags, urls []string) error {
	applyConfigDefaults(cmd, &flags)

	invoker := transcode.NewInvoker(viper.GetString("ffmpeg_path"))
	if !invoker.Available() {
		return errors.New("FFmpeg is needed to run this command")
	}
	if flags.output != format.StdoutSentinel && filepath.Ext(flags.output) == "" {
		return errors.New("no file extension found, please specify one via `-o`")
	}

	// Payload bytes may go to stdout; keep log output off it.
	if flags.output == format.StdoutSentinel {
		cctx.logOut = os.Stderr
		cctx.log = logging.New(cctx.logOut, cctx.quiet, cctx.verbose)
	}
	log := cctx.log

	intent, preset, err := buildIntent(flags)
	if err != nil {
		return err
	}
	if intent.Subtitle != "" && flags.output != format.StdoutSentinel &&
		!strings.EqualFold(filepath.Ext(flags.output), ".mp4") {
		log.Warn().Msg("non mp4 output container detected, subtitles will be burned in and the video re-encoded")
	}

	catalog := cctx.newClient()

	var chooser resolver.SeasonChooser
	if !intent.AssumeYes && prompt.Interactive() {
		chooser = prompt.NewTerminal()
	}
	res := resolver.New(catalog, chooser, log)

	runner := &pipeline.Runner{
		HTTPClient:     catalog.HTTPClient(),
		Invoker:        invoker,
		Log:            log,
		Preset:         preset,
		OutputTemplate: flags.output,
		SkipExisting:   intent.SkipExisting,
	}

	ctx := cmd.Context()
	for i, url := range urls {
		media, filter, err := catalog.ResolveURL(ctx, url)
		if err != nil {
			return fmt.Errorf("url %s could not be parsed: %w", url, err)
		}
		log.Debug().Int("url", i+1).Msgf("resolved media %T", media)

		formats, err := res.Resolve(ctx, intent, media, filter)
		if err != nil {
			var resErr *resolver.ResolutionUnavailableError
			if errors.As(err, &resErr) {
				// Configuration error: this URL is done, the next ones
				// still get their chance.
				log.Error().Str("url", url).Msg(resErr.Error())
				continue
			}
			return err
		}
		if len(formats) == 0 {
			log.Info().Int("url", i+1).Msg("skipping url (no matching episodes found)")
			continue
		}

		logFormatSummary(log, formats)
		if err := runner.Run(ctx, formats); err != nil {
			return err
		}
	}
	return nil
}

func buildIntent(flags downloadFlags) (resolver.Intent, *transcode.Preset, error) {
	audio, err := client.ParseLocale(flags.audio)
	if err != nil {
		return resolver.Intent{}, nil, err
	}

	var subtitle client.Locale
	if flags.subtitle != "" {
		subtitle, err = client.ParseLocale(flags.subtitle)
		if err != nil {
			return resolver.Intent{}, nil, err
		}
	}

	resolution, err := resolver.ParseResolution(flags.resolution)
	if err != nil {
		return resolver.Intent{}, nil, err
	}

	var preset *transcode.Preset
	if flags.ffmpegPreset != "" {
		p, ok := transcode.FindPreset(flags.ffmpegPreset)
		if !ok {
			return resolver.Intent{}, nil, fmt.Errorf("unknown ffmpeg preset %q (available: %s)", flags.ffmpegPreset, presetNames())
		}
		preset = &p
	}

	return resolver.Intent{
		Audio:          audio,
		Subtitle:       subtitle,
		Resolution:     resolution,
		Preset:         flags.ffmpegPreset,
		OutputTemplate: flags.output,
		SkipExisting:   flags.skipExisting,
		AssumeYes:      flags.yes,
	}, preset, nil
}

func logFormatSummary(log zerolog.Logger, formats []format.Format) {
	lastSeason := -1
	for _, f := range formats {
		if f.SeasonNumber != lastSeason {
			log.Info().Msgf("%s Season %d (%s)", f.SeriesName, f.SeasonNumber, f.SeasonTitle)
			lastSeason = f.SeasonNumber
		}
		log.Info().Msgf("  %s » %s, %.2f FPS (S%02dE%02d)",
			f.Title, f.Stream.Resolution(), f.Stream.FPS, f.SeasonNumber, f.EpisodeNumber)
	}
}
