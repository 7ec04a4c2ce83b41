// Package pipeline drives one resolved format after another through
// download, subtitle retrieval and transcoding.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/famomatic/crunchdl/client"
	"github.com/famomatic/crunchdl/internal/downloader"
	"github.com/famomatic/crunchdl/internal/format"
	"github.com/famomatic/crunchdl/internal/subtitles"
	"github.com/famomatic/crunchdl/internal/transcode"
)

// Runner processes resolved formats sequentially. Only one ffmpeg child
// runs at a time, which keeps CPU and scratch-file use bounded.
type Runner struct {
	HTTPClient *http.Client
	Invoker    *transcode.Invoker
	Log        zerolog.Logger

	Preset         *transcode.Preset
	OutputTemplate string
	SkipExisting   bool
}

// Run processes every format in order. A failed ffmpeg run is reported
// and does not stop the remaining formats; every other error aborts.
func (r *Runner) Run(ctx context.Context, formats []format.Format) error {
	for _, f := range formats {
		err := r.runOne(ctx, f)
		if err == nil {
			continue
		}
		var exitErr *transcode.ExitError
		if errors.As(err, &exitErr) {
			r.Log.Error().
				Str("title", f.Title).
				Msg("transcoder failed:\n" + exitErr.Stderr)
			continue
		}
		return err
	}
	return nil
}

func (r *Runner) runOne(ctx context.Context, f format.Format) error {
	templated := f.FormatPath(r.OutputTemplate, true)
	target, existed := format.FreeFile(templated)
	if existed && r.SkipExisting {
		r.Log.Debug().Str("path", templated).Msg("skipping already existing file")
		return nil
	}

	r.Log.Info().
		Str("title", f.Title).
		Str("target", target).
		Str("episode", fmt.Sprintf("S%02dE%02d", f.SeasonNumber, f.EpisodeNumber)).
		Stringer("audio", f.Audio).
		Str("resolution", f.Stream.Resolution()).
		Float64("fps", f.Stream.FPS).
		Msg("downloading")

	videoPath := scratchPath(".ts")
	defer os.Remove(videoPath)

	if err := r.downloadVideo(ctx, f.Stream, videoPath); err != nil {
		return fmt.Errorf("download %s: %w", f.Title, err)
	}

	subtitlePath := ""
	if len(f.Subtitles) > 0 {
		track := f.Subtitles[0]
		subtitlePath = scratchPath("." + subtitleExt(track))
		defer os.Remove(subtitlePath)

		if err := subtitles.Fetch(ctx, r.HTTPClient, track, subtitlePath); err != nil {
			return fmt.Errorf("fetch %s subtitles for %s: %w", track.Locale, f.Title, err)
		}
	}

	spec, err := transcode.Build(transcode.BuildOptions{
		Preset:       r.Preset,
		VideoPath:    videoPath,
		SubtitlePath: subtitlePath,
		Target:       target,
	})
	if err != nil {
		return err
	}

	r.Log.Debug().Strs("args", spec.Args()).Msg("invoking ffmpeg")
	if err := r.Invoker.Invoke(ctx, spec); err != nil {
		return err
	}

	r.Log.Info().Str("title", f.Title).Str("target", target).Msg("finished")
	return nil
}

func (r *Runner) downloadVideo(ctx context.Context, stream client.StreamVariant, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	dl := downloader.NewHLSDownloader(r.HTTPClient, stream.PlaylistURL)
	dl.OnSegment = func(done, total int) {
		r.Log.Debug().Int("segment", done).Int("total", total).Msg("segment written")
	}
	return dl.Download(ctx, file)
}

func scratchPath(ext string) string {
	return filepath.Join(os.TempDir(), "crunchdl-"+uuid.NewString()+ext)
}

func subtitleExt(track client.SubtitleTrack) string {
	if track.Format != "" {
		return track.Format
	}
	return "ass"
}
