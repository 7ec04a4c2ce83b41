package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/famomatic/crunchdl/client"
	"github.com/famomatic/crunchdl/internal/format"
	"github.com/famomatic/crunchdl/internal/transcode"
)

func fakeFFmpeg(t *testing.T, fail bool) string {
	t.Helper()
	script := "#!/bin/sh\n"
	if fail {
		script += "echo 'Conversion failed!' >&2\nexit 1\n"
	} else {
		script += "for a; do last=$a; done\nprintf 'muxed' > \"$last\"\n"
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func mediaServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/media.m3u8", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "#EXTM3U\n#EXTINF:4.0,\nseg0.ts\n#EXT-X-ENDLIST\n")
	})
	mux.HandleFunc("/seg0.ts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("video-bytes"))
	})
	mux.HandleFunc("/subs.ass", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[Script Info]\nTitle: X\n")
	})
	return httptest.NewServer(mux)
}

func testFormat(server *httptest.Server, withSubtitle bool) format.Format {
	f := format.Format{
		Title:         "Episode One",
		SeasonNumber:  1,
		EpisodeNumber: 1,
		Audio:         "ja-JP",
		Stream: client.StreamVariant{
			Width: 1920, Height: 1080, FPS: 23.98,
			PlaylistURL: server.URL + "/media.m3u8",
		},
	}
	if withSubtitle {
		f.Subtitles = []client.SubtitleTrack{
			{Locale: "de-DE", URL: server.URL + "/subs.ass", Format: "ass"},
		}
	}
	return f
}

func TestRunner_EndToEnd(t *testing.T) {
	server := mediaServer(t)
	defer server.Close()

	dir := t.TempDir()
	runner := &Runner{
		HTTPClient:     server.Client(),
		Invoker:        transcode.NewInvoker(fakeFFmpeg(t, false)),
		Log:            zerolog.New(&bytes.Buffer{}),
		OutputTemplate: filepath.Join(dir, "{title}.mp4"),
	}

	if err := runner.Run(context.Background(), []format.Format{testFormat(server, true)}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	body, err := os.ReadFile(filepath.Join(dir, "Episode One.mp4"))
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if string(body) != "muxed" {
		t.Fatalf("output = %q, want transcoder payload", body)
	}
}

func TestRunner_SkipExisting(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "Episode One.mp4")
	if err := os.WriteFile(target, []byte("already here"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := &Runner{
		// No HTTP client: reaching the network would panic, proving the
		// skip happens before any download.
		Invoker:        transcode.NewInvoker("ffmpeg"),
		Log:            zerolog.New(&bytes.Buffer{}),
		OutputTemplate: filepath.Join(dir, "{title}.mp4"),
		SkipExisting:   true,
	}

	f := format.Format{Title: "Episode One"}
	if err := runner.Run(context.Background(), []format.Format{f}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	body, _ := os.ReadFile(target)
	if string(body) != "already here" {
		t.Fatalf("existing file modified: %q", body)
	}
}

func TestRunner_ExistingFileGetsFreeName(t *testing.T) {
	server := mediaServer(t)
	defer server.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Episode One.mp4"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := &Runner{
		HTTPClient:     server.Client(),
		Invoker:        transcode.NewInvoker(fakeFFmpeg(t, false)),
		Log:            zerolog.New(&bytes.Buffer{}),
		OutputTemplate: filepath.Join(dir, "{title}.mp4"),
	}
	if err := runner.Run(context.Background(), []format.Format{testFormat(server, false)}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "Episode One (1).mp4")); err != nil {
		t.Fatalf("renamed output missing: %v", err)
	}
	body, _ := os.ReadFile(filepath.Join(dir, "Episode One.mp4"))
	if string(body) != "old" {
		t.Fatalf("original file overwritten: %q", body)
	}
}

func TestRunner_TranscoderFailureContinues(t *testing.T) {
	server := mediaServer(t)
	defer server.Close()

	var log bytes.Buffer
	dir := t.TempDir()
	runner := &Runner{
		HTTPClient:     server.Client(),
		Invoker:        transcode.NewInvoker(fakeFFmpeg(t, true)),
		Log:            zerolog.New(&log),
		OutputTemplate: filepath.Join(dir, "{title} {episode_number}.mp4"),
	}

	first := testFormat(server, false)
	second := testFormat(server, false)
	second.EpisodeNumber = 2

	if err := runner.Run(context.Background(), []format.Format{first, second}); err != nil {
		t.Fatalf("Run() error = %v, want transcoder failures absorbed", err)
	}
	if got := strings.Count(log.String(), "transcoder failed"); got != 2 {
		t.Fatalf("transcoder failure logs = %d, want 2 (every format attempted)", got)
	}
	if !strings.Contains(log.String(), "Conversion failed!") {
		t.Fatalf("stderr not reported whole:\n%s", log.String())
	}
}

func TestRunner_DownloadFailureAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer server.Close()

	dir := t.TempDir()
	runner := &Runner{
		HTTPClient:     server.Client(),
		Invoker:        transcode.NewInvoker(fakeFFmpeg(t, false)),
		Log:            zerolog.New(&bytes.Buffer{}),
		OutputTemplate: filepath.Join(dir, "{title}.mp4"),
	}

	f := format.Format{
		Title:  "Episode One",
		Stream: client.StreamVariant{PlaylistURL: server.URL + "/media.m3u8"},
	}
	if err := runner.Run(context.Background(), []format.Format{f}); err == nil {
		t.Fatalf("Run() error = nil, want download failure to abort")
	}
}
