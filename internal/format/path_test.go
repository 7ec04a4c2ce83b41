package format

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/famomatic/crunchdl/client"
)

func sampleFormat() Format {
	return Format{
		Title:                 "The First Episode",
		SeriesID:              "SER1",
		SeasonID:              "SEA1",
		EpisodeID:             "EP1",
		SeriesName:            "Example Show",
		SeasonTitle:           "Season One",
		Audio:                 "ja-JP",
		SeasonNumber:          1,
		EpisodeNumber:         5,
		RelativeEpisodeNumber: 5,
		Stream:                client.StreamVariant{Width: 1920, Height: 1080},
	}
}

func TestFormatPath_AllPlaceholders(t *testing.T) {
	f := sampleFormat()
	got := f.FormatPath("{series_name}/S{season_number}E{episode_number} {title} [{audio} {resolution}].mp4", false)
	want := "Example Show/S1E5 The First Episode [ja-JP 1920x1080].mp4"
	if got != want {
		t.Fatalf("FormatPath() = %q, want %q", got, want)
	}
}

func TestFormatPath_IDs(t *testing.T) {
	f := sampleFormat()
	got := f.FormatPath("{series_id}-{season_id}-{episode_id}-{relative_episode_number}.ts", false)
	if got != "SER1-SEA1-EP1-5.ts" {
		t.Fatalf("FormatPath() = %q", got)
	}
}

func TestFormatPath_Sanitize(t *testing.T) {
	f := sampleFormat()
	f.Title = `A/B\C:D*E?F"G<H>I|J`
	got := f.FormatPath("{title}.mp4", true)
	if got != "ABCDEFGHIJ.mp4" {
		t.Fatalf("FormatPath() = %q, want unsafe characters stripped", got)
	}
}

func TestFormatPath_SanitizeKeepsTemplateSeparators(t *testing.T) {
	f := sampleFormat()
	f.SeriesName = "Show: Remix"
	got := f.FormatPath("out/{series_name}/{title}.mp4", true)
	if got != "out/Show Remix/The First Episode.mp4" {
		t.Fatalf("FormatPath() = %q, want template separators preserved", got)
	}
}

func TestFormatPath_Stdout(t *testing.T) {
	f := sampleFormat()
	if got := f.FormatPath(StdoutSentinel, true); got != StdoutSentinel {
		t.Fatalf("FormatPath(-) = %q, want the sentinel unchanged", got)
	}
}

func TestHasRelativeEpisode(t *testing.T) {
	if HasRelativeEpisode("{title}.mp4") {
		t.Fatalf("HasRelativeEpisode = true for template without the placeholder")
	}
	if !HasRelativeEpisode("{relative_episode_number} {title}.mp4") {
		t.Fatalf("HasRelativeEpisode = false for template with the placeholder")
	}
}

func TestFreeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "episode.mp4")

	got, existed := FreeFile(path)
	if existed || got != path {
		t.Fatalf("FreeFile(fresh) = (%q, %v), want original path and false", got, existed)
	}

	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	got, existed = FreeFile(path)
	if !existed {
		t.Fatalf("FreeFile(existing) existed = false, want true")
	}
	if want := filepath.Join(dir, "episode (1).mp4"); got != want {
		t.Fatalf("FreeFile(existing) = %q, want %q", got, want)
	}

	if err := os.WriteFile(got, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	got, _ = FreeFile(path)
	if want := filepath.Join(dir, "episode (2).mp4"); got != want {
		t.Fatalf("FreeFile(twice) = %q, want %q", got, want)
	}
}

func TestFreeFile_Stdout(t *testing.T) {
	got, existed := FreeFile(StdoutSentinel)
	if got != StdoutSentinel || existed {
		t.Fatalf("FreeFile(-) = (%q, %v), want sentinel and false", got, existed)
	}
}
