package resolver

import (
	"testing"

	"github.com/famomatic/crunchdl/client"
)

var selectionVariants = []client.StreamVariant{
	{Width: 1280, Height: 720, FPS: 23.98, PlaylistURL: "https://cdn/720.m3u8"},
	{Width: 1920, Height: 1080, FPS: 23.98, PlaylistURL: "https://cdn/1080.m3u8"},
	{Width: 640, Height: 360, FPS: 23.98, PlaylistURL: "https://cdn/360.m3u8"},
}

func TestSelectVariant_Best(t *testing.T) {
	got, ok := selectVariant(selectionVariants, Best)
	if !ok {
		t.Fatalf("selectVariant(best) ok = false")
	}
	if got.Height != 1080 {
		t.Fatalf("best height = %d, want 1080", got.Height)
	}
}

func TestSelectVariant_Worst(t *testing.T) {
	got, ok := selectVariant(selectionVariants, Worst)
	if !ok {
		t.Fatalf("selectVariant(worst) ok = false")
	}
	if got.Height != 360 {
		t.Fatalf("worst height = %d, want 360", got.Height)
	}
}

func TestSelectVariant_ExactMatch(t *testing.T) {
	got, ok := selectVariant(selectionVariants, Resolution{Width: 1280, Height: 720})
	if !ok {
		t.Fatalf("selectVariant(720p) ok = false")
	}
	if got.Height != 720 {
		t.Fatalf("height = %d, want 720", got.Height)
	}
}

func TestSelectVariant_MissingExact(t *testing.T) {
	if _, ok := selectVariant(selectionVariants, Resolution{Width: 854, Height: 480}); ok {
		t.Fatalf("selectVariant(480p) ok = true, want false")
	}
}

func TestSelectVariant_HeightTieKeepsManifestOrder(t *testing.T) {
	variants := []client.StreamVariant{
		{Width: 1920, Height: 1080, PlaylistURL: "first"},
		{Width: 1920, Height: 1080, PlaylistURL: "second"},
	}
	got, ok := selectVariant(variants, Resolution{Width: 1920, Height: 1080})
	if !ok {
		t.Fatalf("selectVariant ok = false")
	}
	if got.PlaylistURL != "first" {
		t.Fatalf("tie resolved to %q, want first manifest entry", got.PlaylistURL)
	}
}

func TestSelectVariant_Empty(t *testing.T) {
	if _, ok := selectVariant(nil, Best); ok {
		t.Fatalf("selectVariant(empty, best) ok = true, want false")
	}
}

func TestParseResolution(t *testing.T) {
	cases := []struct {
		in   string
		want Resolution
	}{
		{"best", Best},
		{"Best", Best},
		{"worst", Worst},
		{"1080p", Resolution{Width: 1920, Height: 1080}},
		{"720p", Resolution{Width: 1280, Height: 720}},
		{"1920x1080", Resolution{Width: 1920, Height: 1080}},
		{"640x360", Resolution{Width: 640, Height: 360}},
	}
	for _, tc := range cases {
		got, err := ParseResolution(tc.in)
		if err != nil {
			t.Errorf("ParseResolution(%q) error = %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseResolution(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseResolution_Invalid(t *testing.T) {
	for _, in := range []string{"", "p", "0p", "-1080p", "ax1080", "1920x", "1080"} {
		if _, err := ParseResolution(in); err == nil {
			t.Errorf("ParseResolution(%q) error = nil, want error", in)
		}
	}
}

func TestResolutionString(t *testing.T) {
	if got := Best.String(); got != "best" {
		t.Fatalf("Best.String() = %q, want best", got)
	}
	if got := Worst.String(); got != "worst" {
		t.Fatalf("Worst.String() = %q, want worst", got)
	}
	if got := (Resolution{Width: 1920, Height: 1080}).String(); got != "1920x1080" {
		t.Fatalf("String() = %q, want 1920x1080", got)
	}
}
