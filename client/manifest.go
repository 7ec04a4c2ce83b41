package client

import "fmt"

// StreamVariant is one concrete encoded rendition of an entity. Variants
// are mutually exclusive alternatives; the playlist URL is the opaque
// handle used to retrieve the media payload.
type StreamVariant struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FPS         float64 `json:"frame_rate"`
	PlaylistURL string  `json:"url"`
}

// Resolution renders the variant's pixel size, e.g. "1920x1080".
func (v StreamVariant) Resolution() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// SubtitleTrack is one subtitle rendition, keyed by locale in the manifest.
type SubtitleTrack struct {
	Locale Locale `json:"locale"`
	URL    string `json:"url"`
	Format string `json:"format"`
}

// StreamManifest lists the stream variants and subtitle tracks available
// for a playable entity.
type StreamManifest struct {
	Variants  []StreamVariant          `json:"variants"`
	Subtitles map[Locale]SubtitleTrack `json:"subtitles"`
}
