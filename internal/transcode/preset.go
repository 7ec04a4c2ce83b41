// Package transcode builds ffmpeg argument sequences for the resolved
// formats and drives the ffmpeg child process.
package transcode

import "strings"

// Preset is a named ffmpeg tuning profile expanding to fixed input-side
// and output-side argument lists.
type Preset struct {
	Name        string
	Description string
	InputArgs   []string
	OutputArgs  []string
}

var presets = []Preset{
	{
		Name:        "h264",
		Description: "Re-encode video with libx264 (widely compatible)",
		OutputArgs:  []string{"-c:v", "libx264", "-preset", "medium", "-crf", "23", "-c:a", "aac"},
	},
	{
		Name:        "h264-lossless",
		Description: "Re-encode video with libx264 at lossless quality",
		OutputArgs:  []string{"-c:v", "libx264", "-preset", "medium", "-crf", "0", "-c:a", "copy"},
	},
	{
		Name:        "h265",
		Description: "Re-encode video with libx265 (smaller files)",
		OutputArgs:  []string{"-c:v", "libx265", "-preset", "medium", "-crf", "26", "-c:a", "aac"},
	},
	{
		Name:        "av1",
		Description: "Re-encode video with libaom-av1 (smallest files, slow)",
		OutputArgs:  []string{"-c:v", "libaom-av1", "-crf", "30", "-b:v", "0", "-c:a", "aac"},
	},
	{
		Name:        "nvidia-h264",
		Description: "Hardware h264 encode via NVENC",
		InputArgs:   []string{"-hwaccel", "cuda"},
		OutputArgs:  []string{"-c:v", "h264_nvenc", "-preset", "p5", "-c:a", "aac"},
	},
	{
		Name:        "nvidia-h265",
		Description: "Hardware h265 encode via NVENC",
		InputArgs:   []string{"-hwaccel", "cuda"},
		OutputArgs:  []string{"-c:v", "hevc_nvenc", "-preset", "p5", "-c:a", "aac"},
	},
}

// Presets lists the available presets.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// FindPreset looks a preset up by name, case-insensitively.
func FindPreset(name string) (Preset, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// defaultOutputArgs is the no-preset output: re-wrap both streams without
// re-encoding.
func defaultOutputArgs() []string {
	return []string{"-c:v", "copy", "-c:a", "copy"}
}
