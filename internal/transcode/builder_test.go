package transcode

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestBuild_DefaultCopyArgs(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.mp4")

	spec, err := Build(BuildOptions{VideoPath: "in.ts", Target: target})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := []string{"-y", "-i", "in.ts", "-c:v", "copy", "-c:a", "copy", target}
	if !reflect.DeepEqual(spec.Args(), want) {
		t.Fatalf("Args() = %v, want %v", spec.Args(), want)
	}
}

func TestBuild_ArgOrdering(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.mp4")
	preset, _ := FindPreset("nvidia-h264")

	spec, err := Build(BuildOptions{Preset: &preset, VideoPath: "in.ts", Target: target})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	args := spec.Args()
	if args[0] != "-y" {
		t.Fatalf("args[0] = %q, want -y", args[0])
	}
	// Input-side args come before the input, output-side after it.
	if args[1] != "-hwaccel" || args[2] != "cuda" {
		t.Fatalf("input args misplaced: %v", args)
	}
	if args[3] != "-i" || args[4] != "in.ts" {
		t.Fatalf("input file misplaced: %v", args)
	}
	if args[len(args)-1] != target {
		t.Fatalf("target not last: %v", args)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	dir := t.TempDir()
	opts := BuildOptions{
		VideoPath:    "in.ts",
		SubtitlePath: "subs.ass",
		Target:       filepath.Join(dir, "out.mkv"),
	}
	first, err := Build(opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	second, err := Build(opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !reflect.DeepEqual(first.Args(), second.Args()) {
		t.Fatalf("Build not deterministic:\n%v\n%v", first.Args(), second.Args())
	}
}

func TestBuild_SoftMuxForMP4(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.mp4")

	spec, err := Build(BuildOptions{VideoPath: "in.ts", SubtitlePath: "subs.ass", Target: target})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := []string{
		"-i", "subs.ass",
		"-movflags", "faststart",
		"-c:s", "mov_text",
		"-disposition:s:s:0", "forced",
	}
	if !reflect.DeepEqual(spec.SubtitleArgs, want) {
		t.Fatalf("SubtitleArgs = %v, want %v", spec.SubtitleArgs, want)
	}
	// Soft-mux keeps the copy codecs.
	joined := strings.Join(spec.OutputArgs, " ")
	if !strings.Contains(joined, "-c:v copy") || !strings.Contains(joined, "-c:a copy") {
		t.Fatalf("OutputArgs = %v, want copy codecs kept", spec.OutputArgs)
	}
}

func TestBuild_BurnInForOtherContainers(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.mkv")

	spec, err := Build(BuildOptions{VideoPath: "in.ts", SubtitlePath: "subs.ass", Target: target})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := []string{"-vf", "subtitles=subs.ass"}
	if !reflect.DeepEqual(spec.SubtitleArgs, want) {
		t.Fatalf("SubtitleArgs = %v, want %v", spec.SubtitleArgs, want)
	}
	// Burn-in re-encodes; a copy directive next to a pixel filter is a
	// broken invocation.
	joined := strings.Join(spec.Args(), " ")
	if strings.Contains(joined, "-c:v copy") || strings.Contains(joined, "-c:a copy") {
		t.Fatalf("Args() = %v, want no codec copy with burn-in", spec.Args())
	}
}

func TestBuild_BurnInKeepsPresetEncoder(t *testing.T) {
	dir := t.TempDir()
	preset, _ := FindPreset("h264-lossless")

	spec, err := Build(BuildOptions{
		Preset:       &preset,
		VideoPath:    "in.ts",
		SubtitlePath: "subs.ass",
		Target:       filepath.Join(dir, "out.mkv"),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	joined := strings.Join(spec.OutputArgs, " ")
	if !strings.Contains(joined, "-c:v libx264") {
		t.Fatalf("OutputArgs = %v, want encoder kept", spec.OutputArgs)
	}
	if strings.Contains(joined, "-c:a copy") {
		t.Fatalf("OutputArgs = %v, want audio copy stripped for burn-in", spec.OutputArgs)
	}
}

func TestBuild_StdoutStaging(t *testing.T) {
	staging := filepath.Join(t.TempDir(), "staging.mp4")

	spec, err := Build(BuildOptions{VideoPath: "in.ts", Target: StdoutTarget, StagingPath: staging})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if spec.Destination != StdoutTarget {
		t.Fatalf("Destination = %q, want %q", spec.Destination, StdoutTarget)
	}
	if spec.Target != staging {
		t.Fatalf("Target = %q, want staging file %q", spec.Target, staging)
	}
	if args := spec.Args(); args[len(args)-1] != staging {
		t.Fatalf("Args() writes to %q, want staging file", args[len(args)-1])
	}
}

func TestBuild_StdoutGeneratesStaging(t *testing.T) {
	spec, err := Build(BuildOptions{VideoPath: "in.ts", Target: StdoutTarget})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if spec.Target == StdoutTarget || spec.Target == "" {
		t.Fatalf("Target = %q, want a generated staging path", spec.Target)
	}
	if filepath.Ext(spec.Target) != ".mp4" {
		t.Fatalf("staging extension = %q, want .mp4", filepath.Ext(spec.Target))
	}
}

func TestBuild_StdoutSubtitleSoftMuxes(t *testing.T) {
	// The staging file is .mp4, so subtitles ride along as a soft track
	// even though the user asked for stdout.
	spec, err := Build(BuildOptions{
		VideoPath:    "in.ts",
		SubtitlePath: "subs.ass",
		Target:       StdoutTarget,
		StagingPath:  filepath.Join(t.TempDir(), "staging.mp4"),
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(spec.SubtitleArgs) == 0 || spec.SubtitleArgs[0] != "-i" {
		t.Fatalf("SubtitleArgs = %v, want soft-mux block", spec.SubtitleArgs)
	}
}

func TestBuild_MissingExtension(t *testing.T) {
	if _, err := Build(BuildOptions{VideoPath: "in.ts", Target: "out"}); err == nil {
		t.Fatalf("Build() error = nil, want missing extension error")
	}
}

func TestBuild_CreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "deeper", "out.mp4")

	if _, err := Build(BuildOptions{VideoPath: "in.ts", Target: target}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, err := Build(BuildOptions{VideoPath: "in.ts", Target: target}); err != nil {
		t.Fatalf("Build() second run error = %v", err)
	}
}

func TestWithoutCopyCodecs(t *testing.T) {
	cases := []struct {
		in   []string
		want []string
	}{
		{
			in:   []string{"-c:v", "copy", "-c:a", "copy"},
			want: []string{},
		},
		{
			in:   []string{"-c:v", "libx264", "-crf", "0", "-c:a", "copy"},
			want: []string{"-c:v", "libx264", "-crf", "0"},
		},
		{
			in:   []string{"-c:a", "aac"},
			want: []string{"-c:a", "aac"},
		},
	}
	for _, tc := range cases {
		got := withoutCopyCodecs(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("withoutCopyCodecs(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
