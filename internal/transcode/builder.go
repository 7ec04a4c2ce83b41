package transcode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StdoutTarget redirects the transcoded bytes to standard output.
const StdoutTarget = "-"

// preferredExt is the container whose target extension keeps subtitles as
// a soft (player-selectable) track. Any other container forces burn-in.
const preferredExt = ".mp4"

// BuildOptions are the inputs to Build.
type BuildOptions struct {
	// Preset, when non-nil, supplies the input/output tuning arguments.
	// Otherwise both streams are codec-copied.
	Preset *Preset

	// VideoPath is the primary media input (the downloaded scratch file).
	VideoPath string

	// SubtitlePath is the subtitle scratch file; empty when no subtitle
	// track was selected.
	SubtitlePath string

	// Target is the requested destination: a file path or StdoutTarget.
	Target string

	// StagingPath overrides the generated staging file used when Target
	// is StdoutTarget. Mostly useful for tests.
	StagingPath string
}

// Spec is a fully built transcoder invocation: the ordered argument
// blocks plus the resolved target path.
type Spec struct {
	InputArgs    []string
	VideoPath    string
	SubtitleArgs []string
	OutputArgs   []string

	// Target is what ffmpeg writes to: the real output file, or the
	// staging file standing in for standard output.
	Target string

	// Destination is the requested target; equals StdoutTarget when the
	// result must be relayed to standard output after the run.
	Destination string
}

// Args assembles the complete ffmpeg argument sequence. Ordering is fixed:
// overwrite flag, input-side preset args, primary input, subtitle block,
// output-side args, target.
func (s *Spec) Args() []string {
	args := make([]string, 0, 8+len(s.InputArgs)+len(s.SubtitleArgs)+len(s.OutputArgs))
	args = append(args, "-y")
	args = append(args, s.InputArgs...)
	args = append(args, "-i", s.VideoPath)
	args = append(args, s.SubtitleArgs...)
	args = append(args, s.OutputArgs...)
	args = append(args, s.Target)
	return args
}

// Build constructs the transcoder invocation for one format. It is
// deterministic for a fixed set of options; its only side effect is
// creating the target's parent directory.
func Build(opts BuildOptions) (*Spec, error) {
	var inputArgs, outputArgs []string
	if opts.Preset != nil {
		inputArgs = append(inputArgs, opts.Preset.InputArgs...)
		outputArgs = append(outputArgs, opts.Preset.OutputArgs...)
	} else {
		outputArgs = defaultOutputArgs()
	}

	target := opts.Target
	spec := &Spec{
		InputArgs:   inputArgs,
		VideoPath:   opts.VideoPath,
		Destination: target,
	}

	if target == StdoutTarget {
		staging := opts.StagingPath
		if staging == "" {
			staging = filepath.Join(os.TempDir(), "crunchdl-"+uuid.NewString()+preferredExt)
		}
		target = staging
	} else {
		if filepath.Ext(target) == "" {
			return nil, fmt.Errorf("target %q has no file extension", target)
		}
		if dir := filepath.Dir(target); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
	}
	spec.Target = target

	if opts.SubtitlePath != "" {
		if strings.EqualFold(filepath.Ext(target), preferredExt) {
			// Soft-mux: the subtitle becomes an extra input, kept as a
			// selectable mov_text track marked forced.
			spec.SubtitleArgs = []string{
				"-i", opts.SubtitlePath,
				"-movflags", "faststart",
				"-c:s", "mov_text",
				"-disposition:s:s:0", "forced",
			}
		} else {
			// Burn-in: overlaying subtitles onto the picture re-encodes
			// the video stream, so the output arguments are rebuilt
			// without any codec-copy pair before the filter is added. A
			// copy directive and a pixel filter must never coexist.
			outputArgs = withoutCopyCodecs(outputArgs)
			spec.SubtitleArgs = []string{"-vf", "subtitles=" + opts.SubtitlePath}
		}
	}
	spec.OutputArgs = outputArgs

	return spec, nil
}

// withoutCopyCodecs rebuilds an output argument list leaving out the
// "-c:v copy" and "-c:a copy" pairs.
func withoutCopyCodecs(args []string) []string {
	kept := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if (args[i] == "-c:v" || args[i] == "-c:a") && i+1 < len(args) && args[i+1] == "copy" {
			i++
			continue
		}
		kept = append(kept, args[i])
	}
	return kept
}
