package audio

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Prober measures media duration with ffprobe.
type Prober struct {
	ffprobe string
	run     Runner
}

// NewProber creates a prober for the ffprobe binary at ffprobePath. A nil run
// uses ExecRunner.
func NewProber(ffprobePath string, run Runner) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if run == nil {
		run = ExecRunner
	}
	return &Prober{ffprobe: ffprobePath, run: run}
}

// Duration returns the container duration of the file at path.
func (p *Prober) Duration(ctx context.Context, path string) (time.Duration, error) {
	out, err := p.run(ctx, p.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	return parseSeconds(string(out))
}

func parseSeconds(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing duration %q: %w", s, err)
	}
	if secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
