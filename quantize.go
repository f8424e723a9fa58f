package iconvault

import (
	"context"
	"fmt"
	"strconv"
)

// DefaultPngquantBin is the pngquant executable looked up on PATH.
const DefaultPngquantBin = "pngquant"

// QualityRange is the pngquant quality window in percent. Results scoring
// below Min are rejected by the tool; results above Max use fewer colors.
type QualityRange struct {
	Min int `mapstructure:"min" yaml:"min"`
	Max int `mapstructure:"max" yaml:"max"`
}

// Validate checks that 0 <= Min <= Max <= 100.
func (q QualityRange) Validate() error {
	if q.Min < 0 || q.Max > 100 || q.Min > q.Max {
		return fmt.Errorf("%w: quality range %s", ErrInvalidJob, q)
	}
	return nil
}

func (q QualityRange) String() string {
	return fmt.Sprintf("%d-%d", q.Min, q.Max)
}

// QuantizeJob compresses a png file with pngquant.
type QuantizeJob struct {
	Bin     string
	Src     string
	Dst     string
	Quality QualityRange
	// Speed trades quality for time, 1 (slowest) to 11 (fastest). Zero keeps the tool default.
	Speed int
	// Force overwrites an existing destination.
	Force bool
	// Colors caps the palette size. Zero keeps the tool default of 256.
	Colors int
}

var _ Job = QuantizeJob{}

// Source returns the input path.
func (q QuantizeJob) Source() string { return q.Src }

// Dest returns the output path.
func (q QuantizeJob) Dest() string {
	if q.Dst == "" {
		return q.Src
	}
	return q.Dst
}

// Args returns the pngquant command line, binary included.
// The source path always comes last. Without a destination the source is
// overwritten, which requires --force.
func (q QuantizeJob) Args() []string {
	bin := q.Bin
	if bin == "" {
		bin = DefaultPngquantBin
	}
	args := []string{bin, "--quality", q.Quality.String()}
	if q.Speed != 0 {
		args = append(args, "--speed", strconv.Itoa(q.Speed))
	}
	if q.Force || q.Dst == "" {
		args = append(args, "--force")
	}
	if q.Colors != 0 {
		args = append(args, strconv.Itoa(q.Colors))
	}
	if q.Dst != "" {
		args = append(args, "--output", q.Dst)
	} else {
		// pngquant would otherwise write <name>-fs8.png next to the source.
		args = append(args, "--ext", ".png")
	}
	return append(args, q.Src)
}

// Command returns the external command backing the job.
func (q QuantizeJob) Command() CommandJob {
	return CommandJob{Tool: "pngquant", Src: q.Src, Dst: q.Dest(), Args: q.Args()}
}

// Run executes pngquant. A result below the minimum quality makes the tool
// exit with a non-zero status, which fails the job.
func (q QuantizeJob) Run(ctx context.Context) error {
	if err := q.Quality.Validate(); err != nil {
		return err
	}
	return q.Command().Run(ctx)
}
