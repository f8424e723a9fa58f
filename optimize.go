package iconvault

import (
	"context"
	"strconv"
)

// DefaultSvgoBin is the svgo executable looked up on PATH.
const DefaultSvgoBin = "svgo"

// OptimizeJob rewrites an svg file through svgo.
type OptimizeJob struct {
	Bin string
	Src string
	// Dst is commonly the same as Src, in which case the file is optimized in place.
	// An empty Dst means in place as well.
	Dst string
	// Precision is the number of decimals kept for coordinates.
	// Zero leaves the svgo default in place.
	Precision int
	Quiet     bool
	Multipass bool
}

var _ Job = OptimizeJob{}

// Source returns the input path.
func (o OptimizeJob) Source() string { return o.Src }

// Dest returns the output path, or the input path for in-place runs.
func (o OptimizeJob) Dest() string {
	if o.Dst == "" {
		return o.Src
	}
	return o.Dst
}

// Args returns the svgo command line, binary included.
func (o OptimizeJob) Args() []string {
	bin := o.Bin
	if bin == "" {
		bin = DefaultSvgoBin
	}
	args := []string{bin, "--input", o.Src, "--output", o.Dest()}
	if o.Precision != 0 {
		args = append(args, "--precision", strconv.Itoa(o.Precision))
	}
	if o.Quiet {
		args = append(args, "--quiet")
	}
	if o.Multipass {
		args = append(args, "--multipass")
	}
	return args
}

// Command returns the external command backing the job.
func (o OptimizeJob) Command() CommandJob {
	return CommandJob{Tool: "svgo", Src: o.Src, Dst: o.Dest(), Args: o.Args()}
}

// Run executes svgo and overwrites the destination.
func (o OptimizeJob) Run(ctx context.Context) error {
	return o.Command().Run(ctx)
}
