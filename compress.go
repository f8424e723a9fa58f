package iconvault

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CompressJobs walks dirIn for png files and builds one pngquant job per file,
// writing to the same relative path under dirOut. The output directories are
// created along the way. When dirOut lies inside dirIn its subtree is skipped.
func CompressJobs(dirIn, dirOut string, cfg QuantizeConfig) ([]Job, error) {
	absIn, err := filepath.Abs(dirIn)
	if err != nil {
		return nil, err
	}
	absOut, err := filepath.Abs(dirOut)
	if err != nil {
		return nil, err
	}
	if fi, err := os.Stat(absIn); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSourceNotFound, dirIn)
	}

	var jobs []Job
	err = filepath.WalkDir(absIn, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == absOut && absOut != absIn {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.EqualFold(filepath.Ext(path), ".png") {
			return nil
		}
		rel, err := filepath.Rel(absIn, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(absOut, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
		jobs = append(jobs, QuantizeJob{
			Bin:     cfg.Bin,
			Src:     path,
			Dst:     dst,
			Quality: cfg.Quality,
			Speed:   cfg.Speed,
			Force:   true,
			Colors:  cfg.Colors,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to walk %s: %w", dirIn, err)
	}
	return jobs, nil
}

// Compress quantizes every png below dirIn into the mirrored tree under dirOut,
// using the quantize settings of the pipeline. It does not touch the catalog.
func (p *Pipeline) Compress(ctx context.Context, dirIn, dirOut string) ([]Outcome, error) {
	jobs, err := CompressJobs(dirIn, dirOut, p.cfg.Quantize)
	if err != nil {
		return nil, err
	}
	p.notify(StageQuantize, len(jobs))
	return p.runner.WithLabel("Compressing").Run(ctx, jobs)
}
