package iconvault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/esimov/iconvault/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Stage is one step of the publish pipeline.
type Stage int

// The stages always run in this order.
const (
	StageOptimize Stage = iota
	StageRasterize
	StageQuantize
	StageUpload
)

// AllStages lists every stage in execution order.
var AllStages = []Stage{StageOptimize, StageRasterize, StageQuantize, StageUpload}

var stageNames = map[Stage]string{
	StageOptimize:  "optimize",
	StageRasterize: "rasterize",
	StageQuantize:  "quantize",
	StageUpload:    "upload",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// ParseStage returns the stage called name.
func ParseStage(name string) (Stage, error) {
	for stage, n := range stageNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return stage, nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", name)
}

// StageReport sums up one executed stage.
type StageReport struct {
	Stage   Stage
	Jobs    int
	Elapsed time.Duration
}

// Summary is the report of a pipeline run.
type Summary struct {
	RunID  string
	Assets int
	Stages []StageReport
}

// Pipeline turns the catalog into optimized svg files, quantized png
// renditions, uploaded objects and a markdown index.
type Pipeline struct {
	cfg     Config
	catalog *Catalog
	runner  *BatchRunner
	bucket  storage.Bucket
	log     zerolog.Logger

	// OnStage, if set, is called before each stage starts.
	OnStage func(stage Stage, jobs int)
}

// NewPipeline validates cfg and builds a pipeline. The bucket is only
// required by the upload stage and may be nil otherwise.
func NewPipeline(cfg Config, bucket storage.Bucket, logger zerolog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	runner := NewBatchRunner(cfg.Workers, logger)
	runner.TrackSize = cfg.TrackSize

	return &Pipeline{
		cfg:     cfg,
		catalog: NewCatalog(cfg.Resolve(cfg.CatalogDir), cfg.DescriptionName),
		runner:  runner,
		bucket:  bucket,
		log:     logger,
	}, nil
}

// Config returns the pipeline settings.
func (p *Pipeline) Config() Config { return p.cfg }

// Catalog returns the asset catalog the pipeline works on.
func (p *Pipeline) Catalog() *Catalog { return p.catalog }

// ScratchPath returns where the unquantized rendition of asset is written.
func (p *Pipeline) ScratchPath(asset IconAsset, width, height int) string {
	return filepath.Join(p.cfg.Resolve(p.cfg.ScratchDir), asset.Name, PNGName(asset.Name, width, height))
}

// OptimizeJobs builds one in-place svgo job per asset.
func (p *Pipeline) OptimizeJobs(assets []IconAsset) []Job {
	jobs := make([]Job, 0, len(assets))
	for _, asset := range assets {
		jobs = append(jobs, OptimizeJob{
			Bin:       p.cfg.Optimize.Bin,
			Src:       asset.SVGPath(),
			Dst:       asset.SVGPath(),
			Precision: p.cfg.Optimize.Precision,
			Quiet:     p.cfg.Optimize.Quiet,
			Multipass: p.cfg.Optimize.Multipass,
		})
	}
	return jobs
}

// RasterizeJobs builds one render job per asset and size, targeting the scratch directory.
func (p *Pipeline) RasterizeJobs(assets []IconAsset) []Job {
	jobs := make([]Job, 0, len(assets)*len(p.cfg.Sizes))
	for _, asset := range assets {
		for _, size := range p.cfg.Sizes {
			jobs = append(jobs, RasterizeJob{
				Src:    asset.SVGPath(),
				Dst:    p.ScratchPath(asset, size, size),
				Width:  size,
				Height: size,
			})
		}
	}
	return jobs
}

// QuantizeJobs builds one pngquant job per asset and size, moving the scratch
// rendition into the asset directory.
func (p *Pipeline) QuantizeJobs(assets []IconAsset) []Job {
	jobs := make([]Job, 0, len(assets)*len(p.cfg.Sizes))
	for _, asset := range assets {
		for _, size := range p.cfg.Sizes {
			jobs = append(jobs, QuantizeJob{
				Bin:     p.cfg.Quantize.Bin,
				Src:     p.ScratchPath(asset, size, size),
				Dst:     asset.PNGPath(size, size),
				Quality: p.cfg.Quantize.Quality,
				Speed:   p.cfg.Quantize.Speed,
				Force:   true,
				Colors:  p.cfg.Quantize.Colors,
			})
		}
	}
	return jobs
}

// Optimize rewrites every asset's svg in place.
func (p *Pipeline) Optimize(ctx context.Context, assets []IconAsset) ([]Outcome, error) {
	return p.optimize(ctx, p.runner, assets)
}

func (p *Pipeline) optimize(ctx context.Context, runner *BatchRunner, assets []IconAsset) ([]Outcome, error) {
	return runner.WithLabel("Optimizing").Run(ctx, p.OptimizeJobs(assets))
}

// Rasterize renders every asset at every configured size into the scratch directory.
func (p *Pipeline) Rasterize(ctx context.Context, assets []IconAsset) ([]Outcome, error) {
	return p.rasterize(ctx, p.runner, assets)
}

func (p *Pipeline) rasterize(ctx context.Context, runner *BatchRunner, assets []IconAsset) ([]Outcome, error) {
	for _, asset := range assets {
		dir := filepath.Join(p.cfg.Resolve(p.cfg.ScratchDir), asset.Name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWrite, err)
		}
	}
	return runner.WithLabel("Rendering").Run(ctx, p.RasterizeJobs(assets))
}

// Quantize compresses the scratch renditions into the asset directories.
func (p *Pipeline) Quantize(ctx context.Context, assets []IconAsset) ([]Outcome, error) {
	return p.quantize(ctx, p.runner, assets)
}

func (p *Pipeline) quantize(ctx context.Context, runner *BatchRunner, assets []IconAsset) ([]Outcome, error) {
	return runner.WithLabel("Compressing").Run(ctx, p.QuantizeJobs(assets))
}

// Index regenerates the markdown index of the whole catalog.
func (p *Pipeline) Index() error {
	return WriteIndex(p.cfg.Resolve(p.cfg.IndexPath), p.catalog.ListAll())
}

// Run executes the requested stages over the whole catalog. Stages always run
// in their fixed order and each one waits for the previous one to finish.
// With no stage given every stage runs.
func (p *Pipeline) Run(ctx context.Context, stages ...Stage) (*Summary, error) {
	if len(stages) == 0 {
		stages = AllStages
	}
	stages = normalizeStages(stages)

	runID := uuid.New().String()
	log := p.log.With().Str("run_id", runID).Logger()
	runner := p.runner.WithLabel(p.runner.Label)
	runner.Logger = log

	assets := p.catalog.ListAll()
	summary := &Summary{RunID: runID, Assets: len(assets)}
	log.Info().Int("assets", len(assets)).Str("root", p.catalog.Root).Msg("starting pipeline")

	for _, stage := range stages {
		now := time.Now()
		jobs, err := p.runStage(ctx, stage, assets, runner, log)
		summary.Stages = append(summary.Stages, StageReport{
			Stage:   stage,
			Jobs:    jobs,
			Elapsed: time.Since(now),
		})
		if err != nil {
			log.Error().Err(err).Str("stage", stage.String()).Msg("stage failed")
			return summary, fmt.Errorf("%s: %w", stage, err)
		}
		log.Info().
			Str("stage", stage.String()).
			Int("jobs", jobs).
			Dur("elapsed", time.Since(now)).
			Msg("stage completed")
	}
	return summary, nil
}

// runStage executes one stage with the logger and runner of the current run.
func (p *Pipeline) runStage(ctx context.Context, stage Stage, assets []IconAsset, runner *BatchRunner, log zerolog.Logger) (int, error) {
	var (
		outcomes []Outcome
		err      error
	)
	switch stage {
	case StageOptimize:
		p.notify(stage, len(assets))
		outcomes, err = p.optimize(ctx, runner, assets)
	case StageRasterize:
		p.notify(stage, len(assets)*len(p.cfg.Sizes))
		outcomes, err = p.rasterize(ctx, runner, assets)
	case StageQuantize:
		p.notify(stage, len(assets)*len(p.cfg.Sizes))
		outcomes, err = p.quantize(ctx, runner, assets)
	case StageUpload:
		p.notify(stage, len(assets)*(len(p.cfg.Sizes)+1))
		mappings, err := p.upload(ctx, log, assets)
		if err != nil {
			return len(mappings), err
		}
		return len(mappings), p.Index()
	default:
		return 0, fmt.Errorf("unknown stage %d", int(stage))
	}
	return len(outcomes), err
}

func (p *Pipeline) notify(stage Stage, jobs int) {
	if p.OnStage != nil {
		p.OnStage(stage, jobs)
	}
}

// normalizeStages removes duplicates and restores execution order.
func normalizeStages(stages []Stage) []Stage {
	seen := make(map[Stage]bool, len(stages))
	out := make([]Stage, 0, len(stages))
	for _, s := range stages {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
