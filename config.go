package iconvault

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/esimov/iconvault/storage"
)

// Config holds every path, tool location and tuning knob of a pipeline run.
// Relative paths are resolved against ProjectRoot.
type Config struct {
	ProjectRoot     string `mapstructure:"project_root" yaml:"project_root"`
	CatalogDir      string `mapstructure:"catalog_dir" yaml:"catalog_dir"`
	ScratchDir      string `mapstructure:"scratch_dir" yaml:"scratch_dir"`
	IndexPath       string `mapstructure:"index_path" yaml:"index_path"`
	DescriptionName string `mapstructure:"description_name" yaml:"description_name"`
	// Sizes lists the square pixel sizes rendered for every icon.
	Sizes []int `mapstructure:"sizes" yaml:"sizes"`
	// Workers bounds the worker pool. Zero uses the number of CPUs.
	Workers int `mapstructure:"workers" yaml:"workers"`
	// TrackSize logs the file size before and after every job.
	TrackSize bool `mapstructure:"track_size" yaml:"track_size"`

	Optimize OptimizeConfig `mapstructure:"optimize" yaml:"optimize"`
	Quantize QuantizeConfig `mapstructure:"quantize" yaml:"quantize"`
	Upload   UploadConfig   `mapstructure:"upload" yaml:"upload"`
}

// OptimizeConfig configures the svgo stage.
type OptimizeConfig struct {
	Bin       string `mapstructure:"bin" yaml:"bin"`
	Precision int    `mapstructure:"precision" yaml:"precision"`
	Quiet     bool   `mapstructure:"quiet" yaml:"quiet"`
	Multipass bool   `mapstructure:"multipass" yaml:"multipass"`
}

// QuantizeConfig configures the pngquant stage.
type QuantizeConfig struct {
	Bin     string       `mapstructure:"bin" yaml:"bin"`
	Quality QualityRange `mapstructure:"quality" yaml:"quality"`
	Speed   int          `mapstructure:"speed" yaml:"speed"`
	Colors  int          `mapstructure:"colors" yaml:"colors"`
}

// Upload backends.
const (
	BackendS3     = "s3"
	BackendLocal  = "local"
	BackendMemory = "memory"
)

// UploadConfig configures the upload stage.
type UploadConfig struct {
	// Prefix is prepended to every object key.
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
	// Backend selects where objects go: s3, local or memory.
	Backend  string           `mapstructure:"backend" yaml:"backend"`
	LocalDir string           `mapstructure:"local_dir" yaml:"local_dir"`
	S3       storage.S3Config `mapstructure:"s3" yaml:"s3"`
}

// DefaultConfig returns the settings of the reference deployment.
func DefaultConfig() Config {
	return Config{
		ProjectRoot:     ".",
		CatalogDir:      filepath.Join("assets", "icons"),
		ScratchDir:      "tmp",
		IndexPath:       "icon-list.md",
		DescriptionName: DefaultDescriptionName,
		Sizes:           []int{96, 256, 512},
		Optimize: OptimizeConfig{
			Bin:       DefaultSvgoBin,
			Precision: 1,
			Quiet:     true,
			Multipass: true,
		},
		Quantize: QuantizeConfig{
			Bin:     DefaultPngquantBin,
			Quality: QualityRange{Min: 50, Max: 75},
		},
		Upload: UploadConfig{
			Prefix:   "icons",
			Backend:  BackendS3,
			LocalDir: filepath.Join("tmp", "bucket"),
			S3: storage.S3Config{
				Bucket: "sh-img-cdn",
				Region: "auto",
			},
		},
	}
}

// Validate rejects settings no stage could run with.
func (c Config) Validate() error {
	if len(c.Sizes) == 0 {
		return errors.New("config: at least one size is required")
	}
	for _, size := range c.Sizes {
		if size <= 0 {
			return fmt.Errorf("config: invalid size %d", size)
		}
	}
	if c.Optimize.Precision < 0 {
		return fmt.Errorf("config: invalid precision %d", c.Optimize.Precision)
	}
	if err := c.Quantize.Quality.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Quantize.Speed < 0 || c.Quantize.Speed > 11 {
		return fmt.Errorf("config: invalid speed %d", c.Quantize.Speed)
	}
	if c.Quantize.Colors != 0 && (c.Quantize.Colors < 2 || c.Quantize.Colors > 256) {
		return fmt.Errorf("config: invalid palette size %d", c.Quantize.Colors)
	}
	switch c.Upload.Backend {
	case BackendS3, BackendLocal, BackendMemory:
	default:
		return fmt.Errorf("config: unknown upload backend %q", c.Upload.Backend)
	}
	return nil
}

// Resolve joins path to the project root unless path is absolute.
func (c Config) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.ProjectRoot, path)
}
