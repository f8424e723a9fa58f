package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/esimov/iconvault"
	"github.com/esimov/iconvault/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment variable, e.g. ICONVAULT_UPLOAD_S3_ACCESS_KEY.
const envPrefix = "ICONVAULT"

// setDefaults registers every config key with viper, so that environment
// variables are picked up for keys absent from the config file.
func setDefaults(v *viper.Viper) {
	def := iconvault.DefaultConfig()

	v.SetDefault("project_root", def.ProjectRoot)
	v.SetDefault("catalog_dir", def.CatalogDir)
	v.SetDefault("scratch_dir", def.ScratchDir)
	v.SetDefault("index_path", def.IndexPath)
	v.SetDefault("description_name", def.DescriptionName)
	v.SetDefault("sizes", def.Sizes)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("track_size", def.TrackSize)

	v.SetDefault("optimize.bin", def.Optimize.Bin)
	v.SetDefault("optimize.precision", def.Optimize.Precision)
	v.SetDefault("optimize.quiet", def.Optimize.Quiet)
	v.SetDefault("optimize.multipass", def.Optimize.Multipass)

	v.SetDefault("quantize.bin", def.Quantize.Bin)
	v.SetDefault("quantize.quality.min", def.Quantize.Quality.Min)
	v.SetDefault("quantize.quality.max", def.Quantize.Quality.Max)
	v.SetDefault("quantize.speed", def.Quantize.Speed)
	v.SetDefault("quantize.colors", def.Quantize.Colors)

	v.SetDefault("upload.prefix", def.Upload.Prefix)
	v.SetDefault("upload.backend", def.Upload.Backend)
	v.SetDefault("upload.local_dir", def.Upload.LocalDir)
	v.SetDefault("upload.s3.endpoint", def.Upload.S3.Endpoint)
	v.SetDefault("upload.s3.access_key", def.Upload.S3.AccessKey)
	v.SetDefault("upload.s3.secret_key", def.Upload.S3.SecretKey)
	v.SetDefault("upload.s3.bucket", def.Upload.S3.Bucket)
	v.SetDefault("upload.s3.region", def.Upload.S3.Region)
}

// loadConfig reads the configuration from, in increasing priority: built-in
// defaults, the config file, the environment (a .env file included) and flags
// already bound to v.
func loadConfig(v *viper.Viper, file string) (iconvault.Config, error) {
	var cfg iconvault.Config

	// Load .env file if it exists.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("unable to load .env file: %w", err)
	}

	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("iconvault")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("unable to read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// newBucket opens the configured upload backend.
func newBucket(cfg iconvault.Config) (storage.Bucket, error) {
	switch cfg.Upload.Backend {
	case iconvault.BackendS3:
		return storage.NewS3Bucket(cfg.Upload.S3)
	case iconvault.BackendLocal:
		return storage.NewLocalBucket(cfg.Resolve(cfg.Upload.LocalDir)), nil
	case iconvault.BackendMemory:
		return storage.NewMemoryBucket(), nil
	}
	return nil, fmt.Errorf("unknown upload backend %q", cfg.Upload.Backend)
}
