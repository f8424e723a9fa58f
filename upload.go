package iconvault

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/esimov/iconvault/storage"
	"github.com/rs/zerolog"
)

// Mapping pairs a local file with the object key it is uploaded to.
type Mapping struct {
	Local string
	Key   string
}

// RemoteKey mirrors the path of local relative to root under prefix,
// always using forward slashes.
func RemoteKey(prefix, root, local string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	absLocal, err := filepath.Abs(local)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absRoot, absLocal)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside of the project root %s", local, root)
	}
	return path.Join(strings.Trim(prefix, "/"), rel), nil
}

// Mappings lists the optimized svg and every quantized png of each asset
// together with their object keys.
func (p *Pipeline) Mappings(assets []IconAsset) ([]Mapping, error) {
	mappings := make([]Mapping, 0, len(assets)*(len(p.cfg.Sizes)+1))
	add := func(local string) error {
		key, err := RemoteKey(p.cfg.Upload.Prefix, p.cfg.ProjectRoot, local)
		if err != nil {
			return err
		}
		mappings = append(mappings, Mapping{Local: local, Key: key})
		return nil
	}

	for _, asset := range assets {
		if err := add(asset.SVGPath()); err != nil {
			return nil, err
		}
		for _, size := range p.cfg.Sizes {
			if err := add(asset.PNGPath(size, size)); err != nil {
				return nil, err
			}
		}
	}
	return mappings, nil
}

// Upload writes every mapped file to the bucket, stopping at the first failure.
func (p *Pipeline) Upload(ctx context.Context, assets []IconAsset) ([]Mapping, error) {
	return p.upload(ctx, p.log, assets)
}

func (p *Pipeline) upload(ctx context.Context, log zerolog.Logger, assets []IconAsset) ([]Mapping, error) {
	if p.bucket == nil {
		return nil, fmt.Errorf("upload: no bucket configured")
	}
	mappings, err := p.Mappings(assets)
	if err != nil {
		return nil, err
	}

	uploaded := make([]Mapping, 0, len(mappings))
	for i, m := range mappings {
		if err := ctx.Err(); err != nil {
			return uploaded, err
		}
		log.Info().
			Str("key", m.Key).
			Msgf("[%d] Uploading: %s -> %s", i+1, m.Local, m.Key)

		size, err := storage.PutFile(ctx, p.bucket, m.Key, m.Local)
		if err != nil {
			return uploaded, fmt.Errorf("upload %s: %w", m.Local, err)
		}
		log.Debug().Str("key", m.Key).Int64("bytes", size).Msg("uploaded")
		uploaded = append(uploaded, m)
	}
	return uploaded, nil
}
