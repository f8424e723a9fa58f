package iconvault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDescriptionName is the description file kept next to each icon.
const DefaultDescriptionName = "README.rst"

// IconAsset is one icon bundle: a directory named after the icon holding
// the source svg, an optional description and the generated rasters.
type IconAsset struct {
	Name string
	root string
	desc string
}

// Dir returns the asset directory.
func (a IconAsset) Dir() string {
	return filepath.Join(a.root, a.Name)
}

// SVGPath returns the path of the source vector file.
func (a IconAsset) SVGPath() string {
	return filepath.Join(a.Dir(), a.Name+".svg")
}

// DescriptionPath returns the path of the free-text description file.
func (a IconAsset) DescriptionPath() string {
	name := a.desc
	if name == "" {
		name = DefaultDescriptionName
	}
	return filepath.Join(a.Dir(), name)
}

// PNGPath returns the raster output path for the requested pixel size.
func (a IconAsset) PNGPath(width, height int) string {
	return filepath.Join(a.Dir(), PNGName(a.Name, width, height))
}

// PNGName builds the file name of a raster rendition.
func PNGName(name string, width, height int) string {
	return fmt.Sprintf("%s-%dx%d.png", name, width, height)
}

// Description returns the first line of the description file.
// The boolean is false when the asset has no description file.
func (a IconAsset) Description() (string, bool, error) {
	data, err := os.ReadFile(a.DescriptionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimRight(line, "\r"), true, nil
}

// Catalog discovers icon assets laid out one directory per icon under Root.
type Catalog struct {
	Root            string
	DescriptionName string
}

// NewCatalog returns a catalog rooted at dir.
func NewCatalog(root, descName string) *Catalog {
	if descName == "" {
		descName = DefaultDescriptionName
	}
	return &Catalog{Root: root, DescriptionName: descName}
}

// Asset returns the asset handle for name without touching the filesystem.
func (c *Catalog) Asset(name string) IconAsset {
	return IconAsset{Name: name, root: c.Root, desc: c.DescriptionName}
}

// ListAll returns every directory exactly one level below the root which holds
// an svg file named after the directory. A missing root yields an empty list.
func (c *Catalog) ListAll() []IconAsset {
	entries, err := os.ReadDir(c.Root)
	if err != nil {
		return []IconAsset{}
	}

	assets := make([]IconAsset, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if hasAssetSVG(filepath.Join(c.Root, entry.Name()), entry.Name()) {
			assets = append(assets, c.Asset(entry.Name()))
		}
	}
	return assets
}

// Lookup returns the named asset if it is part of the catalog.
func (c *Catalog) Lookup(name string) (IconAsset, bool) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return IconAsset{}, false
	}
	dir := filepath.Join(c.Root, name)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() || !hasAssetSVG(dir, name) {
		return IconAsset{}, false
	}
	return c.Asset(name), true
}

// Import moves a loose svg file into the catalog as <root>/<name>/<name>.svg,
// where name is the file's base name without extension. An asset which is
// already part of the catalog is only replaced when force is set.
func (c *Catalog) Import(src string, force bool) (IconAsset, error) {
	if !isSVG(src) {
		return IconAsset{}, fmt.Errorf("%w: %s is not an svg file", ErrInvalidJob, src)
	}
	if _, err := os.Stat(src); err != nil {
		return IconAsset{}, fmt.Errorf("%w: %v", ErrSourceNotFound, err)
	}
	asset := c.Asset(assetName(src))
	if !force {
		if _, err := os.Stat(asset.SVGPath()); err == nil {
			return IconAsset{}, fmt.Errorf("%w: %s", ErrAssetExists, asset.Name)
		}
	}

	if err := os.MkdirAll(asset.Dir(), 0755); err != nil {
		return IconAsset{}, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := moveFile(src, asset.SVGPath()); err != nil {
		return IconAsset{}, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return asset, nil
}

// ImportDir walks dir recursively and imports every svg file found.
// Name clashes, with the catalog or between two files of dir, are reported
// before any file is moved unless force is set; with force the last file
// walked wins.
func (c *Catalog) ImportDir(dir string, force bool) ([]IconAsset, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && isSVG(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to walk %s: %w", dir, err)
	}

	if !force {
		seen := make(map[string]string, len(paths))
		for _, path := range paths {
			name := assetName(path)
			if prev, ok := seen[name]; ok {
				return nil, fmt.Errorf("%w: %s and %s", ErrAssetExists, prev, path)
			}
			seen[name] = path
			if _, err := os.Stat(c.Asset(name).SVGPath()); err == nil {
				return nil, fmt.Errorf("%w: %s", ErrAssetExists, name)
			}
		}
	}

	assets := make([]IconAsset, 0, len(paths))
	for _, path := range paths {
		asset, err := c.Import(path, force)
		if err != nil {
			return assets, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

// EnsureDescriptions creates an empty description file in every asset
// directory that lacks one and returns the assets it touched.
func (c *Catalog) EnsureDescriptions() ([]IconAsset, error) {
	var created []IconAsset
	for _, asset := range c.ListAll() {
		path := asset.DescriptionPath()
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			return created, fmt.Errorf("%w: %v", ErrWrite, err)
		}
		created = append(created, asset)
	}
	return created, nil
}

// hasAssetSVG reports whether dir holds the regular file <name>.svg.
func hasAssetSVG(dir, name string) bool {
	fi, err := os.Stat(filepath.Join(dir, name+".svg"))
	return err == nil && fi.Mode().IsRegular()
}

// assetName derives the asset name from the path of a loose svg file.
func assetName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func isSVG(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".svg")
}

// moveFile renames src to dst, falling back to copy and remove
// when the two paths live on different devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return err
	}
	return os.Remove(src)
}
