package iconvault

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// RasterizeJob renders an svg file into a png of the exact requested size.
// The rendering happens in-process, no external tool is involved.
type RasterizeJob struct {
	Src    string
	Dst    string
	Width  int
	Height int
}

var _ Job = RasterizeJob{}

// Source returns the input path.
func (r RasterizeJob) Source() string { return r.Src }

// Dest returns the output path.
func (r RasterizeJob) Dest() string { return r.Dst }

// Run renders the source and writes the png, replacing any previous file.
func (r RasterizeJob) Run(ctx context.Context) error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: output size %dx%d", ErrInvalidJob, r.Width, r.Height)
	}
	if err := checkPaths(r.Src, r.Dst); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(r.Src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceNotFound, err)
	}
	img, err := Render(data, r.Width, r.Height)
	if err != nil {
		return fmt.Errorf("%s: %w", r.Src, err)
	}

	if err := os.Remove(r.Dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return encodePNG(r.Dst, img)
}

// Render rasterizes svg markup at width x height pixels. The drawing is
// scaled independently on both axes, so a request which does not match the
// viewBox aspect ratio stretches the icon.
func Render(data []byte, width, height int) (*image.RGBA, error) {
	if !utf8.Valid(data) {
		return nil, ErrDecode
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		return nil, fmt.Errorf("%w: missing viewBox or size", ErrMalformed)
	}

	w, h := float64(width), float64(height)
	icon.SetTarget(0, 0, w, h)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	raster := rasterx.NewDasher(width, height, scanner)
	icon.Draw(raster, 1.0)

	return img, nil
}

// encodePNG writes img to path in png format regardless of the file extension.
func encodePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
