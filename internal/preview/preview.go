// Package preview renders tile status maps as images.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/woozymasta/satloader/internal/tiles"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
)

// Supported output formats.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// ErrFormat is returned for an unknown output format.
var ErrFormat = errors.New("preview: unsupported format")

var palette = map[tiles.Status]color.RGBA{
	tiles.StatusQueued:     {R: 255, G: 255, B: 255, A: 255},
	tiles.StatusNotFound:   {R: 128, G: 128, B: 128, A: 255},
	tiles.StatusDownloaded: {R: 0, G: 128, B: 0, A: 255},
	tiles.StatusError:      {R: 255, G: 0, B: 0, A: 255},
}

// Color returns the preview color of a status.
func Color(s tiles.Status) color.RGBA {
	return palette[s]
}

// Render draws one pixel per tile at (x-x1, y-y1), colored by its current status.
func Render(m *tiles.Map) *image.RGBA {
	rect := m.Rect()
	img := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(img, img.Bounds(), image.NewUniform(Color(tiles.StatusQueued)), image.Point{}, draw.Src)

	for _, t := range m.Tiles() {
		img.SetRGBA(t.X-rect.Min.X, t.Y-rect.Min.Y, Color(t.Status()))
	}

	return img
}

// Scale enlarges img by an integer factor keeping pixel edges sharp.
// Factors below 2 return img unchanged.
func Scale(img image.Image, factor int) image.Image {
	if factor < 2 {
		return img
	}

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatPNG, "":
		return png.Encode(w, img)
	case FormatWebP:
		return webp.Encode(w, img, &webp.Options{Lossless: true})
	default:
		return fmt.Errorf("%w: %q", ErrFormat, format)
	}
}

// WriteFile renders m, scales it and stores it as <dir>/<name>.<format>.
// It returns the written path.
func WriteFile(m *tiles.Map, dir, format string, factor int) (string, error) {
	if format == "" {
		format = FormatPNG
	}
	if format != FormatPNG && format != FormatWebP {
		return "", fmt.Errorf("%w: %q", ErrFormat, format)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create preview dir: %w", err)
	}

	path := filepath.Join(dir, m.Name()+"."+format)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if err := Encode(f, Scale(Render(m), factor), format); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("encode %s: %w", path, err)
	}

	return path, f.Close()
}
