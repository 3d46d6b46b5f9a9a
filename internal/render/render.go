// Package render produces the visual artifacts of a pipeline run: a
// word cloud over a text column and a grouped sentiment-distribution
// chart. Rendering is plain raster drawing; glyphs come from the fixed
// basicfont face and are scaled with golang.org/x/image/draw.
//
// Render failures are reported as errors and are expected to be logged
// and skipped by the caller; they never carry analytical meaning.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// textImage rasterizes s at the face's native size.
func textImage(s string, col color.Color) *image.RGBA {
	face := basicfont.Face7x13
	w := font.MeasureString(face, s).Ceil()
	if w < 1 {
		w = 1
	}
	h := face.Metrics().Height.Ceil()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
	return img
}

// drawText draws s at (x, y) scaled by the given integer factor and
// returns the rendered extent.
func drawText(dst *image.RGBA, s string, x, y, scale int, col color.Color) (int, int) {
	if scale < 1 {
		scale = 1
	}
	src := textImage(s, col)
	sb := src.Bounds()
	w, h := sb.Dx()*scale, sb.Dy()*scale
	xdraw.NearestNeighbor.Scale(dst, image.Rect(x, y, x+w, y+h), src, sb, xdraw.Over, nil)
	return w, h
}

// textWidth is the scaled pixel width of s without rendering it.
func textWidth(s string, scale int) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil() * scale
}

func fillRect(dst *image.RGBA, r image.Rectangle, col color.Color) {
	draw.Draw(dst, r, image.NewUniform(col), image.Point{}, draw.Src)
}

func savePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create image dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
