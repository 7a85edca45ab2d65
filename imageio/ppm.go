// Package imageio writes rendered framebuffers to disk. Like meshio, it
// is a collaborator: nothing under vecmath/bvh/qbvh/kdtree/grid/objset
// imports it.
package imageio

import (
	"image"
	"image/color"
	"io"

	"github.com/lmittmann/ppm"
	"github.com/pkg/errors"
)

// Framebuffer is a row-major RGBA image, one byte per channel; WritePPM
// writes only its RGB channels.
type Framebuffer struct {
	Width, Height int
	Pixels        []color.RGBA
}

// NewFramebuffer allocates a black width x height framebuffer.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// Set writes the color at (x, y). Out-of-bounds writes are silently
// dropped, so callers may spill past a viewport edge without bounds
// checks of their own.
func (f *Framebuffer) Set(x, y int, c color.RGBA) {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return
	}
	f.Pixels[y*f.Width+x] = c
}

// At returns the color at (x, y).
func (f *Framebuffer) At(x, y int) color.RGBA {
	return f.Pixels[y*f.Width+x]
}

func (f *Framebuffer) image() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := f.At(x, y)
			img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return img
}

// WritePPM encodes fb as a binary (P6) PPM to w.
func WritePPM(w io.Writer, fb *Framebuffer) error {
	if err := ppm.Encode(w, fb.image()); err != nil {
		return errors.Wrap(err, "imageio: encoding PPM")
	}
	return nil
}
