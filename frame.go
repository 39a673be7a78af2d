package videodecoder

import (
	"image"

	"github.com/asticode/go-astiav"
	"golang.org/x/image/draw"
)

// Frame is one decoded image unit from a video stream. Its pixel data is
// copied out of native memory, so a Frame stays valid after the decoder that
// produced it advances or closes, and needs no release of its own.
type Frame struct {
	data        []byte
	dimensions  Dimensions
	pixelFormat astiav.PixelFormat
	index       int
	pts         int64
	timeBase    astiav.Rational
}

// Data returns the raw pixel data. Rows are tightly packed with no padding
// between them.
func (f *Frame) Data() []byte {
	return f.data
}

// Dimensions returns the width and height of the frame.
func (f *Frame) Dimensions() Dimensions {
	return f.dimensions
}

// Index is the zero-based position of the frame in decode order. It restarts
// at zero when a looping decoder rewinds.
func (f *Frame) Index() int {
	return f.index
}

// PTS is the presentation timestamp in stream time base units, or
// astiav.NoPtsValue when the container carries none.
func (f *Frame) PTS() int64 {
	return f.pts
}

// TimestampMs is the presentation timestamp in milliseconds from the start
// of the stream, or 0 when the container carries no timing.
func (f *Frame) TimestampMs() int {
	if f.pts == astiav.NoPtsValue || f.timeBase.Den() == 0 {
		return 0
	}
	return int(f.pts * 1000 * int64(f.timeBase.Num()) / int64(f.timeBase.Den()))
}

// Image returns an image.Image view over the frame data without copying.
// Only decoders configured for RGBA output (the default) support this.
func (f *Frame) Image() (image.Image, error) {
	if f.pixelFormat != astiav.PixelFormatRgba {
		return nil, ErrorUnsupportedPixelFormat
	}
	return &image.RGBA{
		Pix:    f.data,
		Stride: 4 * f.dimensions.Width,
		Rect:   image.Rect(0, 0, f.dimensions.Width, f.dimensions.Height),
	}, nil
}

// ScaledImage resamples the frame to the given dimensions. Intended for
// thumbnails; full-rate rescaling belongs in the decoder's scale stage.
func (f *Frame) ScaledImage(width, height int) (image.Image, error) {
	src, err := f.Image()
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst, nil
}
