package videodecoder

import (
	"image/color"
	"testing"

	"github.com/asticode/go-astiav"
)

func testFrame(width, height int) *Frame {
	data := make([]byte, width*height*4)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return &Frame{
		data:        data,
		dimensions:  Dimensions{Width: width, Height: height},
		pixelFormat: astiav.PixelFormatRgba,
		index:       3,
		pts:         3000,
		timeBase:    astiav.NewRational(1, 90000),
	}
}

func TestFrameAccessors(t *testing.T) {
	frame := testFrame(8, 4)

	if got := frame.Dimensions(); got.Width != 8 || got.Height != 4 {
		t.Errorf("dimensions: %+v", got)
	}
	if frame.Index() != 3 {
		t.Errorf("index: %d", frame.Index())
	}
	if frame.PTS() != 3000 {
		t.Errorf("pts: %d", frame.PTS())
	}
	if len(frame.Data()) != 8*4*4 {
		t.Errorf("data length: %d", len(frame.Data()))
	}
	// 3000 ticks at 1/90000 is 33.3ms.
	if frame.TimestampMs() != 33 {
		t.Errorf("timestamp: %dms", frame.TimestampMs())
	}
}

func TestFrameTimestampWithoutPts(t *testing.T) {
	frame := testFrame(2, 2)
	frame.pts = astiav.NoPtsValue
	if frame.TimestampMs() != 0 {
		t.Errorf("timestamp without pts: %dms", frame.TimestampMs())
	}
}

func TestFrameImage(t *testing.T) {
	frame := testFrame(8, 4)

	img, err := frame.Image()
	if err != nil {
		t.Fatalf("image: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 8 || bounds.Dy() != 4 {
		t.Fatalf("bounds: %v", bounds)
	}

	// The image is a zero-copy view: pixel (1, 0) starts at byte 4.
	want := color.RGBA{R: frame.data[4], G: frame.data[5], B: frame.data[6], A: frame.data[7]}
	if got := img.At(1, 0); got != want {
		t.Errorf("pixel (1,0) = %v, want %v", got, want)
	}
}

func TestFrameImageUnsupportedFormat(t *testing.T) {
	frame := testFrame(4, 4)
	frame.pixelFormat = astiav.PixelFormatYuv420P

	if _, err := frame.Image(); err != ErrorUnsupportedPixelFormat {
		t.Fatalf("got %v, want ErrorUnsupportedPixelFormat", err)
	}
}

func TestFrameScaledImage(t *testing.T) {
	frame := testFrame(8, 8)

	img, err := frame.ScaledImage(4, 4)
	if err != nil {
		t.Fatalf("scaled image: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Fatalf("scaled bounds: %v", b)
	}
}
