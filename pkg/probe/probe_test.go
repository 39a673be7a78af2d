package probe

import (
	"errors"
	"os"
	"testing"

	"github.com/harshabose/videodecoder"
)

const testVideoPath = "../../testdata/video.mp4"

func TestFileMissing(t *testing.T) {
	_, err := File("testdata/missing.mp4")
	if err == nil {
		t.Fatal("expected error")
	}

	var openErr *videodecoder.OpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("got %T, want *OpenError", err)
	}
}

func TestFileFixture(t *testing.T) {
	if _, err := os.Stat(testVideoPath); err != nil {
		t.Skipf("fixture %s not present", testVideoPath)
	}

	info, err := File(testVideoPath)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}

	if info.Width <= 0 || info.Height <= 0 {
		t.Errorf("dimensions: %dx%d", info.Width, info.Height)
	}
	if info.FrameRate <= 0 {
		t.Errorf("frame rate: %f", info.FrameRate)
	}
	if info.CodecName == "" {
		t.Error("codec name is empty")
	}
	if info.NbFrames <= 0 {
		t.Errorf("frame count: %d", info.NbFrames)
	}
	if info.Format == "" {
		t.Error("container format is empty")
	}
}
