package mp4probe

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"
)

func encodeInit(t *testing.T, init *mp4.InitSegment) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := init.Encode(&buf); err != nil {
		t.Fatalf("encode init segment: %v", err)
	}
	return buf.Bytes()
}

func TestReaderFindsVideoTrack(t *testing.T) {
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(90000, "video", "und")
	entry := mp4.CreateVisualSampleEntryBox("avc1", 640, 360, nil)
	init.Moov.Trak.Mdia.Minf.Stbl.Stsd.AddChild(entry)

	info, err := Reader(bytes.NewReader(encodeInit(t, init)))
	if err != nil {
		t.Fatalf("probe: %v", err)
	}

	if info.Codec != "avc1" {
		t.Errorf("codec: %q", info.Codec)
	}
	if info.Width != 640 || info.Height != 360 {
		t.Errorf("dimensions: %dx%d", info.Width, info.Height)
	}
	if info.Timescale != 90000 {
		t.Errorf("timescale: %d", info.Timescale)
	}
}

func TestReaderNoVideoTrack(t *testing.T) {
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(48000, "audio", "und")

	if _, err := Reader(bytes.NewReader(encodeInit(t, init))); !errors.Is(err, ErrNoVideoTrack) {
		t.Fatalf("got %v, want ErrNoVideoTrack", err)
	}
}

func TestReaderRejectsGarbage(t *testing.T) {
	if _, err := Reader(bytes.NewReader([]byte("definitely not an mp4"))); err == nil {
		t.Fatal("expected error")
	}
}

func TestFileMissing(t *testing.T) {
	if _, err := File("testdata/missing.mp4"); err == nil {
		t.Fatal("expected error")
	}
}
