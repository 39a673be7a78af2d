package videodecoder

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func TestSourceReadSeek(t *testing.T) {
	source := FromBytes([]byte("abcdefgh"))

	buf := make([]byte, 4)
	n, err := source.read(buf)
	if err != nil || n != 4 {
		t.Fatalf("read: n=%d err=%v", n, err)
	}
	if string(buf) != "abcd" {
		t.Fatalf("read %q, want %q", buf, "abcd")
	}

	pos, err := source.seek(2, io.SeekStart)
	if err != nil || pos != 2 {
		t.Fatalf("seek: pos=%d err=%v", pos, err)
	}

	// AVSEEK_SIZE reports the total size without moving the position.
	size, err := source.seek(0, avseekSize)
	if err != nil || size != 8 {
		t.Fatalf("size: %d err=%v", size, err)
	}

	n, err = source.read(buf)
	if err != nil || n != 4 || string(buf) != "cdef" {
		t.Fatalf("read after size probe: n=%d buf=%q err=%v", n, buf, err)
	}
}

func TestSourceReadToEnd(t *testing.T) {
	source := FromBytes([]byte("xy"))

	buf := make([]byte, 8)
	if n, err := source.read(buf); err != nil || n != 2 {
		t.Fatalf("read: n=%d err=%v", n, err)
	}
	if _, err := source.read(buf); !errors.Is(err, io.EOF) {
		t.Fatalf("read at end: %v, want io.EOF", err)
	}
}

func TestSourceLabels(t *testing.T) {
	if got := FromPath("a/b.mp4").String(); got != "a/b.mp4" {
		t.Errorf("path label: %q", got)
	}
	if got := FromBytes(make([]byte, 3)).String(); got != "3 byte blob" {
		t.Errorf("bytes label: %q", got)
	}
	if got := FromReader(bytes.NewReader(nil)).String(); got != "reader" {
		t.Errorf("reader label: %q", got)
	}
}

func TestEmptySourceRejected(t *testing.T) {
	_, err := CreateVideoDecoder(context.Background(), Source{})
	if err == nil {
		t.Fatal("expected error for empty source")
	}

	var openErr *OpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("got %T, want *OpenError", err)
	}
	if !errors.Is(err, ErrorEmptySource) {
		t.Fatalf("cause = %v, want ErrorEmptySource", err)
	}
}
