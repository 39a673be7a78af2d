package videodecoder

import (
	"errors"
	"strings"
	"testing"
)

func TestOpenErrorWrapsCause(t *testing.T) {
	err := error(&OpenError{Source: "clip.mp4", Err: ErrorNoVideoStreamFound})

	var openErr *OpenError
	if !errors.As(err, &openErr) {
		t.Fatal("errors.As failed for *OpenError")
	}
	if !errors.Is(err, ErrorNoVideoStreamFound) {
		t.Fatal("errors.Is failed for wrapped cause")
	}
	if !strings.Contains(err.Error(), "clip.mp4") {
		t.Errorf("message %q does not name the source", err.Error())
	}
}

func TestDecodeErrorWrapsCause(t *testing.T) {
	cause := errors.New("bitstream damaged")
	err := error(&DecodeError{Err: cause})

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatal("errors.As failed for *DecodeError")
	}
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is failed for wrapped cause")
	}
}

func TestEndOfStreamIsNotAnErrorKind(t *testing.T) {
	var openErr *OpenError
	var decodeErr *DecodeError
	if errors.As(ErrEndOfStream, &openErr) || errors.As(ErrEndOfStream, &decodeErr) {
		t.Fatal("ErrEndOfStream must not match either error kind")
	}
}
