package videodecoder

import (
	"errors"
	"fmt"
)

// Sentinel causes. These never reach the caller bare; they arrive wrapped
// inside *OpenError or *DecodeError.
var (
	ErrorAllocateFormatContext    = errors.New("error allocating astiav.FormatContext")
	ErrorAllocateCodecContext     = errors.New("error allocating astiav.CodecContext")
	ErrorAllocatePacket           = errors.New("error allocating astiav.Packet")
	ErrorAllocateFrame            = errors.New("error allocating astiav.Frame")
	ErrorGeneralAllocate          = errors.New("error allocating astiav object")
	ErrorNoVideoStreamFound       = errors.New("no video stream found")
	ErrorNoCodecFound             = errors.New("no decoder found for codec")
	ErrorInputFormatDoesNotExists = errors.New("input format does not exist")
	ErrorEmptySource              = errors.New("source has no path and no reader")
	ErrorNoFramesDecoded          = errors.New("stream produced no frames before end")
)

// ErrorUnsupportedPixelFormat is returned by Frame.Image when the decoder was
// configured with an output pixel format the image package cannot represent.
var ErrorUnsupportedPixelFormat = errors.New("unsupported pixel format for image conversion")

// ErrorDecoderClosed is returned by NextFrame after Close has been called.
var ErrorDecoderClosed = errors.New("decoder is closed")

// ErrEndOfStream reports that the stream is exhausted. It is a terminal
// condition, not a failure: once returned, every further NextFrame call on
// the same decoder returns it again. Test with errors.Is.
var ErrEndOfStream = errors.New("end of stream")

// OpenError reports that a source could not be opened, demuxed, or prepared
// for decoding. It wraps the underlying cause.
type OpenError struct {
	Source string
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Source, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// DecodeError reports that a packet or frame could not be decoded or
// converted. It wraps the underlying cause.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
