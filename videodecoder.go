// Package videodecoder wraps FFmpeg (through github.com/asticode/go-astiav)
// behind a small, safe, frame-at-a-time pull API. A VideoDecoder owns its
// native demuxer and codec handles exclusively and guarantees their release
// on every exit path, including a failed open. All native failures are
// translated into two error kinds, *OpenError and *DecodeError, with
// end-of-stream reported separately through ErrEndOfStream.
package videodecoder

// Dimensions is the width and height of a video or a frame, in pixels.
type Dimensions struct {
	Width  int
	Height int
}
