package videodecoder

import (
	"github.com/asticode/go-astiav"
	"github.com/pion/logging"
)

type Option = func(*VideoDecoder) error

// WithLoop makes the decoder rewind to the stream start at end-of-stream
// instead of terminating. NextFrame then never returns ErrEndOfStream.
func WithLoop() Option {
	return func(decoder *VideoDecoder) error {
		decoder.shouldLoop = true
		return nil
	}
}

// WithOutputPixelFormat overrides the pixel format frames are converted to.
// The default is astiav.PixelFormatRgba; Frame.Image only works with it.
func WithOutputPixelFormat(format astiav.PixelFormat) Option {
	return func(decoder *VideoDecoder) error {
		decoder.outputFormat = format
		return nil
	}
}

// WithScaleAlgorithm overrides the scaling algorithm of the pixel format
// conversion stage.
func WithScaleAlgorithm(flag astiav.SoftwareScaleContextFlag) Option {
	return func(decoder *VideoDecoder) error {
		decoder.scaleFlag = flag
		return nil
	}
}

// WithInputOption passes a demuxer option straight to FFmpeg.
func WithInputOption(key, value string) Option {
	return func(decoder *VideoDecoder) error {
		return decoder.inputOptions.Set(key, value, 0)
	}
}

// WithInputFormat forces the container format instead of probing for it.
func WithInputFormat(name string) Option {
	return func(decoder *VideoDecoder) error {
		format := astiav.FindInputFormat(name)
		if format == nil {
			return ErrorInputFormatDoesNotExists
		}
		decoder.inputFormat = format
		return nil
	}
}

// WithRTSPInput tunes the demuxer for low latency RTSP pulls.
func WithRTSPInput() Option {
	return func(decoder *VideoDecoder) error {
		if err := decoder.inputOptions.Set("rtsp_transport", "tcp", 0); err != nil {
			return err
		}
		if err := decoder.inputOptions.Set("stimeout", "5000000", 0); err != nil {
			return err
		}
		if err := decoder.inputOptions.Set("fflags", "nobuffer", 0); err != nil {
			return err
		}
		return decoder.inputOptions.Set("flags", "low_delay", 0)
	}
}

// WithLogger replaces the decoder's logger.
func WithLogger(log logging.LeveledLogger) Option {
	return func(decoder *VideoDecoder) error {
		decoder.log = log
		return nil
	}
}
