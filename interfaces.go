package videodecoder

import (
	"context"

	"github.com/asticode/go-astiav"
)

// FrameSource is the pull side of a decoder.
type FrameSource interface {
	NextFrame(ctx context.Context) (*Frame, error)
	Close()
}

// CanDescribeVideo describes an open video stream.
type CanDescribeVideo interface {
	Dimensions() Dimensions
	FrameRate() astiav.Rational
	CodecName() string
}
