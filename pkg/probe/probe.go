// Package probe inspects the first video stream of a media source without
// decoding it.
package probe

import (
	"fmt"
	"io"
	"time"

	"github.com/asticode/go-astiav"
	"github.com/asticode/go-astikit"

	"github.com/harshabose/videodecoder"
)

const ioBufferSize = 8192

// Info describes the first video stream of a media source.
type Info struct {
	Width     int           `yaml:"width"`
	Height    int           `yaml:"height"`
	FrameRate float64       `yaml:"frame_rate"`
	Duration  time.Duration `yaml:"duration"`
	CodecName string        `yaml:"codec"`
	NbFrames  int64         `yaml:"nb_frames"`
	Format    string        `yaml:"format"`
}

// File probes the media file at path. Failures are reported as
// *videodecoder.OpenError.
func File(path string) (*Info, error) {
	info, err := run(path, nil)
	if err != nil {
		return nil, &videodecoder.OpenError{Source: path, Err: err}
	}
	return info, nil
}

// Reader probes a media stream read from reader.
func Reader(reader io.ReadSeeker) (*Info, error) {
	info, err := run("", reader)
	if err != nil {
		return nil, &videodecoder.OpenError{Source: "reader", Err: err}
	}
	return info, nil
}

func run(address string, reader io.ReadSeeker) (*Info, error) {
	closer := astikit.NewCloser()
	defer closer.Close()

	formatContext := astiav.AllocFormatContext()
	if formatContext == nil {
		return nil, videodecoder.ErrorAllocateFormatContext
	}

	var ioContext *astiav.IOContext
	if reader != nil {
		var err error
		if ioContext, err = astiav.AllocIOContext(ioBufferSize, false, reader.Read, reader.Seek, nil); err != nil {
			formatContext.Free()
			return nil, fmt.Errorf("allocating io context: %w", err)
		}
		formatContext.SetPb(ioContext)
	}

	if err := formatContext.OpenInput(address, nil, nil); err != nil {
		formatContext.Free()
		if ioContext != nil {
			ioContext.Free()
		}
		return nil, fmt.Errorf("opening input: %w", err)
	}
	closer.Add(func() {
		formatContext.CloseInput()
		formatContext.Free()
		if ioContext != nil {
			ioContext.Free()
		}
	})

	if err := formatContext.FindStreamInfo(nil); err != nil {
		return nil, fmt.Errorf("reading stream info: %w", err)
	}

	var stream *astiav.Stream
	for _, s := range formatContext.Streams() {
		if s.CodecParameters().MediaType() != astiav.MediaTypeVideo {
			continue
		}
		stream = s
		break
	}
	if stream == nil {
		return nil, videodecoder.ErrorNoVideoStreamFound
	}

	info := &Info{
		Width:    stream.CodecParameters().Width(),
		Height:   stream.CodecParameters().Height(),
		Duration: time.Duration(formatContext.Duration()) * time.Microsecond,
		NbFrames: stream.NbFrames(),
	}

	if inputFormat := formatContext.InputFormat(); inputFormat != nil {
		info.Format = inputFormat.Name()
	}

	frameRate := formatContext.GuessFrameRate(stream, nil)
	if frameRate.Den() != 0 {
		info.FrameRate = float64(frameRate.Num()) / float64(frameRate.Den())
	}

	if codec := astiav.FindDecoder(stream.CodecParameters().CodecID()); codec != nil {
		info.CodecName = codec.Name()
	}

	if info.NbFrames == 0 && info.FrameRate > 0 {
		info.NbFrames = int64(info.Duration.Seconds() * info.FrameRate)
	}

	return info, nil
}
