package videodecoder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/asticode/go-astiav"
	"github.com/pion/logging"
)

// ioBufferSize is the AVIO buffer size used for reader-backed sources.
const ioBufferSize = 8192

// VideoDecoder owns an open media stream and pulls decoded frames from it
// one at a time. It is not safe for concurrent use; callers needing
// parallelism decode with one VideoDecoder per goroutine.
type VideoDecoder struct {
	formatContext *astiav.FormatContext
	ioContext     *astiav.IOContext
	inputOptions  *astiav.Dictionary
	inputFormat   *astiav.InputFormat
	stream        *astiav.Stream
	codec         *astiav.Codec
	codecContext  *astiav.CodecContext
	scaleContext  *astiav.SoftwareScaleContext

	packet   *astiav.Packet
	rawFrame *astiav.Frame
	outFrame *astiav.Frame

	source       Source
	outputFormat astiav.PixelFormat
	scaleFlag    astiav.SoftwareScaleContextFlag
	dimensions   Dimensions
	frameRate    astiav.Rational
	codecName    string

	shouldLoop bool
	opened     bool
	draining   bool
	exhausted  bool
	pending    bool
	closed     bool
	produced   bool
	skip       int
	index      int

	log  logging.LeveledLogger
	once sync.Once
	ctx  context.Context
}

// CreateVideoDecoder opens source and returns a decoder positioned at the
// start of its first video stream. Every failure is reported as *OpenError
// and releases everything allocated up to that point.
func CreateVideoDecoder(ctx context.Context, source Source, options ...Option) (*VideoDecoder, error) {
	if !source.valid() {
		return nil, &OpenError{Source: source.String(), Err: ErrorEmptySource}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	decoder := &VideoDecoder{
		source:       source,
		inputOptions: astiav.NewDictionary(),
		outputFormat: astiav.PixelFormatRgba,
		scaleFlag:    astiav.SoftwareScaleContextFlagBilinear,
		log:          logging.NewDefaultLoggerFactory().NewLogger("videodecoder"),
		ctx:          ctx,
	}

	if decoder.inputOptions == nil {
		return nil, &OpenError{Source: source.String(), Err: fmt.Errorf("error allocating astiav.Dictionary (%w)", ErrorGeneralAllocate)}
	}

	for _, option := range options {
		if err := option(decoder); err != nil {
			decoder.close()
			return nil, &OpenError{Source: source.String(), Err: err}
		}
	}

	if err := decoder.open(); err != nil {
		decoder.close()
		return nil, &OpenError{Source: source.String(), Err: err}
	}

	decoder.log.Debugf("opened %s: %dx%d %s, %d/%d fps",
		source, decoder.dimensions.Width, decoder.dimensions.Height,
		decoder.codecName, decoder.frameRate.Num(), decoder.frameRate.Den())

	return decoder, nil
}

func (d *VideoDecoder) open() error {
	if d.formatContext = astiav.AllocFormatContext(); d.formatContext == nil {
		return ErrorAllocateFormatContext
	}

	address := d.source.path
	if d.source.reader != nil {
		ioContext, err := astiav.AllocIOContext(ioBufferSize, false, d.source.read, d.source.seek, nil)
		if err != nil {
			return fmt.Errorf("allocating io context: %w", err)
		}
		d.ioContext = ioContext
		d.formatContext.SetPb(ioContext)
		address = ""
	}

	if err := d.formatContext.OpenInput(address, d.inputFormat, d.inputOptions); err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	d.opened = true

	if err := d.formatContext.FindStreamInfo(nil); err != nil {
		return fmt.Errorf("reading stream info: %w", err)
	}

	for _, stream := range d.formatContext.Streams() {
		if stream.CodecParameters().MediaType() != astiav.MediaTypeVideo {
			continue
		}
		d.stream = stream
		break
	}
	if d.stream == nil {
		return ErrorNoVideoStreamFound
	}

	if d.codec = astiav.FindDecoder(d.stream.CodecParameters().CodecID()); d.codec == nil {
		return ErrorNoCodecFound
	}
	if d.codecContext = astiav.AllocCodecContext(d.codec); d.codecContext == nil {
		return ErrorAllocateCodecContext
	}

	if err := d.stream.CodecParameters().ToCodecContext(d.codecContext); err != nil {
		return fmt.Errorf("filling codec context: %w", err)
	}

	d.frameRate = d.formatContext.GuessFrameRate(d.stream, nil)
	d.codecContext.SetFramerate(d.frameRate)
	d.codecContext.SetTimeBase(d.stream.TimeBase())

	if err := d.codecContext.Open(d.codec, nil); err != nil {
		return fmt.Errorf("opening codec context: %w", err)
	}

	if d.packet = astiav.AllocPacket(); d.packet == nil {
		return ErrorAllocatePacket
	}
	if d.rawFrame = astiav.AllocFrame(); d.rawFrame == nil {
		return ErrorAllocateFrame
	}
	if d.outFrame = astiav.AllocFrame(); d.outFrame == nil {
		return ErrorAllocateFrame
	}

	scaleContext, err := astiav.CreateSoftwareScaleContext(
		d.codecContext.Width(), d.codecContext.Height(), d.codecContext.PixelFormat(),
		d.codecContext.Width(), d.codecContext.Height(), d.outputFormat,
		astiav.NewSoftwareScaleContextFlags(d.scaleFlag),
	)
	if err != nil {
		return fmt.Errorf("creating software scale context: %w", err)
	}
	d.scaleContext = scaleContext

	d.dimensions = Dimensions{Width: d.codecContext.Width(), Height: d.codecContext.Height()}
	d.codecName = d.codec.Name()

	return nil
}

// NextFrame blocks until the next frame is decoded and returns it. Once the
// stream is exhausted it returns ErrEndOfStream on this and every later
// call; decode failures are reported as *DecodeError. ctx bounds the time
// spent driving the native decoder, so pathological inputs can be cancelled.
func (d *VideoDecoder) NextFrame(ctx context.Context) (*Frame, error) {
	if d.closed {
		return nil, ErrorDecoderClosed
	}
	if d.exhausted {
		return nil, ErrEndOfStream
	}

	if d.skip < 0 {
		if err := d.seekBack(ctx); err != nil {
			return nil, d.translate(err)
		}
	}

	for {
		if !d.pending {
			if err := d.receiveRaw(ctx); err != nil {
				return nil, d.translate(err)
			}
		}
		d.pending = false

		if d.skip > 0 {
			d.skip--
			d.index++
			d.rawFrame.Unref()
			continue
		}

		frame, err := d.convert()
		d.rawFrame.Unref()
		if err != nil {
			return nil, &DecodeError{Err: err}
		}
		d.index++
		return frame, nil
	}
}

// Skip adjusts the decoder position by n frames relative to the next frame
// NextFrame would return. Positive values discard frames lazily on the next
// pull; negative values seek backward, clamped at the stream start. Skip
// itself touches nothing; the move happens inside the next NextFrame call.
func (d *VideoDecoder) Skip(n int) {
	d.skip += n
}

// Close releases every native resource held by the decoder. It is safe to
// call more than once and safe to call after a failed NextFrame.
func (d *VideoDecoder) Close() {
	d.once.Do(func() {
		d.closed = true
		d.close()
	})
}

// Dimensions returns the width and height of the decoded video.
func (d *VideoDecoder) Dimensions() Dimensions {
	return d.dimensions
}

// FrameRate returns the frame rate guessed from the video stream.
func (d *VideoDecoder) FrameRate() astiav.Rational {
	return d.frameRate
}

// CodecName returns the name of the codec decoding the stream.
func (d *VideoDecoder) CodecName() string {
	return d.codecName
}

// WillLoop reports whether the decoder rewinds at end-of-stream instead of
// terminating.
func (d *VideoDecoder) WillLoop() bool {
	return d.shouldLoop
}

// receiveRaw blocks until the next decoded frame of the video stream sits in
// d.rawFrame. It drives the demuxer, enters drain mode at container EOF, and
// rewinds instead of terminating when looping is enabled.
func (d *VideoDecoder) receiveRaw(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.ctx.Err(); err != nil {
			return err
		}

		err := d.codecContext.ReceiveFrame(d.rawFrame)
		if err == nil {
			d.produced = true
			return nil
		}
		if errors.Is(err, astiav.ErrEagain) {
			if err := d.feed(); err != nil {
				return err
			}
			continue
		}
		if errors.Is(err, astiav.ErrEof) {
			if !d.shouldLoop {
				return ErrEndOfStream
			}
			// A rewind that produced nothing would spin EOF -> rewind -> EOF
			// forever; a stream without frames cannot loop.
			if !d.produced {
				return ErrorNoFramesDecoded
			}
			if err := d.rewind(); err != nil {
				return err
			}
			continue
		}
		return err
	}
}

// feed reads container packets until one belonging to the video stream has
// been sent to the codec. At container EOF it sends the flush packet so the
// codec drains its remaining frames.
func (d *VideoDecoder) feed() error {
	for {
		if err := d.formatContext.ReadFrame(d.packet); err != nil {
			if errors.Is(err, astiav.ErrEof) {
				if d.draining {
					return nil
				}
				d.draining = true
				return d.codecContext.SendPacket(nil)
			}
			return err
		}

		if d.packet.StreamIndex() != d.stream.Index() {
			d.packet.Unref()
			continue
		}

		err := d.codecContext.SendPacket(d.packet)
		d.packet.Unref()
		if err != nil && !errors.Is(err, astiav.ErrEagain) {
			return err
		}
		return nil
	}
}

// rewind seeks back to the stream start and resets the codec so a looping
// decoder keeps producing frames. Frame indices restart at zero.
func (d *VideoDecoder) rewind() error {
	start := d.stream.StartTime()
	if start == astiav.NoPtsValue {
		start = 0
	}
	if err := d.formatContext.SeekFrame(d.stream.Index(), start, astiav.NewSeekFlags(astiav.SeekFlagBackward)); err != nil {
		return err
	}
	d.codecContext.FlushBuffers()
	d.draining = false
	d.produced = false
	d.index = 0
	return nil
}

// seekBack rewinds to the frame targeted by a negative skip balance and
// decodes forward until that frame is pending.
func (d *VideoDecoder) seekBack(ctx context.Context) error {
	target := d.index + d.skip
	if target < 0 {
		target = 0
	}
	d.skip = 0

	timestamp := d.frameTimestamp(target)
	if err := d.formatContext.SeekFrame(d.stream.Index(), timestamp, astiav.NewSeekFlags(astiav.SeekFlagBackward)); err != nil {
		return err
	}
	d.codecContext.FlushBuffers()
	d.draining = false

	for {
		if err := d.receiveRaw(ctx); err != nil {
			return err
		}
		pts := d.rawFrame.Pts()
		if pts == astiav.NoPtsValue || pts >= timestamp {
			d.pending = true
			d.index = target
			return nil
		}
		d.rawFrame.Unref()
	}
}

// frameTimestamp converts a zero-based frame index into stream time base
// units.
func (d *VideoDecoder) frameTimestamp(index int) int64 {
	fr, tb := d.frameRate, d.stream.TimeBase()
	if fr.Num() == 0 || tb.Num() == 0 {
		return 0
	}
	start := d.stream.StartTime()
	if start == astiav.NoPtsValue {
		start = 0
	}
	return start + int64(index)*int64(fr.Den())*int64(tb.Den())/(int64(fr.Num())*int64(tb.Num()))
}

// convert runs the pending raw frame through the scale stage and copies the
// result out of native memory.
func (d *VideoDecoder) convert() (*Frame, error) {
	if err := d.scaleContext.ScaleFrame(d.rawFrame, d.outFrame); err != nil {
		return nil, err
	}
	defer d.outFrame.Unref()

	data, err := d.outFrame.Data().Bytes(1)
	if err != nil {
		return nil, err
	}

	return &Frame{
		data:        data,
		dimensions:  Dimensions{Width: d.outFrame.Width(), Height: d.outFrame.Height()},
		pixelFormat: d.outputFormat,
		index:       d.index,
		pts:         d.rawFrame.Pts(),
		timeBase:    d.stream.TimeBase(),
	}, nil
}

func (d *VideoDecoder) translate(err error) error {
	switch {
	case errors.Is(err, ErrEndOfStream):
		d.exhausted = true
		return ErrEndOfStream
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return &DecodeError{Err: err}
	}
}

func (d *VideoDecoder) close() {
	if d.scaleContext != nil {
		d.scaleContext.Free()
		d.scaleContext = nil
	}
	if d.outFrame != nil {
		d.outFrame.Free()
		d.outFrame = nil
	}
	if d.rawFrame != nil {
		d.rawFrame.Free()
		d.rawFrame = nil
	}
	if d.packet != nil {
		d.packet.Free()
		d.packet = nil
	}
	if d.codecContext != nil {
		d.codecContext.Free()
		d.codecContext = nil
	}
	if d.formatContext != nil {
		if d.opened {
			d.formatContext.CloseInput()
		}
		d.formatContext.Free()
		d.formatContext = nil
	}
	if d.ioContext != nil {
		d.ioContext.Free()
		d.ioContext = nil
	}
	if d.inputOptions != nil {
		d.inputOptions.Free()
		d.inputOptions = nil
	}
}
