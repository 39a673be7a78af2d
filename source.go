package videodecoder

import (
	"bytes"
	"fmt"
	"io"
)

// avseekSize is ffmpeg's AVSEEK_SIZE whence value: the seek callback must
// report the total stream size without moving the read position.
const avseekSize = 0x10000

// Source is a media input for a VideoDecoder: a filesystem path, an
// io.ReadSeeker, or an in-memory byte slice. Reader and byte sources are fed
// to FFmpeg through a custom AVIO context.
type Source struct {
	path   string
	reader io.ReadSeeker
	label  string
}

// FromPath builds a Source referencing a media file on disk. FFmpeg opens
// the path itself, so anything its protocols understand is accepted.
func FromPath(path string) Source {
	return Source{path: path, label: path}
}

// FromReader builds a Source backed by an io.ReadSeeker. The decoder owns
// the reader for its lifetime; the caller must not use it concurrently.
func FromReader(reader io.ReadSeeker) Source {
	return Source{reader: reader, label: "reader"}
}

// FromBytes builds a Source backed by an in-memory media blob.
func FromBytes(data []byte) Source {
	return Source{reader: bytes.NewReader(data), label: fmt.Sprintf("%d byte blob", len(data))}
}

func (s Source) String() string {
	return s.label
}

func (s Source) valid() bool {
	return s.path != "" || s.reader != nil
}

func (s Source) read(b []byte) (int, error) {
	return s.reader.Read(b)
}

func (s Source) seek(offset int64, whence int) (int64, error) {
	if whence == avseekSize {
		current, err := s.reader.Seek(0, io.SeekCurrent)
		if err != nil {
			return -1, err
		}
		size, err := s.reader.Seek(0, io.SeekEnd)
		if err != nil {
			return -1, err
		}
		if _, err := s.reader.Seek(current, io.SeekStart); err != nil {
			return -1, err
		}
		return size, nil
	}
	return s.reader.Seek(offset, whence)
}
