// Package mp4probe inspects MP4 video tracks by parsing the container boxes
// directly. It needs no FFmpeg and no cgo, which makes it useful for tooling
// on hosts without the native libraries.
package mp4probe

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

// ErrNoVideoTrack is returned when the file contains no "vide" handler track.
var ErrNoVideoTrack = errors.New("no video track found")

// Info describes the first video track of an MP4 file.
type Info struct {
	TrackID     uint32 `yaml:"track_id"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Timescale   uint32 `yaml:"timescale"`
	DurationMs  int    `yaml:"duration_ms"`
	SampleCount uint32 `yaml:"sample_count"`
	Codec       string `yaml:"codec"`
	Fragmented  bool   `yaml:"fragmented"`
}

// File probes the MP4 file at path.
func File(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Reader(f)
}

// Reader probes an MP4 stream read from reader.
func Reader(reader io.ReadSeeker) (*Info, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}

	moov := mp4File.Moov
	if mp4File.Init != nil && mp4File.Init.Moov != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return nil, ErrNoVideoTrack
	}

	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		return trackInfo(trak, mp4File.IsFragmented()), nil
	}

	return nil, ErrNoVideoTrack
}

func trackInfo(trak *mp4.TrakBox, fragmented bool) *Info {
	info := &Info{
		TrackID:    trak.Tkhd.TrackID,
		Width:      int(trak.Tkhd.Width >> 16),
		Height:     int(trak.Tkhd.Height >> 16),
		Fragmented: fragmented,
	}

	if trak.Mdia.Mdhd != nil {
		info.Timescale = trak.Mdia.Mdhd.Timescale
		if info.Timescale > 0 {
			info.DurationMs = int(trak.Mdia.Mdhd.Duration * 1000 / uint64(info.Timescale))
		}
	}

	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return info
	}
	stbl := trak.Mdia.Minf.Stbl

	if stbl.Stsz != nil {
		info.SampleCount = stbl.Stsz.SampleNumber
	}

	if stbl.Stsd != nil {
		for _, child := range stbl.Stsd.Children {
			visual, ok := child.(*mp4.VisualSampleEntryBox)
			if !ok {
				continue
			}
			info.Codec = visual.Type()
			// Tkhd dimensions are 16.16 fixed point and some muxers leave
			// them zeroed; the sample entry is authoritative.
			if visual.Width > 0 {
				info.Width = int(visual.Width)
			}
			if visual.Height > 0 {
				info.Height = int(visual.Height)
			}
			break
		}
	}

	return info
}
