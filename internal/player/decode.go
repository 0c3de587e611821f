package player

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/llehouerou/alac"
	"github.com/llehouerou/go-faad2"
	"github.com/llehouerou/go-m4a"
	"github.com/llehouerou/go-mp3"
)

// ErrUnsupportedFormat is returned when fetched audio matches no known container.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

type container int

const (
	containerUnknown container = iota
	containerM4A
	containerMP3
	containerFLAC
)

func (c container) String() string {
	switch c {
	case containerM4A:
		return "M4A"
	case containerMP3:
		return "MP3"
	case containerFLAC:
		return "FLAC"
	case containerUnknown:
	}
	return "unknown"
}

// sniff identifies the container from the first bytes of an audio file.
// Bilibili audio streams are fragmented MP4; MP3 and FLAC show up on
// some mirrors.
func sniff(head []byte) container {
	switch {
	case len(head) >= 8 && bytes.Equal(head[4:8], []byte("ftyp")):
		return containerM4A
	case bytes.HasPrefix(head, []byte("fLaC")):
		return containerFLAC
	case bytes.HasPrefix(head, []byte("ID3")):
		return containerMP3
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return containerMP3
	}
	return containerUnknown
}

// decode opens rc with the decoder matching its content. rc is owned by
// the returned streamer and closed with it.
func decode(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, container, error) {
	head := make([]byte, 12)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, beep.Format{}, containerUnknown, fmt.Errorf("read header: %w", err)
	}
	if _, err := rc.Seek(0, io.SeekStart); err != nil {
		return nil, beep.Format{}, containerUnknown, err
	}

	kind := sniff(head[:n])
	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch kind {
	case containerM4A:
		s, format, err = decodeM4A(rc)
	case containerMP3:
		s, format, err = decodeMP3(rc)
	case containerFLAC:
		s, format, err = flac.Decode(rc)
	case containerUnknown:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return nil, beep.Format{}, kind, err
	}
	return s, format, kind, nil
}

// m4aStream decodes AAC or ALAC packets from an MP4 container.
type m4aStream struct {
	src      *m4a.Reader
	closer   io.Closer
	rate     int
	channels int
	depth    int
	length   int
	idx      int
	err      error

	aac  *faad2.Decoder
	alac *alac.Alac

	pending [][2]float64
}

func decodeM4A(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	src, err := m4a.Open(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}

	s := &m4aStream{
		src:      src,
		closer:   rc,
		rate:     int(src.SampleRate()),
		channels: int(src.Channels()),
		depth:    int(src.SampleSize()),
	}
	s.length = int(src.Duration().Seconds() * float64(s.rate))

	precision := 2
	switch src.Codec() {
	case m4a.CodecAAC:
		ctx := context.Background()
		dec, err := faad2.NewDecoder(ctx)
		if err != nil {
			return nil, beep.Format{}, err
		}
		if err := dec.Init(ctx, src.CodecConfig()); err != nil {
			dec.Close(ctx)
			return nil, beep.Format{}, err
		}
		s.aac = dec
	case m4a.CodecALAC:
		dec, err := alac.NewWithConfig(alac.Config{
			SampleRate:  s.rate,
			SampleSize:  s.depth,
			NumChannels: s.channels,
			FrameSize:   4096,
		})
		if err != nil {
			return nil, beep.Format{}, err
		}
		s.alac = dec
		if s.depth == 24 {
			precision = 3
		}
	case m4a.CodecUnknown:
		return nil, beep.Format{}, fmt.Errorf("m4a: %w", ErrUnsupportedFormat)
	}

	return s, beep.Format{
		SampleRate:  beep.SampleRate(s.rate),
		NumChannels: 2,
		Precision:   precision,
	}, nil
}

func (s *m4aStream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}
	for n < len(samples) {
		if len(s.pending) > 0 {
			c := copy(samples[n:], s.pending)
			s.pending = s.pending[c:]
			n += c
			continue
		}
		if s.idx >= s.src.SampleCount() {
			return n, n > 0
		}
		packet, err := s.src.ReadSample(s.idx)
		if err != nil {
			s.err = err
			return n, n > 0
		}
		s.idx++
		if s.pending, err = s.decodePacket(packet); err != nil {
			s.err = err
			return n, n > 0
		}
	}
	return n, true
}

func (s *m4aStream) decodePacket(packet []byte) ([][2]float64, error) {
	if s.aac != nil {
		pcm, err := s.aac.Decode(context.Background(), packet)
		if err != nil {
			return nil, err
		}
		return int16Frames(pcm, s.channels), nil
	}
	raw := s.alac.Decode(packet)
	if s.depth == 24 {
		return int24Frames(raw, s.channels), nil
	}
	return int16Frames(leInt16s(raw), s.channels), nil
}

func (s *m4aStream) Err() error { return s.err }

func (s *m4aStream) Len() int { return s.length }

func (s *m4aStream) Position() int {
	return int(s.src.SampleTime(s.idx).Seconds() * float64(s.rate))
}

func (s *m4aStream) Seek(p int) error {
	p = max(0, min(p, s.length))
	at := time.Duration(float64(p) / float64(s.rate) * float64(time.Second))
	s.idx = s.src.SeekToTime(at)
	s.pending = nil
	s.err = nil
	return nil
}

func (s *m4aStream) Close() error {
	if s.aac != nil {
		s.aac.Close(context.Background())
	}
	return s.closer.Close()
}

// mp3Stream adapts go-mp3's interleaved 16-bit stereo output.
type mp3Stream struct {
	dec    *mp3.Decoder
	closer io.Closer
	buf    []byte
	err    error
}

func decodeMP3(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	dec, err := mp3.NewDecoder(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}
	if dec.SampleRate() == 0 {
		return nil, beep.Format{}, errors.New("mp3: invalid sample rate")
	}
	return &mp3Stream{dec: dec, closer: rc}, beep.Format{
		SampleRate:  beep.SampleRate(dec.SampleRate()),
		NumChannels: 2,
		Precision:   2,
	}, nil
}

func (s *mp3Stream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}
	want := len(samples) * 4
	if cap(s.buf) < want {
		s.buf = make([]byte, want)
	}
	got, err := io.ReadFull(s.dec, s.buf[:want])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		s.err = err
		return 0, false
	}
	frames := int16Frames(leInt16s(s.buf[:got-got%4]), 2)
	n = copy(samples, frames)
	return n, n > 0
}

func (s *mp3Stream) Err() error { return s.err }

func (s *mp3Stream) Len() int { return int(max(s.dec.SampleCount(), 0)) }

func (s *mp3Stream) Position() int { return int(s.dec.SamplePosition()) }

func (s *mp3Stream) Seek(p int) error {
	p = max(0, min(p, s.Len()))
	if err := s.dec.SeekToSample(int64(p)); err != nil {
		return err
	}
	s.err = nil
	return nil
}

func (s *mp3Stream) Close() error { return s.closer.Close() }

func leInt16s(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2:])) //nolint:gosec // audio samples
	}
	return out
}

// int16Frames converts interleaved PCM to stereo frames, duplicating mono.
func int16Frames(pcm []int16, channels int) [][2]float64 {
	if channels < 1 {
		channels = 1
	}
	frames := make([][2]float64, len(pcm)/channels)
	for i := range frames {
		l := float64(pcm[i*channels]) / 32768.0
		r := l
		if channels > 1 {
			r = float64(pcm[i*channels+1]) / 32768.0
		}
		frames[i] = [2]float64{l, r}
	}
	return frames
}

// int24Frames converts interleaved little-endian 24-bit PCM to stereo frames.
func int24Frames(data []byte, channels int) [][2]float64 {
	if channels < 1 {
		channels = 1
	}
	stride := 3 * channels
	frames := make([][2]float64, len(data)/stride)
	for i := range frames {
		off := i * stride
		l := float64(int24(data[off:])) / 8388608.0
		r := l
		if channels > 1 {
			r = float64(int24(data[off+3:])) / 8388608.0
		}
		frames[i] = [2]float64{l, r}
	}
	return frames
}

func int24(b []byte) int32 {
	v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	if v&0x800000 != 0 {
		v |= ^0xFFFFFF
	}
	return v
}
