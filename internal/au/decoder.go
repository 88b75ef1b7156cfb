// Package au decodes Sun/NeXT audio (.au) files into the interleaved
// 16-bit little-endian stereo PCM that Ebitengine's audio players consume.
package au

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	magic      = 0x2e736e64 // ".snd" in big-endian
	headerSize = 24
	unknownLen = 0xFFFFFFFF

	encodingULaw  = 1 // 8-bit G.711 μ-law
	encodingPCM16 = 3 // 16-bit big-endian linear PCM
)

// Stream is a decoded .au file. It implements io.ReadSeeker over the PCM bytes.
type Stream struct {
	pcm        []byte
	sampleRate int
	offset     int64
}

// IsAU reports whether data starts with the .au magic number.
func IsAU(data []byte) bool {
	return len(data) >= 4 && binary.BigEndian.Uint32(data) == magic
}

// Decode parses an .au file held in memory. Mono input is duplicated into
// both channels.
func Decode(data []byte) (*Stream, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("AU file too short: %d bytes (minimum %d)", len(data), headerSize)
	}
	if !IsAU(data) {
		return nil, fmt.Errorf("invalid AU magic number: 0x%08x", binary.BigEndian.Uint32(data))
	}

	dataOffset := binary.BigEndian.Uint32(data[4:])
	dataSize := binary.BigEndian.Uint32(data[8:])
	encoding := binary.BigEndian.Uint32(data[12:])
	sampleRate := binary.BigEndian.Uint32(data[16:])
	channels := binary.BigEndian.Uint32(data[20:])

	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("unsupported channel count: %d (only 1-2 supported)", channels)
	}
	if sampleRate == 0 {
		return nil, fmt.Errorf("invalid sample rate 0")
	}
	if dataOffset < headerSize || int(dataOffset) > len(data) {
		return nil, fmt.Errorf("invalid data offset: %d (file size: %d)", dataOffset, len(data))
	}

	body := data[dataOffset:]
	if dataSize != unknownLen && int(dataSize) < len(body) {
		body = body[:dataSize]
	}

	var samples []int16
	switch encoding {
	case encodingULaw:
		samples = make([]int16, len(body))
		for i, b := range body {
			samples[i] = ulaw(b)
		}
	case encodingPCM16:
		samples = make([]int16, len(body)/2)
		for i := range samples {
			samples[i] = int16(binary.BigEndian.Uint16(body[i*2:]))
		}
	default:
		return nil, fmt.Errorf("unsupported AU encoding: %d (supported: 1 μ-law, 3 PCM16)", encoding)
	}

	// whole frames only
	samples = samples[:len(samples)-len(samples)%int(channels)]

	frames := len(samples) / int(channels)
	pcm := make([]byte, frames*4)
	for f := 0; f < frames; f++ {
		left := samples[f*int(channels)]
		right := left
		if channels == 2 {
			right = samples[f*2+1]
		}
		binary.LittleEndian.PutUint16(pcm[f*4:], uint16(left))
		binary.LittleEndian.PutUint16(pcm[f*4+2:], uint16(right))
	}

	return &Stream{pcm: pcm, sampleRate: int(sampleRate)}, nil
}

// ulaw expands one G.711 μ-law byte.
func ulaw(b byte) int16 {
	u := ^b
	exponent := (u >> 4) & 0x07
	mantissa := int32(u & 0x0F)
	sample := ((mantissa<<3)+0x84)<<exponent - 0x84
	if u&0x80 != 0 {
		sample = -sample
	}
	return int16(sample)
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	if s.offset >= int64(len(s.pcm)) {
		return 0, io.EOF
	}
	n := copy(p, s.pcm[s.offset:])
	s.offset += int64(n)
	return n, nil
}

// Seek implements io.Seeker.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = s.offset + offset
	case io.SeekEnd:
		next = int64(len(s.pcm)) + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("negative position: %d", next)
	}
	s.offset = next
	return next, nil
}

// Length returns the PCM size in bytes.
func (s *Stream) Length() int64 {
	return int64(len(s.pcm))
}

// SampleRate returns the source sample rate in Hz.
func (s *Stream) SampleRate() int {
	return s.sampleRate
}
