// Package audio converts the gateway's raw speech output (base64 encoded,
// little-endian 16-bit mono PCM at 24 kHz) into playable buffers and WAV
// files.
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	SampleRate    = 24000
	Channels      = 1
	BitsPerSample = 16
	BlockAlign    = Channels * BitsPerSample / 8
	ByteRate      = SampleRate * BlockAlign

	HeaderSize = 44
)

var ErrInvalidWAV = errors.New("invalid wav data")

type Format struct {
	SampleRate    uint32
	Channels      uint16
	BitsPerSample uint16
}

// Buffer is decoded audio ready for playback, samples normalized to [-1, 1).
type Buffer struct {
	SampleRate int       `json:"sampleRate"`
	Channels   int       `json:"channels"`
	Data       []float32 `json:"data"`
}

func DecodeBase64PCM(s string) ([]byte, error) {
	pcm, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode pcm: %w", err)
	}
	return pcm, nil
}

// Samples converts PCM bytes to a playback buffer. A trailing odd byte is
// not a full sample and is ignored.
func Samples(pcm []byte) Buffer {
	n := len(pcm) / 2
	data := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(pcm[2*i:]))
		data[i] = float32(v) / 32768.0
	}
	return Buffer{SampleRate: SampleRate, Channels: Channels, Data: data}
}

// EncodeWAV wraps pcm in a canonical 44-byte RIFF/WAVE header.
func EncodeWAV(pcm []byte) []byte {
	out := make([]byte, HeaderSize+len(pcm))
	le := binary.LittleEndian

	copy(out[0:4], "RIFF")
	le.PutUint32(out[4:8], uint32(36+len(pcm)))
	copy(out[8:12], "WAVE")

	copy(out[12:16], "fmt ")
	le.PutUint32(out[16:20], 16)
	le.PutUint16(out[20:22], 1) // PCM
	le.PutUint16(out[22:24], Channels)
	le.PutUint32(out[24:28], SampleRate)
	le.PutUint32(out[28:32], ByteRate)
	le.PutUint16(out[32:34], BlockAlign)
	le.PutUint16(out[34:36], BitsPerSample)

	copy(out[36:40], "data")
	le.PutUint32(out[40:44], uint32(len(pcm)))

	copy(out[HeaderSize:], pcm)
	return out
}

// DecodeWAV reads back a file produced by EncodeWAV.
func DecodeWAV(b []byte) ([]byte, Format, error) {
	var f Format
	if len(b) < HeaderSize {
		return nil, f, fmt.Errorf("%w: %d bytes is shorter than the header", ErrInvalidWAV, len(b))
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" || string(b[12:16]) != "fmt " || string(b[36:40]) != "data" {
		return nil, f, fmt.Errorf("%w: unexpected chunk ids", ErrInvalidWAV)
	}

	le := binary.LittleEndian
	if le.Uint16(b[20:22]) != 1 {
		return nil, f, fmt.Errorf("%w: not linear pcm", ErrInvalidWAV)
	}
	f.Channels = le.Uint16(b[22:24])
	f.SampleRate = le.Uint32(b[24:28])
	f.BitsPerSample = le.Uint16(b[34:36])

	size := int(le.Uint32(b[40:44]))
	if size > len(b)-HeaderSize {
		return nil, f, fmt.Errorf("%w: data chunk truncated", ErrInvalidWAV)
	}
	if int(le.Uint32(b[4:8])) != 36+size {
		return nil, f, fmt.Errorf("%w: riff size mismatch", ErrInvalidWAV)
	}

	pcm := make([]byte, size)
	copy(pcm, b[HeaderSize:HeaderSize+size])
	return pcm, f, nil
}
