package audio

import (
	"encoding/base64"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pcmOf(samples ...int16) []byte {
	b := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(s))
	}
	return b
}

func TestEncodeWAV_Header(t *testing.T) {
	pcm := pcmOf(0, 1, -1, 32767, -32768)
	wav := EncodeWAV(pcm)

	require.Len(t, wav, HeaderSize+len(pcm))
	le := binary.LittleEndian

	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, uint32(36+len(pcm)), le.Uint32(wav[4:8]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.Equal(t, uint32(16), le.Uint32(wav[16:20]))
	assert.Equal(t, uint16(1), le.Uint16(wav[20:22]))
	assert.Equal(t, uint16(1), le.Uint16(wav[22:24]))
	assert.Equal(t, uint32(24000), le.Uint32(wav[24:28]))
	assert.Equal(t, uint32(48000), le.Uint32(wav[28:32]))
	assert.Equal(t, uint16(2), le.Uint16(wav[32:34]))
	assert.Equal(t, uint16(16), le.Uint16(wav[34:36]))
	assert.Equal(t, "data", string(wav[36:40]))
	assert.Equal(t, uint32(len(pcm)), le.Uint32(wav[40:44]))
}

func TestWAVRoundTrip(t *testing.T) {
	pcm := pcmOf(100, -200, 300, -400, 12345, -32768, 32767)

	got, format, err := DecodeWAV(EncodeWAV(pcm))
	require.NoError(t, err)

	assert.Equal(t, pcm, got)
	assert.Equal(t, uint32(24000), format.SampleRate)
	assert.Equal(t, uint16(1), format.Channels)
	assert.Equal(t, uint16(16), format.BitsPerSample)
}

func TestWAVRoundTrip_Empty(t *testing.T) {
	got, _, err := DecodeWAV(EncodeWAV(nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeWAV_Rejects(t *testing.T) {
	_, _, err := DecodeWAV([]byte("RIFF"))
	assert.ErrorIs(t, err, ErrInvalidWAV)

	bad := EncodeWAV(pcmOf(1, 2, 3))
	copy(bad[8:12], "AVI ")
	_, _, err = DecodeWAV(bad)
	assert.ErrorIs(t, err, ErrInvalidWAV)

	truncated := EncodeWAV(pcmOf(1, 2, 3))
	_, _, err = DecodeWAV(truncated[:len(truncated)-2])
	assert.ErrorIs(t, err, ErrInvalidWAV)
}

func TestSamples(t *testing.T) {
	buf := Samples(append(pcmOf(0, 16384, -32768), 0x7f))

	assert.Equal(t, 24000, buf.SampleRate)
	assert.Equal(t, 1, buf.Channels)
	require.Len(t, buf.Data, 3)
	assert.Equal(t, float32(0), buf.Data[0])
	assert.Equal(t, float32(0.5), buf.Data[1])
	assert.Equal(t, float32(-1), buf.Data[2])
}

func TestDecodeBase64PCM(t *testing.T) {
	pcm := pcmOf(7, -7)
	got, err := DecodeBase64PCM(base64.StdEncoding.EncodeToString(pcm))
	require.NoError(t, err)
	assert.Equal(t, pcm, got)

	_, err = DecodeBase64PCM("not base64!!")
	assert.Error(t, err)
}
