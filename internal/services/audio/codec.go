// Package audio turns base64 PCM16 speech payloads into float buffers and
// hands them to an output device.
package audio

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/deepgram/shopfront/pkg/logger"
)

var (
	// ErrDecode marks a malformed audio payload.
	ErrDecode = errors.New("audio: malformed payload")
	// ErrEmptyPayload marks a payload with no samples.
	ErrEmptyPayload = errors.New("audio: empty payload")
	// ErrCapabilityUnavailable means there is no usable output device.
	ErrCapabilityUnavailable = errors.New("audio: output capability unavailable")
)

// Buffer is de-interleaved float audio, one slice per channel, samples in [-1, 1].
type Buffer struct {
	SampleRate int
	Data       [][]float32
}

func (b *Buffer) Channels() int {
	return len(b.Data)
}

// Frames is the number of samples per channel.
func (b *Buffer) Frames() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// PCM16 re-quantises the buffer into interleaved signed 16-bit little-endian bytes.
func (b *Buffer) PCM16() []byte {
	ch := b.Channels()
	frames := b.Frames()
	out := make([]byte, frames*ch*2)
	for f := 0; f < frames; f++ {
		for c := 0; c < ch; c++ {
			v := math.Round(float64(b.Data[c][f]) * 32768)
			if v > math.MaxInt16 {
				v = math.MaxInt16
			} else if v < math.MinInt16 {
				v = math.MinInt16
			}
			binary.LittleEndian.PutUint16(out[(f*ch+c)*2:], uint16(int16(v)))
		}
	}
	return out
}

// Base64 encodes PCM16 for transport.
func (b *Buffer) Base64() string {
	return base64.StdEncoding.EncodeToString(b.PCM16())
}

// Decode parses base64 PCM16 into a Buffer of the given shape.
func Decode(payload string, sampleRate, channels int) (*Buffer, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return DecodePCM16(raw, sampleRate, channels)
}

// DecodePCM16 de-interleaves raw little-endian samples. A trailing odd byte
// and any samples short of a whole frame are dropped.
func DecodePCM16(raw []byte, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrDecode, sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("%w: channel count %d", ErrDecode, channels)
	}

	total := len(raw) / 2
	frames := total / channels
	if frames == 0 {
		return nil, ErrEmptyPayload
	}

	data := make([][]float32, channels)
	for c := range data {
		data[c] = make([]float32, frames)
	}
	for f := 0; f < frames; f++ {
		for c := 0; c < channels; c++ {
			i := (f*channels + c) * 2
			sample := int16(uint16(raw[i]) | uint16(raw[i+1])<<8)
			data[c][f] = float32(sample) / 32768
		}
	}

	return &Buffer{SampleRate: sampleRate, Data: data}, nil
}

// Player submits a buffer to an output and blocks until playback finishes.
type Player interface {
	Play(ctx context.Context, buf *Buffer) error
}

// NopPlayer discards audio.
type NopPlayer struct{}

func (NopPlayer) Play(context.Context, *Buffer) error { return nil }

type Codec struct {
	player Player
}

// NewCodec plays through player; a nil player behaves as having no output device.
func NewCodec(player Player) *Codec {
	return &Codec{player: player}
}

// DecodeAndPlay decodes payload and plays it, returning whether anything was
// played. Failures are logged and swallowed.
func (c *Codec) DecodeAndPlay(ctx context.Context, payload string, sampleRate, channels int) bool {
	buf, err := Decode(payload, sampleRate, channels)
	if err != nil {
		logger.Debug(logger.AUDIO, "Skipping playback: %v", err)
		return false
	}

	if c.player == nil {
		logger.Debug(logger.AUDIO, "Skipping playback: %v", ErrCapabilityUnavailable)
		return false
	}

	if err := c.player.Play(ctx, buf); err != nil {
		logger.Debug(logger.AUDIO, "Playback failed: %v", err)
		return false
	}

	logger.Debug(logger.AUDIO, "Played %s of audio at %d Hz", buf.Duration(), buf.SampleRate)
	return true
}
