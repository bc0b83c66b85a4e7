package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// SpeakerPlayer plays buffers on the default output device. The device is
// opened lazily and reopened when the sample rate changes.
type SpeakerPlayer struct {
	mu         sync.Mutex
	sampleRate int
}

func NewSpeakerPlayer() *SpeakerPlayer {
	return &SpeakerPlayer{}
}

func (p *SpeakerPlayer) init(rate int) error {
	if p.sampleRate == rate {
		return nil
	}
	if p.sampleRate != 0 {
		speaker.Close()
		p.sampleRate = 0
	}

	sr := beep.SampleRate(rate)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return fmt.Errorf("%w: %v", ErrCapabilityUnavailable, err)
	}
	p.sampleRate = rate
	return nil
}

func (p *SpeakerPlayer) Play(ctx context.Context, buf *Buffer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.init(buf.SampleRate); err != nil {
		return err
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(NewStreamer(buf), beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

// Streamer adapts a Buffer to beep. Mono is duplicated onto both channels.
type Streamer struct {
	buf *Buffer
	pos int
}

func NewStreamer(buf *Buffer) *Streamer {
	return &Streamer{buf: buf}
}

func (s *Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	frames := s.buf.Frames()
	if s.pos >= frames {
		return 0, false
	}

	left := s.buf.Data[0]
	right := left
	if s.buf.Channels() > 1 {
		right = s.buf.Data[1]
	}

	for n < len(samples) && s.pos < frames {
		samples[n][0] = float64(left[s.pos])
		samples[n][1] = float64(right[s.pos])
		n++
		s.pos++
	}
	return n, true
}

func (s *Streamer) Err() error {
	return nil
}
