package main

import (
	"encoding/binary"
	"sync"

	"github.com/milk9111/tileworld/engine"
)

// soundStream feeds the audio player from GetSoundSamples as 16-bit
// little-endian stereo.
type soundStream struct {
	mu  *sync.Mutex
	mem *engine.Memory

	sampleRate int
	buf        engine.SoundBuffer
}

func (s *soundStream) Read(p []byte) (int, error) {
	frames := len(p) / 4
	if frames == 0 {
		return 0, nil
	}
	if cap(s.buf.Samples) < 2*frames {
		s.buf.Samples = make([]int16, 2*frames)
	}
	s.buf.Samples = s.buf.Samples[:2*frames]
	s.buf.SampleCount = frames
	s.buf.SamplesPerSecond = s.sampleRate

	s.mu.Lock()
	err := engine.GetSoundSamples(s.mem, &s.buf)
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	for i, v := range s.buf.Samples {
		binary.LittleEndian.PutUint16(p[2*i:], uint16(v))
	}
	return 4 * frames, nil
}
