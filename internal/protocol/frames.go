// Package protocol defines the framing contract of the voice transport.
// The wire carries nothing but audio: inbound binary messages are raw
// PCM frames, outbound binary messages are encoded audio. Text only
// exists inside the gateway, between transcription and synthesis.
package protocol

import (
	"errors"
	"time"
)

// MaxFrameBytes bounds a single inbound audio frame. At 16 kHz 16-bit
// mono this is over 30 seconds of audio, far beyond a single utterance
// chunk; anything larger is a misbehaving client.
const MaxFrameBytes = 1 << 20

// DefaultSampleRateHz is the inbound PCM rate negotiated out of band.
const DefaultSampleRateHz = 16000

var ErrFrameTooLarge = errors.New("audio frame exceeds size limit")
var ErrEmptyFrame = errors.New("audio frame is empty")

// AudioFrame is one inbound unit: opaque PCM bytes from the client.
type AudioFrame struct {
	PCM        []byte
	SampleRate int
	ReceivedAt time.Time
}

// OutboundAudio is one outbound unit: encoded audio ready to play.
type OutboundAudio struct {
	Audio  []byte
	Format string
}

// NewAudioFrame validates raw transport bytes into a frame.
func NewAudioFrame(data []byte, sampleRate int) (AudioFrame, error) {
	if len(data) == 0 {
		return AudioFrame{}, ErrEmptyFrame
	}
	if len(data) > MaxFrameBytes {
		return AudioFrame{}, ErrFrameTooLarge
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRateHz
	}
	return AudioFrame{
		PCM:        data,
		SampleRate: sampleRate,
		ReceivedAt: time.Now(),
	}, nil
}
