package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestNewAudioFrame(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	f, err := NewAudioFrame(pcm, 0)
	if err != nil {
		t.Fatalf("NewAudioFrame() error = %v", err)
	}
	if !bytes.Equal(f.PCM, pcm) {
		t.Fatalf("PCM = %v, want %v", f.PCM, pcm)
	}
	if f.SampleRate != DefaultSampleRateHz {
		t.Fatalf("SampleRate = %d, want %d", f.SampleRate, DefaultSampleRateHz)
	}
	if f.ReceivedAt.IsZero() {
		t.Fatalf("ReceivedAt should be set")
	}
}

func TestNewAudioFrameRejectsEmpty(t *testing.T) {
	if _, err := NewAudioFrame(nil, 16000); !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("error = %v, want ErrEmptyFrame", err)
	}
}

func TestNewAudioFrameRejectsOversize(t *testing.T) {
	big := make([]byte, MaxFrameBytes+1)
	if _, err := NewAudioFrame(big, 16000); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("error = %v, want ErrFrameTooLarge", err)
	}
}
