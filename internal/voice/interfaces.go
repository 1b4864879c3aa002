// Package voice turns audio into text and text into audio, and runs
// the per-connection conversation loop between the two.
package voice

import "context"

// Transcriber converts one utterance of raw PCM into text. An empty
// string with a nil error means the audio contained no usable speech;
// callers must treat that as silence, not as a failure.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []byte, sampleRateHz int) (string, error)
}

// Synthesizer renders reply text into encoded audio ready to play.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (audio []byte, format string, err error)
}

// Provider bundles both directions of a speech backend.
type Provider interface {
	Transcriber
	Synthesizer
}
