// Package audio holds PCM helpers for the 16-bit little-endian mono
// format the gateway speaks.
package audio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"time"
)

const (
	numChannels   = 1
	bitsPerSample = 16
	bytesPerFrame = numChannels * bitsPerSample / 8
)

// Duration reports how much audio a PCM16LE buffer holds at the given
// sample rate.
func Duration(pcm []byte, sampleRate int) time.Duration {
	if sampleRate <= 0 || len(pcm) == 0 {
		return 0
	}
	samples := len(pcm) / bytesPerFrame
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}

// EncodeWAV wraps raw PCM16LE mono bytes in a WAV container.
func EncodeWAV(pcm []byte, sampleRate int) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteWAV(&buf, pcm, sampleRate); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteWAVFile writes raw PCM16LE mono bytes to path as a WAV file.
// Used by the utterance debug capture.
func WriteWAVFile(path string, pcm []byte, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteWAV(f, pcm, sampleRate)
}

// WriteWAV streams raw PCM16LE mono bytes to out as a WAV file.
func WriteWAV(out io.Writer, pcm []byte, sampleRate int) error {
	const audioFormat = 1 // PCM
	if sampleRate <= 0 {
		sampleRate = 16000
	}

	dataSize := uint32(len(pcm))
	byteRate := uint32(sampleRate * bytesPerFrame)

	w := bufio.NewWriter(out)
	if _, err := w.WriteString("RIFF"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36)+dataSize); err != nil {
		return err
	}
	if _, err := w.WriteString("WAVEfmt "); err != nil {
		return err
	}
	for _, v := range []any{
		uint32(16),
		uint16(audioFormat),
		uint16(numChannels),
		uint32(sampleRate),
		byteRate,
		uint16(bytesPerFrame),
		uint16(bitsPerSample),
	} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if _, err := w.WriteString("data"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, dataSize); err != nil {
		return err
	}
	if _, err := w.Write(pcm); err != nil {
		return err
	}
	return w.Flush()
}
