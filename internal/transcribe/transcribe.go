// Package transcribe defines the speech-to-text backend boundary. The
// backend is opaque to the rest of the system: audio path in, text out.
package transcribe

import (
	"context"
	"errors"
)

// ErrBackend marks a transcription failure reported by the backend itself,
// as opposed to transport problems reaching it.
var ErrBackend = errors.New("transcription failed")

type Backend interface {
	Name() string
	// Load prepares the backend; the daemon calls it once so requests hit a
	// warm model.
	Load(ctx context.Context) error
	// Transcribe converts the audio at path to text. Empty text is a valid
	// result meaning no speech was detected.
	Transcribe(ctx context.Context, audioPath string) (string, error)
}
