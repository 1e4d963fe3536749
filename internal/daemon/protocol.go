// Package daemon implements the transcription protocol between short-lived
// CLI invocations and the long-running worker: one connection per request
// over a well-known unix socket, JSON envelopes both ways.
package daemon

import (
	"errors"
	"fmt"

	"github.com/Nikola-Milovic/whisp-away/internal/transcribe"
)

var (
	// ErrUnreachable means no daemon is listening on the socket. Not a
	// protocol error: it signals the caller to take the direct fallback.
	ErrUnreachable = errors.New("daemon unreachable")
	// ErrMalformedResponse means a response arrived but could not be
	// decoded into a success or failure. Distinct from a backend failure.
	ErrMalformedResponse = errors.New("malformed daemon response")
)

// Request asks the daemon to transcribe one audio file. The ID correlates
// request and response within a connection.
type Request struct {
	ID        string `json:"id,omitempty"`
	AudioPath string `json:"audio_path"`
}

// Response is the daemon's answer. Text is a pointer so a success without a
// text field is distinguishable from a legitimate empty transcript.
type Response struct {
	ID      string  `json:"id,omitempty"`
	Success bool    `json:"success"`
	Text    *string `json:"text,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// Result reduces the envelope to its tagged outcome: the transcript on
// success, ErrBackend with detail on failure, ErrMalformedResponse when the
// envelope claims success but carries no extractable text.
func (r Response) Result() (string, error) {
	if !r.Success {
		detail := r.Error
		if detail == "" {
			detail = "no error detail provided"
		}
		return "", fmt.Errorf("%w: %s", transcribe.ErrBackend, detail)
	}
	if r.Text == nil {
		return "", fmt.Errorf("%w: success without text field", ErrMalformedResponse)
	}
	return *r.Text, nil
}
