package transcribe

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCommandTranscribe(t *testing.T) {
	// echo prints its arguments, so the output is "<path> <model>".
	c := NewCommand([]string{"echo"}, "base.en")
	got, err := c.Transcribe(context.Background(), "/tmp/rec.wav")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got != "/tmp/rec.wav base.en" {
		t.Errorf("Transcribe = %q, want audio path and model as args", got)
	}
}

func TestCommandTranscribeFailure(t *testing.T) {
	// The appended audio path and model land in $0/$1 of the -c script.
	c := NewCommand([]string{"sh", "-c", "echo model load failed >&2; exit 3"}, "base.en")
	_, err := c.Transcribe(context.Background(), "/tmp/rec.wav")
	if !errors.Is(err, ErrBackend) {
		t.Fatalf("Transcribe = %v, want ErrBackend", err)
	}
	if !strings.Contains(err.Error(), "model load failed") {
		t.Errorf("error %q does not carry the backend's stderr detail", err)
	}
}

func TestCommandTranscribeTrimsOutput(t *testing.T) {
	c := NewCommand([]string{"sh", "-c", `printf "  hello world\n\n"`}, "base.en")
	got, err := c.Transcribe(context.Background(), "/tmp/rec.wav")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got != "hello world" {
		t.Errorf("Transcribe = %q, want trimmed text", got)
	}
}

func TestCommandLoadMissingBinary(t *testing.T) {
	c := NewCommand([]string{"definitely-not-installed-anywhere"}, "base.en")
	if err := c.Load(context.Background()); err == nil {
		t.Error("Load succeeded for a missing binary")
	}
}

func TestCommandName(t *testing.T) {
	c := NewCommand([]string{"/usr/local/bin/whisper-transcribe", "--fast"}, "base.en")
	if c.Name() != "whisper-transcribe" {
		t.Errorf("Name = %q", c.Name())
	}
}
