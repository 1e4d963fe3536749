package output

import (
	"fmt"
	"io"
	"time"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) RecordingStarted(audioPath string) {
	fmt.Fprintf(f.w, "🎙️  Recording... (run 'whisp-away stop' to finish)\n")
	fmt.Fprintf(f.w, "    %s\n", audioPath)
}

func (f *Formatter) RecordingStopped(duration time.Duration) {
	if duration > 0 {
		fmt.Fprintf(f.w, "⏹️  Recording stopped (%s)\n", formatDuration(duration))
		return
	}
	fmt.Fprintf(f.w, "⏹️  Recording stopped\n")
}

func (f *Formatter) Transcribing(backend, model string) {
	fmt.Fprintf(f.w, "📝 Transcribing... (%s, model %s)\n", backend, model)
}

func (f *Formatter) Transcript(text, route string) {
	fmt.Fprintf(f.w, "✅ Transcribed via %s:\n%s\n", route, text)
}

func (f *Formatter) NoSpeech() {
	fmt.Fprintf(f.w, "🤫 No speech detected\n")
}

func (f *Formatter) Status(recording bool) {
	if recording {
		fmt.Fprintf(f.w, "🎙️  Recording in progress\n")
	} else {
		fmt.Fprintf(f.w, "💤 Idle\n")
	}
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s: %s\n", name, detail)
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
