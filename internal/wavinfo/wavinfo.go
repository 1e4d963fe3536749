// Package wavinfo inspects recorded WAV artifacts.
package wavinfo

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// HeaderSize is the size of a canonical PCM WAV header; a file at or below
// this size holds no audio.
const HeaderSize = 44

type Info struct {
	Path       string
	SizeBytes  int64
	Duration   time.Duration
	SampleRate int
	Channels   int
	BitDepth   int
	Empty      bool
}

// Inspect stats and decodes the WAV header at path. A missing file is an
// error; a header-only file reports Empty without a decode attempt.
func Inspect(path string) (Info, error) {
	info := Info{Path: path}

	st, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return info, fmt.Errorf("artifact missing: %s", path)
	}
	if err != nil {
		return info, err
	}
	info.SizeBytes = st.Size()
	if st.Size() <= HeaderSize {
		info.Empty = true
		return info, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return info, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	d.ReadInfo()
	if !d.IsValidFile() {
		return info, fmt.Errorf("not a valid WAV file: %s", path)
	}
	info.SampleRate = int(d.SampleRate)
	info.Channels = int(d.NumChans)
	info.BitDepth = int(d.BitDepth)
	if dur, err := d.Duration(); err == nil {
		info.Duration = dur
	}
	return info, nil
}
