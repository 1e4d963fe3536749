package capture

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// Recorder launches the external capture program as a detached background
// process. The command is the configured argv prefix; the artifact path is
// appended as the final argument. The program is expected to write mono
// 16 kHz 16-bit PCM WAV and to flush and exit on SIGINT/SIGTERM.
type Recorder struct {
	Command []string
}

func New(command []string) *Recorder {
	return &Recorder{Command: command}
}

// CheckBinary verifies the capture program is installed.
func (r *Recorder) CheckBinary() error {
	if len(r.Command) == 0 {
		return fmt.Errorf("capture command not configured")
	}
	if _, err := exec.LookPath(r.Command[0]); err != nil {
		return fmt.Errorf("%s not found in PATH", r.Command[0])
	}
	return nil
}

// Start spawns the capture process against outputPath and returns its pid.
// The process is released so it keeps recording after this CLI invocation
// exits.
func (r *Recorder) Start(outputPath string) (int, error) {
	if err := r.CheckBinary(); err != nil {
		return 0, err
	}
	args := append(append([]string{}, r.Command[1:]...), outputPath)
	cmd := exec.Command(r.Command[0], args...)

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err == nil {
		cmd.Stdin, cmd.Stdout, cmd.Stderr = devnull, devnull, devnull
		defer devnull.Close()
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting %s: %w", r.Command[0], err)
	}
	pid := cmd.Process.Pid
	log.Debug().Int("pid", pid).Strs("command", r.Command).Msg("capture process spawned")

	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("detaching capture process: %w", err)
	}
	return pid, nil
}
