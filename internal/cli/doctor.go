package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Nikola-Milovic/whisp-away/internal/output"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(os.Stdout)
			ok := true

			captureBin := deps.Config.CaptureCommand[0]
			if _, err := exec.LookPath(captureBin); err != nil {
				f.SetupCheck("Capture", false, fmt.Sprintf("%s not found in PATH", captureBin))
				ok = false
			} else {
				f.SetupCheck("Capture", true, captureBin)
			}

			transcribeBin := deps.Config.TranscribeCommand[0]
			if _, err := exec.LookPath(transcribeBin); err != nil {
				f.SetupCheck("Transcriber", false, fmt.Sprintf("%s not found in PATH", transcribeBin))
				ok = false
			} else {
				f.SetupCheck("Transcriber", true, transcribeBin)
			}

			if err := checkWritable(deps.Config.RuntimeDir); err != nil {
				f.SetupCheck("Runtime dir", false, fmt.Sprintf("%s: %v", deps.Config.RuntimeDir, err))
				ok = false
			} else {
				f.SetupCheck("Runtime dir", true, deps.Config.RuntimeDir)
			}

			if daemonReachable(deps.Config.SocketPath) {
				f.SetupCheck("Daemon", true, fmt.Sprintf("listening on %s", deps.Config.SocketPath))
			} else {
				f.SetupCheck("Daemon", true, "not running; transcription will run directly (start with 'whisp-away daemon')")
			}

			f.SetupCheck("Model", true, deps.Config.Model)

			if ok {
				f.Success("\nAll prerequisites met. Ready to dictate!")
			} else {
				f.Warning("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	probe := filepath.Join(dir, ".doctor-probe")
	if err := os.WriteFile(probe, nil, 0o600); err != nil {
		return err
	}
	return os.Remove(probe)
}
