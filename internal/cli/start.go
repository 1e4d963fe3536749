package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/Nikola-Milovic/whisp-away/internal/output"
	"github.com/Nikola-Milovic/whisp-away/internal/session"
)

func NewStartCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start recording",
		Long:  "Start a background recording. Run 'whisp-away stop' (or 'toggle') to finish and transcribe.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)
			return runStart(deps, formatter)
		},
	}

	return cmd
}

func runStart(deps *Dependencies, formatter *output.Formatter) error {
	audioPath, err := deps.App.Sessions.Start()
	if errors.Is(err, session.ErrBusy) {
		formatter.Warning("Recording already in progress")
		return nil
	}
	if err != nil {
		output.Notifyf("Recording failed: %v", err)
		return err
	}

	formatter.RecordingStarted(audioPath)
	output.Notify("Recording...")
	return nil
}
