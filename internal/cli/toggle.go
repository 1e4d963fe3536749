package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Nikola-Milovic/whisp-away/internal/output"
)

func NewToggleCmd(deps *Dependencies) *cobra.Command {
	var flags transcribeFlags

	cmd := &cobra.Command{
		Use:   "toggle",
		Short: "Start or stop recording depending on state",
		Long:  "Start a recording if none is running, otherwise stop and transcribe.\nBind this to a hotkey for push-to-talk dictation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			if deps.App.Sessions.IsRecording() {
				return runStop(cmd, deps, &flags, formatter)
			}
			return runStart(deps, formatter)
		},
	}

	flags.register(cmd, deps)

	return cmd
}
