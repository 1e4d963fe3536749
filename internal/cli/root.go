package cli

import (
	"github.com/spf13/cobra"

	"github.com/Nikola-Milovic/whisp-away/config"
	"github.com/Nikola-Milovic/whisp-away/internal/app"
	"github.com/Nikola-Milovic/whisp-away/internal/version"
)

type Dependencies struct {
	App    *app.App
	Config *config.Config
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "whisp-away",
		Short: "Push-to-talk voice dictation",
		Long:  "A voice dictation tool: start a recording, stop it, and the transcript is typed at your cursor or copied to the clipboard.\nTranscription runs through a persistent daemon when one is up, or directly otherwise.",
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewStartCmd(deps))
	rootCmd.AddCommand(NewStopCmd(deps))
	rootCmd.AddCommand(NewToggleCmd(deps))
	rootCmd.AddCommand(NewStatusCmd(deps))
	rootCmd.AddCommand(NewDaemonCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}
