package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Nikola-Milovic/whisp-away/config"
	"github.com/Nikola-Milovic/whisp-away/internal/daemon"
	"github.com/Nikola-Milovic/whisp-away/internal/output"
	"github.com/Nikola-Milovic/whisp-away/internal/transcribe"
)

func NewDaemonCmd(deps *Dependencies) *cobra.Command {
	var model string
	var socket string

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the transcription daemon",
		Long:  "Load the transcription backend once and serve requests over a unix socket.\nKeeping the daemon running avoids per-invocation model startup cost.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			backend := transcribe.NewCommand(deps.Config.TranscribeCommand, model)
			formatter.Info(fmt.Sprintf("Loading %s (model %s)", backend.Name(), model))
			if err := backend.Load(ctx); err != nil {
				return fmt.Errorf("loading transcription backend: %w", err)
			}

			settingsPath := deps.Config.DaemonSettingsPath()
			settings := config.DaemonSettings{
				Model:        model,
				SocketPath:   socket,
				UseClipboard: &deps.Config.UseClipboard,
			}
			if err := config.WriteDaemonSettings(settingsPath, settings); err != nil {
				return err
			}
			defer config.RemoveDaemonSettings(settingsPath)

			formatter.Info(fmt.Sprintf("Listening on %s", socket))
			return daemon.NewServer(socket, backend).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&model, "model", deps.Config.Model, "Whisper model to load")
	cmd.Flags().StringVar(&socket, "socket", deps.Config.SocketPath, "Unix socket to listen on")

	return cmd
}
