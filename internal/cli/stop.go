package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/Nikola-Milovic/whisp-away/internal/daemon"
	"github.com/Nikola-Milovic/whisp-away/internal/deliver"
	"github.com/Nikola-Milovic/whisp-away/internal/output"
	"github.com/Nikola-Milovic/whisp-away/internal/session"
	"github.com/Nikola-Milovic/whisp-away/internal/transcribe"
	"github.com/Nikola-Milovic/whisp-away/internal/wavinfo"
)

// transcribeFlags are shared by stop and toggle; they override the loaded
// config for a single invocation.
type transcribeFlags struct {
	audioFile    string
	model        string
	socket       string
	useClipboard bool
}

func (f *transcribeFlags) register(cmd *cobra.Command, deps *Dependencies) {
	cmd.Flags().StringVar(&f.audioFile, "audio-file", "", "Transcribe this file instead of the recorded one")
	cmd.Flags().StringVar(&f.model, "model", deps.Config.Model, "Whisper model to use in direct mode")
	cmd.Flags().StringVar(&f.socket, "socket", deps.Config.SocketPath, "Daemon socket path")
	cmd.Flags().BoolVar(&f.useClipboard, "clipboard", deps.Config.UseClipboard, "Copy the transcript instead of typing it")
}

func NewStopCmd(deps *Dependencies) *cobra.Command {
	var flags transcribeFlags

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop recording and transcribe",
		Long:  "Stop the background recording, transcribe the audio, and deliver the text at the cursor or onto the clipboard.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)
			return runStop(cmd, deps, &flags, formatter)
		},
	}

	flags.register(cmd, deps)

	return cmd
}

func runStop(cmd *cobra.Command, deps *Dependencies, flags *transcribeFlags, formatter *output.Formatter) error {
	audioPath, err := deps.App.Sessions.Stop(flags.audioFile)
	if errors.Is(err, session.ErrNotFound) {
		formatter.Info("No recording in progress")
		return nil
	}
	if errors.Is(err, session.ErrEmptyArtifact) {
		formatter.NoSpeech()
		output.Notify("No speech detected")
		return nil
	}
	if err != nil {
		output.Notifyf("Stopping recording failed: %v", err)
		return err
	}

	if info, err := wavinfo.Inspect(audioPath); err == nil {
		formatter.RecordingStopped(info.Duration)
	} else {
		formatter.RecordingStopped(0)
	}

	return transcribeAndDeliver(cmd, deps, flags, formatter, audioPath)
}

// transcribeAndDeliver runs the daemon-first transcription of audioPath and
// hands the text to the user. The artifact is consumed on success.
func transcribeAndDeliver(cmd *cobra.Command, deps *Dependencies, flags *transcribeFlags, formatter *output.Formatter, audioPath string) error {
	backend := transcribe.NewCommand(deps.Config.TranscribeCommand, flags.model)
	client := daemon.NewClient(flags.socket)

	formatter.Transcribing(backend.Name(), flags.model)
	text, route, err := daemon.Transcribe(cmd.Context(), client, backend, audioPath)
	if err != nil {
		output.Notifyf("Transcription failed: %v", err)
		return err
	}
	os.Remove(audioPath)

	if text == "" {
		formatter.NoSpeech()
		output.Notify("No speech detected")
		return nil
	}

	if err := deliver.Output(text, flags.useClipboard); err != nil {
		output.Notifyf("Delivering text failed: %v", err)
		return err
	}

	formatter.Transcript(text, string(route))
	return nil
}
