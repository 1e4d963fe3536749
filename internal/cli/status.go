package cli

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nikola-Milovic/whisp-away/internal/output"
	"github.com/Nikola-Milovic/whisp-away/internal/session"
)

func NewStatusCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recording and daemon state",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			recording := deps.App.Sessions.IsRecording()
			formatter.Status(recording)

			if recording {
				if path, ok, _ := deps.App.Sessions.Store.Get(session.KeyAudioPath); ok {
					detail := path
					if info, err := os.Stat(path); err == nil {
						detail = fmt.Sprintf("%s (%d bytes so far)", path, info.Size())
					}
					formatter.Info(detail)
				}
			} else if stale, _ := session.NewLock(deps.Config.LockPath()).Stale(); stale {
				formatter.Warning("Stale recording lock left behind; the next start will clear it")
			}

			if daemonReachable(deps.Config.SocketPath) {
				formatter.Info(fmt.Sprintf("Daemon listening on %s", deps.Config.SocketPath))
			} else {
				formatter.Info("Daemon not running (transcription will run directly)")
			}

			return nil
		},
	}

	return cmd
}

func daemonReachable(socketPath string) bool {
	conn, err := net.DialTimeout("unix", socketPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
