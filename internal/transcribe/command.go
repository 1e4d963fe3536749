package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Command shells out to the configured transcriber program, invoked as
// `<argv...> <audioPath> <model>`, which prints the transcript on stdout.
// This is both the direct-fallback path and what the daemon wraps.
type Command struct {
	Argv  []string
	Model string
}

func NewCommand(argv []string, model string) *Command {
	return &Command{Argv: argv, Model: model}
}

func (c *Command) Name() string {
	if len(c.Argv) == 0 {
		return "command"
	}
	return filepath.Base(c.Argv[0])
}

func (c *Command) Load(ctx context.Context) error {
	if len(c.Argv) == 0 {
		return fmt.Errorf("transcriber command not configured")
	}
	if _, err := exec.LookPath(c.Argv[0]); err != nil {
		return fmt.Errorf("%s not found in PATH", c.Argv[0])
	}
	log.Debug().Str("backend", c.Name()).Str("model", c.Model).Msg("transcriber ready")
	return nil
}

func (c *Command) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if len(c.Argv) == 0 {
		return "", fmt.Errorf("transcriber command not configured")
	}
	args := append(append([]string{}, c.Argv[1:]...), audioPath, c.Model)
	cmd := exec.CommandContext(ctx, c.Argv[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().Str("backend", c.Name()).Str("audio", audioPath).Msg("running transcriber")
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("%w: %s", ErrBackend, detail)
	}
	return strings.TrimSpace(stdout.String()), nil
}
