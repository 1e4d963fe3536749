package proc

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrKillFailed means a process survived every escalation stage, including
// SIGKILL. Callers must surface this; a runaway recorder must not be left
// capturing indefinitely.
var ErrKillFailed = errors.New("process survived kill escalation")

// Stage is one step of a signal escalation: send Signal, wait Wait, re-probe.
type Stage struct {
	Signal os.Signal
	Wait   time.Duration
}

// StartStages is the escalation used when clearing out a stale capture
// process before starting a new recording.
var StartStages = []Stage{
	{Signal: syscall.SIGINT, Wait: 100 * time.Millisecond},
	{Signal: syscall.SIGTERM, Wait: 100 * time.Millisecond},
	{Signal: syscall.SIGKILL, Wait: 50 * time.Millisecond},
}

// StopStages is the escalation used on a normal stop. SIGINT comes first so
// the capture process can flush and finalize the WAV file.
var StopStages = []Stage{
	{Signal: syscall.SIGINT, Wait: 50 * time.Millisecond},
	{Signal: syscall.SIGTERM, Wait: 50 * time.Millisecond},
	{Signal: syscall.SIGKILL, Wait: 50 * time.Millisecond},
}

// Terminator kills processes by walking an ordered escalation list. The
// probe, signal and sleep functions are swappable so the sequence logic can
// be tested without real processes.
type Terminator struct {
	Alive  func(pid int) bool
	Signal func(pid int, sig os.Signal) error
	Sleep  func(d time.Duration)
}

func NewTerminator() *Terminator {
	return &Terminator{
		Alive:  Alive,
		Signal: signalPid,
		Sleep:  time.Sleep,
	}
}

// Terminate walks the stages until the process dies. Signals are sent
// best-effort; only survival past the final stage is an error.
func (t *Terminator) Terminate(pid int, stages []Stage) error {
	if !t.Alive(pid) {
		return nil
	}
	for _, stage := range stages {
		log.Debug().Int("pid", pid).Str("signal", stage.Signal.String()).Msg("sending signal")
		if err := t.Signal(pid, stage.Signal); err != nil {
			log.Debug().Int("pid", pid).Err(err).Msg("signal failed")
		}
		t.Sleep(stage.Wait)
		if !t.Alive(pid) {
			return nil
		}
	}
	return fmt.Errorf("pid %d: %w", pid, ErrKillFailed)
}
