package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nikola-Milovic/whisp-away/internal/proc"
)

var (
	// ErrNotFound means there was no recording to stop. Benign.
	ErrNotFound = errors.New("no recording found")
	// ErrEmptyArtifact means the capture produced a header-only or missing
	// file: no speech was captured.
	ErrEmptyArtifact = errors.New("audio file is empty")
)

const (
	artifactPrefix = "voice-recording-"
	artifactSuffix = ".wav"

	// A finalized WAV smaller than its 44-byte header carries no audio.
	wavHeaderSize = 44
)

// CaptureLauncher spawns the out-of-scope audio capture subprocess writing
// mono 16 kHz 16-bit PCM to the given path and returns its pid.
type CaptureLauncher interface {
	Start(outputPath string) (pid int, err error)
}

// Coordinator owns the start/stop lifecycle of the single recording session.
// Each CLI invocation builds a fresh Coordinator; all state it relies on
// lives in the Store and the Lock, never in memory.
type Coordinator struct {
	Store    Store
	Lock     Locker
	Term     *proc.Terminator
	Launcher CaptureLauncher

	ArtifactDir    string
	ArtifactMaxAge time.Duration

	PollInterval time.Duration
	PollAttempts int

	Alive func(pid int) bool
	Sleep func(d time.Duration)
	Now   func() time.Time
}

func NewCoordinator(store Store, lock Locker, launcher CaptureLauncher, artifactDir string, maxAge time.Duration) *Coordinator {
	return &Coordinator{
		Store:          store,
		Lock:           lock,
		Term:           proc.NewTerminator(),
		Launcher:       launcher,
		ArtifactDir:    artifactDir,
		ArtifactMaxAge: maxAge,
		PollInterval:   20 * time.Millisecond,
		PollAttempts:   10,
		Alive:          proc.Alive,
		Sleep:          time.Sleep,
		Now:            time.Now,
	}
}

// IsRecording reports whether a recording is in progress: either the session
// record points at a live process or the lock is held by a live process. The
// record and the lock can each be individually stale, so the union is the
// ground truth.
func (c *Coordinator) IsRecording() bool {
	if pid, ok := c.recordedPID(); ok && c.Alive(pid) {
		log.Debug().Int("pid", pid).Msg("recording in progress per session record")
		return true
	}
	held, err := c.Lock.HeldElsewhere()
	if err != nil {
		log.Debug().Err(err).Msg("lock probe failed")
		return false
	}
	if held {
		log.Debug().Msg("recording in progress per held lock")
	}
	return held
}

// Start begins a new recording session and returns the artifact path the
// capture subprocess is writing to.
func (c *Coordinator) Start() (string, error) {
	audioPath := filepath.Join(c.ArtifactDir,
		fmt.Sprintf("%s%d%s", artifactPrefix, c.Now().UnixMilli(), artifactSuffix))

	c.cleanupOldArtifacts(audioPath)

	if err := c.killExisting(); err != nil {
		return "", err
	}

	if err := c.Lock.TryAcquire(); err != nil {
		return "", err
	}

	if err := c.Store.Put(KeyAudioPath, audioPath); err != nil {
		c.Lock.Release()
		return "", fmt.Errorf("recording audio path: %w", err)
	}

	pid, err := c.Launcher.Start(audioPath)
	if err != nil {
		c.Store.Delete(KeyAudioPath)
		c.Lock.Release()
		return "", fmt.Errorf("starting capture: %w", err)
	}
	log.Debug().Int("pid", pid).Str("path", audioPath).Msg("capture started")

	if err := c.Store.Put(KeyPID, strconv.Itoa(pid)); err != nil {
		c.Term.Terminate(pid, proc.StartStages)
		c.Store.Delete(KeyAudioPath)
		c.Lock.Release()
		return "", fmt.Errorf("recording session pid: %w", err)
	}

	// Deliberate: the lock only serializes the start race. Once the capture
	// process is live and recorded, the session record is the durable marker
	// of the recording for the rest of the session.
	c.Lock.Release()

	return audioPath, nil
}

// Stop ends the current session and returns the captured artifact path. If
// overridePath is non-empty it is copied into a fresh artifact slot instead
// of using the recorded path, so artifact lifetime stays uniform. A missing
// session record is not fatal: an override or an orphaned audio-path file
// can still be resolved. A record pointing at a dead process means the
// session crashed and there is nothing usable to stop.
func (c *Coordinator) Stop(overridePath string) (string, error) {
	// The record may not be written yet if stop races a fresh start.
	if pid, ok := c.waitForRecord(); ok {
		if !c.Alive(pid) {
			log.Debug().Int("pid", pid).Msg("recorded capture process already dead")
			c.cleanupRemnants()
			return "", ErrNotFound
		}
		if err := c.Term.Terminate(pid, proc.StopStages); err != nil {
			// Do not clear the record: it still points at a live runaway
			// process the next invocation must deal with.
			return "", err
		}
		c.Store.Delete(KeyPID)
	}
	c.Lock.Release()

	if overridePath != "" {
		c.Store.Delete(KeyAudioPath)
		return c.importOverride(overridePath)
	}

	audioPath, ok, err := c.Store.Get(KeyAudioPath)
	if err != nil {
		return "", fmt.Errorf("reading audio path: %w", err)
	}
	if !ok || audioPath == "" {
		return "", ErrNotFound
	}
	c.Store.Delete(KeyAudioPath)

	return c.checkArtifact(audioPath)
}

func (c *Coordinator) recordedPID() (int, bool) {
	v, ok, err := c.Store.Get(KeyPID)
	if err != nil || !ok {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func (c *Coordinator) waitForRecord() (int, bool) {
	for attempt := 0; ; attempt++ {
		if pid, ok := c.recordedPID(); ok {
			return pid, true
		}
		if attempt >= c.PollAttempts {
			return 0, false
		}
		c.Sleep(c.PollInterval)
	}
}

// killExisting terminates a capture process left behind by a stale session
// record. Failure to kill it is fatal for Start.
func (c *Coordinator) killExisting() error {
	pid, ok := c.recordedPID()
	if !ok {
		c.Store.Delete(KeyPID)
		return nil
	}
	if c.Alive(pid) {
		log.Debug().Int("pid", pid).Msg("killing existing capture process")
		if err := c.Term.Terminate(pid, proc.StartStages); err != nil {
			return fmt.Errorf("stopping previous recording: %w", err)
		}
	}
	return c.Store.Delete(KeyPID)
}

// cleanupRemnants clears stale session state so repeated invocations are
// self-healing.
func (c *Coordinator) cleanupRemnants() {
	c.Store.Delete(KeyPID)
	c.Store.Delete(KeyAudioPath)
	c.Lock.Release()
}

// checkArtifact distinguishes a usable recording from a header-only or
// missing one, which the caller reports as "no speech captured".
func (c *Coordinator) checkArtifact(path string) (string, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s missing", ErrEmptyArtifact, path)
	}
	if err != nil {
		return "", fmt.Errorf("inspecting artifact: %w", err)
	}
	if info.Size() <= wavHeaderSize {
		os.Remove(path)
		return "", fmt.Errorf("%w: %d bytes", ErrEmptyArtifact, info.Size())
	}
	log.Debug().Str("path", path).Int64("bytes", info.Size()).Msg("artifact ready")
	return path, nil
}

// importOverride copies a caller-supplied file into a fresh artifact slot so
// it is subject to the same lifetime and cleanup as recorded artifacts.
func (c *Coordinator) importOverride(src string) (string, error) {
	dst := filepath.Join(c.ArtifactDir,
		fmt.Sprintf("%soverride-%d%s", artifactPrefix, c.Now().UnixMilli(), artifactSuffix))
	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("importing override audio: %w", err)
	}
	return c.checkArtifact(dst)
}

// cleanupOldArtifacts garbage-collects recordings orphaned by crashes once
// they pass the retention ceiling. The active session's artifact is excluded.
func (c *Coordinator) cleanupOldArtifacts(current string) {
	entries, err := os.ReadDir(c.ArtifactDir)
	if err != nil {
		return
	}
	now := c.Now()
	cleaned := 0
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, artifactPrefix) || !strings.HasSuffix(name, artifactSuffix) {
			continue
		}
		path := filepath.Join(c.ArtifactDir, name)
		if path == current {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > c.ArtifactMaxAge {
			if os.Remove(path) == nil {
				cleaned++
			}
		}
	}
	if cleaned > 0 {
		log.Debug().Int("count", cleaned).Msg("cleaned up old recordings")
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
