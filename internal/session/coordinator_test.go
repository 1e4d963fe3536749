package session

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/Nikola-Milovic/whisp-away/internal/proc"
)

// fakeWorld simulates the process table, the capture launcher and the lock
// for coordinator tests, so no real processes or flocks are involved.
type fakeWorld struct {
	alive    map[int]bool
	diesOn   map[int]os.Signal
	signals  []os.Signal
	nextPID  int
	started  []string
	lockHeld bool
	lockBusy bool
	releases int
	startErr error
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		alive:   make(map[int]bool),
		diesOn:  make(map[int]os.Signal),
		nextPID: 100,
	}
}

func (w *fakeWorld) Start(outputPath string) (int, error) {
	if w.startErr != nil {
		return 0, w.startErr
	}
	w.nextPID++
	w.alive[w.nextPID] = true
	w.diesOn[w.nextPID] = syscall.SIGINT
	w.started = append(w.started, outputPath)
	return w.nextPID, nil
}

func (w *fakeWorld) TryAcquire() error {
	if w.lockBusy {
		return ErrBusy
	}
	w.lockHeld = true
	return nil
}

func (w *fakeWorld) Release() error {
	w.lockHeld = false
	w.releases++
	return nil
}

func (w *fakeWorld) HeldElsewhere() (bool, error) {
	return w.lockBusy, nil
}

func (w *fakeWorld) terminator() *proc.Terminator {
	return &proc.Terminator{
		Alive: func(pid int) bool { return w.alive[pid] },
		Signal: func(pid int, sig os.Signal) error {
			w.signals = append(w.signals, sig)
			if w.diesOn[pid] == sig {
				w.alive[pid] = false
			}
			return nil
		},
		Sleep: func(time.Duration) {},
	}
}

func newTestCoordinator(t *testing.T, w *fakeWorld) (*Coordinator, Store) {
	t.Helper()
	store := NewMemStore()
	c := NewCoordinator(store, w, w, t.TempDir(), 10*time.Minute)
	c.Term = w.terminator()
	c.Alive = func(pid int) bool { return w.alive[pid] }
	c.Sleep = func(time.Duration) {}
	return c, store
}

// writeArtifact creates a fake WAV of the given payload size beyond the
// 44-byte header.
func writeArtifact(t *testing.T, path string, payload int) {
	t.Helper()
	data := make([]byte, 44+payload)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestStartStopRoundTrip(t *testing.T) {
	w := newFakeWorld()
	c, store := newTestCoordinator(t, w)

	audioPath, err := c.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(w.started) != 1 || w.started[0] != audioPath {
		t.Fatalf("capture started with %v, want %q", w.started, audioPath)
	}
	if w.lockHeld {
		t.Error("lock still held after Start; it must only serialize the start race")
	}
	if !c.IsRecording() {
		t.Error("IsRecording = false right after Start")
	}

	writeArtifact(t, audioPath, 1000)

	got, err := c.Stop("")
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got != audioPath {
		t.Errorf("Stop returned %q, want %q", got, audioPath)
	}
	if _, ok, _ := store.Get(KeyPID); ok {
		t.Error("pid record left behind after Stop")
	}
	if c.IsRecording() {
		t.Error("IsRecording = true after Stop")
	}
}

func TestStartKillsPreviousCapture(t *testing.T) {
	w := newFakeWorld()
	c, store := newTestCoordinator(t, w)

	// A stale record pointing at a live process from a crashed session.
	stalePID := 55
	w.alive[stalePID] = true
	w.diesOn[stalePID] = syscall.SIGTERM // ignores SIGINT
	store.Put(KeyPID, strconv.Itoa(stalePID))

	if _, err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if w.alive[stalePID] {
		t.Error("previous capture process still alive after Start")
	}
	// Exactly one capture process alive at a time.
	liveCount := 0
	for _, a := range w.alive {
		if a {
			liveCount++
		}
	}
	if liveCount != 1 {
		t.Errorf("%d capture processes alive, want 1", liveCount)
	}
}

func TestStartFatalWhenPreviousUnkillable(t *testing.T) {
	w := newFakeWorld()
	c, store := newTestCoordinator(t, w)

	stalePID := 55
	w.alive[stalePID] = true // diesOn unset: survives everything
	store.Put(KeyPID, strconv.Itoa(stalePID))

	_, err := c.Start()
	if !errors.Is(err, proc.ErrKillFailed) {
		t.Fatalf("Start = %v, want ErrKillFailed", err)
	}
	if len(w.started) != 0 {
		t.Error("capture launched despite unkillable predecessor")
	}
}

func TestStartBusy(t *testing.T) {
	w := newFakeWorld()
	w.lockBusy = true
	c, _ := newTestCoordinator(t, w)

	if _, err := c.Start(); !errors.Is(err, ErrBusy) {
		t.Fatalf("Start = %v, want ErrBusy", err)
	}
}

func TestIsRecordingStaleCases(t *testing.T) {
	t.Run("dead pid and free lock", func(t *testing.T) {
		w := newFakeWorld()
		c, store := newTestCoordinator(t, w)
		store.Put(KeyPID, "55") // not alive in fake world
		if c.IsRecording() {
			t.Error("IsRecording = true for a dead session record")
		}
	})
	t.Run("live pid", func(t *testing.T) {
		w := newFakeWorld()
		c, store := newTestCoordinator(t, w)
		w.alive[55] = true
		store.Put(KeyPID, "55")
		if !c.IsRecording() {
			t.Error("IsRecording = false for a live session record")
		}
	})
	t.Run("held lock without record", func(t *testing.T) {
		w := newFakeWorld()
		w.lockBusy = true
		c, _ := newTestCoordinator(t, w)
		if !c.IsRecording() {
			t.Error("IsRecording = false while the lock is held")
		}
	})
	t.Run("garbage pid record", func(t *testing.T) {
		w := newFakeWorld()
		c, store := newTestCoordinator(t, w)
		store.Put(KeyPID, "not-a-pid")
		if c.IsRecording() {
			t.Error("IsRecording = true for an unparsable record")
		}
	})
}

func TestStopCrashedSession(t *testing.T) {
	w := newFakeWorld()
	c, store := newTestCoordinator(t, w)

	// Record present, process dead.
	store.Put(KeyPID, "55")
	store.Put(KeyAudioPath, "/tmp/gone.wav")

	_, err := c.Stop("")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Stop = %v, want ErrNotFound", err)
	}
	if _, ok, _ := store.Get(KeyPID); ok {
		t.Error("pid record not cleaned up")
	}
	if _, ok, _ := store.Get(KeyAudioPath); ok {
		t.Error("audio path record not cleaned up")
	}
	if w.releases == 0 {
		t.Error("lock remnants not released")
	}
}

func TestStopNothingToStop(t *testing.T) {
	w := newFakeWorld()
	c, _ := newTestCoordinator(t, w)

	polls := 0
	c.Sleep = func(time.Duration) { polls++ }

	if _, err := c.Stop(""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Stop = %v, want ErrNotFound", err)
	}
	if polls != c.PollAttempts {
		t.Errorf("polled %d times, want %d bounded attempts", polls, c.PollAttempts)
	}
}

func TestStopThenStartNeverBusy(t *testing.T) {
	w := newFakeWorld()
	c, _ := newTestCoordinator(t, w)

	audioPath, err := c.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	writeArtifact(t, audioPath, 100)
	if _, err := c.Stop(""); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, err := c.Start(); err != nil {
		t.Fatalf("Start after Stop = %v, want success (no leftover Busy)", err)
	}
}

func TestStopEmptyArtifact(t *testing.T) {
	w := newFakeWorld()
	c, _ := newTestCoordinator(t, w)

	audioPath, err := c.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Header only: exactly 44 bytes.
	writeArtifact(t, audioPath, 0)

	_, err = c.Stop("")
	if !errors.Is(err, ErrEmptyArtifact) {
		t.Fatalf("Stop = %v, want ErrEmptyArtifact", err)
	}
	if _, statErr := os.Stat(audioPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("empty artifact not removed")
	}
}

func TestStopKillEscalation(t *testing.T) {
	w := newFakeWorld()
	c, _ := newTestCoordinator(t, w)

	audioPath, err := c.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Capture ignores SIGINT and SIGTERM, honors SIGKILL.
	w.diesOn[w.nextPID] = syscall.SIGKILL
	writeArtifact(t, audioPath, 500)

	got, err := c.Stop("")
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got != audioPath {
		t.Errorf("Stop returned %q, want %q despite full escalation", got, audioPath)
	}
	want := []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGKILL}
	if len(w.signals) != len(want) {
		t.Fatalf("signals = %v, want %v", w.signals, want)
	}
	for i := range want {
		if w.signals[i] != want[i] {
			t.Errorf("signal[%d] = %v, want %v", i, w.signals[i], want[i])
		}
	}
}

func TestStopOverridePath(t *testing.T) {
	w := newFakeWorld()
	c, _ := newTestCoordinator(t, w)

	audioPath, err := c.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	writeArtifact(t, audioPath, 100)

	override := filepath.Join(t.TempDir(), "external.wav")
	writeArtifact(t, override, 2000)

	got, err := c.Stop(override)
	if err != nil {
		t.Fatalf("Stop with override: %v", err)
	}
	if got == override {
		t.Error("override was not copied into a fresh artifact slot")
	}
	if filepath.Dir(got) != c.ArtifactDir {
		t.Errorf("override copy %q not in artifact dir %q", got, c.ArtifactDir)
	}
	info, err := os.Stat(got)
	if err != nil {
		t.Fatalf("override copy missing: %v", err)
	}
	if info.Size() != 44+2000 {
		t.Errorf("override copy size = %d, want %d", info.Size(), 44+2000)
	}
}

func TestStopOverrideWithoutSession(t *testing.T) {
	w := newFakeWorld()
	c, _ := newTestCoordinator(t, w)

	// No session record at all; the override is still transcribable.
	override := filepath.Join(t.TempDir(), "external.wav")
	writeArtifact(t, override, 2000)

	got, err := c.Stop(override)
	if err != nil {
		t.Fatalf("Stop with override and no session: %v", err)
	}
	if filepath.Dir(got) != c.ArtifactDir {
		t.Errorf("override copy %q not in artifact dir %q", got, c.ArtifactDir)
	}
	info, err := os.Stat(got)
	if err != nil {
		t.Fatalf("override copy missing: %v", err)
	}
	if info.Size() != 44+2000 {
		t.Errorf("override copy size = %d, want %d", info.Size(), 44+2000)
	}
}

func TestStopOrphanedAudioPath(t *testing.T) {
	// A crash between writing the audio path and the pid record leaves the
	// path file behind; stop still resolves it.
	w := newFakeWorld()
	c, store := newTestCoordinator(t, w)

	orphan := filepath.Join(c.ArtifactDir, "voice-recording-9.wav")
	writeArtifact(t, orphan, 300)
	store.Put(KeyAudioPath, orphan)

	got, err := c.Stop("")
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got != orphan {
		t.Errorf("Stop returned %q, want %q", got, orphan)
	}
	if _, ok, _ := store.Get(KeyAudioPath); ok {
		t.Error("audio path record not consumed")
	}
}

func TestCleanupExcludesCurrentArtifact(t *testing.T) {
	w := newFakeWorld()
	c, _ := newTestCoordinator(t, w)

	current := filepath.Join(c.ArtifactDir, "voice-recording-1.wav")
	other := filepath.Join(c.ArtifactDir, "voice-recording-2.wav")
	writeArtifact(t, current, 10)
	writeArtifact(t, other, 10)

	stale := time.Now().Add(-time.Hour)
	for _, p := range []string{current, other} {
		if err := os.Chtimes(p, stale, stale); err != nil {
			t.Fatal(err)
		}
	}

	c.cleanupOldArtifacts(current)

	if _, err := os.Stat(current); err != nil {
		t.Error("current artifact was garbage-collected")
	}
	if _, err := os.Stat(other); !errors.Is(err, os.ErrNotExist) {
		t.Error("stale artifact not garbage-collected")
	}
}

func TestStartCleansOldArtifacts(t *testing.T) {
	w := newFakeWorld()
	c, _ := newTestCoordinator(t, w)

	oldPath := filepath.Join(c.ArtifactDir, "voice-recording-1.wav")
	freshPath := filepath.Join(c.ArtifactDir, "voice-recording-2.wav")
	writeArtifact(t, oldPath, 10)
	writeArtifact(t, freshPath, 10)

	stale := time.Now().Add(-time.Hour)
	if err := os.Chtimes(oldPath, stale, stale); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := os.Stat(oldPath); !errors.Is(err, os.ErrNotExist) {
		t.Error("stale artifact not garbage-collected")
	}
	if _, err := os.Stat(freshPath); err != nil {
		t.Error("fresh artifact was garbage-collected")
	}
}
