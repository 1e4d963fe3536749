package proc

import (
	"errors"
	"os"
	"syscall"
)

// Alive reports whether the process with the given pid exists. A zero signal
// is sent to the process: success or EPERM means the process is there, ESRCH
// means it is gone. Invalid pids report false instead of erroring.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	// os.FindProcess never fails on unix.
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = p.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}

func signalPid(pid int, sig os.Signal) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Signal(sig)
}
