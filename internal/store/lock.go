package store

import (
	"os"

	"golang.org/x/sys/unix"
)

// fileLock is an advisory exclusive lock held on a sidecar file, so that
// the CLI and the daemon never interleave read-modify-write cycles.
type fileLock struct {
	f *os.File
}

func lockPath(path string) string {
	return path + ".lock"
}

// acquireLock blocks until the exclusive lock on path's sidecar is held
func acquireLock(path string) (*fileLock, error) {
	f, err := os.OpenFile(lockPath(path), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	for {
		err = unix.Flock(int(f.Fd()), unix.LOCK_EX)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &fileLock{f: f}, nil
}

func (l *fileLock) release() error {
	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); err != nil {
		_ = l.f.Close()
		return err
	}
	return l.f.Close()
}
