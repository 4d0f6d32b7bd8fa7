//go:build !windows

package archive

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockHostFile takes an advisory exclusive, non-blocking lock on f for the
// lifetime of the returned Archive, operationalizing the single-owner
// resource model of §5: one open handle is meant to mean exclusive
// read+write access to the host file.
func lockHostFile(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		return newErr("open", f.Name(), KindIO, err)
	}
	return nil
}

func unlockHostFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
