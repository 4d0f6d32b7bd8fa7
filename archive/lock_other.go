//go:build windows

package archive

import "os"

// lockHostFile is a no-op on platforms where golang.org/x/sys/unix's flock
// is unavailable; the single-owner contract in §5 still holds by
// convention, just without an OS-enforced advisory lock.
func lockHostFile(f *os.File) error { return nil }

func unlockHostFile(f *os.File) error { return nil }
