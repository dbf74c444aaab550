//go:build unix

package cli

import "golang.org/x/sys/unix"

// checkDirAccess verifies the directory is readable, writable and searchable.
func checkDirAccess(dir string) error {
	return unix.Access(dir, unix.R_OK|unix.W_OK|unix.X_OK)
}
