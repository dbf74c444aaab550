//go:build !unix

package cli

import "os"

// checkDirAccess verifies the directory is writable by creating a probe file.
func checkDirAccess(dir string) error {
	f, err := os.CreateTemp(dir, ".speech2text-access-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
