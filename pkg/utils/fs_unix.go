//go:build linux || darwin

package utils

import (
	"golang.org/x/sys/unix"
)

// IsWritable reports whether the current user may create files in path.
func IsWritable(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}
