package utils

import (
	"os"

	"github.com/otiai10/copy"
)

func IsFileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

func Copy(src string, dst string) error {
	return copy.Copy(src, dst, copy.Options{
		PermissionControl: copy.AddPermission(0644), //nolint:mnd
		Sync:              true,
	})
}
