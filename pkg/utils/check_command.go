package utils

import (
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
)

func IsCommandAvailable(command string) bool {
	_, err := LookupCommand(command)

	return err == nil
}

// LookupCommand searches PATH first, then the extra directories.
func LookupCommand(command string, extraDirs ...string) (string, error) {
	path, err := exec.LookPath(command)
	if err == nil {
		return filepath.Abs(path)
	}

	for _, dir := range extraDirs {
		candidate := filepath.Join(dir, command)
		if IsFileExists(candidate) {
			return candidate, nil
		}
	}

	return "", errors.WithMessagef(err, "command %s not found", command)
}
