package kioskctl

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	stateDirectoryName = ".kioskctl"
	logsDirectoryName  = "logs"
)

func StateDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WithMessage(err, "failed to get user home dir")
	}

	dir := filepath.Join(homeDir, stateDirectoryName)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		err = os.Mkdir(dir, 0700)
		if err != nil {
			return "", errors.WithMessage(err, "failed to create state directory")
		}
	}

	return dir, nil
}

// LogsDirectory holds one log file per run.
func LogsDirectory() (string, error) {
	stateDir, err := StateDirectory()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(stateDir, logsDirectoryName)

	err = os.MkdirAll(dir, 0700)
	if err != nil {
		return "", errors.WithMessage(err, "failed to create logs directory")
	}

	return dir, nil
}
