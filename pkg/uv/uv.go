// Package uv installs the uv project manager for the invoking user and
// prepares the project environment of the playback application.
package uv

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/humansforhousing/kioskctl/pkg/kiosk"
	"github.com/humansforhousing/kioskctl/pkg/oscore"
	"github.com/humansforhousing/kioskctl/pkg/utils"
	"github.com/pkg/errors"
)

var ErrNotInstalled = errors.New("uv binary not found after installation")

type downloadFunc func(ctx context.Context, src, dst string) error

type Installer struct {
	binary    string
	scriptURL string
	runner    oscore.Runner
	download  downloadFunc
}

// NewInstaller expects an unprivileged runner, uv lives in the user's home.
func NewInstaller(binary string, runner oscore.Runner) *Installer {
	return &Installer{
		binary:    binary,
		scriptURL: kiosk.UVInstallScriptURL,
		runner:    runner,
		download:  utils.DownloadFile,
	}
}

// Ensure installs uv when the binary is missing. Returns true if an
// installation was performed.
func (i *Installer) Ensure(ctx context.Context) (bool, error) {
	if utils.IsFileExists(i.binary) {
		log.Println("uv found at", i.binary)

		return false, nil
	}

	tmpDir, err := os.MkdirTemp("", "kioskctl-uv")
	if err != nil {
		return false, errors.WithMessage(err, "failed to create temporary directory")
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			log.Println(errors.WithMessage(err, "failed to remove temporary directory"))
		}
	}()

	script := filepath.Join(tmpDir, "install.sh")

	err = i.download(ctx, i.scriptURL, script)
	if err != nil {
		return false, errors.WithMessage(err, "failed to download uv install script")
	}

	err = i.runner.Run(ctx, oscore.Command{
		Name: "sh",
		Args: []string{script},
		Env: []string{
			"UV_INSTALL_DIR=" + filepath.Dir(i.binary),
			"UV_NO_MODIFY_PATH=1",
		},
	})
	if err != nil {
		return false, errors.WithMessage(err, "failed to run uv install script")
	}

	if !utils.IsFileExists(i.binary) {
		return false, errors.WithMessage(ErrNotInstalled, i.binary)
	}

	return true, nil
}

// Sync creates or updates the project environment in dir.
func (i *Installer) Sync(ctx context.Context, dir string) error {
	err := i.runner.Run(ctx, oscore.Command{
		Name: i.binary,
		Args: []string{"sync"},
		Dir:  dir,
	})
	if err != nil {
		return errors.WithMessagef(err, "failed to sync project environment in %s", dir)
	}

	return nil
}
