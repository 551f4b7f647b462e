package service

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/humansforhousing/kioskctl/pkg/oscore"
	"github.com/humansforhousing/kioskctl/pkg/runhelper"
	"github.com/humansforhousing/kioskctl/pkg/unitfile"
	"github.com/humansforhousing/kioskctl/pkg/utils"
	"github.com/pkg/errors"
)

// Registrar installs a rendered unit file into the systemd unit directory
// and enables it. The source file stays where it is.
type Registrar struct {
	unitDir    string
	systemd    *Systemd
	privileged oscore.Runner

	detectInit func(ctx context.Context) (runhelper.Init, error)
	isWritable func(path string) bool
}

func NewRegistrar(unitDir string, systemd *Systemd, privileged oscore.Runner) *Registrar {
	return &Registrar{
		unitDir:    unitDir,
		systemd:    systemd,
		privileged: privileged,
		detectInit: runhelper.DetectInit,
		isWritable: utils.IsWritable,
	}
}

// Register returns the path of the installed unit.
func (r *Registrar) Register(ctx context.Context, unitPath, serviceName string) (string, error) {
	initSystem, err := r.detectInit(ctx)
	if err != nil {
		return "", errors.WithMessage(err, "failed to detect init system")
	}
	if initSystem != runhelper.InitSystemd {
		return "", errors.WithMessage(ErrUnsupportedInit, initSystem.String())
	}

	doc, err := os.ReadFile(unitPath)
	if err != nil {
		return "", errors.WithMessage(err, "failed to read unit file")
	}

	err = unitfile.CheckPlaceholders(doc)
	if err != nil {
		return "", errors.WithMessagef(err, "unit file %s is not rendered", unitPath)
	}

	dst := filepath.Join(r.unitDir, serviceName)

	err = r.install(ctx, unitPath, dst)
	if err != nil {
		return "", errors.WithMessagef(err, "failed to install unit file to %s", dst)
	}

	err = r.systemd.DaemonReload(ctx)
	if err != nil {
		return "", err
	}

	err = r.systemd.Enable(ctx, serviceName)
	if err != nil {
		return "", err
	}

	return dst, nil
}

func (r *Registrar) install(ctx context.Context, src, dst string) error {
	if r.isWritable(r.unitDir) {
		log.Println("Copying", src, "to", dst)

		return utils.Copy(src, dst)
	}

	return r.privileged.Run(ctx, oscore.Command{
		Name: "install",
		Args: []string{"-m", "0644", src, dst},
	})
}
