package runhelper

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
)

type Init string

const (
	InitUnknown Init = "unknown"
	InitSystemd Init = "systemd"
)

func (i Init) String() string {
	return string(i)
}

// systemdRuntimeDir exists only when systemd is PID 1, see sd_booted(3).
const systemdRuntimeDir = "/run/systemd/system"

type pidOne interface {
	NameWithContext(ctx context.Context) (string, error)
	ExeWithContext(ctx context.Context) (string, error)
}

// DetectInit works without root. /proc/1/exe is not readable for other
// users, /proc/1/comm is.
func DetectInit(ctx context.Context) (Init, error) {
	return detectInit(ctx, systemdRuntimeDir, func(ctx context.Context) (pidOne, error) {
		return process.NewProcessWithContext(ctx, 1)
	})
}

func detectInit(
	ctx context.Context,
	runtimeDir string,
	loadPidOne func(ctx context.Context) (pidOne, error),
) (Init, error) {
	if info, err := os.Stat(runtimeDir); err == nil && info.IsDir() {
		log.Println("Detected systemd init by", runtimeDir)

		return InitSystemd, nil
	}

	p, err := loadPidOne(ctx)
	if err != nil {
		return InitUnknown, errors.WithMessage(err, "failed to load process with pid 1")
	}

	processName, err := p.NameWithContext(ctx)
	if err != nil {
		log.Println(errors.WithMessage(err, "failed to get name of the process"))
	}
	log.Println("Found process name:", processName)

	if processName == "systemd" {
		return InitSystemd, nil
	}

	exe, err := p.ExeWithContext(ctx)
	if errors.Is(err, os.ErrPermission) {
		log.Println(errors.WithMessage(err, "executable path of pid 1 is not readable"))

		return InitUnknown, nil
	}
	if err != nil {
		return InitUnknown, errors.WithMessage(err, "failed to get executable path of the process")
	}

	return initFromExecutable(exe), nil
}

func initFromExecutable(exe string) Init {
	filename, err := filepath.EvalSymlinks(exe)
	if err != nil {
		log.Println(errors.WithMessage(err, "failed to evaluate symlink"))
		filename = exe
	}

	switch filepath.Base(filename) {
	case "systemd":
		log.Println("Detected systemd init")

		return InitSystemd
	default:
		log.Println("Unsupported init:", filename)

		return InitUnknown
	}
}
