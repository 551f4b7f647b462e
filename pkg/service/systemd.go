package service

import (
	"context"
	"os/exec"
	"strconv"

	"github.com/humansforhousing/kioskctl/pkg/oscore"
	"github.com/pkg/errors"
)

const (
	systemDStatusInactive = 3
	systemDStatusNotFound = 4

	defaultLogLines = 100
)

// Systemd drives systemctl and journalctl. State changes go through the
// privileged runner, queries through the plain one.
type Systemd struct {
	privileged oscore.Runner
	plain      oscore.Runner
}

func NewSystemd(privileged, plain oscore.Runner) *Systemd {
	return &Systemd{
		privileged: privileged,
		plain:      plain,
	}
}

func (s *Systemd) DaemonReload(ctx context.Context) error {
	return s.systemctl(ctx, "daemon-reload")
}

func (s *Systemd) Enable(ctx context.Context, serviceName string) error {
	return s.systemctl(ctx, "enable", serviceName)
}

func (s *Systemd) Start(ctx context.Context, serviceName string) error {
	return s.systemctl(ctx, "start", serviceName)
}

func (s *Systemd) Stop(ctx context.Context, serviceName string) error {
	return s.systemctl(ctx, "stop", serviceName)
}

func (s *Systemd) Restart(ctx context.Context, serviceName string) error {
	return s.systemctl(ctx, "restart", serviceName)
}

func (s *Systemd) Status(ctx context.Context, serviceName string) error {
	err := s.plain.Run(ctx, oscore.Command{
		Name: "systemctl",
		Args: []string{"--no-pager", "status", serviceName},
	})
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return errors.WithMessage(err, "service status command failed")
	}

	switch exitErr.ExitCode() {
	case systemDStatusInactive:
		return ErrInactiveService
	case systemDStatusNotFound:
		return NewNotFoundError(serviceName)
	default:
		return errors.WithMessagef(err, "service status command failed with exit code %d", exitErr.ExitCode())
	}
}

// Logs prints the latest journal entries of the unit, following new ones
// when follow is set.
func (s *Systemd) Logs(ctx context.Context, serviceName string, follow bool) error {
	args := []string{"-u", serviceName, "-n", strconv.Itoa(defaultLogLines), "--no-pager"}
	if follow {
		args = append(args, "-f")
	}

	err := s.plain.Run(ctx, oscore.Command{Name: "journalctl", Args: args})
	if err != nil {
		return errors.WithMessage(err, "failed to read service logs")
	}

	return nil
}

func (s *Systemd) systemctl(ctx context.Context, args ...string) error {
	err := s.privileged.Run(ctx, oscore.Command{Name: "systemctl", Args: args})
	if err != nil {
		return errors.WithMessagef(err, "systemctl %s failed", args[0])
	}

	return nil
}
