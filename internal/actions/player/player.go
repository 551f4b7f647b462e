// Package player controls the registered kiosk service.
package player

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/humansforhousing/kioskctl/internal/pkg/kioskctl"
	"github.com/humansforhousing/kioskctl/pkg/kiosk"
	"github.com/humansforhousing/kioskctl/pkg/oscore"
	"github.com/humansforhousing/kioskctl/pkg/service"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
)

type controller interface {
	Start(ctx context.Context, serviceName string) error
	Stop(ctx context.Context, serviceName string) error
	Restart(ctx context.Context, serviceName string) error
	Status(ctx context.Context, serviceName string) error
	Logs(ctx context.Context, serviceName string, follow bool) error
}

func newController() controller { //nolint:ireturn
	plain := &oscore.ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}

	return service.NewSystemd(oscore.Privileged(oscore.NewInteractiveRunner()), plain)
}

// serviceName prefers the last install, then the settings file.
func serviceName(ctx context.Context) string {
	state, err := kioskctl.LoadInstallState(ctx)
	if err == nil && state.ServiceName != "" {
		return state.ServiceName
	}
	if err != nil {
		log.Println(errors.WithMessage(err, "failed to load install state"))
	}

	settings, _, err := kioskctl.LoadSettings(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to load settings", slog.String("err", err.Error()))

		return kiosk.DefaultServiceName
	}

	return lo.CoalesceOrEmpty(settings.ServiceName, kiosk.DefaultServiceName)
}

func HandleStart(cliCtx *cli.Context) error {
	ctx := cliCtx.Context

	return start(ctx, newController(), serviceName(ctx))
}

func HandleStop(cliCtx *cli.Context) error {
	ctx := cliCtx.Context

	return stop(ctx, newController(), serviceName(ctx))
}

func HandleRestart(cliCtx *cli.Context) error {
	ctx := cliCtx.Context

	return restart(ctx, newController(), serviceName(ctx))
}

func HandleStatus(cliCtx *cli.Context) error {
	ctx := cliCtx.Context

	return status(ctx, newController(), serviceName(ctx))
}

func HandleLogs(cliCtx *cli.Context) error {
	ctx := cliCtx.Context

	return newController().Logs(ctx, serviceName(ctx), cliCtx.Bool("follow"))
}

func start(ctx context.Context, c controller, name string) error {
	fmt.Printf("Starting %s ...\n", name)

	err := c.Start(ctx, name)
	if err != nil {
		return errors.WithMessagef(err, "failed to start %s", name)
	}

	return reportProcess(ctx)
}

func stop(ctx context.Context, c controller, name string) error {
	fmt.Printf("Stopping %s ...\n", name)

	err := c.Stop(ctx, name)
	if err != nil {
		return errors.WithMessagef(err, "failed to stop %s", name)
	}

	return nil
}

// restart falls back to stop and start when restart itself fails.
func restart(ctx context.Context, c controller, name string) error {
	fmt.Printf("Restarting %s ...\n", name)

	err := c.Restart(ctx, name)
	if err != nil {
		slog.WarnContext(ctx, "failed to restart", slog.String("err", err.Error()))

		err = c.Stop(ctx, name)
		if err != nil {
			slog.WarnContext(ctx, "failed to stop", slog.String("err", err.Error()))
		}

		err = c.Start(ctx, name)
		if err != nil {
			return errors.WithMessagef(err, "failed to restart %s", name)
		}
	}

	return reportProcess(ctx)
}

func status(ctx context.Context, c controller, name string) error {
	err := c.Status(ctx, name)

	var notFound *service.NotFoundError
	switch {
	case err == nil:
		return reportProcess(ctx)
	case errors.Is(err, service.ErrInactiveService):
		fmt.Printf("%s is not running.\n", name)

		return nil
	case errors.As(err, &notFound):
		return errors.WithMessage(err, "run kioskctl install first")
	default:
		return err
	}
}

func reportProcess(ctx context.Context) error {
	p, err := oscore.FindProcessByCmdline(ctx, kiosk.PlayerModule)
	if err != nil {
		return errors.WithMessage(err, "failed to look up player process")
	}
	if p == nil {
		fmt.Println("Player process not found yet, check the logs with: kioskctl service logs")

		return nil
	}

	fmt.Println("Player is running with pid", p.Pid)

	return nil
}
