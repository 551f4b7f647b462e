// Package provision turns the current machine into a video kiosk.
package provision

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	contextInternal "github.com/humansforhousing/kioskctl/internal/context"
	"github.com/humansforhousing/kioskctl/internal/deployment"
	"github.com/humansforhousing/kioskctl/internal/pkg/kioskctl"
	"github.com/humansforhousing/kioskctl/pkg/identity"
	"github.com/humansforhousing/kioskctl/pkg/oscore"
	packagemanager "github.com/humansforhousing/kioskctl/pkg/package_manager"
	"github.com/humansforhousing/kioskctl/pkg/service"
	"github.com/humansforhousing/kioskctl/pkg/source"
	"github.com/humansforhousing/kioskctl/pkg/unitfile"
	"github.com/humansforhousing/kioskctl/pkg/utils"
	"github.com/humansforhousing/kioskctl/pkg/uv"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var errSudoNotFound = errors.New("sudo is required to install packages and register the service")

type fetcher interface {
	Ensure(ctx context.Context, src source.Source, confirm source.ConfirmFunc) (source.Outcome, error)
}

type groupManager interface {
	AddUserToGroup(ctx context.Context, userName, groupName string) (bool, error)
}

type registrar interface {
	Register(ctx context.Context, unitPath, serviceName string) (string, error)
}

type uvInstaller interface {
	Ensure(ctx context.Context) (bool, error)
	Sync(ctx context.Context, dir string) error
}

type starter interface {
	Start(ctx context.Context, serviceName string) error
}

// provisioner carries the collaborators of a run.
type provisioner struct {
	out      io.Writer
	prompter *utils.Prompter

	currentIdentity func() (identity.Identity, error)
	loadSettings    func(ctx context.Context) (deployment.Settings, string, error)
	loadState       func(ctx context.Context) (kioskctl.InstallState, error)
	saveState       func(ctx context.Context, state kioskctl.InstallState) error
	validateSudo    func(ctx context.Context) error
	packageManager  func(ctx context.Context) (packagemanager.PackageManager, error)
	uv              func(binary string) uvInstaller
	registrar       func(unitDir string) registrar

	groups  groupManager
	fetcher fetcher
	service starter
	now     func() time.Time
}

func newProvisioner() *provisioner {
	plain := oscore.NewExecRunner()
	privileged := oscore.Privileged(plain)
	systemd := service.NewSystemd(privileged, plain)

	return &provisioner{
		out:             os.Stdout,
		prompter:        utils.NewStdPrompter(),
		currentIdentity: identity.Current,
		loadSettings:    kioskctl.LoadSettings,
		loadState:       kioskctl.LoadInstallState,
		saveState:       kioskctl.SaveInstallState,
		validateSudo: func(ctx context.Context) error {
			if !utils.IsCommandAvailable("sudo") {
				return errSudoNotFound
			}

			return oscore.ValidateSudo(ctx)
		},
		packageManager: func(ctx context.Context) (packagemanager.PackageManager, error) {
			return packagemanager.Load(ctx, privileged)
		},
		uv: func(binary string) uvInstaller {
			return uv.NewInstaller(binary, plain)
		},
		registrar: func(unitDir string) registrar {
			return service.NewRegistrar(unitDir, systemd, privileged)
		},
		groups:  oscore.NewGroupManager(privileged),
		fetcher: source.NewFetcher(),
		service: systemd,
		now:     time.Now,
	}
}

func Handle(cliCtx *cli.Context) error {
	return newProvisioner().run(cliCtx.Context)
}

//nolint:funlen
func (p *provisioner) run(ctx context.Context) error {
	id, err := p.currentIdentity()
	if err != nil {
		return errors.WithMessage(err, "failed to resolve current user")
	}

	err = id.RequireUnprivileged()
	if err != nil {
		return err
	}

	osInfo := contextInternal.OSInfoFromContext(ctx)
	p.printf(
		"Detected operating system as %s/%s (%s).\n",
		osInfo.Distribution,
		osInfo.DistributionCodename,
		osInfo.Platform,
	)
	p.printf("Provisioning the kiosk for user %s (group %s).\n", id.User, id.Group)

	defaults, err := p.defaults(ctx, id)
	if err != nil {
		return err
	}

	overrides, err := p.askUser(ctx, defaults)
	if err != nil {
		return err
	}

	cfg, err := deployment.Resolve(id, defaults, overrides)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "resolved deployment", slog.String("config", cfg.String()))

	p.println("")
	p.println("Preparing privileged steps, sudo may ask for your password ...")
	err = p.validateSudo(ctx)
	if err != nil {
		return err
	}

	addedToGroup, err := p.installDependencies(ctx, cfg)
	if err != nil {
		return errors.WithMessage(err, "failed to install dependencies")
	}

	p.printf("Fetching %s into %s ...\n", cfg.RepositoryURL, cfg.InstallPath)
	outcome, err := p.fetcher.Ensure(ctx, cfg.Source(), p.confirmReplace)
	if err != nil {
		return errors.WithMessage(err, "failed to fetch source")
	}
	p.printf("Working copy %s.\n", outcome)

	p.println("Preparing the player environment ...")
	err = p.uv(cfg.UVPath).Sync(ctx, cfg.InstallPath)
	if err != nil {
		return errors.WithMessage(err, "failed to prepare player environment")
	}

	p.printf("Configuring %s ...\n", cfg.TemplatePath())
	err = renderUnit(cfg)
	if err != nil {
		return errors.WithMessage(err, "failed to configure service unit")
	}

	p.printf("Registering %s ...\n", cfg.ServiceName)
	unitPath, err := p.registrar(cfg.UnitDir).Register(ctx, cfg.TemplatePath(), cfg.ServiceName)
	if err != nil {
		return errors.WithMessage(err, "failed to register service")
	}
	p.printf("Service unit installed to %s and enabled.\n", unitPath)

	started, err := p.startService(ctx, cfg)
	if err != nil {
		return errors.WithMessage(err, "failed to start service")
	}

	err = p.saveState(ctx, kioskctl.NewInstallState(cfg, p.now()))
	if err != nil {
		slog.WarnContext(ctx, "failed to save install state", slog.String("err", err.Error()))
	}

	p.report(cfg, addedToGroup, started)

	return nil
}

// defaults layers built-in values, the settings file and the last run.
func (p *provisioner) defaults(ctx context.Context, id identity.Identity) (deployment.Settings, error) {
	settings, path, err := p.loadSettings(ctx)
	if err != nil {
		return deployment.Settings{}, err
	}
	if path != "" {
		p.printf("Using settings from %s.\n", path)
	}

	result := deployment.DefaultSettings(id.Home).Merge(settings)

	state, err := p.loadState(ctx)
	switch {
	case err == nil:
		p.printf("Found previous installation at %s.\n", state.InstallPath)
		result = result.Merge(state.Settings())
	case errors.Is(err, fs.ErrNotExist):
	default:
		slog.WarnContext(ctx, "failed to load install state", slog.String("err", err.Error()))
	}

	return result, nil
}

func (p *provisioner) installDependencies(ctx context.Context, cfg deployment.Config) (bool, error) {
	pm, err := p.packageManager(ctx)
	if err != nil {
		return false, err
	}

	p.println("Updating package lists ...")
	err = pm.CheckForUpdates(ctx)
	if err != nil {
		return false, errors.WithMessage(err, "failed to update package lists")
	}

	p.println("Installing packages ...")
	err = pm.Install(ctx, cfg.Packages...)
	if err != nil {
		return false, errors.WithMessage(err, "failed to install packages")
	}

	p.println("Checking uv ...")
	installed, err := p.uv(cfg.UVPath).Ensure(ctx)
	if err != nil {
		return false, err
	}
	if installed {
		p.printf("uv installed to %s.\n", cfg.UVPath)
	}

	p.printf("Checking membership of group %s ...\n", cfg.InputGroup)
	added, err := p.groups.AddUserToGroup(ctx, cfg.User, cfg.InputGroup)
	if err != nil {
		return false, err
	}

	return added, nil
}

func renderUnit(cfg deployment.Config) error {
	fields := cfg.UnitFields()

	doc, err := unitfile.RenderFile(cfg.TemplatePath(), fields)
	if err != nil {
		return err
	}

	return unitfile.Verify(doc, fields)
}

func (p *provisioner) startService(ctx context.Context, cfg deployment.Config) (bool, error) {
	start, err := p.confirm(ctx, fmt.Sprintf("Start %s now? (y/N): ", cfg.ServiceName))
	if err != nil {
		return false, err
	}
	if !start {
		return false, nil
	}

	err = p.service.Start(ctx, cfg.ServiceName)
	if err != nil {
		return false, err
	}

	return true, nil
}

func (p *provisioner) report(cfg deployment.Config, addedToGroup, started bool) {
	p.println("")
	p.println("The kiosk is provisioned.")

	if started {
		p.printf("%s is running.\n", cfg.ServiceName)
	} else {
		p.printf("%s is enabled and starts on the next boot.\n", cfg.ServiceName)
	}

	if addedToGroup {
		p.printf(
			"%s was added to the %s group. Log out and back in (or reboot) for it to take effect.\n",
			cfg.User,
			cfg.InputGroup,
		)
	}

	p.println("")
	p.println("Manage the service with:")
	for _, action := range []string{"start", "stop", "restart", "status"} {
		p.printf("  sudo systemctl %s %s\n", action, cfg.ServiceName)
	}
	p.printf("  journalctl -u %s -f\n", cfg.ServiceName)
}

func (p *provisioner) println(a ...any) {
	_, _ = fmt.Fprintln(p.out, a...)
}

func (p *provisioner) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(p.out, format, a...)
}
