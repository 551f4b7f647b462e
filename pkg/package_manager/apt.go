package packagemanager

import (
	"context"
	"log"

	osinfo "github.com/humansforhousing/kioskctl/pkg/os_info"
	"github.com/humansforhousing/kioskctl/pkg/oscore"
	pmapt "github.com/humansforhousing/kioskctl/pkg/package_manager/apt"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const aptFrontendEnv = "DEBIAN_FRONTEND=noninteractive"

type apt struct {
	runner oscore.Runner
	osInfo osinfo.Info
}

func newAPT(runner oscore.Runner, osInfo osinfo.Info) *apt {
	return &apt{
		runner: runner,
		osInfo: osInfo,
	}
}

// CheckForUpdates runs an apt update to retrieve new packages available
// from the repositories.
func (apt *apt) CheckForUpdates(ctx context.Context) error {
	return apt.runner.Run(ctx, oscore.Command{
		Name: "apt-get",
		Args: []string{"update", "-q"},
		Env:  []string{aptFrontendEnv},
	})
}

// Install installs a set of logical packages.
func (apt *apt) Install(ctx context.Context, packs ...string) error {
	names, err := apt.resolve(packs...)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		log.Println("Nothing to install")

		return nil
	}

	args := append([]string{"install", "-y"}, names...)

	return apt.runner.Run(ctx, oscore.Command{
		Name: "apt-get",
		Args: args,
		Env:  []string{aptFrontendEnv},
	})
}

func (apt *apt) resolve(packs ...string) ([]string, error) {
	config, err := pmapt.LoadPackages(apt.osInfo)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to load package catalog")
	}

	result := make([]string, 0, len(packs))

	for _, pack := range packs {
		if pack == "" || pack == " " {
			continue
		}

		if pkg, ok := config[pack]; ok {
			result = append(result, pkg.Names()...)

			continue
		}

		result = append(result, pack)
	}

	return lo.Uniq(result), nil
}
