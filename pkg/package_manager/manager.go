package packagemanager

import (
	"context"

	contextInternal "github.com/humansforhousing/kioskctl/internal/context"
	osinfo "github.com/humansforhousing/kioskctl/pkg/os_info"
	"github.com/humansforhousing/kioskctl/pkg/oscore"
)

type PackageManager interface {
	CheckForUpdates(ctx context.Context) error
	Install(ctx context.Context, packs ...string) error
}

// Load returns the package manager for the operating system stored in ctx.
// The runner must be privileged.
//
//nolint:ireturn,nolintlint
func Load(ctx context.Context, runner oscore.Runner) (PackageManager, error) {
	osInfo := contextInternal.OSInfoFromContext(ctx)

	switch osInfo.Distribution {
	case osinfo.DistributionDebian, osinfo.DistributionRaspbian, osinfo.DistributionUbuntu:
		return newAPT(runner, osInfo), nil
	}

	return nil, NewErrUnsupportedDistribution(osInfo.Distribution.String())
}
