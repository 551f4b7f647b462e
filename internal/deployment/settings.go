package deployment

import (
	"path/filepath"

	"github.com/humansforhousing/kioskctl/pkg/kiosk"
	packagemanager "github.com/humansforhousing/kioskctl/pkg/package_manager"
	"github.com/samber/lo"
)

// Settings holds the tunable part of a deployment. Empty fields mean
// "not set" and are filled from a lower precedence source by Merge.
type Settings struct {
	Repository      string   `toml:"repository"       json:"repository,omitempty"`
	Branch          string   `toml:"branch"           json:"branch,omitempty"`
	InstallPath     string   `toml:"install_path"     json:"installPath,omitempty"`
	Display         string   `toml:"display"          json:"display,omitempty"`
	XAuthority      string   `toml:"xauthority"       json:"xauthority,omitempty"`
	ServiceName     string   `toml:"service_name"     json:"serviceName,omitempty"`
	ServiceTemplate string   `toml:"service_template" json:"serviceTemplate,omitempty"`
	UnitDir         string   `toml:"unit_dir"         json:"unitDir,omitempty"`
	InputGroup      string   `toml:"input_group"      json:"inputGroup,omitempty"`
	Packages        []string `toml:"packages"         json:"packages,omitempty"`
}

func DefaultSettings(home string) Settings {
	return Settings{
		Repository:      kiosk.DefaultRepository,
		InstallPath:     filepath.Join(home, kiosk.DefaultInstallDirName),
		Display:         kiosk.DefaultDisplay,
		XAuthority:      filepath.Join(home, kiosk.XAuthorityFileName),
		ServiceName:     kiosk.DefaultServiceName,
		ServiceTemplate: kiosk.DefaultServiceTemplate,
		UnitDir:         kiosk.DefaultUnitDir,
		InputGroup:      kiosk.DefaultInputGroup,
		Packages:        packagemanager.KioskPackages,
	}
}

// Merge returns s with every field that is set in override replaced.
func (s Settings) Merge(override Settings) Settings {
	packages := s.Packages
	if len(override.Packages) > 0 {
		packages = override.Packages
	}

	return Settings{
		Repository:      lo.CoalesceOrEmpty(override.Repository, s.Repository),
		Branch:          lo.CoalesceOrEmpty(override.Branch, s.Branch),
		InstallPath:     lo.CoalesceOrEmpty(override.InstallPath, s.InstallPath),
		Display:         lo.CoalesceOrEmpty(override.Display, s.Display),
		XAuthority:      lo.CoalesceOrEmpty(override.XAuthority, s.XAuthority),
		ServiceName:     lo.CoalesceOrEmpty(override.ServiceName, s.ServiceName),
		ServiceTemplate: lo.CoalesceOrEmpty(override.ServiceTemplate, s.ServiceTemplate),
		UnitDir:         lo.CoalesceOrEmpty(override.UnitDir, s.UnitDir),
		InputGroup:      lo.CoalesceOrEmpty(override.InputGroup, s.InputGroup),
		Packages:        packages,
	}
}
