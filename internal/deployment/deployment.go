// Package deployment resolves the single configuration every provisioning
// step works from.
package deployment

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/humansforhousing/kioskctl/pkg/identity"
	"github.com/humansforhousing/kioskctl/pkg/kiosk"
	"github.com/humansforhousing/kioskctl/pkg/shellquote"
	"github.com/humansforhousing/kioskctl/pkg/source"
	"github.com/humansforhousing/kioskctl/pkg/unitfile"
	"github.com/humansforhousing/kioskctl/pkg/utils"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
)

type ConfigError struct {
	Problems []error
}

func (e *ConfigError) Error() string {
	messages := lo.Map(e.Problems, func(err error, _ int) string {
		return err.Error()
	})

	return "invalid deployment configuration: " + strings.Join(messages, "; ")
}

// Overrides are the interactive answers. Empty values keep the settings.
type Overrides struct {
	RepositoryURL string
	InstallPath   string
}

type Config struct {
	RepositoryURL   string
	Branch          string
	InstallPath     string
	User            string
	Group           string
	Home            string
	XAuthority      string
	Display         string
	UVPath          string
	ServiceName     string
	ServiceTemplate string
	UnitDir         string
	InputGroup      string
	Packages        []string
}

func Resolve(id identity.Identity, settings Settings, overrides Overrides) (Config, error) {
	settings = DefaultSettings(id.Home).Merge(settings)

	cfg := Config{
		RepositoryURL:   strings.TrimSpace(lo.CoalesceOrEmpty(overrides.RepositoryURL, settings.Repository)),
		Branch:          settings.Branch,
		InstallPath:     cleanPath(lo.CoalesceOrEmpty(overrides.InstallPath, settings.InstallPath)),
		User:            id.User,
		Group:           id.Group,
		Home:            id.Home,
		XAuthority:      cleanPath(settings.XAuthority),
		Display:         settings.Display,
		UVPath:          uvPath(id.Home),
		ServiceName:     settings.ServiceName,
		ServiceTemplate: settings.ServiceTemplate,
		UnitDir:         settings.UnitDir,
		InputGroup:      settings.InputGroup,
		Packages:        settings.Packages,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports all problems at once.
func (c Config) Validate() error {
	var err error

	if c.RepositoryURL == "" {
		err = multierr.Append(err, errors.New("repository URL is empty"))
	}
	if !filepath.IsAbs(c.InstallPath) || c.InstallPath == "/" {
		err = multierr.Append(err, errors.Errorf("install path %q must be an absolute path below /", c.InstallPath))
	}
	if c.User == "" {
		err = multierr.Append(err, errors.New("user is empty"))
	}
	if c.Group == "" {
		err = multierr.Append(err, errors.New("group is empty"))
	}
	if !strings.HasSuffix(c.ServiceName, ".service") || strings.ContainsRune(c.ServiceName, '/') {
		err = multierr.Append(err, errors.Errorf("service name %q must be a file name ending in .service", c.ServiceName))
	}
	if !filepath.IsLocal(c.ServiceTemplate) {
		err = multierr.Append(err, errors.Errorf("service template %q must be relative to the install path", c.ServiceTemplate))
	}
	if !filepath.IsAbs(c.XAuthority) {
		err = multierr.Append(err, errors.Errorf("XAUTHORITY path %q is not absolute", c.XAuthority))
	}
	if !filepath.IsAbs(c.UnitDir) {
		err = multierr.Append(err, errors.Errorf("unit directory %q is not absolute", c.UnitDir))
	}

	for name, value := range c.lineValues() {
		if strings.ContainsAny(value, "\r\n") {
			err = multierr.Append(err, errors.Errorf("%s contains a line break", name))
		}
	}

	if err != nil {
		return &ConfigError{Problems: multierr.Errors(err)}
	}

	return nil
}

// lineValues are the values that end up on a single unit file line.
func (c Config) lineValues() map[string]string {
	return map[string]string{
		"user":          c.User,
		"group":         c.Group,
		"install path":  c.InstallPath,
		"XAUTHORITY":    c.XAuthority,
		"display":       c.Display,
		"uv path":       c.UVPath,
		"repository":    c.RepositoryURL,
		"service name":  c.ServiceName,
		"template path": c.ServiceTemplate,
	}
}

func (c Config) Source() source.Source {
	return source.Source{
		URL:     c.RepositoryURL,
		Branch:  c.Branch,
		Path:    c.InstallPath,
		// The template is rendered in place, so it is dirty on every re-run.
		Managed: []string{c.ServiceTemplate},
	}
}

// TemplatePath is the unit file inside the working copy.
func (c Config) TemplatePath() string {
	return filepath.Join(c.InstallPath, c.ServiceTemplate)
}

// UnitPath is where the unit file is registered.
func (c Config) UnitPath() string {
	return filepath.Join(c.UnitDir, c.ServiceName)
}

func (c Config) ExecStart() string {
	return shellquote.Join(c.UVPath, "run", "python", "-m", kiosk.PlayerModule)
}

func (c Config) UnitFields() []unitfile.Field {
	return []unitfile.Field{
		{Key: unitfile.KeyUser, Value: c.User},
		{Key: unitfile.KeyGroup, Value: c.Group},
		{Key: unitfile.KeyWorkingDir, Value: c.InstallPath},
		{Key: unitfile.KeyXAuthority, Value: c.XAuthority},
		{Key: unitfile.KeyDisplay, Value: c.Display},
		{Key: unitfile.KeyExecStart, Value: c.ExecStart()},
	}
}

func (c Config) String() string {
	return fmt.Sprintf(
		"repository=%s branch=%s path=%s user=%s group=%s service=%s",
		c.RepositoryURL, lo.CoalesceOrEmpty(c.Branch, "<default>"), c.InstallPath, c.User, c.Group, c.ServiceName,
	)
}

func cleanPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}

	return filepath.Clean(path)
}

func uvPath(home string) string {
	userBin := filepath.Join(home, kiosk.UVRelativeBinDir)

	path, err := utils.LookupCommand(kiosk.UVBinaryName, userBin)
	if err != nil {
		return filepath.Join(userBin, kiosk.UVBinaryName)
	}

	return path
}
