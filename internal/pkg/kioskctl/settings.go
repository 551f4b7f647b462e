package kioskctl

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/humansforhousing/kioskctl/internal/deployment"
	"github.com/pkg/errors"
)

const (
	ConfigEnvVar = "KIOSKCTL_CONFIG"

	systemSettingsPath = "/etc/kioskctl/config.toml"
)

// SettingsPaths lists the candidate settings files, most specific first.
func SettingsPaths() []string {
	paths := make([]string, 0, 3) //nolint:mnd

	if env := os.Getenv(ConfigEnvVar); env != "" {
		paths = append(paths, env)
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "kioskctl", "config.toml"))
	}

	return append(paths, systemSettingsPath)
}

// LoadSettings reads the first settings file that exists. It returns the
// path it read, or an empty path when there is none.
func LoadSettings(ctx context.Context) (deployment.Settings, string, error) {
	for _, path := range SettingsPaths() {
		settings, err := ReadSettings(ctx, path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return deployment.Settings{}, path, err
		}

		return settings, path, nil
	}

	return deployment.Settings{}, "", nil
}

func ReadSettings(ctx context.Context, path string) (deployment.Settings, error) {
	var settings deployment.Settings

	meta, err := toml.DecodeFile(path, &settings)
	if err != nil {
		return deployment.Settings{}, errors.WithMessagef(err, "failed to read settings file %s", path)
	}

	for _, key := range meta.Undecoded() {
		slog.WarnContext(ctx, "unknown settings key", slog.String("key", key.String()), slog.String("file", path))
	}

	return settings, nil
}
