// Package apt holds the catalog mapping logical package names to the apt
// packages of each distribution.
package apt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	osinfo "github.com/humansforhousing/kioskctl/pkg/os_info"
)

//go:embed *.yaml
var fs embed.FS

type packagesConfig struct {
	Packages []PackageConfig `yaml:"packages"`
}

type PackageConfig struct {
	Name        string   `yaml:"name"`
	ReplaceWith []string `yaml:"replace-with"`
}

// Names returns apt package names for the logical package.
func (c PackageConfig) Names() []string {
	if len(c.ReplaceWith) == 0 {
		return []string{c.Name}
	}

	result := make([]string, 0, len(c.ReplaceWith))
	for _, name := range c.ReplaceWith {
		if strings.TrimSpace(name) == "" {
			continue
		}
		result = append(result, name)
	}

	return result
}

var (
	packageCache      = make(map[string]map[string]PackageConfig)
	packageCacheMutex sync.RWMutex
)

func buildCacheKey(osinf osinfo.Info) string {
	return fmt.Sprintf(
		"%s_%s_%s",
		osinf.Distribution.String(),
		osinf.DistributionCodename,
		osinf.Platform.String(),
	)
}

// LoadPackages merges default.yaml with more specific files. Later files
// override earlier ones:
// default.yaml, default_<arch>.yaml, <dist>.yaml, <dist>_<codename>.yaml,
// <dist>_<codename>_<arch>.yaml.
func LoadPackages(osinf osinfo.Info) (map[string]PackageConfig, error) {
	cacheKey := buildCacheKey(osinf)

	packageCacheMutex.RLock()
	if cached, exists := packageCache[cacheKey]; exists {
		packageCacheMutex.RUnlock()

		return cached, nil
	}
	packageCacheMutex.RUnlock()

	packageCacheMutex.Lock()
	defer packageCacheMutex.Unlock()

	packages := make(map[string]PackageConfig)

	for _, filename := range filesToLoad(osinf) {
		data, err := fs.ReadFile(filename)
		if err != nil {
			continue
		}

		var config packagesConfig
		err = yaml.Unmarshal(data, &config)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", filename, err)
		}

		for _, pkg := range config.Packages {
			packages[pkg.Name] = pkg
		}
	}

	packageCache[cacheKey] = packages

	return packages, nil
}

func filesToLoad(osinf osinfo.Info) []string {
	distribution := strings.ToLower(osinf.Distribution.String())
	arch := osinf.Platform.String()
	codename := osinf.DistributionCodename

	files := []string{"default.yaml"}

	if arch != "" {
		files = append(files, fmt.Sprintf("default_%s.yaml", arch))
	}

	if distribution != "" {
		files = append(files, fmt.Sprintf("%s.yaml", distribution))
	}

	if distribution != "" && codename != "" {
		files = append(files, fmt.Sprintf("%s_%s.yaml", distribution, codename))
	}

	if distribution != "" && codename != "" && arch != "" {
		files = append(files, fmt.Sprintf("%s_%s_%s.yaml", distribution, codename, arch))
	}

	return files
}
