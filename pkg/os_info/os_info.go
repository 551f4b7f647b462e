package osinfo

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"

	"github.com/matishsiao/goInfo"
	"github.com/pkg/errors"
)

type Distribution string

const (
	DistributionDebian   Distribution = "debian"
	DistributionRaspbian Distribution = "raspbian"
	DistributionUbuntu   Distribution = "ubuntu"
)

func (d Distribution) String() string {
	return string(d)
}

type Platform string

const (
	PlatformAmd64 Platform = "amd64"
	PlatformArm64 Platform = "arm64"
	PlatformArm   Platform = "arm"
	Platform386   Platform = "386"
)

func (p Platform) String() string {
	return string(p)
}

type Info struct {
	Kernel               string
	Core                 string
	Distribution         Distribution
	DistributionVersion  string
	DistributionCodename string
	Platform             Platform
	OS                   string
	Hostname             string
	CPUs                 int
}

func (i Info) String() string {
	b := strings.Builder{}
	b.Grow(256) //nolint:mnd

	b.WriteString("Kernel: ")
	b.WriteString(i.Kernel)
	b.WriteString("\nDistribution: ")
	b.WriteString(i.Distribution.String())
	b.WriteString("\nDistributionVersion: ")
	b.WriteString(i.DistributionVersion)
	b.WriteString("\nDistributionCodename: ")
	b.WriteString(i.DistributionCodename)
	b.WriteString("\nPlatform: ")
	b.WriteString(i.Platform.String())
	b.WriteString("\nHostname: ")
	b.WriteString(i.Hostname)

	return b.String()
}

const (
	etcOsRelease  = "/etc/os-release"
	etcLsbRelease = "/etc/lsb-release"
)

func GetOSInfo(_ context.Context) (Info, error) {
	gi, err := goInfo.GetInfo()
	if err != nil {
		return Info{}, errors.WithMessage(err, "failed to get system info")
	}

	result := Info{
		Kernel:   gi.Kernel,
		Core:     gi.Core,
		Platform: normalizePlatform(gi.Platform),
		OS:       gi.OS,
		Hostname: gi.Hostname,
		CPUs:     gi.CPUs,
	}

	if gi.OS != "GNU/Linux" {
		result.Distribution = Distribution(strings.ToLower(gi.OS))

		return result, nil
	}

	dist, err := detectLinuxDist()
	if err != nil {
		return result, err
	}

	result.Distribution = Distribution(dist.Name)
	result.DistributionVersion = dist.Version
	result.DistributionCodename = dist.VersionCodename

	return result, nil
}

func normalizePlatform(platform string) Platform {
	switch platform {
	case "", "unknown":
		return Platform(runtime.GOARCH)
	case "x86_64":
		return PlatformAmd64
	case "i686", "i386":
		return Platform386
	case "aarch64":
		return PlatformArm64
	case "armv7l", "armv6l":
		return PlatformArm
	}

	return Platform(platform)
}

type distInfo struct {
	Name            string
	Version         string
	VersionCodename string
}

func detectLinuxDist() (distInfo, error) {
	if data, err := os.ReadFile(etcOsRelease); err == nil {
		if info := parseOSRelease(data); info.Name != "" {
			return info, nil
		}
	}

	if data, err := os.ReadFile(etcLsbRelease); err == nil {
		if info := parseLSBRelease(data); info.Name != "" {
			return info, nil
		}
	}

	return distInfo{}, errors.New("unknown operating system")
}

func parseOSRelease(data []byte) distInfo {
	return cleanup(distInfo{
		Name:            extractField(data, "ID"),
		Version:         extractField(data, "VERSION_ID"),
		VersionCodename: extractField(data, "VERSION_CODENAME"),
	})
}

func parseLSBRelease(data []byte) distInfo {
	return cleanup(distInfo{
		Name:            extractField(data, "DISTRIB_ID"),
		Version:         extractField(data, "DISTRIB_RELEASE"),
		VersionCodename: extractField(data, "DISTRIB_CODENAME"),
	})
}

func cleanup(info distInfo) distInfo {
	clean := func(s string) string {
		return strings.ToLower(strings.Trim(strings.ReplaceAll(s, " ", ""), `"'`))
	}

	return distInfo{
		Name:            clean(info.Name),
		Version:         clean(info.Version),
		VersionCodename: clean(info.VersionCodename),
	}
}

func extractField(data []byte, key string) string {
	regex := regexp.MustCompile(fmt.Sprintf(`(?m)^%s=(.+)$`, regexp.QuoteMeta(key)))
	matches := regex.FindStringSubmatch(string(data))
	if len(matches) == 2 {
		return strings.TrimSpace(matches[1])
	}

	return ""
}
