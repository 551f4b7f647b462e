package packagemanager

import "fmt"

type ErrUnsupportedDistribution struct {
	distro string
}

func NewErrUnsupportedDistribution(distro string) *ErrUnsupportedDistribution {
	return &ErrUnsupportedDistribution{
		distro: distro,
	}
}

func (e *ErrUnsupportedDistribution) Error() string {
	if e.distro == "" {
		return "unsupported distribution, failed to detect it"
	}

	return fmt.Sprintf("unsupported distribution '%s'", e.distro)
}
