package oscore

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
)

// FindProcessByCmdline returns the first process whose command line
// contains needle, or nil when there is none.
func FindProcessByCmdline(ctx context.Context, needle string) (*process.Process, error) {
	processes, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to load all processes")
	}

	for _, p := range processes {
		cmdline, err := p.CmdlineWithContext(ctx)
		if err != nil {
			continue
		}

		if strings.Contains(cmdline, needle) {
			return p, nil
		}
	}

	return nil, nil //nolint:nilnil
}
