package kioskctl

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/humansforhousing/kioskctl/internal/deployment"
	"github.com/pkg/errors"
)

const (
	installStateFile = "install_state.json"
)

// InstallState describes the last successful provisioning run.
type InstallState struct {
	Repository  string    `json:"repository"`
	Branch      string    `json:"branch,omitempty"`
	InstallPath string    `json:"installPath"`
	ServiceName string    `json:"serviceName"`
	UnitPath    string    `json:"unitPath"`
	CompletedAt time.Time `json:"completedAt"`
}

func NewInstallState(cfg deployment.Config, completedAt time.Time) InstallState {
	return InstallState{
		Repository:  cfg.RepositoryURL,
		Branch:      cfg.Branch,
		InstallPath: cfg.InstallPath,
		ServiceName: cfg.ServiceName,
		UnitPath:    cfg.UnitPath(),
		CompletedAt: completedAt.UTC(),
	}
}

// Settings turns the state into prompt defaults for the next run.
func (s InstallState) Settings() deployment.Settings {
	return deployment.Settings{
		Repository:  s.Repository,
		Branch:      s.Branch,
		InstallPath: s.InstallPath,
		ServiceName: s.ServiceName,
	}
}

func SaveInstallState(_ context.Context, state InstallState) error {
	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.WithMessage(err, "failed to marshal json")
	}

	dir, err := StateDirectory()
	if err != nil {
		return errors.WithMessage(err, "failed to get state directory")
	}

	err = os.WriteFile(
		filepath.Join(dir, installStateFile),
		b,
		0600,
	)
	if err != nil {
		return errors.WithMessage(err, "failed to write file")
	}

	return nil
}

func LoadInstallState(_ context.Context) (InstallState, error) {
	var state InstallState

	dir, err := StateDirectory()
	if err != nil {
		return state, errors.WithMessage(err, "failed to get state directory")
	}

	b, err := os.ReadFile(filepath.Join(dir, installStateFile))
	if err != nil {
		return state, errors.WithMessage(err, "failed to read file")
	}

	err = json.Unmarshal(b, &state)
	if err != nil {
		return state, errors.WithMessage(err, "failed to unmarshal json")
	}

	return state, nil
}
