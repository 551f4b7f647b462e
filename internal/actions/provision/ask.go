package provision

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/humansforhousing/kioskctl/internal/deployment"
	"github.com/humansforhousing/kioskctl/pkg/source"
)

func (p *provisioner) askUser(ctx context.Context, defaults deployment.Settings) (deployment.Overrides, error) {
	var result deployment.Overrides
	var err error

	result.RepositoryURL, err = p.prompter.AskWithDefault(ctx, "Repository URL", defaults.Repository, nil)
	if err != nil {
		return result, err
	}

	result.InstallPath, err = p.prompter.AskWithDefault(
		ctx,
		"Install path",
		defaults.InstallPath,
		func(s string) (bool, string, error) {
			if !filepath.IsAbs(s) || filepath.Clean(s) == "/" {
				return false, "Please enter an absolute path, for example " + defaults.InstallPath, nil
			}

			return true, "", nil
		},
	)
	if err != nil {
		return result, err
	}

	return result, nil
}

func (p *provisioner) confirmReplace(ctx context.Context, path string) (source.Decision, error) {
	p.printf("Directory %s already exists.\n", path)

	answer, err := p.prompter.Ask(ctx, "Remove it and clone fresh? (y/N): ", true, nil)
	if err != nil {
		return source.RefreshInPlace, err
	}

	decision := source.ParseDecision(answer)
	if decision == source.RefreshInPlace {
		p.println("Keeping the existing copy and pulling the latest changes.")
	}

	return decision, nil
}

// confirm is true only for an explicit "y".
func (p *provisioner) confirm(ctx context.Context, question string) (bool, error) {
	answer, err := p.prompter.Ask(ctx, question, true, nil)
	if err != nil {
		return false, err
	}

	return strings.EqualFold(strings.TrimSpace(answer), "y"), nil
}
