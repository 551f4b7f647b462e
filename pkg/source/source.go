// Package source keeps a git working copy of the application at the install path.
package source

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pkg/errors"
)

const remoteName = "origin"

var ErrNotDirectory = errors.New("install path exists and is not a directory")

type Source struct {
	URL string
	// Branch to check out. Empty means the default branch of the remote.
	Branch string
	Path   string
	// Managed are tracked files, relative to Path, that the installer
	// rewrites. They are reset to HEAD before a refresh.
	Managed []string
}

func (s Source) reference() plumbing.ReferenceName {
	if s.Branch == "" {
		return ""
	}

	return plumbing.NewBranchReferenceName(s.Branch)
}

type UnexpectedReferenceError struct {
	Want plumbing.ReferenceName
	Got  plumbing.ReferenceName
}

func (e *UnexpectedReferenceError) Error() string {
	return fmt.Sprintf("working copy is on %s, expected %s", e.Got, e.Want)
}

// ConfirmFunc is asked once when the install path already exists.
type ConfirmFunc func(ctx context.Context, path string) (Decision, error)

type Fetcher struct {
	progress io.Writer
}

func NewFetcher() *Fetcher {
	return &Fetcher{progress: log.Writer()}
}

// Ensure leaves a working copy of src at src.Path.
func (f *Fetcher) Ensure(ctx context.Context, src Source, confirm ConfirmFunc) (Outcome, error) {
	info, err := os.Stat(src.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return Cloned, f.Clone(ctx, src)
	}
	if err != nil {
		return Cloned, errors.WithMessage(err, "failed to stat install path")
	}

	if !info.IsDir() {
		return Cloned, errors.WithMessage(ErrNotDirectory, src.Path)
	}

	decision, err := confirm(ctx, src.Path)
	if err != nil {
		return Refreshed, err
	}

	log.Printf("Install path %s exists, decision: %s\n", src.Path, decision)

	if decision == ReplaceFresh {
		err = os.RemoveAll(src.Path)
		if err != nil {
			return Replaced, errors.WithMessage(err, "failed to remove existing working copy")
		}

		return Replaced, f.Clone(ctx, src)
	}

	return Refreshed, f.Refresh(ctx, src)
}

func (f *Fetcher) Clone(ctx context.Context, src Source) error {
	opts := &git.CloneOptions{
		URL:        src.URL,
		RemoteName: remoteName,
		Progress:   f.progress,
	}

	if ref := src.reference(); ref != "" {
		opts.ReferenceName = ref
		opts.SingleBranch = true
	}

	repo, err := git.PlainCloneContext(ctx, src.Path, false, opts)
	if err != nil {
		return errors.WithMessagef(err, "failed to clone %s", src.URL)
	}

	head, err := repo.Head()
	if err != nil {
		return errors.WithMessage(err, "failed to resolve HEAD")
	}

	if ref := src.reference(); ref != "" && head.Name() != ref {
		return &UnexpectedReferenceError{Want: ref, Got: head.Name()}
	}

	log.Printf("Cloned %s at %s (%s)\n", src.URL, head.Name(), head.Hash())

	return nil
}

// Refresh pulls the expected branch from origin. Managed files are reset
// first, untracked files are kept, other uncommitted changes to tracked
// files make the pull fail.
func (f *Fetcher) Refresh(ctx context.Context, src Source) error {
	repo, err := git.PlainOpen(src.Path)
	if err != nil {
		return errors.WithMessagef(err, "failed to open working copy %s", src.Path)
	}

	head, err := repo.Head()
	if err != nil {
		return errors.WithMessage(err, "failed to resolve HEAD")
	}

	err = restoreManaged(repo, head.Hash(), src)
	if err != nil {
		return err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return errors.WithMessage(err, "failed to open worktree")
	}

	branch := head.Name()
	if want := src.reference(); want != "" && want != branch {
		err = f.switchBranch(ctx, repo, wt, src.Branch)
		if err != nil {
			return err
		}
		branch = want
	}

	if !branch.IsBranch() {
		return errors.Errorf("working copy %s is not on a branch", src.Path)
	}

	err = wt.PullContext(ctx, &git.PullOptions{
		RemoteName:    remoteName,
		ReferenceName: branch,
		SingleBranch:  true,
		Progress:      f.progress,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		log.Printf("%s is already up to date\n", src.Path)

		return nil
	}
	if err != nil {
		return errors.WithMessagef(err, "failed to pull %s", branch.Short())
	}

	return nil
}

// restoreManaged writes the committed contents of every managed file back
// to the worktree.
func restoreManaged(repo *git.Repository, hash plumbing.Hash, src Source) error {
	if len(src.Managed) == 0 {
		return nil
	}

	commit, err := repo.CommitObject(hash)
	if err != nil {
		return errors.WithMessage(err, "failed to load HEAD commit")
	}

	for _, name := range src.Managed {
		file, err := commit.File(filepath.ToSlash(name))
		if errors.Is(err, object.ErrFileNotFound) {
			continue
		}
		if err != nil {
			return errors.WithMessagef(err, "failed to find %s in HEAD", name)
		}

		contents, err := file.Contents()
		if err != nil {
			return errors.WithMessagef(err, "failed to read %s from HEAD", name)
		}

		mode, err := file.Mode.ToOSFileMode()
		if err != nil {
			return errors.WithMessagef(err, "invalid mode of %s", name)
		}

		path := filepath.Join(src.Path, name)

		err = os.WriteFile(path, []byte(contents), mode.Perm())
		if err != nil {
			return errors.WithMessagef(err, "failed to restore %s", name)
		}

		log.Println("Restored", path, "from HEAD")
	}

	return nil
}

// switchBranch fetches the branch from origin and checks it out, creating
// the local branch when needed.
func (f *Fetcher) switchBranch(ctx context.Context, repo *git.Repository, wt *git.Worktree, branch string) error {
	local := plumbing.NewBranchReferenceName(branch)
	remote := plumbing.NewRemoteReferenceName(remoteName, branch)

	err := repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{config.RefSpec(fmt.Sprintf("+%s:%s", local, remote))},
		Progress:   f.progress,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return errors.WithMessagef(err, "failed to fetch branch %s", branch)
	}

	remoteRef, err := repo.Reference(remote, true)
	if err != nil {
		return errors.WithMessagef(err, "branch %s not found on %s", branch, remoteName)
	}

	_, err = repo.Reference(local, true)
	create := errors.Is(err, plumbing.ErrReferenceNotFound)
	if err != nil && !create {
		return errors.WithMessagef(err, "failed to resolve branch %s", branch)
	}

	opts := &git.CheckoutOptions{Branch: local, Create: create}
	if create {
		opts.Hash = remoteRef.Hash()
	}

	err = wt.Checkout(opts)
	if err != nil {
		return errors.WithMessagef(err, "failed to check out branch %s", branch)
	}

	log.Printf("Switched working copy to %s\n", local)

	return nil
}

// Head returns the checked out reference of the working copy.
func Head(path string) (plumbing.ReferenceName, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return "", errors.WithMessagef(err, "failed to open working copy %s", path)
	}

	head, err := repo.Head()
	if err != nil {
		return "", errors.WithMessage(err, "failed to resolve HEAD")
	}

	return head.Name(), nil
}
