package source_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/humansforhousing/kioskctl/pkg/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upstream struct {
	dir  string
	repo *git.Repository
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	u := &upstream{dir: dir, repo: repo}
	u.commit(t, "README.md", "video player\n")

	return u
}

func (u *upstream) commit(t *testing.T, name, contents string) plumbing.Hash {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(u.dir, name), []byte(contents), 0644))

	wt, err := u.repo.Worktree()
	require.NoError(t, err)

	_, err = wt.Add(name)
	require.NoError(t, err)

	hash, err := wt.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "kiosk", Email: "kiosk@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return hash
}

func (u *upstream) branch(t *testing.T, name string) {
	t.Helper()

	head, err := u.repo.Head()
	require.NoError(t, err)

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), head.Hash())
	require.NoError(t, u.repo.Storer.SetReference(ref))
}

func mustNotConfirm(t *testing.T) source.ConfirmFunc {
	t.Helper()

	return func(_ context.Context, _ string) (source.Decision, error) {
		t.Fatal("confirmation must not be asked")

		return source.RefreshInPlace, nil
	}
}

func answer(text string) source.ConfirmFunc {
	return func(_ context.Context, _ string) (source.Decision, error) {
		return source.ParseDecision(text), nil
	}
}

func TestFetcher_Ensure_Clone(t *testing.T) {
	up := newUpstream(t)
	path := filepath.Join(t.TempDir(), "home", "alice", "app")

	outcome, err := source.NewFetcher().Ensure(
		context.Background(),
		source.Source{URL: up.dir, Path: path},
		mustNotConfirm(t),
	)

	require.NoError(t, err)
	assert.Equal(t, source.Cloned, outcome)
	assert.FileExists(t, filepath.Join(path, "README.md"))

	head, err := source.Head(path)
	require.NoError(t, err)
	assert.Equal(t, plumbing.Master, head)
}

func TestFetcher_Ensure_CloneBranch(t *testing.T) {
	up := newUpstream(t)
	up.branch(t, "kiosk")
	path := filepath.Join(t.TempDir(), "app")

	outcome, err := source.NewFetcher().Ensure(
		context.Background(),
		source.Source{URL: up.dir, Branch: "kiosk", Path: path},
		mustNotConfirm(t),
	)

	require.NoError(t, err)
	assert.Equal(t, source.Cloned, outcome)

	head, err := source.Head(path)
	require.NoError(t, err)
	assert.Equal(t, plumbing.NewBranchReferenceName("kiosk"), head)
}

func TestFetcher_Ensure_CloneUnknownBranch(t *testing.T) {
	up := newUpstream(t)
	path := filepath.Join(t.TempDir(), "app")

	_, err := source.NewFetcher().Ensure(
		context.Background(),
		source.Source{URL: up.dir, Branch: "missing", Path: path},
		mustNotConfirm(t),
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clone")
}

func TestFetcher_Ensure_RefreshKeepsUntrackedFiles(t *testing.T) {
	for _, text := range []string{"n", "N", "", "yes"} {
		t.Run("answer "+text, func(t *testing.T) {
			up := newUpstream(t)
			path := filepath.Join(t.TempDir(), "app")
			fetcher := source.NewFetcher()

			require.NoError(t, fetcher.Clone(context.Background(), source.Source{URL: up.dir, Path: path}))

			localFile := filepath.Join(path, "local-notes.txt")
			require.NoError(t, os.WriteFile(localFile, []byte("keep me"), 0644))

			up.commit(t, "CHANGELOG.md", "new release\n")

			outcome, err := fetcher.Ensure(
				context.Background(),
				source.Source{URL: up.dir, Path: path},
				answer(text),
			)

			require.NoError(t, err)
			assert.Equal(t, source.Refreshed, outcome)
			assert.FileExists(t, localFile)
			assert.FileExists(t, filepath.Join(path, "CHANGELOG.md"))
		})
	}
}

func TestFetcher_Ensure_RefreshAlreadyUpToDate(t *testing.T) {
	up := newUpstream(t)
	path := filepath.Join(t.TempDir(), "app")
	fetcher := source.NewFetcher()

	require.NoError(t, fetcher.Clone(context.Background(), source.Source{URL: up.dir, Path: path}))

	outcome, err := fetcher.Ensure(context.Background(), source.Source{URL: up.dir, Path: path}, answer(""))

	require.NoError(t, err)
	assert.Equal(t, source.Refreshed, outcome)
}

func TestFetcher_Ensure_Replace(t *testing.T) {
	for _, text := range []string{"y", "Y"} {
		t.Run("answer "+text, func(t *testing.T) {
			up := newUpstream(t)
			path := filepath.Join(t.TempDir(), "app")
			fetcher := source.NewFetcher()

			require.NoError(t, fetcher.Clone(context.Background(), source.Source{URL: up.dir, Path: path}))

			localFile := filepath.Join(path, "local-notes.txt")
			require.NoError(t, os.WriteFile(localFile, []byte("gone"), 0644))

			outcome, err := fetcher.Ensure(
				context.Background(),
				source.Source{URL: up.dir, Path: path},
				answer(text),
			)

			require.NoError(t, err)
			assert.Equal(t, source.Replaced, outcome)
			assert.NoFileExists(t, localFile)
			assert.FileExists(t, filepath.Join(path, "README.md"))

			head, err := source.Head(path)
			require.NoError(t, err)
			assert.Equal(t, plumbing.Master, head)
		})
	}
}

func TestFetcher_Ensure_ReplaceNonRepository(t *testing.T) {
	up := newUpstream(t)
	path := filepath.Join(t.TempDir(), "app")
	require.NoError(t, os.MkdirAll(path, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "junk"), []byte("x"), 0644))

	outcome, err := source.NewFetcher().Ensure(context.Background(), source.Source{URL: up.dir, Path: path}, answer("y"))

	require.NoError(t, err)
	assert.Equal(t, source.Replaced, outcome)
	assert.NoFileExists(t, filepath.Join(path, "junk"))
	assert.FileExists(t, filepath.Join(path, "README.md"))
}

func TestFetcher_Ensure_RefreshNonRepositoryFails(t *testing.T) {
	up := newUpstream(t)
	path := filepath.Join(t.TempDir(), "app")
	require.NoError(t, os.MkdirAll(path, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "junk"), []byte("x"), 0644))

	_, err := source.NewFetcher().Ensure(context.Background(), source.Source{URL: up.dir, Path: path}, answer("n"))

	require.Error(t, err)
	assert.ErrorIs(t, err, git.ErrRepositoryNotExists)
	assert.FileExists(t, filepath.Join(path, "junk"))
}

func TestFetcher_Ensure_PathIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := source.NewFetcher().Ensure(
		context.Background(),
		source.Source{URL: "https://example.com/repo.git", Path: path},
		mustNotConfirm(t),
	)

	assert.ErrorIs(t, err, source.ErrNotDirectory)
}

func TestFetcher_Ensure_ConfirmError(t *testing.T) {
	path := t.TempDir()
	confirmErr := assert.AnError

	_, err := source.NewFetcher().Ensure(
		context.Background(),
		source.Source{URL: "https://example.com/repo.git", Path: path},
		func(_ context.Context, _ string) (source.Decision, error) {
			return source.RefreshInPlace, confirmErr
		},
	)

	assert.ErrorIs(t, err, confirmErr)
	assert.DirExists(t, path)
}

func TestFetcher_Ensure_RefreshRestoresManagedFiles(t *testing.T) {
	up := newUpstream(t)
	up.commit(t, "video-player.service", "[Service]\nUser=pi\n")
	path := filepath.Join(t.TempDir(), "app")
	fetcher := source.NewFetcher()
	src := source.Source{URL: up.dir, Path: path, Managed: []string{"video-player.service"}}

	require.NoError(t, fetcher.Clone(context.Background(), src))

	unit := filepath.Join(path, "video-player.service")
	require.NoError(t, os.WriteFile(unit, []byte("[Service]\nUser=alice\n"), 0644))
	localFile := filepath.Join(path, "local-notes.txt")
	require.NoError(t, os.WriteFile(localFile, []byte("keep me"), 0644))

	up.commit(t, "CHANGELOG.md", "new release\n")

	outcome, err := fetcher.Ensure(context.Background(), src, answer("n"))

	require.NoError(t, err)
	assert.Equal(t, source.Refreshed, outcome)
	assert.FileExists(t, filepath.Join(path, "CHANGELOG.md"))
	assert.FileExists(t, localFile)

	contents, err := os.ReadFile(unit)
	require.NoError(t, err)
	assert.Equal(t, "[Service]\nUser=pi\n", string(contents))
}

func TestFetcher_Ensure_RefreshPicksUpManagedFileChanges(t *testing.T) {
	up := newUpstream(t)
	up.commit(t, "video-player.service", "[Service]\nUser=pi\n")
	path := filepath.Join(t.TempDir(), "app")
	fetcher := source.NewFetcher()
	src := source.Source{URL: up.dir, Path: path, Managed: []string{"video-player.service", "missing.service"}}

	require.NoError(t, fetcher.Clone(context.Background(), src))
	unit := filepath.Join(path, "video-player.service")
	require.NoError(t, os.WriteFile(unit, []byte("[Service]\nUser=alice\n"), 0644))

	up.commit(t, "video-player.service", "[Service]\nUser=pi\nRestart=always\n")

	_, err := fetcher.Ensure(context.Background(), src, answer(""))

	require.NoError(t, err)
	contents, err := os.ReadFile(unit)
	require.NoError(t, err)
	assert.Equal(t, "[Service]\nUser=pi\nRestart=always\n", string(contents))
}

func TestFetcher_Ensure_RefreshModifiedTrackedFileFails(t *testing.T) {
	up := newUpstream(t)
	path := filepath.Join(t.TempDir(), "app")
	fetcher := source.NewFetcher()
	src := source.Source{URL: up.dir, Path: path}

	require.NoError(t, fetcher.Clone(context.Background(), src))
	require.NoError(t, os.WriteFile(filepath.Join(path, "README.md"), []byte("local edit\n"), 0644))
	up.commit(t, "CHANGELOG.md", "new release\n")

	_, err := fetcher.Ensure(context.Background(), src, answer("n"))

	assert.Error(t, err)
}

func TestFetcher_Ensure_RefreshSwitchesToConfiguredBranch(t *testing.T) {
	up := newUpstream(t)
	path := filepath.Join(t.TempDir(), "app")
	fetcher := source.NewFetcher()

	require.NoError(t, fetcher.Clone(context.Background(), source.Source{URL: up.dir, Path: path}))
	up.branch(t, "kiosk")

	outcome, err := fetcher.Ensure(
		context.Background(),
		source.Source{URL: up.dir, Branch: "kiosk", Path: path},
		answer(""),
	)

	require.NoError(t, err)
	assert.Equal(t, source.Refreshed, outcome)

	head, err := source.Head(path)
	require.NoError(t, err)
	assert.Equal(t, plumbing.NewBranchReferenceName("kiosk"), head)
}

func TestFetcher_Ensure_RefreshUnknownBranch(t *testing.T) {
	up := newUpstream(t)
	path := filepath.Join(t.TempDir(), "app")
	fetcher := source.NewFetcher()

	require.NoError(t, fetcher.Clone(context.Background(), source.Source{URL: up.dir, Path: path}))

	_, err := fetcher.Ensure(
		context.Background(),
		source.Source{URL: up.dir, Branch: "missing", Path: path},
		answer("n"),
	)

	require.Error(t, err)

	head, err := source.Head(path)
	require.NoError(t, err)
	assert.Equal(t, plumbing.Master, head)
}
