package gitinfo

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeisme/smartrepo/pkg/models"
)

func commit(t *testing.T, wt *git.Worktree, dir, file, name, email string) {
	t.Helper()
	path := filepath.Join(dir, file)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(name + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = wt.Add(file)
	require.NoError(t, err)
	_, err = wt.Commit("change by "+name, &git.CommitOptions{
		Author: &object.Signature{Name: name, Email: email, When: time.Now()},
	})
	require.NoError(t, err)
}

func TestContributors(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	commit(t, wt, dir, "a.txt", "ann", "ann@example.com")
	commit(t, wt, dir, "a.txt", "bob", "bob@example.com")
	commit(t, wt, dir, "b.txt", "Ann B", "ANN@example.com")
	commit(t, wt, dir, "b.txt", "cid", "cid@example.com")

	got, err := Contributors(context.Background(), dir, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 2, got[0].Commits)
	// 日志从新到旧遍历，显示最新提交使用的名称
	assert.Equal(t, "Ann B", got[0].Name)
	assert.Equal(t, []string{"bob", "cid"}, []string{got[1].Name, got[2].Name})

	limited, err := Contributors(context.Background(), dir, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestContributors_SubprojectOnly(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	for _, sub := range []string{"services/api", "services/apiv2", "web"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, filepath.FromSlash(sub)), 0o755))
	}

	commit(t, wt, dir, "README.md", "root", "root@example.com")
	commit(t, wt, dir, "services/api/main.go", "ann", "ann@example.com")
	commit(t, wt, dir, "services/api/main.go", "ann", "ann@example.com")
	commit(t, wt, dir, "services/apiv2/main.go", "bob", "bob@example.com")
	commit(t, wt, dir, "web/index.js", "cid", "cid@example.com")

	api, err := Contributors(context.Background(), filepath.Join(dir, "services", "api"), 0)
	require.NoError(t, err)
	require.Len(t, api, 1)
	assert.Equal(t, models.Contributor{Name: "ann", Email: "ann@example.com", Commits: 2}, api[0])

	services, err := Contributors(context.Background(), filepath.Join(dir, "services"), 0)
	require.NoError(t, err)
	assert.Len(t, services, 2)

	all, err := Contributors(context.Background(), dir, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	// 没有提交涉及的子目录
	empty := filepath.Join(dir, "docs")
	require.NoError(t, os.Mkdir(empty, 0o755))
	none, err := Contributors(context.Background(), empty, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestContributors_EmptyAndMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	got, err := Contributors(context.Background(), dir, 0)
	require.NoError(t, err)
	assert.Equal(t, []models.Contributor{}, got)

	_, err = Contributors(context.Background(), t.TempDir(), 0)
	assert.ErrorIs(t, err, ErrNotRepository)
}
