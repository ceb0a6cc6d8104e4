// Package gitinfo 通过 go-git 读取仓库历史，不依赖 git 可执行文件
package gitinfo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/yeisme/smartrepo/pkg/models"
)

// ErrNotRepository 路径及其上级目录都不是 git 仓库
var ErrNotRepository = errors.New("not a git repository")

// Open 打开包含 path 的仓库，会向上查找 .git
func Open(path string) (*git.Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, abs)
		}
		return nil, fmt.Errorf("open repository at %s: %w", abs, err)
	}
	return repo, nil
}

// Contributors 统计 HEAD 可达提交的作者，按提交数降序、名称升序
// path 是仓库中的子目录时只统计修改过该目录下文件的提交
// 同一邮箱的提交合并，显示最新一次提交使用的名称；limit <= 0 表示不限制
// 空仓库返回空列表
func Contributors(ctx context.Context, path string, limit int) ([]models.Contributor, error) {
	repo, err := Open(path)
	if err != nil {
		return nil, err
	}
	filter, err := subdirFilter(repo, path)
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return []models.Contributor{}, nil
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	commits, err := repo.Log(&git.LogOptions{From: head.Hash(), PathFilter: filter})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer commits.Close()

	byKey := map[string]*models.Contributor{}
	err = commits.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := strings.ToLower(strings.TrimSpace(c.Author.Email))
		if key == "" {
			key = c.Author.Name
		}
		if cur, ok := byKey[key]; ok {
			cur.Commits++
			return nil
		}
		byKey[key] = &models.Contributor{Name: c.Author.Name, Email: c.Author.Email, Commits: 1}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk commits: %w", err)
	}

	out := make([]models.Contributor, 0, len(byKey))
	for _, c := range byKey {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Commits != out[j].Commits {
			return out[i].Commits > out[j].Commits
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// subdirFilter path 为工作树根目录或裸仓库时返回 nil（不过滤）
func subdirFilter(repo *git.Repository, path string) (func(string) bool, error) {
	wt, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return nil, nil
		}
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	rel, err := relToRoot(wt.Filesystem.Root(), path)
	if err != nil {
		return nil, err
	}
	if rel == "" {
		return nil, nil
	}
	prefix := rel + "/"
	return func(file string) bool { return strings.HasPrefix(file, prefix) }, nil
}

// relToRoot 返回 path 相对 root 的 / 分隔路径，两者先解析符号链接
func relToRoot(root, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	if r, err := filepath.EvalSymlinks(root); err == nil {
		root = r
	}
	if p, err := filepath.EvalSymlinks(abs); err == nil {
		abs = p
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}
