// Package fsop provides file system operations.
package fsop

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yeisme/smartrepo/pkg/utils/deps"
	"github.com/yeisme/smartrepo/pkg/utils/gitignore"
)

// EnsureDir 创建目录（含父目录），已存在时检查它确实是目录
func EnsureDir(dir string) error {
	if st, err := os.Stat(dir); err == nil {
		if !st.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", dir)
		}
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// WriteFile 先写入同目录下的临时文件再重命名，避免留下写了一半的文件
func WriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}

// FileInfo 输出文件的名称和大小
type FileInfo struct {
	Name string
	Size int64
}

// ListFiles 列出目录下的普通文件（不递归），按名称排序
func ListFiles(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, FileInfo{Name: e.Name(), Size: info.Size()})
	}
	return out, nil
}

// walkSubdirectories 遍历 root 下深度不超过 depth 的子目录，返回相对路径（/ 分隔）
// ignorePatterns 按子串匹配，gi 可为 nil
func walkSubdirectories(root string, depth int, ignorePatterns []string, gi *gitignore.Matcher) ([]string, error) {
	var subdirs []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// 无法读取的子目录直接跳过
			return filepath.SkipDir
		}
		if !d.IsDir() || path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(d.Name(), ".") || gi.Match(rel, true) {
			return filepath.SkipDir
		}
		for _, pat := range ignorePatterns {
			if pat != "" && strings.Contains(rel, strings.Trim(pat, "/")) {
				return filepath.SkipDir
			}
		}
		subdirs = append(subdirs, rel)
		if depth > 0 && strings.Count(rel, "/")+1 >= depth {
			return filepath.SkipDir
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	sort.Strings(subdirs)
	return subdirs, nil
}

// ListAllSubdirectories lists all subdirectories in the given path, recursively,
// as slash separated paths relative to root.
func ListAllSubdirectories(root string, ignorePatterns []string) ([]string, error) {
	return walkSubdirectories(root, 0, ignorePatterns, nil)
}

// FindSubprojects 查找 root 下深度不超过 depth、包含清单文件的子目录（单体仓库的子项目）
// 遵循 root 的 .gitignore；找不到 .gitignore 时不做过滤
func FindSubprojects(root string, depth int, ignorePatterns []string) ([]string, error) {
	gi, err := gitignore.Load(root)
	if err != nil {
		gi = nil
	}
	dirs, err := walkSubdirectories(root, depth, ignorePatterns, gi)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, rel := range dirs {
		if len(deps.FindManifests(filepath.Join(root, filepath.FromSlash(rel)))) > 0 {
			out = append(out, rel)
		}
	}
	return out, nil
}
