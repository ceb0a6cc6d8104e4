package project

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yeisme/smartrepo/pkg/utils/fsop"
)

// RequirementsOptions create-requirements 命令选项
type RequirementsOptions struct {
	Path  string // 默认 ./requirements.txt
	Force bool
}

// Requirements 可选增强步骤调用的 Python 工具
const Requirements = `# SmartRepo optional tool requirements
# Install with: pip install -r requirements.txt
radon>=6.0      # --complexity for Python files (cc and mi)
bandit>=1.7.5   # --security
pylint>=3.0     # --lint
flake8>=6.0     # --lint
pygments>=2.10.0
`

// ExecuteCreateRequirementsCommand 写出 requirements.txt，已存在时需要 --force
func ExecuteCreateRequirementsCommand(opts RequirementsOptions, w io.Writer) error {
	path := opts.Path
	if path == "" {
		path = "requirements.txt"
	}
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
		if !opts.Force {
			return fmt.Errorf("%w: %s", ErrRequirementsExist, path)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fsop.EnsureDir(dir); err != nil {
			return fmt.Errorf("create directory for %s: %w", path, err)
		}
	}
	if err := fsop.WriteFile(path, []byte(Requirements), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	_, err := fmt.Fprintf(w, "requirements.txt created: %s\n", path)
	return err
}
