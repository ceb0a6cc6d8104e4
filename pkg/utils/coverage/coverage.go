// Package coverage 读取 Cobertura 格式的 coverage.xml（coverage.py、pytest-cov、gocover-cobertura 等均可生成）
package coverage

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/yeisme/smartrepo/pkg/models"
)

// DefaultReport 项目根目录下默认查找的报告文件
const DefaultReport = "coverage.xml"

// ErrNoReport 报告文件不存在
var ErrNoReport = errors.New("coverage report not found")

type report struct {
	XMLName  xml.Name `xml:"coverage"`
	Packages []struct {
		Classes []class `xml:"classes>class"`
	} `xml:"packages>package"`
}

type class struct {
	Filename string `xml:"filename,attr"`
	Lines    []struct {
		Hits string `xml:"hits,attr"`
	} `xml:"lines>line"`
}

// Load 读取 root 下的报告，name 为空时使用 coverage.xml；name 可以是绝对路径
func Load(root, name string) (*models.Coverage, error) {
	if name == "" {
		name = DefaultReport
	}
	p := name
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, filepath.FromSlash(name))
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoReport, p)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	cov, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	cov.Report = filepath.ToSlash(name)
	return cov, nil
}

// Parse 按文件汇总 <class> 下的行，同一文件的多个 class 合并计算
// hits > 0 的行计为已覆盖；没有行的文件覆盖率为 0
func Parse(r io.Reader) (*models.Coverage, error) {
	var rep report
	if err := xml.NewDecoder(r).Decode(&rep); err != nil {
		return nil, fmt.Errorf("decode coverage xml: %w", err)
	}

	byFile := map[string]*models.FileCoverage{}
	for _, pkg := range rep.Packages {
		for _, c := range pkg.Classes {
			name := cleanPath(c.Filename)
			if name == "" {
				continue
			}
			fc, ok := byFile[name]
			if !ok {
				fc = &models.FileCoverage{Path: name}
				byFile[name] = fc
			}
			for _, l := range c.Lines {
				fc.Lines++
				if hitCount(l.Hits) > 0 {
					fc.Covered++
				}
			}
		}
	}

	cov := &models.Coverage{Files: make([]models.FileCoverage, 0, len(byFile))}
	var sum float64
	for _, fc := range byFile {
		if fc.Lines > 0 {
			fc.Percent = round2(float64(fc.Covered) * 100 / float64(fc.Lines))
		}
		sum += fc.Percent
		cov.Files = append(cov.Files, *fc)
	}
	sort.Slice(cov.Files, func(i, j int) bool { return cov.Files[i].Path < cov.Files[j].Path })
	if len(cov.Files) > 0 {
		cov.Overall = round2(sum / float64(len(cov.Files)))
	}
	return cov, nil
}

// hitCount 非数字按 0 处理
func hitCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func cleanPath(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return ""
	}
	return strings.TrimPrefix(path.Clean(p), "./")
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
