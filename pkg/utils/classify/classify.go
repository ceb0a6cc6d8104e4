// Package classify 根据清单文件和文件扩展名统计确定项目类型、框架和语言
package classify

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/yeisme/smartrepo/pkg/models"
	"github.com/yeisme/smartrepo/pkg/utils/deps"
	"github.com/yeisme/smartrepo/pkg/utils/walker"
)

// Config 分类器配置
type Config struct {
	// ContentHints 是否扫描源码内容识别框架提示
	ContentHints bool
	Logger       *zerolog.Logger
}

// Classifier 项目分类器，相同输入总是得到相同结果
type Classifier struct {
	cfg       Config
	detectors []Detector
}

// New 创建分类器；未传入识别器时使用 DefaultDetectors
func New(cfg Config, detectors ...Detector) *Classifier {
	if len(detectors) == 0 {
		detectors = DefaultDetectors()
	}
	if cfg.Logger == nil {
		nop := zerolog.Nop()
		cfg.Logger = &nop
	}
	return &Classifier{cfg: cfg, detectors: detectors}
}

type ranked struct {
	Detection
	manifest string
	priority int
}

// Classify 生成项目画像
// 清单优先于扩展名统计；多个清单时框架级优先于语言级，再按识别器顺序
// 没有清单时主语言取文件数最多的语言，类型保持 unknown
func (c *Classifier) Classify(root string, files []walker.Candidate) models.ProjectProfile {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	profile := models.ProjectProfile{
		RootPath:  abs,
		Name:      filepath.Base(abs),
		Type:      models.UnknownProjectType,
		Languages: []string{},
	}

	var best *ranked
	for i, d := range c.detectors {
		path := filepath.Join(root, d.Manifest())
		if st, err := os.Stat(path); err != nil || st.IsDir() {
			continue
		}
		m, err := deps.ParseManifest(path)
		if err != nil {
			// 清单损坏时仍按存在处理，只是没有依赖信息
			c.cfg.Logger.Debug().Err(err).Str("manifest", d.Manifest()).Msg("manifest parse failed")
			m = nil
		}
		det, ok := d.Detect(root, m)
		if !ok {
			continue
		}
		cand := &ranked{Detection: det, manifest: d.Manifest(), priority: i}
		if best == nil || better(cand, best) {
			best = cand
		}
	}

	counts := languageCounts(files)
	langs := make([]string, 0, len(counts))
	for l := range counts {
		langs = append(langs, l)
	}

	if best != nil {
		profile.Type = best.Type
		profile.Framework = best.Framework
		profile.PackageManagers = best.PackageManagers
		profile.EntryPoints = best.EntryPoints
		profile.Manifest = best.manifest
		profile.Description = best.Description
		if len(best.Languages) > 0 {
			profile.PrimaryLanguage = best.Languages[0]
		}
		langs = append(langs, best.Languages...)
	} else {
		profile.PrimaryLanguage = majority(counts)
	}

	profile.Languages = sortedUnique(langs)
	if c.cfg.ContentHints {
		profile.DetectedFrameworks = DetectFrameworkHints(files)
	}
	return profile
}

func better(a, b *ranked) bool {
	if a.Level != b.Level {
		return a.Level > b.Level
	}
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.manifest < b.manifest
}

func languageCounts(files []walker.Candidate) map[string]int {
	counts := map[string]int{}
	for _, f := range files {
		counts[f.Language]++
	}
	return counts
}

// majority 文件数最多的语言，数量相同按名称排序取第一个
func majority(counts map[string]int) string {
	best, bestN := "", 0
	for lang, n := range counts {
		if n > bestN || (n == bestN && lang < best) {
			best, bestN = lang, n
		}
	}
	return best
}

func sortedUnique(in []string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, s := range in {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
