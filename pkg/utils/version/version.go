// Package version 构建信息
//
// 发布构建通过 -ldflags "-X" 注入；go install 安装的二进制从 debug.ReadBuildInfo 补齐
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/yeisme/smartrepo/pkg/models"
)

// 由 -ldflags 注入
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	Modified  = "false"
	ModSum    = "unknown"
)

const releaseURL = "https://github.com/yeisme/smartrepo/releases/tag/v"

// Info 构建信息，version --json 的输出结构
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Modified  string `json:"modified"`
	ModSum    string `json:"mod_sum"`
	Analyzer  string `json:"analyzer_version"`
}

// readBuildInfo 测试中替换
var readBuildInfo = debug.ReadBuildInfo

// Get 汇总构建信息，未注入的字段取自模块构建信息
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Modified:  Modified,
		ModSum:    ModSum,
		Analyzer:  models.AnalyzerVersion,
	}
	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = strings.TrimPrefix(bi.Main.Version, "v")
	}
	if info.ModSum == "unknown" && bi.Main.Sum != "" {
		info.ModSum = bi.Main.Sum
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.GitCommit == "unknown":
			info.GitCommit = s.Value
		case s.Key == "vcs.time" && info.BuildDate == "unknown":
			info.BuildDate = s.Value
		case s.Key == "vcs.modified" && GitCommit == "unknown":
			info.Modified = s.Value
		}
	}
	return info
}

// Long version --detailed 输出的单行描述
func Long() string {
	i := Get()
	return fmt.Sprintf("smartrepo has version %s built with %s from %s (%s, modified: %s, mod sum: %q) on %s, analyzer %s",
		i.Version, i.GoVersion, i.GitCommit, i.Platform, i.Modified, i.ModSum, i.BuildDate, i.Analyzer)
}

// Short 版本、构建日期和发布页链接
func Short() string {
	i := Get()
	date := i.BuildDate
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		date = t.Format(time.DateOnly)
	}
	return fmt.Sprintf("smartrepo version %s (%s), analyzer %s\n%s%s", i.Version, date, i.Analyzer, releaseURL, i.Version)
}
