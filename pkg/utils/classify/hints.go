package classify

import (
	"io"
	"os"
	"regexp"
	"sort"

	"github.com/yeisme/smartrepo/pkg/utils/walker"
)

// hintReadLimit 每个文件最多读取的字节数
const hintReadLimit = 64 * 1024

type hint struct {
	name     string
	patterns []*regexp.Regexp
}

func compileHints(spec map[string][]string) []hint {
	names := make([]string, 0, len(spec))
	for n := range spec {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]hint, 0, len(names))
	for _, n := range names {
		h := hint{name: n}
		for _, p := range spec[n] {
			h.patterns = append(h.patterns, regexp.MustCompile("(?i)"+p))
		}
		out = append(out, h)
	}
	return out
}

var frameworkHints = compileHints(map[string][]string{
	"django":    {`import django`, `from django`},
	"flask":     {`import flask`, `from flask`},
	"fastapi":   {`import fastapi`, `from fastapi`},
	"streamlit": {`import streamlit`, `from streamlit`},
	"react":     {`from ['"]react['"]`, `import react`, `@types/react`},
	"vue":       {`from ['"]vue['"]`, `import vue`},
	"angular":   {`@angular/core`, `from ['"]@angular`},
	"express":   {`require\(['"]express['"]\)`, `from ['"]express['"]`},
	"nextjs":    {`from ['"]next['"/]`, `import next`},
	"flutter":   {`import ['"]package:flutter`},
	"laravel":   {`illuminate\\`},
	"spring":    {`import org\.springframework`},
	"rails":     {`require ['"]rails['"]`},
	"symfony":   {`use symfony`},
	"nestjs":    {`@nestjs/`},
	"svelte":    {`from ['"]svelte['"]`},
	"gin":       {`"github\.com/gin-gonic/gin"`},
	"cobra":     {`"github\.com/spf13/cobra"`},
})

// DetectFrameworkHints 扫描源码内容中的框架导入特征，返回排序后的框架名
// 读取失败的文件直接跳过
func DetectFrameworkHints(files []walker.Candidate) []string {
	found := map[string]struct{}{}
	for _, f := range files {
		if len(found) == len(frameworkHints) {
			break
		}
		content, err := readLimited(f.Path)
		if err != nil {
			continue
		}
		for _, h := range frameworkHints {
			if _, ok := found[h.name]; ok {
				continue
			}
			for _, p := range h.patterns {
				if p.Match(content) {
					found[h.name] = struct{}{}
					break
				}
			}
		}
	}
	if len(found) == 0 {
		return nil
	}
	out := make([]string, 0, len(found))
	for n := range found {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func readLimited(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(io.LimitReader(f, hintReadLimit))
}
