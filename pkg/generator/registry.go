package generator

import (
	"github.com/rs/zerolog"
	"github.com/yeisme/smartrepo/pkg/configs"
	"github.com/yeisme/smartrepo/pkg/tools"
)

// Options 控制生成哪些文档
type Options struct {
	Prompt     configs.PromptConfig
	Generators configs.GeneratorsConfig
	// Renderer 为 nil 时不渲染 architecture.png
	Renderer   tools.DiagramRenderer
	Security   bool
	AI         bool
	Lint       bool
	Complexity bool
	Logger     *zerolog.Logger
}

// Core 四个始终生成的文档
func Core(opts Options) []Generator {
	return []Generator{
		Readme{},
		Architecture{Renderer: opts.Renderer, Logger: opts.Logger},
		SummaryJSON{},
		Prompt{MaxChunkChars: opts.Prompt.MaxChunkChars, MaxKeywords: opts.Prompt.MaxKeywords},
	}
}

// Default 核心文档加上按配置开启的附加文档
func Default(opts Options) []Generator {
	gens := Core(opts)
	g := opts.Generators
	if g.DependencyGraph {
		gens = append(gens, DependencyGraph{})
	}
	if g.UML {
		gens = append(gens, UML{})
	}
	if g.Insights {
		gens = append(gens, Insights{})
	}
	if g.Contributors {
		gens = append(gens, Contributors{})
	}
	if g.HTML {
		gens = append(gens, HTML{})
	}
	if g.UsageExamples {
		gens = append(gens, UsageExamples{})
	}
	if g.CallGraph {
		gens = append(gens, CallGraph{})
	}
	if opts.Complexity {
		gens = append(gens, Complexity{})
	}
	if opts.Lint {
		gens = append(gens, Lint{})
	}
	if opts.Security {
		gens = append(gens, Security{})
	}
	if opts.AI {
		gens = append(gens, AISummaries{})
	}
	return gens
}
