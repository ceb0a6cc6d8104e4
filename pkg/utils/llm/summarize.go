package llm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/yeisme/smartrepo/pkg/models"
)

const (
	defaultMaxFiles = 10
	defaultMaxChars = 8000
	// condenseThreshold 超过该行数的文件只发送开头、定义行和结尾
	condenseThreshold = 100
	condenseEdge      = 5
)

var definitionLine = regexp.MustCompile(`^\s*(?:export\s+)?(?:async\s+)?(?:def|class|func|function|fn|pub\s+fn|interface|struct|type)\b`)

// Summarizer 为最大的若干个文件生成摘要
type Summarizer struct {
	Client   Client
	MaxFiles int
	MaxChars int
	Logger   *zerolog.Logger
}

// Summarize 单个文件失败只记录警告；全部失败时返回第一个错误
func (s *Summarizer) Summarize(ctx context.Context, root string, files []models.FileRecord) ([]models.AISummary, error) {
	logger := s.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	maxFiles := s.MaxFiles
	if maxFiles <= 0 {
		maxFiles = defaultMaxFiles
	}
	maxChars := s.MaxChars
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}

	summary := models.AnalysisSummary{Files: files}
	var (
		out      []models.AISummary
		firstErr error
	)
	for _, f := range summary.LargestFiles(maxFiles) {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.Path)))
		if err != nil {
			logger.Debug().Err(err).Str("file", f.Path).Msg("cannot read file for summary")
			continue
		}
		text, err := s.Client.Generate(ctx, Prompt(f, Condense(string(content), maxChars)))
		if err != nil {
			logger.Warn().Err(err).Str("file", f.Path).Str("client", s.Client.Name()).Msg("ai summary failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = append(out, models.AISummary{Path: f.Path, Summary: text})
	}
	if len(out) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// Prompt 单个文件的摘要提示词
func Prompt(f models.FileRecord, content string) string {
	return fmt.Sprintf("Summarize the purpose of this %s file `%s` in 2-3 sentences. "+
		"Mention its main responsibilities and key functions or classes.\n\n```\n%s\n```\n",
		f.Language, f.Path, content)
}

// Condense 大文件保留前后各 5 行和所有定义行（带行号），最后按 maxChars 字节截断，不切断多字节字符
func Condense(content string, maxChars int) string {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(lines) > condenseThreshold {
		var b strings.Builder
		for _, l := range lines[:condenseEdge] {
			b.WriteString(l + "\n")
		}
		b.WriteString("...\n")
		for i, l := range lines[condenseEdge : len(lines)-condenseEdge] {
			if definitionLine.MatchString(l) {
				fmt.Fprintf(&b, "[%d] %s\n", i+condenseEdge+1, strings.TrimSpace(l))
			}
		}
		b.WriteString("...\n")
		for _, l := range lines[len(lines)-condenseEdge:] {
			b.WriteString(l + "\n")
		}
		content = b.String()
	}
	if maxChars > 0 && len(content) > maxChars {
		cut := maxChars
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut] + "\n... (truncated)"
	}
	return content
}
