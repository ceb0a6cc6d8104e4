package generator

import (
	"bytes"
	"context"
	"fmt"
	"html"

	"github.com/yeisme/smartrepo/pkg/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Table),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; line-height: 1.6; }
pre { background: #f6f8fa; padding: 1rem; overflow: auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d0d7de; padding: 0.3rem 0.8rem; }
</style>
</head>
<body>
%s</body>
</html>
`

// HTML 将增强版 README 渲染为 readme-enhanced.html
type HTML struct{}

func (HTML) Name() string { return "html" }

func (HTML) Generate(_ context.Context, s *models.AnalysisSummary, out *Output) error {
	data, err := RenderHTML(RenderReadme(s), s.Project.Name)
	if err != nil {
		return err
	}
	return out.Write("readme-enhanced.html", data)
}

// RenderHTML 将 markdown 转为完整的 HTML 页面
func RenderHTML(md, title string) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return fmt.Appendf(nil, htmlTemplate, html.EscapeString(title), body.String()), nil
}
