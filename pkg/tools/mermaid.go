package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/yeisme/smartrepo/pkg/utils/executor"
)

// MermaidRenderer 通过 mermaid-cli (mmdc) 渲染图片
type MermaidRenderer struct {
	Bin     string
	Install string
	Timeout time.Duration
}

func (m MermaidRenderer) Render(ctx context.Context, inPath, outPath string) error {
	bin, err := Require(m.Bin, m.Install)
	if err != nil {
		return err
	}
	if _, err := executor.Tool(ctx, m.Timeout, bin,
		"-i", inPath, "-o", outPath, "-t", "neutral", "-b", "white").CombinedOutput(); err != nil {
		return fmt.Errorf("mmdc: %w", err)
	}
	return nil
}
