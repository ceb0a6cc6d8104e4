// Package main writes the JSON schemas of the config file and ai-summary.json into docs/.
package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/yeisme/smartrepo/pkg/utils/schema"
)

//go:generate go run github.com/yeisme/smartrepo/cmd/schema
func main() {
	docs := filepath.Join("..", "..", "docs")
	if err := os.MkdirAll(docs, 0o755); err != nil {
		panic(err)
	}
	for name, gen := range map[string]func(io.Writer) error{
		"config_schema.json":  schema.GenConfigSchema,
		"summary_schema.json": schema.GenSummarySchema,
	} {
		f, err := os.Create(filepath.Join(docs, name))
		if err != nil {
			panic(err)
		}
		if err := gen(f); err != nil {
			_ = f.Close()
			panic(err)
		}
		if err := f.Close(); err != nil {
			panic(err)
		}
	}
}
