package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeisme/smartrepo/pkg/models"
)

func TestCondense(t *testing.T) {
	small := "a\nb\n"
	assert.Equal(t, small, Condense(small, 0))

	var b strings.Builder
	for i := 1; i <= 120; i++ {
		switch i {
		case 50:
			b.WriteString("def handler(req):\n")
		case 80:
			b.WriteString("    class Inner:\n")
		default:
			fmt.Fprintf(&b, "x%d = %d\n", i, i)
		}
	}
	got := Condense(b.String(), 0)
	assert.True(t, strings.HasPrefix(got, "x1 = 1\n"))
	assert.Contains(t, got, "[50] def handler(req):\n")
	assert.Contains(t, got, "[80] class Inner:\n")
	assert.True(t, strings.HasSuffix(got, "x120 = 120\n"))
	assert.NotContains(t, got, "x60 = 60")

	assert.Equal(t, "abc\n... (truncated)", Condense("abcdef", 3))
}

func TestCondense_KeepsRunesWhole(t *testing.T) {
	// 每个汉字 3 字节，4 字节处落在第二个字符中间
	got := Condense("数据分析工具", 4)
	assert.Equal(t, "数\n... (truncated)", got)
	assert.True(t, utf8.ValidString(got))

	for n := 1; n <= 12; n++ {
		assert.True(t, utf8.ValidString(Condense("naïve café 日本", n)), "maxChars=%d", n)
	}
}

func TestSummarizer(t *testing.T) {
	root := t.TempDir()
	files := []models.FileRecord{
		{Path: "big.py", Language: "Python", Lines: 30},
		{Path: "small.py", Language: "Python", Lines: 2},
		{Path: "gone.py", Language: "Python", Lines: 10},
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.py"), []byte("def big():\n    pass\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "small.py"), []byte("x = 1\n"), 0o644))

	var prompts []string
	s := Summarizer{
		Client: FakeClient{Reply: func(p string) (string, error) {
			prompts = append(prompts, p)
			if strings.Contains(p, "small.py") {
				return "", errors.New("quota exceeded")
			}
			return "Defines big.", nil
		}},
		MaxFiles: 3,
	}

	got, err := s.Summarize(context.Background(), root, files)
	require.NoError(t, err)
	assert.Equal(t, []models.AISummary{{Path: "big.py", Summary: "Defines big."}}, got)
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], "Python file `big.py`")
	assert.Contains(t, prompts[0], "def big():")
}

func TestSummarizer_AllFail(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a\n"), 0o644))
	boom := errors.New("boom")
	s := Summarizer{Client: FakeClient{Reply: func(string) (string, error) { return "", boom }}}

	_, err := s.Summarize(context.Background(), root, []models.FileRecord{{Path: "a.go", Language: "Go", Lines: 1}})
	assert.ErrorIs(t, err, boom)
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "gemini-2.0-flash")
	assert.Error(t, err)
}
