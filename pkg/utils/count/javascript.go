package count

import "regexp"

var (
	jsFunctions = []*regexp.Regexp{
		regexp.MustCompile(`\bfunction\b\s*\*?\s*(\w+)`),
		regexp.MustCompile(`(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s+)?(?:function\b|\([^)]*\)\s*(?::\s*[\w<>\[\]|]+\s*)?=>|\w+\s*=>)`),
		regexp.MustCompile(`(\w+)\s*:\s*(?:async\s+)?function\b`),
		regexp.MustCompile(`(?m)^[ \t]+(?:(?:public|private|protected|static|async|readonly)\s+)*(\w+)\s*\([^)]*\)\s*(?::\s*[\w<>\[\]|, ]+)?\s*\{`),
	}
	jsClasses = []*regexp.Regexp{
		regexp.MustCompile(`\bclass\s+(\w+)(?:<[^>]*>)?(?:\s+extends\s+([\w.]+))?`),
	}
	jsImports = []*regexp.Regexp{
		regexp.MustCompile(`import\s+[^'";]*?\s+from\s+['"]([^'"]+)['"]`),
		regexp.MustCompile(`import\s+['"]([^'"]+)['"]`),
		regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`),
		regexp.MustCompile(`import\(\s*['"]([^'"]+)['"]\s*\)`),
	}
)

// jsStrategy JavaScript/TypeScript 及 JSX/TSX 共用的正则提取
type jsStrategy struct {
	lang string
}

func (s jsStrategy) Language() string { return s.lang }

func (s jsStrategy) Extract(content []byte) Structure {
	return regexStrategy{
		lang:      s.lang,
		syntax:    jsStyle,
		functions: jsFunctions,
		classes:   jsClasses,
		imports:   jsImports,
	}.Extract(content)
}
