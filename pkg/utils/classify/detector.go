package classify

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/yeisme/smartrepo/pkg/utils/deps"
)

// Level 识别结果的精度，框架级优先于语言级
type Level int

const (
	// LevelLanguage 只确定了语言/生态
	LevelLanguage Level = iota + 1
	// LevelFramework 确定了具体框架
	LevelFramework
)

func (l Level) String() string {
	switch l {
	case LevelFramework:
		return "framework"
	case LevelLanguage:
		return "language"
	default:
		return "none"
	}
}

// Detection 单个清单文件的识别结果
type Detection struct {
	Type            string
	Framework       string
	Level           Level
	Languages       []string // 第一个为主语言
	PackageManagers []string
	EntryPoints     []string
	Description     string
}

// Detector 基于某个清单文件识别项目类型
type Detector interface {
	// Manifest 返回负责的清单文件名
	Manifest() string
	// Detect 根据已解析的清单识别，root 用于检查入口文件是否存在
	Detect(root string, m *deps.Manifest) (Detection, bool)
}

// framework 依赖名到框架名，按顺序匹配第一个
type framework struct {
	dep  string
	name string
}

// manifestDetector 通用的清单识别器
type manifestDetector struct {
	file       string
	typ        string
	languages  []string
	managers   []string
	entries    []string
	frameworks []framework
	// fixedFramework 清单本身即代表框架，例如 pom.xml -> Maven
	fixedFramework string
	// prefixMatch 依赖名按前缀匹配，例如 symfony/
	prefixMatch bool
	// refine 在通用逻辑之后调整结果
	refine func(root string, m *deps.Manifest, d *Detection)
}

func (md manifestDetector) Manifest() string { return md.file }

func (md manifestDetector) Detect(root string, m *deps.Manifest) (Detection, bool) {
	d := Detection{
		Type:            md.typ,
		Level:           LevelLanguage,
		Languages:       append([]string(nil), md.languages...),
		PackageManagers: append([]string(nil), md.managers...),
		EntryPoints:     append([]string(nil), md.entries...),
	}
	if m != nil {
		d.Description = m.Description
	}
	if md.fixedFramework != "" {
		d.Framework = md.fixedFramework
		d.Level = LevelFramework
	}
	for _, fw := range md.frameworks {
		if md.hasDep(m, fw.dep) {
			d.Framework = fw.name
			d.Level = LevelFramework
			break
		}
	}
	if md.refine != nil {
		md.refine(root, m, &d)
	}
	return d, true
}

func (md manifestDetector) hasDep(m *deps.Manifest, dep string) bool {
	if m == nil {
		return false
	}
	if !md.prefixMatch {
		return m.HasDependency(dep)
	}
	for _, d := range append(append([]string(nil), m.Runtime...), m.Development...) {
		if strings.HasPrefix(strings.ToLower(d), dep) {
			return true
		}
	}
	return false
}

var pythonFrameworks = []framework{
	{"django", "Django"},
	{"flask", "Flask"},
	{"fastapi", "FastAPI"},
	{"tornado", "Tornado"},
	{"streamlit", "Streamlit"},
}

// DefaultDetectors 内置识别器，顺序即同级别时的优先级
func DefaultDetectors() []Detector {
	return []Detector{
		manifestDetector{
			file:      "package.json",
			typ:       "Node.js",
			languages: []string{"JavaScript"},
			managers:  []string{"npm"},
			frameworks: []framework{
				{"react", "React"},
				{"@types/react", "React"},
				{"vue", "Vue.js"},
				{"angular", "Angular"},
				{"@angular/core", "Angular"},
				{"express", "Express.js"},
				{"next", "Next.js"},
			},
			refine: refineNode,
		},
		manifestDetector{
			file:       "requirements.txt",
			typ:        "Python",
			languages:  []string{"Python"},
			managers:   []string{"pip"},
			frameworks: pythonFrameworks,
			refine:     refinePython,
		},
		manifestDetector{
			file:       "Pipfile",
			typ:        "Python",
			languages:  []string{"Python"},
			managers:   []string{"pipenv"},
			frameworks: pythonFrameworks,
			refine:     refinePython,
		},
		manifestDetector{
			file:       "pyproject.toml",
			typ:        "Python",
			languages:  []string{"Python"},
			managers:   []string{"pip"},
			frameworks: pythonFrameworks,
			refine:     refinePython,
		},
		manifestDetector{
			file:      "pubspec.yaml",
			typ:       "Dart",
			languages: []string{"Dart"},
			managers:  []string{"pub"},
			entries:   []string{"lib/main.dart"},
			frameworks: []framework{
				{"flutter", "Flutter"},
			},
			refine: func(_ string, _ *deps.Manifest, d *Detection) {
				if d.Framework == "Flutter" {
					d.Type = "Flutter"
				}
			},
		},
		manifestDetector{
			file:      "Cargo.toml",
			typ:       "Rust",
			languages: []string{"Rust"},
			managers:  []string{"cargo"},
			entries:   []string{"src/main.rs"},
			frameworks: []framework{
				{"actix-web", "Actix Web"},
				{"rocket", "Rocket"},
				{"axum", "Axum"},
			},
		},
		manifestDetector{
			file:      "go.mod",
			typ:       "Go",
			languages: []string{"Go"},
			managers:  []string{"go mod"},
			entries:   []string{"main.go"},
			frameworks: []framework{
				{"github.com/gin-gonic/gin", "Gin"},
				{"github.com/labstack/echo/v4", "Echo"},
				{"github.com/gofiber/fiber/v2", "Fiber"},
				{"github.com/go-chi/chi/v5", "Chi"},
			},
		},
		manifestDetector{
			file:           "pom.xml",
			typ:            "Java",
			languages:      []string{"Java"},
			managers:       []string{"maven"},
			fixedFramework: "Maven",
			frameworks: []framework{
				{"org.springframework.boot:spring-boot-starter", "Spring Boot"},
				{"org.springframework.boot:spring-boot-starter-web", "Spring Boot"},
			},
		},
		manifestDetector{
			file:           "build.gradle",
			typ:            "Java",
			languages:      []string{"Java"},
			managers:       []string{"gradle"},
			fixedFramework: "Gradle",
		},
		manifestDetector{
			file:        "composer.json",
			typ:         "PHP",
			languages:   []string{"PHP"},
			managers:    []string{"composer"},
			entries:     []string{"index.php"},
			prefixMatch: true,
			frameworks: []framework{
				{"laravel/", "Laravel"},
				{"symfony/", "Symfony"},
			},
		},
	}
}

func refineNode(root string, m *deps.Manifest, d *Detection) {
	if m == nil {
		return
	}
	if m.HasDependency("typescript") || m.HasDependency("@types/react") || d.Framework == "Angular" {
		d.Languages = appendUnique(d.Languages, "TypeScript")
	}
	if m.Main != "" {
		d.EntryPoints = appendUnique(d.EntryPoints, m.Main)
	}
	// "start": "node server.js" 取最后一个参数作为入口
	if start, ok := m.Scripts["start"]; ok && strings.Contains(start, "node") {
		if parts := strings.Fields(start); len(parts) > 1 {
			d.EntryPoints = appendUnique(d.EntryPoints, parts[len(parts)-1])
		}
	}
}

func refinePython(root string, _ *deps.Manifest, d *Detection) {
	for _, name := range []string{"main.py", "app.py", "run.py", "server.py", "manage.py"} {
		if st, err := os.Stat(filepath.Join(root, name)); err == nil && !st.IsDir() {
			d.EntryPoints = appendUnique(d.EntryPoints, name)
		}
	}
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}
