// Package deps 解析各生态的清单文件，并构建源文件之间的导入关系图
package deps

import (
	"bufio"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"
)

// Manifest 清单文件中与分析相关的字段
type Manifest struct {
	File        string            // 清单文件名，例如 package.json
	Name        string            // 项目名
	Description string            // 项目描述
	Main        string            // 入口（package.json main）
	Scripts     map[string]string // 脚本（package.json scripts）
	Runtime     []string          // 运行时依赖名，已排序
	Development []string          // 开发依赖名，已排序
}

// HasDependency 判断是否声明了某个依赖（运行时或开发）
func (m *Manifest) HasDependency(name string) bool {
	if m == nil {
		return false
	}
	name = strings.ToLower(name)
	for _, d := range m.Runtime {
		if strings.ToLower(d) == name {
			return true
		}
	}
	for _, d := range m.Development {
		if strings.ToLower(d) == name {
			return true
		}
	}
	return false
}

type parseFunc func(data []byte) (*Manifest, error)

// manifestOrder 清单文件的检查顺序
var manifestOrder = []string{
	"package.json",
	"requirements.txt",
	"Pipfile",
	"pyproject.toml",
	"pubspec.yaml",
	"Cargo.toml",
	"go.mod",
	"pom.xml",
	"build.gradle",
	"composer.json",
}

var parsers = map[string]parseFunc{
	"package.json":     parsePackageJSON,
	"requirements.txt": parseRequirements,
	"Pipfile":          parsePipfile,
	"pyproject.toml":   parsePyproject,
	"pubspec.yaml":     parsePubspec,
	"Cargo.toml":       parseCargo,
	"go.mod":           parseGoMod,
	"pom.xml":          parsePom,
	"build.gradle":     parseGradle,
	"composer.json":    parseComposer,
}

// ManifestNames 返回支持的清单文件名，按检查顺序
func ManifestNames() []string {
	return append([]string(nil), manifestOrder...)
}

// IsManifest 判断文件名是否为支持的清单
func IsManifest(name string) bool {
	_, ok := parsers[name]
	return ok
}

// ParseManifest 按文件名选择解析器
func ParseManifest(path string) (*Manifest, error) {
	name := filepath.Base(path)
	parse, ok := parsers[name]
	if !ok {
		return nil, fmt.Errorf("unsupported manifest: %s", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	m.File = name
	m.Runtime = sortedUnique(m.Runtime)
	m.Development = sortedUnique(m.Development)
	return m, nil
}

// FindManifests 返回目录下存在的清单文件路径，按检查顺序
func FindManifests(dir string) []string {
	var out []string
	for _, name := range manifestOrder {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			out = append(out, p)
		}
	}
	return out
}

func parsePackageJSON(data []byte) (*Manifest, error) {
	var pkg struct {
		Name                 string            `json:"name"`
		Description          string            `json:"description"`
		Main                 string            `json:"main"`
		Scripts              map[string]string `json:"scripts"`
		Dependencies         map[string]string `json:"dependencies"`
		DevDependencies      map[string]string `json:"devDependencies"`
		PeerDependencies     map[string]string `json:"peerDependencies"`
		OptionalDependencies map[string]string `json:"optionalDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	m := &Manifest{
		Name:        pkg.Name,
		Description: pkg.Description,
		Main:        pkg.Main,
		Scripts:     pkg.Scripts,
		Runtime:     append(keys(pkg.Dependencies), keys(pkg.PeerDependencies)...),
		Development: keys(pkg.DevDependencies),
	}
	m.Runtime = append(m.Runtime, keys(pkg.OptionalDependencies)...)
	return m, nil
}

// requirementName 提取 requirements 行中的包名
var requirementName = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)`)

func parseRequirements(data []byte) (*Manifest, error) {
	m := &Manifest{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		if match := requirementName.FindStringSubmatch(line); match != nil {
			m.Runtime = append(m.Runtime, match[1])
		}
	}
	return m, sc.Err()
}

func parsePipfile(data []byte) (*Manifest, error) {
	var pf struct {
		Packages    map[string]any `toml:"packages"`
		DevPackages map[string]any `toml:"dev-packages"`
	}
	if err := toml.Unmarshal(data, &pf); err != nil {
		return nil, err
	}
	return &Manifest{Runtime: keys(pf.Packages), Development: keys(pf.DevPackages)}, nil
}

func parsePyproject(data []byte) (*Manifest, error) {
	var pp struct {
		Project struct {
			Name                 string              `toml:"name"`
			Description          string              `toml:"description"`
			Dependencies         []string            `toml:"dependencies"`
			OptionalDependencies map[string][]string `toml:"optional-dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Name            string         `toml:"name"`
				Description     string         `toml:"description"`
				Dependencies    map[string]any `toml:"dependencies"`
				DevDependencies map[string]any `toml:"dev-dependencies"`
				Group           map[string]struct {
					Dependencies map[string]any `toml:"dependencies"`
				} `toml:"group"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &pp); err != nil {
		return nil, err
	}

	m := &Manifest{Name: pp.Project.Name, Description: pp.Project.Description}
	for _, req := range pp.Project.Dependencies {
		if match := requirementName.FindStringSubmatch(strings.TrimSpace(req)); match != nil {
			m.Runtime = append(m.Runtime, match[1])
		}
	}
	for _, reqs := range pp.Project.OptionalDependencies {
		for _, req := range reqs {
			if match := requirementName.FindStringSubmatch(strings.TrimSpace(req)); match != nil {
				m.Development = append(m.Development, match[1])
			}
		}
	}

	poetry := pp.Tool.Poetry
	if m.Name == "" {
		m.Name = poetry.Name
	}
	if m.Description == "" {
		m.Description = poetry.Description
	}
	for name := range poetry.Dependencies {
		if name != "python" {
			m.Runtime = append(m.Runtime, name)
		}
	}
	m.Development = append(m.Development, keys(poetry.DevDependencies)...)
	for _, g := range poetry.Group {
		m.Development = append(m.Development, keys(g.Dependencies)...)
	}
	return m, nil
}

func parsePubspec(data []byte) (*Manifest, error) {
	var ps struct {
		Name            string         `yaml:"name"`
		Description     string         `yaml:"description"`
		Dependencies    map[string]any `yaml:"dependencies"`
		DevDependencies map[string]any `yaml:"dev_dependencies"`
	}
	if err := yaml.Unmarshal(data, &ps); err != nil {
		return nil, err
	}
	return &Manifest{
		Name:        ps.Name,
		Description: ps.Description,
		Runtime:     keys(ps.Dependencies),
		Development: keys(ps.DevDependencies),
	}, nil
}

func parseCargo(data []byte) (*Manifest, error) {
	var cargo struct {
		Package struct {
			Name        string `toml:"name"`
			Description string `toml:"description"`
		} `toml:"package"`
		Dependencies      map[string]any `toml:"dependencies"`
		DevDependencies   map[string]any `toml:"dev-dependencies"`
		BuildDependencies map[string]any `toml:"build-dependencies"`
	}
	if err := toml.Unmarshal(data, &cargo); err != nil {
		return nil, err
	}
	return &Manifest{
		Name:        cargo.Package.Name,
		Description: cargo.Package.Description,
		Runtime:     keys(cargo.Dependencies),
		Development: append(keys(cargo.DevDependencies), keys(cargo.BuildDependencies)...),
	}, nil
}

func parseGoMod(data []byte) (*Manifest, error) {
	f, err := modfile.ParseLax("go.mod", data, nil)
	if err != nil {
		return nil, err
	}
	m := &Manifest{}
	if f.Module != nil {
		m.Name = f.Module.Mod.Path
	}
	for _, r := range f.Require {
		// 间接依赖不算项目声明的依赖
		if !r.Indirect {
			m.Runtime = append(m.Runtime, r.Mod.Path)
		}
	}
	for _, t := range f.Tool {
		m.Development = append(m.Development, t.Path)
	}
	return m, nil
}

func parsePom(data []byte) (*Manifest, error) {
	var pom struct {
		ArtifactID   string `xml:"artifactId"`
		Name         string `xml:"name"`
		Description  string `xml:"description"`
		Dependencies []struct {
			GroupID    string `xml:"groupId"`
			ArtifactID string `xml:"artifactId"`
			Scope      string `xml:"scope"`
		} `xml:"dependencies>dependency"`
	}
	if err := xml.Unmarshal(data, &pom); err != nil {
		return nil, err
	}
	m := &Manifest{Name: pom.Name, Description: strings.TrimSpace(pom.Description)}
	if m.Name == "" {
		m.Name = pom.ArtifactID
	}
	for _, d := range pom.Dependencies {
		id := d.ArtifactID
		if d.GroupID != "" {
			id = d.GroupID + ":" + d.ArtifactID
		}
		if d.Scope == "test" || d.Scope == "provided" {
			m.Development = append(m.Development, id)
		} else {
			m.Runtime = append(m.Runtime, id)
		}
	}
	return m, nil
}

var gradleDep = regexp.MustCompile(`(?m)^\s*(implementation|api|compile|runtimeOnly|compileOnly|testImplementation|testCompile|testRuntimeOnly|androidTestImplementation)\s*\(?\s*['"]([^'"]+)['"]`)

func parseGradle(data []byte) (*Manifest, error) {
	m := &Manifest{}
	for _, match := range gradleDep.FindAllSubmatch(data, -1) {
		conf, coord := string(match[1]), string(match[2])
		// 去掉版本号 group:artifact:version
		if parts := strings.Split(coord, ":"); len(parts) >= 2 {
			coord = parts[0] + ":" + parts[1]
		}
		if strings.HasPrefix(conf, "test") || strings.HasPrefix(conf, "androidTest") || conf == "compileOnly" {
			m.Development = append(m.Development, coord)
		} else {
			m.Runtime = append(m.Runtime, coord)
		}
	}
	return m, nil
}

func parseComposer(data []byte) (*Manifest, error) {
	var c struct {
		Name        string            `json:"name"`
		Description string            `json:"description"`
		Require     map[string]string `json:"require"`
		RequireDev  map[string]string `json:"require-dev"`
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	m := &Manifest{Name: c.Name, Description: c.Description, Development: keys(c.RequireDev)}
	for name := range c.Require {
		// 平台约束不是依赖
		if name == "php" || strings.HasPrefix(name, "ext-") {
			continue
		}
		m.Runtime = append(m.Runtime, name)
	}
	return m, nil
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func sortedUnique(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
