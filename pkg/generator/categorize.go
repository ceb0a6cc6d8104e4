package generator

import (
	"strings"

	"github.com/yeisme/smartrepo/pkg/models"
)

// 架构分组名称
const (
	CategoryModels      = "Models"
	CategoryControllers = "Controllers"
	CategoryViews       = "Views"
	CategoryServices    = "Services"
	CategoryUtils       = "Utils"
	CategoryTests       = "Tests"
	CategoryConfig      = "Config"
	CategoryOther       = "Other"
)

type categoryRule struct {
	name     string
	keywords []string
}

// 按顺序匹配小写路径，第一个命中的分组生效
var categoryRules = []categoryRule{
	{CategoryTests, []string{"test"}},
	{CategoryModels, []string{"model", "schema", "entity"}},
	{CategoryControllers, []string{"controller", "route", "handler"}},
	{CategoryViews, []string{"view", "component", "template"}},
	{CategoryServices, []string{"service", "business", "logic"}},
	{CategoryUtils, []string{"util", "helper", "tool"}},
	{CategoryConfig, []string{"config", "setting", "env"}},
}

// 输出顺序
var categoryOrder = []string{
	CategoryModels, CategoryControllers, CategoryViews, CategoryServices,
	CategoryUtils, CategoryTests, CategoryConfig, CategoryOther,
}

var categoryDescriptions = map[string]string{
	CategoryModels:      "Data models, schemas, and database entities",
	CategoryControllers: "Request handlers, route controllers, and API endpoints",
	CategoryViews:       "UI components, templates, and presentation layer",
	CategoryServices:    "Business logic, services, and core functionality",
	CategoryUtils:       "Utility functions, helpers, and common tools",
	CategoryTests:       "Test suites, unit tests, and testing utilities",
	CategoryConfig:      "Configuration files and environment settings",
	CategoryOther:       "Miscellaneous files and additional components",
}

// CategoryOf 根据路径关键字判断文件所属分组
func CategoryOf(path string) string {
	lower := strings.ToLower(path)
	for _, r := range categoryRules {
		for _, k := range r.keywords {
			if strings.Contains(lower, k) {
				return r.name
			}
		}
	}
	return CategoryOther
}

// Categorize 将文件归入架构分组，只返回非空分组，顺序固定
func Categorize(files []models.FileRecord) []models.ArchitectureCategory {
	grouped := map[string][]string{}
	for _, f := range files {
		c := CategoryOf(f.Path)
		grouped[c] = append(grouped[c], f.Path)
	}
	out := []models.ArchitectureCategory{}
	for _, name := range categoryOrder {
		paths := grouped[name]
		if len(paths) == 0 {
			continue
		}
		out = append(out, models.ArchitectureCategory{
			Name:        name,
			Description: categoryDescriptions[name],
			FileCount:   len(paths),
			Files:       paths,
		})
	}
	return out
}
