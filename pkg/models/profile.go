package models

// UnknownProjectType 没有识别到清单文件时的项目类型
const UnknownProjectType = "unknown"

// ProjectProfile 项目画像，一次分析只生成一个，分类完成后不再修改
type ProjectProfile struct {
	RootPath        string   `json:"root_path" yaml:"root_path"`
	Name            string   `json:"name" yaml:"name"`
	Type            string   `json:"type" yaml:"type"`
	Framework       string   `json:"framework,omitempty" yaml:"framework,omitempty"`
	PrimaryLanguage string   `json:"primary_language,omitempty" yaml:"primary_language,omitempty"`
	Languages       []string `json:"languages" yaml:"languages"` // 已排序
	PackageManagers []string `json:"package_managers,omitempty" yaml:"package_managers,omitempty"`
	EntryPoints     []string `json:"entry_points,omitempty" yaml:"entry_points,omitempty"`
	Manifest        string   `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	Description     string   `json:"description,omitempty" yaml:"description,omitempty"`

	// DetectedFrameworks 从源码内容中识别到的框架提示，与清单无关
	DetectedFrameworks []string `json:"detected_frameworks,omitempty" yaml:"detected_frameworks,omitempty"`
}

// HasLanguage 判断项目是否包含某种语言
func (p ProjectProfile) HasLanguage(lang string) bool {
	for _, l := range p.Languages {
		if l == lang {
			return true
		}
	}
	return false
}
