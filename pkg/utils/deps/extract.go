package deps

import (
	"errors"

	"github.com/yeisme/smartrepo/pkg/models"
)

// Extract 合并根目录下所有清单文件声明的依赖
// 单个清单解析失败不影响其它清单，错误合并返回
func Extract(root string) (models.Dependencies, error) {
	var runtime, dev []string
	var errs []error
	for _, path := range FindManifests(root) {
		m, err := ParseManifest(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		runtime = append(runtime, m.Runtime...)
		dev = append(dev, m.Development...)
	}
	return models.Dependencies{
		Runtime:     sortedUnique(runtime),
		Development: sortedUnique(dev),
	}, errors.Join(errs...)
}
