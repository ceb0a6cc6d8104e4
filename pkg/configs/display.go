package configs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yeisme/smartrepo/pkg/style"
	"gopkg.in/yaml.v3"
)

// OutputFormat 输出格式类型
type OutputFormat string

const (
	// FormatYAML represents the YAML output format.
	FormatYAML OutputFormat = "yaml"
	// FormatJSON represents the JSON output format.
	FormatJSON OutputFormat = "json"
	// FormatTOML represents the TOML output format.
	FormatTOML OutputFormat = "toml"
	// FormatText represents flattened key = value lines.
	FormatText OutputFormat = "text"
)

// secretKeys 输出时打码的配置项
var secretKeys = map[string]bool{"ai.api_key": true}

// ValidFormats 返回所有有效的输出格式
func ValidFormats() []string {
	return []string{string(FormatYAML), string(FormatJSON), string(FormatTOML), string(FormatText)}
}

// ParseOutputFormat 解析输出格式字符串
func ParseOutputFormat(format string) (OutputFormat, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported format '%s', supported formats: %s", format, strings.Join(ValidFormats(), ", "))
	}
}

// GetOutputFormatFromFlags --format 优先，其次 --yaml/--json/--toml/--text，默认 YAML
func GetOutputFormatFromFlags(cmd *cobra.Command) OutputFormat {
	if formatFlag, _ := cmd.Flags().GetString("format"); formatFlag != "" {
		if format, err := ParseOutputFormat(formatFlag); err == nil {
			return format
		}
	}
	for _, f := range []OutputFormat{FormatYAML, FormatJSON, FormatTOML, FormatText} {
		if on, _ := cmd.Flags().GetBool(string(f)); on {
			return f
		}
	}
	return FormatYAML
}

// OutputData 按格式输出配置数据，color 影响 JSON 和 YAML
func OutputData(data any, format OutputFormat, out io.Writer, color bool) error {
	switch format {
	case FormatYAML:
		if color {
			return style.PrintYAML(out, data)
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to marshal to YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to close YAML encoder: %w", err)
		}
		_, err := io.Copy(out, &buf)
		return err

	case FormatJSON:
		if color {
			return style.PrintJSON(out, data)
		}
		jsonData, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal to JSON: %w", err)
		}
		_, err = fmt.Fprintln(out, string(jsonData))
		return err

	case FormatTOML:
		if _, ok := data.(map[string]any); !ok {
			// TOML 顶层必须是表
			data = map[string]any{"value": data}
		}
		tomlData, err := toml.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal to TOML: %w", err)
		}
		_, err = out.Write(tomlData)
		return err

	case FormatText:
		for _, line := range flatten("", data) {
			if _, err := fmt.Fprintln(out, line); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// GetConfigSection 返回配置段，键名与配置文件一致，密钥已打码
//
//	showAll 为 true 时基于解码后的 Config（包含默认值），否则为 viper 中实际设置的值
func GetConfigSection(v *viper.Viper, section string, showAll bool) (any, error) {
	var settings map[string]any
	if showAll {
		var config Config
		if err := v.Unmarshal(&config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
		settings, _ = Settings(config).(map[string]any)
	} else {
		settings = v.AllSettings()
	}
	maskSecrets("", settings)

	section = strings.ToLower(strings.TrimSpace(section))
	if section == "" {
		return settings, nil
	}
	var cur any = settings
	for _, part := range strings.Split(section, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unknown configuration section: %s", section)
		}
		if cur, ok = m[part]; !ok {
			return nil, fmt.Errorf("unknown or unset configuration section: %s", section)
		}
	}
	return cur, nil
}

// Settings 将带 mapstructure 标签的结构体转换为嵌套 map，键名与配置文件一致
func Settings(v any) any {
	return settingsOf(reflect.ValueOf(v))
}

func settingsOf(val reflect.Value) any {
	switch val.Kind() {
	case reflect.Pointer, reflect.Interface:
		if val.IsNil() {
			return nil
		}
		return settingsOf(val.Elem())
	case reflect.Struct:
		m := make(map[string]any, val.NumField())
		typ := val.Type()
		for i := range val.NumField() {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			key, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
			if key == "-" {
				continue
			}
			if key == "" {
				key = strings.ToLower(field.Name)
			}
			m[key] = settingsOf(val.Field(i))
		}
		return m
	case reflect.Slice:
		if val.IsNil() {
			return []any{}
		}
		out := make([]any, val.Len())
		for i := range val.Len() {
			out[i] = settingsOf(val.Index(i))
		}
		return out
	default:
		return val.Interface()
	}
}

func maskSecrets(prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			maskSecrets(key, val)
		case string:
			if secretKeys[key] && val != "" {
				m[k] = "****"
			}
		}
	}
}

// flatten 展开为按键排序的 key = value 行
func flatten(prefix string, data any) []string {
	m, ok := data.(map[string]any)
	if !ok {
		if prefix == "" {
			return []string{fmt.Sprint(data)}
		}
		return []string{fmt.Sprintf("%s = %v", prefix, data)}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var lines []string
	for _, k := range keys {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		lines = append(lines, flatten(key, m[k])...)
	}
	return lines
}
