// Package binding fills ${name} placeholders in ticket line templates.
package binding

import (
	"regexp"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${name} 替换为 fields 中对应的值。
// 未知字段保留原占位符，便于在票签上直接发现拼写错误。
func Interpolate(text string, fields map[string]string) string {
	if len(fields) == 0 || !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		name := strings.TrimSpace(groups[1])
		if val, ok := fields[name]; ok {
			return val
		}
		return match
	})
}

// Placeholders returns the field names referenced by text, in order.
func Placeholders(text string) []string {
	var names []string
	for _, groups := range exprPattern.FindAllStringSubmatch(text, -1) {
		if name := strings.TrimSpace(groups[1]); name != "" {
			names = append(names, name)
		}
	}
	return names
}
