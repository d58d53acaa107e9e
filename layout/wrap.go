package layout

import "strings"

// Wrap 使用贪心算法按空白切词并把单词累积到不超过 maxWidth 的行中。
// 单个超宽单词独占一行且保持原样（不断字、不截断）。返回的行数不设上限，
// 由调用方自行裁剪。
func Wrap(text string, maxWidth float64, m Measurer) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if m.Width(candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

// fitEllipsis 截去 line 末尾字符直到 line+"…" 不超过 maxWidth。
func fitEllipsis(line string, maxWidth float64, m Measurer) string {
	const ellipsis = "…"
	runes := []rune(strings.TrimSpace(line))
	for len(runes) > 0 {
		candidate := strings.TrimRight(string(runes), " ") + ellipsis
		if m.Width(candidate) <= maxWidth {
			return candidate
		}
		runes = runes[:len(runes)-1]
	}
	return ellipsis
}
