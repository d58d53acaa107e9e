package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Load 返回内置字体的字节数据，style 可写为 "regular"/"bold"，
// 也接受 "embed:bold" 形式。
func Load(style string) ([]byte, error) {
	switch strings.ToLower(strings.TrimPrefix(style, "embed:")) {
	case "", "regular", "normal":
		return goregular.TTF, nil
	case "bold":
		return gobold.TTF, nil
	default:
		return nil, fmt.Errorf("读取内置字体 %s 失败: 不支持的样式", style)
	}
}
