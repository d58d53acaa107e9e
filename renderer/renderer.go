package renderer

import "github.com/ByLCY/pricetag/layout"

// Renderer 将布局结果输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据（例如 PDF 字节切片）以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Backend 同时负责字体度量与绘制，布局与输出使用同一套字体。
type Backend interface {
	Renderer
	layout.Metrics
}
