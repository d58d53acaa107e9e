package layout

// BuildOptions 配置布局阶段所需的依赖，例如字体度量后端与票签样式。
type BuildOptions struct {
	Metrics Metrics
	Style   TicketStyle
	// Logo 为空表示没有可用的 logo，票签左侧改为绘制文字标签。
	Logo *LogoInfo
	Meta DocumentMeta
}

// LogoInfo 描述已注册到渲染器的 logo 图片，仅需像素尺寸用于等比缩放。
type LogoInfo struct {
	Name   string
	Width  int
	Height int
}

// Metrics 提供文本宽度与字体上升/下降度量（mm）。
type Metrics interface {
	TextWidth(font FontSpec, text string) (float64, error)
	FontMetrics(font FontSpec) (FontMetrics, error)
}

// Measurer 是换行所需的最小度量：给定文本返回宽度（mm）。
type Measurer interface {
	Width(text string) float64
}

// MeasureFunc 允许普通函数充当 Measurer。
type MeasureFunc func(text string) float64

func (f MeasureFunc) Width(text string) float64 { return f(text) }
