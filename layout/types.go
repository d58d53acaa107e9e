package layout

// 该文件定义布局结果与绘制图元，供布局计算、渲染与调试 JSON 共用。
// 所有坐标均以毫米为单位，原点位于页面左上角，y 轴向下。

// Result 保存布局后的页面与网格信息。
type Result struct {
	Grid  Grid         `json:"grid"`
	Pages []Page       `json:"pages"`
	Meta  DocumentMeta `json:"meta"`
}

// Page 记录页面尺寸与最终可以直接渲染的元素。
type Page struct {
	Width   float64    `json:"width"`
	Height  float64    `json:"height"`
	Tickets []int      `json:"tickets"` // 本页绘制的商品下标（输入顺序）
	Texts   []TextBox  `json:"texts"`
	Images  []ImageBox `json:"images"`
	Lines   []Line     `json:"lines,omitempty"`
	Rects   []Rect     `json:"rects,omitempty"`
}

// FontSpec 描述一个字体面：Style 为 regular/bold，Size 以 pt 为单位。
type FontSpec struct {
	Style string  `json:"style"`
	Size  float64 `json:"size"`
}

// FontMetrics 为某一字号下的字体度量（mm）。Descent 为正值。
type FontMetrics struct {
	Ascent  float64 `json:"ascent"`
	Descent float64 `json:"descent"`
}

// LineHeight 返回 ascent + descent。
func (m FontMetrics) LineHeight() float64 { return m.Ascent + m.Descent }

// TextBox 表示一行已经确定基线位置的文本。
type TextBox struct {
	Content  string   `json:"content"`
	X        float64  `json:"x"`
	Baseline float64  `json:"baseline"`
	Width    float64  `json:"width"`
	Font     FontSpec `json:"font"`
	Color    Color    `json:"color"`
}

// ImageBox 用于描述图片位置与尺寸。Fallback 在图片无法绘制时代替图片输出。
type ImageBox struct {
	Name     string   `json:"name"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Fallback *TextBox `json:"fallback,omitempty"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Black 是票签默认的描边与文字颜色。
var Black = Color{}

// Line 表示一条线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"` // 线宽（mm）
}

// Rect 表示一个只描边、不填充的矩形。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"` // mm
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title   string `json:"title"`
	Subject string `json:"subject"`
	Creator string `json:"creator"`
}
