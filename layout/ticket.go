package layout

import (
	"fmt"
	"math"

	"github.com/ByLCY/pricetag/binding"
	"github.com/ByLCY/pricetag/product"
)

// 名称区域溢出策略。
const (
	OverflowDrop     = "drop"     // 超出两行的部分直接丢弃
	OverflowEllipsis = "ellipsis" // 第二行末尾以省略号收尾
)

// 价格区域的居中方式。
const (
	CenterMetric = "metric" // 与编码/名称区域一致，基于 ascent/descent
	CenterLegacy = "legacy" // 旧版固定系数近似
)

const maxNameLines = 2

var knownFields = map[string]bool{"quick_code": true, "rubi_code": true, "name": true, "rrp": true, "currency": true}

// TicketStyle 描述票签内部分区与字体设置。长度单位为 mm，字号为 pt。
type TicketStyle struct {
	LogoFraction  float64 `json:"logoFraction"`
	LogoPadding   float64 `json:"logoPadding"`
	CodeHeight    float64 `json:"codeHeight"`
	NameHeight    float64 `json:"nameHeight"`
	TextPadding   float64 `json:"textPadding"`
	WrapPadding   float64 `json:"wrapPadding"`
	StrokeWidth   float64 `json:"strokeWidth"`
	FontSize      float64 `json:"fontSize"`
	LeadingFactor float64 `json:"leadingFactor"`

	Label          string  `json:"label"`
	LabelFontSize  float64 `json:"labelFontSize"`
	LabelOffset    float64 `json:"labelOffset"` // 基线相对区域中线向下的偏移（mm）
	CurrencySymbol string  `json:"currencySymbol"`

	NameOverflow string `json:"nameOverflow"`
	PriceCenter  string `json:"priceCenter"`

	// 三行固定文本的模板，${quick_code} ${rubi_code} ${rrp} ${currency} 会被替换。
	QuickCodeText string `json:"quickCodeText"`
	RubiCodeText  string `json:"rubiCodeText"`
	PriceText     string `json:"priceText"`
}

// DefaultTicketStyle 返回 6.09cm × 3.49cm 票签的标准分区。
func DefaultTicketStyle() TicketStyle {
	return TicketStyle{
		LogoFraction:   0.35,
		LogoPadding:    0.5,
		CodeHeight:     10.6,
		NameHeight:     16.3,
		TextPadding:    1.5,
		WrapPadding:    2,
		StrokeWidth:    toMm(1),
		FontSize:       11,
		LeadingFactor:  0.2,
		Label:          "RUBI",
		LabelFontSize:  12,
		LabelOffset:    toMm(4),
		CurrencySymbol: "£",
		NameOverflow:   OverflowDrop,
		PriceCenter:    CenterMetric,
		QuickCodeText:  "QC: ${quick_code}",
		RubiCodeText:   "RU: ${rubi_code}",
		PriceText:      "RRP: ${currency}${rrp}",
	}
}

// Validate 检查样式能否放进给定高度的票签。
func (s TicketStyle) Validate(ticketHeight float64) error {
	if s.LogoFraction <= 0 || s.LogoFraction >= 1 {
		return fmt.Errorf("layout: logo 宽度比例必须在 (0,1) 内，当前 %g", s.LogoFraction)
	}
	if s.FontSize <= 0 || s.LabelFontSize <= 0 {
		return fmt.Errorf("layout: 字号必须为正数")
	}
	if s.CodeHeight <= 0 || s.NameHeight <= 0 {
		return fmt.Errorf("layout: 编码/名称区域高度必须为正数")
	}
	if s.CodeHeight+s.NameHeight >= ticketHeight {
		return fmt.Errorf("layout: 编码区域 %gmm + 名称区域 %gmm 超出票签高度 %gmm", s.CodeHeight, s.NameHeight, ticketHeight)
	}
	switch s.NameOverflow {
	case OverflowDrop, OverflowEllipsis:
	default:
		return fmt.Errorf("layout: 未知的名称溢出策略 %q", s.NameOverflow)
	}
	switch s.PriceCenter {
	case CenterMetric, CenterLegacy:
	default:
		return fmt.Errorf("layout: 未知的价格居中方式 %q", s.PriceCenter)
	}
	for _, tpl := range []string{s.QuickCodeText, s.RubiCodeText, s.PriceText} {
		for _, name := range binding.Placeholders(tpl) {
			if !knownFields[name] {
				return fmt.Errorf("layout: 模板 %q 引用了未知字段 %s", tpl, name)
			}
		}
	}
	return nil
}

func (s TicketStyle) textFont() FontSpec  { return FontSpec{Style: "regular", Size: s.FontSize} }
func (s TicketStyle) labelFont() FontSpec { return FontSpec{Style: "bold", Size: s.LabelFontSize} }

// leading 为行间额外间距（mm）。
func (s TicketStyle) leading() float64 { return toMm(s.FontSize * s.LeadingFactor) }

// ticketRegions 为一张票签内的四个区域。
type ticketRegions struct {
	logo  RectArea
	code  RectArea
	name  RectArea
	price RectArea
}

func splitRegions(rect RectArea, s TicketStyle) ticketRegions {
	logoW := rect.Width * s.LogoFraction
	rightX := rect.X + logoW
	rightW := rect.Width - logoW
	priceH := rect.Height - s.CodeHeight - s.NameHeight
	return ticketRegions{
		logo:  RectArea{X: rect.X, Y: rect.Y, Width: logoW, Height: rect.Height},
		code:  RectArea{X: rightX, Y: rect.Y, Width: rightW, Height: s.CodeHeight},
		name:  RectArea{X: rightX, Y: rect.Y + s.CodeHeight, Width: rightW, Height: s.NameHeight},
		price: RectArea{X: rightX, Y: rect.Y + s.CodeHeight + s.NameHeight, Width: rightW, Height: priceH},
	}
}

// ticketEnv 汇集绘制单张票签所需的依赖。
type ticketEnv struct {
	metrics Metrics
	style   TicketStyle
	logo    *LogoInfo
}

// renderTicket 在 acc 上绘制一张票签：外框、分隔线、logo（或文字标签）与三个文本区域。
func renderTicket(acc *pageAccumulator, rect RectArea, p product.Product, env ticketEnv) error {
	s := env.style
	regions := splitRegions(rect, s)

	acc.rects = append(acc.rects, Rect{
		X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height,
		StrokeColor: Black, StrokeWidth: s.StrokeWidth,
	})
	dividerX := regions.logo.Right()
	acc.lines = append(acc.lines,
		Line{X1: dividerX, Y1: rect.Y, X2: dividerX, Y2: rect.Bottom(), Color: Black, Width: s.StrokeWidth},
		Line{X1: dividerX, Y1: regions.code.Bottom(), X2: rect.Right(), Y2: regions.code.Bottom(), Color: Black, Width: s.StrokeWidth},
		Line{X1: dividerX, Y1: regions.price.Y, X2: rect.Right(), Y2: regions.price.Y, Color: Black, Width: s.StrokeWidth},
	)

	if err := drawLogo(acc, regions.logo, env); err != nil {
		return err
	}

	font := s.textFont()
	fm, err := env.metrics.FontMetrics(font)
	if err != nil {
		return fmt.Errorf("读取字体度量失败: %w", err)
	}
	textX := regions.code.X + s.TextPadding
	textWidth := rect.Width - regions.logo.Width - 2*s.TextPadding

	fields := ticketFields(p, s.CurrencySymbol)
	codeLines := []string{
		binding.Interpolate(s.QuickCodeText, fields),
		binding.Interpolate(s.RubiCodeText, fields),
	}
	drawBlock(acc, codeLines, textX, regions.code, font, fm, s.leading())

	names, err := wrapName(p.Name, textWidth-s.WrapPadding, font, env)
	if err != nil {
		return err
	}
	drawBlock(acc, names, textX, regions.name, font, fm, s.leading())

	price := binding.Interpolate(s.PriceText, fields)
	baseline := legacyBaseline(regions.price.Y, regions.price.Height, s.FontSize)
	if s.PriceCenter == CenterMetric {
		baseline = CenterBlock(regions.price.Y, regions.price.Height, 1, fm, 0)[0]
	}
	acc.appendText(TextBox{Content: price, X: textX, Baseline: baseline, Font: font, Color: Black})
	return nil
}

// ticketFields 为行模板提供可替换的字段。
func ticketFields(p product.Product, currency string) map[string]string {
	return map[string]string{
		"quick_code": p.QuickCode,
		"rubi_code":  p.RubiCode,
		"name":       p.Name,
		"rrp":        p.FormatRRP(),
		"currency":   currency,
	}
}

func drawBlock(acc *pageAccumulator, lines []string, x float64, region RectArea, font FontSpec, fm FontMetrics, leading float64) {
	for i, baseline := range CenterBlock(region.Y, region.Height, len(lines), fm, leading) {
		acc.appendText(TextBox{Content: lines[i], X: x, Baseline: baseline, Font: font, Color: Black})
	}
}

// wrapName 折行并把结果限制在两行内。
func wrapName(name string, maxWidth float64, font FontSpec, env ticketEnv) ([]string, error) {
	m := &metricsMeasurer{metrics: env.metrics, font: font}
	lines := Wrap(name, maxWidth, m)
	if len(lines) > maxNameLines {
		overflow := lines[maxNameLines:]
		lines = lines[:maxNameLines]
		if env.style.NameOverflow == OverflowEllipsis && len(overflow) > 0 {
			lines[maxNameLines-1] = fitEllipsis(lines[maxNameLines-1]+" "+overflow[0], maxWidth, m)
		}
	}
	if m.err != nil {
		return nil, fmt.Errorf("测量商品名称失败: %w", m.err)
	}
	return lines, nil
}

// drawLogo 在 logo 区域等比缩放并居中放置图片；没有图片时绘制居中的文字标签。
func drawLogo(acc *pageAccumulator, region RectArea, env ticketEnv) error {
	label, err := fallbackLabel(region, env)
	if err != nil {
		return err
	}
	logo := env.logo
	if logo == nil || logo.Width <= 0 || logo.Height <= 0 {
		acc.appendText(label)
		return nil
	}
	pad := env.style.LogoPadding
	availW := region.Width - 2*pad
	availH := region.Height - 2*pad
	scale := math.Min(availW/float64(logo.Width), availH/float64(logo.Height))
	w := float64(logo.Width) * scale
	h := float64(logo.Height) * scale
	acc.appendImage(ImageBox{
		Name:     logo.Name,
		X:        region.X + pad + (availW-w)/2,
		Y:        region.Y + pad + (availH-h)/2,
		Width:    w,
		Height:   h,
		Fallback: &label,
	})
	return nil
}

// fallbackLabel 仅按宽度水平居中，垂直方向取区域中线加固定偏移。
func fallbackLabel(region RectArea, env ticketEnv) (TextBox, error) {
	font := env.style.labelFont()
	w, err := env.metrics.TextWidth(font, env.style.Label)
	if err != nil {
		return TextBox{}, fmt.Errorf("测量 logo 标签失败: %w", err)
	}
	return TextBox{
		Content:  env.style.Label,
		X:        region.X + (region.Width-w)/2,
		Baseline: region.Y + region.Height/2 + env.style.LabelOffset,
		Width:    w,
		Font:     font,
		Color:    Black,
	}, nil
}

// metricsMeasurer 把 Metrics 适配为 Measurer，并记住第一次出现的错误。
type metricsMeasurer struct {
	metrics Metrics
	font    FontSpec
	err     error
}

func (m *metricsMeasurer) Width(text string) float64 {
	w, err := m.metrics.TextWidth(m.font, text)
	if err != nil && m.err == nil {
		m.err = err
	}
	return w
}
