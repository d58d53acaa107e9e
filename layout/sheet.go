package layout

import (
	"fmt"
	"strings"

	"github.com/ByLCY/pricetag/dsl"
)

var pagePresets = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
}

// FromSheet 把解析后的 sheet 描述转换为页面几何与票签样式，未声明的属性
// 沿用 DefaultGeometry / DefaultTicketStyle。
func FromSheet(sheet *dsl.Sheet) (Geometry, TicketStyle, error) {
	geo := DefaultGeometry()
	style := DefaultTicketStyle()
	if sheet == nil {
		return geo, style, nil
	}

	w, h, err := resolvePageSize(sheet.Size, sheet.Params)
	if err != nil {
		return geo, style, err
	}
	geo.PageWidth, geo.PageHeight = w, h

	for _, prop := range sheet.Props {
		key := strings.ToLower(prop.Key)
		switch key {
		case "margin":
			geo.Margin, err = lengthMM(prop)
		case "gap":
			geo.MinGap, err = lengthMM(prop)
		case "ticket":
			if prop.By == nil {
				return geo, style, fmt.Errorf("第 %d 行: ticket 需要写成 <宽> x <高>", prop.Pos.Line)
			}
			geo.TicketWidth, geo.TicketHeight, err = sizeMM(prop)
		case "logo":
			var l Length
			l, err = propLength(prop)
			style.LogoFraction = l.Of(1)
		case "code":
			style.CodeHeight, err = lengthMM(prop)
		case "name":
			style.NameHeight, err = lengthMM(prop)
		case "padding":
			style.TextPadding, err = lengthMM(prop)
		case "stroke":
			style.StrokeWidth, err = lengthMM(prop)
		case "font":
			var l Length
			l, err = propLength(prop)
			style.FontSize = l.ToPT()
			if l.Unit == UnitNone {
				style.FontSize = l.Value
			}
		case "leading":
			var l Length
			l, err = propLength(prop)
			style.LeadingFactor = l.Of(1)
		case "currency":
			style.CurrencySymbol, err = propString(prop)
		case "label":
			style.Label, err = propString(prop)
		case "overflow":
			style.NameOverflow, err = propString(prop)
		case "price-center":
			style.PriceCenter, err = propString(prop)
		case "qc-text":
			style.QuickCodeText, err = propString(prop)
		case "ru-text":
			style.RubiCodeText, err = propString(prop)
		case "price-text":
			style.PriceText, err = propString(prop)
		default:
			return geo, style, fmt.Errorf("第 %d 行: 未知属性 %s", prop.Pos.Line, prop.Key)
		}
		if err != nil {
			return geo, style, err
		}
	}
	return geo, style, nil
}

func resolvePageSize(size string, params []string) (float64, float64, error) {
	base, ok := pagePresets[strings.ToUpper(size)]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", size)
	}
	width, height := base[0], base[1]
	for _, p := range params {
		switch strings.ToLower(p) {
		case "landscape":
			width, height = height, width
		case "portrait":
		default:
			return 0, 0, fmt.Errorf("未知的纸张参数：%s", p)
		}
	}
	return width, height, nil
}

func propLength(prop *dsl.Property) (Length, error) {
	if prop.Value == nil || prop.Value.Number == nil {
		return Length{}, fmt.Errorf("第 %d 行: %s 需要一个长度值", prop.Pos.Line, prop.Key)
	}
	l, ok := ParseLength(*prop.Value.Number)
	if !ok {
		return Length{}, fmt.Errorf("第 %d 行: 无法解析长度 %q", prop.Pos.Line, *prop.Value.Number)
	}
	return l, nil
}

func lengthMM(prop *dsl.Property) (float64, error) {
	l, err := propLength(prop)
	if err != nil {
		return 0, err
	}
	return l.ToMM(), nil
}

func sizeMM(prop *dsl.Property) (float64, float64, error) {
	w, err := propLength(prop)
	if err != nil {
		return 0, 0, err
	}
	h, ok := ParseLength(*prop.By)
	if !ok {
		return 0, 0, fmt.Errorf("第 %d 行: 无法解析高度 %q", prop.Pos.Line, *prop.By)
	}
	return w.ToMM(), h.ToMM(), nil
}

func propString(prop *dsl.Property) (string, error) {
	if prop.Value == nil {
		return "", fmt.Errorf("第 %d 行: %s 缺少取值", prop.Pos.Line, prop.Key)
	}
	switch {
	case prop.Value.String != nil:
		return string(*prop.Value.String), nil
	case prop.Value.Ident != nil:
		return *prop.Value.Ident, nil
	}
	return "", fmt.Errorf("第 %d 行: %s 需要字符串", prop.Pos.Line, prop.Key)
}
