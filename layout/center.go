package layout

// CenterBlock 返回 n 行文本在 [regionTop, regionTop+regionHeight] 内垂直居中时
// 每一行的基线位置（mm，y 轴向下）。
//
// 行高取 ascent+descent，行间额外留 leading：
//
//	block    = n*lineHeight + (n-1)*leading
//	top      = regionTop + (regionHeight-block)/2
//	baseline = top + ascent + k*(lineHeight+leading)
func CenterBlock(regionTop, regionHeight float64, n int, m FontMetrics, leading float64) []float64 {
	if n <= 0 {
		return nil
	}
	lineHeight := m.LineHeight()
	block := float64(n)*lineHeight + float64(n-1)*leading
	top := regionTop + (regionHeight-block)/2
	baselines := make([]float64, n)
	for k := range baselines {
		baselines[k] = top + m.Ascent + float64(k)*(lineHeight+leading)
	}
	return baselines
}

// legacyBaseline 复刻旧版价格区域的粗略居中：用固定系数 0.352778 估算文字高度，
// 数值按 pt 解释。仅在 CenterLegacy 模式下使用。
func legacyBaseline(regionTop, regionHeight, fontSizePt float64) float64 {
	textHeight := fontSizePt * 0.352778
	return regionTop + regionHeight/2 + toMm(textHeight/2)
}
