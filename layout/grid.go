package layout

import (
	"errors"
	"fmt"
	"math"
)

// ErrZeroCapacity 表示票签尺寸超出页面可用区域，一页放不下任何票签。
var ErrZeroCapacity = errors.New("layout: 页面容量为 0")

// Geometry 描述固定的页面与票签尺寸（mm）。票签尺寸不随内容变化。
type Geometry struct {
	PageWidth    float64 `json:"pageWidth"`
	PageHeight   float64 `json:"pageHeight"`
	Margin       float64 `json:"margin"`
	TicketWidth  float64 `json:"ticketWidth"`
	TicketHeight float64 `json:"ticketHeight"`
	MinGap       float64 `json:"minGap"`
}

// DefaultGeometry 为 A4 横向、10mm 边距、6.09cm × 3.49cm 票签、最小间距 5mm。
func DefaultGeometry() Geometry {
	return Geometry{
		PageWidth:    297,
		PageHeight:   210,
		Margin:       10,
		TicketWidth:  60.9,
		TicketHeight: 34.9,
		MinGap:       5,
	}
}

// Grid 是由 Geometry 推导出的网格：列数、行数、容量与均分后的间距。
type Grid struct {
	Geometry Geometry `json:"geometry"`
	Columns  int      `json:"columns"`
	Rows     int      `json:"rows"`
	Capacity int      `json:"capacity"`
	XSpacing float64  `json:"xSpacing"`
	YSpacing float64  `json:"ySpacing"`
}

// Placement 是某个票签在页内的位置。
type Placement struct {
	Index  int     `json:"index"`
	Page   int     `json:"page"`
	Column int     `json:"column"`
	Row    int     `json:"row"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// ComputeGrid 计算每页可容纳的列数、行数与间距。剩余空间在 columns-1 / rows-1
// 个间隙中均分；若结果为负则取 0，票签本身永远不缩小。
func ComputeGrid(g Geometry) (Grid, error) {
	if g.TicketWidth <= 0 || g.TicketHeight <= 0 {
		return Grid{}, fmt.Errorf("layout: 票签尺寸无效 %gmm × %gmm", g.TicketWidth, g.TicketHeight)
	}
	if g.MinGap < 0 || g.Margin < 0 {
		return Grid{}, fmt.Errorf("layout: 边距与间距不能为负（margin=%g gap=%g）", g.Margin, g.MinGap)
	}
	usableW := g.PageWidth - 2*g.Margin
	usableH := g.PageHeight - 2*g.Margin

	cols := fitCount(usableW, g.TicketWidth, g.MinGap)
	rows := fitCount(usableH, g.TicketHeight, g.MinGap)
	if cols < 1 || rows < 1 {
		return Grid{}, fmt.Errorf("%w: 可用区域 %gmm × %gmm，票签 %gmm × %gmm", ErrZeroCapacity, usableW, usableH, g.TicketWidth, g.TicketHeight)
	}

	return Grid{
		Geometry: g,
		Columns:  cols,
		Rows:     rows,
		Capacity: cols * rows,
		XSpacing: spacing(usableW, g.TicketWidth, cols),
		YSpacing: spacing(usableH, g.TicketHeight, rows),
	}, nil
}

func fitCount(usable, size, gap float64) int {
	if usable <= 0 {
		return 0
	}
	return int(math.Floor(usable / (size + gap)))
}

func spacing(usable, size float64, n int) float64 {
	if n <= 1 {
		return 0
	}
	return math.Max(0, (usable-float64(n)*size)/float64(n-1))
}

// Paginate 返回 count 个票签所需的页数 ceil(count / capacity)。
func Paginate(count, capacity int) (int, error) {
	if capacity <= 0 {
		return 0, ErrZeroCapacity
	}
	if count <= 0 {
		return 0, nil
	}
	return (count + capacity - 1) / capacity, nil
}

// Place 将扁平下标 i 映射为 (页, 列, 行) 与页内左上角坐标。
func (g Grid) Place(i int) Placement {
	pos := i % g.Capacity
	col := pos % g.Columns
	row := pos / g.Columns
	geo := g.Geometry
	return Placement{
		Index:  i,
		Page:   i / g.Capacity,
		Column: col,
		Row:    row,
		X:      geo.Margin + float64(col)*(geo.TicketWidth+g.XSpacing),
		Y:      geo.Margin + float64(row)*(geo.TicketHeight+g.YSpacing),
	}
}

// TicketRect 返回某个放置位置对应的票签矩形。
func (g Grid) TicketRect(p Placement) RectArea {
	return RectArea{X: p.X, Y: p.Y, Width: g.Geometry.TicketWidth, Height: g.Geometry.TicketHeight}
}

// RectArea 为一个矩形区域（mm，左上角为原点）。
type RectArea struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r RectArea) Right() float64  { return r.X + r.Width }
func (r RectArea) Bottom() float64 { return r.Y + r.Height }
