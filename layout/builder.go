package layout

import (
	"fmt"

	"github.com/ByLCY/pricetag/product"
)

// TicketError 表示某一张票签布局失败，整份文档随之失败。
type TicketError struct {
	Index     int
	QuickCode string
	Err       error
}

func (e *TicketError) Error() string {
	return fmt.Sprintf("票签 #%d（QC %s）布局失败: %v", e.Index, e.QuickCode, e.Err)
}

func (e *TicketError) Unwrap() error { return e.Err }

// Build 按输入顺序把商品排入网格并生成每页的绘制图元。
// 任意一张票签失败都会中止整个构建（不做单票隔离）。
func Build(products []product.Product, geo Geometry, opts BuildOptions) (*Result, error) {
	if opts.Metrics == nil {
		return nil, fmt.Errorf("layout: 缺少字体度量后端 Metrics")
	}
	grid, err := ComputeGrid(geo)
	if err != nil {
		return nil, err
	}
	if err := opts.Style.Validate(geo.TicketHeight); err != nil {
		return nil, err
	}

	env := ticketEnv{metrics: opts.Metrics, style: opts.Style, logo: opts.Logo}
	collector := newPageCollector(geo.PageWidth, geo.PageHeight)
	for i, p := range products {
		pl := grid.Place(i)
		acc := collector.page(pl.Page)
		acc.tickets = append(acc.tickets, i)
		if err := renderTicket(acc, grid.TicketRect(pl), p, env); err != nil {
			return nil, &TicketError{Index: i, QuickCode: p.QuickCode, Err: err}
		}
	}

	return &Result{
		Grid:  grid,
		Pages: collector.pages(),
		Meta:  opts.Meta,
	}, nil
}

type pageAccumulator struct {
	tickets []int
	texts   []TextBox
	images  []ImageBox
	lines   []Line
	rects   []Rect
}

func (p *pageAccumulator) appendText(tb TextBox) {
	p.texts = append(p.texts, tb)
}

func (p *pageAccumulator) appendImage(img ImageBox) {
	p.images = append(p.images, img)
}

type pageCollector struct {
	width  float64
	height float64
	accs   []*pageAccumulator
}

func newPageCollector(width, height float64) *pageCollector {
	return &pageCollector{width: width, height: height}
}

// page 返回第 n 页，只有当票签真正落在某页时才创建该页，因此最后一张票签之后
// 不会出现空白页。
func (pc *pageCollector) page(n int) *pageAccumulator {
	for len(pc.accs) <= n {
		pc.accs = append(pc.accs, &pageAccumulator{})
	}
	return pc.accs[n]
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Width:   pc.width,
			Height:  pc.height,
			Tickets: acc.tickets,
			Texts:   acc.texts,
			Images:  acc.images,
			Lines:   acc.lines,
			Rects:   acc.rects,
		}
	}
	return out
}
