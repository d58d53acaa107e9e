package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/pricetag/fonts"
	"github.com/ByLCY/pricetag/layout"
	"github.com/ByLCY/pricetag/renderer"
)

const defaultStrokeWidth = 0.2

// Renderer draws layout results via github.com/tdewolff/canvas and measures
// text with the same font faces it draws with.
type Renderer struct {
	fontBlobs map[string][]byte // by style

	imageMu sync.RWMutex
	images  map[string]image.Image

	fontMu       sync.Mutex
	fontFamilies map[string]*fontFamilyEntry
}

var (
	_ renderer.Backend = (*Renderer)(nil)
	_ layout.Metrics   = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	Fonts  map[string]Resource // font overrides keyed by style (regular/bold)
	Images map[string]Resource // images addressable by ImageBox.Name
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a renderer using the embedded fonts.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with injected resources.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		fontBlobs:    map[string][]byte{},
		images:       map[string]image.Image{},
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	for style, res := range opts.Fonts {
		if data := res.load(); len(data) > 0 {
			r.fontBlobs[strings.ToLower(style)] = data
		}
	}
	for name, res := range opts.Images {
		data := res.load()
		if len(data) == 0 {
			continue
		}
		// 解码失败的图片不注册，绘制时走文字兜底
		if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			r.images[name] = img
		}
	}
	return r
}

func (res Resource) load() []byte {
	if len(res.Bytes) > 0 {
		return res.Bytes
	}
	if res.Path != "" {
		data, _ := os.ReadFile(res.Path) // 读取失败视为未提供
		return data
	}
	return nil
}

// RegisterImage makes img drawable under name.
func (r *Renderer) RegisterImage(name string, img image.Image) {
	r.imageMu.Lock()
	defer r.imageMu.Unlock()
	if img == nil {
		delete(r.images, name)
		return
	}
	r.images[name] = img
}

func (r *Renderer) image(name string) (image.Image, bool) {
	r.imageMu.RLock()
	defer r.imageMu.RUnlock()
	img, ok := r.images[name]
	return img, ok
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	writer.SetInfo(result.Meta.Title, result.Meta.Subject, "", "", result.Meta.Creator)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, page); err != nil {
			return nil, fmt.Errorf("绘制第 %d 页失败: %w", i+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// TextWidth 实现 layout.Metrics，返回文本宽度（mm）。
func (r *Renderer) TextWidth(font layout.FontSpec, text string) (float64, error) {
	face, err := r.fontFace(font, layout.Black)
	if err != nil {
		return 0, err
	}
	return face.TextWidth(text), nil
}

// FontMetrics 实现 layout.Metrics，返回 ascent/descent（mm，均为正值）。
func (r *Renderer) FontMetrics(font layout.FontSpec) (layout.FontMetrics, error) {
	face, err := r.fontFace(font, layout.Black)
	if err != nil {
		return layout.FontMetrics{}, err
	}
	m := face.Metrics()
	return layout.FontMetrics{Ascent: math.Abs(m.Ascent), Descent: math.Abs(m.Descent)}, nil
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page) error {
	// 先画外框与分隔线，再画文字与图片
	r.drawRects(ctx, page.Rects)
	r.drawLines(ctx, page.Lines)
	for _, tb := range page.Texts {
		if err := r.drawTextBox(ctx, tb); err != nil {
			return err
		}
	}
	return r.drawImages(ctx, page.Images)
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox) error {
	face, err := r.fontFace(tb.Font, tb.Color)
	if err != nil {
		return err
	}
	ctx.DrawText(tb.X, tb.Baseline, canvas.NewTextLine(face, tb.Content, canvas.Left))
	return nil
}

// drawImages 绘制图片；图片缺失或无法绘制时改画 Fallback 文本。
func (r *Renderer) drawImages(ctx *canvas.Context, images []layout.ImageBox) error {
	for _, box := range images {
		img, ok := r.image(box.Name)
		if ok && box.Width > 0 && img.Bounds().Dx() > 0 {
			if drawImage(ctx, box, img) == nil {
				continue
			}
		}
		if box.Fallback == nil {
			return fmt.Errorf("图片 %s 无法绘制且没有兜底文本", box.Name)
		}
		if err := r.drawTextBox(ctx, *box.Fallback); err != nil {
			return err
		}
	}
	return nil
}

func drawImage(ctx *canvas.Context, box layout.ImageBox, img image.Image) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("绘制图片 %s 失败: %v", box.Name, rec)
		}
	}()
	dpmm := float64(img.Bounds().Dx()) / box.Width
	ctx.DrawImage(box.X, box.Y, img, canvas.DPMM(dpmm))
	return nil
}

// drawLines 绘制直线列表（毫米单位）
func (r *Renderer) drawLines(ctx *canvas.Context, lines []layout.Line) {
	for _, ln := range lines {
		w := ln.Width
		if w <= 0 {
			w = defaultStrokeWidth
		}
		ctx.SetStrokeColor(colorFromLayout(ln.Color))
		ctx.SetStrokeWidth(w)
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(ln.X2-ln.X1, ln.Y2-ln.Y1)
		ctx.DrawPath(ln.X1, ln.Y1, p)
	}
}

// drawRects 绘制只描边的矩形
func (r *Renderer) drawRects(ctx *canvas.Context, rects []layout.Rect) {
	for _, rc := range rects {
		w := rc.StrokeWidth
		if w <= 0 {
			w = defaultStrokeWidth
		}
		ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		ctx.SetStrokeColor(colorFromLayout(rc.StrokeColor))
		ctx.SetStrokeWidth(w)
		ctx.DrawPath(rc.X, rc.Y, canvas.Rectangle(rc.Width, rc.Height))
	}
}

func (r *Renderer) fontFace(font layout.FontSpec, col layout.Color) (*canvas.FontFace, error) {
	if font.Size <= 0 {
		return nil, fmt.Errorf("字号无效: %gpt", font.Size)
	}
	family, style, err := r.ensureFontFamily(font.Style)
	if err != nil {
		return nil, err
	}
	return family.Face(font.Size, colorFromLayout(col), style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(styleName string) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := strings.ToLower(styleName)
	if key == "" {
		key = "regular"
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	data, ok := r.fontBlobs[key]
	if !ok {
		var err error
		if data, err = fonts.Load(key); err != nil {
			return nil, canvas.FontRegular, err
		}
	}
	style := parseFontStyle(key)
	family := canvas.NewFontFamily("pricetag-" + key)
	if err := family.LoadFont(data, 0, style); err != nil {
		return nil, canvas.FontRegular, fmt.Errorf("加载字体 %s 失败: %w", key, err)
	}
	r.fontFamilies[key] = &fontFamilyEntry{family: family, style: style}
	return family, style, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	if strings.Contains(strings.ToLower(style), "bold") {
		return canvas.FontBold
	}
	return canvas.FontRegular
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
