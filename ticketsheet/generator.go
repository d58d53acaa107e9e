// Package ticketsheet turns an ordered product list into a stored PDF sheet
// of price tickets.
package ticketsheet

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/ByLCY/pricetag/asset"
	"github.com/ByLCY/pricetag/layout"
	"github.com/ByLCY/pricetag/product"
	"github.com/ByLCY/pricetag/renderer"
	"github.com/ByLCY/pricetag/storage"
)

// LogoImageName is the image name tickets reference for the logo.
const LogoImageName = "logo"

// Kind attributes a generation failure.
type Kind string

const (
	KindConfig Kind = "config"
	KindAsset  Kind = "asset"
	KindRecord Kind = "record"
	KindOutput Kind = "output"
)

// GenerateError is returned by Generate. Index and QuickCode are set for
// record errors; Index is -1 otherwise.
type GenerateError struct {
	Kind      Kind
	Index     int
	QuickCode string
	Err       error
}

func (e *GenerateError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s error at ticket #%d (QC %s): %v", e.Kind, e.Index, e.QuickCode, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *GenerateError) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or "" when err is not a GenerateError.
func KindOf(err error) Kind {
	var ge *GenerateError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}

// ErrNoProducts is returned when Generate is called with an empty list.
var ErrNoProducts = errors.New("no products to print")

// Backend measures and draws; it must accept the logo image by name.
type Backend interface {
	renderer.Backend
	RegisterImage(name string, img image.Image)
}

// Options configures a Generator.
type Options struct {
	Backend   Backend
	Store     storage.Store
	Geometry  layout.Geometry
	Style     layout.TicketStyle
	LogoPath  string
	DebugJSON string
	Meta      layout.DocumentMeta
	Logger    *zap.Logger
	Now       func() time.Time
}

// Generator produces ticket sheets. A failing ticket aborts the whole sheet;
// nothing is stored in that case.
type Generator struct {
	opts Options
}

// Result describes a stored sheet.
type Result struct {
	Name     string
	Location string
	Pages    int
	Tickets  int
	Size     int
	// LogoErr is set when the logo could not be used and tickets carry the
	// text label instead.
	LogoErr error
}

// New creates a Generator, filling unset options with defaults.
func New(opts Options) *Generator {
	if opts.Geometry == (layout.Geometry{}) {
		opts.Geometry = layout.DefaultGeometry()
	}
	if opts.Style == (layout.TicketStyle{}) {
		opts.Style = layout.DefaultTicketStyle()
	}
	if opts.Meta == (layout.DocumentMeta{}) {
		opts.Meta = layout.DocumentMeta{Title: "Price tickets", Creator: "pricetag"}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Generator{opts: opts}
}

// Grid reports the layout grid the generator places tickets on.
func (g *Generator) Grid() (layout.Grid, error) {
	grid, err := layout.ComputeGrid(g.opts.Geometry)
	if err != nil {
		return layout.Grid{}, &GenerateError{Kind: KindConfig, Index: -1, Err: err}
	}
	return grid, nil
}

// Generate lays out products in order, renders them and stores the PDF under
// name. An empty name gets a timestamped, collision-resistant file name.
func (g *Generator) Generate(ctx context.Context, products []product.Product, name string) (*Result, error) {
	log := g.opts.Logger
	if g.opts.Backend == nil || g.opts.Store == nil {
		return nil, &GenerateError{Kind: KindConfig, Index: -1, Err: errors.New("generator needs a backend and a store")}
	}
	if len(products) == 0 {
		return nil, &GenerateError{Kind: KindRecord, Index: -1, Err: ErrNoProducts}
	}
	for i, p := range products {
		if err := p.Validate(); err != nil {
			return nil, &GenerateError{Kind: KindRecord, Index: i, QuickCode: p.QuickCode, Err: err}
		}
	}

	logo, logoErr := g.loadLogo()
	if logoErr != nil {
		log.Warn("logo unavailable, using text label", zap.Error(logoErr))
	}

	res, err := layout.Build(products, g.opts.Geometry, layout.BuildOptions{
		Metrics: g.opts.Backend,
		Style:   g.opts.Style,
		Logo:    logo,
		Meta:    g.opts.Meta,
	})
	if err != nil {
		var te *layout.TicketError
		if errors.As(err, &te) {
			return nil, &GenerateError{Kind: KindRecord, Index: te.Index, QuickCode: te.QuickCode, Err: te.Err}
		}
		return nil, &GenerateError{Kind: KindConfig, Index: -1, Err: err}
	}

	if g.opts.DebugJSON != "" {
		if err := layout.WriteDebugJSON(res, g.opts.DebugJSON); err != nil {
			log.Warn("failed to write layout debug json", zap.String("path", g.opts.DebugJSON), zap.Error(err))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, &GenerateError{Kind: KindOutput, Index: -1, Err: err}
	}
	data, err := g.opts.Backend.Render(res)
	if err != nil {
		return nil, &GenerateError{Kind: KindOutput, Index: -1, Err: fmt.Errorf("render pdf: %w", err)}
	}

	if name == "" {
		name = storage.NewFileName(g.opts.Now())
	}
	location, err := g.opts.Store.Save(ctx, name, data)
	if err != nil {
		return nil, &GenerateError{Kind: KindOutput, Index: -1, Err: err}
	}

	log.Info("ticket sheet generated",
		zap.String("location", location),
		zap.Int("tickets", len(products)),
		zap.Int("pages", len(res.Pages)),
		zap.Int("size", len(data)),
	)
	return &Result{
		Name:     name,
		Location: location,
		Pages:    len(res.Pages),
		Tickets:  len(products),
		Size:     len(data),
		LogoErr:  logoErr,
	}, nil
}

// loadLogo reads the logo on every run so a replaced file is picked up.
func (g *Generator) loadLogo() (*layout.LogoInfo, error) {
	logo, err := asset.LoadLogo(g.opts.LogoPath)
	if err != nil {
		return nil, &GenerateError{Kind: KindAsset, Index: -1, Err: err}
	}
	g.opts.Backend.RegisterImage(LogoImageName, logo.Image)
	return &layout.LogoInfo{Name: LogoImageName, Width: logo.Width(), Height: logo.Height()}, nil
}
