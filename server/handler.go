package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ByLCY/pricetag/logger"
	"github.com/ByLCY/pricetag/product"
	"github.com/ByLCY/pricetag/session"
	"github.com/ByLCY/pricetag/ticketsheet"
)

// ProductSource lists catalog products.
type ProductSource interface {
	List() ([]product.Product, error)
	Select(ids []string) ([]product.Product, error)
}

// SheetGenerator produces a stored ticket sheet.
type SheetGenerator interface {
	Generate(ctx context.Context, products []product.Product, name string) (*ticketsheet.Result, error)
}

// SheetReader reads a stored sheet back.
type SheetReader interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// AddCustomRequest is the body of POST /custom. RRP is free text such as
// "£12.50".
type AddCustomRequest struct {
	QuickCode string `json:"quick_code" binding:"required,max=32"`
	RubiCode  string `json:"rubi_code" binding:"max=32"`
	Name      string `json:"name" binding:"required,max=200"`
	RRP       string `json:"rrp" binding:"required"`
}

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	ProductIDs []string `json:"product_ids"`
}

// IndexResponse is what the picker page needs in one call.
type IndexResponse struct {
	Products []product.Product `json:"products"`
	Custom   []product.Product `json:"custom"`
}

// TicketHandler serves the catalog, the custom ticket list and sheet
// generation.
type TicketHandler struct {
	BaseHandler
	catalog   ProductSource
	sessions  session.Store
	generator SheetGenerator
	sheets    SheetReader
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(catalog ProductSource, sessions session.Store, generator SheetGenerator, sheets SheetReader) *TicketHandler {
	return &TicketHandler{
		catalog:   catalog,
		sessions:  sessions,
		generator: generator,
		sheets:    sheets,
	}
}

// RegisterRoutes mounts the handler on rg.
func (h *TicketHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Index)
	rg.GET("/products", h.ListProducts)
	rg.GET("/custom", h.ListCustom)
	rg.POST("/custom", h.AddCustom)
	rg.DELETE("/custom/:id", h.RemoveCustom)
	rg.POST("/generate", h.Generate)
}

// Index returns the catalog together with the visitor's custom tickets.
func (h *TicketHandler) Index(c *gin.Context) {
	products, err := h.catalog.List()
	if err != nil {
		h.internal(c, "failed to load products", err)
		return
	}
	custom, err := h.sessions.List(c.Request.Context(), sessionID(c))
	if err != nil {
		h.internal(c, "failed to load custom tickets", err)
		return
	}
	h.Success(c, IndexResponse{Products: nonNil(products), Custom: nonNil(custom)})
}

// ListProducts returns the catalog.
func (h *TicketHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.List()
	if err != nil {
		h.internal(c, "failed to load products", err)
		return
	}
	h.Success(c, nonNil(products))
}

// ListCustom returns the visitor's custom tickets.
func (h *TicketHandler) ListCustom(c *gin.Context) {
	custom, err := h.sessions.List(c.Request.Context(), sessionID(c))
	if err != nil {
		h.internal(c, "failed to load custom tickets", err)
		return
	}
	h.Success(c, nonNil(custom))
}

// AddCustom appends a custom ticket to the visitor's list.
func (h *TicketHandler) AddCustom(c *gin.Context) {
	var req AddCustomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if details := validationDetails(err); details != nil {
			h.ValidationError(c, details)
			return
		}
		h.BadRequest(c, "invalid request body")
		return
	}
	rrp, err := product.ParsePrice(req.RRP)
	if err != nil {
		h.ValidationError(c, []ValidationDetail{{Field: "rrp", Message: err.Error()}})
		return
	}
	p := product.Product{
		QuickCode: strings.TrimSpace(req.QuickCode),
		RubiCode:  strings.TrimSpace(req.RubiCode),
		Name:      strings.TrimSpace(req.Name),
		RRP:       rrp,
	}
	if err := p.Validate(); err != nil {
		h.ValidationError(c, []ValidationDetail{{Field: "name", Message: err.Error()}})
		return
	}
	added, err := h.sessions.Add(c.Request.Context(), sessionID(c), p)
	if err != nil {
		h.internal(c, "failed to save custom ticket", err)
		return
	}
	h.Created(c, added)
}

// RemoveCustom deletes one custom ticket.
func (h *TicketHandler) RemoveCustom(c *gin.Context) {
	id := c.Param("id")
	err := h.sessions.Remove(c.Request.Context(), sessionID(c), id)
	if errors.Is(err, session.ErrTicketNotFound) {
		h.NotFound(c, fmt.Sprintf("custom ticket %s not found", id))
		return
	}
	if err != nil {
		h.internal(c, "failed to remove custom ticket", err)
		return
	}
	h.NoContent(c)
}

// Generate prints the selected catalog products followed by the custom
// tickets and sends the PDF as a download. The custom list is cleared only
// after the sheet is stored.
func (h *TicketHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, "invalid request body")
			return
		}
	}
	ctx := c.Request.Context()
	sid := sessionID(c)

	custom, err := h.sessions.List(ctx, sid)
	if err != nil {
		h.internal(c, "failed to load custom tickets", err)
		return
	}
	var selected []product.Product
	if len(req.ProductIDs) > 0 {
		if selected, err = h.catalog.Select(req.ProductIDs); err != nil {
			h.internal(c, "failed to load products", err)
			return
		}
	}
	tickets := product.Concat(selected, custom)
	if len(tickets) == 0 {
		h.BadRequest(c, "Please select at least one product or add a custom ticket")
		return
	}

	res, err := h.generator.Generate(ctx, tickets, "")
	if err != nil {
		if ticketsheet.KindOf(err) == ticketsheet.KindRecord {
			h.UnprocessableEntity(c, ErrCodeRecord, err.Error())
			return
		}
		h.internal(c, "failed to generate tickets", err)
		return
	}
	if err := h.sessions.Clear(ctx, sid); err != nil {
		logger.FromContext(ctx).Warn("failed to clear custom tickets", zap.String("sid", sid), zap.Error(err))
	}

	rc, err := h.sheets.Open(ctx, res.Location)
	if err != nil {
		h.internal(c, "failed to read generated sheet", err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, int64(res.Size), "application/pdf", rc, map[string]string{
		"Content-Disposition": `attachment; filename="` + res.Name + `"`,
	})
}

func (h *TicketHandler) internal(c *gin.Context, message string, err error) {
	logger.FromContext(c.Request.Context()).Error(message, zap.Error(err))
	h.InternalError(c, message)
}

func nonNil(list []product.Product) []product.Product {
	if list == nil {
		return []product.Product{}
	}
	return list
}
