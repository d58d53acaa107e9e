package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/pricetag/product"
	"github.com/ByLCY/pricetag/session"
	"github.com/ByLCY/pricetag/ticketsheet"
)

const basePath = "/rubi-price-ticket"

type fakeCatalog struct {
	products []product.Product
}

func (f *fakeCatalog) List() ([]product.Product, error) { return f.products, nil }

func (f *fakeCatalog) Select(ids []string) ([]product.Product, error) {
	var out []product.Product
	for _, p := range f.products {
		for _, id := range ids {
			if string(p.ID) == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, products []product.Product, name string) (*ticketsheet.Result, error) {
	args := m.Called(ctx, products, name)
	if res := args.Get(0); res != nil {
		return res.(*ticketsheet.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

type fakeSheets struct{}

func (fakeSheets) Open(_ context.Context, location string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("%PDF-" + location)), nil
}

type testEnv struct {
	handler  http.Handler
	sessions *session.MemoryStore
	gen      *mockGenerator
}

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)
	catalog := &fakeCatalog{products: []product.Product{
		{ID: "1", QuickCode: "A1", Name: "Apple", RRP: decimal.NewFromInt(1)},
		{ID: "2", QuickCode: "B2", Name: "Banana", RRP: decimal.NewFromFloat(0.5)},
	}}
	sessions := session.NewMemoryStore()
	gen := new(mockGenerator)
	h := NewTicketHandler(catalog, sessions, gen, fakeSheets{})
	srv := New(Config{BasePath: basePath, SessionTTL: time.Hour}, h, nil)
	return &testEnv{handler: srv.Handler(), sessions: sessions, gen: gen}
}

func (e *testEnv) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, basePath+path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "pricetag_sid" {
			return c
		}
	}
	t.Fatalf("no session cookie set")
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestListProducts(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 2)
	assert.NotEmpty(t, w.Header().Get(RequestIDKey))
}

func TestCustomTicketLifecycle(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/custom", `{"quick_code":"X1","name":"Door mat","rrp":"£12.5"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cookie := sessionCookie(t, w)

	var created struct {
		Data product.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Data.IsCustom)
	assert.Equal(t, "12.50", created.Data.FormatRRP())

	w = env.do(t, http.MethodGet, "/custom", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w).Data, 1)

	w = env.do(t, http.MethodGet, "/custom", "", nil)
	assert.Len(t, decode(t, w).Data, 0, "a new visitor sees an empty list")

	w = env.do(t, http.MethodDelete, "/custom/"+string(created.Data.ID), "", cookie)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, "/custom/"+string(created.Data.ID), "", cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddCustomValidation(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/custom", `{"name":"Door mat","rrp":"1"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	require.NotEmpty(t, resp.Error.Details)
	assert.Equal(t, "quick_code", resp.Error.Details[0].Field)

	w = env.do(t, http.MethodPost, "/custom", `{"quick_code":"X","name":"Mat","rrp":"cheap"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "rrp", decode(t, w).Error.Details[0].Field)

	w = env.do(t, http.MethodPost, "/custom", `{bad json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateRequiresSelection(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodPost, "/generate", `{"product_ids":[]}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateSendsPDFAndClearsCustom(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodPost, "/custom", `{"quick_code":"X1","name":"Door mat","rrp":"3"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	cookie := sessionCookie(t, w)

	env.gen.On("Generate", mock.Anything, mock.MatchedBy(func(list []product.Product) bool {
		return len(list) == 2 && list[0].QuickCode == "B2" && list[1].QuickCode == "X1" && list[1].IsCustom
	}), "").Return(&ticketsheet.Result{Name: "sheet.pdf", Location: "sheet.pdf", Size: 14, Tickets: 2, Pages: 1}, nil).Once()

	w = env.do(t, http.MethodPost, "/generate", `{"product_ids":["2"]}`, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="sheet.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-sheet.pdf", w.Body.String())
	env.gen.AssertExpectations(t)

	w = env.do(t, http.MethodGet, "/custom", "", cookie)
	assert.Len(t, decode(t, w).Data, 0)
}

func TestGenerateKeepsCustomOnFailure(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodPost, "/custom", `{"quick_code":"X1","name":"Door mat","rrp":"3"}`, nil)
	cookie := sessionCookie(t, w)

	env.gen.On("Generate", mock.Anything, mock.Anything, "").
		Return(nil, &ticketsheet.GenerateError{Kind: ticketsheet.KindOutput, Index: -1, Err: errors.New("disk full")}).Once()
	w = env.do(t, http.MethodPost, "/generate", "", cookie)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	env.gen.On("Generate", mock.Anything, mock.Anything, "").
		Return(nil, &ticketsheet.GenerateError{Kind: ticketsheet.KindRecord, Index: 0, QuickCode: "X1", Err: product.ErrInvalidRecord}).Once()
	w = env.do(t, http.MethodPost, "/generate", "", cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodGet, "/custom", "", cookie)
	assert.Len(t, decode(t, w).Data, 1)
}

func TestIndexAndHealth(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodGet, "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data, ok := decode(t, w).Data.(map[string]any)
	require.True(t, ok)
	assert.Len(t, data["products"], 2)
	assert.Len(t, data["custom"], 0)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
