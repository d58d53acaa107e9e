package layout

import (
	"strings"
	"testing"

	"github.com/ByLCY/pricetag/dsl"
)

func parseSheet(t *testing.T, src string) *dsl.Sheet {
	t.Helper()
	sheet, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("解析 sheet 失败: %v", err)
	}
	return sheet
}

func TestFromSheetDefaultMatchesDefaults(t *testing.T) {
	geo, style, err := FromSheet(parseSheet(t, dsl.DefaultSheet))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := DefaultGeometry()
	for name, pair := range map[string][2]float64{
		"page width":    {geo.PageWidth, want.PageWidth},
		"page height":   {geo.PageHeight, want.PageHeight},
		"margin":        {geo.Margin, want.Margin},
		"ticket width":  {geo.TicketWidth, want.TicketWidth},
		"ticket height": {geo.TicketHeight, want.TicketHeight},
		"gap":           {geo.MinGap, want.MinGap},
		"logo":          {style.LogoFraction, 0.35},
		"code":          {style.CodeHeight, 10.6},
		"name":          {style.NameHeight, 16.3},
		"font":          {style.FontSize, 11},
	} {
		if !almostEqual(pair[0], pair[1]) {
			t.Fatalf("%s = %g, want %g", name, pair[0], pair[1])
		}
	}
	if style.CurrencySymbol != "£" || style.Label != "RUBI" {
		t.Fatalf("unexpected strings %q %q", style.CurrencySymbol, style.Label)
	}
}

func TestFromSheetOverrides(t *testing.T) {
	src := `sheet A4 {
  ticket: 50mm x 30mm
  overflow: ellipsis
  price-center: legacy
  currency: "€"
  price-text: "${currency} ${rrp}"
  font: 10
}`
	geo, style, err := FromSheet(parseSheet(t, src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if geo.PageWidth != 210 || geo.PageHeight != 297 {
		t.Fatalf("expected portrait A4, got %gx%g", geo.PageWidth, geo.PageHeight)
	}
	if geo.TicketWidth != 50 || geo.TicketHeight != 30 {
		t.Fatalf("unexpected ticket %gx%g", geo.TicketWidth, geo.TicketHeight)
	}
	if style.NameOverflow != OverflowEllipsis || style.PriceCenter != CenterLegacy {
		t.Fatalf("modes not applied: %+v", style)
	}
	if style.CurrencySymbol != "€" || style.PriceText != "${currency} ${rrp}" || style.FontSize != 10 {
		t.Fatalf("style not applied: %+v", style)
	}
}

func TestFromSheetErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key":  "sheet A4 {\n  colour: red\n}",
		"missing by":   "sheet A4 {\n  ticket: 5cm\n}",
		"bad paper":    "sheet B7 {\n}",
		"bad param":    "sheet A4 sideways {\n}",
		"string width": "sheet A4 {\n  margin: \"wide\"\n}",
	}
	for name, src := range cases {
		if _, _, err := FromSheet(parseSheet(t, src)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestFromSheetUnknownKeyReportsLine(t *testing.T) {
	_, _, err := FromSheet(parseSheet(t, "sheet A4 {\n  margin: 5mm\n  colour: red\n}"))
	if err == nil || !strings.Contains(err.Error(), "3") {
		t.Fatalf("expected line 3 in error, got %v", err)
	}
}

func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		mm   float64
		unit Unit
	}{
		{"10mm", 10, UnitMM},
		{"6.09cm", 60.9, UnitCM},
		{"1in", 25.4, UnitIN},
		{"72pt", 25.4, UnitPT},
		{"3", 3, UnitNone},
	}
	for _, tc := range cases {
		l, ok := ParseLength(tc.in)
		if !ok {
			t.Fatalf("ParseLength(%q) failed", tc.in)
		}
		if l.Unit != tc.unit || !almostEqual(l.ToMM(), tc.mm) {
			t.Fatalf("ParseLength(%q) = %+v (%gmm)", tc.in, l, l.ToMM())
		}
	}
	if l, _ := ParseLength("35%"); !almostEqual(l.Of(60.9), 21.315) {
		t.Fatalf("percent of reference wrong")
	}
	if _, ok := ParseLength("wide"); ok {
		t.Fatalf("expected failure for non-numeric length")
	}
	if !almostEqual(toPt(toMm(11)), 11) {
		t.Fatalf("pt/mm conversion not reversible")
	}
}
