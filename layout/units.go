package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe lengths used by sheet descriptions. All layout
// geometry is stored in millimetres; font sizes are carried in points and
// converted at the boundary.

// Unit represents the original unit of a length value as written in a sheet file.
type Unit int

const (
	UnitNone    Unit = iota // unit-less numbers
	UnitMM                  // millimeters
	UnitCM                  // centimeters
	UnitIN                  // inches
	UnitPT                  // points
	UnitPercent             // fraction of a reference length
)

// Conversion constants between pt and mm.
const (
	PtToMm = 25.4 / 72
	MmToPt = 1.0 / PtToMm
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	case UnitPercent:
		return "%"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// To converts this length to target unit. Supported targets: UnitMM, UnitPT.
// Percent lengths need a reference and are returned unchanged; use Of.
func (l Length) To(target Unit) float64 {
	var mm float64
	switch l.Unit {
	case UnitMM, UnitNone:
		mm = l.Value
	case UnitCM:
		mm = l.Value * 10
	case UnitIN:
		mm = l.Value * 25.4
	case UnitPT:
		if target == UnitPT {
			return l.Value
		}
		mm = l.Value * PtToMm
	default:
		return l.Value
	}
	if target == UnitPT {
		return mm * MmToPt
	}
	return mm
}

func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }

// Of resolves the length against a reference (mm). Percent values become a
// share of reference; unit-less values <= 1 are read as a fraction.
func (l Length) Of(reference float64) float64 {
	switch l.Unit {
	case UnitPercent:
		return reference * l.Value / 100
	case UnitNone:
		if l.Value <= 1 {
			return reference * l.Value
		}
		return l.Value
	default:
		return l.ToMM()
	}
}

// ParseLength parses a length string such as "10mm", "6.09cm", "11pt" or "35%".
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}, {"%", UnitPercent}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * PtToMm }
