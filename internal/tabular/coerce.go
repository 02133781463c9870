package tabular

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Kind is the declared type of a schema field.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "string"
	}
}

// Places is the number of fractional digits every stored number keeps.
const Places = 2

// maxMagnitude bounds stored numbers to the range where two fractional
// digits survive the conversion to float64.
var maxMagnitude = decimal.New(1, 15)

const maxExponent = 20

// leadingNumber matches the numeric prefix of a cell: sign, digits, fraction
// and an optional exponent.
var leadingNumber = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

var (
	ErrNotANumber = errors.New("not_a_number")
	ErrNotADate   = errors.New("not_a_date")
)

// dateLayouts are tried in order for textual dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006",
	"1/2/06",
	"2006/01/02",
	"Jan 2, 2006",
	"2-Jan-06",
	"2-Jan-2006",
	"January 2, 2006",
}

// CoerceNumber converts a raw cell into a number rounded to two places.
// Thousands separators and percent signs are ignored and "(x)" reads as -x.
// Text is read up to the end of its leading number, so "45 USD" is 45.
// Absent or blank input yields nil with no error; text without a leading
// number, or a magnitude above 1e15, yields nil and ErrNotANumber.
func CoerceNumber(v any) (*float64, error) {
	if isBlank(v) {
		return nil, nil
	}

	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("%w: %v", ErrNotANumber, t)
		}
		return round(decimal.NewFromFloat(t), t)
	case int:
		return round(decimal.NewFromInt(int64(t)), t)
	case int64:
		return round(decimal.NewFromInt(t), t)
	case *float64:
		return CoerceNumber(*t)
	case decimal.Decimal:
		return round(t, t)
	}

	raw := Stringify(v)
	cleaned := strings.NewReplacer(",", "", "%", "").Replace(raw)
	cleaned = strings.TrimSpace(cleaned)
	if len(cleaned) >= 2 && strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + strings.TrimSpace(cleaned[1:len(cleaned)-1])
	}

	m := leadingNumber.FindStringSubmatch(cleaned)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotANumber, raw)
	}
	if m[1] != "" {
		exp, err := strconv.Atoi(strings.TrimLeft(m[1][1:], "+"))
		if err != nil || exp > maxExponent || exp < -maxExponent {
			return nil, fmt.Errorf("%w: %q", ErrNotANumber, raw)
		}
	}

	d, err := decimal.NewFromString(m[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotANumber, raw)
	}
	return round(d, raw)
}

// CoerceDate converts a raw cell into a UTC date. Numbers, including numeric
// text, are read as Excel serial dates. Absent or blank input yields nil with
// no error.
func CoerceDate(v any) (*time.Time, error) {
	if isBlank(v) {
		return nil, nil
	}

	switch t := v.(type) {
	case time.Time:
		u := t.UTC()
		return &u, nil
	case *time.Time:
		return CoerceDate(*t)
	case float64:
		return serialDate(t)
	case int:
		return serialDate(float64(t))
	case int64:
		return serialDate(float64(t))
	}

	raw := strings.TrimSpace(Stringify(v))
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return serialDate(f)
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			u := ts.UTC()
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotADate, raw)
}

func serialDate(f float64) (*time.Time, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrNotADate, f)
	}
	ts, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotADate, f)
	}
	u := ts.UTC()
	return &u, nil
}

// CoerceString stringifies and trims a raw cell. Absent input yields "".
func CoerceString(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(Stringify(v))
}

// Stringify renders a raw cell value as text without any trimming.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case *float64:
		if t == nil {
			return ""
		}
		return strconv.FormatFloat(*t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// round keeps Places fractional digits, rounding halves toward positive
// infinity: 2.345 becomes 2.35 and -2.345 becomes -2.34.
func round(d decimal.Decimal, raw any) (*float64, error) {
	if d.Abs().GreaterThan(maxMagnitude) {
		return nil, fmt.Errorf("%w: %v out of range", ErrNotANumber, raw)
	}
	half := decimal.New(5, -(Places + 1))
	f, _ := d.Add(half).RoundFloor(Places).Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %v", ErrNotANumber, raw)
	}
	return &f, nil
}
