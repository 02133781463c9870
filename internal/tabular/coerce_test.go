package tabular

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceNumber(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want *float64
		err  bool
	}{
		{name: "thousands separator", in: "1,234.567", want: ptr(1234.57)},
		{name: "parenthesized negative", in: "(45.2)", want: ptr(-45.2)},
		{name: "percent sign", in: "12.5%", want: ptr(12.5)},
		{name: "padded", in: "  7 ", want: ptr(7)},
		{name: "blank", in: "", want: nil},
		{name: "whitespace", in: "   ", want: nil},
		{name: "absent", in: nil, want: nil},
		{name: "text", in: "N/A", want: nil, err: true},
		{name: "lone percent", in: "%", want: nil, err: true},
		{name: "lone dash", in: "-", want: nil, err: true},
		{name: "raw float", in: 1050.0, want: ptr(1050)},
		{name: "raw int", in: 42, want: ptr(42)},
		{name: "half rounds up", in: "2.345", want: ptr(2.35)},
		{name: "negative half rounds toward positive", in: "-2.345", want: ptr(-2.34)},
		{name: "parenthesized half", in: "(45.125)", want: ptr(-45.12)},
		{name: "parenthesized with separators", in: "(1,000)", want: ptr(-1000)},
		{name: "trailing text", in: "12abc", want: ptr(12)},
		{name: "trailing unit", in: "45 USD", want: ptr(45)},
		{name: "leading text", in: "abc", want: nil, err: true},
		{name: "bare fraction", in: ".5", want: ptr(0.5)},
		{name: "small exponent", in: "1.5e3", want: ptr(1500)},
		{name: "exponent overflow", in: "1e400", want: nil, err: true},
		{name: "negative exponent overflow", in: "-1e400", want: nil, err: true},
		{name: "huge exponent", in: "1e999999999", want: nil, err: true},
		{name: "huge negative exponent", in: "1e-20000000", want: nil, err: true},
		{name: "too many digits", in: "12345678901234567890", want: nil, err: true},
		{name: "raw infinity", in: math.Inf(1), want: nil, err: true},
		{name: "raw float out of range", in: 1e300, want: nil, err: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CoerceNumber(tc.in)
			if tc.err {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrNotANumber))
			} else {
				require.NoError(t, err)
			}
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tc.want, *got, 1e-9)
		})
	}
}

func TestCoerceString(t *testing.T) {
	assert.Equal(t, "", CoerceString(nil))
	assert.Equal(t, "Main St", CoerceString("  Main St  "))
	assert.Equal(t, "1234", CoerceString(1234.0))
	assert.Equal(t, "12.5", CoerceString(12.5))
}

func TestCoerceNumberHugeExponentIsFast(t *testing.T) {
	start := time.Now()
	got, err := CoerceNumber("1e20000000")
	assert.ErrorIs(t, err, ErrNotANumber)
	assert.Nil(t, got)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func ptr(f float64) *float64 { return &f }

func TestCoerceDate(t *testing.T) {
	jan2 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		in   any
		want *time.Time
		err  bool
	}{
		{name: "iso", in: "2025-01-02", want: &jan2},
		{name: "us slashes", in: "1/2/2025", want: &jan2},
		{name: "excel serial", in: 45659.0, want: &jan2},
		{name: "excel serial text", in: "45659", want: &jan2},
		{name: "blank", in: " ", want: nil},
		{name: "garbage", in: "someday", err: true},
		{name: "negative serial", in: -3.0, err: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CoerceDate(tc.in)
			if tc.err {
				assert.ErrorIs(t, err, ErrNotADate)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tc.want.Equal(*got), "got %s", got)
		})
	}
}
