package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, "2.35", Round(decimal.RequireFromString("2.345")).StringFixed(2))
	assert.Equal(t, "2.34", Round(decimal.RequireFromString("2.3449")).StringFixed(2))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "10.00", Percent(decimal.NewFromInt(100), decimal.NewFromInt(10)).StringFixed(2))
	assert.Equal(t, "3.33", Percent(decimal.RequireFromString("33.33"), decimal.NewFromInt(10)).StringFixed(2))
}

func TestMinorUnits(t *testing.T) {
	cases := map[string]int64{
		"500.00": 50000,
		"19.99":  1999,
		"19.999": 2000,
		"0.1":    10,
	}
	for in, want := range cases {
		d, err := Parse(in)
		require.NoError(t, err)
		assert.Equal(t, want, MinorUnits(d), in)
	}
}
