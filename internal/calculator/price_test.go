package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agave/internal/model"
)

func TestRound_HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 1.01, RoundCents(1.005))
	assert.Equal(t, -1.01, RoundCents(-1.005))
	assert.Equal(t, 2.5, RoundCents(2.499999))
	assert.Equal(t, 0.1235, RoundMargin(0.12345))
	assert.Equal(t, -1177.0, RoundWhole(-1176.5))
	assert.True(t, math.IsInf(RoundCents(math.Inf(1)), 1))
}

func TestPriceFromCostAndMargin(t *testing.T) {
	tests := []struct {
		name   string
		cost   float64
		margin model.Fraction
		want   float64
	}{
		{"target margin 27%", 7.10, 0.27, 9.73},
		{"zero margin", 7.10, 0, 7.10},
		{"negative margin is break-even", 7.10, -0.2, 7.10},
		{"zero cost", 0, 0.5, 0},
		{"half margin", 50, 0.5, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PriceFromCostAndMargin(tt.cost, tt.margin)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriceFromCostAndMargin_Saturates(t *testing.T) {
	for _, m := range []model.Fraction{1, 1.5} {
		got, err := PriceFromCostAndMargin(10, m)
		require.NoError(t, err)
		assert.True(t, math.IsInf(got, 1), "margin %v", m)
	}
}

func TestPriceFromCostAndMargin_InvalidArgs(t *testing.T) {
	tests := []struct {
		name   string
		cost   float64
		margin model.Fraction
	}{
		{"NaN cost", math.NaN(), 0.2},
		{"infinite cost", math.Inf(1), 0.2},
		{"negative cost", -1, 0.2},
		{"NaN margin", 10, model.Fraction(math.NaN())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PriceFromCostAndMargin(tt.cost, tt.margin)
			assert.ErrorIs(t, err, model.ErrInvalidArgument)
		})
	}
}

func TestMarginFromPriceAndCost(t *testing.T) {
	m, err := MarginFromPriceAndCost(100, 50)
	require.NoError(t, err)
	assert.Equal(t, model.Fraction(0.5), m)

	m, err = MarginFromPriceAndCost(8.84, 7.10)
	require.NoError(t, err)
	assert.Equal(t, model.Fraction(0.1968), m)

	m, err = MarginFromPriceAndCost(5, 10)
	require.NoError(t, err)
	assert.Equal(t, model.Fraction(-1), m)

	for _, p := range []float64{0, -5} {
		m, err = MarginFromPriceAndCost(p, 10)
		require.NoError(t, err)
		assert.Zero(t, m)
	}

	_, err = MarginFromPriceAndCost(math.NaN(), 10)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestCostFromPriceAndMargin(t *testing.T) {
	c, err := CostFromPriceAndMargin(9.73, 0.27)
	require.NoError(t, err)
	assert.Equal(t, 7.10, c)

	c, err = CostFromPriceAndMargin(9.73, 1)
	require.NoError(t, err)
	assert.Zero(t, c)

	_, err = CostFromPriceAndMargin(-1, 0.2)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestPriceMarginRoundTrip(t *testing.T) {
	for _, cost := range []float64{250, 1234.56, 9999} {
		for i := 0; i < 100; i++ {
			m := model.Fraction(float64(i) / 100)
			price, err := PriceFromCostAndMargin(cost, m)
			require.NoError(t, err)

			back, err := MarginFromPriceAndCost(price, cost)
			require.NoError(t, err)
			assert.InDelta(t, float64(m), float64(back), 1e-4, "cost %v margin %v", cost, m)

			c, err := CostFromPriceAndMargin(price, m)
			require.NoError(t, err)
			assert.InDelta(t, cost, c, 0.01, "cost %v margin %v", cost, m)
		}
	}
}

func TestPriceMonotonicInMargin(t *testing.T) {
	prev := -1.0
	for i := 0; i < 100; i++ {
		price, err := PriceFromCostAndMargin(250, model.Fraction(float64(i)/100))
		require.NoError(t, err)
		assert.Greater(t, price, prev)
		prev = price
	}
}
