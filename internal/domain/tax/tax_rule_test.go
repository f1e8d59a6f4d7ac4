package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRule(t *testing.T) {
	rule, err := NewRule("ON", decimal.NewFromInt(13), true)
	require.NoError(t, err)

	assert.Equal(t, "ON", rule.Province)
	assert.True(t, rule.Percentage.Equal(decimal.NewFromInt(13)))
	assert.True(t, rule.Active)
}

func TestNewRule_Validation(t *testing.T) {
	tests := []struct {
		name       string
		province   string
		percentage decimal.Decimal
	}{
		{"empty province", "", decimal.NewFromInt(13)},
		{"negative percentage", "ON", decimal.NewFromInt(-1)},
		{"over 100", "ON", decimal.NewFromInt(101)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRule(tt.province, tt.percentage, true)
			assert.Error(t, err)
		})
	}
}

func TestRule_SetPercentage(t *testing.T) {
	rule, err := NewRule("QC", decimal.NewFromFloat(14.975), true)
	require.NoError(t, err)

	require.NoError(t, rule.SetPercentage(decimal.NewFromInt(15)))
	assert.True(t, rule.Percentage.Equal(decimal.NewFromInt(15)))

	assert.Error(t, rule.SetPercentage(decimal.NewFromInt(200)))
}

func TestRule_BoundaryPercentages(t *testing.T) {
	_, err := NewRule("AB", decimal.Zero, true)
	assert.NoError(t, err)

	_, err = NewRule("BC", decimal.NewFromInt(100), false)
	assert.NoError(t, err)
}
