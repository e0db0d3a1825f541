package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSplit(t *testing.T) {
	tests := []struct {
		name    string
		price   int64
		percent float64
		deposit int64
		balance int64
	}{
		{"zero price", 0, 0.5, 0, 0},
		{"small even", 10000, 0.5, 5000, 5000},
		{"odd half rounds up", 101, 0.5, 51, 50},
		{"threshold stays on low tier", 15000, 0.5, 7500, 7500},
		{"just above threshold", 15001, 0.25, 3750, 11251},
		{"quarter tie rounds up", 15002, 0.25, 3751, 11251},
		{"large", 20000, 0.25, 5000, 15000},
		{"large odd", 99999, 0.25, 25000, 74999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, err := ComputeSplit(tt.price)
			require.NoError(t, err)
			assert.Equal(t, tt.percent, split.Percent)
			assert.Equal(t, tt.deposit, split.Deposit)
			assert.Equal(t, tt.balance, split.Balance)
			assert.Equal(t, tt.price, split.Deposit+split.Balance, "split must cover the price exactly")
		})
	}
}

func TestComputeSplitNegative(t *testing.T) {
	_, err := ComputeSplit(-1)
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestComputeSplitDeterministic(t *testing.T) {
	first, err := ComputeSplit(17350)
	require.NoError(t, err)
	second, err := ComputeSplit(17350)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
