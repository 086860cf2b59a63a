package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputePermanent(t *testing.T) {
	got := ComputePermanent(SalaryTerms{BasicSalary: d("50000"), Allowance: d("10000"), EPFPercentage: d("8"), ETFPercentage: d("3")})

	require.NotNil(t, got.EPFDeduction)
	require.NotNil(t, got.ETFContribution)
	assert.True(t, got.EPFDeduction.Equal(d("4000")), "epf %s", got.EPFDeduction)
	assert.True(t, got.ETFContribution.Equal(d("1500")), "etf %s", got.ETFContribution)
	assert.True(t, got.NetSalary.Equal(d("56000")), "net %s", got.NetSalary)
	assert.Nil(t, got.TotalTaskAmount)
}

func TestComputePermanentRoundsToCents(t *testing.T) {
	got := ComputePermanent(SalaryTerms{BasicSalary: d("50000.55"), Allowance: d("0"), EPFPercentage: d("8"), ETFPercentage: d("3")})

	assert.Equal(t, "4000.04", got.EPFDeduction.StringFixed(2))
	assert.Equal(t, "1500.02", got.ETFContribution.StringFixed(2))
	assert.True(t, got.NetSalary.Equal(d("46000.51")), "net %s", got.NetSalary)
}

func TestComputeTemporary(t *testing.T) {
	total := d("25").Add(d("30")).Add(d("35"))
	got := ComputeTemporary(total)

	require.NotNil(t, got.TotalTaskAmount)
	assert.True(t, got.TotalTaskAmount.Equal(d("90")))
	assert.True(t, got.NetSalary.Equal(d("90")))
	assert.Nil(t, got.BasicSalary)
	assert.Nil(t, got.EPFDeduction)
}

func TestMonthWindow(t *testing.T) {
	tests := []struct {
		month, year int
		end         time.Time
	}{
		{month: 1, year: 2024, end: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{month: 2, year: 2024, end: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{month: 12, year: 2024, end: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		start, end := MonthWindow(tc.month, tc.year, time.UTC)
		assert.Equal(t, time.Date(tc.year, time.Month(tc.month), 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, tc.end, end)
		lastInstant := end.Add(-time.Microsecond)
		assert.Equal(t, 23, lastInstant.Hour())
		assert.Equal(t, 59, lastInstant.Second())
	}
}

func TestValidatePeriod(t *testing.T) {
	assert.NoError(t, ValidatePeriod(1, 2024))
	assert.NoError(t, ValidatePeriod(12, 2100))
	assert.ErrorIs(t, ValidatePeriod(0, 2024), ErrInvalidPeriod)
	assert.ErrorIs(t, ValidatePeriod(13, 2024), ErrInvalidPeriod)
	assert.ErrorIs(t, ValidatePeriod(6, 1999), ErrInvalidPeriod)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusApproved))
	assert.True(t, CanTransition(StatusApproved, StatusPaid))
	assert.False(t, CanTransition(StatusPending, StatusPaid))
	assert.False(t, CanTransition(StatusPaid, StatusPending))
	assert.False(t, CanTransition(StatusApproved, StatusApproved))
}
