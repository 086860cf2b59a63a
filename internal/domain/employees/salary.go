package employees

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewSalaryConfig materialises input as the active config starting at now.
func NewSalaryConfig(employeeID string, input SalaryInput, now time.Time) SalaryConfig {
	cfg := SalaryConfig{
		EmployeeID:    employeeID,
		BasicSalary:   input.BasicSalary,
		Allowance:     decimal.Zero,
		EPFPercentage: DefaultEPFPercentage,
		ETFPercentage: DefaultETFPercentage,
		EffectiveFrom: now,
		IsActive:      true,
	}
	if input.Allowance != nil {
		cfg.Allowance = *input.Allowance
	}
	if input.EPFPercentage != nil {
		cfg.EPFPercentage = *input.EPFPercentage
	}
	if input.ETFPercentage != nil {
		cfg.ETFPercentage = *input.ETFPercentage
	}
	return cfg
}
