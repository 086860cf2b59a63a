package payroll

import "errors"

var (
	ErrPayrollNotFound         = errors.New("payroll not found")
	ErrInvalidPeriod           = errors.New("month must be 1-12 and year 2000-2100")
	ErrInvalidStatusTransition = errors.New("invalid payroll status transition")
)
