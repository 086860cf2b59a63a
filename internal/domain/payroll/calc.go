package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Amounts are the computed money fields of one payroll row.
type Amounts struct {
	BasicSalary     *decimal.Decimal
	Allowance       *decimal.Decimal
	EPFDeduction    *decimal.Decimal
	ETFContribution *decimal.Decimal
	TotalTaskAmount *decimal.Decimal
	NetSalary       decimal.Decimal
}

// ComputePermanent derives EPF, ETF and net pay from salary terms. EPF and ETF
// are rounded to cents; net is basic + allowance - EPF. ETF is an employer
// contribution and does not reduce net.
func ComputePermanent(terms SalaryTerms) Amounts {
	epf := terms.BasicSalary.Mul(terms.EPFPercentage).Div(hundred).Round(2)
	etf := terms.BasicSalary.Mul(terms.ETFPercentage).Div(hundred).Round(2)
	net := terms.BasicSalary.Add(terms.Allowance).Sub(epf)

	basic := terms.BasicSalary
	allowance := terms.Allowance
	return Amounts{
		BasicSalary:     &basic,
		Allowance:       &allowance,
		EPFDeduction:    &epf,
		ETFContribution: &etf,
		NetSalary:       net,
	}
}

// ComputeTemporary pays the month's completed task total as net salary.
func ComputeTemporary(taskTotal decimal.Decimal) Amounts {
	total := taskTotal
	return Amounts{TotalTaskAmount: &total, NetSalary: taskTotal}
}

// MonthWindow returns [first day 00:00, first day of next month 00:00) in loc.
func MonthWindow(month, year int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

func ValidatePeriod(month, year int) error {
	if month < 1 || month > 12 || year < MinYear || year > MaxYear {
		return ErrInvalidPeriod
	}
	return nil
}

// CanTransition reports whether status may move from -> to.
func CanTransition(from, to string) bool {
	next, ok := nextStatus[from]
	return ok && next == to
}
