package payroll

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const registerSheet = "Payroll"

var registerHeader = []any{
	"Employee", "NIC", "Type", "Basic Salary", "Allowance", "EPF Deduction",
	"ETF Contribution", "Task Earnings", "Net Salary", "Status",
}

// Export renders the register for one period as an XLSX workbook.
func (s *Service) Export(ctx context.Context, month, year int) ([]byte, error) {
	if err := ValidatePeriod(month, year); err != nil {
		return nil, err
	}
	rows, _, err := s.store.List(ctx, ListFilter{Month: month, Year: year})
	if err != nil {
		return nil, err
	}
	return RenderRegister(rows)
}

func ExportFilename(month, year int) string {
	return fmt.Sprintf("payroll-%s.xlsx", periodKey(month, year))
}

func RenderRegister(rows []Payroll) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", registerSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(registerSheet, "A1", &registerHeader); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for i, p := range rows {
		name, nic := "", ""
		if p.Employee != nil {
			name = p.Employee.FirstName + " " + p.Employee.LastName
			nic = p.Employee.NICNumber
		}
		values := []any{
			name, nic, p.EmployeeType,
			cell(p.BasicSalary), cell(p.Allowance), cell(p.EPFDeduction),
			cell(p.ETFContribution), cell(p.TotalTaskAmount), p.NetSalary.InexactFloat64(), p.Status,
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(registerSheet, addr, &values); err != nil {
			return nil, err
		}
		total = total.Add(p.NetSalary)
	}

	footer := len(rows) + 2
	if err := f.SetCellValue(registerSheet, fmt.Sprintf("H%d", footer), "Total"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(registerSheet, fmt.Sprintf("I%d", footer), total.InexactFloat64()); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cell(v *decimal.Decimal) any {
	if v == nil {
		return ""
	}
	return v.InexactFloat64()
}
