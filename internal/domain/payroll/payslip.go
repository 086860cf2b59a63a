package payroll

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Payslip renders the payroll row as a PDF. When a payslip directory is
// configured a copy is archived as <dir>/<id>.pdf; archive failures are only
// logged.
func (s *Service) Payslip(ctx context.Context, id string) ([]byte, Payroll, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, Payroll{}, err
	}

	body, err := RenderPayslip(p)
	if err != nil {
		return nil, Payroll{}, fmt.Errorf("render payslip: %w", err)
	}

	if s.payslipDir != "" {
		if err := archive(s.payslipDir, p.ID+".pdf", body); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("payrollId", p.ID).Msg("payslip archive failed")
		}
	}
	return body, p, nil
}

func archive(dir, name string, body []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), body, 0o600)
}

// PayslipFilename is the download name for a payroll row.
func PayslipFilename(p Payroll) string {
	return fmt.Sprintf("payslip-%s-%s.pdf", periodKey(p.Month, p.Year), p.EmployeeID)
}

func RenderPayslip(p Payroll) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	if p.Employee != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Employee: %s %s", p.Employee.FirstName, p.Employee.LastName))
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("NIC: %s", p.Employee.NICNumber))
		pdf.Ln(7)
	}
	period := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", period.Format("January 2006")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Type: %s", p.EmployeeType))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", p.Status))
	pdf.Ln(12)

	line := func(label string, amount *decimal.Decimal) {
		if amount == nil {
			return
		}
		pdf.CellFormat(100, 8, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 8, amount.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	if p.EmployeeType == EmployeeTypePermanent {
		line("Basic salary", p.BasicSalary)
		line("Allowance", p.Allowance)
		line("EPF deduction", p.EPFDeduction)
		line("ETF contribution (employer)", p.ETFContribution)
	} else {
		line("Completed task earnings", p.TotalTaskAmount)
	}

	pdf.SetFont("Helvetica", "B", 12)
	net := p.NetSalary
	line("Net salary", &net)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
