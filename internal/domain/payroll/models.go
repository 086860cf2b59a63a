package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type EmployeeRef struct {
	ID           string  `json:"id"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	NICNumber    string  `json:"nicNumber"`
	EmployeeType string  `json:"employeeType"`
	Email        *string `json:"email"`
}

type Payroll struct {
	ID              string           `json:"id"`
	EmployeeID      string           `json:"employeeId"`
	Month           int              `json:"month"`
	Year            int              `json:"year"`
	EmployeeType    string           `json:"employeeType"`
	BasicSalary     *decimal.Decimal `json:"basicSalary"`
	Allowance       *decimal.Decimal `json:"allowance"`
	EPFDeduction    *decimal.Decimal `json:"epfDeduction"`
	ETFContribution *decimal.Decimal `json:"etfContribution"`
	TotalTaskAmount *decimal.Decimal `json:"totalTaskAmount"`
	NetSalary       decimal.Decimal  `json:"netSalary"`
	Status          string           `json:"status"`
	GeneratedBy     string           `json:"generatedBy"`
	GeneratedAt     time.Time        `json:"generatedAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	Employee        *EmployeeRef     `json:"employee,omitempty"`
}

// SalaryTerms is the subset of the active salary config payroll needs.
type SalaryTerms struct {
	BasicSalary   decimal.Decimal
	Allowance     decimal.Decimal
	EPFPercentage decimal.Decimal
	ETFPercentage decimal.Decimal
}

// Candidate is an active employee considered by a generation run.
type Candidate struct {
	ID           string
	FirstName    string
	LastName     string
	EmployeeType string
	Salary       *SalaryTerms
}

type GenerateResult struct {
	Message  string    `json:"message"`
	Count    int       `json:"count"`
	Payrolls []Payroll `json:"payrolls"`
}

type ListFilter struct {
	Month      int
	Year       int
	Status     string
	EmployeeID string
	Limit      int
	Offset     int
}
