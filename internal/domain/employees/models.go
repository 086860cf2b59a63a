package employees

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID            string         `json:"id"`
	FirstName     string         `json:"firstName"`
	LastName      string         `json:"lastName"`
	Email         *string        `json:"email"`
	Phone         string         `json:"phone"`
	Address       *string        `json:"address"`
	NICNumber     string         `json:"nicNumber"`
	Gender        string         `json:"gender"`
	Age           int            `json:"age"`
	EmployeeType  string         `json:"employeeType"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	SalaryConfigs []SalaryConfig `json:"salaryConfigs"`
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// ActiveSalaryConfig returns the active config among SalaryConfigs, if loaded.
func (e Employee) ActiveSalaryConfig() (SalaryConfig, bool) {
	for _, cfg := range e.SalaryConfigs {
		if cfg.IsActive {
			return cfg, true
		}
	}
	return SalaryConfig{}, false
}

type SalaryConfig struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employeeId"`
	BasicSalary   decimal.Decimal `json:"basicSalary"`
	Allowance     decimal.Decimal `json:"allowance"`
	EPFPercentage decimal.Decimal `json:"epfPercentage"`
	ETFPercentage decimal.Decimal `json:"etfPercentage"`
	EffectiveFrom time.Time       `json:"effectiveFrom"`
	EffectiveTo   *time.Time      `json:"effectiveTo"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// SalaryInput is a requested salary configuration; nil fields take defaults.
type SalaryInput struct {
	BasicSalary   decimal.Decimal
	Allowance     *decimal.Decimal
	EPFPercentage *decimal.Decimal
	ETFPercentage *decimal.Decimal
}

type NewEmployee struct {
	FirstName    string
	LastName     string
	Email        *string
	Phone        string
	Address      *string
	NICNumber    string
	Gender       string
	Age          int
	EmployeeType string
	Status       string
	Permanent    *SalaryInput
}

// EmployeeUpdate is a partial update; nil fields are left unchanged.
type EmployeeUpdate struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Phone        *string
	Address      *string
	NICNumber    *string
	Gender       *string
	Age          *int
	EmployeeType *string
	Status       *string
	Permanent    *SalaryInput
}

func (u EmployeeUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil && u.Phone == nil && u.Address == nil &&
		u.NICNumber == nil && u.Gender == nil && u.Age == nil && u.EmployeeType == nil && u.Status == nil &&
		u.Permanent == nil
}

type ListFilter struct {
	EmployeeType string
	Status       string
	Search       string
	Limit        int
	Offset       int
}

type Stats struct {
	Total    int          `json:"total"`
	ByType   TypeCounts   `json:"byType"`
	ByStatus StatusCounts `json:"byStatus"`
}

type TypeCounts struct {
	Permanent int `json:"permanent"`
	Temporary int `json:"temporary"`
}

type StatusCounts struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}
