package submissions

import (
	"time"

	"github.com/shopspring/decimal"

	"garmenthr/internal/domain/tasks"
)

type Entry struct {
	TaskTypeID string
	Quantity   int
	Notes      *string
}

type Request struct {
	EmployeeID string
	Tasks      []Entry
	Notes      *string
}

// Line is one priced entry ready to persist as a completed task.
type Line struct {
	TaskTypeID  string
	Quantity    int
	PriceAtTime decimal.Decimal
	TotalAmount decimal.Decimal
	Notes       *string
}

type Plan struct {
	Lines []Line
	Total decimal.Decimal
}

type Submission struct {
	ID             string                `json:"id"`
	EmployeeID     string                `json:"employeeId"`
	TotalAmount    decimal.Decimal       `json:"totalAmount"`
	SubmissionDate time.Time             `json:"submissionDate"`
	Notes          *string               `json:"notes"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
	Employee       *tasks.EmployeeRef    `json:"employee,omitempty"`
	Tasks          []tasks.CompletedTask `json:"tasks,omitempty"`
}

type ListFilter struct {
	EmployeeName string
	From         time.Time
	To           time.Time
	Limit        int
	Offset       int
}
