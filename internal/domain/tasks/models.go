package tasks

import (
	"time"

	"github.com/shopspring/decimal"
)

type TaskType struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Description  *string            `json:"description"`
	Price        decimal.Decimal    `json:"price"`
	Status       string             `json:"status"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
	PriceHistory []TaskPriceHistory `json:"priceHistory,omitempty"`
}

type TaskPriceHistory struct {
	ID         string          `json:"id"`
	TaskTypeID string          `json:"taskTypeId"`
	OldPrice   decimal.Decimal `json:"oldPrice"`
	NewPrice   decimal.Decimal `json:"newPrice"`
	ChangedBy  *string         `json:"changedBy"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type NewTaskType struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	Status      string
}

// TaskTypeUpdate is a partial update; nil fields are left unchanged.
type TaskTypeUpdate struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Status      *string
}

// PriceChange is the history row an update must append, if any.
type PriceChange struct {
	OldPrice decimal.Decimal
	NewPrice decimal.Decimal
}

// EmployeeRef and TaskTypeRef are the joined summaries shown on task rows.
type EmployeeRef struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmployeeType string `json:"employeeType"`
}

type TaskTypeRef struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type CompletedTask struct {
	ID            string          `json:"id"`
	SubmissionID  string          `json:"submissionId"`
	EmployeeID    string          `json:"employeeId"`
	TaskTypeID    string          `json:"taskTypeId"`
	Quantity      int             `json:"quantity"`
	PriceAtTime   decimal.Decimal `json:"priceAtTime"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	CompletedDate time.Time       `json:"completedDate"`
	Notes         *string         `json:"notes"`
	CreatedAt     time.Time       `json:"createdAt"`
	Employee      *EmployeeRef    `json:"employee,omitempty"`
	TaskType      *TaskTypeRef    `json:"taskType,omitempty"`
}

type CompletedFilter struct {
	EmployeeID string
	From       time.Time
	To         time.Time
	// Limit <= 0 returns every matching row.
	Limit      int
	Offset     int
}

type Stats struct {
	TotalTasks int `json:"totalTasks"`
	TasksToday int `json:"tasksToday"`
}
