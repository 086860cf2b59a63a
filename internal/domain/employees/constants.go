package employees

import "github.com/shopspring/decimal"

const (
	TypePermanent = "PERMANENT"
	TypeTemporary = "TEMPORARY"

	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"

	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
	GenderOther  = "OTHER"

	MinAge = 18
)

const (
	AuditEntity       = "employee"
	AuditCreate       = "employee.create"
	AuditUpdate       = "employee.update"
	AuditDelete       = "employee.delete"
	AuditSalaryChange = "employee.salary_superseded"
)

var (
	DefaultEPFPercentage = decimal.NewFromInt(8)
	DefaultETFPercentage = decimal.NewFromInt(3)
)

var (
	Types    = []string{TypePermanent, TypeTemporary}
	Statuses = []string{StatusActive, StatusInactive}
	Genders  = []string{GenderMale, GenderFemale, GenderOther}
)
