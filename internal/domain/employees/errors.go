package employees

import "errors"

var (
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrSalaryConfigNotFound = errors.New("no active salary configuration")
	ErrDuplicateNIC         = errors.New("employee with this NIC already exists")
	ErrEmployeeInUse        = errors.New("employee has submissions or payroll records")
)
