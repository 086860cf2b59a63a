package payroll

const (
	EmployeeTypePermanent = "PERMANENT"
	EmployeeTypeTemporary = "TEMPORARY"

	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusPaid     = "PAID"

	SkipMissingSalaryConfig = "missing_salary_config"
	SkipAlreadyGenerated    = "already_generated"

	MinYear = 2000
	MaxYear = 2100
)

const (
	AuditEntity       = "payroll"
	AuditGenerate     = "payroll.generate"
	AuditStatusChange = "payroll.status_change"
)

var Statuses = []string{StatusPending, StatusApproved, StatusPaid}

// nextStatus is the only forward move allowed from each status.
var nextStatus = map[string]string{
	StatusPending:  StatusApproved,
	StatusApproved: StatusPaid,
}
