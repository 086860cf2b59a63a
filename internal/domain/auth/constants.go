package auth

import "context"

const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
	RoleSupervisor = "SUPERVISOR"
)

const (
	PermEmployeesRead    = "employees.read"
	PermEmployeesWrite   = "employees.write"
	PermTasksRead        = "tasks.read"
	PermTasksWrite       = "tasks.write"
	PermSubmissionsRead  = "submissions.read"
	PermSubmissionsWrite = "submissions.write"
	PermPayrollRead      = "payroll.read"
	PermPayrollGenerate  = "payroll.generate"
	PermDashboardRead    = "dashboard.read"
	PermAuditRead        = "audit.read"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermTasksRead,
	PermTasksWrite,
	PermSubmissionsRead,
	PermSubmissionsWrite,
	PermPayrollRead,
	PermPayrollGenerate,
	PermDashboardRead,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleSuperAdmin: DefaultPermissions,
	RoleAdmin:      DefaultPermissions,
	RoleSupervisor: {
		PermEmployeesRead,
		PermTasksRead,
		PermSubmissionsRead,
		PermSubmissionsWrite,
		PermPayrollRead,
		PermDashboardRead,
	},
}

var Roles = []string{RoleSuperAdmin, RoleAdmin, RoleSupervisor}

// StaticPermissions resolves permissions from RolePermissions.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true, nil
		}
	}
	return false, nil
}
