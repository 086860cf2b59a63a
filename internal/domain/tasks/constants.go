package tasks

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"

	// RecentHistoryLimit bounds the price history embedded in a task type.
	RecentHistoryLimit = 10
)

const (
	AuditEntity      = "task_type"
	AuditCreate      = "task_type.create"
	AuditUpdate      = "task_type.update"
	AuditDelete      = "task_type.delete"
	AuditPriceChange = "task_type.price_change"
)

var Statuses = []string{StatusActive, StatusInactive}
