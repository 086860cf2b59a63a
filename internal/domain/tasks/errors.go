package tasks

import "errors"

var (
	ErrTaskTypeNotFound      = errors.New("task type not found")
	ErrDuplicateTaskTypeName = errors.New("task type with this name already exists")
	ErrTaskTypeInUse         = errors.New("task type has completed tasks")
)
