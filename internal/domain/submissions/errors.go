package submissions

import (
	"errors"
	"fmt"
)

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrTaskTypeNotFound   = errors.New("task type not found")
	ErrNoTasks            = errors.New("submission must contain at least one task")
)

// TaskTypeNotFoundError names the unknown task type; it matches ErrTaskTypeNotFound.
type TaskTypeNotFoundError struct {
	ID string
}

func (e *TaskTypeNotFoundError) Error() string {
	return fmt.Sprintf("task type %s not found", e.ID)
}

func (e *TaskTypeNotFoundError) Is(target error) bool {
	return target == ErrTaskTypeNotFound
}
