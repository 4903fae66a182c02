package service

import (
	"errors"
	"fmt"
	"strings"
)

// Business failures the route layer maps to status codes. Callers pick the
// kind apart with errors.Is / errors.As.
var (
	ErrInvalidID          = errors.New("invalid task ID")
	ErrNotFound           = errors.New("task not found")
	ErrTitleRequired      = errors.New("title is required")
	ErrSelfReference      = errors.New("a task cannot depend on itself")
	ErrInvalidRecurrence  = errors.New("recurring tasks require a recurrence pattern")
	ErrEmailTaken         = errors.New("email is already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// InvalidReferenceError reports a malformed dependency id.
type InvalidReferenceError struct {
	ID string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid dependency ID: %s", e.ID)
}

// DependencyNotFoundError reports a dependency id that does not resolve to a
// task owned by the caller.
type DependencyNotFoundError struct {
	ID string
}

func (e *DependencyNotFoundError) Error() string {
	return fmt.Sprintf("dependency task not found: %s", e.ID)
}

// UnmetDependenciesError blocks a done transition. Titles lists the
// dependencies that are not done yet, in repository return order.
type UnmetDependenciesError struct {
	Titles []string
}

func (e *UnmetDependenciesError) Error() string {
	return fmt.Sprintf(
		"cannot mark task as done, the following dependent tasks are not completed: %s",
		strings.Join(e.Titles, ", "),
	)
}

// HasDependentsError blocks a deletion. Titles lists the tasks that still
// depend on the target.
type HasDependentsError struct {
	Titles []string
}

func (e *HasDependentsError) Error() string {
	return fmt.Sprintf(
		"cannot delete task, the following tasks depend on it: %s",
		strings.Join(e.Titles, ", "),
	)
}
